// Package validation configures go-playground/validator for request DTOs and usecase inputs,
// and renders its failures as ErrValidationFailed details.
package validation

import (
	"encoding/base32"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	domainerrors "folio/internal/domain/errors"
	"folio/internal/errors"

	"github.com/go-playground/validator/v10"
)

// MaxPasswordBytes is the longest input bcrypt will hash.
const MaxPasswordBytes = 72

// New returns a validator that reports fields by their json name, or the
// lower-camel Go name when there is none.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("totpsecret", isTOTPSecret)

	return v
}

func fieldName(field reflect.StructField) string {
	if tag, _, _ := strings.Cut(field.Tag.Get("json"), ","); tag != "" && tag != "-" {
		return tag
	}

	return lowerFirst(field.Name)
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}

	return string(unicode.ToLower(r)) + s[size:]
}

// isTOTPSecret accepts base32 with or without padding. The empty string is left to omitempty.
func isTOTPSecret(fl validator.FieldLevel) bool {
	secret := strings.ToUpper(fl.Field().String())
	if secret == "" {
		return true
	}

	_, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.TrimRight(secret, "="))

	return err == nil
}

// Error converts a validator failure into ErrValidationFailed carrying one message per field.
func Error(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(domainerrors.ErrValidationFailed, err.Error())
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}

	return domainerrors.ErrValidationFailed.WithDetails(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "totpsecret":
		return field + " must be a base32 secret"
	default:
		return field + " is invalid"
	}
}

// Password checks length bounds: at least minLength characters and at most MaxPasswordBytes bytes.
func Password(field, password string, minLength int) error {
	switch {
	case password == "":
		return domainerrors.ErrValidationFailed.WithDetails(field + " is required")
	case utf8.RuneCountInString(password) < minLength:
		return domainerrors.ErrValidationFailed.WithDetails(fmt.Sprintf("%s must be at least %d characters", field, minLength))
	case len(password) > MaxPasswordBytes:
		return domainerrors.ErrValidationFailed.WithDetails(fmt.Sprintf("%s must be at most %d bytes", field, MaxPasswordBytes))
	}

	return nil
}
