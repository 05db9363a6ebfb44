// Package validator adapts go-playground/validator to echo.
package validator

import (
	"folio/internal/validation"

	"github.com/go-playground/validator/v10"
)

// CustomValidator implements echo.Validator.
type CustomValidator struct {
	validate *validator.Validate
}

// New creates the validator used by echo.Context.Validate.
func New() *CustomValidator {
	return &CustomValidator{validate: validation.New()}
}

// Validate returns ErrValidationFailed with one message per failing field.
func (cv *CustomValidator) Validate(i any) error {
	return validation.Error(cv.validate.Struct(i))
}
