package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"folio/config"
	"folio/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	resetTokenType  = "password_reset"
	defaultResetTTL = time.Hour
)

// ErrInvalidResetToken is returned by Parse for any token that fails verification.
var ErrInvalidResetToken = errors.New("invalid reset token")

type resetClaims struct {
	Email string `json:"email"`
	Type  string `json:"type"`
	jwt.RegisteredClaims
}

// resetTokenService signs password-reset tokens with HS256.
// The signature lets forged tokens fail before any database lookup; single use
// is enforced by the stored hash.
type resetTokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewResetTokenService builds the issuer from secretKey.reset and passwordReset.ttl.
func NewResetTokenService(cfg *config.Config) (service.ResetTokenService, error) {
	if cfg == nil || cfg.SecretKey.Reset == "" {
		return nil, errors.New("reset token secret must be provided")
	}

	ttl := defaultResetTTL
	if cfg.PasswordReset != nil && cfg.PasswordReset.TTL > 0 {
		ttl = cfg.PasswordReset.TTL
	}

	return &resetTokenService{
		secret: []byte(cfg.SecretKey.Reset),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func (s *resetTokenService) Issue(claims service.ResetClaims) (string, string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, resetClaims{
		Email: claims.Email,
		Type:  resetTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        claims.RequestID.String(),
			Subject:   claims.AccountID.String(),
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", "", errors.Wrap(err, "sign reset token")
	}

	return signed, s.Hash(signed), nil
}

func (s *resetTokenService) Parse(tokenString string) (*service.ResetClaims, error) {
	claims := &resetClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidResetToken, err.Error())
	}

	if claims.Type != resetTokenType {
		return nil, errors.Wrap(ErrInvalidResetToken, "unexpected token type")
	}

	requestID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidResetToken, "malformed jti")
	}
	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidResetToken, "malformed subject")
	}

	return &service.ResetClaims{
		RequestID: requestID,
		AccountID: accountID,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Hash returns the hex SHA-256 of the raw token.
func (s *resetTokenService) Hash(token string) string {
	sum := sha256.Sum256([]byte(token))

	return hex.EncodeToString(sum[:])
}

func (s *resetTokenService) TTL() time.Duration {
	return s.ttl
}
