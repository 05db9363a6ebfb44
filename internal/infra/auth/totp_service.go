package auth

import (
	"time"

	"folio/config"
	"folio/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	defaultTOTPPeriod     = 30
	defaultTOTPSkew       = 2
	defaultTOTPSecretSize = 20
)

// totpService implements service.OTPService with RFC 6238 codes (SHA1, 6 digits).
type totpService struct {
	issuer string
	period uint
	skew   uint
}

// NewTOTPService builds the one-time code engine from the totp config block.
func NewTOTPService(cfg *config.Config) service.OTPService {
	svc := &totpService{
		period: defaultTOTPPeriod,
		skew:   defaultTOTPSkew,
	}
	if cfg != nil && cfg.TOTP != nil {
		svc.issuer = cfg.TOTP.Issuer
		if cfg.TOTP.Period > 0 {
			svc.period = cfg.TOTP.Period
		}
		if cfg.TOTP.Skew > 0 {
			svc.skew = cfg.TOTP.Skew
		}
	}

	return svc
}

func (s *totpService) Generate(accountName string) (*service.OTPKey, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: accountName,
		Period:      s.period,
		SecretSize:  defaultTOTPSecretSize,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, errors.Wrap(err, "generate totp secret")
	}

	return &service.OTPKey{
		Secret: key.Secret(),
		URI:    key.URL(),
	}, nil
}

// Validate accepts codes up to skew periods before or after at.
// Malformed codes and secrets are simply invalid.
func (s *totpService) Validate(code, secret string, at time.Time) bool {
	if code == "" || secret == "" {
		return false
	}

	valid, err := totp.ValidateCustom(code, secret, at.UTC(), s.opts())
	if err != nil {
		return false
	}

	return valid
}

func (s *totpService) GenerateCode(secret string, at time.Time) (string, error) {
	code, err := totp.GenerateCodeCustom(secret, at.UTC(), s.opts())
	if err != nil {
		return "", errors.Wrap(err, "generate totp code")
	}

	return code, nil
}

func (s *totpService) opts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    s.period,
		Skew:      s.skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}
