package service

import "time"

// OTPKey is a freshly generated second-factor secret.
type OTPKey struct {
	Secret string // Base32 secret, also shown as the manual entry key.
	URI    string // otpauth:// provisioning URI.
}

// OTPService generates and validates time-based one-time codes.
type OTPService interface {
	// Generate creates a new secret labelled with the account name.
	Generate(accountName string) (*OTPKey, error)

	// Validate checks code against secret at the given instant, honoring the configured drift window.
	Validate(code, secret string, at time.Time) bool

	// GenerateCode returns the code for secret at the given instant.
	GenerateCode(secret string, at time.Time) (string, error)
}
