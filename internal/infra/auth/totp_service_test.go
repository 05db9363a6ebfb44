package auth

import (
	"net/url"
	"testing"
	"time"

	"folio/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTOTPSecret = "JBSWY3DPEHPK3PXP"

func newTestTOTPService() *totpService {
	svc, _ := NewTOTPService(&config.Config{
		TOTP: &config.TOTPConfig{Issuer: "Tech2Saini Portfolio", Period: 30, Skew: 2},
	}).(*totpService)

	return svc
}

func TestTOTPService_Generate(t *testing.T) {
	svc := newTestTOTPService()

	key, err := svc.Generate("alice@example.com")
	require.NoError(t, err)
	assert.Len(t, key.Secret, 32) // 20 bytes, base32 without padding

	uri, err := url.Parse(key.URI)
	require.NoError(t, err)
	assert.Equal(t, "otpauth", uri.Scheme)
	assert.Equal(t, "totp", uri.Host)
	assert.Equal(t, key.Secret, uri.Query().Get("secret"))
	assert.Equal(t, "Tech2Saini Portfolio", uri.Query().Get("issuer"))
	assert.Contains(t, uri.Path, "alice@example.com")
}

func TestTOTPService_GenerateIsRandom(t *testing.T) {
	svc := newTestTOTPService()

	first, err := svc.Generate("alice@example.com")
	require.NoError(t, err)
	second, err := svc.Generate("alice@example.com")
	require.NoError(t, err)

	assert.NotEqual(t, first.Secret, second.Secret)
}

func TestTOTPService_DriftWindow(t *testing.T) {
	svc := newTestTOTPService()
	issuedAt := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	code, err := svc.GenerateCode(testTOTPSecret, issuedAt)
	require.NoError(t, err)
	require.Len(t, code, 6)

	tests := []struct {
		name   string
		offset time.Duration
		want   bool
	}{
		{"same instant", 0, true},
		{"one step late", 30 * time.Second, true},
		{"two steps late", 60 * time.Second, true},
		{"two steps early", -60 * time.Second, true},
		{"three steps late", 90 * time.Second, false},
		{"three steps early", -90 * time.Second, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.Validate(code, testTOTPSecret, issuedAt.Add(tt.offset)))
		})
	}
}

func TestTOTPService_RejectsMalformedInput(t *testing.T) {
	svc := newTestTOTPService()
	now := time.Now()

	code, err := svc.GenerateCode(testTOTPSecret, now)
	require.NoError(t, err)

	assert.False(t, svc.Validate("", testTOTPSecret, now))
	assert.False(t, svc.Validate(code, "", now))
	assert.False(t, svc.Validate(code, "not base32 !!", now))
	assert.False(t, svc.Validate("12345", testTOTPSecret, now))
	assert.False(t, svc.Validate(code, "GEZDGNBVGY3TQOJQ", now), "code for another secret")
}

func TestTOTPService_Defaults(t *testing.T) {
	svc, ok := NewTOTPService(nil).(*totpService)
	require.True(t, ok)

	assert.Equal(t, uint(30), svc.period)
	assert.Equal(t, uint(2), svc.skew)
}
