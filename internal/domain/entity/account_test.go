package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAccount_SecondFactorRequired(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		secret  string
		want    bool
	}{
		{"disabled without secret", false, "", false},
		{"disabled with leftover secret", false, "JBSWY3DPEHPK3PXP", false},
		{"enabled with secret", true, "JBSWY3DPEHPK3PXP", true},
		{"enabled without secret is treated as disabled", true, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := &Account{TwoFactorEnabled: tt.enabled, TwoFactorSecret: tt.secret}
			assert.Equal(t, tt.want, account.SecondFactorRequired())
			assert.Equal(t, tt.want, account.PublicView().TwoFactorEnabled)
		})
	}
}

func TestAccount_PublicViewOmitsSecrets(t *testing.T) {
	account := &Account{
		ID:               uuid.New(),
		Email:            "alice@example.com",
		Name:             "Alice",
		PasswordHash:     "$2a$12$hash",
		TwoFactorSecret:  "JBSWY3DPEHPK3PXP",
		TwoFactorEnabled: true,
	}

	view := account.PublicView()

	assert.Equal(t, AccountView{ID: account.ID, Email: "alice@example.com", Name: "Alice", TwoFactorEnabled: true}, view)
}

func TestPasswordResetRequest_Usable(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	consumed := now.Add(-time.Minute)

	assert.True(t, (&PasswordResetRequest{ExpiresAt: now.Add(time.Minute)}).Usable(now))
	assert.False(t, (&PasswordResetRequest{ExpiresAt: now}).Usable(now))
	assert.False(t, (&PasswordResetRequest{ExpiresAt: now.Add(time.Hour), ConsumedAt: &consumed}).Usable(now))
}

func TestTelegramChannel_Usable(t *testing.T) {
	assert.True(t, TelegramChannel{Token: "t", ChatID: "c", Enabled: true}.Usable())
	assert.False(t, TelegramChannel{Token: "t", ChatID: "c"}.Usable())
	assert.False(t, TelegramChannel{Token: "", ChatID: "c", Enabled: true}.Usable())
}
