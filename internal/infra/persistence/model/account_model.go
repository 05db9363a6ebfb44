package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountModel mirrors the 'users' table. PostgreSQL generates ids via gen_random_uuid().
// Preference columns belong to the content side of the site and are carried only so
// migrations keep the table shape.
type AccountModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email    string    `gorm:"type:text;uniqueIndex;not null"`
	Password string    `gorm:"type:text;not null"`
	Name     string    `gorm:"type:text;not null"`

	TelegramChatID  string `gorm:"column:telegram_chat_id;type:text;default:''"`
	TelegramToken   string `gorm:"column:telegram_token;type:text;default:''"`
	TelegramEnabled bool   `gorm:"column:telegramotp;default:false"`

	TwoFactorSecret  *string `gorm:"column:two_factor_secret;type:text"`
	TwoFactorEnabled bool    `gorm:"column:two_factor_enabled;default:false"`

	NewsLetters bool   `gorm:"column:news_latters;default:false"`
	AutoReply   bool   `gorm:"column:auto_reply;default:false"`
	Theme       string `gorm:"type:text;default:'light'"`
	Language    string `gorm:"type:text;default:'en'"`

	// Legacy reset columns; reset requests now live in password_reset_requests.
	ResetToken       *string    `gorm:"column:reset_token;type:text"`
	ResetTokenExpiry *time.Time `gorm:"column:reset_token_expiry"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName explicitly sets the table name for GORM.
func (AccountModel) TableName() string {
	return "users"
}
