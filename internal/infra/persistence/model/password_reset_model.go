package model

import (
	"time"

	"github.com/google/uuid"
)

// PasswordResetModel mirrors the 'password_reset_requests' table.
type PasswordResetModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Email      string    `gorm:"type:text;not null"`
	TokenHash  string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	ExpiresAt  time.Time `gorm:"not null"`
	ConsumedAt *time.Time
	CreatedAt  time.Time

	Account *AccountModel `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (PasswordResetModel) TableName() string {
	return "password_reset_requests"
}
