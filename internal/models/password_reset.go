package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PasswordResetToken is a single-use reset credential, one live token per user.
type PasswordResetToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Token     string    `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	UsedAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *PasswordResetToken) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *PasswordResetToken) IsExpired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

func (p *PasswordResetToken) IsUsed() bool {
	return p.UsedAt != nil
}

func (p *PasswordResetToken) IsValid(now time.Time) bool {
	return !p.IsExpired(now) && !p.IsUsed()
}
