package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OTPRecord holds the one live verification code per user. Regenerating
// replaces the row rather than adding a second one.
type OTPRecord struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Code         string    `gorm:"size:6;not null"`
	ExpiresAt    time.Time `gorm:"not null"`
	FailAttempts int       `gorm:"not null;default:0"`
	Invalidated  bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (o *OTPRecord) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (o *OTPRecord) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// IsUsable reports whether the code can still be submitted for verification.
// An invalidated record is unusable even before its expiry.
func (o *OTPRecord) IsUsable(now time.Time) bool {
	return !o.IsExpired(now) && !o.Invalidated
}
