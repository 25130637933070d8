package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MobileValidationRule maps a country calling code to the operator-code
// pattern and subscriber digit length a submitted number must match.
// Rules are administrative configuration; the validation path only reads them.
type MobileValidationRule struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CountryCode      string    `gorm:"size:5;uniqueIndex;not null" json:"country_code"`
	OperatorPattern  string    `gorm:"not null" json:"operator_pattern"`
	SubscriberLength int       `gorm:"not null" json:"subscriber_length"`
	ExampleFormat    string    `gorm:"size:64" json:"example_format"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (m *MobileValidationRule) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
