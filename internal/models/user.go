package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Gender values stored on User.Gender.
const (
	GenderMale   = "M"
	GenderFemale = "F"
	GenderOther  = "O"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	MobileNumber string    `gorm:"uniqueIndex;not null" json:"mobile_number"`
	FirstName    string    `gorm:"size:64;not null" json:"first_name"`
	MiddleName   string    `gorm:"size:64" json:"middle_name,omitempty"`
	LastName     string    `gorm:"size:64;not null" json:"last_name"`
	Gender       string    `gorm:"size:1;not null" json:"gender"`
	// CustomGender is only set when Gender is GenderOther.
	CustomGender string    `gorm:"size:64" json:"custom_gender,omitempty"`
	DateOfBirth  time.Time `gorm:"not null" json:"date_of_birth"`
	Password     string    `gorm:"not null" json:"-"`

	// IsActive stays false until the OTP verification succeeds.
	IsActive    bool `gorm:"default:false" json:"is_active"`
	IsStaff     bool `gorm:"default:false" json:"is_staff"`
	IsSuperuser bool `gorm:"default:false" json:"is_superuser"`

	DateJoined         time.Time `json:"date_joined"`
	LastPasswordChange time.Time `json:"last_password_change"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now().UTC()
	if u.DateJoined.IsZero() {
		u.DateJoined = now
	}
	if u.LastPasswordChange.IsZero() {
		u.LastPasswordChange = now
	}
	return nil
}

// FullName returns the first name plus the last name, with a space in between.
func (u *User) FullName() string {
	return fmt.Sprintf("%s %s", u.FirstName, u.LastName)
}

func (u *User) ShortName() string {
	return u.FirstName
}

type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Token     string    `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

func (r *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
