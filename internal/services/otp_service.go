package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/mpgepmc/backend/internal/config"
	"github.com/mpgepmc/backend/internal/models"
	"gorm.io/gorm"
)

// OTPService owns the verification code lifecycle: generate, verify with a
// failed-attempt lockout, and resend throttled to the current code's expiry.
type OTPService struct {
	db     *gorm.DB
	mailer Mailer
	cfg    *config.Config
}

func NewOTPService(db *gorm.DB, mailer Mailer, cfg *config.Config) *OTPService {
	return &OTPService{db: db, mailer: mailer, cfg: cfg}
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Generate creates or replaces the user's OTP record with a fresh code,
// resets the fail counter and invalidated flag, and emails the code.
// The record is kept even when the send fails; the caller decides whether
// to roll anything back.
func (s *OTPService) Generate(user *models.User) error {
	code, err := generateCode()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.cfg.OTPExpiry)

	var record models.OTPRecord
	err = s.db.Where("user_id = ?", user.ID).First(&record).Error
	switch {
	case err == nil:
		record.Code = code
		record.ExpiresAt = expiresAt
		record.FailAttempts = 0
		record.Invalidated = false
		if err := s.db.Save(&record).Error; err != nil {
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		record = models.OTPRecord{
			UserID:    user.ID,
			Code:      code,
			ExpiresAt: expiresAt,
		}
		if err := s.db.Create(&record).Error; err != nil {
			return err
		}
	default:
		return err
	}

	if err := s.mailer.SendOTPEmail(user.Email, user.FirstName, code); err != nil {
		return &DeliveryError{Err: err}
	}
	return nil
}

// Current returns the user's OTP record, or nil when none exists.
func (s *OTPService) Current(userID uuid.UUID) (*models.OTPRecord, error) {
	var record models.OTPRecord
	err := s.db.Where("user_id = ?", userID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Verify checks the submitted code. A wrong code increments the fail counter
// and the record is invalidated once the limit is reached; an invalidated or
// expired record is rejected as a state failure, not a mismatch. On success
// the user is activated and the record deleted in one transaction.
func (s *OTPService) Verify(user *models.User, code string) error {
	var record models.OTPRecord
	if err := s.db.Where("user_id = ?", user.ID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOTPMissing
		}
		return err
	}

	now := time.Now().UTC()
	if record.Invalidated {
		return ErrOTPInvalidated
	}
	if record.IsExpired(now) {
		return ErrOTPExpired
	}

	if record.Code != code {
		record.FailAttempts++
		if record.FailAttempts >= s.cfg.OTPMaxFailAttempts {
			record.Invalidated = true
		}
		if err := s.db.Save(&record).Error; err != nil {
			return err
		}
		return ErrOTPMismatch
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", true).Error; err != nil {
			return err
		}
		return tx.Delete(&record).Error
	})
	if err != nil {
		return err
	}

	user.IsActive = true
	return nil
}

// Resend issues a fresh code, but only once the current one has expired.
// Invalidation does not shorten the wait: a locked-out record still blocks
// resend until its original expiry passes.
func (s *OTPService) Resend(user *models.User) error {
	record, err := s.Current(user.ID)
	if err != nil {
		return err
	}
	if record != nil && !record.IsExpired(time.Now().UTC()) {
		return ErrOTPNotExpired
	}
	return s.Generate(user)
}
