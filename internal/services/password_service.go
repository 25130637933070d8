package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mpgepmc/backend/internal/config"
	"github.com/mpgepmc/backend/internal/models"
	"github.com/mpgepmc/backend/pkg/crypto"
	"github.com/mpgepmc/backend/pkg/validation"
	"gorm.io/gorm"
)

// PasswordResetService mints single-use, time-boxed reset tokens and applies
// password changes.
type PasswordResetService struct {
	db     *gorm.DB
	mailer Mailer
	cfg    *config.Config
}

func NewPasswordResetService(db *gorm.DB, mailer Mailer, cfg *config.Config) *PasswordResetService {
	return &PasswordResetService{db: db, mailer: mailer, cfg: cfg}
}

func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Request creates a reset token for the account and emails the reset link.
// An unknown email succeeds silently so the endpoint cannot be used to probe
// which addresses are registered.
func (s *PasswordResetService) Request(email string) error {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	token, err := generateResetToken()
	if err != nil {
		return err
	}

	// A new request replaces any prior token for the user.
	if err := s.db.Where("user_id = ?", user.ID).Delete(&models.PasswordResetToken{}).Error; err != nil {
		return err
	}

	record := models.PasswordResetToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(s.cfg.ResetTokenExpiry),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s/%s", s.cfg.FrontendURL, user.ID, token)
	if err := s.mailer.SendPasswordResetEmail(user.Email, user.FirstName, resetURL); err != nil {
		return &DeliveryError{Err: err}
	}
	return nil
}

// ValidateToken checks a reset link without consuming it.
func (s *PasswordResetService) ValidateToken(userID uuid.UUID, token string) error {
	_, err := s.findUsableToken(userID, token)
	return err
}

func (s *PasswordResetService) findUsableToken(userID uuid.UUID, token string) (*models.PasswordResetToken, error) {
	var record models.PasswordResetToken
	err := s.db.Where("user_id = ? AND token = ?", userID, token).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrResetTokenInvalid
	}
	if err != nil {
		return nil, err
	}

	if record.IsUsed() {
		return nil, ErrResetTokenUsed
	}
	if record.IsExpired(time.Now().UTC()) {
		return nil, ErrResetTokenExpired
	}
	return &record, nil
}

// Confirm consumes the token and sets the new password.
func (s *PasswordResetService) Confirm(userID uuid.UUID, token, newPassword string) error {
	record, err := s.findUsableToken(userID, token)
	if err != nil {
		return err
	}

	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := crypto.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"password":             hash,
			"last_password_change": time.Now().UTC(),
		}
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Delete(record).Error
	})
}

// Change is the authenticated variant: the old password must match and the
// new one must differ from it.
func (s *PasswordResetService) Change(user *models.User, oldPassword, newPassword string) error {
	if !crypto.CheckPassword(oldPassword, user.Password) {
		return ErrWrongOldPassword
	}
	if oldPassword == newPassword {
		return ErrPasswordUnchanged
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := crypto.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"password":             hash,
		"last_password_change": time.Now().UTC(),
	}
	if err := s.db.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		return err
	}

	user.Password = hash
	return nil
}
