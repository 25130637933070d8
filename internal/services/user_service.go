package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/mpgepmc/backend/internal/models"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

var ErrUserNotFound = errors.New("user not found")

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (s *UserService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// EmailExists reports whether the email is already registered
func (s *UserService) EmailExists(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// MobileNumberExists reports whether the mobile number is already registered
func (s *UserService) MobileNumberExists(mobile string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("mobile_number = ?", mobile).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListUsers returns all users, newest first (admin view)
func (s *UserService) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("date_joined DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
