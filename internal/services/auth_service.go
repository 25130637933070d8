package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/mpgepmc/backend/internal/config"
	"github.com/mpgepmc/backend/internal/models"
	"github.com/mpgepmc/backend/pkg/crypto"
	jwtpkg "github.com/mpgepmc/backend/pkg/jwt"
	"github.com/mpgepmc/backend/pkg/validation"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type AuthService struct {
	db          *gorm.DB
	redis       *redis.Client
	cfg         *config.Config
	otpService  *OTPService
	mobileRules *MobileRuleService
}

func NewAuthService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, otpService *OTPService, mobileRules *MobileRuleService) *AuthService {
	return &AuthService{
		db:          db,
		redis:       redisClient,
		cfg:         cfg,
		otpService:  otpService,
		mobileRules: mobileRules,
	}
}

// SignupInput carries the validated-to-be signup fields.
type SignupInput struct {
	FirstName    string
	MiddleName   string
	LastName     string
	Gender       string
	CustomGender string
	DateOfBirth  time.Time
	Email        string
	MobileNumber string
	Password     string
}

// validateSignup runs the full ordered rule set; the first failure wins.
func (s *AuthService) validateSignup(input *SignupInput) error {
	if err := validation.ValidateName(input.FirstName, "First Name"); err != nil {
		return err
	}
	if input.MiddleName != "" {
		if err := validation.ValidateName(input.MiddleName, "Middle Name"); err != nil {
			return err
		}
	}
	if err := validation.ValidateName(input.LastName, "Last Name"); err != nil {
		return err
	}
	if err := validation.ValidateGender(input.Gender, input.CustomGender); err != nil {
		return err
	}
	if err := validation.ValidateBirthDate(input.DateOfBirth, time.Now().UTC(), s.cfg.MinSignupAge, s.cfg.MaxSignupAge); err != nil {
		return err
	}
	if err := validation.ValidateEmail(input.Email, s.cfg.AllowedEmailDomains); err != nil {
		return err
	}

	rules, err := s.mobileRules.ValidationRules()
	if err != nil {
		return err
	}
	if err := validation.ValidateMobileNumber(input.MobileNumber, rules); err != nil {
		return err
	}

	return validation.ValidatePassword(input.Password)
}

// Signup validates the input, persists an inactive user and issues the first
// OTP. If the verification email cannot be sent the user record is rolled
// back so the store stays consistent.
func (s *AuthService) Signup(input SignupInput) (*models.User, error) {
	if err := s.validateSignup(&input); err != nil {
		return nil, err
	}

	var existing models.User
	err := s.db.Where("email = ? OR mobile_number = ?", input.Email, input.MobileNumber).First(&existing).Error
	if err == nil {
		return nil, ErrConflict
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := crypto.HashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	customGender := ""
	if input.Gender == models.GenderOther {
		customGender = input.CustomGender
	}

	user := &models.User{
		Email:        input.Email,
		MobileNumber: input.MobileNumber,
		FirstName:    input.FirstName,
		MiddleName:   input.MiddleName,
		LastName:     input.LastName,
		Gender:       input.Gender,
		CustomGender: customGender,
		DateOfBirth:  input.DateOfBirth,
		Password:     hash,
		IsActive:     false,
	}

	if err := s.db.Create(user).Error; err != nil {
		// A concurrent duplicate insert loses at the constraint.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}

	if err := s.otpService.Generate(user); err != nil {
		var dErr *DeliveryError
		if errors.As(err, &dErr) {
			s.rollbackSignup(user)
		}
		return nil, err
	}

	return user, nil
}

func (s *AuthService) rollbackSignup(user *models.User) {
	if err := s.db.Where("user_id = ?", user.ID).Delete(&models.OTPRecord{}).Error; err != nil {
		log.Printf("WARN: signup rollback: failed to delete OTP record for %s: %v", user.Email, err)
	}
	if err := s.db.Delete(user).Error; err != nil {
		log.Printf("WARN: signup rollback: failed to delete user %s: %v", user.Email, err)
	}
}

// SignIn authenticates by email and password and returns token pair plus the
// user. An unknown email is reported distinctly from a wrong password; an
// unverified account triggers a fresh OTP only when no unexpired one exists.
func (s *AuthService) SignIn(email, password string) (string, string, *models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", nil, ErrNotRegistered
		}
		return "", "", nil, err
	}

	if !crypto.CheckPassword(password, user.Password) {
		return "", "", nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		record, err := s.otpService.Current(user.ID)
		if err != nil {
			return "", "", nil, err
		}
		if record != nil && !record.IsExpired(time.Now().UTC()) {
			return "", "", &user, ErrVerificationPending
		}
		if err := s.otpService.Generate(&user); err != nil {
			return "", "", &user, err
		}
		return "", "", &user, ErrVerificationRequired
	}

	accessToken, err := jwtpkg.GenerateToken(user.ID.String(), jwtpkg.AccessToken, s.cfg.JWTSecret, s.cfg.JWTAccessTokenDuration)
	if err != nil {
		return "", "", nil, err
	}

	refreshToken, err := jwtpkg.GenerateToken(user.ID.String(), jwtpkg.RefreshToken, s.cfg.JWTSecret, s.cfg.JWTRefreshTokenDuration)
	if err != nil {
		return "", "", nil, err
	}

	refreshTokenModel := &models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshTokenDuration),
	}
	if err := s.db.Create(refreshTokenModel).Error; err != nil {
		return "", "", nil, err
	}

	return accessToken, refreshToken, &user, nil
}

// RefreshToken generates new access token from refresh token
func (s *AuthService) RefreshToken(refreshToken string) (string, error) {
	claims, err := jwtpkg.ValidateToken(refreshToken, s.cfg.JWTSecret)
	if err != nil {
		return "", errors.New("invalid refresh token")
	}

	if claims.TokenType != jwtpkg.RefreshToken {
		return "", errors.New("invalid token type")
	}

	var tokenModel models.RefreshToken
	if err := s.db.Where("token = ?", refreshToken).First(&tokenModel).Error; err != nil {
		return "", errors.New("refresh token not found")
	}

	if time.Now().After(tokenModel.ExpiresAt) {
		return "", errors.New("refresh token expired")
	}

	accessToken, err := jwtpkg.GenerateToken(claims.UserID, jwtpkg.AccessToken, s.cfg.JWTSecret, s.cfg.JWTAccessTokenDuration)
	if err != nil {
		return "", err
	}

	return accessToken, nil
}

// Logout deletes the user's refresh tokens and blacklists the presented
// access token for its remaining lifetime.
func (s *AuthService) Logout(userID uuid.UUID, accessToken string) error {
	if err := s.db.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
		return err
	}

	if s.redis != nil && accessToken != "" {
		remaining := s.cfg.JWTAccessTokenDuration
		if claims, err := jwtpkg.ValidateToken(accessToken, s.cfg.JWTSecret); err == nil && claims.ExpiresAt != nil {
			remaining = time.Until(claims.ExpiresAt.Time)
		}
		if remaining > 0 {
			ctx := context.Background()
			blacklistKey := fmt.Sprintf("blacklist:token:%s", accessToken)
			if err := s.redis.Set(ctx, blacklistKey, "1", remaining).Err(); err != nil {
				log.Printf("WARN: could not blacklist access token: %v", err)
			}
		}
	}
	return nil
}

// ValidateAccessToken validates an access token and returns claims
func (s *AuthService) ValidateAccessToken(token string) (*jwtpkg.Claims, error) {
	claims, err := jwtpkg.ValidateToken(token, s.cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	if claims.TokenType != jwtpkg.AccessToken {
		return nil, errors.New("invalid token type")
	}

	// If redis is down, we allow the request to proceed
	if s.redis != nil {
		ctx := context.Background()
		blacklistKey := fmt.Sprintf("blacklist:token:%s", token)
		exists, err := s.redis.Exists(ctx, blacklistKey).Result()
		if err != nil {
			log.Printf("WARN: Could not connect to Redis to check token blacklist: %v", err)
		} else if exists > 0 {
			return nil, errors.New("token is blacklisted")
		}
	}

	return claims, nil
}

// GetUserByID retrieves a user by ID
func (s *AuthService) GetUserByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CleanupExpiredTokens removes expired refresh tokens
func (s *AuthService) CleanupExpiredTokens() error {
	return s.db.Where("expires_at < ?", time.Now()).Delete(&models.RefreshToken{}).Error
}

// CreateDefaultSuperuser seeds the staff account used by the admin endpoints.
// Superusers skip OTP verification and are active immediately.
func (s *AuthService) CreateDefaultSuperuser() error {
	var existing models.User
	err := s.db.Where("email = ?", s.cfg.AdminEmail).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := crypto.HashPassword(s.cfg.AdminPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:        s.cfg.AdminEmail,
		MobileNumber: s.cfg.AdminMobileNumber,
		FirstName:    "Admin",
		LastName:     "User",
		Gender:       models.GenderMale,
		DateOfBirth:  time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
		Password:     hash,
		IsActive:     true,
		IsStaff:      true,
		IsSuperuser:  true,
	}
	return s.db.Create(admin).Error
}
