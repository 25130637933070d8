package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mpgepmc/backend/internal/config"
	"github.com/mpgepmc/backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database migrated to the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		FrontendURL:             "http://localhost:3000",
		JWTSecret:               "test-secret",
		JWTAccessTokenDuration:  time.Hour,
		JWTRefreshTokenDuration: 24 * time.Hour,
		AdminEmail:              "admin@mpgepmc.com",
		AdminPassword:           "Admin123!",
		AdminMobileNumber:       "+12025550100",
		OTPExpiry:               30 * time.Minute,
		OTPMaxFailAttempts:      3,
		ResetTokenExpiry:        2 * time.Hour,
		AllowedEmailDomains:     []string{"gmail.com", "yahoo.com", "mpgepmc.com"},
		MinSignupAge:            12,
		MaxSignupAge:            150,
		BcryptCost:              4,
	}
}

// stubMailer records sends and can be told to fail, standing in for the
// best-effort notification contract.
type stubMailer struct {
	failOTP   bool
	failReset bool

	otpRecipients []string
	otpCodes      []string
	resetURLs     []string
}

func (m *stubMailer) SendOTPEmail(to, firstName, code string) error {
	if m.failOTP {
		return errors.New("smtp unavailable")
	}
	m.otpRecipients = append(m.otpRecipients, to)
	m.otpCodes = append(m.otpCodes, code)
	return nil
}

func (m *stubMailer) SendPasswordResetEmail(to, firstName, resetURL string) error {
	if m.failReset {
		return errors.New("smtp unavailable")
	}
	m.resetURLs = append(m.resetURLs, resetURL)
	return nil
}

func (m *stubMailer) lastOTPCode(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, m.otpCodes, "no OTP email was sent")
	return m.otpCodes[len(m.otpCodes)-1]
}

// testEnv bundles the wired services backed by one test database.
type testEnv struct {
	db     *gorm.DB
	cfg    *config.Config
	mailer *stubMailer

	users       *UserService
	mobileRules *MobileRuleService
	otp         *OTPService
	auth        *AuthService
	reset       *PasswordResetService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	cfg := newTestConfig()
	mailer := &stubMailer{}

	mobileRules := NewMobileRuleService(db)
	require.NoError(t, mobileRules.SeedDefaults())

	otp := NewOTPService(db, mailer, cfg)

	return &testEnv{
		db:          db,
		cfg:         cfg,
		mailer:      mailer,
		users:       NewUserService(db),
		mobileRules: mobileRules,
		otp:         otp,
		auth:        NewAuthService(db, nil, cfg, otp, mobileRules),
		reset:       NewPasswordResetService(db, mailer, cfg),
	}
}

func validSignupInput() SignupInput {
	return SignupInput{
		FirstName:    "Ayesha",
		LastName:     "Khan",
		Gender:       models.GenderFemale,
		DateOfBirth:  time.Date(1995, time.April, 10, 0, 0, 0, 0, time.UTC),
		Email:        "ayesha.khan@gmail.com",
		MobileNumber: "+923001234567",
		Password:     "Str0ng@Pass",
	}
}

// signupUser registers a fresh inactive user through the real signup path.
func (e *testEnv) signupUser(t *testing.T) *models.User {
	t.Helper()
	user, err := e.auth.Signup(validSignupInput())
	require.NoError(t, err)
	return user
}

// expireOTP backdates the user's OTP record so the code counts as expired.
func (e *testEnv) expireOTP(t *testing.T, user *models.User) {
	t.Helper()
	err := e.db.Model(&models.OTPRecord{}).
		Where("user_id = ?", user.ID).
		Update("expires_at", time.Now().UTC().Add(-time.Minute)).Error
	require.NoError(t, err)
}
