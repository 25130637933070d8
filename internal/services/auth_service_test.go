package services

import (
	"testing"
	"time"

	"github.com/mpgepmc/backend/internal/models"
	jwtpkg "github.com/mpgepmc/backend/pkg/jwt"
	"github.com/mpgepmc/backend/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSignup_CreatesInactiveUserAndSendsOTP(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.auth.Signup(validSignupInput())
	require.NoError(t, err)

	assert.False(t, user.IsActive)
	assert.NotEmpty(t, user.Password)
	assert.NotEqual(t, "Str0ng@Pass", user.Password)

	require.Len(t, env.mailer.otpRecipients, 1)
	assert.Equal(t, user.Email, env.mailer.otpRecipients[0])

	record, err := env.otp.Current(user.ID)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, env.mailer.lastOTPCode(t), record.Code)
}

func TestSignup_ValidationFailuresStopBeforePersisting(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name   string
		mutate func(*SignupInput)
		code   string
	}{
		{"bad first name", func(in *SignupInput) { in.FirstName = "Ayesha7" }, "invalid_name_format"},
		{"missing custom gender", func(in *SignupInput) { in.Gender = models.GenderOther }, "custom_gender_required"},
		{"under age", func(in *SignupInput) { in.DateOfBirth = time.Now().UTC().AddDate(-10, 0, 0) }, "too_young"},
		{"blocked domain", func(in *SignupInput) { in.Email = "ayesha@hotmail.com" }, "invalid_domain"},
		{"bad operator", func(in *SignupInput) { in.MobileNumber = "+923991234567" }, "invalid_mobile_number_format"},
		{"weak password", func(in *SignupInput) { in.Password = "password" }, "invalid_password_complexity"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validSignupInput()
			tc.mutate(&input)

			var vErr *validation.Error
			_, err := env.auth.Signup(input)
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.code, vErr.Code)
		})
	}

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, env.mailer.otpRecipients)
}

func TestSignup_DuplicateEmailOrMobileConflicts(t *testing.T) {
	env := newTestEnv(t)
	env.signupUser(t)

	dup := validSignupInput()
	dup.MobileNumber = "+923011234567"
	_, err := env.auth.Signup(dup)
	assert.ErrorIs(t, err, ErrConflict)

	dup = validSignupInput()
	dup.Email = "ayesha.other@gmail.com"
	_, err = env.auth.Signup(dup)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSignup_DeliveryFailureRollsBackUser(t *testing.T) {
	env := newTestEnv(t)
	env.mailer.failOTP = true

	var dErr *DeliveryError
	_, err := env.auth.Signup(validSignupInput())
	require.ErrorAs(t, err, &dErr)

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, env.db.Model(&models.OTPRecord{}).Count(&count).Error)
	assert.Zero(t, count)

	// The address is free to sign up again once delivery works.
	env.mailer.failOTP = false
	_, err = env.auth.Signup(validSignupInput())
	assert.NoError(t, err)
}

func TestSignIn_UnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	_, _, _, err := env.auth.SignIn("nobody@gmail.com", "Str0ng@Pass")
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestSignIn_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	user := env.signupUser(t)

	_, _, _, err := env.auth.SignIn(user.Email, "Wrong@Pass1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignIn_UnverifiedWithLiveOTP(t *testing.T) {
	env := newTestEnv(t)
	user := env.signupUser(t)

	_, _, got, err := env.auth.SignIn(user.Email, "Str0ng@Pass")
	assert.ErrorIs(t, err, ErrVerificationPending)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)

	// The pending code is not regenerated.
	assert.Len(t, env.mailer.otpCodes, 1)
}

func TestSignIn_UnverifiedWithExpiredOTPRegenerates(t *testing.T) {
	env := newTestEnv(t)
	user := env.signupUser(t)
	env.expireOTP(t, user)

	_, _, _, err := env.auth.SignIn(user.Email, "Str0ng@Pass")
	assert.ErrorIs(t, err, ErrVerificationRequired)
	assert.Len(t, env.mailer.otpCodes, 2)

	record, err := env.otp.Current(user.ID)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.False(t, record.IsExpired(time.Now().UTC()))
}

func TestSignupVerifySignInFlow(t *testing.T) {
	env := newTestEnv(t)
	user := env.signupUser(t)

	require.NoError(t, env.otp.Verify(user, env.mailer.lastOTPCode(t)))
	assert.True(t, user.IsActive)

	access, refresh, got, err := env.auth.SignIn(user.Email, "Str0ng@Pass")
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.Equal(t, user.ID, got.ID)

	claims, err := env.auth.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)

	// The refresh token is persisted and exchangeable.
	newAccess, err := env.auth.RefreshToken(refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, newAccess)
}

func TestRefreshToken_RejectsAccessToken(t *testing.T) {
	env := newTestEnv(t)

	access, err := jwtpkg.GenerateToken("some-user", jwtpkg.AccessToken, env.cfg.JWTSecret, time.Minute)
	require.NoError(t, err)

	_, err = env.auth.RefreshToken(access)
	assert.EqualError(t, err, "invalid token type")
}

func TestLogout_DeletesRefreshTokens(t *testing.T) {
	env := newTestEnv(t)
	user := env.signupUser(t)
	require.NoError(t, env.otp.Verify(user, env.mailer.lastOTPCode(t)))

	_, refresh, _, err := env.auth.SignIn(user.Email, "Str0ng@Pass")
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(user.ID, ""))

	_, err = env.auth.RefreshToken(refresh)
	assert.EqualError(t, err, "refresh token not found")
}

func TestCleanupExpiredTokens(t *testing.T) {
	env := newTestEnv(t)
	user := env.signupUser(t)

	stale := models.RefreshToken{
		UserID:    user.ID,
		Token:     "stale-token",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, env.db.Create(&stale).Error)

	require.NoError(t, env.auth.CleanupExpiredTokens())

	err := env.db.Where("token = ?", "stale-token").First(&models.RefreshToken{}).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCreateDefaultSuperuser_Idempotent(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.auth.CreateDefaultSuperuser())
	require.NoError(t, env.auth.CreateDefaultSuperuser())

	var count int64
	err := env.db.Model(&models.User{}).Where("email = ?", env.cfg.AdminEmail).Count(&count).Error
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	admin, err := env.users.GetUserByEmail(env.cfg.AdminEmail)
	require.NoError(t, err)
	assert.True(t, admin.IsActive)
	assert.True(t, admin.IsStaff)
	assert.True(t, admin.IsSuperuser)
}
