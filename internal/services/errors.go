package services

import (
	"errors"
	"fmt"
)

// ErrConflict is returned when a uniqueness constraint is hit. The message is
// deliberately generic so it does not reveal which field collided.
var ErrConflict = errors.New("a user with this email or mobile number already exists")

// StateError reports an invalid OTP/token state with a distinct user-facing
// message per state.
type StateError struct {
	Code    string
	Message string
}

func (e *StateError) Error() string {
	return e.Message
}

var (
	ErrOTPMissing     = &StateError{Code: "otp_missing", Message: "No active OTP found. Please request a resend."}
	ErrOTPExpired     = &StateError{Code: "otp_expired", Message: "OTP has expired. Please request a new one."}
	ErrOTPInvalidated = &StateError{Code: "otp_invalidated", Message: "OTP invalidated after too many failed attempts. Please request a new code once the current one expires."}
	ErrOTPMismatch    = &StateError{Code: "otp_mismatch", Message: "Invalid OTP code."}
	ErrOTPNotExpired  = &StateError{Code: "otp_not_expired", Message: "The current code has not expired yet. Please wait before requesting a new one."}

	ErrNotRegistered         = &StateError{Code: "not_registered", Message: "This email is not registered. Please sign up."}
	ErrInvalidCredentials    = &StateError{Code: "invalid_credentials", Message: "Invalid credentials."}
	ErrVerificationPending   = &StateError{Code: "verification_pending", Message: "Your account is not verified. A verification code is already active - please check your email."}
	ErrVerificationRequired  = &StateError{Code: "verification_required", Message: "Your account is not verified. A new verification code has been sent to your email."}
	ErrAccountAlreadyActive  = &StateError{Code: "already_verified", Message: "This account is already verified. Please sign in."}
	ErrVerificationNoSession = &StateError{Code: "verification_session_missing", Message: "Verification session expired or missing. Please sign up or sign in again."}

	ErrResetTokenInvalid = &StateError{Code: "reset_token_invalid", Message: "Invalid password reset link."}
	ErrResetTokenExpired = &StateError{Code: "reset_token_expired", Message: "This password reset link has expired. Please request a new one."}
	ErrResetTokenUsed    = &StateError{Code: "reset_token_used", Message: "This password reset link has already been used."}
	ErrWrongOldPassword  = &StateError{Code: "wrong_old_password", Message: "The current password is incorrect."}
	ErrPasswordUnchanged = &StateError{Code: "password_unchanged", Message: "The new password must be different from the current one."}
)

// DeliveryError reports a failed notification send. The caller decides
// whether a rollback is required.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("could not send email: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
