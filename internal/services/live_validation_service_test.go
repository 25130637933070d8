package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newLiveValidation(t *testing.T) (*testEnv, *LiveValidationService) {
	t.Helper()
	env := newTestEnv(t)
	return env, NewLiveValidationService(env.users, env.mobileRules, env.cfg)
}

func TestLiveValidation_Fields(t *testing.T) {
	_, live := newLiveValidation(t)

	cases := []struct {
		name    string
		field   string
		value   string
		gender  string
		custom  string
		valid   bool
		message string
	}{
		{name: "first name ok", field: "first_name", value: "Ayesha", valid: true},
		{name: "first name digits", field: "first_name", value: "Ayesha7", valid: false,
			message: "First Name contains invalid characters. Only letters, spaces, periods (.), hyphens (-), and underscores (_) are allowed."},
		{name: "middle name empty is fine", field: "middle_name", value: "", valid: true},
		{name: "last name required", field: "last_name", value: "", valid: false,
			message: "This field is required."},
		{name: "gender known", field: "gender", value: "F", valid: true},
		{name: "gender unknown", field: "gender", value: "X", valid: false,
			message: "Invalid gender selected."},
		{name: "custom gender needs other", field: "custom_gender", value: "", gender: "O", valid: false,
			message: "You must specify your gender when 'Other' is selected."},
		{name: "custom gender ok", field: "custom_gender", value: "Nonbinary", gender: "O", valid: true},
		{name: "dob malformed", field: "date_of_birth", value: "31-12-1990", valid: false,
			message: "Enter a valid date in YYYY-MM-DD format."},
		{name: "dob ok", field: "date_of_birth", value: "1990-12-31", valid: true},
		{name: "email bad domain", field: "email", value: "a@hotmail.com", valid: false},
		{name: "email ok", field: "email", value: "fresh@gmail.com", valid: true},
		{name: "mobile bad operator", field: "mobile_number", value: "+923991234567", valid: false},
		{name: "mobile ok", field: "mobile_number", value: "+923001234567", valid: true},
		{name: "password weak", field: "password", value: "password", valid: false},
		{name: "password ok", field: "password", value: "Str0ng@Pass", valid: true},
		{name: "unknown field passes", field: "nickname", value: "anything", valid: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			valid, message := live.Check(tc.field, tc.value, tc.gender, tc.custom)
			assert.Equal(t, tc.valid, valid)
			if tc.message != "" {
				assert.Equal(t, tc.message, message)
			}
			if tc.valid {
				assert.Empty(t, message)
			}
		})
	}
}

func TestLiveValidation_TakenEmailAndMobile(t *testing.T) {
	env, live := newLiveValidation(t)
	user := env.signupUser(t)

	valid, message := live.Check("email", user.Email, "", "")
	assert.False(t, valid)
	assert.Equal(t, "This email is already registered.", message)

	valid, message = live.Check("mobile_number", user.MobileNumber, "", "")
	assert.False(t, valid)
	assert.Equal(t, "This mobile number is already registered.", message)
}
