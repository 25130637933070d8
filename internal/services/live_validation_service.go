package services

import (
	"log"
	"time"

	"github.com/mpgepmc/backend/internal/config"
	"github.com/mpgepmc/backend/pkg/validation"
)

// LiveValidationService backs the asynchronous per-field validation endpoint.
// It wraps the same rules the signup form runs, but always answers with a
// boolean plus message instead of an error.
type LiveValidationService struct {
	users       *UserService
	mobileRules *MobileRuleService
	cfg         *config.Config
}

func NewLiveValidationService(users *UserService, mobileRules *MobileRuleService, cfg *config.Config) *LiveValidationService {
	return &LiveValidationService{users: users, mobileRules: mobileRules, cfg: cfg}
}

// Check validates a single field value. Gender context is only consulted for
// the custom_gender field. Unknown fields pass, matching the form's
// permissive dispatch.
func (s *LiveValidationService) Check(field, value, gender, customGender string) (bool, string) {
	switch field {
	case "first_name":
		return toResult(validation.ValidateName(value, "First Name"))
	case "middle_name":
		if value == "" {
			return true, ""
		}
		return toResult(validation.ValidateName(value, "Middle Name"))
	case "last_name":
		return toResult(validation.ValidateName(value, "Last Name"))
	case "gender":
		return toResult(validation.ValidateGender(value, customGender))
	case "custom_gender":
		return toResult(validation.ValidateGender(gender, value))
	case "date_of_birth":
		dob, err := time.Parse("2006-01-02", value)
		if err != nil {
			return false, "Enter a valid date in YYYY-MM-DD format."
		}
		return toResult(validation.ValidateBirthDate(dob, time.Now().UTC(), s.cfg.MinSignupAge, s.cfg.MaxSignupAge))
	case "email":
		if err := validation.ValidateEmail(value, s.cfg.AllowedEmailDomains); err != nil {
			return toResult(err)
		}
		exists, err := s.users.EmailExists(value)
		if err != nil {
			log.Printf("WARN: live validation: email lookup failed: %v", err)
			return false, "Unable to validate this field right now. Please try again."
		}
		if exists {
			return false, "This email is already registered."
		}
		return true, ""
	case "mobile_number":
		rules, err := s.mobileRules.ValidationRules()
		if err != nil {
			log.Printf("WARN: live validation: mobile rule lookup failed: %v", err)
			return false, "Unable to validate this field right now. Please try again."
		}
		if err := validation.ValidateMobileNumber(value, rules); err != nil {
			return toResult(err)
		}
		exists, err := s.users.MobileNumberExists(value)
		if err != nil {
			log.Printf("WARN: live validation: mobile lookup failed: %v", err)
			return false, "Unable to validate this field right now. Please try again."
		}
		if exists {
			return false, "This mobile number is already registered."
		}
		return true, ""
	case "password":
		return toResult(validation.ValidatePassword(value))
	default:
		return true, ""
	}
}

func toResult(err error) (bool, string) {
	if err == nil {
		return true, ""
	}
	return false, err.Error()
}
