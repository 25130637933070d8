package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// Validation constants
const (
	MinNameLetters = 1
	MaxNameLetters = 64

	MinPasswordLength = 8
	MaxPasswordLength = 52
	PasswordSymbols   = "@$!%*#?&"
)

var (
	nameRegex  = regexp.MustCompile(`^[A-Za-z\s._-]+$`)
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// Error is a field-level validation failure with a machine-readable code
// and a human message.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ValidateName checks a name field: only letters, spaces, periods, hyphens
// and underscores are allowed, the letter count must be between 1 and 64
// (separators are ignored in the count), and the value must not end with a
// separator character.
func ValidateName(value, fieldLabel string) error {
	if value == "" {
		return newError("required", "This field is required.")
	}

	if !nameRegex.MatchString(value) {
		return newError("invalid_name_format",
			"%s contains invalid characters. Only letters, spaces, periods (.), hyphens (-), and underscores (_) are allowed.",
			fieldLabel)
	}

	letterCount := 0
	for _, r := range value {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}

	if letterCount < MinNameLetters {
		return newError("name_too_short",
			"%s must contain at least %d letter (non-letter characters are ignored).",
			fieldLabel, MinNameLetters)
	}
	if letterCount > MaxNameLetters {
		return newError("name_too_long",
			"%s cannot contain more than %d letters (non-letter characters are ignored).",
			fieldLabel, MaxNameLetters)
	}

	last := rune(value[len(value)-1])
	if !unicode.IsLetter(last) {
		return newError("name_trailing_separator",
			"%s cannot end with a separator character.", fieldLabel)
	}

	return nil
}

// ValidateBirthDate checks the age in whole years as of now against the
// configured bounds.
func ValidateBirthDate(dob, now time.Time, minAge, maxAge int) error {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}

	if age < minAge {
		return newError("too_young", "you are under age %d yrs", minAge)
	}
	if age > maxAge {
		return newError("too_old", "you are over age %d yrs", maxAge)
	}
	return nil
}

// ValidateEmail checks the local@domain.tld shape and that the domain is on
// the allow-list. Uniqueness against the store is checked separately.
func ValidateEmail(email string, allowedDomains []string) error {
	if !emailRegex.MatchString(email) {
		return newError("invalid_email_format", "Enter a valid email address with a username and domain.")
	}

	at := strings.LastIndex(email, "@")
	domain := strings.ToLower(email[at+1:])
	for _, allowed := range allowedDomains {
		if domain == strings.ToLower(allowed) {
			return nil
		}
	}
	return newError("invalid_domain", "Invalid email domain. Must be one of: %s.",
		strings.Join(allowedDomains, ", "))
}

// ValidatePassword enforces complexity: 8-52 characters with at least one
// lowercase letter, one uppercase letter, one digit and one symbol from the
// fixed set. No characters outside those classes are allowed.
func ValidatePassword(password string) error {
	err := newError("invalid_password_complexity",
		"Password must be %d-%d characters long and contain at least 1 small letter, 1 capital letter, 1 digit, and 1 symbol.",
		MinPasswordLength, MaxPasswordLength)

	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return err
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(PasswordSymbols, r):
			hasSymbol = true
		default:
			return err
		}
	}

	if !hasLower || !hasUpper || !hasDigit || !hasSymbol {
		return err
	}
	return nil
}

// MobileRule is one country's mobile number rule, as configured in the
// administrative rule table.
type MobileRule struct {
	CountryCode      string
	OperatorPattern  string
	SubscriberLength int
	ExampleFormat    string
}

// ValidateMobileNumber matches the number against the rule whose country code
// prefixes it (longest prefix wins) and then requires
// <country code><operator pattern><subscriber digits> exactly.
func ValidateMobileNumber(number string, rules []MobileRule) error {
	var matched *MobileRule
	for i := range rules {
		if strings.HasPrefix(number, rules[i].CountryCode) {
			if matched == nil || len(rules[i].CountryCode) > len(matched.CountryCode) {
				matched = &rules[i]
			}
		}
	}

	if matched == nil {
		codes := make([]string, 0, len(rules))
		for _, r := range rules {
			codes = append(codes, r.CountryCode)
		}
		return newError("invalid_country_code",
			"Mobile number must start with a valid country code: %s.", strings.Join(codes, ", "))
	}

	formatErr := newError("invalid_mobile_number_format",
		"Invalid mobile number format for %s. Expected format (example: %s) with valid operator code and %d user digits.",
		matched.CountryCode, matched.ExampleFormat, matched.SubscriberLength)

	pattern := fmt.Sprintf(`^%s(%s)(\d{%d})$`,
		regexp.QuoteMeta(matched.CountryCode), matched.OperatorPattern, matched.SubscriberLength)
	re, err := regexp.Compile(pattern)
	if err != nil {
		// A misconfigured rule must not let numbers through.
		return formatErr
	}

	if !re.MatchString(number) {
		return formatErr
	}
	return nil
}

// ValidateGender checks the gender choice and its qualifier: "O" requires a
// non-empty custom value that passes the name rule; for "M"/"F" the qualifier
// is ignored.
func ValidateGender(gender, customGender string) error {
	switch gender {
	case "M", "F":
		return nil
	case "O":
		if strings.TrimSpace(customGender) == "" {
			return newError("custom_gender_required",
				"You must specify your gender when 'Other' is selected.")
		}
		return ValidateName(customGender, "Custom Gender")
	default:
		return newError("invalid_gender", "Invalid gender selected.")
	}
}
