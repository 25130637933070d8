package services

import (
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/mpgepmc/backend/internal/models"
	"github.com/mpgepmc/backend/pkg/validation"
	"gorm.io/gorm"
)

// MobileRuleService manages the per-country mobile number rule table. The
// validation path treats the table as read-only configuration; writes happen
// through the admin endpoints.
type MobileRuleService struct {
	db *gorm.DB
}

func NewMobileRuleService(db *gorm.DB) *MobileRuleService {
	return &MobileRuleService{db: db}
}

// List returns all rules, longest country code first so prefix matching can
// walk them in order.
func (s *MobileRuleService) List() ([]models.MobileValidationRule, error) {
	var rules []models.MobileValidationRule
	if err := s.db.Order("length(country_code) DESC, country_code ASC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// ValidationRules maps the stored rules into the form the pure validation
// package consumes.
func (s *MobileRuleService) ValidationRules() ([]validation.MobileRule, error) {
	rules, err := s.List()
	if err != nil {
		return nil, err
	}
	out := make([]validation.MobileRule, 0, len(rules))
	for _, r := range rules {
		out = append(out, validation.MobileRule{
			CountryCode:      r.CountryCode,
			OperatorPattern:  r.OperatorPattern,
			SubscriberLength: r.SubscriberLength,
			ExampleFormat:    r.ExampleFormat,
		})
	}
	return out, nil
}

func validateRule(rule *models.MobileValidationRule) error {
	if !strings.HasPrefix(rule.CountryCode, "+") || len(rule.CountryCode) < 2 {
		return errors.New("country code must start with '+' followed by digits")
	}
	if rule.SubscriberLength < 1 {
		return errors.New("subscriber length must be at least 1")
	}
	if _, err := regexp.Compile(rule.OperatorPattern); err != nil {
		return errors.New("operator pattern is not a valid regular expression")
	}
	return nil
}

func (s *MobileRuleService) Create(rule *models.MobileValidationRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	if err := s.db.Create(rule).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.New("a rule for this country code already exists")
		}
		return err
	}
	return nil
}

func (s *MobileRuleService) Update(id uuid.UUID, rule *models.MobileValidationRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	var existing models.MobileValidationRule
	if err := s.db.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("mobile validation rule not found")
		}
		return err
	}

	existing.CountryCode = rule.CountryCode
	existing.OperatorPattern = rule.OperatorPattern
	existing.SubscriberLength = rule.SubscriberLength
	existing.ExampleFormat = rule.ExampleFormat
	return s.db.Save(&existing).Error
}

func (s *MobileRuleService) Delete(id uuid.UUID) error {
	result := s.db.Delete(&models.MobileValidationRule{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("mobile validation rule not found")
	}
	return nil
}

// SeedDefaults installs the initial rule set when the table is empty.
func (s *MobileRuleService) SeedDefaults() error {
	var count int64
	if err := s.db.Model(&models.MobileValidationRule{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []models.MobileValidationRule{
		{
			// Pakistan: operator codes 300-355, 7 subscriber digits.
			CountryCode:      "+92",
			OperatorPattern:  `3(?:[0-4][0-9]|5[0-5])`,
			SubscriberLength: 7,
			ExampleFormat:    "+923XXYYYYYYY (7 digits)",
		},
		{
			// USA/Canada: 3-digit area code 200-999, 7 subscriber digits.
			CountryCode:      "+1",
			OperatorPattern:  `[2-9]\d{2}`,
			SubscriberLength: 7,
			ExampleFormat:    "+1AAAXXXXXXX (10 digits)",
		},
		{
			// India: leading 6-9 plus one digit, 8 subscriber digits.
			CountryCode:      "+91",
			OperatorPattern:  `[6-9]\d`,
			SubscriberLength: 8,
			ExampleFormat:    "+91XXYYYYYYYY (10 digits)",
		},
	}

	return s.db.Create(&defaults).Error
}
