package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/mpgepmc/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDefaults_InstallsOnceAndKeepsEdits(t *testing.T) {
	env := newTestEnv(t)

	rules, err := env.mobileRules.List()
	require.NoError(t, err)
	require.Len(t, rules, 3)

	// Seeding again on a populated table is a no-op.
	require.NoError(t, env.mobileRules.SeedDefaults())
	rules, err = env.mobileRules.List()
	require.NoError(t, err)
	assert.Len(t, rules, 3)
}

func TestMobileRuleList_LongestCodeFirst(t *testing.T) {
	env := newTestEnv(t)

	rules, err := env.mobileRules.List()
	require.NoError(t, err)
	require.Len(t, rules, 3)

	assert.Equal(t, "+91", rules[0].CountryCode)
	assert.Equal(t, "+92", rules[1].CountryCode)
	assert.Equal(t, "+1", rules[2].CountryCode)
}

func TestMobileRuleCreate(t *testing.T) {
	env := newTestEnv(t)

	rule := models.MobileValidationRule{
		CountryCode:      "+44",
		OperatorPattern:  `7\d{3}`,
		SubscriberLength: 6,
		ExampleFormat:    "+447XXXYYYYYY (10 digits)",
	}
	require.NoError(t, env.mobileRules.Create(&rule))
	assert.NotEqual(t, uuid.Nil, rule.ID)

	// The new rule takes part in validation immediately.
	parsed, err := env.mobileRules.ValidationRules()
	require.NoError(t, err)
	assert.Len(t, parsed, 4)

	dup := models.MobileValidationRule{
		CountryCode:      "+44",
		OperatorPattern:  `7\d{3}`,
		SubscriberLength: 6,
		ExampleFormat:    "+447XXXYYYYYY (10 digits)",
	}
	err = env.mobileRules.Create(&dup)
	assert.EqualError(t, err, "a rule for this country code already exists")
}

func TestMobileRuleCreate_RejectsBadRules(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name string
		rule models.MobileValidationRule
		want string
	}{
		{
			name: "missing plus",
			rule: models.MobileValidationRule{CountryCode: "44", OperatorPattern: `7\d`, SubscriberLength: 7},
			want: "country code must start with '+' followed by digits",
		},
		{
			name: "zero subscriber digits",
			rule: models.MobileValidationRule{CountryCode: "+44", OperatorPattern: `7\d`, SubscriberLength: 0},
			want: "subscriber length must be at least 1",
		},
		{
			name: "broken pattern",
			rule: models.MobileValidationRule{CountryCode: "+44", OperatorPattern: `7[`, SubscriberLength: 7},
			want: "operator pattern is not a valid regular expression",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := env.mobileRules.Create(&tc.rule)
			assert.EqualError(t, err, tc.want)
		})
	}
}

func TestMobileRuleUpdate(t *testing.T) {
	env := newTestEnv(t)

	rules, err := env.mobileRules.List()
	require.NoError(t, err)

	var pk *models.MobileValidationRule
	for i := range rules {
		if rules[i].CountryCode == "+92" {
			pk = &rules[i]
		}
	}
	require.NotNil(t, pk)

	updated := models.MobileValidationRule{
		CountryCode:      "+92",
		OperatorPattern:  `3\d{2}`,
		SubscriberLength: 7,
		ExampleFormat:    "+923XXYYYYYYY (7 digits)",
	}
	require.NoError(t, env.mobileRules.Update(pk.ID, &updated))

	// The relaxed operator pattern now accepts what the default rejected.
	input := validSignupInput()
	input.MobileNumber = "+923991234567"
	_, err = env.auth.Signup(input)
	assert.NoError(t, err)

	err = env.mobileRules.Update(uuid.New(), &updated)
	assert.EqualError(t, err, "mobile validation rule not found")
}

func TestMobileRuleDelete(t *testing.T) {
	env := newTestEnv(t)

	rules, err := env.mobileRules.List()
	require.NoError(t, err)
	require.NotEmpty(t, rules)

	require.NoError(t, env.mobileRules.Delete(rules[0].ID))

	remaining, err := env.mobileRules.List()
	require.NoError(t, err)
	assert.Len(t, remaining, len(rules)-1)

	err = env.mobileRules.Delete(rules[0].ID)
	assert.EqualError(t, err, "mobile validation rule not found")
}
