package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prn-tf/sentinel/internal/config"
)

func codes(errs []IdentityError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Code)
	}
	return out
}

func TestPasswordPolicy_Validate(t *testing.T) {
	policy := DefaultPasswordPolicy()

	tests := []struct {
		name     string
		password string
		want     []string
	}{
		{name: "valid", password: "Password123!", want: []string{}},
		{name: "short but complete", password: "Aa1!", want: []string{CodePasswordTooShort}},
		{name: "no symbol", password: "Password123", want: []string{CodePasswordRequiresNonAlphanumeric}},
		{name: "no digit", password: "Password!!", want: []string{CodePasswordRequiresDigit}},
		{name: "no lower", password: "PASSWORD1!", want: []string{CodePasswordRequiresLower}},
		{name: "no upper", password: "password1!", want: []string{CodePasswordRequiresUpper}},
		{name: "empty", password: "", want: []string{
			CodePasswordTooShort,
			CodePasswordRequiresNonAlphanumeric,
			CodePasswordRequiresDigit,
			CodePasswordRequiresLower,
			CodePasswordRequiresUpper,
			CodePasswordRequiresUniqueChars,
		}},
		{name: "non ascii letters count as symbols", password: "Senhaç1a", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codes(policy.Validate(tt.password)))
		})
	}
}

func TestPasswordPolicy_UniqueChars(t *testing.T) {
	policy := PasswordPolicy{RequiredLength: 1, RequiredUniqueChars: 3}

	errs := policy.Validate("aaaaaa")
	assert.Equal(t, []string{CodePasswordRequiresUniqueChars}, codes(errs))
	assert.Equal(t, "Passwords must use at least 3 different characters.", errs[0].Description)

	assert.Empty(t, policy.Validate("abcabc"))
}

func TestPasswordPolicy_Descriptions(t *testing.T) {
	errs := DefaultPasswordPolicy().Validate("abc")
	assert.Equal(t, "Passwords must be at least 6 characters.", errs[0].Description)
}

func TestPasswordPolicyFromConfig(t *testing.T) {
	p := PasswordPolicyFromConfig(config.PasswordConfig{RequiredLength: 12, RequireDigit: true})
	assert.Equal(t, 12, p.RequiredLength)
	assert.True(t, p.RequireDigit)
	assert.False(t, p.RequireUppercase)
	assert.Equal(t, []string{CodePasswordRequiresDigit}, codes(p.Validate("abcdefghijkl")))
}
