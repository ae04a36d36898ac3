package service

import (
	"fmt"
	"unicode/utf8"

	"github.com/prn-tf/sentinel/internal/config"
)

// Identity error codes.
const (
	CodePasswordTooShort                = "PasswordTooShort"
	CodePasswordRequiresNonAlphanumeric = "PasswordRequiresNonAlphanumeric"
	CodePasswordRequiresDigit           = "PasswordRequiresDigit"
	CodePasswordRequiresLower           = "PasswordRequiresLower"
	CodePasswordRequiresUpper           = "PasswordRequiresUpper"
	CodePasswordRequiresUniqueChars     = "PasswordRequiresUniqueChars"
	CodeInvalidUserName                 = "InvalidUserName"
	CodeDuplicateUserName               = "DuplicateUserName"
	CodeInvalidEmail                    = "InvalidEmail"
)

// PasswordPolicy is the set of rules a new password must satisfy.
type PasswordPolicy struct {
	RequiredLength         int
	RequiredUniqueChars    int
	RequireDigit           bool
	RequireLowercase       bool
	RequireUppercase       bool
	RequireNonAlphanumeric bool
}

// DefaultPasswordPolicy returns the default rules: six characters with a digit,
// a lowercase letter, an uppercase letter and a symbol.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		RequiredLength:         6,
		RequiredUniqueChars:    1,
		RequireDigit:           true,
		RequireLowercase:       true,
		RequireUppercase:       true,
		RequireNonAlphanumeric: true,
	}
}

// PasswordPolicyFromConfig converts the password configuration section.
func PasswordPolicyFromConfig(cfg config.PasswordConfig) PasswordPolicy {
	return PasswordPolicy{
		RequiredLength:         cfg.RequiredLength,
		RequiredUniqueChars:    cfg.RequiredUniqueChars,
		RequireDigit:           cfg.RequireDigit,
		RequireLowercase:       cfg.RequireLowercase,
		RequireUppercase:       cfg.RequireUppercase,
		RequireNonAlphanumeric: cfg.RequireNonAlphanumeric,
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }

func isLetterOrDigit(r rune) bool {
	return isDigit(r) || isLower(r) || isUpper(r)
}

// Validate returns every rule the password breaks, in a stable order.
func (p PasswordPolicy) Validate(password string) []IdentityError {
	var errs []IdentityError

	if utf8.RuneCountInString(password) < p.RequiredLength {
		errs = append(errs, IdentityError{
			Code:        CodePasswordTooShort,
			Description: fmt.Sprintf("Passwords must be at least %d characters.", p.RequiredLength),
		})
	}

	var hasDigit, hasLower, hasUpper, hasSymbol bool
	unique := make(map[rune]struct{})
	for _, r := range password {
		switch {
		case isDigit(r):
			hasDigit = true
		case isLower(r):
			hasLower = true
		case isUpper(r):
			hasUpper = true
		}
		if !isLetterOrDigit(r) {
			hasSymbol = true
		}
		unique[r] = struct{}{}
	}

	if p.RequireNonAlphanumeric && !hasSymbol {
		errs = append(errs, IdentityError{
			Code:        CodePasswordRequiresNonAlphanumeric,
			Description: "Passwords must have at least one non alphanumeric character.",
		})
	}
	if p.RequireDigit && !hasDigit {
		errs = append(errs, IdentityError{
			Code:        CodePasswordRequiresDigit,
			Description: "Passwords must have at least one digit ('0'-'9').",
		})
	}
	if p.RequireLowercase && !hasLower {
		errs = append(errs, IdentityError{
			Code:        CodePasswordRequiresLower,
			Description: "Passwords must have at least one lowercase ('a'-'z').",
		})
	}
	if p.RequireUppercase && !hasUpper {
		errs = append(errs, IdentityError{
			Code:        CodePasswordRequiresUpper,
			Description: "Passwords must have at least one uppercase ('A'-'Z').",
		})
	}
	if p.RequiredUniqueChars >= 1 && len(unique) < p.RequiredUniqueChars {
		errs = append(errs, IdentityError{
			Code:        CodePasswordRequiresUniqueChars,
			Description: fmt.Sprintf("Passwords must use at least %d different characters.", p.RequiredUniqueChars),
		})
	}

	return errs
}
