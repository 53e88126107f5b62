package password

import (
	"fmt"
	"unicode"
)

// Policy defines password strength requirements. The zero value rejects
// everything; use [DefaultPolicy] as a starting point.
type Policy struct {
	MinLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireDigit   bool
	RequireSpecial bool
}

// DefaultPolicy requires 8+ characters with all four character classes.
func DefaultPolicy() Policy {
	return Policy{
		MinLength:      8,
		RequireUpper:   true,
		RequireLower:   true,
		RequireDigit:   true,
		RequireSpecial: true,
	}
}

// Validate checks pw against the policy and returns one message per unmet
// rule. An empty slice means the password satisfies the policy.
func (p Policy) Validate(pw string) []string {
	var violations []string

	if len(pw) < p.MinLength {
		violations = append(violations, fmt.Sprintf("password must be at least %d characters long", p.MinLength))
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if p.RequireUpper && !hasUpper {
		violations = append(violations, "password must contain an uppercase letter")
	}
	if p.RequireLower && !hasLower {
		violations = append(violations, "password must contain a lowercase letter")
	}
	if p.RequireDigit && !hasDigit {
		violations = append(violations, "password must contain a digit")
	}
	if p.RequireSpecial && !hasSpecial {
		violations = append(violations, "password must contain a special character")
	}

	return violations
}
