package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"sndot/pkg/domain"
)

// Required rejects nil, blank strings, and zero dates.
func Required() Rule {
	return RuleFunc(func(value any, field string) error {
		if IsEmpty(value) {
			return ruleError(field, "is required")
		}
		return nil
	})
}

// Text rejects values that are present but not text. Empty values are left to Required.
func Text() Rule {
	return RuleFunc(func(value any, field string) error {
		if IsEmpty(value) {
			return nil
		}
		if _, ok := AsString(value); !ok {
			return formatError(field, "must be text")
		}
		return nil
	})
}

// PersonName requires a non-empty value made of Unicode letters and spaces.
func PersonName() Rule {
	return RuleFunc(func(value any, field string) error {
		s, ok := AsString(value)
		if !ok || s == "" {
			return ruleError(field, "must be a non-empty string containing only letters")
		}
		for _, r := range s {
			if r != ' ' && !unicode.IsLetter(r) {
				return ruleError(field, "must be a non-empty string containing only letters")
			}
		}
		return nil
	})
}

// IntRange accepts whole numbers in [min, max]. Empty values are left to Required.
func IntRange(min, max int) Rule {
	return RuleFunc(func(value any, field string) error {
		if IsEmpty(value) {
			return nil
		}
		n, ok := AsInt(value)
		if !ok {
			return formatError(field, "must be a whole number")
		}
		if n < min || n > max {
			return ruleError(field, fmt.Sprintf("must be between %d and %d", min, max))
		}
		return nil
	})
}

// OneOf accepts exact members of allowed. Empty values are left to Required.
func OneOf(allowed ...string) Rule {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	msg := "must be one of: " + strings.Join(allowed, ", ")
	return RuleFunc(func(value any, field string) error {
		if IsEmpty(value) {
			return nil
		}
		s, ok := AsString(value)
		if !ok {
			return formatError(field, "must be text")
		}
		if _, ok := set[s]; !ok {
			return ruleError(field, msg)
		}
		return nil
	})
}

// MaxLength bounds the rune length of text values.
func MaxLength(n int) Rule {
	return RuleFunc(func(value any, field string) error {
		s, ok := AsString(value)
		if !ok {
			return nil
		}
		if len([]rune(s)) > n {
			return ruleError(field, fmt.Sprintf("must be at most %d characters", n))
		}
		return nil
	})
}

// PastDate accepts a parseable calendar date not after now().
func PastDate(now func() time.Time) Rule {
	return RuleFunc(func(value any, field string) error {
		if IsEmpty(value) {
			return nil
		}
		d, ok := AsDate(value)
		if !ok {
			return formatError(field, "must be a date (YYYY-MM-DD or DD/MM/YYYY)")
		}
		if d.After(dateOnly(now())) {
			return ruleError(field, "must not be in the future")
		}
		return nil
	})
}

// NationalID requires a CPF with valid check digits.
func NationalID() Rule {
	return RuleFunc(func(value any, field string) error {
		if IsEmpty(value) {
			return nil
		}
		s, ok := AsString(value)
		if !ok {
			return formatError(field, "must be text")
		}
		_, err := domain.ParseNationalID(s)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, domain.ErrInvalidNationalIDChecksum):
			return ruleError(field, "has invalid check digits")
		default:
			return formatError(field, "must contain exactly 11 digits")
		}
	})
}
