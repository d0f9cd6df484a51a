// Package phone canonicalizes Palestinian mobile numbers into the form the SMS
// provider expects: country code 970 followed by a mobile number starting with 5.
package phone

import (
	"errors"
	"strings"
)

const (
	CountryCode   = "970"
	MobilePrefix  = CountryCode + "5"
	CanonicalSize = 12
)

var ErrInvalid = errors.New("invalid phone number format")

// Normalize strips every non-digit character, replaces a leading trunk 0 with
// the country code, keeps an existing country code, and prefixes it otherwise.
// The result is valid only if it has exactly 12 digits starting with 9705.
func Normalize(raw string) (string, error) {
	digits := digitsOnly(raw)
	if digits == "" {
		return "", ErrInvalid
	}

	var canonical string
	switch {
	case strings.HasPrefix(digits, CountryCode):
		canonical = digits
	case strings.HasPrefix(digits, "0"):
		canonical = CountryCode + digits[1:]
	default:
		canonical = CountryCode + digits
	}

	if len(canonical) != CanonicalSize || !strings.HasPrefix(canonical, MobilePrefix) {
		return "", ErrInvalid
	}
	return canonical, nil
}

func IsValid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalizer lets services take phone canonicalization as a dependency.
type Normalizer struct{}

func (Normalizer) Normalize(raw string) (string, error) {
	return Normalize(raw)
}
