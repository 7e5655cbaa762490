package helpers

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// PasswordSpecialChars is the set a password must draw at least one character from.
const PasswordSpecialChars = "@$!%*#?&"

// HashPassword hashes the plain text password using bcrypt.
// A cost below bcrypt.MinCost falls back to bcrypt.DefaultCost.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword compares a bcrypt hash with a plain password
func CompareHashAndPassword(hash string, plain string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// ValidatePasswordStrength requires at least 8 characters including a letter,
// a digit and one of PasswordSpecialChars.
func ValidatePasswordStrength(pw string) bool {
	if len([]rune(pw)) < 8 {
		return false
	}
	var letter, digit, special bool
	for _, r := range pw {
		switch {
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSpecialChars, r):
			special = true
		}
	}
	return letter && digit && special
}
