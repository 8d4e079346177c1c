package auth

import (
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"gympulse/internal/errs"
)

const minPasswordLen = 8

// HashPassword hashes a plaintext password using bcrypt with DefaultCost.
func HashPassword(pw string) (string, error) {
	if utf8.RuneCountInString(pw) < minPasswordLen {
		return "", errs.Validation("password", "password must have at least 8 characters")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		// bcrypt rejects inputs longer than 72 bytes
		return "", errs.Validation("password", "password is too long")
	}
	return string(b), nil
}

// CheckPassword compares a bcrypt hash with a candidate plaintext password.
func CheckPassword(hash, pw string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
}
