// utils/validator.go - Input validation helpers
package utils

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail reports whether the address looks deliverable enough to
// attempt SMTP delivery.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePassword enforces the credential policy. The second return value is
// the user-facing explanation when the check fails. The upper bound matches
// bcrypt's 72-byte input limit.
func ValidatePassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters"
	}
	if len(password) > 72 {
		return false, "Password must be at most 72 characters"
	}
	return true, ""
}

// SanitizeInput trims free-text input and strips null bytes before it is
// persisted or embedded in audit details.
func SanitizeInput(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	return strings.TrimSpace(input)
}
