package service

import "unicode"

// minPasswordLength is the minimum accepted secret length.
const minPasswordLength = 8

// validatePassword checks the secret-strength policy: at least 8 characters
// with at least one letter and one digit. Returns a human-readable message
// for form display, or "" when the password passes.
func validatePassword(password string) string {
	if len(password) < minPasswordLength {
		return "must be at least 8 characters"
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return "must contain at least one letter and one digit"
	}
	return ""
}
