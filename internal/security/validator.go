package security

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// MaxCredentialLen bounds operator-supplied usernames and passwords.
const MaxCredentialLen = 64

var (
	ErrEmptyCredential   = errors.New("value must not be empty")
	ErrCredentialTooLong = errors.New("value must be at most 64 characters")
	ErrCredentialSpace   = errors.New("value must not contain spaces")
)

// SanitizeInput removes potentially dangerous characters
func SanitizeInput(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")
	// Remove control characters except newline/tab
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\n' || r == '\t' || r == '\r' {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// ValidateCredential sanitizes and trims a custom username or password.
// RouterOS accepts almost anything, so only blank, oversized and
// whitespace-split values are refused.
func ValidateCredential(raw string) (string, error) {
	v := strings.TrimSpace(SanitizeInput(raw))
	switch {
	case v == "":
		return "", ErrEmptyCredential
	case utf8.RuneCountInString(v) > MaxCredentialLen:
		return "", ErrCredentialTooLong
	case strings.ContainsAny(v, " \t\r\n"):
		return "", ErrCredentialSpace
	}
	return v, nil
}

// ValidatePort checks if port is valid
func ValidatePort(port int) bool {
	return port > 0 && port <= 65535
}
