package domain

import (
	"errors"
	"net/mail"
	"strings"
	"unicode"
)

var (
	ErrInvalidEmail = errors.New("invalid email address")
	ErrWeakPassword = errors.New("password must be 8-72 bytes and contain a letter and a digit")
	ErrInvalidName  = errors.New("names must be at most 64 characters")
)

const (
	MinPasswordLen = 8
	MaxPasswordLen = 72 // bcrypt input limit
	MaxNameLen     = 64
)

// NormalizeEmail trims, lowercases and validates a bare address.
func NormalizeEmail(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || len(s) > 254 {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || !strings.Contains(s[strings.LastIndexByte(s, '@')+1:], ".") {
		return "", ErrInvalidEmail
	}
	return s, nil
}

// ValidatePassword enforces the password policy.
func ValidatePassword(pw string) error {
	if len(pw) < MinPasswordLen || len(pw) > MaxPasswordLen {
		return ErrWeakPassword
	}
	var letter, digit bool
	for _, r := range pw {
		letter = letter || unicode.IsLetter(r)
		digit = digit || unicode.IsDigit(r)
	}
	if !letter || !digit {
		return ErrWeakPassword
	}
	return nil
}

// NormalizeName trims a person name and bounds its length.
func NormalizeName(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) > MaxNameLen {
		return "", ErrInvalidName
	}
	return s, nil
}
