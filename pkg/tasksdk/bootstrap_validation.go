package tasksdk

import (
	"net/mail"
	"strings"
	"unicode"
)

const (
	reasonRequired = "required"
	reasonTooLong  = "too long (max 64)"
)

// Validate checks the bootstrap fields. It returns field names mapped to
// reasons, or nil when everything is valid.
func (b BootstrapRequest) Validate() map[string]string {
	errs := make(map[string]string)

	email := strings.TrimSpace(b.Email)
	switch {
	case email == "":
		errs["email"] = reasonRequired
	case !validEmail(email):
		errs["email"] = "must be a valid email address"
	}

	if reason := passwordReason(b.Password); reason != "" {
		errs["password"] = reason
	}

	validateName(errs, "first_name", b.FirstName)
	validateName(errs, "last_name", b.LastName)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateName(errs map[string]string, field, v string) {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		errs[field] = reasonRequired
	case len(v) > 64:
		errs[field] = reasonTooLong
	}
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func passwordReason(pw string) string {
	switch {
	case pw == "":
		return reasonRequired
	case len(pw) < 8:
		return "must be at least 8 characters"
	case len(pw) > 72:
		return "must be at most 72 bytes"
	}

	var letter, digit bool
	for _, r := range pw {
		letter = letter || unicode.IsLetter(r)
		digit = digit || unicode.IsDigit(r)
	}
	if !letter || !digit {
		return "must contain a letter and a digit"
	}
	return ""
}
