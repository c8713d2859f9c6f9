// Package validators contains validators found throughout the application
// that have been abstracted away from the main code
package validators

import (
	"errors"
	"net/mail"
	"strings"
)

var (
	ErrEmailEmpty   = errors.New("no email address provided")
	ErrEmailInvalid = errors.New("invalid email address provided")
)

// EmailValidator checks that e is a bare address, display names are rejected
func EmailValidator(e string) error {
	if e == "" {
		return ErrEmailEmpty
	}

	a, err := mail.ParseAddress(e)
	if err != nil || a.Address != e {
		return ErrEmailInvalid
	}

	return nil
}

// NormalizeEmail trims and lower-cases e. Emails are compared in this form
// everywhere.
func NormalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// EmailListValidator normalizes and validates every address, dropping
// duplicates while keeping the original order
func EmailListValidator(emails []string) ([]string, error) {
	out := make([]string, 0, len(emails))
	seen := make(map[string]struct{}, len(emails))

	for _, e := range emails {
		e = NormalizeEmail(e)
		if err := EmailValidator(e); err != nil {
			return nil, err
		}

		if _, ok := seen[e]; ok {
			continue
		}

		seen[e] = struct{}{}
		out = append(out, e)
	}

	return out, nil
}
