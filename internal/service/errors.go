package service

import "errors"

var (
	// ErrUnauthenticated means there is no valid session. Callers treat it as
	// "not logged in" and send the user to the login page.
	ErrUnauthenticated = errors.New("not logged in")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")

	ErrInvalidInput  = errors.New("invalid input")
	ErrFileTooLarge  = errors.New("file too large")
	ErrInvalidOTP    = errors.New("invalid or expired passcode")
	ErrOTPTooSoon    = errors.New("a passcode was sent moments ago, please wait before requesting another")
	ErrUnknownSortBy = errors.New("unknown sort field")
)
