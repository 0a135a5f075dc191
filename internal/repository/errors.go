package repository

import (
	"errors"
	"strings"
)

// RejectedError is a constraint or policy violation reported by the database.
// Message is the database's own text and is shown to the user as is.
type RejectedError struct {
	Code    string
	Message string
	Err     error
}

func (e *RejectedError) Error() string { return e.Message }

func (e *RejectedError) Unwrap() error { return e.Err }

// RejectionMessage returns the database-provided message when err is a rejection.
func RejectionMessage(err error) (string, bool) {
	var re *RejectedError
	if errors.As(err, &re) {
		return re.Message, true
	}
	return "", false
}

// NormalizeDescription maps a blank description to nil so "no description"
// is stored as NULL and never as an empty string.
func NormalizeDescription(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
