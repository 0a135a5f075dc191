// Package validation holds the form checks that run before any network call.
package validation

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"strings"

	"github.com/docker/go-units"
)

// PDFContentType is the only content type accepted for uploads.
const PDFContentType = "application/pdf"

// sniffLen is how many bytes http.DetectContentType looks at.
const sniffLen = 512

// Error is a user-facing validation failure. Message is shown verbatim.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}

func fail(field, msg string) error {
	return &Error{Field: field, Message: msg}
}

// Email checks that s is a bare address such as "ana@example.edu".
func Email(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fail("email", "Email is required")
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return fail("email", "Please enter a valid email address")
	}
	return nil
}

// Login validates the login form.
func Login(email, password string) error {
	if err := Email(email); err != nil {
		return err
	}
	if password == "" {
		return fail("password", "Password is required")
	}
	return nil
}

// Signup validates the signup form. A confirmation mismatch is reported
// without contacting the auth service.
func Signup(email, password, confirm string) error {
	if err := Login(email, password); err != nil {
		return err
	}
	if password != confirm {
		return fail("confirm_password", "Passwords do not match!")
	}
	return nil
}

// Title requires a non-blank document title.
func Title(title string) error {
	if strings.TrimSpace(title) == "" {
		return fail("title", "Title is required")
	}
	return nil
}

// FileSize rejects empty files and files above max bytes.
func FileSize(size, max int64) error {
	if size == 0 {
		return fail("file", "Please select a valid PDF file")
	}
	if max > 0 && size > max {
		return fail("file", fmt.Sprintf("File is too large (max %s)", units.HumanSize(float64(max))))
	}
	return nil
}

// SniffPDF reads the head of r and rejects anything that does not look like
// a PDF. r is rewound to the start on success.
func SniffPDF(r io.ReadSeeker) error {
	if r == nil {
		return fail("file", "Please select a valid PDF file")
	}
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("read upload: %w", err)
	}
	if http.DetectContentType(head[:n]) != PDFContentType {
		return fail("file", "Please select a valid PDF file")
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind upload: %w", err)
	}
	return nil
}
