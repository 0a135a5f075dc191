package auth

import (
	"errors"
	"net/http"
)

var (
	// ErrUnauthorized covers rejected credentials and expired or revoked sessions.
	ErrUnauthorized = errors.New("not authorized")
	// ErrTransport means the auth service could not be reached or answered garbage.
	ErrTransport = errors.New("auth service unavailable")
)

// RemoteError is a rejection reported by the auth service. Message is the
// service's human-readable text and is safe to show to the user.
type RemoteError struct {
	Status  int
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// credentialCodes are the 400 answers from /token that mean the credentials
// themselves were refused. Other 400s are form rejections.
var credentialCodes = map[string]bool{
	"invalid_grant":       true,
	"invalid_credentials": true,
}

// Unwrap lets errors.Is(err, ErrUnauthorized) match credential and token failures.
func (e *RemoteError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized, e.Status == http.StatusForbidden:
		return ErrUnauthorized
	case e.Status == http.StatusBadRequest && credentialCodes[e.Code]:
		return ErrUnauthorized
	default:
		return nil
	}
}

// Message extracts the user-facing text of err.
func Message(err error) string {
	var re *RemoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	if errors.Is(err, ErrTransport) {
		return "Network error, please try again"
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
