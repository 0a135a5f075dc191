// Package notify builds the transient status messages shown above each page.
package notify

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"studocs/internal/auth"
	"studocs/internal/repository"
	"studocs/internal/storage"
	"studocs/internal/validation"
)

// Kind maps onto the page's alert styles.
type Kind string

const (
	KindSuccess Kind = "success"
	KindDanger  Kind = "danger"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
)

// DismissAfter is how long an alert stays on screen.
const DismissAfter = 6 * time.Second

// Alert is one status message. At most one is shown at a time.
type Alert struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func Success(msg string) *Alert { return &Alert{Kind: KindSuccess, Message: msg} }
func Danger(msg string) *Alert  { return &Alert{Kind: KindDanger, Message: msg} }
func Info(msg string) *Alert    { return &Alert{Kind: KindInfo, Message: msg} }

// Failure renders err under a prefix such as "Failed to upload document".
func Failure(prefix string, err error) *Alert {
	return Danger(prefix + ": " + Describe(err))
}

// Describe picks the user-facing text for err. Validation failures and
// remote rejections keep their own wording; infrastructure failures get a
// generic message so internals never leak to the page.
func Describe(err error) string {
	var ve *validation.Error
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, repository.ErrNotFound):
		return "Document not found"
	case errors.Is(err, storage.ErrObjectNotFound):
		return "File not found in storage"
	case errors.Is(err, storage.ErrObjectExists):
		return "A file with this name was just uploaded, please try again"
	}
	if msg, ok := repository.RejectionMessage(err); ok {
		return msg
	}
	var re *auth.RemoteError
	if errors.As(err, &re) || errors.Is(err, auth.ErrTransport) {
		return auth.Message(err)
	}
	if errors.Is(err, auth.ErrUnauthorized) {
		return "Your session has expired, please log in again"
	}
	return "Something went wrong, please try again"
}

// Encode packs a for the flash cookie.
func Encode(a Alert) string {
	b, _ := json.Marshal(a)
	return base64.RawURLEncoding.EncodeToString(b)
}

// Decode unpacks a flash cookie value. Garbage yields nil.
func Decode(s string) *Alert {
	if s == "" {
		return nil
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil
	}
	var a Alert
	if err := json.Unmarshal(b, &a); err != nil || a.Message == "" {
		return nil
	}
	switch a.Kind {
	case KindSuccess, KindDanger, KindInfo, KindWarning:
	default:
		a.Kind = KindInfo
	}
	return &a
}
