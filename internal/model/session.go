package model

import "time"

// User is the identity attached to a session.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is an authenticated identity context. It is resolved per request
// and passed explicitly to every operation that needs the current user.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Expired reports whether the access token is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
