package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"studocs/internal/auth"
	"studocs/internal/model"
)

const SessionLocalKey = "session"

// Session resolves the caller's session from the bearer token, falling back
// to the session cookie, and stores it in locals. A missing or invalid token
// leaves no session behind; it never fails the request.
func Session(client auth.SessionClient, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			token = c.Cookies(cookieName)
		}
		if token != "" {
			if sess := client.CurrentSession(c.UserContext(), token); sess != nil {
				c.Locals(SessionLocalKey, sess)
			}
		}
		return c.Next()
	}
}

// RequireSession runs onMissing instead of the route when no session was resolved.
func RequireSession(onMissing fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if SessionFromCtx(c) == nil {
			return onMissing(c)
		}
		return c.Next()
	}
}

// SessionFromCtx returns the session stored by Session, or nil.
func SessionFromCtx(c *fiber.Ctx) *model.Session {
	sess, _ := c.Locals(SessionLocalKey).(*model.Session)
	return sess
}

func bearerToken(h string) string {
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}
