package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"studocs/internal/model"
	"studocs/internal/notify"
)

const flashCookie = "sd_flash"

// CookieSettings controls the session and flash cookies.
type CookieSettings struct {
	SessionName string
	Secure      bool
}

func (s CookieSettings) setSession(c *fiber.Ctx, sess *model.Session) {
	ck := &fiber.Cookie{
		Name:     s.SessionName,
		Value:    sess.AccessToken,
		Path:     "/",
		HTTPOnly: true,
		Secure:   s.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if sess.ExpiresAt.IsZero() {
		ck.SessionOnly = true
	} else {
		ck.Expires = sess.ExpiresAt
	}
	c.Cookie(ck)
}

func (s CookieSettings) clearSession(c *fiber.Ctx) {
	s.expire(c, s.SessionName)
}

func (s CookieSettings) setFlash(c *fiber.Ctx, a *notify.Alert) {
	if a == nil {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    notify.Encode(*a),
		Path:     "/",
		MaxAge:   60,
		HTTPOnly: true,
		Secure:   s.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// popFlash returns the pending flash alert, if any, and deletes it.
func (s CookieSettings) popFlash(c *fiber.Ctx) *notify.Alert {
	v := c.Cookies(flashCookie)
	if v == "" {
		return nil
	}
	s.expire(c, flashCookie)
	return notify.Decode(v)
}

func (s CookieSettings) expire(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
