package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"studocs/internal/auth"
	"studocs/internal/dashboard"
	"studocs/internal/http/middleware"
	"studocs/internal/http/view"
	"studocs/internal/notify"
	"studocs/internal/validation"
)

const dashboardPath = "/dashboard"

// AuthPages serves the login and signup pages.
type AuthPages struct {
	sessions auth.SessionClient
	cookies  CookieSettings
	// signupRedirect is where the confirmation email sends new users.
	signupRedirect string
	log            *zap.Logger
}

// NewAuthPages wires the auth pages. signupRedirect may be empty.
func NewAuthPages(sessions auth.SessionClient, cookies CookieSettings, signupRedirect string, log *zap.Logger) *AuthPages {
	return &AuthPages{sessions: sessions, cookies: cookies, signupRedirect: signupRedirect, log: orNop(log)}
}

// LoginPage shows the login form, or sends a signed-in user to the dashboard.
func (h *AuthPages) LoginPage(c *fiber.Ctx) error {
	if middleware.SessionFromCtx(c) != nil {
		return c.Redirect(dashboardPath, fiber.StatusSeeOther)
	}
	return c.Render(view.PageLogin, view.AuthPage{Alert: h.cookies.popFlash(c)})
}

// SignupPage shows the signup form, or sends a signed-in user to the dashboard.
func (h *AuthPages) SignupPage(c *fiber.Ctx) error {
	if middleware.SessionFromCtx(c) != nil {
		return c.Redirect(dashboardPath, fiber.StatusSeeOther)
	}
	return c.Render(view.PageSignup, view.AuthPage{Alert: h.cookies.popFlash(c)})
}

// Login validates the form, signs in, and stores the session cookie. On
// success the page shows a confirmation and navigates to the dashboard
// after a short delay.
func (h *AuthPages) Login(c *fiber.Ctx) error {
	email, password := c.FormValue("email"), c.FormValue("password")
	page := view.AuthPage{Email: email}

	if err := validation.Login(email, password); err != nil {
		page.Alert = notify.Danger(notify.Describe(err))
		return c.Status(fiber.StatusUnprocessableEntity).Render(view.PageLogin, page)
	}

	sess, err := h.sessions.SignIn(c.UserContext(), email, password)
	if err != nil {
		h.log.Info("login_failed", zap.String("request_id", middleware.RequestIDFromCtx(c)), zap.Error(err))
		page.Alert = notify.Failure("Login failed", err)
		return c.Status(authFailureStatus(err)).Render(view.PageLogin, page)
	}

	h.cookies.setSession(c, sess)
	page.Alert = notify.Success("Login successful! Welcome back")
	page.RedirectTo = dashboardPath
	page.RedirectAfter = view.LoginRedirectDelay
	page.Busy = true
	return c.Render(view.PageLogin, page)
}

// Signup validates the form and creates a pending account. No session is
// created; the user confirms by email and then logs in.
func (h *AuthPages) Signup(c *fiber.Ctx) error {
	email := c.FormValue("email")
	password, confirm := c.FormValue("password"), c.FormValue("confirm_password")
	page := view.AuthPage{Email: email}

	if err := validation.Signup(email, password, confirm); err != nil {
		page.Alert = notify.Danger(notify.Describe(err))
		return c.Status(fiber.StatusUnprocessableEntity).Render(view.PageSignup, page)
	}

	if err := h.sessions.SignUp(c.UserContext(), email, password, h.signupRedirect); err != nil {
		h.log.Info("signup_failed", zap.String("request_id", middleware.RequestIDFromCtx(c)), zap.Error(err))
		page.Alert = notify.Failure("Signup failed", err)
		return c.Status(authFailureStatus(err)).Render(view.PageSignup, page)
	}

	page.Email = ""
	page.Alert = notify.Success("Account created! Check your email to confirm, then log in.")
	page.RedirectTo = dashboard.LoginPath
	page.RedirectAfter = view.SignupRedirectDelay
	page.Busy = true
	return c.Render(view.PageSignup, page)
}

func authFailureStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrTransport):
		return fiber.StatusBadGateway
	case errors.Is(err, auth.ErrUnauthorized):
		return fiber.StatusUnauthorized
	}
	return fiber.StatusBadRequest
}
