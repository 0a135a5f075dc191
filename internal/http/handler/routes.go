package handler

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"studocs/internal/auth"
	"studocs/internal/dashboard"
	"studocs/internal/http/middleware"
	"studocs/internal/service"
)

// Deps is everything RegisterRoutes needs.
type Deps struct {
	DB             *sql.DB
	Documents      service.DocumentService
	Sessions       auth.SessionClient
	Dashboard      *dashboard.Controller
	Cookies        CookieSettings
	SignupRedirect string
	MaxUpload      int64
	SignedURLTTL   time.Duration
	Gatherer       prometheus.Gatherer
	Log            *zap.Logger
}

// RegisterRoutes attaches the HTML pages, the JSON API and the operational
// endpoints to app.
func RegisterRoutes(app *fiber.App, d Deps) {
	log := orNop(d.Log)

	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())
	if d.Gatherer != nil {
		app.Get("/metrics", Metrics(d.Gatherer))
	}
	app.Get("/openapi.yaml", OpenAPISpec())
	app.Get("/swagger/*", APIDocs())
	app.Get("/docs", func(c *fiber.Ctx) error {
		return c.Redirect("/swagger/index.html", fiber.StatusMovedPermanently)
	})

	// Everything below sees the caller's session, if any.
	app.Use(middleware.Session(d.Sessions, d.Cookies.SessionName))

	authPages := NewAuthPages(d.Sessions, d.Cookies, d.SignupRedirect, log)
	app.Get("/", authPages.LoginPage)
	app.Post("/login", authPages.Login)
	app.Get("/signup", authPages.SignupPage)
	app.Post("/signup", authPages.Signup)

	dash := NewDashboardPages(d.Dashboard, d.Cookies, d.MaxUpload, log)
	app.Get("/dashboard", dash.Show)
	app.Post("/logout", dash.Logout)
	app.Post("/documents", dash.Upload)
	app.Post("/documents/:id", dash.Edit)
	app.Post("/documents/:id/delete", dash.Delete)
	app.Get("/documents/:id/view", dash.View)
	app.Get("/documents/:id/download", dash.Download)

	api := app.Group("/api/v1", middleware.RequireSession(func(c *fiber.Ctx) error {
		return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid access token")
	}))
	api.Get("/documents", ListDocuments(d.Documents, log))
	api.Post("/documents", UploadDocument(d.Documents, log))
	api.Patch("/documents/:id", UpdateDocument(d.Documents, log))
	api.Delete("/documents/:id", DeleteDocument(d.Documents, log))
	api.Get("/documents/:id/url", DocumentURL(d.Documents, d.SignedURLTTL, log))
}
