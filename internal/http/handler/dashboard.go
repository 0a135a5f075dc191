package handler

import (
	"mime"
	"net/url"

	"github.com/docker/go-units"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"studocs/internal/dashboard"
	"studocs/internal/http/middleware"
	"studocs/internal/http/view"
	"studocs/internal/service"
)

// DashboardPages turns form posts into dashboard intents and renders the
// resulting outcome.
type DashboardPages struct {
	ctrl      *dashboard.Controller
	cookies   CookieSettings
	maxUpload int64
	log       *zap.Logger
}

func NewDashboardPages(ctrl *dashboard.Controller, cookies CookieSettings, maxUpload int64, log *zap.Logger) *DashboardPages {
	return &DashboardPages{ctrl: ctrl, cookies: cookies, maxUpload: maxUpload, log: orNop(log)}
}

// Show answers GET /dashboard. ?refresh clears the search; ?q searches.
func (h *DashboardPages) Show(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)
	switch {
	case c.Query("refresh") != "":
		return h.dispatch(c, dashboard.Action{Intent: dashboard.IntentRefresh})
	case c.Query("q") != "":
		return h.dispatch(c, dashboard.Action{Intent: dashboard.IntentSearch, Query: c.Query("q")})
	}
	return h.respond(c, h.ctrl.Enter(c.UserContext(), sess, ""))
}

// Upload answers POST /documents.
func (h *DashboardPages) Upload(c *fiber.Ctx) error {
	a := dashboard.Action{
		Intent: dashboard.IntentUpload,
		Query:  c.FormValue("q"),
		Upload: service.UploadInput{
			Title:       c.FormValue("title"),
			Description: c.FormValue("description"),
		},
	}
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return err
		}
		defer f.Close()
		a.Upload.Filename = fh.Filename
		a.Upload.Size = fh.Size
		a.Upload.Body = f
	}
	return h.dispatch(c, a)
}

// Edit answers POST /documents/:id.
func (h *DashboardPages) Edit(c *fiber.Ctx) error {
	id, ok := documentID(c)
	if !ok {
		return fiber.ErrNotFound
	}
	return h.dispatch(c, dashboard.Action{
		Intent:      dashboard.IntentEdit,
		Query:       c.FormValue("q"),
		DocumentID:  id,
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
	})
}

// Delete answers POST /documents/:id/delete.
func (h *DashboardPages) Delete(c *fiber.Ctx) error {
	id, ok := documentID(c)
	if !ok {
		return fiber.ErrNotFound
	}
	return h.dispatch(c, dashboard.Action{Intent: dashboard.IntentDelete, Query: c.FormValue("q"), DocumentID: id})
}

// View answers GET /documents/:id/view by redirecting to a signed URL.
func (h *DashboardPages) View(c *fiber.Ctx) error {
	id, ok := documentID(c)
	if !ok {
		return fiber.ErrNotFound
	}
	out, err := h.ctrl.Dispatch(c.UserContext(), middleware.SessionFromCtx(c), dashboard.Action{Intent: dashboard.IntentView, DocumentID: id})
	if err != nil {
		return err
	}
	if out.State == dashboard.StateReady && out.Alert == nil && out.Redirect != "" {
		return c.Redirect(out.Redirect, fiber.StatusFound)
	}
	return h.respond(c, out)
}

// Download answers GET /documents/:id/download with the file as an attachment.
func (h *DashboardPages) Download(c *fiber.Ctx) error {
	id, ok := documentID(c)
	if !ok {
		return fiber.ErrNotFound
	}
	out, err := h.ctrl.Dispatch(c.UserContext(), middleware.SessionFromCtx(c), dashboard.Action{Intent: dashboard.IntentDownload, DocumentID: id})
	if err != nil {
		return err
	}
	dl := out.Download
	if dl == nil {
		return h.respond(c, out)
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": dl.Filename})
	if disposition == "" {
		disposition = "attachment"
	}
	c.Set(fiber.HeaderContentDisposition, disposition)
	c.Set(fiber.HeaderContentType, dl.ContentType)
	// fasthttp closes the body once it has been written.
	if dl.Size >= 0 {
		return c.SendStream(dl.Body, int(dl.Size))
	}
	return c.SendStream(dl.Body)
}

// Logout answers POST /logout.
func (h *DashboardPages) Logout(c *fiber.Ctx) error {
	return h.dispatch(c, dashboard.Action{Intent: dashboard.IntentLogout})
}

func (h *DashboardPages) dispatch(c *fiber.Ctx, a dashboard.Action) error {
	out, err := h.ctrl.Dispatch(c.UserContext(), middleware.SessionFromCtx(c), a)
	if err != nil {
		return err
	}
	return h.respond(c, out)
}

// respond renders a loaded outcome in place. Exits go to the login page
// and unloaded outcomes back to the dashboard, each with the alert carried
// over in the flash cookie.
func (h *DashboardPages) respond(c *fiber.Ctx, out *dashboard.Outcome) error {
	if out.Terminal() {
		if out.State != dashboard.StateUnauthenticated {
			h.cookies.clearSession(c)
			h.log.Info("session_ended",
				zap.String("request_id", middleware.RequestIDFromCtx(c)),
				zap.String("state", string(out.State)),
				zap.String("user_id", out.User.ID),
			)
		}
		h.cookies.setFlash(c, out.Alert)
		return c.Redirect(out.Redirect, fiber.StatusSeeOther)
	}

	if !out.Loaded() {
		h.cookies.setFlash(c, out.Alert)
		return c.Redirect(dashboardURL(out.Query), fiber.StatusSeeOther)
	}

	alert := out.Alert
	if alert == nil {
		alert = h.cookies.popFlash(c)
	}
	return c.Render(view.PageDashboard, view.DashboardPage{
		Alert:      alert,
		User:       out.User,
		Query:      out.Query,
		Documents:  out.Documents,
		LoadFailed: out.LoadFailed,
		MaxUpload:  units.HumanSize(float64(h.maxUpload)),
	})
}

func dashboardURL(query string) string {
	if query == "" {
		return dashboardPath
	}
	return dashboardPath + "?q=" + url.QueryEscape(query)
}
