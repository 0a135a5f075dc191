package view

import (
	"bytes"
	"testing"
	"time"

	"studocs/internal/model"
	"studocs/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, r *Renderer, page string, data any) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, page, data))
	return buf.String()
}

func TestDashboard_EscapesUserContent(t *testing.T) {
	r, err := New(time.UTC)
	require.NoError(t, err)

	desc := `<img src=x onerror=alert(1)>`
	html := render(t, r, PageDashboard, DashboardPage{
		User:  model.User{Email: "ana@example.edu"},
		Query: `"><script>`,
		Documents: []model.Document{
			{ID: "d1", Title: "<script>alert('x')</script>", Description: &desc, UploadedAt: time.Date(2026, 3, 1, 14, 5, 0, 0, time.UTC)},
			{ID: "d2", Title: "Lab Notes", UploadedAt: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)},
		},
	})

	assert.NotContains(t, html, "<script>alert('x')</script>")
	assert.Contains(t, html, "&lt;script&gt;alert(&#39;x&#39;)&lt;/script&gt;")
	assert.NotContains(t, html, "<img src=x")
	assert.NotContains(t, html, `value=""><script>`)
	assert.Contains(t, html, "N/A")
	assert.Contains(t, html, "Mar 1, 2026, 2:05 PM")
	assert.Contains(t, html, "/documents/d1/view")
	assert.Contains(t, html, "/documents/d2/download")
	assert.Contains(t, html, "ana@example.edu")
	assert.Contains(t, html, "300")
}

func TestDashboard_EmptyAndFailed(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)

	html := render(t, r, PageDashboard, DashboardPage{Documents: []model.Document{}})
	assert.Contains(t, html, "No documents found. Upload your first document!")

	html = render(t, r, PageDashboard, DashboardPage{
		LoadFailed: true,
		Alert:      notify.Danger("Failed to load documents: boom"),
	})
	assert.Contains(t, html, "Error loading documents")
	assert.Contains(t, html, "alert-danger")
	assert.Contains(t, html, "Failed to load documents: boom")
	assert.Contains(t, html, `data-dismiss-after="6000"`)
}

func TestDashboard_Timezone(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	r, err := New(jakarta)
	require.NoError(t, err)

	html := render(t, r, PageDashboard, DashboardPage{
		Documents: []model.Document{{ID: "d1", Title: "t", UploadedAt: time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)}},
	})
	assert.Contains(t, html, "Mar 2, 2026, 6:30 AM")
}

func TestAuthPages(t *testing.T) {
	r, err := New(time.UTC)
	require.NoError(t, err)

	html := render(t, r, PageLogin, AuthPage{
		Alert:         notify.Success("Login successful! Welcome back"),
		Email:         "ana@example.edu",
		RedirectTo:    "/dashboard",
		RedirectAfter: LoginRedirectDelay,
		Busy:          true,
	})
	assert.Contains(t, html, "Login successful! Welcome back")
	assert.Contains(t, html, "window.location.href")
	assert.Contains(t, html, "dashboard")
	assert.Contains(t, html, "1200")
	assert.Contains(t, html, `value="ana@example.edu"`)

	html = render(t, r, PageSignup, AuthPage{})
	assert.Contains(t, html, `name="confirm_password"`)
	assert.NotContains(t, html, "window.location.href")
	assert.NotContains(t, html, `role="alert"`)
}

func TestErrorPage(t *testing.T) {
	r, err := New(time.UTC)
	require.NoError(t, err)

	html := render(t, r, PageError, ErrorPage{Status: 404, Message: "Page not found", RequestID: "rid-1"})
	assert.Contains(t, html, "404")
	assert.Contains(t, html, "Page not found")
	assert.Contains(t, html, "rid-1")
}

func TestRender_UnknownPage(t *testing.T) {
	r, err := New(time.UTC)
	require.NoError(t, err)
	assert.Error(t, r.Render(&bytes.Buffer{}, "missing", nil))
}
