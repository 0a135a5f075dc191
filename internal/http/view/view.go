// Package view renders the portal's HTML pages from embedded html/template
// files. It implements fiber.Views so handlers call c.Render.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"studocs/internal/model"
	"studocs/internal/notify"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names.
const (
	PageLogin     = "login"
	PageSignup    = "signup"
	PageDashboard = "dashboard"
	PageError     = "error"
)

// Timing knobs shared with the page scripts.
const (
	LoginRedirectDelay  = 1200 * time.Millisecond
	SignupRedirectDelay = 3 * time.Second
	SearchDebounce      = 300 * time.Millisecond
)

// AuthPage is the data for the login and signup pages.
type AuthPage struct {
	Alert *notify.Alert
	Email string
	// RedirectTo and RedirectAfter schedule a client-side navigation.
	RedirectTo    string
	RedirectAfter time.Duration
	Busy          bool
}

// DashboardPage is the data for the document table.
type DashboardPage struct {
	Alert      *notify.Alert
	User       model.User
	Query      string
	Documents  []model.Document
	LoadFailed bool
	MaxUpload  string
}

// ErrorPage is the data for the generic error page.
type ErrorPage struct {
	Status    int
	Message   string
	RequestID string
}

// Renderer holds the parsed pages.
type Renderer struct {
	loc   *time.Location
	pages map[string]*template.Template
}

var _ interface {
	Load() error
	Render(io.Writer, string, interface{}, ...string) error
} = (*Renderer)(nil)

// New parses every page. Dates are shown in loc.
func New(loc *time.Location) (*Renderer, error) {
	if loc == nil {
		loc = time.UTC
	}
	r := &Renderer{loc: loc}
	if err := r.Load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.In(r.loc).Format("Jan 2, 2006, 3:04 PM")
		},
		"descriptionOf": func(d model.Document) string {
			return d.DescriptionOr("")
		},
		"millis": func(d time.Duration) int64 {
			return d.Milliseconds()
		},
		"dismissAfter": func() int64 {
			return notify.DismissAfter.Milliseconds()
		},
		"debounce": func() int64 {
			return SearchDebounce.Milliseconds()
		},
	}
}

// Load parses the embedded templates. Each page is layout.html plus its own file.
func (r *Renderer) Load() error {
	pages := map[string]*template.Template{}
	for _, name := range []string{PageLogin, PageSignup, PageDashboard, PageError} {
		t, err := template.New("layout.html").Funcs(r.funcs()).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = t
	}
	r.pages = pages
	return nil
}

// Render writes page name with data to w. Layouts are fixed per page, so
// any layout arguments are ignored.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ ...string) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout.html", data)
}
