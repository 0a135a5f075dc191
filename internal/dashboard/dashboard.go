// Package dashboard is the document dashboard's state machine. It knows
// nothing about HTML: every call returns an Outcome that a renderer (or a
// test) inspects.
//
//	Unauthenticated
//	Loading -> Ready <-> Mutating -> Loading -> Ready
//	Ready -> LoggedOut | SessionExpired
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"studocs/internal/auth"
	"studocs/internal/model"
	"studocs/internal/notify"
	"studocs/internal/service"
)

// State is a dashboard lifecycle state.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateLoading         State = "loading"
	StateReady           State = "ready"
	StateMutating        State = "mutating"
	StateLoggedOut       State = "logged_out"
	StateSessionExpired  State = "session_expired"
)

// LoginPath is where sessionless visitors are sent.
const LoginPath = "/"

// ErrUnknownIntent is returned by Dispatch for an intent with no handler.
var ErrUnknownIntent = errors.New("unknown dashboard intent")

// Outcome is everything the renderer needs after Enter or Dispatch.
type Outcome struct {
	// State is the final state; Transitions lists every state entered, in order.
	State       State
	Transitions []State

	User       model.User
	Query      string
	Documents  []model.Document
	LoadFailed bool
	Alert      *notify.Alert

	// Redirect is set when the page should navigate away: to the login page
	// on exit states, or to a signed URL after a view.
	Redirect string
	// Download is set after a successful download intent. The caller closes it.
	Download *service.Download
}

func (o *Outcome) enter(s State) {
	o.State = s
	o.Transitions = append(o.Transitions, s)
}

// Terminal reports whether the outcome left the dashboard.
func (o *Outcome) Terminal() bool {
	switch o.State {
	case StateUnauthenticated, StateLoggedOut, StateSessionExpired:
		return true
	}
	return false
}

// Loaded reports whether the outcome carries a freshly fetched list.
func (o *Outcome) Loaded() bool {
	for _, s := range o.Transitions {
		if s == StateLoading {
			return o.State == StateReady
		}
	}
	return false
}

// Controller drives the dashboard for one request at a time. It holds no
// per-user state; the session is passed into every call.
type Controller struct {
	docs     service.DocumentService
	sessions auth.SessionClient
	log      *zap.Logger
	now      func() time.Time
}

// NewController wires the dashboard to its collaborators.
func NewController(docs service.DocumentService, sessions auth.SessionClient, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{docs: docs, sessions: sessions, log: log, now: time.Now}
}

// Enter verifies the session and loads the list for query. Without a
// session nothing is fetched and the outcome redirects to the login page.
func (c *Controller) Enter(ctx context.Context, sess *model.Session, query string) *Outcome {
	out := &Outcome{Query: query}
	if !c.admit(sess, out) {
		return out
	}
	c.load(ctx, sess, out)
	return out
}

// Dispatch runs one user action from the Ready state. Mutating intents
// always end with a fresh load, whatever the action's result.
func (c *Controller) Dispatch(ctx context.Context, sess *model.Session, a Action) (*Outcome, error) {
	h, ok := handlers[a.Intent]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIntent, a.Intent)
	}

	out := &Outcome{Query: a.Query}
	if !c.admit(sess, out) {
		return out, nil
	}
	out.enter(StateReady)

	if h.mutating {
		out.enter(StateMutating)
	}

	err := h.run(ctx, c, sess, a, out)
	if err != nil {
		c.log.Warn("dashboard_action_failed",
			zap.String("intent", string(a.Intent)),
			zap.String("user_id", sess.User.ID),
			zap.Error(err),
		)
		if c.expired(err, out) {
			return out, nil
		}
		out.Alert = notify.Failure(h.failure, err)
	} else if h.success != "" {
		out.Alert = notify.Success(h.success)
	}

	if out.Terminal() {
		return out, nil
	}
	if h.mutating || h.reload {
		c.load(ctx, sess, out)
	}
	return out, nil
}

func (c *Controller) admit(sess *model.Session, out *Outcome) bool {
	if sess == nil {
		out.enter(StateUnauthenticated)
		out.Redirect = LoginPath
		return false
	}
	if sess.Expired(c.now()) {
		out.enter(StateSessionExpired)
		out.Redirect = LoginPath
		return false
	}
	out.User = sess.User
	return true
}

// load fetches the list. A failed fetch still lands in Ready, with an
// empty list and a danger alert.
func (c *Controller) load(ctx context.Context, sess *model.Session, out *Outcome) {
	out.enter(StateLoading)
	docs, err := c.docs.List(ctx, sess, out.Query)
	if err != nil {
		c.log.Warn("dashboard_load_failed", zap.String("user_id", sess.User.ID), zap.Error(err))
		if c.expired(err, out) {
			return
		}
		out.Documents = []model.Document{}
		out.LoadFailed = true
		out.Alert = notify.Failure("Failed to load documents", err)
		out.enter(StateReady)
		return
	}
	out.Documents = docs
	out.enter(StateReady)
}

func (c *Controller) expired(err error, out *Outcome) bool {
	if !errors.Is(err, auth.ErrUnauthorized) {
		return false
	}
	out.Documents = nil
	out.Alert = notify.Info("Your session has expired, please log in again")
	out.Redirect = LoginPath
	out.enter(StateSessionExpired)
	return true
}
