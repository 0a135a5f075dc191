package dashboard

import (
	"context"

	"studocs/internal/model"
	"studocs/internal/service"
)

// Intent names a user action on the dashboard.
type Intent string

const (
	IntentSearch   Intent = "search"
	IntentRefresh  Intent = "refresh"
	IntentUpload   Intent = "upload"
	IntentView     Intent = "view"
	IntentDownload Intent = "download"
	IntentEdit     Intent = "edit"
	IntentDelete   Intent = "delete"
	IntentLogout   Intent = "logout"
)

// Action is one dispatched intent with its arguments. Query is the search
// box content at the time of the action and survives the reload.
type Action struct {
	Intent      Intent
	Query       string
	DocumentID  string
	Title       string
	Description string
	Upload      service.UploadInput
}

type actionHandler struct {
	mutating bool
	// reload asks for a list fetch after a non-mutating action.
	reload  bool
	success string
	failure string
	run     func(ctx context.Context, c *Controller, sess *model.Session, a Action, out *Outcome) error
}

var handlers = map[Intent]actionHandler{
	IntentSearch: {
		reload: true,
		run:    noop,
	},
	IntentRefresh: {
		reload: true,
		run: func(_ context.Context, _ *Controller, _ *model.Session, _ Action, out *Outcome) error {
			out.Query = ""
			return nil
		},
	},
	IntentUpload: {
		mutating: true,
		success:  "Document uploaded successfully!",
		failure:  "Failed to upload document",
		run: func(ctx context.Context, c *Controller, sess *model.Session, a Action, _ *Outcome) error {
			_, err := c.docs.Upload(ctx, sess, a.Upload)
			return err
		},
	},
	IntentEdit: {
		mutating: true,
		success:  "Document updated successfully!",
		failure:  "Failed to update document",
		run: func(ctx context.Context, c *Controller, sess *model.Session, a Action, _ *Outcome) error {
			return c.docs.Update(ctx, sess, a.DocumentID, a.Title, a.Description)
		},
	},
	IntentDelete: {
		mutating: true,
		success:  "Document deleted successfully!",
		failure:  "Failed to delete document",
		run: func(ctx context.Context, c *Controller, sess *model.Session, a Action, _ *Outcome) error {
			return c.docs.Delete(ctx, sess, a.DocumentID)
		},
	},
	IntentView: {
		failure: "Failed to view document",
		run: func(ctx context.Context, c *Controller, sess *model.Session, a Action, out *Outcome) error {
			u, err := c.docs.ViewURL(ctx, sess, a.DocumentID)
			if err != nil {
				return err
			}
			out.Redirect = u
			return nil
		},
	},
	IntentDownload: {
		failure: "Failed to download document",
		run: func(ctx context.Context, c *Controller, sess *model.Session, a Action, out *Outcome) error {
			dl, err := c.docs.Download(ctx, sess, a.DocumentID)
			if err != nil {
				return err
			}
			out.Download = dl
			return nil
		},
	},
	IntentLogout: {
		failure: "Failed to logout",
		run: func(ctx context.Context, c *Controller, sess *model.Session, _ Action, out *Outcome) error {
			if err := c.sessions.SignOut(ctx, sess.AccessToken); err != nil {
				return err
			}
			out.Redirect = LoginPath
			out.enter(StateLoggedOut)
			return nil
		},
	},
}

func noop(context.Context, *Controller, *model.Session, Action, *Outcome) error { return nil }
