package repository

import (
	"context"
	"errors"

	"studocs/internal/model"
)

// ErrNotFound is returned when no row matches both the document id and the
// owner. Another user's document is indistinguishable from a missing one.
var ErrNotFound = errors.New("document not found")

// DocumentRepository is the metadata store for documents. Every method takes
// the owner's user id and filters on it; no query runs unscoped.
type DocumentRepository interface {
	// List returns the user's documents, newest upload first. A non-blank
	// search keeps only titles containing it, case-insensitively.
	List(ctx context.Context, userID, search string) ([]model.Document, error)

	// FindByID returns one of the user's documents.
	FindByID(ctx context.Context, id, userID string) (*model.Document, error)

	// Insert stores a new row and returns it as persisted. A blank
	// description is stored as NULL.
	Insert(ctx context.Context, doc *model.Document) (*model.Document, error)

	// Update changes title and description only.
	Update(ctx context.Context, id, userID, title string, description *string) error

	// Delete removes the row.
	Delete(ctx context.Context, id, userID string) error
}
