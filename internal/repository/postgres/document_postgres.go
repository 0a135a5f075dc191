package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"studocs/internal/model"
	"studocs/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, title, description, file_path, uploaded_at, user_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var (
		d    model.Document
		desc sql.NullString
	)
	if err := row.Scan(&d.ID, &d.Title, &desc, &d.FilePath, &d.UploadedAt, &d.UserID); err != nil {
		return nil, err
	}
	if desc.Valid {
		d.Description = &desc.String
	}
	return &d, nil
}

// escapeLike makes LIKE metacharacters in s match literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// List returns the user's documents ordered by upload time, newest first.
func (r *DocumentPostgres) List(ctx context.Context, userID, search string) ([]model.Document, error) {
	const qAll = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE user_id = $1
		ORDER BY uploaded_at DESC, id DESC
	`
	const qSearch = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE user_id = $1 AND title ILIKE '%' || $2 || '%' ESCAPE '\'
		ORDER BY uploaded_at DESC, id DESC
	`

	var (
		rows *sql.Rows
		err  error
	)
	if search = strings.TrimSpace(search); search == "" {
		rows, err = r.db.QueryContext(ctx, qAll, userID)
	} else {
		rows, err = r.db.QueryContext(ctx, qSearch, userID, escapeLike(search))
	}
	if err != nil {
		return nil, wrapPgError(err)
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPgError(err)
	}
	return items, nil
}

// FindByID fetches one document owned by userID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id, userID string) (*model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1 AND user_id = $2
	`
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, wrapPgError(err)
	}
	return d, nil
}

// Insert stores a new document row and returns the stored record.
func (r *DocumentPostgres) Insert(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, title, description, file_path, uploaded_at, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + documentColumns

	out, err := scanDocument(r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Title,
		nullableDescription(doc.Description),
		doc.FilePath,
		doc.UploadedAt,
		doc.UserID,
	))
	if err != nil {
		return nil, wrapPgError(err)
	}
	return out, nil
}

// Update sets title and description on a document owned by userID.
func (r *DocumentPostgres) Update(ctx context.Context, id, userID, title string, description *string) error {
	const q = `
		UPDATE documents
		SET title = $3, description = $4
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, q, id, userID, title, nullableDescription(description))
	if err != nil {
		return wrapPgError(err)
	}
	return requireAffected(res)
}

// Delete removes a document owned by userID.
func (r *DocumentPostgres) Delete(ctx context.Context, id, userID string) error {
	const q = `DELETE FROM documents WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return wrapPgError(err)
	}
	return requireAffected(res)
}

// nullableDescription yields nil (SQL NULL) for an absent or blank description.
func nullableDescription(d *string) any {
	if d == nil {
		return nil
	}
	if n := repository.NormalizeDescription(*d); n != nil {
		return *n
	}
	return nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// wrapPgError turns server-side rejections into repository.RejectedError so
// their message reaches the user verbatim. Other errors pass through.
func wrapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &repository.RejectedError{Code: pgErr.Code, Message: pgErr.Message, Err: err}
	}
	return err
}
