package postgres

import (
	"context"
	"testing"
	"time"

	"studocs/internal/model"
	"studocs/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "title", "description", "file_path", "uploaded_at", "user_id"}

func strPtr(s string) *string { return &s }

func TestDocumentPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	newer := time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)
	older := newer.Add(-24 * time.Hour)

	t.Run("no search is scoped to the user only", func(t *testing.T) {
		rows := sqlmock.NewRows(columns).
			AddRow("d2", "Midterm Report", "draft", "user-a/2_report.pdf", newer, "user-a").
			AddRow("d1", "Lab Notes", nil, "user-a/1_lab.pdf", older, "user-a")

		mock.ExpectQuery(`SELECT (.+) FROM documents WHERE user_id = (.+) ORDER BY uploaded_at DESC, id DESC`).
			WithArgs("user-a").
			WillReturnRows(rows)

		docs, err := repo.List(ctx, "user-a", "")
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "d2", docs[0].ID)
		require.NotNil(t, docs[0].Description)
		assert.Equal(t, "draft", *docs[0].Description)
		assert.Nil(t, docs[1].Description)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("blank search behaves like no search", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM documents WHERE user_id = (.+) ORDER BY`).
			WithArgs("user-a").
			WillReturnRows(sqlmock.NewRows(columns))

		docs, err := repo.List(ctx, "user-a", "   ")
		require.NoError(t, err)
		assert.NotNil(t, docs)
		assert.Empty(t, docs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("search filters titles with escaped wildcards", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM documents WHERE user_id = (.+) AND title ILIKE (.+) ORDER BY`).
			WithArgs("user-a", `100\%\_done`).
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := repo.List(ctx, "user-a", " 100%_done ")
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("remote rejection", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM documents`).
			WithArgs("user-a").
			WillReturnError(&pgconn.PgError{Code: "42501", Message: "permission denied for table documents"})

		_, err := repo.List(ctx, "user-a", "")
		msg, ok := repository.RejectionMessage(err)
		assert.True(t, ok)
		assert.Equal(t, "permission denied for table documents", msg)
	})
}

func TestDocumentPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(columns).
			AddRow("doc-1", "Essay", nil, "user-a/1_essay.pdf", time.Now(), "user-a")

		mock.ExpectQuery(`SELECT (.+) FROM documents WHERE id = (.+) AND user_id = (.+)`).
			WithArgs("doc-1", "user-a").
			WillReturnRows(rows)

		doc, err := repo.FindByID(ctx, "doc-1", "user-a")
		require.NoError(t, err)
		assert.Equal(t, "doc-1", doc.ID)
		assert.Equal(t, "user-a/1_essay.pdf", doc.FilePath)
	})

	t.Run("other user's document is not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM documents WHERE id = (.+) AND user_id = (.+)`).
			WithArgs("doc-1", "user-b").
			WillReturnRows(sqlmock.NewRows(columns))

		doc, err := repo.FindByID(ctx, "doc-1", "user-b")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, doc)
	})
}

func TestDocumentPostgres_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("blank description stored as null", func(t *testing.T) {
		doc := &model.Document{
			ID:          "doc-1",
			Title:       "Midterm Report",
			Description: strPtr("   "),
			FilePath:    "user-a/1700000000000_report.pdf",
			UploadedAt:  now,
			UserID:      "user-a",
		}

		mock.ExpectQuery("INSERT INTO documents").
			WithArgs(doc.ID, doc.Title, nil, doc.FilePath, doc.UploadedAt, doc.UserID).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(doc.ID, doc.Title, nil, doc.FilePath, now, doc.UserID))

		out, err := repo.Insert(ctx, doc)
		require.NoError(t, err)
		assert.Equal(t, "doc-1", out.ID)
		assert.Nil(t, out.Description)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("description trimmed", func(t *testing.T) {
		doc := &model.Document{
			ID:          "doc-2",
			Title:       "Lab",
			Description: strPtr(" week 3 "),
			FilePath:    "user-a/1700000000001_lab.pdf",
			UploadedAt:  now,
			UserID:      "user-a",
		}

		mock.ExpectQuery("INSERT INTO documents").
			WithArgs(doc.ID, doc.Title, "week 3", doc.FilePath, doc.UploadedAt, doc.UserID).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(doc.ID, doc.Title, "week 3", doc.FilePath, now, doc.UserID))

		out, err := repo.Insert(ctx, doc)
		require.NoError(t, err)
		require.NotNil(t, out.Description)
		assert.Equal(t, "week 3", *out.Description)
	})

	t.Run("unique violation surfaces message", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO documents").
			WillReturnError(&pgconn.PgError{Code: "23505", Message: `duplicate key value violates unique constraint "documents_file_path_key"`})

		_, err := repo.Insert(ctx, &model.Document{ID: "x", Title: "t", FilePath: "p", UploadedAt: now, UserID: "user-a"})
		var rejected *repository.RejectedError
		require.ErrorAs(t, err, &rejected)
		assert.Equal(t, "23505", rejected.Code)
	})
}

func TestDocumentPostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("scoped by id and owner", func(t *testing.T) {
		mock.ExpectExec(`UPDATE documents SET title = (.+), description = (.+) WHERE id = (.+) AND user_id = (.+)`).
			WithArgs("doc-1", "user-a", "Final Report", "v2").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(ctx, "doc-1", "user-a", "Final Report", strPtr("v2"))
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("blank description cleared to null", func(t *testing.T) {
		mock.ExpectExec("UPDATE documents").
			WithArgs("doc-1", "user-a", "Final Report", nil).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Update(ctx, "doc-1", "user-a", "Final Report", strPtr("")))
	})

	t.Run("another user's document is rejected", func(t *testing.T) {
		mock.ExpectExec("UPDATE documents").
			WithArgs("doc-1", "user-b", "Hijack", nil).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(ctx, "doc-1", "user-b", "Hijack", nil)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestDocumentPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM documents WHERE id = (.+) AND user_id = (.+)`).
		WithArgs("test-id", "user-a").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Delete(ctx, "test-id", "user-a")
	assert.NoError(t, err)

	mock.ExpectExec("DELETE FROM documents").
		WithArgs("test-id", "user-b").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Delete(ctx, "test-id", "user-b")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\\b\%c\_d`, escapeLike(`a\b%c_d`))
	assert.Equal(t, "midterm", escapeLike("midterm"))
}
