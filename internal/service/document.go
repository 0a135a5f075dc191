package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"studocs/internal/auth"
	"studocs/internal/model"
	"studocs/internal/repository"
	"studocs/internal/storage"
	"studocs/internal/validation"
)

var (
	ErrIDRequired = errors.New("id is required")
	// ErrNoSession is returned when an operation runs without a signed-in user.
	ErrNoSession = fmt.Errorf("%w: no active session", auth.ErrUnauthorized)
)

const (
	defaultMaxUpload    = 10 * units.MB
	defaultSignedURLTTL = time.Hour
)

var tracer = otel.Tracer("studocs/internal/service")

// UploadInput is one submitted upload form. Body must be rewindable so the
// content can be sniffed before it is streamed to storage.
type UploadInput struct {
	Title       string
	Description string
	Filename    string
	Size        int64
	Body        io.ReadSeeker
}

// Download is an open file stream. Callers close Body. Size is -1 when the
// backend did not report a length.
type Download struct {
	Body        io.ReadCloser
	Filename    string
	ContentType string
	Size        int64
}

// DocumentService coordinates the metadata store and object storage for the
// signed-in user. Every method takes the session explicitly.
type DocumentService interface {
	// List returns the user's documents, newest first, optionally filtered by title.
	List(ctx context.Context, sess *model.Session, search string) ([]model.Document, error)

	// Upload stores the file under "{user_id}/{unix_millis}_{filename}" and
	// then inserts its metadata. A failed insert removes the stored file.
	Upload(ctx context.Context, sess *model.Session, in UploadInput) (*model.Document, error)

	// Update edits title and description. Other fields are untouched.
	Update(ctx context.Context, sess *model.Session, id, title, description string) error

	// Delete removes the stored file, then the row. If the file cannot be
	// removed the row is kept so the document stays listed.
	Delete(ctx context.Context, sess *model.Session, id string) error

	// ViewURL mints a signed read URL for the document's file.
	ViewURL(ctx context.Context, sess *model.Session, id string) (string, error)

	// Download opens the document's file for streaming as "{title}.pdf".
	Download(ctx context.Context, sess *model.Session, id string) (*Download, error)
}

// Option configures a documentService.
type Option func(*documentService)

// WithMaxUploadBytes caps upload size. Zero or less keeps the default.
func WithMaxUploadBytes(n int64) Option {
	return func(s *documentService) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// WithSignedURLTTL sets how long view URLs stay valid.
func WithSignedURLTTL(d time.Duration) Option {
	return func(s *documentService) {
		if d > 0 {
			s.signedURLTTL = d
		}
	}
}

// WithClock overrides the time source used for storage keys and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *documentService) { s.now = now }
}

type documentService struct {
	store        storage.Storage
	repo         repository.DocumentRepository
	log          *zap.Logger
	maxUpload    int64
	signedURLTTL time.Duration
	now          func() time.Time
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, log *zap.Logger, opts ...Option) DocumentService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &documentService{
		store:        store,
		repo:         repo,
		log:          log,
		maxUpload:    defaultMaxUpload,
		signedURLTTL: defaultSignedURLTTL,
		now:          time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func userID(sess *model.Session) (string, error) {
	if sess == nil || sess.User.ID == "" {
		return "", ErrNoSession
	}
	return sess.User.ID, nil
}

func startSpan(ctx context.Context, name string, sess *model.Session) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, name)
	if sess != nil {
		span.SetAttributes(attribute.String("user.id", sess.User.ID))
	}
	return ctx, span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *documentService) List(ctx context.Context, sess *model.Session, search string) (_ []model.Document, err error) {
	ctx, span := startSpan(ctx, "DocumentService.List", sess)
	defer func() { endSpan(span, err) }()

	uid, err := userID(sess)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, uid, search)
}

// storageFilename keeps only the last path element of a client-supplied name.
func storageFilename(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	switch name {
	case "", ".", "/", "..":
		return "document.pdf"
	}
	return name
}

func (s *documentService) Upload(ctx context.Context, sess *model.Session, in UploadInput) (_ *model.Document, err error) {
	ctx, span := startSpan(ctx, "DocumentService.Upload", sess)
	defer func() { endSpan(span, err) }()

	uid, err := userID(sess)
	if err != nil {
		return nil, err
	}
	if err := validation.Title(in.Title); err != nil {
		return nil, err
	}
	if err := validation.FileSize(in.Size, s.maxUpload); err != nil {
		return nil, err
	}
	if err := validation.SniffPDF(in.Body); err != nil {
		return nil, err
	}

	now := s.now()
	name := storageFilename(in.Filename)
	key := fmt.Sprintf("%s/%d_%s", uid, now.UnixMilli(), name)
	span.SetAttributes(attribute.String("storage.key", key), attribute.Int64("upload.size", in.Size))

	if _, err := s.store.Put(ctx, key, in.Body, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: validation.PDFContentType,
		Metadata:    map[string]string{"original-filename": name},
	}); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	doc := &model.Document{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Description: repository.NormalizeDescription(in.Description),
		FilePath:    key,
		UploadedAt:  now.UTC(),
		UserID:      uid,
	}
	stored, err := s.repo.Insert(ctx, doc)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.log.Warn("upload_rollback_failed",
				zap.String("key", key),
				zap.NamedError("insert_error", err),
				zap.NamedError("delete_error", delErr),
			)
		}
		return nil, fmt.Errorf("save metadata: %w", err)
	}
	return stored, nil
}

func (s *documentService) Update(ctx context.Context, sess *model.Session, id, title, description string) (err error) {
	ctx, span := startSpan(ctx, "DocumentService.Update", sess)
	defer func() { endSpan(span, err) }()

	uid, err := userID(sess)
	if err != nil {
		return err
	}
	if id == "" {
		return ErrIDRequired
	}
	if err := validation.Title(title); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, uid, strings.TrimSpace(title), repository.NormalizeDescription(description))
}

func (s *documentService) Delete(ctx context.Context, sess *model.Session, id string) (err error) {
	ctx, span := startSpan(ctx, "DocumentService.Delete", sess)
	defer func() { endSpan(span, err) }()

	doc, err := s.find(ctx, sess, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, doc.FilePath); err != nil {
		s.log.Warn("document_delete_storage_failed", zap.String("document_id", id), zap.String("key", doc.FilePath), zap.Error(err))
		return fmt.Errorf("delete storage: %w", err)
	}
	if err := s.repo.Delete(ctx, doc.ID, doc.UserID); err != nil {
		// The file is gone but the row remains; the next delete attempt finishes the job.
		s.log.Error("document_delete_row_failed", zap.String("document_id", id), zap.String("key", doc.FilePath), zap.Error(err))
		return err
	}
	return nil
}

func (s *documentService) ViewURL(ctx context.Context, sess *model.Session, id string) (_ string, err error) {
	ctx, span := startSpan(ctx, "DocumentService.ViewURL", sess)
	defer func() { endSpan(span, err) }()

	doc, err := s.find(ctx, sess, id)
	if err != nil {
		return "", err
	}
	return s.store.PresignGet(ctx, doc.FilePath, s.signedURLTTL)
}

func (s *documentService) Download(ctx context.Context, sess *model.Session, id string) (_ *Download, err error) {
	ctx, span := startSpan(ctx, "DocumentService.Download", sess)
	defer func() { endSpan(span, err) }()

	doc, err := s.find(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	body, info, err := s.store.Get(ctx, doc.FilePath)
	if err != nil {
		return nil, err
	}
	ct := info.ContentType
	if ct == "" {
		ct = validation.PDFContentType
	}
	return &Download{
		Body:        body,
		Filename:    doc.Title + ".pdf",
		ContentType: ct,
		Size:        info.Size,
	}, nil
}

func (s *documentService) find(ctx context.Context, sess *model.Session, id string) (*model.Document, error) {
	uid, err := userID(sess)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrIDRequired
	}
	return s.repo.FindByID(ctx, id, uid)
}
