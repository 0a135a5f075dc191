package dashboard

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"studocs/internal/model"
	"studocs/internal/repository"
	"studocs/internal/storage"
)

// memRepo is an in-memory DocumentRepository with the same scoping rules as
// the Postgres one.
type memRepo struct {
	mu      sync.Mutex
	rows    map[string]model.Document
	listErr error
}

func newMemRepo() *memRepo { return &memRepo{rows: map[string]model.Document{}} }

func (r *memRepo) List(_ context.Context, userID, search string) ([]model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	search = strings.ToLower(strings.TrimSpace(search))
	out := []model.Document{}
	for _, d := range r.rows {
		if d.UserID != userID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(d.Title), search) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (r *memRepo) FindByID(_ context.Context, id, userID string) (*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.rows[id]
	if !ok || d.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (r *memRepo) Insert(_ context.Context, doc *model.Document) (*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := *doc
	if d.Description != nil {
		d.Description = repository.NormalizeDescription(*d.Description)
	}
	r.rows[d.ID] = d
	return &d, nil
}

func (r *memRepo) Update(_ context.Context, id, userID, title string, description *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.rows[id]
	if !ok || d.UserID != userID {
		return repository.ErrNotFound
	}
	d.Title = title
	d.Description = description
	r.rows[id] = d
	return nil
}

func (r *memRepo) Delete(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.rows[id]
	if !ok || d.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

// memStore is an in-memory Storage. failDelete makes every removal fail.
type memStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	failDelete bool
}

func newMemStore() *memStore { return &memStore{objects: map[string][]byte{}} }

func (s *memStore) Put(_ context.Context, key string, r io.Reader, opt storage.PutObjectOptions) (storage.ObjectInfo, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; ok {
		return storage.ObjectInfo{}, storage.ErrObjectExists
	}
	s.objects[key] = b
	return storage.ObjectInfo{Key: key, Size: int64(len(b)), ContentType: opt.ContentType}, nil
}

func (s *memStore) Get(_ context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[key]
	if !ok {
		return nil, storage.ObjectInfo{}, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), storage.ObjectInfo{Key: key, Size: int64(len(b)), ContentType: "application/pdf"}, nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete {
		return errors.New("storage unavailable")
	}
	delete(s.objects, key)
	return nil
}

func (s *memStore) PresignGet(_ context.Context, key string, expiry time.Duration) (string, error) {
	return "https://storage.test/documents/" + key + "?expires=" + expiry.String(), nil
}

// tick is a clock that advances one second per call so uploads get
// distinct, ordered timestamps.
type tick struct {
	mu sync.Mutex
	t  time.Time
}

func (c *tick) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}
