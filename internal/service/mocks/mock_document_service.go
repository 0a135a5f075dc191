package mocks

import (
	"context"

	"studocs/internal/model"
	"studocs/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) List(ctx context.Context, sess *model.Session, search string) ([]model.Document, error) {
	args := m.Called(ctx, sess, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentService) Upload(ctx context.Context, sess *model.Session, in service.UploadInput) (*model.Document, error) {
	args := m.Called(ctx, sess, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, sess *model.Session, id, title, description string) error {
	args := m.Called(ctx, sess, id, title, description)
	return args.Error(0)
}

func (m *MockDocumentService) Delete(ctx context.Context, sess *model.Session, id string) error {
	args := m.Called(ctx, sess, id)
	return args.Error(0)
}

func (m *MockDocumentService) ViewURL(ctx context.Context, sess *model.Session, id string) (string, error) {
	args := m.Called(ctx, sess, id)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentService) Download(ctx context.Context, sess *model.Session, id string) (*service.Download, error) {
	args := m.Called(ctx, sess, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Download), args.Error(1)
}
