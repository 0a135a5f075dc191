package mocks

import (
	"context"

	"studocs/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockSessionClient struct {
	mock.Mock
}

func (m *MockSessionClient) CurrentSession(ctx context.Context, accessToken string) *model.Session {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*model.Session)
}

func (m *MockSessionClient) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockSessionClient) SignUp(ctx context.Context, email, password, redirectTo string) error {
	args := m.Called(ctx, email, password, redirectTo)
	return args.Error(0)
}

func (m *MockSessionClient) SignOut(ctx context.Context, accessToken string) error {
	args := m.Called(ctx, accessToken)
	return args.Error(0)
}
