package mocks

import (
	"context"

	"etasync/internal/eta"
	"github.com/stretchr/testify/mock"
)

type MockAuthority struct {
	mock.Mock
}

func (m *MockAuthority) Token(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockAuthority) SearchDocuments(ctx context.Context, token string, q eta.SearchQuery) (*eta.SearchResponse, error) {
	args := m.Called(ctx, token, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eta.SearchResponse), args.Error(1)
}

func (m *MockAuthority) FetchDocument(ctx context.Context, token, uuid string) (*eta.Document, error) {
	args := m.Called(ctx, token, uuid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eta.Document), args.Error(1)
}
