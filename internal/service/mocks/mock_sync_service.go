package mocks

import (
	"context"

	"etasync/internal/model"
	"etasync/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockInvoiceSyncService struct {
	mock.Mock
}

func (m *MockInvoiceSyncService) Sync(ctx context.Context, req service.SyncRequest) (*model.SyncStats, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SyncStats), args.Error(1)
}
