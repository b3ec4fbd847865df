package mocks

import (
	"context"
	"io"

	"etasync/internal/model"
	"etasync/internal/service"
	"etasync/internal/storage"
	"github.com/stretchr/testify/mock"
)

type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) List(ctx context.Context, q service.InvoiceQuery) (*service.InvoiceListResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InvoiceListResult), args.Error(1)
}

func (m *MockInvoiceService) Get(ctx context.Context, uuid string) (*model.Invoice, error) {
	args := m.Called(ctx, uuid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *MockInvoiceService) OpenRaw(ctx context.Context, uuid string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, uuid)
	if args.Get(0) == nil {
		return nil, storage.ObjectInfo{}, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}

func (m *MockInvoiceService) RawLink(ctx context.Context, uuid string) (string, error) {
	args := m.Called(ctx, uuid)
	return args.String(0), args.Error(1)
}
