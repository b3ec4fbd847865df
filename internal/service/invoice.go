package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"etasync/internal/model"
	"etasync/internal/repository"
	"etasync/internal/storage"
)

var (
	ErrIDRequired      = errors.New("uuid is required")
	ErrNotFound        = errors.New("invoice not found")
	ErrArchiveDisabled = errors.New("raw document archive is not configured")
	ErrNotArchived     = errors.New("invoice has no archived raw document")
)

// DefaultRawLinkExpiry is the lifetime of presigned raw document links.
const DefaultRawLinkExpiry = 15 * time.Minute

// InvoiceQuery filters and paginates the local invoice list.
type InvoiceQuery struct {
	ReceiverID string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// InvoiceListResult is the service-level DTO for paginated invoices.
type InvoiceListResult struct {
	Items  []model.Invoice     `json:"data"`
	Total  int                 `json:"total"`
	Totals model.InvoiceTotals `json:"totals"`
}

// InvoiceService reads synchronized invoices back out of the local store.
type InvoiceService interface {
	// List returns invoices using limit/offset, the total count and the
	// aggregated amounts of the whole filtered set.
	List(ctx context.Context, q InvoiceQuery) (*InvoiceListResult, error)

	// Get returns a single invoice with its full document.
	Get(ctx context.Context, uuid string) (*model.Invoice, error)

	// OpenRaw streams the archived raw payload of an invoice.
	OpenRaw(ctx context.Context, uuid string) (io.ReadCloser, storage.ObjectInfo, error)

	// RawLink returns a presigned URL to the archived raw payload.
	RawLink(ctx context.Context, uuid string) (string, error)
}

type invoiceService struct {
	repo    repository.InvoiceRepository
	archive storage.Storage
}

// NewInvoiceService constructs a new InvoiceService. archive may be nil.
func NewInvoiceService(repo repository.InvoiceRepository, archive storage.Storage) InvoiceService {
	return &invoiceService{repo: repo, archive: archive}
}

func (s *invoiceService) List(ctx context.Context, q InvoiceQuery) (*InvoiceListResult, error) {
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	f := repository.InvoiceFilter{ReceiverID: q.ReceiverID, IssuedFrom: q.From, IssuedTo: q.To}

	res, err := s.repo.List(ctx, f, repository.PageQuery{Limit: q.Limit, Offset: q.Offset})
	if err != nil {
		return nil, err
	}
	totals, err := s.repo.Totals(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("invoice totals: %w", err)
	}
	items := res.Items
	if items == nil {
		items = []model.Invoice{}
	}
	return &InvoiceListResult{Items: items, Total: res.Total, Totals: *totals}, nil
}

func (s *invoiceService) Get(ctx context.Context, uuid string) (*model.Invoice, error) {
	if uuid == "" {
		return nil, ErrIDRequired
	}
	inv, err := s.repo.FindByUUID(ctx, uuid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (s *invoiceService) archivedKey(ctx context.Context, uuid string) (string, error) {
	if s.archive == nil {
		return "", ErrArchiveDisabled
	}
	inv, err := s.Get(ctx, uuid)
	if err != nil {
		return "", err
	}
	if inv.RawObjectKey == "" {
		return "", ErrNotArchived
	}
	return inv.RawObjectKey, nil
}

func (s *invoiceService) OpenRaw(ctx context.Context, uuid string) (io.ReadCloser, storage.ObjectInfo, error) {
	key, err := s.archivedKey(ctx, uuid)
	if err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	rc, info, err := s.archive.Get(ctx, key)
	if err != nil {
		return nil, storage.ObjectInfo{}, fmt.Errorf("open archive: %w", err)
	}
	return rc, info, nil
}

func (s *invoiceService) RawLink(ctx context.Context, uuid string) (string, error) {
	key, err := s.archivedKey(ctx, uuid)
	if err != nil {
		return "", err
	}
	u, err := s.archive.PresignGet(ctx, key, DefaultRawLinkExpiry)
	if err != nil {
		return "", fmt.Errorf("presign archive: %w", err)
	}
	return u, nil
}
