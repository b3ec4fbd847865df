package repository

import (
	"context"
	"time"

	"etasync/internal/model"
)

// InvoiceRepository defines data access for synchronized authority documents.
// Strictly persistence; no business logic.
type InvoiceRepository interface {
	// Upsert inserts the invoice or, when its UUID already exists, updates
	// status, totals, raw payload, archive key and updated_at in place.
	// The operation is atomic at the storage layer.
	Upsert(ctx context.Context, inv *model.Invoice) (*model.Invoice, error)

	// FindByUUID returns an invoice with its full document.
	FindByUUID(ctx context.Context, uuid string) (*model.Invoice, error)

	// List returns a page of invoices, newest issue date first, without the
	// full document payload.
	List(ctx context.Context, f InvoiceFilter, pq PageQuery) (*PageResult[model.Invoice], error)

	// Totals aggregates count, total amount and total tax for the filter.
	Totals(ctx context.Context, f InvoiceFilter) (*model.InvoiceTotals, error)
}

// InvoiceFilter narrows invoice queries. Zero values mean no restriction.
type InvoiceFilter struct {
	ReceiverID string
	IssuedFrom *time.Time
	IssuedTo   *time.Time
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
