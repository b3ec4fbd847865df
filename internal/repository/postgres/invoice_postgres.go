package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"etasync/internal/model"
	"etasync/internal/repository"
)

// InvoicePostgres is a PostgreSQL implementation of repository.InvoiceRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type InvoicePostgres struct {
	db *sql.DB
}

// NewInvoicePostgres creates a new InvoicePostgres repository.
func NewInvoicePostgres(db *sql.DB) *InvoicePostgres {
	return &InvoicePostgres{db: db}
}

var _ repository.InvoiceRepository = (*InvoicePostgres)(nil)

const summaryColumns = `uuid, submission_uuid, long_id, internal_id, document_type, date_time_issued,
		taxpayer_activity_code, issuer_id, issuer_name, receiver_id, receiver_name,
		total_sales_amount, total_discount_amount, net_amount, total_tax, total_amount,
		status, raw_object_key, created_at, updated_at`

const fullColumns = summaryColumns + `, full_document`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner, withDocument bool) (*model.Invoice, error) {
	var (
		inv     model.Invoice
		docType string
		raw     []byte
	)
	dest := []any{
		&inv.UUID,
		&inv.SubmissionUUID,
		&inv.LongID,
		&inv.InternalID,
		&docType,
		&inv.DateTimeIssued,
		&inv.TaxpayerActivityCode,
		&inv.IssuerID,
		&inv.IssuerName,
		&inv.ReceiverID,
		&inv.ReceiverName,
		&inv.TotalSalesAmount,
		&inv.TotalDiscountAmount,
		&inv.NetAmount,
		&inv.TotalTax,
		&inv.TotalAmount,
		&inv.Status,
		&inv.RawObjectKey,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	}
	if withDocument {
		dest = append(dest, &raw)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	inv.DocumentType = model.DocumentType(docType)
	if withDocument {
		inv.FullDocument = raw
	}
	return &inv, nil
}

// Upsert inserts or refreshes an invoice keyed by uuid in a single statement.
func (r *InvoicePostgres) Upsert(ctx context.Context, inv *model.Invoice) (*model.Invoice, error) {
	const q = `
		INSERT INTO eta_invoices (
			uuid, submission_uuid, long_id, internal_id, document_type, date_time_issued,
			taxpayer_activity_code, issuer_id, issuer_name, receiver_id, receiver_name,
			total_sales_amount, total_discount_amount, net_amount, total_tax, total_amount,
			status, raw_object_key, created_at, updated_at, full_document
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (uuid) DO UPDATE SET
			status                = EXCLUDED.status,
			total_sales_amount    = EXCLUDED.total_sales_amount,
			total_discount_amount = EXCLUDED.total_discount_amount,
			net_amount            = EXCLUDED.net_amount,
			total_tax             = EXCLUDED.total_tax,
			total_amount          = EXCLUDED.total_amount,
			full_document         = EXCLUDED.full_document,
			raw_object_key        = COALESCE(NULLIF(EXCLUDED.raw_object_key, ''), eta_invoices.raw_object_key),
			updated_at            = EXCLUDED.updated_at
		RETURNING ` + fullColumns

	row := r.db.QueryRowContext(ctx, q,
		inv.UUID,
		inv.SubmissionUUID,
		inv.LongID,
		inv.InternalID,
		string(inv.DocumentType),
		inv.DateTimeIssued,
		inv.TaxpayerActivityCode,
		inv.IssuerID,
		inv.IssuerName,
		inv.ReceiverID,
		inv.ReceiverName,
		inv.TotalSalesAmount,
		inv.TotalDiscountAmount,
		inv.NetAmount,
		inv.TotalTax,
		inv.TotalAmount,
		inv.Status,
		inv.RawObjectKey,
		inv.CreatedAt,
		inv.UpdatedAt,
		[]byte(inv.FullDocument),
	)
	return scanInvoice(row, true)
}

// FindByUUID fetches a single invoice including its raw payload.
// A missing row surfaces as sql.ErrNoRows.
func (r *InvoicePostgres) FindByUUID(ctx context.Context, uuid string) (*model.Invoice, error) {
	q := `SELECT ` + fullColumns + ` FROM eta_invoices WHERE uuid = $1`
	return scanInvoice(r.db.QueryRowContext(ctx, q, uuid), true)
}

// buildWhere renders the filter as a WHERE clause with positional arguments.
func buildWhere(f repository.InvoiceFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.ReceiverID != "" {
		args = append(args, f.ReceiverID)
		conds = append(conds, fmt.Sprintf("receiver_id = $%d", len(args)))
	}
	if f.IssuedFrom != nil {
		args = append(args, *f.IssuedFrom)
		conds = append(conds, fmt.Sprintf("date_time_issued >= $%d", len(args)))
	}
	if f.IssuedTo != nil {
		args = append(args, *f.IssuedTo)
		conds = append(conds, fmt.Sprintf("date_time_issued <= $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns invoices using LIMIT/OFFSET pagination and a total count.
func (r *InvoicePostgres) List(ctx context.Context, f repository.InvoiceFilter, pq repository.PageQuery) (*repository.PageResult[model.Invoice], error) {
	where, args := buildWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM eta_invoices`+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	qList := `SELECT ` + summaryColumns + ` FROM eta_invoices` + where +
		fmt.Sprintf(` ORDER BY date_time_issued DESC, uuid DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, qList, append(args, pq.Limit, pq.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows, false)
		if err != nil {
			return nil, err
		}
		items = append(items, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Invoice]{
		Items: items,
		Total: total,
	}, nil
}

// Totals sums total_amount and total_tax over the filtered invoices.
func (r *InvoicePostgres) Totals(ctx context.Context, f repository.InvoiceFilter) (*model.InvoiceTotals, error) {
	where, args := buildWhere(f)
	q := `SELECT COUNT(*), COALESCE(SUM(total_amount), 0), COALESCE(SUM(total_tax), 0) FROM eta_invoices` + where

	var t model.InvoiceTotals
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&t.Count, &t.TotalAmount, &t.TotalTax); err != nil {
		return nil, err
	}
	return &t, nil
}
