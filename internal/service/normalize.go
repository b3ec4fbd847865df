package service

import (
	"encoding/json"
	"path"
	"strings"
	"time"

	"etasync/internal/eta"
	"etasync/internal/model"
)

// issuedLayouts are the timestamp forms seen in authority payloads.
var issuedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
}

// ClassifyDocument reads the type tag from the nested body, then from the
// top-level type name, defaulting to a standard invoice.
func ClassifyDocument(doc *eta.Document) model.DocumentType {
	if doc.Body.Parsed() && doc.Body.Content.DocumentType != "" {
		return model.ParseDocumentType(doc.Body.Content.DocumentType)
	}
	return model.ParseDocumentType(doc.TypeName)
}

// Totals are the normalized monetary amounts of one document.
type Totals struct {
	Sales    float64
	Discount float64
	Net      float64
	Tax      float64
	Payable  float64
}

// NormalizeTotals prefers nested body amounts and falls back to the top-level
// fields. A zero nested amount counts as missing.
func NormalizeTotals(doc *eta.Document) Totals {
	var body eta.DocumentBody
	if doc.Body.Parsed() {
		body = doc.Body.Content
	}
	return Totals{
		Sales:    firstNonZero(body.TotalSalesAmount, doc.TotalSalesAmount),
		Discount: firstNonZero(body.TotalDiscountAmount, doc.TotalDiscountAmount),
		Net:      firstNonZero(body.NetAmount, doc.NetAmount),
		Tax:      firstNonZero(sumTax(body.TaxTotals), sumTax(doc.TaxTotals)),
		Payable:  firstNonZero(body.TotalAmount, doc.TotalAmount),
	}
}

func firstNonZero(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func sumTax(lines []eta.TaxTotal) float64 {
	var sum float64
	for _, l := range lines {
		sum += l.Amount
	}
	return sum
}

func parseIssued(candidates ...string) time.Time {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		for _, layout := range issuedLayouts {
			if t, err := time.Parse(layout, c); err == nil {
				return t.UTC()
			}
		}
	}
	return time.Time{}
}

// InvoiceFromDocument builds the persisted record for doc at time now.
func InvoiceFromDocument(doc *eta.Document, now time.Time) *model.Invoice {
	totals := NormalizeTotals(doc)
	raw := doc.Raw
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	return &model.Invoice{
		UUID:                 doc.UUID,
		SubmissionUUID:       doc.SubmissionID,
		LongID:               doc.LongID,
		InternalID:           doc.InternalID,
		DocumentType:         ClassifyDocument(doc),
		DateTimeIssued:       parseIssued(doc.DateTimeIssued, doc.Body.Content.DateTimeIssued, doc.DateTimeReceived),
		TaxpayerActivityCode: doc.TaxpayerActivityCode,
		IssuerID:             doc.IssuerID,
		IssuerName:           doc.IssuerName,
		ReceiverID:           doc.ReceiverID,
		ReceiverName:         doc.ReceiverName,
		TotalSalesAmount:     totals.Sales,
		TotalDiscountAmount:  totals.Discount,
		NetAmount:            totals.Net,
		TotalTax:             totals.Tax,
		TotalAmount:          totals.Payable,
		Status:               doc.Status,
		FullDocument:         raw,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// ArchiveKey names the archived raw payload of inv: credit_ and debit_
// prefixes mark notes, plain internal IDs mark invoices.
func ArchiveKey(inv *model.Invoice) string {
	name := inv.InternalID
	if name == "" {
		name = inv.UUID
	}
	switch inv.DocumentType {
	case model.DocumentTypeCreditNote:
		name = "credit_" + name
	case model.DocumentTypeDebitNote:
		name = "debit_" + name
	}
	return path.Join("invoices", safeSegment(inv.UUID), safeSegment(name)+".json")
}

func safeSegment(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}
