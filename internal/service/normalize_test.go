package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etasync/internal/eta"
	"etasync/internal/model"
)

func decodeDocument(t *testing.T, payload string) *eta.Document {
	t.Helper()
	var doc eta.Document
	require.NoError(t, json.Unmarshal([]byte(payload), &doc))
	return &doc
}

func TestClassifyDocument(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    model.DocumentType
	}{
		{"nested object wins", `{"typeName":"i","document":{"documentType":"C"}}`, model.DocumentTypeCreditNote},
		{"nested string wins", `{"typeName":"i","document":"{\"documentType\":\"d\"}"}`, model.DocumentTypeDebitNote},
		{"falls back to type name", `{"typeName":"c"}`, model.DocumentTypeCreditNote},
		{"empty nested type falls back", `{"typeName":"d","document":{"documentType":""}}`, model.DocumentTypeDebitNote},
		{"malformed nested falls back", `{"typeName":"c","document":"{not json"}`, model.DocumentTypeCreditNote},
		{"unknown defaults to invoice", `{"typeName":"x"}`, model.DocumentTypeInvoice},
		{"nothing defaults to invoice", `{}`, model.DocumentTypeInvoice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyDocument(decodeDocument(t, tt.payload)))
		})
	}
}

func TestNormalizeTotals(t *testing.T) {
	t.Run("nested amounts preferred", func(t *testing.T) {
		doc := decodeDocument(t, `{
			"totalSalesAmount": 1, "netAmount": 2, "totalAmount": 3,
			"taxTotals": [{"taxType":"T1","amount":9}],
			"document": {"totalSalesAmount": 100, "netAmount": 90, "totalAmount": 104.5, "totalDiscountAmount": 10,
				"taxTotals": [{"taxType":"T1","amount":12.6},{"taxType":"T4","amount":1.9}]}
		}`)
		got := NormalizeTotals(doc)
		assert.Equal(t, 100.0, got.Sales)
		assert.Equal(t, 10.0, got.Discount)
		assert.Equal(t, 90.0, got.Net)
		assert.InDelta(t, 14.5, got.Tax, 1e-9)
		assert.Equal(t, 104.5, got.Payable)
	})

	t.Run("zero nested amount falls back", func(t *testing.T) {
		doc := decodeDocument(t, `{"totalAmount": 55, "taxTotals":[{"amount":5}], "document": {"totalAmount": 0}}`)
		got := NormalizeTotals(doc)
		assert.Equal(t, 55.0, got.Payable)
		assert.Equal(t, 5.0, got.Tax)
	})

	t.Run("unparsed body uses top level", func(t *testing.T) {
		doc := decodeDocument(t, `{"totalSalesAmount": 7, "document": "oops"}`)
		assert.Equal(t, 7.0, NormalizeTotals(doc).Sales)
	})

	t.Run("missing everywhere is zero", func(t *testing.T) {
		assert.Equal(t, Totals{}, NormalizeTotals(decodeDocument(t, `{}`)))
	})
}

func TestInvoiceFromDocument(t *testing.T) {
	now := time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC)
	payload := `{"uuid":"U1","submissionId":"S1","longId":"L1","internalId":"INV-1","typeName":"i",
		"status":"Valid","dateTimeIssued":"2024-11-02T10:15:30.1234567","issuerId":"111","issuerName":"Acme",
		"receiverId":"222","receiverName":"Buyer","taxpayerActivityCode":"4620",
		"document":{"documentType":"I","totalAmount":114}}`
	inv := InvoiceFromDocument(decodeDocument(t, payload), now)

	assert.Equal(t, "U1", inv.UUID)
	assert.Equal(t, "S1", inv.SubmissionUUID)
	assert.Equal(t, "INV-1", inv.InternalID)
	assert.Equal(t, model.DocumentTypeInvoice, inv.DocumentType)
	assert.Equal(t, time.Date(2024, 11, 2, 10, 15, 30, 123456700, time.UTC), inv.DateTimeIssued)
	assert.Equal(t, "4620", inv.TaxpayerActivityCode)
	assert.Equal(t, 114.0, inv.TotalAmount)
	assert.Equal(t, "Valid", inv.Status)
	assert.JSONEq(t, payload, string(inv.FullDocument))
	assert.Equal(t, now, inv.CreatedAt)
	assert.Equal(t, now, inv.UpdatedAt)
}

func TestInvoiceFromDocument_IssuedFallbacks(t *testing.T) {
	now := time.Now()

	inv := InvoiceFromDocument(decodeDocument(t, `{"document":{"dateTimeIssued":"2024-01-05T08:00:00Z"}}`), now)
	assert.Equal(t, time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC), inv.DateTimeIssued)

	inv = InvoiceFromDocument(decodeDocument(t, `{"dateTimeReceived":"2024-01-06T09:00:00+02:00"}`), now)
	assert.Equal(t, time.Date(2024, 1, 6, 7, 0, 0, 0, time.UTC), inv.DateTimeIssued)

	inv = InvoiceFromDocument(&eta.Document{UUID: "x"}, now)
	assert.True(t, inv.DateTimeIssued.IsZero())
	assert.Equal(t, "{}", string(inv.FullDocument))
}

func TestArchiveKey(t *testing.T) {
	tests := []struct {
		name string
		inv  model.Invoice
		want string
	}{
		{"invoice", model.Invoice{UUID: "U1", InternalID: "INV-1", DocumentType: model.DocumentTypeInvoice}, "invoices/U1/INV-1.json"},
		{"credit note", model.Invoice{UUID: "U2", InternalID: "CN-1", DocumentType: model.DocumentTypeCreditNote}, "invoices/U2/credit_CN-1.json"},
		{"debit note", model.Invoice{UUID: "U3", InternalID: "DN-1", DocumentType: model.DocumentTypeDebitNote}, "invoices/U3/debit_DN-1.json"},
		{"unsafe characters", model.Invoice{UUID: "U4", InternalID: "2024/11 #5", DocumentType: model.DocumentTypeInvoice}, "invoices/U4/2024_11__5.json"},
		{"no internal id", model.Invoice{UUID: "U5", DocumentType: model.DocumentTypeInvoice}, "invoices/U5/U5.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ArchiveKey(&tt.inv))
		})
	}
}
