package model

import (
	"encoding/json"
	"strings"
	"time"
)

// DocumentType is the classification tag stored with every synchronized document.
type DocumentType string

const (
	DocumentTypeInvoice    DocumentType = "I"
	DocumentTypeCreditNote DocumentType = "C"
	DocumentTypeDebitNote  DocumentType = "D"
)

// ParseDocumentType maps an authority type code to a tag, case-insensitively.
// Unknown or empty codes are standard invoices.
func ParseDocumentType(code string) DocumentType {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "c":
		return DocumentTypeCreditNote
	case "d":
		return DocumentTypeDebitNote
	default:
		return DocumentTypeInvoice
	}
}

// Invoice is a tax authority document as persisted locally, keyed by UUID.
type Invoice struct {
	UUID                 string          `json:"uuid"`
	SubmissionUUID       string          `json:"submissionUuid"`
	LongID               string          `json:"longId"`
	InternalID           string          `json:"internalId"`
	DocumentType         DocumentType    `json:"documentType"`
	DateTimeIssued       time.Time       `json:"dateTimeIssued"`
	TaxpayerActivityCode string          `json:"taxpayerActivityCode,omitempty"`
	IssuerID             string          `json:"issuerId"`
	IssuerName           string          `json:"issuerName"`
	ReceiverID           string          `json:"receiverId"`
	ReceiverName         string          `json:"receiverName"`
	TotalSalesAmount     float64         `json:"totalSalesAmount"`
	TotalDiscountAmount  float64         `json:"totalDiscountAmount"`
	NetAmount            float64         `json:"netAmount"`
	TotalTax             float64         `json:"totalTax"`
	TotalAmount          float64         `json:"totalAmount"`
	Status               string          `json:"status"`
	FullDocument         json.RawMessage `json:"fullDocument,omitempty"`
	RawObjectKey         string          `json:"rawObjectKey,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// InvoiceTotals aggregates amounts over a set of invoices.
type InvoiceTotals struct {
	Count       int     `json:"count"`
	TotalAmount float64 `json:"totalAmount"`
	TotalTax    float64 `json:"totalTax"`
}
