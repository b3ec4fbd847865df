package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDocumentType(t *testing.T) {
	tests := []struct {
		code string
		want DocumentType
	}{
		{"c", DocumentTypeCreditNote},
		{"C", DocumentTypeCreditNote},
		{"d", DocumentTypeDebitNote},
		{" D ", DocumentTypeDebitNote},
		{"i", DocumentTypeInvoice},
		{"I", DocumentTypeInvoice},
		{"", DocumentTypeInvoice},
		{"ei", DocumentTypeInvoice},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDocumentType(tt.code))
		})
	}
}
