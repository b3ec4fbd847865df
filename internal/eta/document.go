package eta

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// TaxTotal is one aggregated tax line.
type TaxTotal struct {
	TaxType string  `json:"taxType"`
	Amount  float64 `json:"amount"`
}

// DocumentBody is the part of the nested signed document the sync engine reads.
type DocumentBody struct {
	DocumentType        string     `json:"documentType"`
	DocumentTypeVersion string     `json:"documentTypeVersion"`
	DateTimeIssued      string     `json:"dateTimeIssued"`
	TotalSalesAmount    float64    `json:"totalSalesAmount"`
	TotalDiscountAmount float64    `json:"totalDiscountAmount"`
	NetAmount           float64    `json:"netAmount"`
	TotalAmount         float64    `json:"totalAmount"`
	TaxTotals           []TaxTotal `json:"taxTotals"`
}

// BodyEncoding tells how the nested document arrived on the wire.
type BodyEncoding int

const (
	BodyAbsent BodyEncoding = iota
	BodyString
	BodyObject
)

func (e BodyEncoding) String() string {
	switch e {
	case BodyString:
		return "string"
	case BodyObject:
		return "object"
	default:
		return "absent"
	}
}

// Body is the nested document, which the authority sends either as a JSON
// encoded string or as an object. Both forms are resolved into Content during
// decoding. Err is set (matching ErrMalformedBody) when the payload could not
// be parsed; decoding of the surrounding document still succeeds.
type Body struct {
	Encoding BodyEncoding
	Content  DocumentBody
	Err      error
}

// Parsed reports whether Content was filled from the payload.
func (b Body) Parsed() bool {
	return b.Encoding != BodyAbsent && b.Err == nil
}

func (b *Body) UnmarshalJSON(data []byte) error {
	*b = Body{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	switch trimmed[0] {
	case '"':
		b.Encoding = BodyString
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			b.Err = fmt.Errorf("%w: %w", ErrMalformedBody, err)
			return nil
		}
		if strings.TrimSpace(s) == "" {
			b.Err = fmt.Errorf("%w: empty document string", ErrMalformedBody)
			return nil
		}
		if err := json.Unmarshal([]byte(s), &b.Content); err != nil {
			b.Content = DocumentBody{}
			b.Err = fmt.Errorf("%w: %w", ErrMalformedBody, err)
		}
	case '{':
		b.Encoding = BodyObject
		if err := json.Unmarshal(trimmed, &b.Content); err != nil {
			b.Content = DocumentBody{}
			b.Err = fmt.Errorf("%w: %w", ErrMalformedBody, err)
		}
	default:
		b.Err = fmt.Errorf("%w: unexpected %q token", ErrMalformedBody, trimmed[0])
	}
	return nil
}

// Document is the full raw document returned by the authority. Raw keeps the
// payload verbatim.
type Document struct {
	UUID                 string     `json:"uuid"`
	SubmissionID         string     `json:"submissionId"`
	LongID               string     `json:"longId"`
	InternalID           string     `json:"internalId"`
	TypeName             string     `json:"typeName"`
	DocumentType         string     `json:"documentType"`
	DocumentTypeVersion  string     `json:"documentTypeVersion"`
	Status               string     `json:"status"`
	DateTimeIssued       string     `json:"dateTimeIssued"`
	DateTimeReceived     string     `json:"dateTimeReceived"`
	TaxpayerActivityCode string     `json:"taxpayerActivityCode"`
	IssuerID             string     `json:"issuerId"`
	IssuerName           string     `json:"issuerName"`
	ReceiverID           string     `json:"receiverId"`
	ReceiverName         string     `json:"receiverName"`
	TotalSalesAmount     float64    `json:"totalSalesAmount"`
	TotalDiscountAmount  float64    `json:"totalDiscountAmount"`
	NetAmount            float64    `json:"netAmount"`
	TotalAmount          float64    `json:"totalAmount"`
	TaxTotals            []TaxTotal `json:"taxTotals"`
	Body                 Body       `json:"document"`

	Raw json.RawMessage `json:"-"`
}

func (d *Document) UnmarshalJSON(data []byte) error {
	type plain Document
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = Document(p)
	d.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// FetchDocument retrieves the raw document for uuid. Any transport error or
// non-success status matches ErrDocumentUnavailable.
func (c *Client) FetchDocument(ctx context.Context, token, uuid string) (*Document, error) {
	if uuid == "" {
		return nil, fmt.Errorf("%w: empty uuid", ErrDocumentUnavailable)
	}
	endpoint := c.apiURL + "/documents/" + url.PathEscape(uuid) + "/raw"

	resp, err := c.get(ctx, token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDocumentUnavailable, uuid, err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, fmt.Errorf("%w: %s: status %d", ErrDocumentUnavailable, uuid, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %w", ErrDocumentUnavailable, uuid, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: decode: %w", ErrDocumentUnavailable, uuid, err)
	}
	if doc.UUID == "" {
		doc.UUID = uuid
	}
	return &doc, nil
}

// IsUnavailable reports whether err is a document fetch failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrDocumentUnavailable)
}
