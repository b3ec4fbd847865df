package eta

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// TimestampLayout is the second-precision UTC form the search endpoint accepts.
const TimestampLayout = "2006-01-02T15:04:05Z"

// SearchQuery selects one page of submitted documents.
type SearchQuery struct {
	From              time.Time
	To                time.Time
	PageSize          int
	ReceiverID        string
	ContinuationToken string
}

// Values encodes q as search endpoint query parameters. A receiver filter
// implies direction=Sent.
func (q SearchQuery) Values() url.Values {
	v := url.Values{}
	v.Set("submissionDateFrom", q.From.UTC().Format(TimestampLayout))
	v.Set("submissionDateTo", q.To.UTC().Format(TimestampLayout))
	v.Set("pageSize", strconv.Itoa(q.PageSize))
	if q.ReceiverID != "" {
		v.Set("direction", "Sent")
		v.Set("receiverId", q.ReceiverID)
	}
	if q.ContinuationToken != "" {
		v.Set("continuationToken", q.ContinuationToken)
	}
	return v
}

// SearchItem is a lightweight search hit.
type SearchItem struct {
	UUID           string  `json:"uuid"`
	SubmissionUUID string  `json:"submissionUUID"`
	LongID         string  `json:"longId"`
	InternalID     string  `json:"internalId"`
	TypeName       string  `json:"typeName"`
	Status         string  `json:"status"`
	DateTimeIssued string  `json:"dateTimeIssued"`
	IssuerID       string  `json:"issuerId"`
	IssuerName     string  `json:"issuerName"`
	ReceiverID     string  `json:"receiverId"`
	ReceiverName   string  `json:"receiverName"`
	TotalAmount    float64 `json:"total"`
}

// Usable reports whether the item carries the authority's accepted status.
func (i SearchItem) Usable() bool {
	return i.Status == StatusValid
}

// SearchMetadata holds the pagination cursor of a search response.
type SearchMetadata struct {
	ContinuationToken string `json:"continuationToken"`
}

// SearchResponse is one page returned by the search endpoint.
type SearchResponse struct {
	Result   []SearchItem   `json:"result"`
	Metadata SearchMetadata `json:"metadata"`
}

// SearchDocuments requests a single search page. Failures match ErrSearchPage.
func (c *Client) SearchDocuments(ctx context.Context, token string, q SearchQuery) (*SearchResponse, error) {
	endpoint := c.apiURL + "/documents/search?" + q.Values().Encode()

	resp, err := c.get(ctx, token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchPage, err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, fmt.Errorf("%w: status %d: %s", ErrSearchPage, resp.StatusCode, readSnippet(resp.Body))
	}

	var out SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrSearchPage, err)
	}
	return &out, nil
}
