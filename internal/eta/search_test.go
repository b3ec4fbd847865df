package eta

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchQuery_Values(t *testing.T) {
	from := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 11, 5, 12, 30, 15, 999_000_000, time.UTC)

	t.Run("first page without filter", func(t *testing.T) {
		v := SearchQuery{From: from, To: to, PageSize: 50}.Values()

		assert.Equal(t, "2024-11-01T00:00:00Z", v.Get("submissionDateFrom"))
		assert.Equal(t, "2024-11-05T12:30:15Z", v.Get("submissionDateTo"))
		assert.Equal(t, "50", v.Get("pageSize"))
		assert.False(t, v.Has("continuationToken"))
		assert.False(t, v.Has("direction"))
		assert.False(t, v.Has("receiverId"))
	})

	t.Run("receiver filter implies sent direction", func(t *testing.T) {
		v := SearchQuery{From: from, To: to, PageSize: 50, ReceiverID: "123456789", ContinuationToken: "abc"}.Values()

		assert.Equal(t, "Sent", v.Get("direction"))
		assert.Equal(t, "123456789", v.Get("receiverId"))
		assert.Equal(t, "abc", v.Get("continuationToken"))
	})

	t.Run("non utc bounds are converted", func(t *testing.T) {
		cairo := time.FixedZone("EET", 2*60*60)
		v := SearchQuery{From: time.Date(2024, 11, 1, 2, 0, 0, 0, cairo), To: to, PageSize: 10}.Values()

		assert.Equal(t, "2024-11-01T00:00:00Z", v.Get("submissionDateFrom"))
	})
}

func TestClient_SearchDocuments(t *testing.T) {
	ctx := context.Background()
	q := SearchQuery{
		From:     time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2024, 11, 5, 0, 0, 0, 0, time.UTC),
		PageSize: 50,
	}

	t.Run("success", func(t *testing.T) {
		c := newTestClient(t)
		gock.New(testAPIHost).
			Get("/api/v1/documents/search").
			MatchHeader("Authorization", "^Bearer tok-123$").
			MatchParams(map[string]string{
				"submissionDateFrom": "2024-11-01T00:00:00Z",
				"submissionDateTo":   "2024-11-05T00:00:00Z",
				"pageSize":           "50",
			}).
			Reply(http.StatusOK).
			JSON(map[string]any{
				"result": []map[string]any{
					{"uuid": "U1", "internalId": "INV-1", "status": "Valid"},
					{"uuid": "U2", "internalId": "INV-2", "status": "Invalid"},
				},
				"metadata": map[string]any{"continuationToken": "next-1"},
			})

		resp, err := c.SearchDocuments(ctx, "tok-123", q)

		require.NoError(t, err)
		require.Len(t, resp.Result, 2)
		assert.Equal(t, "U1", resp.Result[0].UUID)
		assert.True(t, resp.Result[0].Usable())
		assert.False(t, resp.Result[1].Usable())
		assert.Equal(t, "next-1", resp.Metadata.ContinuationToken)
		assert.True(t, gock.IsDone())
	})

	t.Run("server error", func(t *testing.T) {
		c := newTestClient(t)
		gock.New(testAPIHost).
			Get("/api/v1/documents/search").
			Reply(http.StatusTooManyRequests).
			BodyString("slow down")

		resp, err := c.SearchDocuments(ctx, "tok-123", q)

		assert.Nil(t, resp)
		assert.ErrorIs(t, err, ErrSearchPage)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("undecodable body", func(t *testing.T) {
		c := newTestClient(t)
		gock.New(testAPIHost).
			Get("/api/v1/documents/search").
			Reply(http.StatusOK).
			BodyString("{")

		_, err := c.SearchDocuments(ctx, "tok-123", q)

		assert.ErrorIs(t, err, ErrSearchPage)
	})
}
