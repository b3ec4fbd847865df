package eta

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedSearcher struct {
	pages   []*SearchResponse
	errAt   int
	queries []SearchQuery
}

func (s *scriptedSearcher) SearchDocuments(_ context.Context, _ string, q SearchQuery) (*SearchResponse, error) {
	s.queries = append(s.queries, q)
	n := len(s.queries)
	if s.errAt == n {
		return nil, ErrSearchPage
	}
	return s.pages[n-1], nil
}

func page(token string, statuses ...string) *SearchResponse {
	resp := &SearchResponse{Metadata: SearchMetadata{ContinuationToken: token}}
	for i, st := range statuses {
		resp.Result = append(resp.Result, SearchItem{UUID: token + "-" + string(rune('a'+i)), Status: st})
	}
	return resp
}

func drain(ctx context.Context, p *Paginator) []*Page {
	var out []*Page
	for p.Next(ctx) {
		out = append(out, p.Page())
	}
	return out
}

func TestPaginator_StopsAtSentinel(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		s := &scriptedSearcher{}
		for i := 1; i < n; i++ {
			s.pages = append(s.pages, page("tok-"+string(rune('0'+i)), "Valid"))
		}
		s.pages = append(s.pages, page(EndOfResultSet, "Valid"))

		p := NewPaginator(s, "tok", SearchQuery{PageSize: 50, ContinuationToken: "ignored"})
		pages := drain(context.Background(), p)

		assert.Len(t, pages, n)
		assert.Len(t, s.queries, n)
		assert.Equal(t, n, p.Requests())
		assert.NoError(t, p.Err())
		assert.False(t, p.Next(context.Background()), "paginator must not restart")
		assert.Len(t, s.queries, n)
	}
}

func TestPaginator_TokenOrder(t *testing.T) {
	s := &scriptedSearcher{pages: []*SearchResponse{
		page("first"),
		page("second"),
		page(EndOfResultSet),
	}}

	drain(context.Background(), NewPaginator(s, "tok", SearchQuery{}))

	require.Len(t, s.queries, 3)
	assert.Equal(t, "", s.queries[0].ContinuationToken)
	assert.Equal(t, "first", s.queries[1].ContinuationToken)
	assert.Equal(t, "second", s.queries[2].ContinuationToken)
}

func TestPaginator_AbsentTokenEndsIteration(t *testing.T) {
	s := &scriptedSearcher{pages: []*SearchResponse{page("", "Valid", "Valid")}}

	pages := drain(context.Background(), NewPaginator(s, "tok", SearchQuery{}))

	assert.Len(t, pages, 1)
	assert.Len(t, s.queries, 1)
}

func TestPaginator_PartitionsByStatus(t *testing.T) {
	s := &scriptedSearcher{pages: []*SearchResponse{
		page(EndOfResultSet, "Valid", "Invalid", "Valid", "Rejected", "Cancelled", "Submitted"),
	}}

	pages := drain(context.Background(), NewPaginator(s, "tok", SearchQuery{}))

	require.Len(t, pages, 1)
	assert.Len(t, pages[0].Items, 6)
	assert.Len(t, pages[0].Usable, 2)
	assert.Len(t, pages[0].Skipped, 4)
	assert.Equal(t, 1, pages[0].Number)
}

func TestPaginator_FailedPageKeepsEarlierPages(t *testing.T) {
	s := &scriptedSearcher{
		pages: []*SearchResponse{page("more", "Valid"), nil},
		errAt: 2,
	}
	p := NewPaginator(s, "tok", SearchQuery{})

	pages := drain(context.Background(), p)

	assert.Len(t, pages, 1)
	assert.ErrorIs(t, p.Err(), ErrSearchPage)
	assert.Nil(t, p.Page())
}

func TestPaginator_NilResponseFailsPage(t *testing.T) {
	s := &scriptedSearcher{pages: []*SearchResponse{page("more", "Valid"), nil}}
	p := NewPaginator(s, "tok", SearchQuery{})

	var pages []*Page
	require.NotPanics(t, func() { pages = drain(context.Background(), p) })

	assert.Len(t, pages, 1)
	assert.Equal(t, 2, p.Requests())
	assert.ErrorIs(t, p.Err(), ErrSearchPage)
	assert.False(t, p.Next(context.Background()))
}

func TestPaginator_RepeatedTokenStops(t *testing.T) {
	s := &scriptedSearcher{pages: []*SearchResponse{page("loop"), page("loop", "Valid"), page("loop")}}
	p := NewPaginator(s, "tok", SearchQuery{})

	pages := drain(context.Background(), p)

	assert.Len(t, pages, 2)
	assert.Len(t, s.queries, 2)
	assert.ErrorIs(t, p.Err(), ErrSearchPage)
}

func TestPaginator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	s := &scriptedSearcher{pages: []*SearchResponse{page(EndOfResultSet)}}
	p := NewPaginator(s, "tok", SearchQuery{})

	assert.False(t, p.Next(ctx))
	assert.Empty(t, s.queries)
	assert.True(t, errors.Is(p.Err(), context.DeadlineExceeded))
}
