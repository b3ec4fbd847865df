package eta

import (
	"context"
	"fmt"
)

const (
	// EndOfResultSet is the continuation token that terminates a search.
	EndOfResultSet = "EndofResultSet"
	// StatusValid is the only document status the sync engine stores.
	StatusValid = "Valid"
)

// Searcher issues single search page requests.
type Searcher interface {
	SearchDocuments(ctx context.Context, token string, q SearchQuery) (*SearchResponse, error)
}

// Page is one search response with its items partitioned by status.
type Page struct {
	Number            int
	Items             []SearchItem
	Usable            []SearchItem
	Skipped           []SearchItem
	ContinuationToken string
}

func newPage(number int, resp *SearchResponse) *Page {
	p := &Page{
		Number:            number,
		Items:             resp.Result,
		ContinuationToken: resp.Metadata.ContinuationToken,
	}
	for _, item := range resp.Result {
		if item.Usable() {
			p.Usable = append(p.Usable, item)
		} else {
			p.Skipped = append(p.Skipped, item)
		}
	}
	return p
}

// Paginator walks the search pages of one query in continuation-token order.
// It is finite and cannot be restarted:
//
//	p := eta.NewPaginator(client, token, query)
//	for p.Next(ctx) {
//		page := p.Page()
//	}
//	if err := p.Err(); err != nil { ... }
type Paginator struct {
	searcher Searcher
	token    string
	query    SearchQuery

	next     string
	page     *Page
	requests int
	done     bool
	err      error
}

// NewPaginator prepares iteration; no request is made until Next.
func NewPaginator(s Searcher, token string, q SearchQuery) *Paginator {
	q.ContinuationToken = ""
	return &Paginator{searcher: s, token: token, query: q}
}

// Next fetches the following page. It returns false once the sentinel or an
// absent token was seen on the previous page, or when a request fails.
func (p *Paginator) Next(ctx context.Context) bool {
	if p.done {
		return false
	}
	if err := ctx.Err(); err != nil {
		p.finish(err)
		return false
	}

	q := p.query
	q.ContinuationToken = p.next
	resp, err := p.searcher.SearchDocuments(ctx, p.token, q)
	p.requests++
	if err == nil && resp == nil {
		err = fmt.Errorf("%w: empty response", ErrSearchPage)
	}
	if err != nil {
		p.finish(err)
		return false
	}

	p.page = newPage(p.requests, resp)
	tok := resp.Metadata.ContinuationToken
	switch {
	case tok == "" || tok == EndOfResultSet:
		p.done = true
	case tok == p.next:
		// The current page is kept; only the loop stops.
		p.done = true
		p.err = fmt.Errorf("%w: continuation token %q repeated", ErrSearchPage, tok)
	default:
		p.next = tok
	}
	return true
}

func (p *Paginator) finish(err error) {
	p.done = true
	p.page = nil
	p.err = err
}

// Page returns the page loaded by the last successful Next.
func (p *Paginator) Page() *Page {
	return p.page
}

// Requests is the number of search requests issued so far.
func (p *Paginator) Requests() int {
	return p.requests
}

// Err returns the error that ended iteration early, if any.
func (p *Paginator) Err() error {
	return p.err
}
