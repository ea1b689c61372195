// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"

	"github.com/pdiddy/adsabs/query"
)

// pageResult is one completed page fetch, successful or not.
type pageResult struct {
	index int
	page  *page
	err   error
}

// AsyncStream yields records with all page requests in flight at once.
// Pages arrive in completion order, so records are not globally ordered;
// callers who need the sort order must re-sort. After the first page
// reveals the true hit count, trailing page requests that would run past
// the end are cancelled and their responses, if already in flight, are
// dropped. Not safe for concurrent use.
type AsyncStream struct {
	c    *Client
	opts Options

	ch        chan pageResult
	cancels   []context.CancelFunc
	cancelAll context.CancelFunc
	revoked   map[int]bool

	buf      []*Record
	pending  int
	numFound int
	gotFirst bool
	err      error
}

// SearchAsync compiles expr and dispatches every expected page concurrently.
// Cancelling ctx cancels all outstanding pages.
func (c *Client) SearchAsync(ctx context.Context, expr query.Expr, opts Options) (*AsyncStream, error) {
	compiled, err := c.compiler.CompileQuery(expr)
	if err != nil {
		return nil, err
	}
	return c.newAsyncStream(ctx, compiled, opts), nil
}

// SearchRawAsync is SearchAsync over an already-formed query string.
func (c *Client) SearchRawAsync(ctx context.Context, q string, opts Options) *AsyncStream {
	return c.newAsyncStream(ctx, query.Compiled{Query: q}, opts)
}

func (c *Client) newAsyncStream(ctx context.Context, compiled query.Compiled, opts Options) *AsyncStream {
	opts = opts.normalized()
	fl := opts.fieldList()
	if opts.Rows > largeQueryWarning {
		c.log.Warn().Int("rows", opts.Rows).Msg("large row request; this will consume many rate-limited queries")
	}

	pageCount := (opts.Rows + opts.PageSize - 1) / opts.PageSize

	streamCtx, cancelAll := context.WithCancel(ctx)
	s := &AsyncStream{
		c:         c,
		opts:      opts,
		ch:        make(chan pageResult, pageCount),
		cancels:   make([]context.CancelFunc, pageCount),
		cancelAll: cancelAll,
		revoked:   make(map[int]bool),
		pending:   pageCount,
		numFound:  -1,
	}

	for i := 0; i < pageCount; i++ {
		pageCtx, cancel := context.WithCancel(streamCtx)
		s.cancels[i] = cancel

		start := opts.Start + i*opts.PageSize
		rows := opts.Rows - i*opts.PageSize
		if rows > opts.PageSize {
			rows = opts.PageSize
		}

		go func(i, start, rows int) {
			p, err := c.fetchPage(pageCtx, compiled, opts, fl, start, rows)
			s.ch <- pageResult{index: i, page: p, err: err}
		}(i, start, rows)
	}
	return s
}

// NumFound returns the total hit count, or -1 before the first page lands.
func (s *AsyncStream) NumFound() int { return s.numFound }

// Next returns the next record in page-completion order. It returns Done
// when every non-cancelled page has been drained. A cancelled context
// surfaces as context.Canceled, distinct from API failures.
func (s *AsyncStream) Next(ctx context.Context) (*Record, error) {
	if s.err != nil {
		return nil, s.err
	}

	for {
		if len(s.buf) > 0 {
			r := s.buf[0]
			s.buf = s.buf[1:]
			return r, nil
		}
		if s.pending == 0 {
			return nil, Done
		}

		var res pageResult
		select {
		case <-ctx.Done():
			s.fail(ctx.Err())
			return nil, s.err
		case res = <-s.ch:
		}
		s.pending--

		if s.revoked[res.index] {
			// A deliberately cancelled trailing page; whatever it carried
			// is discarded.
			continue
		}
		if res.err != nil {
			s.fail(res.err)
			return nil, s.err
		}
		s.accept(res)
	}
}

// accept folds a completed page into the buffer and, on the first page,
// revokes the trailing requests that run past the true end of the results.
func (s *AsyncStream) accept(res pageResult) {
	if !s.gotFirst {
		s.gotFirst = true
		s.numFound = res.page.numFound

		needed := s.numFound - s.opts.Start
		if needed < 0 {
			needed = 0
		}
		if needed > s.opts.Rows {
			needed = s.opts.Rows
		}
		if needed < s.opts.Rows {
			neededPages := (needed + s.opts.PageSize - 1) / s.opts.PageSize
			for i := neededPages; i < len(s.cancels); i++ {
				if i != res.index && !s.revoked[i] {
					s.revoked[i] = true
					s.cancels[i]()
				}
			}
		}
	}

	for _, doc := range res.page.docs {
		s.buf = append(s.buf, newRecord(s.c, doc))
	}
}

func (s *AsyncStream) fail(err error) {
	s.err = err
	s.cancelAll()
}

// Close cancels all outstanding page requests and releases the shared
// session. Safe to call more than once.
func (s *AsyncStream) Close() {
	s.cancelAll()
	if s.err == nil && (s.pending > 0 || len(s.buf) > 0) {
		s.err = context.Canceled
	}
	s.c.t.Close()
}

// All drains the stream into a slice. The stream is closed on error.
func (s *AsyncStream) All(ctx context.Context) ([]*Record, error) {
	var out []*Record
	for {
		r, err := s.Next(ctx)
		if errors.Is(err, Done) {
			return out, nil
		}
		if err != nil {
			s.Close()
			return out, err
		}
		out = append(out, r)
	}
}
