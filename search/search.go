// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search runs compiled queries against the API and yields records
// lazily. A Stream pages through results synchronously; an AsyncStream
// dispatches all pages concurrently and yields them in completion order.
// Records fetch missing fields on demand.
package search

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pdiddy/adsabs/query"
	"github.com/pdiddy/adsabs/transport"
)

const (
	endpointQuery    = "search/query"
	endpointBigQuery = "search/bigquery"

	// MaxPageSize is the hard per-page row cap the API enforces.
	MaxPageSize = 200

	// DefaultRows is the total row count used when the caller does not set
	// Options.Rows.
	DefaultRows = 50

	// largeQueryWarning is the rows threshold past which a stream warns
	// once about quota impact before its first fetch.
	largeQueryWarning = 100000
)

// Options are the sibling parameters of a compiled query.
type Options struct {
	// Fields lists the record fields to request. id and bibcode are always
	// added.
	Fields []string

	// Sort is a sort clause such as "date desc".
	Sort string

	// Start is the offset into the full result set.
	Start int

	// Rows is the total number of rows to retrieve. Zero means DefaultRows.
	Rows int

	// FilterQuery is passed through as fq.
	FilterQuery string

	// PageSize overrides the per-page row count, capped at MaxPageSize.
	PageSize int
}

func (o Options) normalized() Options {
	if o.Rows <= 0 {
		o.Rows = DefaultRows
	}
	if o.PageSize <= 0 || o.PageSize > MaxPageSize {
		o.PageSize = MaxPageSize
	}
	if o.Start < 0 {
		o.Start = 0
	}
	return o
}

// fieldList returns the fl parameter: the requested fields with id and
// bibcode guaranteed present.
func (o Options) fieldList() []string {
	fl := []string{"id", "bibcode"}
	seen := map[string]struct{}{"id": {}, "bibcode": {}}
	for _, f := range o.Fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		fl = append(fl, f)
	}
	return fl
}

// Client runs searches over a shared transport.
type Client struct {
	t        *transport.Client
	compiler *query.Compiler
	log      zerolog.Logger

	lazyWarn sync.Once
}

// NewClient builds a search client. resolver may be nil; it is only needed
// for queries on the foreign Document fields.
func NewClient(t *transport.Client, resolver query.Resolver, log zerolog.Logger) *Client {
	return &Client{
		t:        t,
		compiler: &query.Compiler{Resolver: resolver},
		log:      log,
	}
}

// Transport exposes the underlying session, for rate-limit monitoring.
func (c *Client) Transport() *transport.Client { return c.t }

// Search compiles expr and returns a stream over its results. The endpoint
// (ordinary or bulk) is chosen by the compiler.
func (c *Client) Search(expr query.Expr, opts Options) (*Stream, error) {
	compiled, err := c.compiler.CompileQuery(expr)
	if err != nil {
		return nil, err
	}
	return c.newStream(compiled, opts), nil
}

// SearchRaw runs an already-formed query string.
func (c *Client) SearchRaw(q string, opts Options) *Stream {
	return c.newStream(query.Compiled{Query: q}, opts)
}

func (c *Client) newStream(compiled query.Compiled, opts Options) *Stream {
	opts = opts.normalized()
	s := &Stream{
		c:    c,
		opts: opts,
		fl:   opts.fieldList(),
	}
	s.fetch = func(ctx context.Context, start, rows int) (*page, error) {
		return c.fetchPage(ctx, compiled, opts, s.fl, start, rows)
	}
	if opts.Rows > largeQueryWarning {
		c.log.Warn().Int("rows", opts.Rows).Msg("large row request; this will consume many rate-limited queries")
	}
	return s
}

// page is one decoded search response.
type page struct {
	numFound int
	start    int
	docs     []map[string]any
}

// envelope is the search response shape. Response is a pointer so a missing
// key is distinguishable and reported as a ParseError.
type envelope struct {
	ResponseHeader *struct {
		Params map[string]any `json:"params"`
	} `json:"responseHeader"`
	Response *struct {
		NumFound int              `json:"numFound"`
		Start    int              `json:"start"`
		Docs     []map[string]any `json:"docs"`
	} `json:"response"`
}

func (c *Client) fetchPage(ctx context.Context, compiled query.Compiled, opts Options, fl []string, start, rows int) (*page, error) {
	params := url.Values{
		"q":     {compiled.Query},
		"fl":    {strings.Join(fl, ",")},
		"start": {strconv.Itoa(start)},
		"rows":  {strconv.Itoa(rows)},
	}
	if opts.Sort != "" {
		params.Set("sort", opts.Sort)
	}

	req := transport.Request{Method: http.MethodGet, Endpoint: endpointQuery, Params: params}
	if compiled.BigQuery {
		params.Set("fq", "{!bitset}")
		req = transport.Request{
			Method:   http.MethodPost,
			Endpoint: endpointBigQuery,
			Params:   params,
			Body:     bigQueryBody(compiled.Bibcodes),
			Header:   http.Header{"Content-Type": {transport.ContentTypeBigQuery}},
		}
	} else if opts.FilterQuery != "" {
		params.Set("fq", opts.FilterQuery)
	}

	resp, err := c.t.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodePage(req.Endpoint, resp)
}

func decodePage(endpoint string, resp *transport.APIResponse) (*page, error) {
	var env envelope
	if err := resp.Decode(&env); err != nil {
		return nil, &transport.ParseError{Endpoint: endpoint, Err: err}
	}
	if env.Response == nil {
		return nil, &transport.ParseError{Endpoint: endpoint, Err: errMissingResponse}
	}
	return &page{
		numFound: env.Response.NumFound,
		start:    env.Response.Start,
		docs:     env.Response.Docs,
	}, nil
}

// bigQueryBody builds the newline-delimited bibcode list the bulk endpoint
// expects, header line included.
func bigQueryBody(bibcodes []string) []byte {
	var b strings.Builder
	b.WriteString("bibcode")
	for _, code := range bibcodes {
		b.WriteByte('\n')
		b.WriteString(code)
	}
	b.WriteByte('\n')
	return []byte(b.String())
}
