// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/adsabs/query"
	"github.com/pdiddy/adsabs/transport"
)

const (
	endpointVaultQuery   = "vault/query"
	endpointVaultExecute = "vault/execute_query"
)

// SavedQuery identifies a query persisted on the server and the hit count
// it reported when saved.
type SavedQuery struct {
	QID      string `json:"qid"`
	NumFound int    `json:"numFound"`
}

// SaveQuery persists a compiled query on the server and returns its qid and
// hit count. Saved queries can be re-executed later with LoadQuery.
func (c *Client) SaveQuery(ctx context.Context, expr query.Expr, opts Options) (SavedQuery, error) {
	compiled, err := c.compiler.CompileQuery(expr)
	if err != nil {
		return SavedQuery{}, err
	}
	if compiled.BigQuery {
		return SavedQuery{}, transport.Validationf("bulk bibcode queries cannot be saved")
	}
	return c.saveRaw(ctx, compiled.Query, opts)
}

func (c *Client) saveRaw(ctx context.Context, q string, opts Options) (SavedQuery, error) {
	opts = opts.normalized()
	snapshot := map[string]any{
		"q":    q,
		"fl":   strings.Join(opts.fieldList(), ","),
		"rows": opts.Rows,
	}
	if opts.Sort != "" {
		snapshot["sort"] = opts.Sort
	}
	if opts.FilterQuery != "" {
		snapshot["fq"] = opts.FilterQuery
	}

	body, err := json.Marshal(snapshot)
	if err != nil {
		return SavedQuery{}, fmt.Errorf("encoding query snapshot: %w", err)
	}

	resp, err := c.t.Do(ctx, transport.Request{
		Method:   http.MethodPost,
		Endpoint: endpointVaultQuery,
		Body:     body,
	})
	if err != nil {
		return SavedQuery{}, err
	}

	var saved SavedQuery
	if err := resp.Decode(&saved); err != nil {
		return SavedQuery{}, &transport.ParseError{Endpoint: endpointVaultQuery, Err: err}
	}
	if saved.QID == "" {
		return SavedQuery{}, &transport.ParseError{Endpoint: endpointVaultQuery, Err: fmt.Errorf("response carries no qid")}
	}
	return saved, nil
}

// LoadQuery returns a stream that re-executes a previously saved query by
// qid. Paging parameters come from opts; the query text lives on the
// server.
func (c *Client) LoadQuery(qid string, opts Options) *Stream {
	opts = opts.normalized()
	s := &Stream{
		c:    c,
		opts: opts,
		fl:   opts.fieldList(),
	}
	s.fetch = func(ctx context.Context, start, rows int) (*page, error) {
		endpoint := endpointVaultExecute + "/" + qid
		params := url.Values{
			"fl":    {strings.Join(s.fl, ",")},
			"start": {strconv.Itoa(start)},
			"rows":  {strconv.Itoa(rows)},
		}
		resp, err := c.t.Do(ctx, transport.Request{
			Method:   http.MethodGet,
			Endpoint: endpoint,
			Params:   params,
		})
		if err != nil {
			return nil, err
		}
		return decodePage(endpoint, resp)
	}
	return s
}
