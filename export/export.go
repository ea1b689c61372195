// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export wraps the one-shot citation and visualization services:
// formatted citation export, citation suggestions, link resolution, author
// and paper networks, and metrics.
package export

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"

	"github.com/rs/zerolog"

	"github.com/pdiddy/adsabs/transport"
)

// formatList holds the citation formats the export service renders.
var formatList = []string{
	"aastex", "ads", "bibtex", "bibtexabs", "csl", "custom", "dcxml",
	"endnote", "icarus", "ieee", "medlars", "mnras", "procite",
	"refabsxml", "refworks", "refxml", "ris", "rss", "soph", "votable",
}

var knownFormats = func() map[string]struct{} {
	m := make(map[string]struct{}, len(formatList))
	for _, f := range formatList {
		m[f] = struct{}{}
	}
	return m
}()

// Formats lists the accepted export formats in sorted order.
func Formats() []string {
	out := append([]string(nil), formatList...)
	sort.Strings(out)
	return out
}

// Client issues export-family requests over a shared transport.
type Client struct {
	t   *transport.Client
	log zerolog.Logger
}

// NewClient builds an export client.
func NewClient(t *transport.Client, log zerolog.Logger) *Client {
	return &Client{t: t, log: log}
}

// Export renders bibcodes in the given citation format and returns the
// formatted text. Unknown formats fail before any request is made.
func (c *Client) Export(ctx context.Context, format string, bibcodes ...string) (string, error) {
	if _, ok := knownFormats[format]; !ok {
		return "", transport.Validationf("unknown export format %q", format)
	}
	if len(bibcodes) == 0 {
		return "", transport.Validationf("no bibcodes to export")
	}
	endpoint := "export/" + format
	resp, err := c.t.Do(ctx, transport.Request{
		Method:   http.MethodPost,
		Endpoint: endpoint,
		Body:     map[string]any{"bibcode": bibcodes},
	})
	if err != nil {
		return "", err
	}
	var body struct {
		Export string `json:"export"`
	}
	if err := resp.Decode(&body); err != nil {
		return "", &transport.ParseError{Endpoint: endpoint, Err: err}
	}
	return body.Export, nil
}

// Suggestion is one recommendation from the citation helper.
type Suggestion struct {
	Bibcode string  `json:"bibcode"`
	Score   float64 `json:"score"`
	Title   string  `json:"title"`
	Author  string  `json:"author"`
}

// CitationHelper suggests papers frequently co-cited with the given set.
func (c *Client) CitationHelper(ctx context.Context, bibcodes ...string) ([]Suggestion, error) {
	const endpoint = "citation_helper"
	resp, err := c.t.Do(ctx, transport.Request{
		Method:   http.MethodPost,
		Endpoint: endpoint,
		Body:     map[string]any{"bibcodes": bibcodes},
	})
	if err != nil {
		return nil, err
	}
	var out []Suggestion
	if err := resp.Decode(&out); err != nil {
		return nil, &transport.ParseError{Endpoint: endpoint, Err: err}
	}
	return out, nil
}

// Resolve looks up external links for a bibcode. linkType narrows to one
// link family ("esource", "abstract", ...), optionally with a qualifier as
// "type:qualifier". The service reply is passed through undecoded.
func (c *Client) Resolve(ctx context.Context, bibcode string, linkType ...string) (json.RawMessage, error) {
	endpoint := "resolver/" + bibcode
	switch len(linkType) {
	case 0:
	case 1:
		endpoint += "/" + linkType[0]
	default:
		return nil, transport.Validationf("at most one link type, got %d", len(linkType))
	}
	resp, err := c.t.Do(ctx, transport.Request{Method: http.MethodGet, Endpoint: endpoint})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// AuthorNetwork returns the author collaboration graph for the given
// bibcodes, undecoded.
func (c *Client) AuthorNetwork(ctx context.Context, bibcodes ...string) (json.RawMessage, error) {
	return c.vis(ctx, "vis/author-network", bibcodes)
}

// PaperNetwork returns the paper co-readership graph for the given
// bibcodes, undecoded.
func (c *Client) PaperNetwork(ctx context.Context, bibcodes ...string) (json.RawMessage, error) {
	return c.vis(ctx, "vis/paper-network", bibcodes)
}

func (c *Client) vis(ctx context.Context, endpoint string, bibcodes []string) (json.RawMessage, error) {
	resp, err := c.t.Do(ctx, transport.Request{
		Method:   http.MethodPost,
		Endpoint: endpoint,
		Body:     map[string]any{"bibcodes": bibcodes},
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Metrics holds the headline numbers of a metrics report. Raw keeps the
// full service reply for callers that need the long tail of indicators.
type Metrics struct {
	BasicStats struct {
		NumberOfPapers int     `json:"number of papers"`
		TotalReads     float64 `json:"total number of reads"`
	} `json:"basic stats"`
	CitationStats struct {
		TotalCitations  int     `json:"total number of citations"`
		MeanCitations   float64 `json:"average number of citations"`
		MedianCitations float64 `json:"median number of citations"`
	} `json:"citation stats"`
	Indicators struct {
		H    int     `json:"h"`
		G    int     `json:"g"`
		I10  int     `json:"i10"`
		Tori float64 `json:"tori"`
	} `json:"indicators"`
	Raw json.RawMessage `json:"-"`
}

// Metrics computes citation metrics for the given bibcodes.
func (c *Client) Metrics(ctx context.Context, bibcodes ...string) (*Metrics, error) {
	const endpoint = "metrics"
	resp, err := c.t.Do(ctx, transport.Request{
		Method:   http.MethodPost,
		Endpoint: endpoint,
		Body:     map[string]any{"bibcodes": bibcodes},
	})
	if err != nil {
		return nil, err
	}
	var m Metrics
	if err := resp.Decode(&m); err != nil {
		return nil, &transport.ParseError{Endpoint: endpoint, Err: err}
	}
	m.Raw = resp.Body
	return &m, nil
}
