// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transport implements the authenticated HTTP session shared by all
// API surfaces: endpoint resolution against the API root, bearer-token
// discovery, the response envelope, and per-service rate-limit accounting.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pdiddy/adsabs/pkg/types"
)

// DefaultBaseURL is the canonical ADS API root.
const DefaultBaseURL = "https://api.adsabs.harvard.edu/v1"

// maxConnsPerHost caps simultaneous connections to the API host. The server
// throttles aggressively past ten parallel requests.
const maxConnsPerHost = 10

// ContentTypeBigQuery is the body type required by the bigquery search
// endpoint. Every other POST body is JSON.
const ContentTypeBigQuery = "big-query/csv"

// Request describes one API call. Endpoint is a path relative to the base
// URL, e.g. "search/query". A []byte Body is sent verbatim (the bigquery
// endpoint needs this); any other non-nil Body is JSON-encoded. Header
// entries override the defaults the client would otherwise send
// (Content-Type in particular).
type Request struct {
	Method   string
	Endpoint string
	Params   url.Values
	Body     any
	Header   http.Header
}

// APIResponse wraps a successful response. Body is the raw JSON; Decode
// unmarshals it into a caller-supplied shape.
type APIResponse struct {
	StatusCode int
	Header     http.Header
	Body       json.RawMessage
}

// Decode unmarshals the response body into v. A body that is not valid JSON
// for v is reported as a ParseError by Do already; Decode failures here mean
// v's shape does not match the endpoint.
func (r *APIResponse) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Client is the authenticated session. It owns the connection pool, the
// resolved token and the rate-limit table, and is safe for concurrent use.
// Close releases the pool and is idempotent.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	cfg        types.ClientConfig
	limiter    *rate.Limiter
	log        zerolog.Logger
	limits     *RateLimitTable

	tokenOnce sync.Once
	token     string

	closeOnce sync.Once
}

// New builds a Client from cfg. The token is not resolved until the first
// request. Pass zerolog.Nop() to silence logging.
func New(cfg types.ClientConfig, log zerolog.Logger) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "adsabs-go/0.1"
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxConnsPerHost:     maxConnsPerHost,
				MaxIdleConnsPerHost: maxConnsPerHost,
			},
		},
		baseURL:   base,
		userAgent: userAgent,
		cfg:       cfg,
		limiter:   limiter,
		log:       log,
		limits:    NewRateLimitTable(),
	}
}

// Limits exposes the rate-limit table for monitoring.
func (c *Client) Limits() *RateLimitTable { return c.limits }

// Token returns the resolved API token, discovering it on first use.
func (c *Client) Token() (string, error) {
	c.tokenOnce.Do(func() {
		c.token = c.discoverToken()
	})
	if c.token == "" {
		return "", ErrNoToken
	}
	return c.token, nil
}

// Do executes one API call. On 2xx it parses the JSON body and updates the
// rate-limit table from the response headers; on any other status it returns
// an *APIError carrying the server's error message. Errors are never retried
// here; backoff policy belongs to the caller.
func (c *Client) Do(ctx context.Context, req Request) (*APIResponse, error) {
	token, err := c.Token()
	if err != nil {
		return nil, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	reqURL := c.url(req.Endpoint)
	if len(req.Params) > 0 {
		reqURL += "?" + req.Params.Encode()
	}

	var body io.Reader
	switch b := req.Body.(type) {
	case nil:
	case []byte:
		if len(b) > 0 {
			body = bytes.NewReader(b)
		}
	default:
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body for %s: %w", req.Endpoint, err)
		}
		body = bytes.NewReader(payload)
	}

	hr, err := http.NewRequestWithContext(ctx, req.Method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	hr.Header.Set("Authorization", "Bearer "+token)
	hr.Header.Set("User-Agent", c.userAgent)
	hr.Header.Set("Content-Type", "application/json")
	for k, vs := range req.Header {
		hr.Header.Del(k)
		for _, v := range vs {
			hr.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(hr)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", req.Endpoint, err)
	}

	c.limits.Update(serviceFor(req.Endpoint), resp.Header)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	if len(raw) == 0 {
		raw = []byte("null")
	}
	if !json.Valid(raw) {
		return nil, &ParseError{Endpoint: req.Endpoint, Err: fmt.Errorf("body is not JSON")}
	}

	c.log.Debug().
		Str("method", req.Method).
		Str("endpoint", req.Endpoint).
		Int("status", resp.StatusCode).
		Msg("API call")

	return &APIResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       json.RawMessage(raw),
	}, nil
}

// Close releases the connection pool. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.httpClient.CloseIdleConnections()
	})
}

// url joins the base URL and an endpoint path with a single separator.
func (c *Client) url(endpoint string) string {
	return c.baseURL + "/" + strings.Trim(endpoint, "/")
}

// errorMessage extracts the server's "error" field from a failure body,
// falling back to the raw text.
func errorMessage(raw []byte) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	return strings.TrimSpace(string(raw))
}
