// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transport

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// RateLimit holds the quota state of one API service as reported by the
// x-ratelimit-* response headers. Reset is epoch seconds.
type RateLimit struct {
	Limit     int
	Remaining int
	Reset     int64
}

// RateLimitTable tracks per-service rate limits across the life of a Client.
// Services are named solr, biblib, export and metrics. Values are written
// after each response completes; readers may see a stale entry but never a
// torn one. Last write wins per service.
type RateLimitTable struct {
	mu sync.RWMutex
	m  map[string]RateLimit
}

// NewRateLimitTable returns an empty table.
func NewRateLimitTable() *RateLimitTable {
	return &RateLimitTable{m: make(map[string]RateLimit)}
}

// Update records the rate-limit headers of a response for service. Each of
// the three headers is applied independently; an absent or malformed header
// leaves the prior value in place.
func (t *RateLimitTable) Update(service string, h http.Header) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rl := t.m[service]
	if v, err := strconv.Atoi(h.Get("x-ratelimit-limit")); err == nil {
		rl.Limit = v
	}
	if v, err := strconv.Atoi(h.Get("x-ratelimit-remaining")); err == nil {
		rl.Remaining = v
	}
	if v, err := strconv.ParseInt(h.Get("x-ratelimit-reset"), 10, 64); err == nil {
		rl.Reset = v
	}
	t.m[service] = rl
}

// Get returns the recorded limits for service.
func (t *RateLimitTable) Get(service string) (RateLimit, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rl, ok := t.m[service]
	return rl, ok
}

// Snapshot returns a copy of the whole table for monitoring.
func (t *RateLimitTable) Snapshot() map[string]RateLimit {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]RateLimit, len(t.m))
	for k, v := range t.m {
		out[k] = v
	}
	return out
}

// serviceFor maps an endpoint path to the rate-limit service it is billed
// against. The search endpoints report as "solr"; everything else reports
// under its own first path segment.
func serviceFor(endpoint string) string {
	seg := strings.Trim(endpoint, "/")
	if i := strings.IndexByte(seg, '/'); i >= 0 {
		seg = seg[:i]
	}
	if seg == "search" {
		return "solr"
	}
	return seg
}
