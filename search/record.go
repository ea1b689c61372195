// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/pdiddy/adsabs/pkg/types"
	"github.com/pdiddy/adsabs/query"
	"github.com/pdiddy/adsabs/transport"
)

var errMissingResponse = errors.New("missing response envelope")

// UnavailableFieldError means a lazy fetch could not proceed because the
// record carries neither an id nor a bibcode.
type UnavailableFieldError struct {
	Field string
}

func (e *UnavailableFieldError) Error() string {
	return fmt.Sprintf("cannot fetch field %q: record has no id or bibcode", e.Field)
}

// storedFieldNames indexes the declared record fields.
var storedFieldNames = func() map[string]query.Field {
	m := make(map[string]query.Field)
	for _, f := range query.StoredFields() {
		m[f.Name] = f
	}
	return m
}()

// Record is one document of the corpus. It holds the fields fetched so far
// in a data map; reading a declared field that is absent triggers a one-row
// fetch keyed on the record's id or bibcode. A Record is safe for
// concurrent use.
type Record struct {
	c *Client

	mu   sync.Mutex
	data map[string]any
}

// newRecord materializes a record from one doc of a search response.
func newRecord(c *Client, doc map[string]any) *Record {
	data := make(map[string]any, len(doc))
	for k, v := range doc {
		data[k] = v
	}
	return &Record{c: c, data: data}
}

// NewRecord hand-constructs a record from a known bibcode. Field access
// beyond the bibcode is served by lazy fetch.
func NewRecord(c *Client, bibcode types.Bibcode) (*Record, error) {
	if !bibcode.Valid() {
		return nil, transport.Validationf("invalid bibcode %q", string(bibcode))
	}
	return &Record{c: c, data: map[string]any{"bibcode": string(bibcode)}}, nil
}

// Bibcode returns the record's bibcode, or empty when not yet known.
func (r *Record) Bibcode() types.Bibcode {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.data["bibcode"].(string); ok {
		return types.Bibcode(v)
	}
	return ""
}

// ID returns the record's opaque identifier, or empty when not yet known.
// Search responses carry it as a JSON number or string.
func (r *Record) ID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.idLocked()
}

func (r *Record) idLocked() string {
	switch v := r.data["id"].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}

// Has reports whether the field is already present in the data map.
func (r *Record) Has(field string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.data[field]
	return ok
}

// Fields returns the names currently present in the data map, sorted.
func (r *Record) Fields() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.data))
	for k := range r.data {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Equal compares two records by bibcode. Comparing a record whose bibcode
// is unknown is an error.
func (r *Record) Equal(other *Record) (bool, error) {
	a, b := r.Bibcode(), other.Bibcode()
	if a == "" || b == "" {
		return false, transport.Validationf("cannot compare records without bibcodes")
	}
	return a == b, nil
}

// Get returns the field's value, fetching it from the API when absent. A
// fetched field that the server has no value for is cached as nil so the
// request is not repeated.
func (r *Record) Get(ctx context.Context, field string) (any, error) {
	f, declared := storedFieldNames[field]
	if !declared {
		return nil, transport.Validationf("unknown or unstored field %q", field)
	}

	r.mu.Lock()
	if v, ok := r.data[field]; ok {
		r.mu.Unlock()
		return v, nil
	}
	id := r.idLocked()
	bibcode, _ := r.data["bibcode"].(string)
	r.mu.Unlock()

	if r.c == nil || (id == "" && bibcode == "") {
		return nil, &UnavailableFieldError{Field: field}
	}

	r.c.lazyWarn.Do(func() {
		r.c.log.Warn().Msg("lazy field fetches issue one search request per field; request fields up front to conserve quota")
	})

	v, err := r.c.fetchField(ctx, id, bibcode, f.Name)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.data[field] = v
	r.mu.Unlock()
	return v, nil
}

// GetString returns a text field, fetching it when absent.
func (r *Record) GetString(ctx context.Context, field string) (string, error) {
	v, err := r.Get(ctx, field)
	if err != nil || v == nil {
		return "", err
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	return fmt.Sprint(v), nil
}

// GetStrings returns an array field, fetching it when absent.
func (r *Record) GetStrings(ctx context.Context, field string) ([]string, error) {
	v, err := r.Get(ctx, field)
	if err != nil || v == nil {
		return nil, err
	}
	switch vs := v.(type) {
	case []string:
		return vs, nil
	case []any:
		out := make([]string, len(vs))
		for i, item := range vs {
			out[i] = fmt.Sprint(item)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("field %q is not an array (got %T)", field, v)
	}
}

// GetInt returns a numeric field, fetching it when absent.
func (r *Record) GetInt(ctx context.Context, field string) (int, error) {
	v, err := r.Get(ctx, field)
	if err != nil || v == nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, fmt.Errorf("field %q is not numeric (got %T)", field, v)
	}
}

// fetchField issues the one-row search that backs a lazy field access.
func (c *Client) fetchField(ctx context.Context, id, bibcode, field string) (any, error) {
	var q string
	if id != "" {
		q = "id:" + id
	} else {
		q = fmt.Sprintf("bibcode:%q", bibcode)
	}

	params := url.Values{
		"q":    {q},
		"fl":   {strings.Join([]string{"id", "bibcode", field}, ",")},
		"rows": {"1"},
	}
	resp, err := c.t.Do(ctx, transport.Request{
		Method:   http.MethodGet,
		Endpoint: endpointQuery,
		Params:   params,
	})
	if err != nil {
		return nil, err
	}
	p, err := decodePage(endpointQuery, resp)
	if err != nil {
		return nil, err
	}
	if len(p.docs) == 0 {
		return nil, fmt.Errorf("no document found for %s", q)
	}
	// Absent on the returned doc means the server has no value; cache nil.
	return p.docs[0][field], nil
}
