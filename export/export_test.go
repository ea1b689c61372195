// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/adsabs/pkg/types"
	"github.com/pdiddy/adsabs/transport"
)

// newTestClient wires an export client to an httptest server.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	t.Setenv("ADS_API_TOKEN", "")
	t.Setenv("ADS_DEV_KEY", "")
	t.Setenv("HOME", t.TempDir())
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	tr := transport.New(types.ClientConfig{BaseURL: ts.URL, Token: "test-token"}, zerolog.Nop())
	t.Cleanup(tr.Close)
	return NewClient(tr, zerolog.Nop())
}

func TestExport(t *testing.T) {
	var path string
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &body)
		json.NewEncoder(w).Encode(map[string]string{"export": "@ARTICLE{2015ApJ...808...16N,\n}"})
	})

	text, err := c.Export(context.Background(), "bibtex", "2015ApJ...808...16N")
	require.NoError(t, err)
	assert.Equal(t, "/export/bibtex", path)
	assert.Equal(t, []any{"2015ApJ...808...16N"}, body["bibcode"])
	assert.Contains(t, text, "@ARTICLE{2015ApJ...808...16N")
}

func TestExportUnknownFormat(t *testing.T) {
	requested := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requested = true
	})

	_, err := c.Export(context.Background(), "wordperfect", "2015ApJ...808...16N")
	var verr *transport.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.False(t, requested, "unknown format must fail before any request")
}

func TestExportNoBibcodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	_, err := c.Export(context.Background(), "bibtex")
	var verr *transport.ValidationError
	require.True(t, errors.As(err, &verr))
}

func TestFormatsSortedAndKnown(t *testing.T) {
	formats := Formats()
	assert.Contains(t, formats, "bibtex")
	assert.Contains(t, formats, "ris")
	assert.IsIncreasing(t, formats)
}

func TestCitationHelper(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/citation_helper", r.URL.Path)
		json.NewEncoder(w).Encode([]map[string]any{
			{"bibcode": "1997A&A...325..714N", "score": 4.0, "title": "A suggestion", "author": "Author, A."},
		})
	})

	got, err := c.CitationHelper(context.Background(), "2015ApJ...808...16N")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1997A&A...325..714N", got[0].Bibcode)
	assert.Equal(t, 4.0, got[0].Score)
}

func TestResolve(t *testing.T) {
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{"action": "display", "links": map[string]any{"count": 2}})
	})

	raw, err := c.Resolve(context.Background(), "2015ApJ...808...16N", "esource")
	require.NoError(t, err)
	assert.Equal(t, "/resolver/2015ApJ...808...16N/esource", path)
	assert.Contains(t, string(raw), `"display"`)

	_, err = c.Resolve(context.Background(), "2015ApJ...808...16N")
	require.NoError(t, err)
	assert.Equal(t, "/resolver/2015ApJ...808...16N", path)

	_, err = c.Resolve(context.Background(), "2015ApJ...808...16N", "esource", "abstract")
	var verr *transport.ValidationError
	require.True(t, errors.As(err, &verr))
}

func TestNetworks(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{}})
	})

	_, err := c.AuthorNetwork(context.Background(), "2015ApJ...808...16N")
	require.NoError(t, err)
	_, err = c.PaperNetwork(context.Background(), "2015ApJ...808...16N")
	require.NoError(t, err)
	assert.Equal(t, []string{"/vis/author-network", "/vis/paper-network"}, paths)
}

func TestMetrics(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/metrics", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"basic stats":    map[string]any{"number of papers": 2, "total number of reads": 120.0},
			"citation stats": map[string]any{"total number of citations": 40, "average number of citations": 20.0},
			"indicators":     map[string]any{"h": 2, "g": 2, "i10": 1, "tori": 1.5},
		})
	})

	m, err := c.Metrics(context.Background(), "2015ApJ...808...16N", "1997A&A...325..714N")
	require.NoError(t, err)
	assert.Equal(t, 2, m.BasicStats.NumberOfPapers)
	assert.Equal(t, 40, m.CitationStats.TotalCitations)
	assert.Equal(t, 2, m.Indicators.H)
	assert.NotEmpty(t, m.Raw)
}
