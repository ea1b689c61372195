// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/pdiddy/adsabs/query"
)

func TestSaveQuery(t *testing.T) {
	var (
		path     string
		snapshot map[string]any
	)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &snapshot)
		w.Write([]byte(`{"qid": "abc123", "numFound": 1234}`))
	}))

	saved, err := c.SaveQuery(context.Background(), query.Document.Year.Eq(2020), Options{Rows: 100, Sort: "date desc"})
	if err != nil {
		t.Fatal(err)
	}
	if path != "/vault/query" {
		t.Errorf("path = %q", path)
	}
	if saved.QID != "abc123" || saved.NumFound != 1234 {
		t.Errorf("saved = %+v", saved)
	}
	if snapshot["q"] != "year:2020" {
		t.Errorf("snapshot q = %v", snapshot["q"])
	}
	if snapshot["sort"] != "date desc" {
		t.Errorf("snapshot sort = %v", snapshot["sort"])
	}
}

func TestLoadQueryExecutesByQID(t *testing.T) {
	var path string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		writeEnvelope(w, 2, 0, []map[string]any{
			{"id": "1", "bibcode": "2015ApJ...808...16N"},
			{"id": "2", "bibcode": "1997A&A...325..714N"},
		})
	}))

	s := c.LoadQuery("abc123", Options{Rows: 10})
	records, err := s.All(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if path != "/vault/execute_query/abc123" {
		t.Errorf("path = %q", path)
	}
	if len(records) != 2 {
		t.Errorf("got %d records", len(records))
	}
	if s.NumFound() != 2 {
		t.Errorf("NumFound = %d", s.NumFound())
	}
}

func TestSaveQueryRejectsBigQuery(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	codes := make([]any, 11)
	for i := range codes {
		codes[i] = "2015ApJ...808...16N"
	}
	if _, err := c.SaveQuery(context.Background(), query.Document.Bibcode.In(codes...), Options{}); err == nil {
		t.Fatal("expected error for bulk query save")
	}
}
