// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pdiddy/adsabs/transport"
)

func TestRecordLazyFetchByID(t *testing.T) {
	var calls int32
	var gotQ, gotFL, gotRows string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		gotQ = r.URL.Query().Get("q")
		gotFL = r.URL.Query().Get("fl")
		gotRows = r.URL.Query().Get("rows")
		writeEnvelope(w, 1, 0, []map[string]any{{
			"id":      "1234",
			"bibcode": "2015ApJ...808...16N",
			"abstract": "We present a spectroscopic survey.",
		}})
	}))

	r := newRecord(c, map[string]any{"id": "1234", "bibcode": "2015ApJ...808...16N"})

	abstract, err := r.GetString(context.Background(), "abstract")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(abstract, "We present") {
		t.Errorf("abstract = %q", abstract)
	}
	if gotQ != "id:1234" {
		t.Errorf("q = %q", gotQ)
	}
	if gotFL != "id,bibcode,abstract" {
		t.Errorf("fl = %q", gotFL)
	}
	if gotRows != "1" {
		t.Errorf("rows = %q", gotRows)
	}

	// The fetched value is cached; a second access issues no request.
	if _, err := r.GetString(context.Background(), "abstract"); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("server saw %d requests, want 1", n)
	}
}

func TestRecordLazyFetchFallsBackToBibcode(t *testing.T) {
	var gotQ string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQ = r.URL.Query().Get("q")
		writeEnvelope(w, 1, 0, []map[string]any{{
			"bibcode": "2015ApJ...808...16N",
			"year":    float64(2015),
		}})
	}))

	r, err := NewRecord(c, "2015ApJ...808...16N")
	if err != nil {
		t.Fatal(err)
	}
	year, err := r.GetInt(context.Background(), "year")
	if err != nil {
		t.Fatal(err)
	}
	if year != 2015 {
		t.Errorf("year = %d", year)
	}
	if gotQ != `bibcode:"2015ApJ...808...16N"` {
		t.Errorf("q = %q", gotQ)
	}
}

func TestRecordLazyFetchCachesNull(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		// The doc comes back without the requested field: the server has
		// no value for it.
		writeEnvelope(w, 1, 0, []map[string]any{{"id": "1", "bibcode": "2015ApJ...808...16N"}})
	}))

	r := newRecord(c, map[string]any{"id": "1"})
	for i := 0; i < 2; i++ {
		v, err := r.Get(context.Background(), "abstract")
		if err != nil {
			t.Fatal(err)
		}
		if v != nil {
			t.Errorf("abstract = %v, want nil", v)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("server saw %d requests, want 1", n)
	}
}

func TestRecordUnavailableField(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected without a unique key")
	}))

	r := newRecord(c, map[string]any{"title": []any{"orphan"}})
	_, err := r.Get(context.Background(), "abstract")
	var uerr *UnavailableFieldError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UnavailableFieldError, got %v", err)
	}
	if uerr.Field != "abstract" {
		t.Errorf("Field = %q", uerr.Field)
	}
}

func TestRecordUnknownFieldRejected(t *testing.T) {
	r := newRecord(nil, map[string]any{"id": "1"})
	_, err := r.Get(context.Background(), "no_such_field")
	var verr *transport.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	// Virtual fields are searchable but never stored on records.
	_, err = r.Get(context.Background(), "abs")
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for virtual field, got %v", err)
	}
}

func TestRecordEquality(t *testing.T) {
	a := newRecord(nil, map[string]any{"bibcode": "2015ApJ...808...16N"})
	b := newRecord(nil, map[string]any{"bibcode": "2015ApJ...808...16N", "id": "42"})
	eq, err := a.Equal(b)
	if err != nil {
		t.Fatal(err)
	}
	if !eq {
		t.Error("records with the same bibcode must compare equal")
	}

	c := newRecord(nil, map[string]any{"bibcode": "1997A&A...325..714N"})
	eq, err = a.Equal(c)
	if err != nil {
		t.Fatal(err)
	}
	if eq {
		t.Error("records with different bibcodes must not compare equal")
	}

	orphan := newRecord(nil, map[string]any{"id": "7"})
	if _, err := a.Equal(orphan); err == nil {
		t.Error("comparing against a record without a bibcode must fail")
	}
}

func TestNewRecordValidatesBibcode(t *testing.T) {
	_, err := NewRecord(nil, "bogus")
	var verr *transport.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestRecordGetStrings(t *testing.T) {
	r := newRecord(nil, map[string]any{
		"bibcode": "2015ApJ...808...16N",
		"author":  []any{"Ness, M", "Hogg, D"},
	})
	authors, err := r.GetStrings(context.Background(), "author")
	if err != nil {
		t.Fatal(err)
	}
	if len(authors) != 2 || authors[0] != "Ness, M" {
		t.Errorf("authors = %v", authors)
	}
}
