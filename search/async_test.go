// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/pdiddy/adsabs/transport"
)

func TestAsyncStreamYieldsAllRecords(t *testing.T) {
	h := &corpusHandler{numFound: 450}
	var mu sync.Mutex
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		h.ServeHTTP(w, r)
	}))

	s := c.SearchRawAsync(context.Background(), "year:2020", Options{Rows: 450})
	defer s.Close()

	records, err := s.All(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 450 {
		t.Errorf("got %d records, want 450", len(records))
	}
	if s.NumFound() != 450 {
		t.Errorf("NumFound = %d", s.NumFound())
	}
}

func TestAsyncStreamCancelsTrailingPages(t *testing.T) {
	cancelled := make(chan struct{})
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, _ := strconv.Atoi(r.URL.Query().Get("start"))
		if start >= 400 {
			// The page past the true end: block until the stream revokes
			// it.
			select {
			case <-r.Context().Done():
				close(cancelled)
			case <-time.After(5 * time.Second):
			}
			return
		}
		rows, _ := strconv.Atoi(r.URL.Query().Get("rows"))
		docs := make([]map[string]any, 0, rows)
		for i := start; i < start+rows && i < 250; i++ {
			docs = append(docs, map[string]any{"id": fmt.Sprintf("%d", i), "bibcode": "2015ApJ...808...16N"})
		}
		writeEnvelope(w, 250, start, docs)
	}))

	// 500 rows pre-computes three pages; the server reports 250 hits so the
	// third page is revoked after the first one lands.
	s := c.SearchRawAsync(context.Background(), "year:2020", Options{Rows: 500})
	defer s.Close()

	records, err := s.All(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 250 {
		t.Errorf("got %d records, want 250", len(records))
	}

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("trailing page request was never cancelled")
	}
}

func TestAsyncStreamPropagatesAPIErrors(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "solr is down"}`))
	}))

	s := c.SearchRawAsync(context.Background(), "year:2020", Options{Rows: 10})
	defer s.Close()

	_, err := s.Next(context.Background())
	var apiErr *transport.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
}

func TestAsyncStreamCallerCancellation(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-block:
		}
	}))

	ctx, cancel := context.WithCancel(context.Background())
	s := c.SearchRawAsync(ctx, "year:2020", Options{Rows: 10})
	defer s.Close()

	cancel()
	_, err := s.Next(context.Background())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAsyncStreamDoneAfterDrain(t *testing.T) {
	h := &corpusHandler{numFound: 5}
	var mu sync.Mutex
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		h.ServeHTTP(w, r)
	}))

	s := c.SearchRawAsync(context.Background(), "year:2020", Options{Rows: 10})
	defer s.Close()

	if _, err := s.All(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Next(context.Background()); !errors.Is(err, Done) {
		t.Fatalf("Next after drain = %v, want Done", err)
	}
}
