// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"path/filepath"
	"testing"
)

func TestQueryFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search.yaml")

	records := []*Record{
		newRecord(nil, map[string]any{"id": "1", "bibcode": "2015ApJ...808...16N", "year": 2015}),
		newRecord(nil, map[string]any{"id": "2", "bibcode": "1997A&A...325..714N", "year": 1997}),
	}
	opts := Options{Fields: []string{"year"}, Sort: "date desc", Rows: 50}

	if err := WriteQueryFile(path, `author:"Ness, M"`, opts, 1234, records); err != nil {
		t.Fatal(err)
	}

	qf, err := ReadQueryFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if qf.Query.Q != `author:"Ness, M"` {
		t.Errorf("Q = %q", qf.Query.Q)
	}
	if qf.Query.Sort != "date desc" {
		t.Errorf("Sort = %q", qf.Query.Sort)
	}
	if qf.Summary.NumFound != 1234 || qf.Summary.Retrieved != 2 {
		t.Errorf("Summary = %+v", qf.Summary)
	}
	if len(qf.Records) != 2 {
		t.Fatalf("Records = %d", len(qf.Records))
	}
	if qf.Records[0]["bibcode"] != "2015ApJ...808...16N" {
		t.Errorf("first record = %v", qf.Records[0])
	}
}

func TestReadQueryFileMissing(t *testing.T) {
	if _, err := ReadQueryFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
