// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"
)

// QueryFile is the on-disk representation of a search and its results. A
// search can be saved to a file and inspected later without re-querying the
// API.
type QueryFile struct {
	Query   QueryParams      `yaml:"query"`
	Summary QuerySummary     `yaml:"summary"`
	Records []map[string]any `yaml:"records"`
}

// QueryParams stores the request parameters in a serializable form.
type QueryParams struct {
	Q           string   `yaml:"q"`
	Fields      []string `yaml:"fields,omitempty"`
	Sort        string   `yaml:"sort,omitempty"`
	Start       int      `yaml:"start,omitempty"`
	Rows        int      `yaml:"rows,omitempty"`
	FilterQuery string   `yaml:"fq,omitempty"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	NumFound  int       `yaml:"num_found"`
	Retrieved int       `yaml:"retrieved"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves the query parameters and the retrieved records to a
// YAML file.
func WriteQueryFile(path, q string, opts Options, numFound int, records []*Record) error {
	qf := QueryFile{
		Query: QueryParams{
			Q:           q,
			Fields:      opts.Fields,
			Sort:        opts.Sort,
			Start:       opts.Start,
			Rows:        opts.Rows,
			FilterQuery: opts.FilterQuery,
		},
		Summary: QuerySummary{
			NumFound:  numFound,
			Retrieved: len(records),
			Timestamp: time.Now().UTC(),
		},
	}
	for _, r := range records {
		doc := make(map[string]any)
		r.mu.Lock()
		for k, v := range r.data {
			doc[k] = v
		}
		r.mu.Unlock()
		qf.Records = append(qf.Records, doc)
	}

	data, err := yaml.Marshal(qf)
	if err != nil {
		return fmt.Errorf("encoding query file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing query file: %w", err)
	}
	return nil
}

// ReadQueryFile loads a previously saved query file.
func ReadQueryFile(path string) (QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return QueryFile{}, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return QueryFile{}, fmt.Errorf("parsing query file %s: %w", path, err)
	}
	return qf, nil
}
