// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reftable provides the local read-only reference tables the query
// compiler consults: journal abbreviations and the affiliation hierarchy.
// The tables live in a SQLite database under the user's config directory,
// seeded on first open from the dataset bundled with the client.
package reftable

import (
	"database/sql"
	"embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/adsabs/pkg/types"
)

//go:embed seed/journals.csv seed/affiliations.csv
var seedFS embed.FS

const dbFile = "ads.db"

// Journal is one row of the journal table.
type Journal struct {
	Abbreviation string
	Title        string
}

// Affiliation is one child/parent edge of the affiliation table. A child
// with several parents appears once per parent.
type Affiliation struct {
	ID            string
	ParentID      string
	Abbreviation  string
	CanonicalName string
	Country       string
}

// Tables is a handle on the local reference database.
type Tables struct {
	db *sql.DB
}

// Open opens the reference database under cfg.Dir, creating and seeding it
// when absent. The default directory is os.UserConfigDir()/adsabs.
func Open(cfg types.RefTableConfig) (*Tables, error) {
	dir := cfg.Dir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolving config directory: %w", err)
		}
		dir = filepath.Join(base, "adsabs")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating reference table directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening reference database: %w", err)
	}

	t := &Tables{db: db}
	if err := t.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	if err := t.seedIfEmpty(); err != nil {
		db.Close()
		return nil, fmt.Errorf("seeding reference tables: %w", err)
	}
	return t, nil
}

// Close releases the database handle.
func (t *Tables) Close() error {
	return t.db.Close()
}

func (t *Tables) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS journals (
			abbreviation TEXT PRIMARY KEY,
			title TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS affiliations (
			child_id TEXT NOT NULL,
			parent_id TEXT NOT NULL DEFAULT '',
			abbreviation TEXT,
			canonical_name TEXT,
			country TEXT,
			PRIMARY KEY (child_id, parent_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_affil_parent ON affiliations(parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_affil_abbrev ON affiliations(abbreviation)`,
	}
	for _, stmt := range statements {
		if _, err := t.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// seedIfEmpty populates the tables from the bundled CSV datasets when the
// database has just been created.
func (t *Tables) seedIfEmpty() error {
	var n int
	if err := t.db.QueryRow(`SELECT count(*) FROM journals`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	tx, err := t.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := seedCSV(tx, "seed/journals.csv", `INSERT INTO journals (abbreviation, title) VALUES (?, ?)`, 2); err != nil {
		return err
	}
	if err := seedCSV(tx, "seed/affiliations.csv",
		`INSERT INTO affiliations (child_id, parent_id, abbreviation, canonical_name, country) VALUES (?, ?, ?, ?, ?)`, 5); err != nil {
		return err
	}
	return tx.Commit()
}

func seedCSV(tx *sql.Tx, name, insert string, fields int) error {
	f, err := seedFS.Open(name)
	if err != nil {
		return fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = fields
	// Skip the header row.
	if _, err := r.Read(); err != nil {
		return fmt.Errorf("reading %s header: %w", name, err)
	}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}
		args := make([]any, len(rec))
		for i, v := range rec {
			args[i] = v
		}
		if _, err := tx.Exec(insert, args...); err != nil {
			return fmt.Errorf("inserting %s row: %w", name, err)
		}
	}
}

// JournalTitle returns the full title for a journal abbreviation.
func (t *Tables) JournalTitle(abbreviation string) (string, bool) {
	var title string
	err := t.db.QueryRow(`SELECT title FROM journals WHERE abbreviation = ?`, abbreviation).Scan(&title)
	if err != nil {
		return "", false
	}
	return title, true
}

// Journals returns every journal whose abbreviation or title matches name,
// case-insensitively. An exact abbreviation match is tried first.
func (t *Tables) Journals(name string) ([]Journal, error) {
	rows, err := t.db.Query(
		`SELECT abbreviation, title FROM journals
		 WHERE abbreviation = ? OR lower(title) = lower(?) OR lower(title) LIKE lower(?)
		 ORDER BY abbreviation`,
		name, name, "%"+name+"%")
	if err != nil {
		return nil, fmt.Errorf("querying journals: %w", err)
	}
	defer rows.Close()

	var out []Journal
	for rows.Next() {
		var j Journal
		if err := rows.Scan(&j.Abbreviation, &j.Title); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// Affiliation returns every edge whose child id is id. A child with several
// parents yields several rows.
func (t *Tables) Affiliation(id string) ([]Affiliation, error) {
	return t.queryAffiliations(`SELECT child_id, parent_id, abbreviation, canonical_name, country
		FROM affiliations WHERE child_id = ? ORDER BY parent_id`, id)
}

// Parents returns the affiliations that are parents of id.
func (t *Tables) Parents(id string) ([]Affiliation, error) {
	return t.queryAffiliations(`SELECT a.child_id, a.parent_id, a.abbreviation, a.canonical_name, a.country
		FROM affiliations a
		WHERE a.child_id IN (SELECT parent_id FROM affiliations WHERE child_id = ? AND parent_id != '')
		ORDER BY a.child_id`, id)
}

// Children returns the affiliations whose parent is id.
func (t *Tables) Children(id string) ([]Affiliation, error) {
	return t.queryAffiliations(`SELECT child_id, parent_id, abbreviation, canonical_name, country
		FROM affiliations WHERE parent_id = ? ORDER BY child_id`, id)
}

// Siblings returns the affiliations that share a parent with id, excluding
// id itself.
func (t *Tables) Siblings(id string) ([]Affiliation, error) {
	return t.queryAffiliations(`SELECT child_id, parent_id, abbreviation, canonical_name, country
		FROM affiliations
		WHERE parent_id IN (SELECT parent_id FROM affiliations WHERE child_id = ? AND parent_id != '')
		AND child_id != ?
		ORDER BY child_id`, id, id)
}

func (t *Tables) queryAffiliations(query string, args ...any) ([]Affiliation, error) {
	rows, err := t.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying affiliations: %w", err)
	}
	defer rows.Close()

	var out []Affiliation
	for rows.Next() {
		var a Affiliation
		if err := rows.Scan(&a.ID, &a.ParentID, &a.Abbreviation, &a.CanonicalName, &a.Country); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Bibstems resolves a journal reference (abbreviation or title) to the
// bibstem values used by the search dialect. It implements the query
// package's Resolver.
func (t *Tables) Bibstems(name string) ([]string, error) {
	journals, err := t.Journals(name)
	if err != nil {
		return nil, err
	}
	stems := make([]string, 0, len(journals))
	for _, j := range journals {
		stems = append(stems, j.Abbreviation)
	}
	return dedupe(stems), nil
}

// AffIDs resolves an affiliation reference (id, abbreviation or canonical
// name) to aff_id values. It implements the query package's Resolver.
func (t *Tables) AffIDs(name string) ([]string, error) {
	rows, err := t.db.Query(
		`SELECT DISTINCT child_id FROM affiliations
		 WHERE child_id = ? OR abbreviation = ? OR lower(canonical_name) = lower(?)
		 ORDER BY child_id`,
		name, name, name)
	if err != nil {
		return nil, fmt.Errorf("querying affiliations: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
