// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"regexp"
)

// bibcodeRe matches the 19-character ADS bibcode layout YYYYJJJJJVVVVQPPPPA:
// year, journal abbreviation, volume, qualifier, page, first-author initial.
var bibcodeRe = regexp.MustCompile(`^[0-9]{4}[A-Za-z0-9&.]{5}[0-9.]{4}[ELPQ-Z0-9.][0-9.]{4}[A-Z]$`)

// Bibcode is the canonical 19-character document identifier used by ADS.
type Bibcode string

// Valid reports whether b has the canonical bibcode layout.
func (b Bibcode) Valid() bool {
	return bibcodeRe.MatchString(string(b))
}

// BibcodeParts holds the fixed-width fields of a bibcode. Dot padding from
// the original code is preserved so String reproduces the input exactly.
type BibcodeParts struct {
	Year          string // positions 0-3
	Journal       string // positions 4-8, right-padded with dots
	Volume        string // positions 9-12, left-padded with dots
	Qualifier     string // position 13
	Page          string // positions 14-17, left-padded with dots
	AuthorInitial string // position 18
}

// String reassembles the bibcode from its parts.
func (p BibcodeParts) String() string {
	return p.Year + p.Journal + p.Volume + p.Qualifier + p.Page + p.AuthorInitial
}

// Parse splits b into its fixed-width parts. It fails if b does not match
// the bibcode layout.
func (b Bibcode) Parse() (BibcodeParts, error) {
	if !b.Valid() {
		return BibcodeParts{}, fmt.Errorf("invalid bibcode %q", string(b))
	}
	s := string(b)
	return BibcodeParts{
		Year:          s[0:4],
		Journal:       s[4:9],
		Volume:        s[9:13],
		Qualifier:     s[13:14],
		Page:          s[14:18],
		AuthorInitial: s[18:19],
	}, nil
}
