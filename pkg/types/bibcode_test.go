// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "testing"

func TestBibcodeValid(t *testing.T) {
	tests := []struct {
		name string
		code Bibcode
		want bool
	}{
		{"journal article", "2015ApJ...808...16N", true},
		{"arxiv preprint", "2018arXiv180102634K", true},
		{"ampersand journal", "1997A&A...325..714N", true},
		{"letter qualifier", "2005ApJ...622L..33M", true},
		{"too short", "2015ApJ...808...16", false},
		{"bad year", "20x5ApJ...808...16N", false},
		{"lowercase initial", "2015ApJ...808...16n", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.code.Valid(); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestBibcodeParseRoundTrip(t *testing.T) {
	codes := []Bibcode{
		"2015ApJ...808...16N",
		"1997A&A...325..714N",
		"2018arXiv180102634K",
		"2005ApJ...622L..33M",
	}
	for _, code := range codes {
		parts, err := code.Parse()
		if err != nil {
			t.Fatalf("Parse(%q): %v", code, err)
		}
		if got := parts.String(); got != string(code) {
			t.Errorf("round trip of %q produced %q", code, got)
		}
	}
}

func TestBibcodeParseParts(t *testing.T) {
	parts, err := Bibcode("2015ApJ...808...16N").Parse()
	if err != nil {
		t.Fatal(err)
	}
	if parts.Year != "2015" {
		t.Errorf("Year = %q", parts.Year)
	}
	if parts.Journal != "ApJ.." {
		t.Errorf("Journal = %q", parts.Journal)
	}
	if parts.Volume != ".808" {
		t.Errorf("Volume = %q", parts.Volume)
	}
	if parts.AuthorInitial != "N" {
		t.Errorf("AuthorInitial = %q", parts.AuthorInitial)
	}
}

func TestBibcodeParseInvalid(t *testing.T) {
	if _, err := Bibcode("not-a-bibcode").Parse(); err == nil {
		t.Fatal("expected error for invalid bibcode")
	}
}
