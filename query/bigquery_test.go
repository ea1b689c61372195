// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"fmt"
	"testing"
)

func testBibcodes(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = fmt.Sprintf("20%02dApJ...808...16N", i)
	}
	return out
}

func TestCompileQuerySmallBibcodeListStaysTextual(t *testing.T) {
	c := &Compiler{}
	compiled, err := c.CompileQuery(Document.Bibcode.In(testBibcodes(10)...))
	if err != nil {
		t.Fatal(err)
	}
	if compiled.BigQuery {
		t.Fatal("ten bibcodes must not trigger the bulk endpoint")
	}
	if compiled.Query == "" || compiled.Bibcodes != nil {
		t.Errorf("Compiled = %+v", compiled)
	}
}

func TestCompileQueryBigQueryRewrite(t *testing.T) {
	c := &Compiler{}
	compiled, err := c.CompileQuery(Document.Bibcode.In(testBibcodes(11)...))
	if err != nil {
		t.Fatal(err)
	}
	if !compiled.BigQuery {
		t.Fatal("eleven bibcodes must trigger the bulk endpoint")
	}
	if compiled.Query != "*:*" {
		t.Errorf("Query = %q, want *:*", compiled.Query)
	}
	if len(compiled.Bibcodes) != 11 {
		t.Errorf("len(Bibcodes) = %d", len(compiled.Bibcodes))
	}
}

func TestCompileQueryBigQueryKeepsRemainingTerms(t *testing.T) {
	c := &Compiler{}
	expr := Document.Year.Eq(2020).And(Document.Bibcode.In(testBibcodes(12)...))
	compiled, err := c.CompileQuery(expr)
	if err != nil {
		t.Fatal(err)
	}
	if !compiled.BigQuery {
		t.Fatal("expected bulk endpoint")
	}
	if compiled.Query != "year:2020" {
		t.Errorf("Query = %q, want year:2020", compiled.Query)
	}
	if len(compiled.Bibcodes) != 12 {
		t.Errorf("len(Bibcodes) = %d", len(compiled.Bibcodes))
	}
}

func TestCompileQueryCountsEqualityTerms(t *testing.T) {
	c := &Compiler{}
	expr := Document.Bibcode.Eq("2000ApJ...808...16N")
	for i := 1; i < 11; i++ {
		expr = expr.Or(Document.Bibcode.Eq(fmt.Sprintf("20%02dApJ...808...16N", i)))
	}
	compiled, err := c.CompileQuery(expr)
	if err != nil {
		t.Fatal(err)
	}
	if !compiled.BigQuery {
		t.Fatal("eleven OR-joined equality terms must trigger the bulk endpoint")
	}
}

func TestCompileQueryNegatedBibcodesNotHoisted(t *testing.T) {
	c := &Compiler{}
	expr := Document.Year.Eq(2020).And(Document.Bibcode.In(testBibcodes(12)...).Not())
	compiled, err := c.CompileQuery(expr)
	if err != nil {
		t.Fatal(err)
	}
	if compiled.BigQuery {
		t.Fatal("negated bibcode terms must stay in the query text")
	}
}
