// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/adsabs/transport"
)

// BigQueryThreshold is the number of bibcode terms past which a query is
// routed to the bulk search endpoint.
const BigQueryThreshold = 10

// Resolver looks up foreign field references in the local reference tables.
// reftable.Tables implements it.
type Resolver interface {
	// Bibstems resolves a journal abbreviation or title to bibstem values.
	Bibstems(name string) ([]string, error)
	// AffIDs resolves an affiliation id, abbreviation or canonical name to
	// aff_id values.
	AffIDs(name string) ([]string, error)
}

// Compiled is the result of compiling an expression: the query string and,
// when the bibcode terms were hoisted to the bulk endpoint, the bibcode list
// that becomes the request body.
type Compiled struct {
	Query    string
	BigQuery bool
	Bibcodes []string
}

// Compiler turns expressions into the Solr dialect. The zero value works;
// Resolver is only needed for expressions on Document.Journal or
// Document.Institution.
type Compiler struct {
	Resolver Resolver
}

// Compile returns the query string for e.
func (c *Compiler) Compile(e Expr) (string, error) {
	if e.n == nil {
		return "", transport.Validationf("empty query expression")
	}
	s, err := c.compile(e.n)
	if err != nil {
		return "", err
	}
	return stripOuterParens(s), nil
}

// Compile compiles e without reference-table support.
func Compile(e Expr) (string, error) {
	return (&Compiler{}).Compile(e)
}

// CompileQuery compiles e and selects the endpoint: when the expression
// carries more than BigQueryThreshold bibcode terms they are removed from
// the tree and returned separately for the bulk endpoint.
func (c *Compiler) CompileQuery(e Expr) (Compiled, error) {
	if e.n == nil {
		return Compiled{}, transport.Validationf("empty query expression")
	}

	bibcodes := collectBibcodes(e.n)
	if len(bibcodes) <= BigQueryThreshold {
		q, err := c.Compile(e)
		if err != nil {
			return Compiled{}, err
		}
		return Compiled{Query: q}, nil
	}

	rest := pruneBibcodes(e.n)
	q := "*:*"
	if rest != nil {
		s, err := c.compile(rest)
		if err != nil {
			return Compiled{}, err
		}
		q = stripOuterParens(s)
	}
	return Compiled{Query: q, BigQuery: true, Bibcodes: bibcodes}, nil
}

func (c *Compiler) compile(n *node) (string, error) {
	switch n.kind {
	case nodeRaw:
		return n.raw, nil
	case nodeCompare:
		return c.compileCompare(n)
	case nodeLogical:
		return c.compileLogical(n)
	case nodeFunc:
		return c.compileFunc(n)
	case nodePos:
		return c.compilePos(n)
	default:
		return "", fmt.Errorf("unknown expression node kind %d", n.kind)
	}
}

func (c *Compiler) compileCompare(n *node) (string, error) {
	f := n.field
	if f.Kind == KindForeign {
		resolved, err := c.resolveForeign(n)
		if err != nil {
			return "", err
		}
		return c.compileCompare(resolved)
	}

	switch n.op {
	case opEq:
		v, err := formatValue(f, n.values[0])
		if err != nil {
			return "", err
		}
		return f.Name + ":" + v, nil
	case opExact:
		v, err := formatValue(f, n.values[0])
		if err != nil {
			return "", err
		}
		return "=" + f.Name + ":" + v, nil
	case opNe:
		v, err := formatValue(f, n.values[0])
		if err != nil {
			return "", err
		}
		return "-" + f.Name + ":" + v, nil
	case opGt, opGe, opLt, opLe:
		return compileRange(f, n.op, n.values[0])
	case opBetween:
		lo, err := formatRangeValue(n.values[0])
		if err != nil {
			return "", err
		}
		hi, err := formatRangeValue(n.values[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s:[%s TO %s]", f.Name, lo, hi), nil
	case opIn:
		if len(n.values) == 0 {
			return "", transport.Validationf("in_ on %s requires at least one value", f.Name)
		}
		parts := make([]string, len(n.values))
		for i, v := range n.values {
			s, err := formatValue(f, v)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return f.Name + ":(" + strings.Join(parts, " OR ") + ")", nil
	case opLike:
		pattern, ok := n.values[0].(string)
		if !ok {
			return "", transport.Validationf("like on %s requires a string pattern", f.Name)
		}
		if strings.Contains(pattern, "%") {
			pattern = strings.ReplaceAll(pattern, "%", "*")
		} else {
			pattern += "*"
		}
		return f.Name + ":" + pattern, nil
	default:
		return "", fmt.Errorf("unknown comparison operator %d", n.op)
	}
}

// resolveForeign rewrites a comparison on a foreign field (journal,
// institution) to its underlying search field using the reference tables.
// Several matching rows become an in_ disjunction.
func (c *Compiler) resolveForeign(n *node) (*node, error) {
	if c.Resolver == nil {
		return nil, transport.Validationf("query on %s requires the reference tables", n.field.Name)
	}
	if n.op != opEq && n.op != opExact && n.op != opIn {
		return nil, transport.Validationf("%s supports only equality and in_ comparisons", n.field.Name)
	}

	under := underlyingField(n.field)
	var resolved []any
	for _, v := range n.values {
		name, ok := v.(string)
		if !ok {
			return nil, transport.Validationf("%s comparison requires a string, got %T", n.field.Name, v)
		}
		var (
			matches []string
			err     error
		)
		switch under.Name {
		case "bibstem":
			matches, err = c.Resolver.Bibstems(name)
		default:
			matches, err = c.Resolver.AffIDs(name)
		}
		if err != nil {
			return nil, fmt.Errorf("resolving %s %q: %w", n.field.Name, name, err)
		}
		if len(matches) == 0 {
			return nil, transport.Validationf("unknown %s %q", n.field.Name, name)
		}
		for _, m := range matches {
			resolved = append(resolved, m)
		}
	}

	op := n.op
	if len(resolved) > 1 {
		op = opIn
	}
	return &node{kind: nodeCompare, field: under, op: op, values: resolved}, nil
}

func underlyingField(f Field) Field {
	if f.underlying == "aff_id" {
		return Document.AffID
	}
	return Document.Bibstem
}

func (c *Compiler) compileLogical(n *node) (string, error) {
	if n.logic == logicNot {
		s, err := c.compile(n.operands[0])
		if err != nil {
			return "", err
		}
		return "-(" + s + ")", nil
	}

	sep := " AND "
	if n.logic == logicOr {
		sep = " OR "
	}
	parts := make([]string, len(n.operands))
	for i, op := range n.operands {
		s, err := c.compile(op)
		if err != nil {
			return "", err
		}
		parts[i] = parenWrap(s)
	}
	return strings.Join(parts, sep), nil
}

func (c *Compiler) compileFunc(n *node) (string, error) {
	arg, err := c.compile(n.arg)
	if err != nil {
		return "", err
	}
	if n.fn == "topn" {
		if n.n <= 0 {
			return "", transport.Validationf("topn requires a positive count, got %d", n.n)
		}
		if n.sort != "" {
			return fmt.Sprintf("topn(%d, %s, %s)", n.n, arg, n.sort), nil
		}
		return fmt.Sprintf("topn(%d, %s)", n.n, arg), nil
	}
	return fmt.Sprintf("%s(%s)", n.fn, arg), nil
}

func (c *Compiler) compilePos(n *node) (string, error) {
	start, end := n.start, n.end
	if start < 0 || end < 0 {
		return "", transport.Validationf("negative position index [%d:%d]", start, end)
	}
	if n.zeroIndexed {
		start, end = start+1, end+1
	} else if start < 1 || end < 1 {
		return "", transport.Validationf("positions are 1-indexed, got [%d:%d]", start, end)
	}
	arg, err := c.compile(n.arg)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("pos(%s, %d, %d)", parenWrap(arg), start, end), nil
}

// parenWrap parenthesizes an operand unless it is already self-delimiting
// (a negation carries its own parentheses).
func parenWrap(s string) string {
	if strings.HasPrefix(s, "-") {
		return s
	}
	return "(" + s + ")"
}

// stripOuterParens removes parentheses that enclose the whole expression.
func stripOuterParens(s string) string {
	for strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		depth := 0
		whole := true
		for i, r := range s {
			switch r {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 && i != len(s)-1 {
					whole = false
				}
			}
			if !whole {
				break
			}
		}
		if !whole {
			return s
		}
		s = s[1 : len(s)-1]
	}
	return s
}

// quoted reports whether equality values of the field are quoted. Text-like
// fields quote, except aff_id whose identifiers the parser wants bare.
func quoted(f Field) bool {
	switch f.Kind {
	case KindText, KindTextArray, KindVirtual:
		return f.Name != "aff_id"
	default:
		return false
	}
}

// formatValue renders a comparison value per the field's quoting rules.
// Timestamps always render as a quoted UTC literal.
func formatValue(f Field, v any) (string, error) {
	if t, ok := v.(time.Time); ok {
		return `"` + t.UTC().Format("2006-01-02T15:04:05Z") + `"`, nil
	}
	s := fmt.Sprint(v)
	if quoted(f) {
		return `"` + s + `"`, nil
	}
	return s, nil
}

// formatRangeValue renders a between bound; range bounds are never quoted
// except timestamps.
func formatRangeValue(v any) (string, error) {
	if t, ok := v.(time.Time); ok {
		return `"` + t.UTC().Format("2006-01-02T15:04:05Z") + `"`, nil
	}
	return fmt.Sprint(v), nil
}

// compileRange emits the open-ended range forms. Most numeric fields take
// "*" on the open end; id rejects it and uses an empty bound.
func compileRange(f Field, op compareOp, v any) (string, error) {
	n, ok := toInt(v)
	if !ok {
		return "", transport.Validationf("range comparison on %s requires an integer, got %T", f.Name, v)
	}
	open := "*"
	if f.noWildcard {
		open = ""
	}
	switch op {
	case opGt:
		return fmt.Sprintf("%s:[%d TO %s]", f.Name, n+1, open), nil
	case opGe:
		return fmt.Sprintf("%s:[%d TO %s]", f.Name, n, open), nil
	case opLt:
		return fmt.Sprintf("%s:[0 TO %d]", f.Name, n-1), nil
	default: // opLe
		return fmt.Sprintf("%s:[0 TO %d]", f.Name, n), nil
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}

// collectBibcodes gathers bibcode equality and membership values reachable
// through AND/OR chains. Terms under negations or functions keep their
// position in the query and are not counted.
func collectBibcodes(n *node) []string {
	var out []string
	switch n.kind {
	case nodeCompare:
		if n.field.Name == "bibcode" && (n.op == opEq || n.op == opIn || n.op == opExact) {
			for _, v := range n.values {
				out = append(out, fmt.Sprint(v))
			}
		}
	case nodeLogical:
		if n.logic == logicNot {
			return nil
		}
		for _, op := range n.operands {
			out = append(out, collectBibcodes(op)...)
		}
	}
	return out
}

// pruneBibcodes rebuilds the tree without the bibcode terms that
// collectBibcodes gathered. It returns nil when nothing else remains.
func pruneBibcodes(n *node) *node {
	switch n.kind {
	case nodeCompare:
		if n.field.Name == "bibcode" && (n.op == opEq || n.op == opIn || n.op == opExact) {
			return nil
		}
		return n
	case nodeLogical:
		if n.logic == logicNot {
			return n
		}
		var kept []*node
		for _, op := range n.operands {
			if p := pruneBibcodes(op); p != nil {
				kept = append(kept, p)
			}
		}
		switch len(kept) {
		case 0:
			return nil
		case 1:
			return kept[0]
		default:
			return &node{kind: nodeLogical, logic: n.logic, operands: kept}
		}
	default:
		return n
	}
}
