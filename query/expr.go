// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query implements the search expression DSL and its compiler to
// the API's Solr dialect. Expressions are immutable trees built from field
// descriptors (see Document) and combinators; Compile walks a tree and
// emits the textual query the search endpoints accept.
package query

// nodeKind tags the variants of the expression tree.
type nodeKind int

const (
	nodeCompare nodeKind = iota
	nodeLogical
	nodeFunc
	nodePos
	nodeRaw
)

// compareOp enumerates the comparison operators.
type compareOp int

const (
	opEq compareOp = iota
	opExact
	opNe
	opGt
	opGe
	opLt
	opLe
	opBetween
	opIn
	opLike
)

// logicOp enumerates the logical connectives.
type logicOp int

const (
	logicAnd logicOp = iota
	logicOr
	logicNot
)

// node is the tagged variant behind Expr. Only the fields relevant to the
// kind are populated.
type node struct {
	kind nodeKind

	// nodeCompare
	field  Field
	op     compareOp
	values []any

	// nodeLogical
	logic    logicOp
	operands []*node

	// nodeFunc
	fn   string
	arg  *node
	n    int
	sort string

	// nodePos. zeroIndexed marks positions produced by array subscripts,
	// which are shifted to the dialect's 1-based form at compile time.
	start, end  int
	zeroIndexed bool

	// nodeRaw
	raw string
}

// Expr is an immutable query expression. The zero Expr is invalid and fails
// at compile time.
type Expr struct {
	n *node
}

// Raw wraps an already-formed Solr query fragment as an expression.
func Raw(q string) Expr {
	return Expr{n: &node{kind: nodeRaw, raw: q}}
}

// And combines two expressions with AND.
func (e Expr) And(other Expr) Expr {
	return Expr{n: &node{kind: nodeLogical, logic: logicAnd, operands: []*node{e.n, other.n}}}
}

// Or combines two expressions with OR.
func (e Expr) Or(other Expr) Expr {
	return Expr{n: &node{kind: nodeLogical, logic: logicOr, operands: []*node{e.n, other.n}}}
}

// Not negates the expression.
func (e Expr) Not() Expr {
	return Expr{n: &node{kind: nodeLogical, logic: logicNot, operands: []*node{e.n}}}
}

func fnExpr(name string, e Expr) Expr {
	return Expr{n: &node{kind: nodeFunc, fn: name, arg: e.n}}
}

// Citations selects the documents citing the results of e.
func Citations(e Expr) Expr { return fnExpr("citations", e) }

// References selects the documents cited by the results of e.
func References(e Expr) Expr { return fnExpr("references", e) }

// Trending selects documents read by the same users as the results of e.
func Trending(e Expr) Expr { return fnExpr("trending", e) }

// Similar selects documents with abstracts similar to the results of e.
func Similar(e Expr) Expr { return fnExpr("similar", e) }

// Reviews selects review articles citing the results of e.
func Reviews(e Expr) Expr { return fnExpr("reviews", e) }

// Useful selects documents frequently cited alongside the results of e.
func Useful(e Expr) Expr { return fnExpr("useful", e) }

// JoinCitations is the second-order join over citations.
func JoinCitations(e Expr) Expr { return fnExpr("join_citations", e) }

// TopN restricts e to its first n results, optionally under a sort clause.
func TopN(n int, e Expr, sort ...string) Expr {
	nd := &node{kind: nodeFunc, fn: "topn", arg: e.n, n: n}
	if len(sort) > 0 {
		nd.sort = sort[0]
	}
	return Expr{n: nd}
}

// Pos restricts a match to the given 1-indexed position range of an
// array-valued field. The end position defaults to start.
func Pos(e Expr, start int, end ...int) Expr {
	nd := &node{kind: nodePos, arg: e.n, start: start, end: start}
	if len(end) > 0 {
		nd.end = end[0]
	}
	return Expr{n: nd}
}
