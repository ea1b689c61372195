// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

// FieldKind is the semantic type of a searchable field. It drives value
// quoting and range formatting.
type FieldKind int

const (
	// KindText fields hold free text; equality values are quoted.
	KindText FieldKind = iota
	// KindTextArray fields hold ordered lists of text values and support
	// positional subscripts.
	KindTextArray
	// KindInt fields hold integers and support range comparisons.
	KindInt
	// KindDate fields hold calendar dates.
	KindDate
	// KindDatetime fields hold timestamps.
	KindDatetime
	// KindVirtual fields are searchable-only: the parser understands them
	// but records never carry a stored value.
	KindVirtual
	// KindForeign fields reference a row of the local reference tables and
	// are rewritten to their underlying scalar field at compile time.
	KindForeign
)

// Field describes one searchable field of a document.
type Field struct {
	Name string
	Kind FieldKind

	// noWildcard marks fields whose open-ended ranges use an empty bound
	// instead of "*". The id field rejects the wildcard form.
	noWildcard bool

	// underlying is the scalar search field a foreign field rewrites to.
	underlying string
}

// Stored reports whether records can carry a value for the field.
func (f Field) Stored() bool {
	return f.Kind != KindVirtual && f.Kind != KindForeign
}

func (f Field) compare(op compareOp, values ...any) Expr {
	return Expr{n: &node{kind: nodeCompare, field: f, op: op, values: values}}
}

// Eq matches documents whose field contains v.
func (f Field) Eq(v any) Expr { return f.compare(opEq, v) }

// Exact matches documents whose field equals v exactly, disabling synonym
// and stemming expansion.
func (f Field) Exact(v any) Expr { return f.compare(opExact, v) }

// Ne matches documents whose field does not contain v.
func (f Field) Ne(v any) Expr { return f.compare(opNe, v) }

// Gt matches documents whose field exceeds n.
func (f Field) Gt(n int) Expr { return f.compare(opGt, n) }

// Ge matches documents whose field is at least n.
func (f Field) Ge(n int) Expr { return f.compare(opGe, n) }

// Lt matches documents whose field is below n.
func (f Field) Lt(n int) Expr { return f.compare(opLt, n) }

// Le matches documents whose field is at most n.
func (f Field) Le(n int) Expr { return f.compare(opLe, n) }

// Between matches documents whose field lies in [a, b].
func (f Field) Between(a, b any) Expr { return f.compare(opBetween, a, b) }

// In matches documents whose field contains any of the values.
func (f Field) In(values ...any) Expr {
	return Expr{n: &node{kind: nodeCompare, field: f, op: opIn, values: values}}
}

// Like matches v as a wildcard pattern: "%" matches any run of characters
// and a pattern without "%" matches as a prefix.
func (f Field) Like(pattern string) Expr { return f.compare(opLike, pattern) }

// Sliced is a positional view over an array-valued field. Comparisons built
// from it are wrapped in a pos() call with the 0-based indices shifted to
// the dialect's 1-based form.
type Sliced struct {
	field      Field
	start, end int
}

// At restricts comparisons to index i (0-based) of the array field.
func (f Field) At(i int) Sliced {
	return Sliced{field: f, start: i, end: i}
}

// Slice restricts comparisons to the inclusive 0-based index range [i, j].
func (f Field) Slice(i, j int) Sliced {
	return Sliced{field: f, start: i, end: j}
}

func (s Sliced) wrap(e Expr) Expr {
	return Expr{n: &node{kind: nodePos, arg: e.n, start: s.start, end: s.end, zeroIndexed: true}}
}

// Eq matches v at the slice positions.
func (s Sliced) Eq(v any) Expr { return s.wrap(s.field.Eq(v)) }

// Exact matches v exactly at the slice positions.
func (s Sliced) Exact(v any) Expr { return s.wrap(s.field.Exact(v)) }

// Like matches a wildcard pattern at the slice positions.
func (s Sliced) Like(pattern string) Expr { return s.wrap(s.field.Like(pattern)) }

// Document exposes the searchable fields of an ADS document. Virtual fields
// (Abs, All, Full) can be searched but never appear on records; Journal and
// Institution are rewritten through the local reference tables.
var Document = struct {
	ID               Field
	Bibcode          Field
	AlternateBibcode Field
	Abstract         Field
	Ack              Field
	Aff              Field
	AffID            Field
	ArxivClass       Field
	Author           Field
	AuthorCount      Field
	Bibgroup         Field
	Bibstem          Field
	Body             Field
	CitationCount    Field
	Database         Field
	Date             Field
	Doctype          Field
	DOI              Field
	EntryDate        Field
	Esources         Field
	Facility         Field
	FirstAuthor      Field
	Grant            Field
	Identifier       Field
	Issue            Field
	Keyword          Field
	Orcid            Field
	Page             Field
	PageCount        Field
	Property         Field
	Pub              Field
	PubRaw           Field
	Pubdate          Field
	ReadCount        Field
	Title            Field
	Volume           Field
	Year             Field

	Abs  Field
	All  Field
	Full Field

	Journal     Field
	Institution Field
}{
	ID:               Field{Name: "id", Kind: KindInt, noWildcard: true},
	Bibcode:          Field{Name: "bibcode", Kind: KindText},
	AlternateBibcode: Field{Name: "alternate_bibcode", Kind: KindTextArray},
	Abstract:         Field{Name: "abstract", Kind: KindText},
	Ack:              Field{Name: "ack", Kind: KindText},
	Aff:              Field{Name: "aff", Kind: KindTextArray},
	AffID:            Field{Name: "aff_id", Kind: KindTextArray},
	ArxivClass:       Field{Name: "arxiv_class", Kind: KindText},
	Author:           Field{Name: "author", Kind: KindTextArray},
	AuthorCount:      Field{Name: "author_count", Kind: KindInt},
	Bibgroup:         Field{Name: "bibgroup", Kind: KindText},
	Bibstem:          Field{Name: "bibstem", Kind: KindText},
	Body:             Field{Name: "body", Kind: KindVirtual},
	CitationCount:    Field{Name: "citation_count", Kind: KindInt},
	Database:         Field{Name: "database", Kind: KindText},
	Date:             Field{Name: "date", Kind: KindDatetime},
	Doctype:          Field{Name: "doctype", Kind: KindText},
	DOI:              Field{Name: "doi", Kind: KindTextArray},
	EntryDate:        Field{Name: "entry_date", Kind: KindDatetime},
	Esources:         Field{Name: "esources", Kind: KindTextArray},
	Facility:         Field{Name: "facility", Kind: KindTextArray},
	FirstAuthor:      Field{Name: "first_author", Kind: KindText},
	Grant:            Field{Name: "grant", Kind: KindText},
	Identifier:       Field{Name: "identifier", Kind: KindTextArray},
	Issue:            Field{Name: "issue", Kind: KindText},
	Keyword:          Field{Name: "keyword", Kind: KindTextArray},
	Orcid:            Field{Name: "orcid", Kind: KindTextArray},
	Page:             Field{Name: "page", Kind: KindText},
	PageCount:        Field{Name: "page_count", Kind: KindInt},
	Property:         Field{Name: "property", Kind: KindTextArray},
	Pub:              Field{Name: "pub", Kind: KindText},
	PubRaw:           Field{Name: "pub_raw", Kind: KindText},
	Pubdate:          Field{Name: "pubdate", Kind: KindDate},
	ReadCount:        Field{Name: "read_count", Kind: KindInt},
	Title:            Field{Name: "title", Kind: KindText},
	Volume:           Field{Name: "volume", Kind: KindText},
	Year:             Field{Name: "year", Kind: KindInt},

	Abs:  Field{Name: "abs", Kind: KindVirtual},
	All:  Field{Name: "all", Kind: KindVirtual},
	Full: Field{Name: "full", Kind: KindVirtual},

	Journal:     Field{Name: "journal", Kind: KindForeign, underlying: "bibstem"},
	Institution: Field{Name: "institution", Kind: KindForeign, underlying: "aff_id"},
}

// StoredFields lists the declared record fields that can be requested in fl.
func StoredFields() []Field {
	return []Field{
		Document.ID, Document.Bibcode, Document.AlternateBibcode,
		Document.Abstract, Document.Ack, Document.Aff, Document.AffID,
		Document.ArxivClass, Document.Author, Document.AuthorCount,
		Document.Bibgroup, Document.Bibstem, Document.CitationCount,
		Document.Database, Document.Date, Document.Doctype, Document.DOI,
		Document.EntryDate, Document.Esources, Document.Facility,
		Document.FirstAuthor, Document.Grant, Document.Identifier,
		Document.Issue, Document.Keyword, Document.Orcid, Document.Page,
		Document.PageCount, Document.Property, Document.Pub, Document.PubRaw,
		Document.Pubdate, Document.ReadCount, Document.Title, Document.Volume,
		Document.Year,
	}
}
