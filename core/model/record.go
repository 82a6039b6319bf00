package model

import (
	"strings"
)

// Position is a zero-based line and byte column in the source document.
type Position struct {
	Line int `json:"line"`
	Col  int `json:"character"`
}

// Span is the source region a record was scanned from. It is only used to
// replace text, never to reparse it.
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Record is one scanned statement.
type Record struct {
	Kind RecordKind
	Span Span

	// Indent is the number of indentation levels in front of the first line.
	Indent int

	// Fields holds the captured fields; absent kinds are missing from the map.
	Fields map[FieldKind]Field

	// Trailer is text that opens a nested block after a thing header ("{").
	Trailer string

	// Override is the layout requested by an in-file directive, or StyleDefault.
	Override Style

	// Tainted marks a record whose source lines held text the scanner could
	// not assign to a field. Tainted records are never rewritten.
	Tainted bool

	// Widths is the width table of the alignment batch the record belongs to.
	// Records of one batch share the same table.
	Widths Widths
}

// NewRecord creates an empty record starting at the given line.
func NewRecord(kind RecordKind, line, indent int) *Record {
	return &Record{
		Kind:   kind,
		Span:   Span{Start: Position{Line: line}},
		Indent: indent,
		Fields: make(map[FieldKind]Field),
	}
}

// Get returns the text of a field, or "" when absent.
func (r *Record) Get(kind FieldKind) string {
	return r.Fields[kind].Text
}

// Has reports whether a field was captured.
func (r *Record) Has(kind FieldKind) bool {
	return r.Fields[kind].Text != ""
}

// Set stores a field after normalizing its interior whitespace.
func (r *Record) Set(kind FieldKind, text string) {
	r.Fields[kind] = Field{Kind: kind, Text: Normalize(kind, text)}
}

// Valid reports whether the record has both a type and a name.
func (r *Record) Valid() bool {
	return r.Has(Type) && r.Has(Name)
}

// Comment returns the trailing comment field.
func (r *Record) Comment() Field {
	return r.Fields[Comment]
}

// Style returns the layout to use for the record given the configured one.
func (r *Record) Style(configured Style) Style {
	if r.Override != StyleDefault {
		return r.Override
	}
	return configured
}

var delimiters = map[FieldKind][2]string{
	Label:      {`"`, `"`},
	Icon:       {"<", ">"},
	Group:      {"(", ")"},
	Channel:    {"{", "}"},
	Parameters: {"[", "]"},
}

// Normalize trims stray whitespace just inside the delimiters of label, icon,
// group, channel and parameter fields. Other kinds are returned unchanged. Normalizing an
// already normalized field is a no-op.
func Normalize(kind FieldKind, text string) string {
	d, ok := delimiters[kind]
	if !ok {
		return text
	}
	open, close := d[0], d[1]
	if strings.HasPrefix(text, open) {
		rest := text[len(open):]
		if strings.HasSuffix(rest, close) {
			inner := rest[:len(rest)-len(close)]
			return open + strings.TrimSpace(inner) + close
		}
		return open + strings.TrimLeft(rest, " \t")
	}
	if strings.HasSuffix(text, close) {
		return strings.TrimRight(text[:len(text)-len(close)], " \t") + close
	}
	return text
}
