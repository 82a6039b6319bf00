package format

import (
	"sort"
	"strings"

	"github.com/FocuswithJustin/ohfmt/core/model"
)

// Document is the text being formatted, held as lines without their line
// terminators. A document ending in a newline has an empty last line.
type Document struct {
	Lines []string
	// CRLF records that the source used \r\n line endings.
	CRLF bool
}

// NewDocument splits text into lines.
func NewDocument(text string) *Document {
	crlf := strings.Contains(text, "\r\n")
	if crlf {
		text = strings.ReplaceAll(text, "\r\n", "\n")
	}
	return &Document{Lines: strings.Split(text, "\n"), CRLF: crlf}
}

// Text joins the lines with the document's line ending.
func (d *Document) Text() string {
	return strings.Join(d.Lines, d.eol())
}

func (d *Document) eol() string {
	if d.CRLF {
		return "\r\n"
	}
	return "\n"
}

// Range returns the span covering the whole document.
func (d *Document) Range() model.Span {
	last := len(d.Lines) - 1
	return model.Span{End: model.Position{Line: last, Col: len(d.Lines[last])}}
}

// Slice returns the text inside span, with lines joined by \n.
func (d *Document) Slice(span model.Span) string {
	if span.Start.Line < 0 || span.End.Line >= len(d.Lines) || span.Start.Line > span.End.Line {
		return ""
	}
	clamp := func(line string, col int) int { return min(max(col, 0), len(line)) }

	first := d.Lines[span.Start.Line]
	if span.Start.Line == span.End.Line {
		start, end := clamp(first, span.Start.Col), clamp(first, span.End.Col)
		if start > end {
			return ""
		}
		return first[start:end]
	}
	parts := []string{first[clamp(first, span.Start.Col):]}
	parts = append(parts, d.Lines[span.Start.Line+1:span.End.Line]...)
	last := d.Lines[span.End.Line]
	parts = append(parts, last[:clamp(last, span.End.Col)])
	return strings.Join(parts, "\n")
}

// lineIndex maps positions to byte offsets in the \n-joined text.
type lineIndex struct {
	starts  []int
	lengths []int
}

func (d *Document) index() lineIndex {
	idx := lineIndex{starts: make([]int, len(d.Lines)), lengths: make([]int, len(d.Lines))}
	off := 0
	for i, l := range d.Lines {
		idx.starts[i], idx.lengths[i] = off, len(l)
		off += len(l) + 1
	}
	return idx
}

// offset clamps p to the document and converts it to a byte offset.
func (idx lineIndex) offset(p model.Position) int {
	switch {
	case len(idx.starts) == 0 || p.Line < 0:
		return 0
	case p.Line >= len(idx.starts):
		last := len(idx.starts) - 1
		return idx.starts[last] + idx.lengths[last]
	}
	return idx.starts[p.Line] + min(max(p.Col, 0), idx.lengths[p.Line])
}

// Edit replaces the text of a span. Text uses \n line endings.
type Edit struct {
	Span model.Span `json:"range"`
	Text string     `json:"newText"`
}

// Apply returns a new document with edits applied. Edits must not overlap;
// an edit overlapping one that starts later is dropped.
func Apply(d *Document, edits []Edit) *Document {
	idx := d.index()
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return idx.offset(sorted[i].Span.Start) > idx.offset(sorted[j].Span.Start)
	})

	text := strings.Join(d.Lines, "\n")
	limit := len(text)
	for _, e := range sorted {
		start, end := idx.offset(e.Span.Start), idx.offset(e.Span.End)
		if start > end || end > limit {
			continue
		}
		text = text[:start] + e.Text + text[end:]
		limit = start
	}
	return &Document{Lines: strings.Split(text, "\n"), CRLF: d.CRLF}
}
