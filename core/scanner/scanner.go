// Package scanner groups the lines of an .items or .things document into
// statement records and collects the column widths of each alignment batch.
package scanner

import (
	"strings"

	"github.com/FocuswithJustin/ohfmt/core/model"
	"github.com/FocuswithJustin/ohfmt/core/tokenizer"
	"github.com/FocuswithJustin/ohfmt/internal/logging"
)

// Options controls how records are captured.
type Options struct {
	// PreserveWhitespace keeps the leading indentation of statements.
	PreserveWhitespace bool
	// NewLineAfterItem extends a record's span over the blank line after it.
	NewLineAfterItem bool
	// TabSize is the number of spaces that count as one indentation level.
	TabSize int
}

// LineRange is an inclusive, zero-based range of lines.
type LineRange struct {
	First int
	Last  int
}

// Contains reports whether line lies within the range.
func (r LineRange) Contains(line int) bool {
	return line >= r.First && line <= r.Last
}

// Result is the outcome of one scan.
type Result struct {
	// Records are the complete statements in source order.
	Records []*model.Record
	// Batches are the width tables of the alignment batches, in order. Every
	// record's Widths is one of them.
	Batches []model.Widths
}

type mode int

const (
	idle mode = iota
	inBlockComment
	blockPending
)

// state is the context of one scan. Nothing outlives a call to Scan.
type state struct {
	grammar *tokenizer.Grammar
	opts    Options
	lines   []string

	mode     mode
	pending  tokenizer.BlockMatch
	cur      *model.Record
	override model.Style
	widths   model.Widths
	result   Result
}

// Items scans an .items document.
func Items(lines []string, opts Options, r *LineRange) Result {
	return Scan(lines, tokenizer.Items, opts, r)
}

// Things scans a .things document.
func Things(lines []string, opts Options, r *LineRange) Result {
	return Scan(lines, tokenizer.Things, opts, r)
}

// Scan runs the statement state machine over lines, or over the lines in r
// when r is not nil.
func Scan(lines []string, g *tokenizer.Grammar, opts Options, r *LineRange) Result {
	if opts.TabSize < 1 {
		opts.TabSize = 4
	}
	s := &state{grammar: g, opts: opts, lines: lines}
	s.newBatch()

	first, last := 0, len(lines)-1
	if r != nil {
		first, last = max(r.First, 0), min(r.Last, last)
	}
	for i := first; i <= last; i++ {
		s.line(i)
	}
	s.finish()
	return s.result
}

func (s *state) newBatch() {
	s.widths = model.NewWidths()
	s.result.Batches = append(s.result.Batches, s.widths)
}

func (s *state) line(i int) {
	line := s.lines[i]
	trimmed := strings.TrimSpace(line)

	if s.mode == inBlockComment {
		if strings.HasSuffix(trimmed, "*/") {
			s.mode = idle
		}
		return
	}

	switch {
	case trimmed == "":
		if s.cur != nil && s.opts.NewLineAfterItem {
			s.cur.Span.End = model.Position{Line: i, Col: len(line)}
		}
		s.finish()
		return
	case strings.HasPrefix(trimmed, "//"):
		s.finish()
		if d, ok := model.ParseDirective(line); ok {
			s.directive(d)
		}
		return
	case strings.HasPrefix(trimmed, "/*"):
		s.finish()
		if len(trimmed) < 4 || !strings.HasSuffix(trimmed, "*/") {
			s.mode = inBlockComment
		}
		return
	}

	if s.start(i, line) {
		return
	}
	if s.cur == nil {
		return
	}
	if s.mode == blockPending {
		s.continueBlock(i, line)
		return
	}
	if !s.fields(i, line, 0, s.grammar.Fields) {
		logging.RecordDropped(i, "unrecognized continuation line")
		s.finish()
	}
}

func (s *state) directive(d model.Directive) {
	switch d.Kind {
	case model.BeginOverride:
		s.override = d.Style
	case model.EndGroup:
		s.newBatch()
	}
}

// start tries to open a new record at line i. It reports whether the line
// began with a type keyword.
func (s *state) start(i int, line string) bool {
	typ, end, ok := s.grammar.Next(line, 0, model.Type)
	if !ok {
		return false
	}
	s.finish()

	name, end, ok := s.grammar.Next(line, end, model.Name)
	if !ok {
		logging.RecordDropped(i, "type without name", "type", typ)
		return true
	}

	kind := model.ItemRecord
	switch typ {
	case "Thing":
		kind = model.ThingRecord
	case "Bridge":
		kind = model.BridgeRecord
	}
	rec := model.NewRecord(kind, i, s.indent(line))
	rec.Span.End = model.Position{Line: i, Col: len(line)}
	rec.Override = s.override
	rec.Widths = s.widths

	if kind != model.ItemRecord {
		uid, err := tokenizer.ParseUID(name)
		if err != nil {
			logging.RecordDropped(i, err.Error())
			return true
		}
		rec.Set(model.BindingId, uid.BindingID)
		rec.Set(model.TypeId, uid.TypeID)
		rec.Set(model.ThingId, uid.ThingID)
	}

	s.cur = rec
	s.set(model.Type, typ)
	s.set(model.Name, name)
	s.fields(i, line, end, s.grammar.Fields)
	return true
}

// fields captures kinds from line in order, starting at offset. It reports
// whether anything was captured.
func (s *state) fields(i int, line string, offset int, kinds []model.FieldKind) bool {
	rec := s.cur
	matched := false
	for _, kind := range kinds {
		if s.grammar.Block != nil && kind == s.grammar.Block.Kind {
			start := tokenizer.SkipSpace(line, offset)
			m, ok := s.grammar.Block.Start(line, start)
			if !ok {
				continue
			}
			if !s.set(kind, m.Text) {
				return true
			}
			offset, matched = m.End, true
			if !m.Closed() {
				s.mode, s.pending = blockPending, m
			}
			continue
		}
		text, end, ok := s.grammar.Next(line, offset, kind)
		if !ok {
			continue
		}
		if !s.set(kind, text) {
			return true
		}
		offset, matched = end, true
	}

	if o := s.grammar.Opener; o != "" && s.mode != blockPending {
		at := tokenizer.SkipSpace(line, offset)
		if strings.HasPrefix(line[at:], o) && rec.Trailer == "" {
			rec.Trailer = o
			offset, matched = at+len(o), true
			if text, end, ok := s.grammar.Next(line, offset, model.Comment); ok && s.set(model.Comment, text) {
				offset = end
			}
		}
	}

	if !matched {
		return false
	}
	rec.Span.End = model.Position{Line: i, Col: len(line)}
	if tokenizer.SkipSpace(line, offset) < len(line) {
		s.taint(i, "unrecognized text after fields")
	}
	return true
}

// continueBlock appends a continuation line to the pending block.
func (s *state) continueBlock(i int, line string) {
	block := s.grammar.Block
	m := block.Continue(line, 0, s.pending)
	rec := s.cur
	rec.Set(block.Kind, rec.Get(block.Kind)+m.Text)
	s.widths.Observe(block.Kind, rec.Get(block.Kind))
	rec.Span.End = model.Position{Line: i, Col: len(line)}

	s.pending = m
	if m.Closed() {
		s.mode = idle
	}
	s.fields(i, line, m.End, after(s.grammar.Fields, block.Kind))
}

// set stores a field on the current record and widens its column. A field
// that was already captured taints the record instead.
func (s *state) set(kind model.FieldKind, text string) bool {
	if s.cur.Has(kind) {
		s.taint(s.cur.Span.Start.Line, "duplicate "+kind.String())
		return false
	}
	s.cur.Set(kind, text)
	s.widths.Observe(kind, s.cur.Get(kind))
	return true
}

func (s *state) taint(line int, reason string) {
	if !s.cur.Tainted {
		logging.RecordDropped(line, reason, "name", s.cur.Get(model.Name))
	}
	s.cur.Tainted = true
}

// finish closes the record in progress. A block still open at this point is
// kept as captured so far.
func (s *state) finish() {
	if s.mode == blockPending {
		s.mode, s.pending = idle, tokenizer.BlockMatch{}
	}
	if s.cur == nil {
		return
	}
	s.result.Records = append(s.result.Records, s.cur)
	s.cur = nil
}

// indent counts the indentation levels in front of line. A tab is one level
// and every started run of TabSize spaces is another.
func (s *state) indent(line string) int {
	if !s.opts.PreserveWhitespace {
		return 0
	}
	tabs, spaces := 0, 0
	for _, c := range line {
		switch c {
		case '\t':
			tabs++
		case ' ':
			spaces++
		default:
			return tabs + (spaces+s.opts.TabSize-1)/s.opts.TabSize
		}
	}
	return tabs + (spaces+s.opts.TabSize-1)/s.opts.TabSize
}

func after(kinds []model.FieldKind, k model.FieldKind) []model.FieldKind {
	for i, kind := range kinds {
		if kind == k {
			return kinds[i+1:]
		}
	}
	return nil
}
