package format

import (
	"strings"

	"github.com/FocuswithJustin/ohfmt/core/layout"
	"github.com/FocuswithJustin/ohfmt/core/model"
	"github.com/FocuswithJustin/ohfmt/core/scanner"
	"github.com/FocuswithJustin/ohfmt/core/tokenizer"
	"github.com/FocuswithJustin/ohfmt/internal/logging"
)

// recordHandler formats files made of item or thing statements.
type recordHandler struct {
	name    string
	exts    []string
	beta    bool
	grammar *tokenizer.Grammar
}

func init() {
	Register(&recordHandler{name: "items", exts: []string{".items"}, grammar: tokenizer.Items})
	Register(&recordHandler{name: "things", exts: []string{".things"}, beta: true, grammar: tokenizer.Things})
}

func (h *recordHandler) Name() string         { return h.name }
func (h *recordHandler) Extensions() []string { return h.exts }
func (h *recordHandler) Beta() bool           { return h.beta }

func (h *recordHandler) Format(doc *Document, r *scanner.LineRange, opts Options) ([]Edit, error) {
	return FormatRange(doc, r, h.grammar, opts), nil
}

func (h *recordHandler) Clean(doc *Document) *Document {
	return Clean(doc, h.grammar)
}

// FormatRange scans doc (or the lines in r) with g and returns one edit per
// record whose rendering differs from its source. Tainted records and
// records without a usable style are left alone.
func FormatRange(doc *Document, r *scanner.LineRange, g *tokenizer.Grammar, opts Options) []Edit {
	style := opts.Style
	if style == model.StyleDefault {
		style = model.StyleColumn
	}
	res := scanner.Scan(doc.Lines, g, opts.scanner(), r)
	cfg := opts.layout()

	var edits []Edit
	for _, rec := range res.Records {
		if rec.Tainted {
			continue
		}
		text := layout.Render(rec, rec.Widths, style, cfg)
		if text == "" {
			logging.RecordDropped(rec.Span.Start.Line, "no layout for style", "style", rec.Style(style).String())
			continue
		}
		if doc.Slice(rec.Span) == text {
			continue
		}
		edits = append(edits, Edit{Span: rec.Span, Text: text})
	}
	return edits
}

// Clean drops blank lines inside multi-line channel or parameter blocks so
// that a whole-file run sees each block as one statement. Blank lines between
// statements are kept. A comment or a new statement ends an open block.
func Clean(doc *Document, g *tokenizer.Grammar) *Document {
	out := make([]string, 0, len(doc.Lines))
	var pending *tokenizer.BlockMatch
	inComment := false
	for _, line := range doc.Lines {
		trimmed := strings.TrimSpace(line)
		if pending != nil {
			if trimmed == "" {
				continue
			}
			if _, _, ok := g.Next(line, 0, model.Type); ok || strings.HasPrefix(trimmed, "/") {
				pending = nil
			} else {
				m := g.Block.Continue(line, 0, *pending)
				pending = nil
				if !m.Closed() {
					pending = &m
				}
				out = append(out, line)
				continue
			}
		}
		switch {
		case inComment:
			inComment = !strings.HasSuffix(trimmed, "*/")
		case strings.HasPrefix(trimmed, "//"):
		case strings.HasPrefix(trimmed, "/*"):
			inComment = len(trimmed) < 4 || !strings.HasSuffix(trimmed, "*/")
		default:
			if m, ok := openBlock(line, g.Block); ok {
				pending = &m
			}
		}
		out = append(out, line)
	}
	return &Document{Lines: out, CRLF: doc.CRLF}
}

// openBlock finds a block on line that is left open at the end of the line.
func openBlock(line string, b *tokenizer.BlockMatcher) (tokenizer.BlockMatch, bool) {
	inQuote := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inQuote && c == '\\':
			i++
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '/' && strings.HasPrefix(line[i:], "//"):
			return tokenizer.BlockMatch{}, false
		case c == b.Open:
			m, ok := b.Start(line, i)
			if !ok {
				continue
			}
			if m.Closed() {
				i = m.End - 1
				continue
			}
			return m, true
		}
	}
	return tokenizer.BlockMatch{}, false
}
