package tokenizer

import (
	"regexp"
	"strings"

	"github.com/FocuswithJustin/ohfmt/core/model"
)

// BlockMatcher matches a bracketed key="value" block that may continue on
// the following lines. Brackets inside double-quoted values are ignored.
type BlockMatcher struct {
	Kind  model.FieldKind
	Open  byte
	Close byte
	start *regexp.Regexp
}

var (
	// ChannelBlock is the { channel="..." } block of an item.
	ChannelBlock = &BlockMatcher{
		Kind:  model.Channel,
		Open:  '{',
		Close: '}',
		start: anchored(`\{\s*(?:\w*\s*=|$)`),
	}

	// ParameterBlock is the [ key="value" ] block of a thing.
	ParameterBlock = &BlockMatcher{
		Kind:  model.Parameters,
		Open:  '[',
		Close: ']',
		start: anchored(`\[\s*(?:[\w.-]+\s*=|\]|$)`),
	}
)

// BlockMatch is the part of a block found on one line.
type BlockMatch struct {
	Text string
	// End is the offset just past Text, or the start of a trailing comment.
	End int
	// Depth is the number of brackets still open; 0 means the block closed.
	Depth int
	// InQuote is set when the line ended inside a quoted value.
	InQuote bool
}

// Closed reports whether the block ended on this line.
func (m BlockMatch) Closed() bool {
	return m.Depth == 0
}

// Start matches the opening of a block at offset.
func (b *BlockMatcher) Start(line string, offset int) (BlockMatch, bool) {
	if offset >= len(line) || b.start.FindStringIndex(line[offset:]) == nil {
		return BlockMatch{}, false
	}
	return b.scan(line, offset, 0, false), true
}

// Continue consumes a continuation line of the block left open by prev. It
// stops after the closing bracket, or before a // comment when the block
// stays open.
func (b *BlockMatcher) Continue(line string, offset int, prev BlockMatch) BlockMatch {
	return b.scan(line, SkipSpace(line, offset), prev.Depth, prev.InQuote)
}

// TryMatch implements Matcher. An unclosed block matches up to the end of
// the line.
func (b *BlockMatcher) TryMatch(line string, offset int) (string, bool) {
	m, ok := b.Start(line, offset)
	if !ok {
		return "", false
	}
	return m.Text, true
}

func (b *BlockMatcher) scan(line string, from, depth int, inQuote bool) BlockMatch {
	for i := from; i < len(line); i++ {
		c := line[i]
		if inQuote {
			switch c {
			case '\\':
				i++
			case '"':
				inQuote = false
			}
			continue
		}
		switch {
		case c == '"':
			inQuote = true
		case c == b.Open:
			depth++
		case c == b.Close:
			depth--
			if depth <= 0 {
				return BlockMatch{Text: line[from : i+1], End: i + 1}
			}
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			return BlockMatch{Text: strings.TrimRight(line[from:i], " \t"), End: i, Depth: depth}
		}
	}
	return BlockMatch{Text: strings.TrimRight(line[from:], " \t"), End: len(line), Depth: depth, InQuote: inQuote}
}
