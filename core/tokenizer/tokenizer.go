// Package tokenizer extracts the fields of item and thing statements.
//
// Every field kind has its own Matcher. Matching is anchored: a field is only
// recognized when it starts exactly at the scan offset after whitespace has
// been skipped, never at a later position on the line.
package tokenizer

import (
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/FocuswithJustin/ohfmt/core/model"
)

// Matcher recognizes one field kind at a fixed offset.
type Matcher interface {
	// TryMatch returns the text matched at line[offset:], or false.
	TryMatch(line string, offset int) (string, bool)
}

// MatcherFunc adapts a function to the Matcher interface.
type MatcherFunc func(line string, offset int) (string, bool)

// TryMatch calls f.
func (f MatcherFunc) TryMatch(line string, offset int) (string, bool) {
	return f(line, offset)
}

// regexMatcher matches an expression anchored at the offset.
type regexMatcher struct {
	re *regexp.Regexp
	// keyword requires the match to be followed by a non-word character.
	keyword bool
}

func anchored(expr string) *regexp.Regexp {
	return regexp.MustCompile(`^(?:` + expr + `)`)
}

func (m regexMatcher) TryMatch(line string, offset int) (string, bool) {
	if offset >= len(line) {
		return "", false
	}
	rest := line[offset:]
	loc := m.re.FindStringIndex(rest)
	if loc == nil || loc[1] == 0 {
		return "", false
	}
	if m.keyword && loc[1] < len(rest) {
		r, _ := utf8.DecodeRuneInString(rest[loc[1]:])
		if isWord(r) {
			return "", false
		}
	}
	return rest[:loc[1]], true
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

const (
	quoted   = `"(?:[^"\\]|\\.)*"`
	itemType = `(?:Color|Contact|DateTime|Dimmer|Group|Image|Location|Number|Player|Rollershutter|String|Switch|Call)` +
		`(?::\w+)?(?::\w+)?(?:\([^()]*\))?(?:\("[^"]*"\))?`
)

var (
	typeMatcher     = regexMatcher{re: anchored(itemType), keyword: true}
	nameMatcher     = regexMatcher{re: anchored(`[\p{L}\p{N}][\p{L}\p{N}_]*`)}
	labelMatcher    = regexMatcher{re: anchored(quoted)}
	iconMatcher     = regexMatcher{re: anchored(`<[^<>]+>`)}
	groupMatcher    = regexMatcher{re: anchored(`\([^()]+\)`)}
	tagMatcher      = regexMatcher{re: anchored(`\[\s*"[^"]*"\s*(?:,\s*"[^"]*"\s*)*\]`)}
	commentMatcher  = regexMatcher{re: anchored(`//.*`)}
	thingMatcher    = regexMatcher{re: anchored(`Thing|Bridge`), keyword: true}
	uidMatcher      = regexMatcher{re: anchored(`[\w-]+(?::[\w-]+)+`), keyword: true}
	locationMatcher = regexMatcher{re: anchored(`@\s*` + quoted)}
)

// Grammar is the ordered field vocabulary of one statement kind.
type Grammar struct {
	matchers map[model.FieldKind]Matcher

	// Fields lists the kinds tried after Type and Name, in order.
	Fields []model.FieldKind

	// Block is the bracketed field that may span several lines.
	Block *BlockMatcher

	// Opener, when set, may follow the fields to open a nested body.
	Opener string
}

// Items is the grammar of .items files.
var Items = &Grammar{
	matchers: map[model.FieldKind]Matcher{
		model.Type:    typeMatcher,
		model.Name:    nameMatcher,
		model.Label:   labelMatcher,
		model.Icon:    iconMatcher,
		model.Group:   groupMatcher,
		model.Tag:     tagMatcher,
		model.Comment: commentMatcher,
	},
	Fields: []model.FieldKind{model.Label, model.Icon, model.Group, model.Tag, model.Channel, model.Comment},
	Block:  ChannelBlock,
}

// Things is the grammar of .things files. Name is the full thing UID.
var Things = &Grammar{
	matchers: map[model.FieldKind]Matcher{
		model.Type:     thingMatcher,
		model.Name:     uidMatcher,
		model.Label:    labelMatcher,
		model.Group:    groupMatcher,
		model.Location: locationMatcher,
		model.Comment:  commentMatcher,
	},
	Fields: []model.FieldKind{model.Label, model.Group, model.Location, model.Parameters, model.Comment},
	Block:  ParameterBlock,
	Opener: "{",
}

// Matcher returns the matcher for kind, or nil if the grammar has none.
func (g *Grammar) Matcher(kind model.FieldKind) Matcher {
	if g.Block != nil && kind == g.Block.Kind {
		return g.Block
	}
	return g.matchers[kind]
}

// Next skips whitespace at offset and tries to match kind there. It returns
// the matched text and the offset just past it.
func (g *Grammar) Next(line string, offset int, kind model.FieldKind) (string, int, bool) {
	m := g.Matcher(kind)
	if m == nil {
		return "", offset, false
	}
	start := SkipSpace(line, offset)
	text, ok := m.TryMatch(line, start)
	if !ok {
		return "", offset, false
	}
	return text, start + len(text), true
}

// Next matches kind with the item grammar.
func Next(line string, offset int, kind model.FieldKind) (string, int, bool) {
	return Items.Next(line, offset, kind)
}

// SkipSpace returns the offset of the first non-blank byte at or after offset.
func SkipSpace(line string, offset int) int {
	for offset < len(line) && (line[offset] == ' ' || line[offset] == '\t') {
		offset++
	}
	return offset
}
