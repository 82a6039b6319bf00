package tokenizer

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/ohfmt/core/errors"
)

// UID is a thing UID split into its parts.
type UID struct {
	BindingID string
	TypeID    string
	// ThingID holds every segment after the type, e.g. "broker:sensor" for
	// mqtt:topic:broker:sensor.
	ThingID string
}

// String joins the parts with colons.
func (u UID) String() string {
	return u.BindingID + ":" + u.TypeID + ":" + u.ThingID
}

// uidGrammar is the participle grammar for colon separated thing UIDs.
// Examples: "hue:0210:bridge1:bulb3", "astro:sun:home"
type uidGrammar struct {
	Segments []string `parser:"@Segment ( \":\" @Segment )+"`
}

var uidLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Segment", Pattern: `[A-Za-z0-9_-]+`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var uidParser = participle.MustBuild[uidGrammar](
	participle.Lexer(uidLexer),
	participle.Elide("Whitespace"),
)

// ParseUID splits a thing UID. At least three segments are required.
func ParseUID(s string) (UID, error) {
	g, err := uidParser.ParseString("", s)
	if err != nil {
		return UID{}, &errors.ParseError{Format: "thing UID", Message: err.Error(), Err: err}
	}
	if len(g.Segments) < 3 {
		return UID{}, errors.NewParse("thing UID", "", "expected binding:type:id, got "+s)
	}
	return UID{
		BindingID: g.Segments[0],
		TypeID:    g.Segments[1],
		ThingID:   strings.Join(g.Segments[2:], ":"),
	}, nil
}
