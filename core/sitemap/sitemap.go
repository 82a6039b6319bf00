// Package sitemap re-indents .sitemap files. It does not share the record
// machinery of items and things: widgets are put on their own lines and
// indented by brace depth.
package sitemap

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/ohfmt/core/errors"
)

// Options controls indentation.
type Options struct {
	TabSize      int
	InsertSpaces bool
}

// Widgets are the element keywords that start a new line.
var Widgets = map[string]bool{
	"Frame": true, "Default": true, "Text": true, "Group": true,
	"Switch": true, "Selection": true, "Setpoint": true, "Slider": true,
	"Colorpicker": true, "Webview": true, "Mapview": true, "Image": true,
	"Video": true, "Chart": true,
}

// sitemapLexer splits a sitemap into tokens. Char catches anything else so
// lexing never fails on unexpected input.
var sitemapLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "BlockComment", Pattern: `/\*(?:[^*]|\*+[^*/])*\*+/`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Number", Pattern: `[0-9]+(?:\.[0-9]+)?`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Char", Pattern: `[^\s]`},
})

var (
	tokWhitespace   = sitemapLexer.Symbols()["Whitespace"]
	tokComment      = sitemapLexer.Symbols()["Comment"]
	tokBlockComment = sitemapLexer.Symbols()["BlockComment"]
	tokIdent        = sitemapLexer.Symbols()["Ident"]
)

// attached lists tokens after which a widget keyword is a value, not the
// start of a new widget.
var attached = map[string]bool{
	"=": true, "[": true, "(": true, ",": true, "<": true, ">": true, "!": true, ":": true,
}

// Reflow formats a whole sitemap document.
func Reflow(text string, opts Options) (string, error) {
	if opts.TabSize < 1 {
		opts.TabSize = 4
	}
	lex, err := sitemapLexer.LexString("", text)
	if err != nil {
		return "", errors.NewParse("sitemap", "", err.Error())
	}
	tokens, err := lexer.ConsumeAll(lex)
	if err != nil {
		return "", errors.NewParse("sitemap", "", err.Error())
	}

	p := &printer{opts: opts}
	for _, tok := range tokens {
		if tok.EOF() {
			break
		}
		p.token(tok)
	}
	p.flush()

	out := strings.Join(p.lines, "\n")
	if strings.HasSuffix(text, "\n") {
		out += "\n"
	}
	return out, nil
}

type printer struct {
	opts  Options
	lines []string
	cur   []string
	depth int
	// space is set when whitespace separated the previous token from the next.
	space bool
	// blank is set when that whitespace held an empty line.
	blank bool
	prev  string
}

func (p *printer) token(tok lexer.Token) {
	switch {
	case tok.Type == tokWhitespace:
		p.space = true
		p.blank = p.blank || strings.Count(tok.Value, "\n") > 1
		return
	case tok.Type == tokComment || tok.Type == tokBlockComment:
		p.flush()
		p.add(tok.Value)
		p.flush()
		return
	case tok.Value == "}":
		p.flush()
	case tok.Type == tokIdent && Widgets[tok.Value] && !attached[p.prev]:
		p.flush()
	}
	p.add(tok.Value)
}

func (p *printer) add(s string) {
	if len(p.cur) == 0 && p.blank && len(p.lines) > 0 {
		p.lines = append(p.lines, "")
	}
	if len(p.cur) > 0 && p.space {
		p.cur = append(p.cur, " ")
	}
	p.cur = append(p.cur, s)
	p.space, p.blank, p.prev = false, false, s
}

// flush ends the current line and indents it by the brace depth.
func (p *printer) flush() {
	if len(p.cur) == 0 {
		return
	}
	if p.cur[0] == "}" && p.depth > 0 {
		p.depth--
	}
	p.lines = append(p.lines, p.indent(p.depth)+strings.Join(p.cur, ""))
	for i, s := range p.cur {
		switch {
		case s == "{":
			p.depth++
		case s == "}" && i > 0 && p.depth > 0:
			p.depth--
		}
	}
	p.cur = p.cur[:0]
}

func (p *printer) indent(depth int) string {
	if p.opts.InsertSpaces {
		return strings.Repeat(" ", depth*p.opts.TabSize)
	}
	return strings.Repeat("\t", depth)
}
