// Package layout renders scanned records back to text in one of the
// supported styles.
package layout

import (
	"regexp"
	"strings"

	"github.com/FocuswithJustin/ohfmt/core/model"
)

// Config holds the options that affect rendering.
type Config struct {
	NewLineAfterItem      bool
	MultilineIndentAmount int
	TabSize               int
	InsertSpaces          bool
}

// Render lays out rec using the column widths of its batch, or its own field
// widths when widths is nil. The record's own override, if any, takes
// precedence over style. An unrecognized style
// renders as "", meaning the record must be left as it is.
func Render(rec *model.Record, widths model.Widths, style model.Style, cfg Config) string {
	if cfg.TabSize < 1 {
		cfg.TabSize = 4
	}
	if widths == nil {
		widths = model.NewWidths()
		for kind, f := range rec.Fields {
			widths.Observe(kind, f.Text)
		}
	}

	var out string
	switch rec.Style(style) {
	case model.StyleColumn:
		out = column(rec, widths, cfg, false)
	case model.StyleChannelColumn:
		out = column(rec, widths, cfg, true)
	case model.StyleMultiline:
		out = multiline(rec, widths, cfg)
	default:
		return ""
	}

	out = strings.TrimRight(out, " \t\n")
	if cfg.InsertSpaces {
		out = ExpandTabs(out, cfg.TabSize)
	}
	if cfg.NewLineAfterItem {
		out += "\n"
	}
	return out
}

// head returns the aligned columns of rec and the kind of its trailing block.
func head(rec *model.Record) ([]model.FieldKind, model.FieldKind) {
	if rec.Kind == model.ItemRecord {
		return model.ItemColumns[:len(model.ItemColumns)-1], model.Channel
	}
	return model.ThingColumns[:len(model.ThingColumns)-1], model.Parameters
}

func column(rec *model.Record, widths model.Widths, cfg Config, wrap bool) string {
	var b strings.Builder
	b.WriteString(tabs(rec.Indent))

	cols, blockKind := head(rec)
	headStops := 0
	for _, kind := range cols {
		text := rec.Get(kind)
		if text == "" {
			continue
		}
		stops := Stops(max(widths.Get(kind), model.TextWidth(text)), cfg.TabSize)
		headStops += stops
		b.WriteString(Fill(text, stops, cfg.TabSize))
	}

	block := rec.Get(blockKind)
	if wrap && block != "" {
		block = Wrap(block, tabs(rec.Indent+headStops)+" ")
	}
	b.WriteString(block)
	writeTail(&b, rec)
	return b.String()
}

func multiline(rec *model.Record, widths model.Widths, cfg Config) string {
	amount := cfg.MultilineIndentAmount
	indent := tabs(rec.Indent)

	var b strings.Builder
	b.WriteString(indent)
	b.WriteString(rec.Get(model.Type))
	if Stops(widths.Get(model.Type), cfg.TabSize) > amount {
		b.WriteString("\t")
	} else {
		b.WriteString(tabs(amount - model.TextWidth(rec.Get(model.Type))/cfg.TabSize))
	}
	b.WriteString(rec.Get(model.Name))

	cols, blockKind := head(rec)
	for _, kind := range append(cols[2:len(cols):len(cols)], blockKind) {
		if text := rec.Get(kind); text != "" {
			b.WriteString("\n" + indent + tabs(amount) + text)
		}
	}
	writeTail(&b, rec)
	return b.String()
}

// writeTail appends the body opener and the trailing comment of rec.
func writeTail(b *strings.Builder, rec *model.Record) {
	if rec.Trailer == "" && rec.Get(model.Comment) == "" {
		return
	}
	s := strings.TrimRight(b.String(), " \t")
	b.Reset()
	b.WriteString(s)
	if rec.Trailer != "" {
		b.WriteString(" " + rec.Trailer)
	}
	if c := rec.Get(model.Comment); c != "" {
		b.WriteString("\t" + c)
	}
}

var (
	pairStart = regexp.MustCompile(`^\s*[\w.-]+\s*=`)
	keyPrefix = regexp.MustCompile(`^[{\[]\s*\w*\s*="`)
	profile   = regexp.MustCompile(`^\],\s*[<>]`)
)

// Wrap breaks a channel or parameter block after every comma that separates
// two key="value" pairs, continuing each pair on a new line prefixed by
// lead. Commas inside quoted values, nested brackets or value lists are kept.
// Inside a quoted value, "]," followed by "<" or ">" also breaks, aligned
// under the first value.
func Wrap(block, lead string) string {
	valueLead := lead
	if m := keyPrefix.FindString(block); m != "" {
		valueLead = strings.TrimSuffix(lead, " ") + strings.Repeat(" ", len(m))
	}

	var b strings.Builder
	depth, inQuote := 0, false
	for i := 0; i < len(block); i++ {
		c := block[i]
		if inQuote {
			switch {
			case c == '\\' && i+1 < len(block):
				b.WriteByte(c)
				i++
				c = block[i]
			case c == '"':
				inQuote = false
			case c == ']' && profile.MatchString(block[i:]):
				b.WriteString("],\n" + valueLead)
				i = skipSpace(block, i+2) - 1
				continue
			}
			b.WriteByte(c)
			continue
		}
		switch c {
		case '"':
			inQuote = true
		case '{', '[', '(':
			depth++
		case '}', ']', ')':
			depth--
		case ',':
			if depth == 1 && pairStart.MatchString(block[i+1:]) {
				b.WriteString(",\n" + lead)
				i = skipSpace(block, i+1) - 1
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n') {
		i++
	}
	return i
}
