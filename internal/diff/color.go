package diff

import (
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

const defaultStyleName = "monokai"

// Colorize writes a diff highlighted with the chroma diff lexer. The style
// falls back to monokai when name is empty or unknown.
func Colorize(w io.Writer, diff, styleName string) error {
	if styleName == "" {
		styleName = defaultStyleName
	}
	lexer := chroma.Coalesce(lexers.Get("diff"))
	iterator, err := lexer.Tokenise(nil, diff)
	if err != nil {
		_, werr := io.WriteString(w, diff)
		return werr
	}
	return formatters.TTY256.Format(w, styles.Get(styleName), iterator)
}

// Write writes diff to w, colored when color is set.
func Write(w io.Writer, diff string, color bool) error {
	if !color {
		_, err := io.WriteString(w, diff)
		return err
	}
	var sb strings.Builder
	if err := Colorize(&sb, diff, ""); err != nil {
		return err
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
