package layout

import (
	"strings"

	"github.com/FocuswithJustin/ohfmt/core/model"
)

// Stops is the number of tab stops a column of the given width occupies.
// A width that is an exact multiple of the tab size still gets a separating
// stop; a width of zero occupies nothing.
func Stops(width, tabSize int) int {
	if width == 0 {
		return 0
	}
	return width/tabSize + 1
}

// Fill pads text with tabs so that it ends on tab stop number stops. Empty
// text and empty columns produce nothing.
func Fill(text string, stops, tabSize int) string {
	if stops == 0 || text == "" {
		return ""
	}
	gap := stops - model.TextWidth(text)/tabSize
	if gap < 1 {
		gap = 1
	}
	return text + tabs(gap)
}

func tabs(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("\t", n)
}

// ExpandTabs replaces every tab with the spaces that reach the next tab stop.
// Columns restart after each newline.
func ExpandTabs(s string, tabSize int) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		switch r {
		case '\t':
			n := tabSize - col%tabSize
			b.WriteString(strings.Repeat(" ", n))
			col += n
		case '\n':
			b.WriteRune(r)
			col = 0
		default:
			b.WriteRune(r)
			col += model.TextWidth(string(r))
		}
	}
	return b.String()
}
