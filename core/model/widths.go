package model

import (
	"github.com/mattn/go-runewidth"
)

// Widths maps a field kind to the largest display width observed for that
// kind within one alignment batch. A missing or zero entry means the field
// never occurred in the batch.
type Widths map[FieldKind]int

// NewWidths returns an empty width table.
func NewWidths() Widths {
	return make(Widths)
}

// Observe records text as an occurrence of kind.
func (w Widths) Observe(kind FieldKind, text string) {
	if n := TextWidth(text); n > w[kind] {
		w[kind] = n
	}
}

// Get returns the column width of kind.
func (w Widths) Get(kind FieldKind) int {
	return w[kind]
}

// Clone returns an independent copy.
func (w Widths) Clone() Widths {
	c := make(Widths, len(w))
	for k, v := range w {
		c[k] = v
	}
	return c
}

// TextWidth is the number of terminal cells text occupies.
func TextWidth(text string) int {
	return runewidth.StringWidth(text)
}
