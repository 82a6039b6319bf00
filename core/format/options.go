package format

import (
	"github.com/FocuswithJustin/ohfmt/core/layout"
	"github.com/FocuswithJustin/ohfmt/core/model"
	"github.com/FocuswithJustin/ohfmt/core/scanner"
	"github.com/FocuswithJustin/ohfmt/core/sitemap"
)

// Options is the configuration of one formatting run.
type Options struct {
	Style                 model.Style
	PreserveWhitespace    bool
	NewLineAfterItem      bool
	MultilineIndentAmount int
	TabSize               int
	InsertSpaces          bool
	// EnableBetaFeatures turns on the .things and .sitemap formatters.
	EnableBetaFeatures bool
}

// DefaultOptions returns the settings used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Style:                 model.StyleColumn,
		PreserveWhitespace:    true,
		MultilineIndentAmount: 3,
		TabSize:               4,
		EnableBetaFeatures:    true,
	}
}

func (o Options) scanner() scanner.Options {
	return scanner.Options{
		PreserveWhitespace: o.PreserveWhitespace,
		NewLineAfterItem:   o.NewLineAfterItem,
		TabSize:            o.TabSize,
	}
}

func (o Options) layout() layout.Config {
	return layout.Config{
		NewLineAfterItem:      o.NewLineAfterItem,
		MultilineIndentAmount: o.MultilineIndentAmount,
		TabSize:               o.TabSize,
		InsertSpaces:          o.InsertSpaces,
	}
}

func (o Options) sitemap() sitemap.Options {
	return sitemap.Options{TabSize: o.TabSize, InsertSpaces: o.InsertSpaces}
}
