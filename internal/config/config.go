// Package config loads formatter settings from .ohfmt.json files and turns
// them into format options.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/ohfmt/core/errors"
	"github.com/FocuswithJustin/ohfmt/core/format"
	"github.com/FocuswithJustin/ohfmt/core/model"
	"github.com/FocuswithJustin/ohfmt/internal/logging"
)

// FileName is the name of the config file looked up by Find.
const FileName = ".ohfmt.json"

// Config holds the user settings. JSON keys follow the editor settings of
// the openHAB formatter.
type Config struct {
	FormatStyle           string `json:"formatStyle"`
	PreserveWhitespace    bool   `json:"preserveWhitespace"`
	NewLineAfterItem      bool   `json:"newLineAfterItem"`
	MultilineIndentAmount int    `json:"multilineIndentAmount"`
	TabSize               int    `json:"tabSize"`
	InsertSpaces          bool   `json:"insertSpaces"`
	EnableBetaFeatures    bool   `json:"enableBetaFeatures"`
}

// Default returns the settings used when no file is found.
func Default() Config {
	return Config{
		FormatStyle:           model.StyleColumn.String(),
		PreserveWhitespace:    true,
		MultilineIndentAmount: 3,
		TabSize:               4,
		EnableBetaFeatures:    true,
	}
}

// Validate checks c and returns a normalized copy. An unknown style is not
// an error: it falls back to Column with a warning.
func (c Config) Validate() (Config, error) {
	if c.TabSize < 1 || c.TabSize > 16 {
		return c, errors.NewValidation("tabSize", fmt.Sprintf("%d is outside 1..16", c.TabSize))
	}
	if c.MultilineIndentAmount < 0 {
		return c, errors.NewValidation("multilineIndentAmount", "must not be negative")
	}
	style, err := model.ParseStyle(c.FormatStyle)
	switch {
	case err != nil:
		logging.StyleUnknown(c.FormatStyle, model.StyleColumn.String())
		style = model.StyleColumn
	case style == model.StyleDefault:
		style = model.StyleColumn
	}
	c.FormatStyle = style.String()
	return c, nil
}

// Options converts c to format options. c should be validated first; an
// unparsable style still yields Column.
func (c Config) Options() format.Options {
	style, err := model.ParseStyle(c.FormatStyle)
	if err != nil || style == model.StyleDefault {
		style = model.StyleColumn
	}
	return format.Options{
		Style:                 style,
		PreserveWhitespace:    c.PreserveWhitespace,
		NewLineAfterItem:      c.NewLineAfterItem,
		MultilineIndentAmount: c.MultilineIndentAmount,
		TabSize:               c.TabSize,
		InsertSpaces:          c.InsertSpaces,
		EnableBetaFeatures:    c.EnableBetaFeatures,
	}
}

// Fingerprint is a stable encoding of every setting that changes output.
func (c Config) Fingerprint() string {
	return fmt.Sprintf("style=%s;ws=%t;nl=%t;indent=%d;tab=%d;spaces=%t;beta=%t",
		c.FormatStyle, c.PreserveWhitespace, c.NewLineAfterItem,
		c.MultilineIndentAmount, c.TabSize, c.InsertSpaces, c.EnableBetaFeatures)
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.NewIO("read", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.NewParse("json", path, err.Error())
	}
	return cfg, nil
}

// Find walks from dir up to the filesystem root and returns the first
// config file found.
func Find(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		path := filepath.Join(dir, FileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Discover loads and validates the config file nearest to dir, or the
// defaults when there is none. It also returns the file used.
func Discover(dir string) (Config, string, error) {
	path, ok := Find(dir)
	if !ok {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return cfg, path, err
	}
	cfg, err = cfg.Validate()
	return cfg, path, err
}

// flagKeys maps CLI flag names to config file keys.
var flagKeys = map[string]string{
	"style":               "formatStyle",
	"preserve-whitespace": "preserveWhitespace",
	"new-line-after-item": "newLineAfterItem",
	"multiline-indent":    "multilineIndentAmount",
	"tab-size":            "tabSize",
	"insert-spaces":       "insertSpaces",
	"beta":                "enableBetaFeatures",
}

// Resolver is a kong.ConfigurationLoader reading a config file, so values
// from the file sit between flag defaults and flags given on the command
// line.
func Resolver(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := json.NewDecoder(r).Decode(&values); err != nil && err != io.EOF {
		return nil, errors.NewParse("json", FileName, err.Error())
	}
	var f kong.ResolverFunc = func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		key, ok := flagKeys[flag.Name]
		if !ok {
			return nil, nil
		}
		v, ok := values[key]
		if !ok || v == nil {
			return nil, nil
		}
		return strings.TrimSpace(fmt.Sprint(v)), nil
	}
	return f, nil
}
