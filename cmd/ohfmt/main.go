// Command ohfmt formats openHAB .items, .things and .sitemap files.
package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/ohfmt/core/scanner"
	"github.com/FocuswithJustin/ohfmt/internal/config"
	"github.com/FocuswithJustin/ohfmt/internal/logging"
)

const version = "0.4.0"

// errCheckFailed makes main exit with status 1 without printing an error.
var errCheckFailed = errors.New("files would be reformatted")

// CLI defines the command-line interface for ohfmt.
var CLI struct {
	LogLevel  string          `name:"log-level" help:"Log level (debug, info, warn, error)" default:"warn" enum:"debug,info,warn,error"`
	LogFormat string          `name:"log-format" help:"Log format (text, json)" default:"text" enum:"text,json"`
	Config    kong.ConfigFlag `help:"Config file to load instead of the nearest .ohfmt.json"`

	Format  FormatCmd  `cmd:"" default:"withargs" help:"Format files (default command)"`
	Insert  InsertCmd  `cmd:"" help:"Print an item template"`
	Serve   ServeCmd   `cmd:"" help:"Serve formatting over a websocket for editors"`
	Cache   CacheGroup `cmd:"" help:"Format cache operations"`
	Restore RestoreCmd `cmd:"" help:"Restore files from a backup archive"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// StyleFlags are the layout settings shared by every command that formats.
// Values not given on the command line come from the config file.
type StyleFlags struct {
	Style              string `help:"Layout style: Column, Multiline or ChannelColumn" default:"Column"`
	PreserveWhitespace bool   `name:"preserve-whitespace" help:"Keep statement indentation" default:"true" negatable:""`
	NewLineAfterItem   bool   `name:"new-line-after-item" help:"Put a blank line after every statement"`
	MultilineIndent    int    `name:"multiline-indent" help:"Tab stops for Multiline continuation lines" default:"3"`
	TabSize            int    `name:"tab-size" help:"Tab width in columns" default:"4"`
	InsertSpaces       bool   `name:"insert-spaces" help:"Indent and align with spaces"`
	Beta               bool   `help:"Enable .things and .sitemap formatting" default:"true" negatable:""`
}

// Config converts the flags to a validated config.
func (f StyleFlags) Config() (config.Config, error) {
	return config.Config{
		FormatStyle:           f.Style,
		PreserveWhitespace:    f.PreserveWhitespace,
		NewLineAfterItem:      f.NewLineAfterItem,
		MultilineIndentAmount: f.MultilineIndent,
		TabSize:               f.TabSize,
		InsertSpaces:          f.InsertSpaces,
		EnableBetaFeatures:    f.Beta,
	}.Validate()
}

// parseLines parses a one-based inclusive "first:last" range. Either side
// may be omitted.
func parseLines(s string) (*scanner.LineRange, error) {
	if s == "" {
		return nil, nil
	}
	first, last, ok := strings.Cut(s, ":")
	if !ok {
		last = first
	}
	r := &scanner.LineRange{First: 0, Last: math.MaxInt}
	if first != "" {
		n, err := strconv.Atoi(first)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid --lines start %q", first)
		}
		r.First = n - 1
	}
	if last != "" {
		n, err := strconv.Atoi(last)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid --lines end %q", last)
		}
		r.Last = n - 1
	}
	if r.First > r.Last {
		return nil, fmt.Errorf("invalid --lines range %q", s)
	}
	return r, nil
}

// runContext returns a context carrying a fresh run id.
func runContext() context.Context {
	return logging.WithRunID(context.Background(), logging.NewRunID())
}

func configPaths() []string {
	if path, ok := config.Find("."); ok {
		return []string{path}
	}
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("ohfmt"),
		kong.Description("Formatter for openHAB items, things and sitemaps"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Configuration(config.Resolver, configPaths()...),
	)
	logging.InitLogger(logging.ParseLevel(CLI.LogLevel), logging.ParseFormat(CLI.LogFormat))

	err := ctx.Run(ctx)
	if errors.Is(err, errCheckFailed) {
		os.Exit(1)
	}
	ctx.FatalIfErrorf(err)
}
