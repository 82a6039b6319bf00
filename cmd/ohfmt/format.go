package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/FocuswithJustin/ohfmt/core/format"
	"github.com/FocuswithJustin/ohfmt/core/scanner"
	"github.com/FocuswithJustin/ohfmt/internal/backup"
	"github.com/FocuswithJustin/ohfmt/internal/cache"
	"github.com/FocuswithJustin/ohfmt/internal/diff"
	"github.com/FocuswithJustin/ohfmt/internal/logging"
	"github.com/FocuswithJustin/ohfmt/internal/runner"
)

// FormatCmd formats files or standard input.
type FormatCmd struct {
	StyleFlags `embed:""`

	Write     bool     `short:"w" help:"Rewrite files in place" xor:"mode"`
	Check     bool     `help:"Exit with status 1 if any file would change" xor:"mode"`
	Diff      bool     `short:"d" help:"Print a unified diff for every changed file" xor:"mode"`
	Lines     string   `help:"Only format lines first:last (one-based, inclusive)"`
	Cache     bool     `help:"Skip files whose content is known to be formatted"`
	CacheFile string   `name:"cache-file" help:"Cache database (default: user cache directory)" type:"path"`
	Backup    bool     `help:"Keep an xz backup of files rewritten with --write" default:"true" negatable:""`
	BackupDir string   `name:"backup-dir" help:"Backup directory (default: user cache directory)" type:"path"`
	Jobs      int      `short:"j" help:"Files formatted at once (default: number of CPUs)"`
	Color     string   `help:"Color diffs and status lines (auto, always, never)" default:"auto" enum:"auto,always,never"`
	StdinPath string   `name:"stdin-path" help:"File name used to pick the formatter for standard input" default:"stdin.items"`
	Paths     []string `arg:"" optional:"" help:"Files or directories; standard input when empty" type:"path"`
}

func (c *FormatCmd) Run(ctx *kong.Context) error {
	return c.run(os.Stdin, os.Stdout, os.Stderr)
}

func (c *FormatCmd) mode() runner.Mode {
	switch {
	case c.Write:
		return runner.ModeWrite
	case c.Check:
		return runner.ModeCheck
	case c.Diff:
		return runner.ModeDiff
	}
	return runner.ModeStdout
}

func (c *FormatCmd) useColor(w io.Writer) bool {
	switch c.Color {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (c *FormatCmd) run(stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := c.StyleFlags.Config()
	if err != nil {
		return err
	}
	r, err := parseLines(c.Lines)
	if err != nil {
		return err
	}
	ctx := runContext()

	if len(c.Paths) == 0 {
		return c.formatStdin(stdin, stdout, cfg.Options(), r)
	}

	files, err := runner.Expand(c.Paths)
	if err != nil {
		return err
	}
	opts := runner.Options{
		Mode:        c.mode(),
		Format:      cfg.Options(),
		Fingerprint: cfg.Fingerprint(),
		Range:       r,
		Jobs:        c.Jobs,
		Color:       c.useColor(stdout),
		Out:         stdout,
	}

	if c.Cache {
		store, err := c.openCache()
		if err != nil {
			return err
		}
		defer store.Close()
		opts.Cache = store
	}
	if c.Write && c.Backup {
		dir, err := c.backupDir()
		if err != nil {
			return err
		}
		bw, err := backup.Create(dir, logging.GetRunID(ctx))
		if err != nil {
			return err
		}
		defer func() {
			if err := bw.Close(); err != nil {
				logging.Warn("backup close failed", "error", err)
			} else if bw.Len() > 0 {
				logging.Info("backup written", "path", bw.Path(), "files", bw.Len())
			}
		}()
		opts.Backup = bw
	}

	summary, err := runner.Run(ctx, files, opts)
	if err != nil {
		return err
	}
	return c.report(summary, stderr)
}

func (c *FormatCmd) formatStdin(stdin io.Reader, stdout io.Writer, opts format.Options, r *scanner.LineRange) error {
	data, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("failed to read standard input: %w", err)
	}
	formatted, err := format.Text(c.StdinPath, string(data), r, opts)
	if err != nil {
		return err
	}
	switch {
	case c.Check:
		if formatted != string(data) {
			return errCheckFailed
		}
		return nil
	case c.Diff:
		return diff.Write(stdout, diff.Unified(c.StdinPath, c.StdinPath, string(data), formatted), c.useColor(stdout))
	}
	_, err = io.WriteString(stdout, formatted)
	return err
}

// report prints per-file status lines and decides the exit status.
func (c *FormatCmd) report(s runner.Summary, stderr io.Writer) error {
	red, yellow := color.New(color.FgRed), color.New(color.FgYellow)
	if c.useColor(stderr) {
		red.EnableColor()
		yellow.EnableColor()
	} else {
		red.DisableColor()
		yellow.DisableColor()
	}

	for _, r := range s.Failed() {
		red.Fprintf(stderr, "error: %v\n", r.Err)
	}
	if c.Check {
		for _, path := range s.Changed() {
			yellow.Fprintf(stderr, "would reformat %s\n", path)
		}
	}

	if n := len(s.Failed()); n > 0 {
		return fmt.Errorf("%d of %d files failed", n, len(s.Results))
	}
	if c.Check && len(s.Changed()) > 0 {
		return errCheckFailed
	}
	return nil
}

func (c *FormatCmd) openCache() (*cache.Store, error) {
	path := c.CacheFile
	if path == "" {
		var err error
		if path, err = cache.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return cache.Open(path)
}

func (c *FormatCmd) backupDir() (string, error) {
	if c.BackupDir != "" {
		return filepath.Clean(c.BackupDir), nil
	}
	return backup.DefaultDir()
}
