package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/ohfmt/core/format"
	"github.com/FocuswithJustin/ohfmt/core/sqlite"
	"github.com/FocuswithJustin/ohfmt/internal/backup"
	"github.com/FocuswithJustin/ohfmt/internal/cache"
	"github.com/FocuswithJustin/ohfmt/internal/server"
)

// InsertCmd prints an item template in the configured layout.
type InsertCmd struct {
	StyleFlags `embed:""`

	Kind string `arg:"" optional:"" default:"generic" help:"Template kind"`
	List bool   `help:"List the template kinds"`
}

func (c *InsertCmd) Run(ctx *kong.Context) error {
	return c.run(os.Stdout)
}

func (c *InsertCmd) run(w io.Writer) error {
	if c.List {
		_, err := fmt.Fprintln(w, strings.Join(format.Templates(), "\n"))
		return err
	}
	cfg, err := c.StyleFlags.Config()
	if err != nil {
		return err
	}
	text, err := format.Template(c.Kind, cfg.Options())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, text)
	return err
}

// ServeCmd runs the websocket server until interrupted.
type ServeCmd struct {
	StyleFlags `embed:""`

	Addr       string   `help:"Listen address" default:"127.0.0.1:8765"`
	Origins    []string `help:"Allowed browser origins; '*' allows all (default: localhost and editor webviews)"`
	NoDiscover bool     `name:"no-discover" help:"Ignore .ohfmt.json files next to request paths"`
}

func (c *ServeCmd) Run(ctx *kong.Context) error {
	cfg, err := c.StyleFlags.Config()
	if err != nil {
		return err
	}
	sigCtx, stop := signal.NotifyContext(runContext(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Config{
		Addr:     c.Addr,
		Defaults: cfg,
		Discover: !c.NoDiscover,
		Origins:  server.OriginPolicy{Allowed: c.Origins},
		Version:  version,
	})
	return srv.ListenAndServe(sigCtx)
}

// CacheGroup groups cache subcommands.
type CacheGroup struct {
	Clear CacheClearCmd `cmd:"" help:"Forget every cached file"`
	Path  CachePathCmd  `cmd:"" help:"Print the cache database path"`
}

// CacheClearCmd empties the format cache.
type CacheClearCmd struct {
	File string `name:"cache-file" help:"Cache database (default: user cache directory)" type:"path"`
}

func (c *CacheClearCmd) Run(ctx *kong.Context) error {
	return c.run(os.Stdout)
}

func (c *CacheClearCmd) run(w io.Writer) error {
	path, err := cachePath(c.File)
	if err != nil {
		return err
	}
	store, err := cache.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Clear()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Cleared %d cached files from %s\n", n, store.Path())
	return nil
}

// CachePathCmd prints where the cache lives.
type CachePathCmd struct{}

func (c *CachePathCmd) Run(ctx *kong.Context) error {
	path, err := cachePath("")
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func cachePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return cache.DefaultPath()
}

// RestoreCmd writes files back from a backup archive.
type RestoreCmd struct {
	Archive   string `arg:"" optional:"" help:"Backup archive (default: the latest one)" type:"path"`
	BackupDir string `name:"backup-dir" help:"Backup directory (default: user cache directory)" type:"path"`
	List      bool   `short:"l" help:"List the archive instead of restoring it"`
}

func (c *RestoreCmd) Run(ctx *kong.Context) error {
	return c.run(os.Stdout)
}

func (c *RestoreCmd) run(w io.Writer) error {
	archive := c.Archive
	if archive == "" {
		dir := c.BackupDir
		if dir == "" {
			var err error
			if dir, err = backup.DefaultDir(); err != nil {
				return err
			}
		}
		var err error
		if archive, err = backup.Latest(dir); err != nil {
			return err
		}
	}

	if c.List {
		entries, err := backup.List(archive)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", e.Mode, e.Size, e.Path)
		}
		return tw.Flush()
	}

	paths, err := backup.Restore(archive)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintf(w, "restored %s\n", p)
	}
	fmt.Fprintf(w, "Restored %d files from %s\n", len(paths), archive)
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(ctx *kong.Context) error {
	printVersion(os.Stdout)
	return nil
}

func printVersion(w io.Writer) {
	info := sqlite.GetInfo()
	fmt.Fprintf(w, "ohfmt version %s\n", version)
	var exts []string
	for _, h := range format.Handlers() {
		exts = append(exts, h.Extensions()...)
	}
	fmt.Fprintf(w, "  formats: %s\n", strings.Join(exts, " "))
	fmt.Fprintf(w, "  sqlite:  %s (%s)\n", info.DriverName, info.Package)
}
