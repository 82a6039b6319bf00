// Package runner formats many files at once: it expands the given paths,
// formats files concurrently, and writes, checks, or diffs the results.
package runner

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/FocuswithJustin/ohfmt/core/errors"
	"github.com/FocuswithJustin/ohfmt/core/format"
	"github.com/FocuswithJustin/ohfmt/core/scanner"
	"github.com/FocuswithJustin/ohfmt/internal/backup"
	"github.com/FocuswithJustin/ohfmt/internal/cache"
	"github.com/FocuswithJustin/ohfmt/internal/diff"
	"github.com/FocuswithJustin/ohfmt/internal/logging"
)

// Mode selects what happens to a formatted file.
type Mode int

const (
	// ModeStdout prints the formatted text.
	ModeStdout Mode = iota
	// ModeWrite rewrites changed files in place.
	ModeWrite
	// ModeCheck only reports files that would change.
	ModeCheck
	// ModeDiff prints a unified diff per changed file.
	ModeDiff
)

func (m Mode) String() string {
	switch m {
	case ModeWrite:
		return "write"
	case ModeCheck:
		return "check"
	case ModeDiff:
		return "diff"
	default:
		return "stdout"
	}
}

// Options configures a run.
type Options struct {
	Mode   Mode
	Format format.Options
	// Fingerprint identifies Format in cache digests.
	Fingerprint string
	// Range limits formatting to a line range in every file.
	Range *scanner.LineRange
	// Jobs bounds the number of files formatted at once; 0 uses GOMAXPROCS.
	Jobs int
	// Cache, when set, skips files whose content is known to be formatted.
	Cache *cache.Store
	// Backup, when set, receives the original of every file rewritten.
	Backup *backup.Writer
	// Color highlights diffs.
	Color bool
	// Out receives formatted text and diffs.
	Out io.Writer
}

// Result is the outcome for one file.
type Result struct {
	Path    string
	Changed bool
	Cached  bool
	Output  string
	Diff    string
	Err     error
}

// Summary collects the results of a run in input order.
type Summary struct {
	Results []Result
}

// Changed returns the paths that were or would be changed.
func (s Summary) Changed() []string {
	var out []string
	for _, r := range s.Results {
		if r.Changed {
			out = append(out, r.Path)
		}
	}
	return out
}

// Failed returns the results with an error.
func (s Summary) Failed() []Result {
	var out []Result
	for _, r := range s.Results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// Expand resolves paths to the files a handler is registered for.
// Directories are walked recursively, skipping hidden directories. Files
// named explicitly are kept whatever their extension, so unsupported ones
// surface as errors.
func Expand(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, errors.NewIO("stat", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		var found []string
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if _, ok := format.ForPath(path); ok {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.NewIO("walk", root, err)
		}
		sort.Strings(found)
		for _, p := range found {
			add(p)
		}
	}
	return out, nil
}

// Run formats every file and then emits output in input order. Per-file
// failures are reported in the summary; the returned error is only set when
// ctx is cancelled.
func Run(ctx context.Context, files []string, opts Options) (Summary, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = formatFile(ctx, path, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{Results: results}, err
	}

	summary := Summary{Results: results}
	return summary, emit(summary, opts)
}

func formatFile(ctx context.Context, path string, opts Options) Result {
	start := time.Now()
	res := Result{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		res.Err = errors.NewIO("stat", path, err)
		return res
	}
	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = errors.NewIO("read", path, err)
		return res
	}
	original := string(data)

	digest := ""
	if opts.Cache != nil && opts.Range == nil {
		digest = cache.Digest(data, opts.Fingerprint)
		if fresh, err := opts.Cache.Fresh(path, digest); err == nil && fresh {
			res.Cached, res.Output = true, original
			logging.FileSkipped(ctx, path, "cached")
			return res
		}
	}

	formatted, err := format.Text(path, original, opts.Range, opts.Format)
	if err != nil {
		res.Err = err
		return res
	}
	res.Output = formatted
	res.Changed = formatted != original

	if res.Changed {
		switch opts.Mode {
		case ModeWrite:
			if opts.Backup != nil {
				if err := opts.Backup.Add(path, data, info.Mode()); err != nil {
					res.Err = err
					return res
				}
			}
			if err := writeAtomic(path, []byte(formatted), info.Mode()); err != nil {
				res.Err = err
				return res
			}
		case ModeDiff:
			res.Diff = diff.Unified(path+".orig", path, original, formatted)
		}
	}

	if opts.Cache != nil && opts.Range == nil && (!res.Changed || opts.Mode == ModeWrite) {
		if err := opts.Cache.Put(path, cache.Digest([]byte(formatted), opts.Fingerprint)); err != nil {
			logging.WarnContext(ctx, "cache update failed", "path", path, "error", err)
		}
	}

	edits := 0
	if res.Changed {
		edits = 1
	}
	logging.FileFormatted(ctx, path, edits, time.Since(start), "mode", opts.Mode.String())
	return res
}

func emit(s Summary, opts Options) error {
	if opts.Out == nil {
		return nil
	}
	for _, r := range s.Results {
		if r.Err != nil {
			continue
		}
		var err error
		switch opts.Mode {
		case ModeStdout:
			_, err = io.WriteString(opts.Out, r.Output)
		case ModeDiff:
			if r.Diff != "" {
				err = diff.Write(opts.Out, r.Diff, opts.Color)
			}
		}
		if err != nil {
			return errors.NewIO("write output", "", err)
		}
	}
	return nil
}

// writeAtomic replaces path through a temporary file in the same directory.
func writeAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".ohfmt-*")
	if err != nil {
		return errors.NewIO("create temp file", dir, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.NewIO("write", tmpPath, err)
	}
	if err := tmp.Chmod(mode.Perm()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.NewIO("chmod", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.NewIO("close", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.NewIO("rename", path, err)
	}
	return nil
}
