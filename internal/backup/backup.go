// Package backup keeps xz-compressed tar archives of files before they are
// rewritten in place, and restores them on request.
package backup

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/ohfmt/core/errors"
)

// Suffix is the file suffix of backup archives.
const Suffix = ".tar.xz"

// DefaultDir is the backup directory under the user cache directory.
func DefaultDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", errors.NewIO("locate cache directory", "", err)
	}
	return filepath.Join(dir, "ohfmt", "backups"), nil
}

// Writer adds original file contents to one archive. It is safe for
// concurrent use.
type Writer struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	xw      *xz.Writer
	tw      *tar.Writer
	entries int
}

// Create starts a new archive in dir named after the current time and runID.
func Create(dir, runID string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.NewIO("create backup directory", dir, err)
	}
	name := fmt.Sprintf("ohfmt-%s", time.Now().UTC().Format("20060102T150405.000000000Z"))
	if runID != "" {
		name += "-" + runID[:min(len(runID), 8)]
	}
	path := filepath.Join(dir, name+Suffix)

	f, err := os.Create(path)
	if err != nil {
		return nil, errors.NewIO("create backup", path, err)
	}
	xw, err := xz.NewWriter(f)
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, errors.NewIO("create xz writer", path, err)
	}
	return &Writer{path: path, file: f, xw: xw, tw: tar.NewWriter(xw)}, nil
}

// Path returns the archive file.
func (w *Writer) Path() string {
	return w.path
}

// Add stores content as the original of the file at path.
func (w *Writer) Add(path string, content []byte, mode os.FileMode) error {
	name, err := entryName(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	header := &tar.Header{
		Name:     name,
		Mode:     int64(mode.Perm()),
		Size:     int64(len(content)),
		ModTime:  time.Now(),
		Typeflag: tar.TypeReg,
	}
	if err := w.tw.WriteHeader(header); err != nil {
		return errors.NewIO("write backup header", path, err)
	}
	if _, err := w.tw.Write(content); err != nil {
		return errors.NewIO("write backup", path, err)
	}
	w.entries++
	return nil
}

// Len returns the number of files added.
func (w *Writer) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.entries
}

// Close finishes the archive. An archive without entries is removed.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var errs []error
	for _, c := range []io.Closer{w.tw, w.xw, w.file} {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if w.entries == 0 {
		os.Remove(w.path)
	}
	if len(errs) > 0 {
		return errors.NewIO("close backup", w.path, errs[0])
	}
	return nil
}

// entryName turns an absolute file path into a relative archive name.
func entryName(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.NewIO("resolve", path, err)
	}
	return strings.TrimPrefix(filepath.ToSlash(abs), "/"), nil
}

// targetPath is the inverse of entryName for the host running the restore.
func targetPath(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if name == "" || filepath.IsAbs(name) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.NewValidation("backup entry", fmt.Sprintf("unsafe path %q", name))
	}
	return string(filepath.Separator) + clean, nil
}

// Entry is one file stored in an archive.
type Entry struct {
	Path string
	Size int64
	Mode os.FileMode
}

// visit calls fn for every regular file in the archive at path.
func visit(path string, fn func(*tar.Header, io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.NewIO("open backup", path, err)
	}
	defer f.Close()

	xr, err := xz.NewReader(f)
	if err != nil {
		return errors.NewParse("xz", path, err.Error())
	}
	tr := tar.NewReader(xr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.NewParse("tar", path, err.Error())
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		if err := fn(header, tr); err != nil {
			return err
		}
	}
}

// List returns the files stored in the archive at path.
func List(path string) ([]Entry, error) {
	var entries []Entry
	err := visit(path, func(h *tar.Header, _ io.Reader) error {
		target, err := targetPath(h.Name)
		if err != nil {
			return err
		}
		entries = append(entries, Entry{Path: target, Size: h.Size, Mode: os.FileMode(h.Mode).Perm()})
		return nil
	})
	return entries, err
}

// Restore writes every file in the archive back to where it came from and
// returns the restored paths.
func Restore(path string) ([]string, error) {
	var restored []string
	err := visit(path, func(h *tar.Header, r io.Reader) error {
		target, err := targetPath(h.Name)
		if err != nil {
			return err
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return errors.NewIO("read backup entry", h.Name, err)
		}
		if err := os.WriteFile(target, data, os.FileMode(h.Mode).Perm()); err != nil {
			return errors.NewIO("restore", target, err)
		}
		restored = append(restored, target)
		return nil
	})
	return restored, err
}

// Archives lists the backup archives in dir, newest first.
func Archives(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "ohfmt-*"+Suffix))
	if err != nil {
		return nil, errors.NewIO("list backups", dir, err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))
	return matches, nil
}

// Latest returns the newest archive in dir.
func Latest(dir string) (string, error) {
	archives, err := Archives(dir)
	if err != nil {
		return "", err
	}
	if len(archives) == 0 {
		return "", errors.NewNotFound("backup", dir)
	}
	return archives[0], nil
}
