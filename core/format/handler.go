// Package format drives formatting runs: it picks a formatter by file
// extension, scans and renders records, and turns the result into edits.
package format

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/FocuswithJustin/ohfmt/core/errors"
	"github.com/FocuswithJustin/ohfmt/core/scanner"
)

// Handler formats one kind of openHAB file.
type Handler interface {
	// Name identifies the handler, e.g. "items".
	Name() string
	// Extensions lists the file suffixes the handler claims.
	Extensions() []string
	// Beta reports whether the handler needs EnableBetaFeatures.
	Beta() bool
	// Format computes the edits for doc, limited to r when r is not nil.
	Format(doc *Document, r *scanner.LineRange, opts Options) ([]Edit, error)
}

// registry maps a lower-case extension to its handler.
var registry = make(map[string]Handler)

// Register makes h available for its extensions.
func Register(h Handler) {
	for _, ext := range h.Extensions() {
		registry[strings.ToLower(ext)] = h
	}
}

// Lookup returns the handler registered under name.
func Lookup(name string) (Handler, bool) {
	for _, h := range registry {
		if h.Name() == name {
			return h, true
		}
	}
	return nil, false
}

// ForPath returns the handler for path by extension.
func ForPath(path string) (Handler, bool) {
	h, ok := registry[strings.ToLower(filepath.Ext(path))]
	return h, ok
}

// Handlers lists the registered handlers sorted by name.
func Handlers() []Handler {
	seen := make(map[string]bool)
	var out []Handler
	for _, h := range registry {
		if !seen[h.Name()] {
			seen[h.Name()] = true
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Enabled reports whether h may run under opts.
func Enabled(h Handler, opts Options) bool {
	return !h.Beta() || opts.EnableBetaFeatures
}

// File computes the edits for a document named path. Unknown extensions and
// disabled beta formatters yield an UnsupportedError.
func File(path string, doc *Document, r *scanner.LineRange, opts Options) ([]Edit, error) {
	if doc == nil {
		return nil, errors.ErrNoDocument
	}
	h, ok := ForPath(path)
	if !ok {
		return nil, errors.NewUnsupported("file type", filepath.Ext(path))
	}
	if !Enabled(h, opts) {
		return nil, errors.NewUnsupported(h.Name()+" formatting", "beta features are disabled")
	}
	return h.Format(doc, r, opts)
}

// Cleaner is implemented by handlers that tidy a document before a
// whole-file run.
type Cleaner interface {
	Clean(doc *Document) *Document
}

// Text formats a document named path, or only the lines in r, and returns
// the new text. Whole-file runs are cleaned first.
func Text(path, text string, r *scanner.LineRange, opts Options) (string, error) {
	doc := NewDocument(text)
	if h, ok := ForPath(path); ok && r == nil {
		if c, ok := h.(Cleaner); ok && Enabled(h, opts) {
			doc = c.Clean(doc)
		}
	}
	edits, err := File(path, doc, r, opts)
	if err != nil {
		return "", err
	}
	return Apply(doc, edits).Text(), nil
}

// Replace returns a single edit turning doc into text, or nil when they are
// equal.
func Replace(doc *Document, text string) []Edit {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.Join(doc.Lines, "\n") == text {
		return nil
	}
	return []Edit{{Span: doc.Range(), Text: text}}
}
