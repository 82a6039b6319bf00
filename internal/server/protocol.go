package server

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/FocuswithJustin/ohfmt/core/errors"
	"github.com/FocuswithJustin/ohfmt/core/format"
	"github.com/FocuswithJustin/ohfmt/core/scanner"
	"github.com/FocuswithJustin/ohfmt/internal/config"
	"github.com/FocuswithJustin/ohfmt/internal/logging"
)

// Request asks for the edits that format one document.
type Request struct {
	// ID is echoed in the response.
	ID string `json:"id,omitempty"`
	// Path selects the formatter by extension. When it is absolute, the
	// nearest .ohfmt.json supplies the base settings.
	Path string `json:"path"`
	// Lines is the document without line terminators.
	Lines []string `json:"lines"`
	// Range limits formatting to the zero-based lines first..last.
	Range *LineRange `json:"range,omitempty"`
	// Options overrides individual settings, using .ohfmt.json keys.
	Options json.RawMessage `json:"options,omitempty"`
	// Whole asks for the clean step a whole-file format runs first. It is
	// ignored when Range is set.
	Whole bool `json:"whole,omitempty"`
}

// LineRange is an inclusive zero-based line range.
type LineRange struct {
	First int `json:"first"`
	Last  int `json:"last"`
}

// Response carries the edits for a request, or an error message.
type Response struct {
	ID    string        `json:"id,omitempty"`
	Edits []format.Edit `json:"edits"`
	// Text is the document with the edits applied.
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

// handle formats the document of req.
func (s *Server) handle(ctx context.Context, req Request) Response {
	start := time.Now()
	resp := Response{ID: req.ID, Edits: []format.Edit{}}
	fail := func(err error) Response {
		resp.Error, resp.Kind = err.Error(), errorKind(err)
		logging.WarnContext(ctx, "format request failed", "path", req.Path, "error", err)
		return resp
	}

	if req.Lines == nil {
		return fail(errors.ErrNoDocument)
	}
	cfg, err := s.options(req)
	if err != nil {
		return fail(err)
	}
	opts := cfg.Options()

	doc := &format.Document{Lines: req.Lines}
	var r *scanner.LineRange
	if req.Range != nil {
		if req.Range.First > req.Range.Last || req.Range.First < 0 {
			return fail(errors.NewValidation("range", "first must be between 0 and last"))
		}
		r = &scanner.LineRange{First: req.Range.First, Last: req.Range.Last}
	}

	if r == nil && req.Whole {
		text, err := format.Text(req.Path, strings.Join(req.Lines, "\n"), nil, opts)
		if err != nil {
			return fail(err)
		}
		resp.Edits = append(resp.Edits, format.Replace(doc, text)...)
		resp.Text = text
	} else {
		edits, err := format.File(req.Path, doc, r, opts)
		if err != nil {
			return fail(err)
		}
		if edits != nil {
			resp.Edits = edits
		}
		resp.Text = format.Apply(doc, edits).Text()
	}

	logging.FileFormatted(ctx, req.Path, len(resp.Edits), time.Since(start), "source", "websocket")
	return resp
}

// options resolves the settings for req: server defaults, then the nearest
// config file, then the overrides sent with the request.
func (s *Server) options(req Request) (config.Config, error) {
	cfg := s.cfg.Defaults
	if filepath.IsAbs(req.Path) && s.cfg.Discover {
		dir := filepath.Dir(req.Path)
		found, err := s.configs.GetOrLoad(dir, func() (config.Config, error) {
			c, _, err := config.Discover(dir)
			return c, err
		})
		if err != nil {
			return cfg, err
		}
		cfg = found
	}
	if len(req.Options) > 0 {
		if err := json.Unmarshal(req.Options, &cfg); err != nil {
			return cfg, errors.NewParse("options", req.Path, err.Error())
		}
	}
	return cfg.Validate()
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, errors.ErrUnsupported):
		return "unsupported"
	case errors.Is(err, errors.ErrNoDocument):
		return "no_document"
	case errors.Is(err, errors.ErrInvalidInput):
		return "invalid"
	}
	return "internal"
}
