package format

import (
	"github.com/FocuswithJustin/ohfmt/core/scanner"
	"github.com/FocuswithJustin/ohfmt/core/sitemap"
)

// sitemapHandler reflows whole .sitemap files. A line range is ignored.
type sitemapHandler struct{}

func init() {
	Register(sitemapHandler{})
}

func (sitemapHandler) Name() string         { return "sitemap" }
func (sitemapHandler) Extensions() []string { return []string{".sitemap"} }
func (sitemapHandler) Beta() bool           { return true }

func (sitemapHandler) Format(doc *Document, _ *scanner.LineRange, opts Options) ([]Edit, error) {
	text, err := sitemap.Reflow(doc.Text(), opts.sitemap())
	if err != nil {
		return nil, err
	}
	return Replace(doc, text), nil
}
