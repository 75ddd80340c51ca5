// Package render executes templates against the page tree and writes
// the HTML and feed files of the site.
package render

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/annieversary/sorg/internal/config"
	"github.com/annieversary/sorg/internal/errors"
	"github.com/annieversary/sorg/internal/export"
	"github.com/annieversary/sorg/internal/logfields"
	"github.com/annieversary/sorg/internal/orgdoc"
	"github.com/annieversary/sorg/internal/site"
)

// FeedFile is written next to every index page's index.html.
const FeedFile = "rss.xml"

// Renderer writes a page tree to the build directory.
type Renderer struct {
	cfg        *config.Config
	engine     *Engine
	exportOpts export.Options
	log        *slog.Logger

	// assetVersion changes on every build so templates can bust
	// asset caches with ?v={{.asset_v}}.
	assetVersion string
}

// New prepares a renderer for one build.
func New(cfg *config.Config, engine *Engine, doc *orgdoc.Document, macros *export.Macros, log *slog.Logger) *Renderer {
	return &Renderer{
		cfg:    cfg,
		engine: engine,
		exportOpts: export.Options{
			Doc:            doc,
			BaseURL:        cfg.URL,
			StaticName:     cfg.StaticName,
			HighlightStyle: cfg.HighlightStyle,
			Macros:         macros,
		},
		log:          log,
		assetVersion: uuid.NewString(),
	}
}

// Render writes the whole tree rooted at p.
func (r *Renderer) Render(p *site.Page) error {
	_, err := r.renderPage(p)
	return err
}

// renderPage writes one page and recurses into its children. It
// returns the page's exported content so index pages can reuse it for
// their feed items.
func (r *Renderer) renderPage(p *site.Page) (string, error) {
	content, err := r.exportPage(p)
	if err != nil {
		return "", err
	}

	tmpl, err := r.engine.Resolve(p)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, r.context(p, content)); err != nil {
		return "", errors.Wrapf(err, errors.CategoryTemplate, errors.SeverityFatal,
			"rendering page %q with template %s", p.Info.Title, tmpl.Name())
	}

	html := buf.Bytes()
	if r.cfg.HotReload {
		html = append(html, []byte(reloadScript(r.cfg.ReloadPort))...)
	}

	outDir := r.outDir(p)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", errors.Wrapf(err, errors.CategoryFileSystem, errors.SeverityFatal, "creating %s", outDir)
	}
	outFile := filepath.Join(outDir, "index.html")
	if err := os.WriteFile(outFile, html, 0o644); err != nil {
		return "", errors.Wrapf(err, errors.CategoryFileSystem, errors.SeverityFatal, "writing %s", outFile)
	}
	if r.cfg.Verbose {
		r.log.Debug("wrote page",
			logfields.Page(p.Info.Title),
			logfields.Path(p.Path),
			logfields.Template(tmpl.Name()),
			logfields.Out(outFile))
	}

	if p.Kind != site.KindIndex {
		return content.html, nil
	}

	items := make([]feedItem, 0, len(p.Children))
	for _, child := range p.SortedChildren() {
		childHTML, err := r.renderPage(child)
		if err != nil {
			return "", err
		}
		items = append(items, feedItem{page: child, content: childHTML})
	}

	feed, err := r.renderFeed(p, items)
	if err != nil {
		return "", err
	}
	feedFile := filepath.Join(outDir, FeedFile)
	if err := os.WriteFile(feedFile, feed, 0o644); err != nil {
		return "", errors.Wrapf(err, errors.CategoryFileSystem, errors.SeverityFatal, "writing %s", feedFile)
	}
	if r.cfg.Verbose {
		r.log.Debug("wrote feed", logfields.Path(p.Path), logfields.Out(feedFile))
	}
	return content.html, nil
}

// outDir maps a page's URL path onto the build directory.
func (r *Renderer) outDir(p *site.Page) string {
	rel := filepath.FromSlash(strings.Trim(p.Path, "/"))
	return filepath.Join(r.cfg.BuildDir, rel)
}

// reloadScript is appended to every page in watch mode. It reloads the
// browser whenever the websocket hub broadcasts a rebuild.
func reloadScript(port int) string {
	return fmt.Sprintf("<script>(() => { const socket = new WebSocket('ws://localhost:%d', 'sorg'); socket.addEventListener('message', () => {location.reload();}); })();</script>", port)
}
