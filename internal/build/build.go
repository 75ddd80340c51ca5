// Package build wires the full pipeline: parse the document, resolve
// configuration, classify headings into a page tree, and render HTML,
// feeds, and static assets into the output directory.
package build

import (
	"context"
	"log/slog"
	"time"

	"github.com/annieversary/sorg/internal/assets"
	"github.com/annieversary/sorg/internal/config"
	"github.com/annieversary/sorg/internal/export"
	"github.com/annieversary/sorg/internal/logfields"
	"github.com/annieversary/sorg/internal/orgdoc"
	"github.com/annieversary/sorg/internal/render"
	"github.com/annieversary/sorg/internal/site"
)

// Run executes a full site build.
func Run(ctx context.Context, opts config.Options, log *slog.Logger) error {
	_, err := RunWithState(ctx, opts, log)
	return err
}

// RunWithState executes a full site build and returns the final state,
// for callers that need the resolved configuration afterwards (the
// serve and watch modes).
func RunWithState(ctx context.Context, opts config.Options, log *slog.Logger) (*State, error) {
	st := &State{Options: opts, log: log}
	start := time.Now()

	err := runStages(ctx, st, []stageDef{
		{"parse_document", parseDocument},
		{"load_config", loadConfig},
		{"build_tree", buildTree},
		{"load_templates", loadTemplates},
		{"prepare_output", prepareOutput},
		{"copy_static", copyStatic},
		{"render_pages", renderPages},
	})
	if err != nil {
		return nil, err
	}

	log.Info("site built",
		logfields.Out(st.Config.BuildDir),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	return st, nil
}

// Folders creates the on-disk folder skeleton mirroring the page tree,
// for wiki-style setups that keep files next to their pages. No HTML is
// rendered.
func Folders(ctx context.Context, opts config.Options, log *slog.Logger) error {
	st := &State{Options: opts, log: log}

	err := runStages(ctx, st, []stageDef{
		{"parse_document", parseDocument},
		{"load_config", loadConfig},
		{"build_tree", buildTree},
	})
	if err != nil {
		return err
	}

	if err := site.Folders(st.Tree, st.Config.StaticDir, true); err != nil {
		return err
	}
	log.Info("folders created", logfields.Out(st.Config.StaticDir))
	return nil
}

func parseDocument(ctx context.Context, st *State) error {
	// The document's own #+todo line only takes effect after parsing,
	// so parse with defaults first and reparse when the document
	// declares custom keywords.
	doc, err := orgdoc.Parse(st.Options.Path, orgdoc.DefaultKeywords())
	if err != nil {
		return err
	}
	if custom := doc.Setting("todo"); custom != "" {
		doc, err = orgdoc.Parse(st.Options.Path, orgdoc.ParseKeywords(custom))
		if err != nil {
			return err
		}
	}
	st.Doc = doc
	return nil
}

func loadConfig(ctx context.Context, st *State) error {
	cfg, err := config.FromDocument(st.Doc, st.Options)
	if err != nil {
		return err
	}
	st.Config = cfg
	return nil
}

func buildTree(ctx context.Context, st *State) error {
	tree, err := site.Build(st.Doc, st.Config.Keywords, st.Config.Release)
	if err != nil {
		return err
	}
	st.Tree = tree
	st.Macros = export.ParseMacros(st.Doc)
	return nil
}

func loadTemplates(ctx context.Context, st *State) error {
	engine, err := render.NewEngine(st.Config.TemplatesDir, st.Tree)
	if err != nil {
		return err
	}
	st.Engine = engine
	return nil
}

func prepareOutput(ctx context.Context, st *State) error {
	return assets.PrepareBuildDir(st.Config.BuildDir)
}

func copyStatic(ctx context.Context, st *State) error {
	return assets.CopyDir(st.Config.StaticDir, st.Config.BuildDir)
}

func renderPages(ctx context.Context, st *State) error {
	r := render.New(st.Config, st.Engine, st.Doc, st.Macros, st.log)
	return r.Render(st.Tree)
}
