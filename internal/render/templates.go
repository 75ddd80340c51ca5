package render

import (
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/annieversary/sorg/internal/errors"
	"github.com/annieversary/sorg/internal/site"
)

// Engine loads the template directory once per build and resolves the
// template for each page.
type Engine struct {
	templates *template.Template
}

// NewEngine parses every .html file under dir, nested files included.
// Templates are named by their slash-separated path relative to dir, so
// a page at /notes/recipes/ can be themed by notes/recipes.html. The
// pages function filters the site's pages by URL path prefix, for
// hand-built listings outside the regular child iteration.
func NewEngine(dir string, tree *site.Page) (*Engine, error) {
	funcs := template.FuncMap{
		"pages": func(prefix string) []PageRef {
			return collectRefs(tree, prefix)
		},
	}

	root := template.New("").Funcs(funcs)
	found := false
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".html") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if _, err := root.New(filepath.ToSlash(rel)).Parse(string(data)); err != nil {
			return fmt.Errorf("parsing %s: %w", rel, err)
		}
		found = true
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.CategoryTemplate, errors.SeverityFatal, "loading templates from %s", dir)
	}
	if !found {
		return nil, errors.Newf(errors.CategoryTemplate, errors.SeverityFatal, "no templates found in %s", dir)
	}
	return &Engine{templates: root}, nil
}

// Resolve picks the template for a page: an explicit template property
// wins, then a template named after the page's URL path, then the
// default_index.html / default.html fallbacks.
func (e *Engine) Resolve(p *site.Page) (*template.Template, error) {
	if name := p.Info.Properties["template"]; name != "" {
		if t := e.templates.Lookup(name); t != nil {
			return t, nil
		}
		return nil, errors.Newf(errors.CategoryTemplate, errors.SeverityFatal,
			"template %q requested by page %q does not exist", name, p.Info.Title)
	}

	name := strings.Trim(p.Path, "/")
	if name == "" {
		name = "index"
	}
	if t := e.templates.Lookup(name + ".html"); t != nil {
		return t, nil
	}

	if p.Kind == site.KindIndex {
		if t := e.templates.Lookup("default_index.html"); t != nil {
			return t, nil
		}
	}
	if t := e.templates.Lookup("default.html"); t != nil {
		return t, nil
	}
	return nil, errors.Newf(errors.CategoryTemplate, errors.SeverityFatal,
		"no template for page %q and no default.html fallback", p.Info.Title)
}

// collectRefs gathers every page whose URL path starts with prefix,
// sorted by path for stable template output.
func collectRefs(tree *site.Page, prefix string) []PageRef {
	var out []PageRef
	var walk func(p *site.Page)
	walk = func(p *site.Page) {
		if strings.HasPrefix(p.Path, prefix) {
			out = append(out, newPageRef(p))
		}
		for _, child := range p.SortedChildren() {
			walk(child)
		}
	}
	if tree != nil {
		walk(tree)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
