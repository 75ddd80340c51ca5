package render

import (
	"html/template"
	"path/filepath"

	"github.com/niklasfasching/go-org/org"

	"github.com/annieversary/sorg/internal/errors"
	"github.com/annieversary/sorg/internal/export"
	"github.com/annieversary/sorg/internal/orgdoc"
	"github.com/annieversary/sorg/internal/site"
)

// wordsPerMinute is the reading speed assumed for reading_time.
const wordsPerMinute = 180

// dateLayout is how closed timestamps surface to templates.
const dateLayout = "2006-01-02"

// Context is the data a page template executes against. Property
// drawer entries come first, then the computed fields, so a computed
// name always wins over a property of the same name.
type Context map[string]any

// PageRef is the child page summary exposed to index templates and the
// pages template function.
type PageRef struct {
	Title       string
	Slug        string
	Path        string
	Date        string
	Description string
	Order       int
}

func newPageRef(p *site.Page) PageRef {
	ref := PageRef{
		Title:       p.Info.Title,
		Slug:        p.Info.Slug,
		Path:        p.Path,
		Description: p.Info.Description,
		Order:       p.Order,
	}
	if p.Info.ClosedAt != nil {
		ref.Date = p.Info.ClosedAt.Format(dateLayout)
	}
	return ref
}

// pageContent is everything exporting a page produces.
type pageContent struct {
	html      string
	footnotes []export.Footnote
	sections  []string
	wordCount int
}

// exportPage renders a page's org content to HTML according to its
// kind. External-file pages parse and export the linked document.
func (r *Renderer) exportPage(p *site.Page) (pageContent, error) {
	switch p.Kind {
	case site.KindIndex:
		html, err := export.IndexHTML(p.Heading, r.exportOpts)
		if err != nil {
			return pageContent{}, err
		}
		return pageContent{
			html:      html,
			wordCount: export.WordCountIndex(p.Heading),
		}, nil

	case site.KindExternalFile:
		path := filepath.Join(r.cfg.RootDir, p.FilePath)
		doc, err := orgdoc.Parse(path, r.cfg.Keywords)
		if err != nil {
			return pageContent{}, errors.Wrapf(err, errors.CategoryFileSystem, errors.SeverityFatal,
				"loading linked file for page %q", p.Info.Title)
		}
		html, heading, err := export.FileHTML(doc, r.exportOpts)
		if err != nil {
			return pageContent{}, err
		}
		return pageContent{
			html:      html,
			footnotes: export.Footnotes(heading.Children),
			sections:  sectionTitles(heading),
			wordCount: export.WordCountPost(heading),
		}, nil

	default:
		html, err := export.PostHTML(p.Heading, r.exportOpts)
		if err != nil {
			return pageContent{}, err
		}
		return pageContent{
			html:      html,
			footnotes: export.Footnotes(p.Heading.Children),
			sections:  sectionTitles(p.Heading),
			wordCount: export.WordCountPost(p.Heading),
		}, nil
	}
}

// sectionTitles lists the immediate subheading titles of a post, for
// templates that render their own tables of contents.
func sectionTitles(h org.Headline) []string {
	var out []string
	for _, sub := range orgdoc.SubHeadlines(h) {
		out = append(out, orgdoc.TitleText(sub))
	}
	return out
}

// context assembles the template data for a page.
func (r *Renderer) context(p *site.Page, content pageContent) Context {
	ctx := Context{}
	for k, v := range p.Info.Properties {
		ctx[k] = v
	}

	ctx["title"] = p.Info.Title
	ctx["path"] = p.Path
	ctx["content"] = template.HTML(content.html)
	ctx["word_count"] = content.wordCount
	ctx["reading_time"] = readingTime(content.wordCount)
	ctx["asset_v"] = r.assetVersion

	ctx["base_title"] = r.cfg.Title
	ctx["base_url"] = r.cfg.URL
	ctx["base_description"] = r.cfg.Description

	if p.Info.Description != "" {
		ctx["description"] = p.Info.Description
	}
	if p.Info.ClosedAt != nil {
		ctx["date"] = p.Info.ClosedAt.Format(dateLayout)
	}
	if p.Kind == site.KindIndex {
		refs := make([]PageRef, 0, len(p.Children))
		for _, child := range p.SortedChildren() {
			refs = append(refs, newPageRef(child))
		}
		ctx["pages"] = refs
	} else {
		ctx["footnotes"] = content.footnotes
		ctx["sections"] = content.sections
	}
	return ctx
}

// readingTime estimates minutes to read, never below one.
func readingTime(wordCount int) int {
	minutes := wordCount / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}
