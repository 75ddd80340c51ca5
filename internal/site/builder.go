package site

import (
	"github.com/niklasfasching/go-org/org"

	"github.com/annieversary/sorg/internal/errors"
	"github.com/annieversary/sorg/internal/orgdoc"
)

// PropFile names the property holding an external file link.
const PropFile = "file"

// Build constructs the page tree from the document's root heading,
// depth-first and pre-order. The tree is a read-only snapshot: a watch
// rebuild discards it and builds a fresh one.
func Build(doc *orgdoc.Document, kw orgdoc.Keywords, release bool) (*Page, error) {
	root, ok := doc.RootHeadline()
	if !ok {
		return nil, errors.New(errors.CategoryValidation, errors.SeverityFatal,
			"document has no top-level heading to build the site from")
	}
	return buildIndex(root, kw, release, "", 0), nil
}

// buildIndex builds an index page and recurses into its children.
// parentPath carries the accumulated slug path ("" at the root).
func buildIndex(h org.Headline, kw orgdoc.Keywords, release bool, parentPath string, order int) *Page {
	info := newInfo(h)
	accumulated := accumulate(parentPath, info.Slug)

	children := map[string]*Page{}
	pos := 0
	for _, child := range orgdoc.SubHeadlines(h) {
		var page *Page
		switch Classify(child, h, kw, release) {
		case Excluded:
			continue
		case AsIndex:
			page = buildIndex(child, kw, release, accumulated, pos)
		case AsPost:
			page = buildLeaf(child, accumulated, pos)
		}
		// last writer wins on slug collisions
		children[page.Info.Slug] = page
		pos++
	}

	return &Page{
		Heading:  h,
		Path:     normalizePath(accumulated),
		Info:     info,
		Order:    order,
		Kind:     KindIndex,
		Children: children,
	}
}

// buildLeaf builds a post page, upgrading it to an external-file page
// when the file property carries a parseable org file link. A value that
// fails to parse as a link falls back to a plain post on purpose.
func buildLeaf(h org.Headline, parentPath string, order int) *Page {
	info := newInfo(h)

	page := &Page{
		Heading: h,
		Path:    normalizePath(accumulate(parentPath, info.Slug)),
		Info:    info,
		Order:   order,
		Kind:    KindPost,
	}

	if value, ok := info.Properties[PropFile]; ok {
		if target, ok := orgdoc.ParseFileLink(value); ok {
			page.Kind = KindExternalFile
			page.FilePath = target
		}
	}
	return page
}

// accumulate appends a slug to the parent path unless the slug is the
// "index" sentinel: index-named pages do not add a path segment.
func accumulate(parentPath, slug string) string {
	if slug == "index" {
		return parentPath
	}
	return parentPath + "/" + slug
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
