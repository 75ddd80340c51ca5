// Package site builds the page tree: it classifies headings of the org
// document into index, post, and external-file pages, and computes the
// slug, path, and ordering metadata the renderer consumes.
package site

import (
	"time"

	"github.com/niklasfasching/go-org/org"

	"github.com/annieversary/sorg/internal/orgdoc"
)

// Kind discriminates the page variants.
type Kind int

const (
	// KindIndex is a section page whose children are other pages.
	KindIndex Kind = iota
	// KindPost is a leaf page rendered from its own heading content.
	KindPost
	// KindExternalFile is a leaf page whose content is parsed from a
	// separate org file named by the heading's file property.
	KindExternalFile
)

func (k Kind) String() string {
	switch k {
	case KindIndex:
		return "index"
	case KindPost:
		return "post"
	case KindExternalFile:
		return "file"
	default:
		return "unknown"
	}
}

// Info is the derived, immutable metadata of a page.
type Info struct {
	Title       string
	Slug        string
	Description string
	ClosedAt    *time.Time
	// Properties is the full property drawer, keys lowercased.
	Properties map[string]string
}

// Page is a node of the page tree.
type Page struct {
	Heading org.Headline
	// Path is the absolute URL path, "/" for the root.
	Path string
	Info Info
	// Order is the zero-based position among surviving siblings at build
	// time. Listings and feeds sort by it; it is never re-sorted by date.
	Order int
	Kind  Kind

	// Children holds an index page's children keyed by slug. When two
	// siblings normalize to the same slug the later one in document
	// order wins; this is a documented ambiguity, not an error.
	Children map[string]*Page

	// FilePath is the referenced document of an external-file page,
	// relative to the site root.
	FilePath string
}

// newInfo computes the derived metadata for a heading.
func newInfo(h org.Headline) Info {
	props := orgdoc.Properties(h)

	title := props["title"]
	if title == "" {
		title = orgdoc.TitleText(h)
	}

	s := props["slug"]
	if s == "" {
		s = props["out"]
	}
	if s == "" {
		s = title
	}

	info := Info{
		Title:       title,
		Slug:        Slugify(s),
		Description: props["description"],
		Properties:  props,
	}
	if closed, ok := orgdoc.ClosedAt(h); ok {
		info.ClosedAt = &closed
	}
	return info
}

// SortedChildren returns an index page's children ordered by Order.
func (p *Page) SortedChildren() []*Page {
	out := make([]*Page, 0, len(p.Children))
	for _, child := range p.Children {
		out = append(out, child)
	}
	sortPages(out)
	return out
}
