package site

import (
	"github.com/niklasfasching/go-org/org"

	"github.com/annieversary/sorg/internal/orgdoc"
)

// Tags recognized on headings.
const (
	TagNoExport = "noexport"
	TagPost     = "post"
	TagPosts    = "posts"
)

// Disposition is the classifier's verdict for a heading.
type Disposition int

const (
	// Excluded headings produce no page at all.
	Excluded Disposition = iota
	// AsPost headings become leaf pages (possibly file-linked).
	AsPost
	// AsIndex headings become nested index pages.
	AsIndex
)

// Classify decides how a heading participates in the page tree.
//
// A noexport tag always wins. A not-done workflow keyword excludes the
// heading in release mode; outside release mode the in-review keyword
// (and only that one) stays visible. Post classification comes from the
// heading's own post tag or the direct parent's posts tag; tag
// inheritance is one level only, never transitive.
func Classify(h org.Headline, parent org.Headline, kw orgdoc.Keywords, release bool) Disposition {
	if orgdoc.HasTag(h, TagNoExport) {
		return Excluded
	}
	if h.Status != "" && kw.IsNotDone(h.Status) {
		if release || h.Status != orgdoc.InReviewKeyword {
			return Excluded
		}
	}
	if orgdoc.HasTag(h, TagPost) || orgdoc.HasTag(parent, TagPosts) {
		return AsPost
	}
	return AsIndex
}
