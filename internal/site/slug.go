package site

import (
	"sort"

	"github.com/gosimple/slug"
)

// Slugify normalizes s into a lowercase, hyphenated, URL-safe slug.
// It is idempotent: Slugify(Slugify(x)) == Slugify(x).
func Slugify(s string) string {
	return slug.Make(s)
}

func sortPages(pages []*Page) {
	sort.Slice(pages, func(i, j int) bool { return pages[i].Order < pages[j].Order })
}
