package export

import (
	"strings"

	"github.com/niklasfasching/go-org/org"

	"github.com/annieversary/sorg/internal/orgdoc"
)

// WordCountPost counts the prose words of a post: every text run in
// the heading subtree, including sub-heading titles.
func WordCountPost(h org.Headline) int {
	total := len(strings.Fields(orgdoc.TitleText(h)))
	orgdoc.WalkAll(h.Children, func(n org.Node) bool {
		switch n := n.(type) {
		case org.Text:
			total += len(strings.Fields(n.Content))
		case org.Headline:
			total += len(strings.Fields(orgdoc.TitleText(n)))
		}
		return true
	})
	return total
}

// WordCountIndex counts the prose words of an index page: its own
// title and body plus the titles of its direct children. Body text of
// child pages belongs to those pages and is not counted here.
func WordCountIndex(h org.Headline) int {
	total := len(strings.Fields(orgdoc.TitleText(h)))
	orgdoc.WalkAll(orgdoc.BodyNodes(h), func(n org.Node) bool {
		if t, ok := n.(org.Text); ok {
			total += len(strings.Fields(t.Content))
		}
		return true
	})
	for _, sub := range orgdoc.SubHeadlines(h) {
		total += len(strings.Fields(orgdoc.TitleText(sub)))
	}
	return total
}
