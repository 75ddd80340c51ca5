package export

import (
	"strconv"

	"github.com/niklasfasching/go-org/org"

	"github.com/annieversary/sorg/internal/orgdoc"
)

// Footnote is a footnote surfaced to templates, in the order it was
// first defined within the page.
type Footnote struct {
	Label      string
	Definition string
}

// Footnotes collects the footnote definitions of a node list. Pass the
// same nodes that were exported so that inline footnotes without a
// label get the same sequential numeric labels the exporter assigns
// to their references.
func Footnotes(nodes []org.Node) []Footnote {
	var out []Footnote
	auto := 0
	orgdoc.WalkAll(nodes, func(n org.Node) bool {
		switch n := n.(type) {
		case org.FootnoteDefinition:
			out = append(out, Footnote{Label: n.Name, Definition: rawText(n.Children)})
			return false
		case org.FootnoteLink:
			if n.Definition != nil {
				label := n.Name
				if label == "" {
					auto++
					label = strconv.Itoa(auto)
				}
				out = append(out, Footnote{Label: label, Definition: rawText(n.Definition.Children)})
			}
		}
		return true
	})
	return out
}
