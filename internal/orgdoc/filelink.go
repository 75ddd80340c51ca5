package orgdoc

import (
	"strings"

	"github.com/niklasfasching/go-org/org"
)

// ParseFileLink extracts the target path from an org file link:
//
//	"[[file:notes.org][See notes]]" -> "notes.org", true
//
// Any value that does not parse to a file link returns ok=false; callers
// fall back to treating the heading as a regular post.
func ParseFileLink(value string) (string, bool) {
	doc := ParseString(value, DefaultKeywords())
	if doc.Document.Error != nil {
		return "", false
	}

	var target string
	WalkAll(doc.Nodes, func(node org.Node) bool {
		if target != "" {
			return false
		}
		link, ok := node.(org.RegularLink)
		if !ok {
			return true
		}
		if link.Protocol == "file" || strings.HasPrefix(link.URL, "file:") {
			target = strings.TrimPrefix(link.URL, "file:")
		}
		return false
	})
	return target, target != ""
}
