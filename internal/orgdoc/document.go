// Package orgdoc wraps the go-org parser with the accessors the rest of
// the build needs: workflow keyword handling, buffer settings, heading
// metadata, and node tree traversal.
package orgdoc

import (
	"os"
	"strings"

	"github.com/niklasfasching/go-org/org"

	"github.com/annieversary/sorg/internal/errors"
)

// Document is a parsed org file plus the path it was read from.
type Document struct {
	*org.Document
	Path string
}

// Parse reads and parses the org file at path. The keyword sets are
// installed as the default #+TODO configuration; a #+todo line in the
// document itself still takes precedence.
func Parse(path string, kw Keywords) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CategoryFileSystem, errors.SeverityFatal, "opening %s", path)
	}
	defer f.Close()

	conf := org.New()
	conf.DefaultSettings["TODO"] = kw.orgSetting()
	doc := conf.Parse(f, path)
	if doc.Error != nil {
		return nil, errors.Wrapf(doc.Error, errors.CategoryValidation, errors.SeverityFatal, "parsing %s", path)
	}
	return &Document{Document: doc, Path: path}, nil
}

// ParseString parses org source held in memory. Used for file-link
// extraction and tests.
func ParseString(src string, kw Keywords) *Document {
	conf := org.New()
	conf.DefaultSettings["TODO"] = kw.orgSetting()
	doc := conf.Parse(strings.NewReader(src), "")
	return &Document{Document: doc}
}

// Setting returns a whole-document keyword value (#+title, #+url, ...).
// Keys are matched case-insensitively, as go-org stores them uppercased.
func (d *Document) Setting(key string) string {
	return strings.TrimSpace(d.Get(strings.ToUpper(key)))
}

// RootHeadline returns the document's first top-level heading. The whole
// site hangs off this node.
func (d *Document) RootHeadline() (org.Headline, bool) {
	for _, node := range d.Nodes {
		if h, ok := node.(org.Headline); ok {
			return h, true
		}
	}
	return org.Headline{}, false
}

// Properties returns a copy of a heading's property drawer. The parser
// uppercases drawer keys, so they are lowercased here to give the rest
// of the build (and template authors) a stable spelling.
func Properties(h org.Headline) map[string]string {
	props := map[string]string{}
	if h.Properties == nil {
		return props
	}
	for _, kv := range h.Properties.Properties {
		if len(kv) == 2 {
			props[strings.ToLower(kv[0])] = kv[1]
		}
	}
	return props
}

// TitleText returns the raw text of a heading title.
func TitleText(h org.Headline) string {
	var b strings.Builder
	for _, node := range h.Title {
		b.WriteString(node.String())
	}
	return strings.TrimSpace(b.String())
}

// HasTag reports whether the heading carries the given tag.
func HasTag(h org.Headline, tag string) bool {
	for _, t := range h.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SubHeadlines returns the direct child headings in document order.
func SubHeadlines(h org.Headline) []org.Headline {
	var out []org.Headline
	for _, node := range h.Children {
		if child, ok := node.(org.Headline); ok {
			out = append(out, child)
		}
	}
	return out
}

// BodyNodes returns a heading's direct children that are not headings,
// i.e. the content that belongs to the heading itself.
func BodyNodes(h org.Headline) []org.Node {
	var out []org.Node
	for _, node := range h.Children {
		if _, ok := node.(org.Headline); !ok {
			out = append(out, node)
		}
	}
	return out
}
