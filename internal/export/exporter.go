// Package export turns org heading subtrees into the HTML fragments the
// templates embed. It extends the go-org HTML writer with the site's
// link resolution, heading anchors, macro expansion, and pending
// attribute handling.
package export

import (
	"fmt"
	"html"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"github.com/niklasfasching/go-org/org"

	"github.com/annieversary/sorg/internal/errors"
	"github.com/annieversary/sorg/internal/orgdoc"
)

// Options configures an export run. One Options value is shared by
// every page of a build.
type Options struct {
	// Doc is the document being exported. Needed for #+MACRO
	// definitions; nil is fine for fragments.
	Doc *orgdoc.Document

	// BaseURL is the site root relative links resolve against.
	BaseURL string

	// StaticName is the name of the static assets directory. Links
	// into it are rewritten to site-root paths.
	StaticName string

	// HighlightStyle is the chroma style for source blocks.
	HighlightStyle string

	// Macros holds the document's macro block definitions.
	Macros *Macros
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".svg": true, ".avif": true,
}

// PostHTML exports a post heading: its body and every sub-heading,
// which become h2..h6 sections with anchor links.
func PostHTML(h org.Headline, opts Options) (string, error) {
	e := newExporter(opts, false, h.Lvl)
	e.writeHeadlineContent(h.Children)
	if e.err != nil {
		return "", e.err
	}
	return e.String(), nil
}

// IndexHTML exports only the heading's own body. Child headings are
// separate pages and never appear in an index's content.
func IndexHTML(h org.Headline, opts Options) (string, error) {
	e := newExporter(opts, true, h.Lvl)
	if body := orgdoc.BodyNodes(h); len(body) > 0 {
		e.WriteString("<section>\n")
		org.WriteNodes(e, body...)
		e.WriteString("</section>\n")
	}
	if e.err != nil {
		return "", e.err
	}
	return e.String(), nil
}

// FileHTML exports the first heading of a linked org document, the
// content of an external-file page.
func FileHTML(doc *orgdoc.Document, opts Options) (string, org.Headline, error) {
	root, ok := doc.RootHeadline()
	if !ok {
		return "", org.Headline{}, errors.Newf(errors.CategoryValidation, errors.SeverityFatal,
			"linked file %s has no heading", doc.Path)
	}
	opts.Doc = doc
	html, err := PostHTML(root, opts)
	return html, root, err
}

type exporter struct {
	*org.HTMLWriter

	opts     Options
	index    bool
	topLevel int

	// attrs holds CAPTION / ATTR_HTML values waiting for the next
	// renderable element, in authoring order.
	attrs [][2]string

	footnoteID int
	err        error
}

func newExporter(opts Options, index bool, topLevel int) *exporter {
	hw := org.NewHTMLWriter()
	e := &exporter{HTMLWriter: hw, opts: opts, index: index, topLevel: topLevel}
	hw.ExtendingWriter = e
	hw.TopLevelHLevel = 2
	hw.HighlightCodeBlock = func(source, lang string, inline bool, params map[string]string) string {
		return HighlightCodeBlock(source, lang, inline, opts.HighlightStyle)
	}
	return e
}

func (e *exporter) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

// writeHeadlineContent writes a heading's body wrapped in a section,
// then its sub-headings.
func (e *exporter) writeHeadlineContent(children []org.Node) {
	var body, subs []org.Node
	for _, n := range children {
		if _, ok := n.(org.Headline); ok {
			subs = append(subs, n)
		} else {
			body = append(body, n)
		}
	}
	if len(body) > 0 {
		e.WriteString("<section>\n")
		org.WriteNodes(e, body...)
		e.WriteString("</section>\n")
	}
	org.WriteNodes(e, subs...)
}

// WriteHeadline writes sub-headings of a post as anchored h2..h6
// elements. Index pages never render nested headings; those are
// separate pages.
func (e *exporter) WriteHeadline(h org.Headline) {
	if e.index {
		return
	}
	lvl := h.Lvl - e.topLevel + 1
	if lvl < 1 {
		lvl = 1
	}
	if lvl > 6 {
		lvl = 6
	}
	anchor := slug.Make(orgdoc.TitleText(h))
	fmt.Fprintf(e, "<h%d%s><a id=%q href=\"#%s\">", lvl, e.takeAttrs(""), anchor, anchor)
	org.WriteNodes(e, h.Title...)
	fmt.Fprintf(e, "</a></h%d>\n", lvl)
	e.writeHeadlineContent(h.Children)
}

func (e *exporter) WriteParagraph(p org.Paragraph) {
	if len(p.Children) == 0 {
		return
	}
	e.WriteString("<p" + e.takeAttrs("") + ">")
	org.WriteNodes(e, p.Children...)
	e.WriteString("</p>\n")
}

func (e *exporter) WriteBlock(b org.Block) {
	switch b.Name {
	case "QUOTE":
		e.WriteString("<blockquote" + e.takeAttrs("") + ">\n")
		org.WriteNodes(e, b.Children...)
		e.WriteString("</blockquote>\n")
	case "CENTER":
		e.WriteString("<div" + e.takeAttrs("center") + ">\n")
		org.WriteNodes(e, b.Children...)
		e.WriteString("</div>\n")
	case "VERSE":
		e.WriteString("<p" + e.takeAttrs("verse") + ">\n")
		org.WriteNodes(e, b.Children...)
		e.WriteString("</p>\n")
	case "MACRO":
		// Definitions are collected up front and never rendered.
	default:
		e.HTMLWriter.WriteBlock(b)
	}
}

func (e *exporter) WriteList(l org.List) {
	switch l.Kind {
	case "ordered":
		e.WriteString("<ol" + e.takeAttrs("") + ">\n")
		org.WriteNodes(e, l.Items...)
		e.WriteString("</ol>\n")
	case "unordered":
		e.WriteString("<ul" + e.takeAttrs("") + ">\n")
		org.WriteNodes(e, l.Items...)
		e.WriteString("</ul>\n")
	default:
		e.HTMLWriter.WriteList(l)
	}
}

func (e *exporter) WriteListItem(li org.ListItem) {
	e.WriteString("<li>")
	org.WriteNodes(e, li.Children...)
	e.WriteString("</li>\n")
}

func (e *exporter) WriteEmphasis(em org.Emphasis) {
	tag := ""
	switch em.Kind {
	case "*":
		tag = "b"
	case "/":
		tag = "i"
	case "+":
		tag = "s"
	case "_":
		tag = "u"
	}
	if tag == "" {
		e.HTMLWriter.WriteEmphasis(em)
		return
	}
	e.WriteString("<" + tag + ">")
	org.WriteNodes(e, em.Content...)
	e.WriteString("</" + tag + ">")
}

// WriteRegularLink resolves link targets against the site URL. Image
// targets become figures; external targets open in a new tab.
func (e *exporter) WriteRegularLink(l org.RegularLink) {
	target := l.URL
	target = strings.TrimPrefix(target, "file:")
	if e.opts.StaticName != "" {
		target = strings.TrimPrefix(target, "./"+e.opts.StaticName)
	}

	resolved := target
	if base, err := url.Parse(e.opts.BaseURL); err == nil && e.opts.BaseURL != "" {
		if ref, err := url.Parse(target); err == nil {
			resolved = base.ResolveReference(ref).String()
		}
	}

	if imageExtensions[strings.ToLower(path.Ext(target))] {
		pairs := e.attrs
		e.attrs = nil
		e.writeFigure(resolved, pairs)
		return
	}

	extra := ""
	if strings.HasPrefix(target, "http") {
		extra = ` target="_blank" rel="noopener"`
	}
	e.WriteString(`<a href="` + html.EscapeString(resolved) + `"` + e.takeAttrs("") + extra + `>`)
	if len(l.Description) > 0 {
		org.WriteNodes(e, l.Description...)
	} else {
		e.WriteString(html.EscapeString(target))
	}
	e.WriteString("</a>")
}

func (e *exporter) writeFigure(src string, pairs [][2]string) {
	var attrs strings.Builder
	caption := ""
	for _, kv := range pairs {
		if kv[0] == "alt" {
			caption = kv[1]
		}
		attrs.WriteString(" " + kv[0] + `="` + html.EscapeString(kv[1]) + `"`)
	}
	e.WriteString("<figure>\n")
	e.WriteString(`<img src="` + html.EscapeString(src) + `" loading="lazy"` + attrs.String() + ">\n")
	if caption != "" {
		e.WriteString("<figcaption>" + html.EscapeString(caption) + "</figcaption>\n")
	}
	e.WriteString("</figure>\n")
}

// WriteMacro expands an inline macro call. Block macros take priority
// over #+MACRO keyword definitions. Unknown names and argument count
// mismatches abort the export.
func (e *exporter) WriteMacro(m org.Macro) {
	if def, ok := e.opts.Macros.Get(m.Name); ok {
		out, err := def.Expand(m.Parameters)
		if err != nil {
			e.fail(err)
			return
		}
		e.WriteString(out)
		return
	}
	if e.opts.Doc != nil && e.opts.Doc.Document != nil {
		if body, ok := e.opts.Doc.Macros[m.Name]; ok {
			out := body
			for i, p := range m.Parameters {
				out = strings.ReplaceAll(out, "$"+strconv.Itoa(i+1), strings.TrimSpace(p))
			}
			e.WriteString(out)
			return
		}
	}
	e.fail(errors.Newf(errors.CategoryExport, errors.SeverityFatal, "unknown macro %q", m.Name))
}

// WriteFootnoteLink writes a superscript reference. Unnamed inline
// footnotes are numbered in encounter order.
func (e *exporter) WriteFootnoteLink(l org.FootnoteLink) {
	label := l.Name
	if label == "" {
		e.footnoteID++
		label = strconv.Itoa(e.footnoteID)
	}
	esc := html.EscapeString(label)
	fmt.Fprintf(e, `<sup id="fnref-%s"><a href="#fn-%s" class="footnote-ref">%s</a></sup>`, esc, esc, esc)
}

// WriteFootnoteDefinition drops definitions from the flow; the
// template renders them from the page's footnote list.
func (e *exporter) WriteFootnoteDefinition(org.FootnoteDefinition) {}

// WriteNodeWithMeta records CAPTION and ATTR_HTML lines as pending
// attributes for the wrapped element.
func (e *exporter) WriteNodeWithMeta(n org.NodeWithMeta) {
	if len(n.Meta.Caption) > 0 {
		var lines []string
		for _, row := range n.Meta.Caption {
			parts := make([]string, 0, len(row))
			for _, node := range row {
				parts = append(parts, strings.TrimSpace(node.String()))
			}
			lines = append(lines, strings.Join(parts, " "))
		}
		caption := strings.Join(lines, " ")
		e.setAttr("alt", caption)
		e.setAttr("title", caption)
	}
	for _, line := range n.Meta.HTMLAttributes {
		for i := 0; i+1 < len(line); i += 2 {
			e.setAttr(strings.TrimPrefix(line[i], ":"), line[i+1])
		}
	}
	org.WriteNodes(e, n.Node)
	e.attrs = nil
}

// WriteKeyword handles standalone caption and attribute lines; other
// keywords keep the default behavior.
func (e *exporter) WriteKeyword(k org.Keyword) {
	switch strings.ToUpper(k.Key) {
	case "CAPTION":
		e.setAttr("alt", k.Value)
		e.setAttr("title", k.Value)
	case "ATTR_HTML":
		v := strings.TrimPrefix(strings.TrimSpace(k.Value), ":")
		if key, val, ok := strings.Cut(v, " "); ok {
			e.setAttr(key, strings.TrimSpace(val))
		}
	default:
		e.HTMLWriter.WriteKeyword(k)
	}
}

func (e *exporter) setAttr(key, value string) {
	for i := range e.attrs {
		if e.attrs[i][0] == key {
			e.attrs[i][1] = value
			return
		}
	}
	e.attrs = append(e.attrs, [2]string{key, value})
}

// takeAttrs renders the pending attributes as an attribute string and
// clears them. An extra class merges with an authored class attribute.
func (e *exporter) takeAttrs(class string) string {
	attrs := e.attrs
	e.attrs = nil
	if class != "" {
		merged := false
		for i := range attrs {
			if attrs[i][0] == "class" {
				attrs[i][1] = class + " " + attrs[i][1]
				merged = true
				break
			}
		}
		if !merged {
			attrs = append(attrs, [2]string{"class", class})
		}
	}
	var b strings.Builder
	for _, kv := range attrs {
		b.WriteString(" " + kv[0] + `="` + html.EscapeString(kv[1]) + `"`)
	}
	return b.String()
}
