package render

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annieversary/sorg/internal/config"
	"github.com/annieversary/sorg/internal/export"
	"github.com/annieversary/sorg/internal/orgdoc"
	"github.com/annieversary/sorg/internal/site"
)

const siteDoc = `* index
welcome to the site
** My Post :post:
post body text
** Notes :posts:
notes intro
*** A Note
note body
`

func writeTemplates(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
}

func defaultTemplates() map[string]string {
	return map[string]string{
		"default.html":       `<html><title>{{.title}} | {{.base_title}}</title><body>{{.content}}</body></html>`,
		"default_index.html": `<html><body><ul>{{range .pages}}<li>{{.Title}}</li>{{end}}</ul>{{.content}}</body></html>`,
	}
}

func testRenderer(t *testing.T, src string, templates map[string]string, mutate func(*config.Config)) (*Renderer, *site.Page, *config.Config) {
	t.Helper()
	tmp := t.TempDir()
	tmplDir := filepath.Join(tmp, "templates")
	require.NoError(t, os.MkdirAll(tmplDir, 0o755))
	writeTemplates(t, tmplDir, templates)

	kw := orgdoc.DefaultKeywords()
	doc := orgdoc.ParseString(src, kw)
	require.NoError(t, doc.Error)

	tree, err := site.Build(doc, kw, false)
	require.NoError(t, err)

	cfg := &config.Config{
		RootDir:        tmp,
		BuildDir:       filepath.Join(tmp, "build"),
		TemplatesDir:   tmplDir,
		StaticName:     "static",
		URL:            "https://example.org",
		Title:          "My Site",
		Description:    "a test site",
		HighlightStyle: "friendly",
		ReloadPort:     2794,
		Keywords:       kw,
	}
	if mutate != nil {
		mutate(cfg)
	}

	engine, err := NewEngine(tmplDir, tree)
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return New(cfg, engine, doc, export.ParseMacros(doc), log), tree, cfg
}

func TestRenderWritesTree(t *testing.T) {
	r, tree, cfg := testRenderer(t, siteDoc, defaultTemplates(), nil)
	require.NoError(t, r.Render(tree))

	for _, rel := range []string{
		"index.html",
		"rss.xml",
		"my-post/index.html",
		"notes/index.html",
		"notes/rss.xml",
		"notes/a-note/index.html",
	} {
		_, err := os.Stat(filepath.Join(cfg.BuildDir, rel))
		assert.NoError(t, err, "expected %s to be written", rel)
	}

	post, err := os.ReadFile(filepath.Join(cfg.BuildDir, "my-post", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(post), "post body text")
	assert.Contains(t, string(post), "My Post | My Site")

	index, err := os.ReadFile(filepath.Join(cfg.BuildDir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "<li>My Post</li>")
	assert.Contains(t, string(index), "<li>Notes</li>")
	assert.Contains(t, string(index), "welcome to the site")
	assert.NotContains(t, string(index), "post body text")
}

func TestRenderFeedContents(t *testing.T) {
	r, tree, cfg := testRenderer(t, siteDoc, defaultTemplates(), nil)
	require.NoError(t, r.Render(tree))

	feed, err := os.ReadFile(filepath.Join(cfg.BuildDir, "rss.xml"))
	require.NoError(t, err)
	s := string(feed)
	assert.Contains(t, s, `<rss version="2.0"`)
	assert.Contains(t, s, `xmlns:atom="http://www.w3.org/2005/Atom"`)
	assert.Contains(t, s, `<atom:link href="https://example.org/rss.xml" rel="self" type="application/rss+xml"`)
	assert.Contains(t, s, "<title>My Post</title>")
	assert.Contains(t, s, `<guid isPermaLink="true">https://example.org/my-post</guid>`)
	assert.Contains(t, s, "<description>a test site</description>")
	assert.Contains(t, s, "<content:encoded><![CDATA[")
	assert.Contains(t, s, "post body text")

	nested, err := os.ReadFile(filepath.Join(cfg.BuildDir, "notes", "rss.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(nested), "https://example.org/notes/rss.xml")
	assert.Contains(t, string(nested), "https://example.org/notes/a-note")
}

func TestRenderFeedPubDate(t *testing.T) {
	src := `* index
** Done Post :post:
CLOSED: [2024-03-09 Sat 20:27]
body
`
	r, tree, cfg := testRenderer(t, src, defaultTemplates(), nil)
	require.NoError(t, r.Render(tree))

	feed, err := os.ReadFile(filepath.Join(cfg.BuildDir, "rss.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(feed), "<pubDate>Sat, 09 Mar 2024 00:00:00 GMT</pubDate>")
}

func TestRenderHotReloadScript(t *testing.T) {
	r, tree, cfg := testRenderer(t, siteDoc, defaultTemplates(), func(c *config.Config) {
		c.HotReload = true
	})
	require.NoError(t, r.Render(tree))

	page, err := os.ReadFile(filepath.Join(cfg.BuildDir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "ws://localhost:2794")
	assert.Contains(t, string(page), "'sorg'")
}

func TestRenderNoReloadScriptByDefault(t *testing.T) {
	r, tree, cfg := testRenderer(t, siteDoc, defaultTemplates(), nil)
	require.NoError(t, r.Render(tree))

	page, err := os.ReadFile(filepath.Join(cfg.BuildDir, "index.html"))
	require.NoError(t, err)
	assert.NotContains(t, string(page), "WebSocket")
}

func TestResolveTemplateChain(t *testing.T) {
	templates := defaultTemplates()
	templates["fancy.html"] = `fancy {{.title}}`
	templates["my-post.html"] = `path template {{.title}}`
	r, tree, _ := testRenderer(t, `* index
** My Post :post:
:PROPERTIES:
:template: fancy.html
:END:
body
** Other Post :post:
body
`, templates, nil)

	post := tree.Children["my-post"]
	require.NotNil(t, post)
	tmpl, err := r.engine.Resolve(post)
	require.NoError(t, err)
	assert.Equal(t, "fancy.html", tmpl.Name())

	other := tree.Children["other-post"]
	require.NotNil(t, other)
	tmpl, err = r.engine.Resolve(other)
	require.NoError(t, err)
	assert.Equal(t, "default.html", tmpl.Name())

	tmpl, err = r.engine.Resolve(tree)
	require.NoError(t, err)
	assert.Equal(t, "default_index.html", tmpl.Name())
}

func TestResolvePathTemplate(t *testing.T) {
	templates := defaultTemplates()
	templates["my-post.html"] = `path template`
	r, tree, _ := testRenderer(t, siteDoc, templates, nil)

	post := tree.Children["my-post"]
	require.NotNil(t, post)
	tmpl, err := r.engine.Resolve(post)
	require.NoError(t, err)
	assert.Equal(t, "my-post.html", tmpl.Name())
}

func TestResolveMissingPropertyTemplate(t *testing.T) {
	r, tree, _ := testRenderer(t, `* index
** Broken :post:
:PROPERTIES:
:template: nope.html
:END:
body
`, defaultTemplates(), nil)

	page := tree.Children["broken"]
	require.NotNil(t, page)
	_, err := r.engine.Resolve(page)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.html")
}

func TestPagesTemplateFunc(t *testing.T) {
	templates := defaultTemplates()
	templates["index.html"] = `{{range pages "/notes"}}[{{.Path}}]{{end}}`
	r, tree, cfg := testRenderer(t, siteDoc, templates, nil)
	require.NoError(t, r.Render(tree))

	index, err := os.ReadFile(filepath.Join(cfg.BuildDir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "[/notes]")
	assert.Contains(t, string(index), "[/notes/a-note]")
	assert.NotContains(t, string(index), "[/my-post]")
}

func TestTemplateErrorNamesPage(t *testing.T) {
	templates := map[string]string{
		"default.html":       `{{call .title}}`,
		"default_index.html": `ok {{.content}}`,
	}
	r, tree, _ := testRenderer(t, siteDoc, templates, nil)

	err := r.Render(tree)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "My Post")
}

func TestReadingTime(t *testing.T) {
	assert.Equal(t, 1, readingTime(0))
	assert.Equal(t, 1, readingTime(179))
	assert.Equal(t, 2, readingTime(360))
}

func TestEngineRequiresTemplates(t *testing.T) {
	dir := t.TempDir()
	_, err := NewEngine(dir, nil)
	require.Error(t, err)
}
