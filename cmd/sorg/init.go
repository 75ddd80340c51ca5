package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/annieversary/sorg/internal/logfields"
)

const starterDoc = `#+title: My Site
#+description: A site built with sorg
#+url: https://example.org

* index
Welcome to your new site. Everything under this heading becomes a page;
the index name keeps this one at the site root.

** About :post:
Pages tagged post render their own content.

** Blog :posts:
Headings under a posts section become individual posts.

*** TODO My First Post
This post stays hidden from release builds until its keyword is done.
`

const starterDefault = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.title}} | {{.base_title}}</title>
  <link rel="stylesheet" href="/style.css?v={{.asset_v}}">
</head>
<body>
  <main>
    <h1>{{.title}}</h1>
    {{if .date}}<p class="meta">{{.date}} · {{.reading_time}} min read</p>{{end}}
    {{.content}}
    {{if .footnotes}}
    <ol class="footnotes">
      {{range .footnotes}}<li id="fn-{{.Label}}">{{.Definition}} <a href="#fnref-{{.Label}}">↩</a></li>{{end}}
    </ol>
    {{end}}
  </main>
</body>
</html>
`

const starterDefaultIndex = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.title}} | {{.base_title}}</title>
  <link rel="stylesheet" href="/style.css?v={{.asset_v}}">
</head>
<body>
  <main>
    <h1>{{.title}}</h1>
    {{.content}}
    <ul class="pages">
      {{range .pages}}<li><a href="{{.Path}}">{{.Title}}</a>{{if .Date}} <time>{{.Date}}</time>{{end}}</li>{{end}}
    </ul>
  </main>
</body>
</html>
`

const starterCSS = `body {
  max-width: 42rem;
  margin: 0 auto;
  padding: 1rem;
  font-family: sans-serif;
  line-height: 1.6;
}
.meta { color: #666; }
`

// runInit scaffolds a working site: a starter document, the two
// fallback templates, and a stylesheet. Existing files are left alone
// unless force is set.
func runInit(dir string, force bool, logger *slog.Logger) error {
	files := map[string]string{
		"blog.org": starterDoc,
		filepath.Join("templates", "default.html"): starterDefault,
		filepath.Join("templates", "default_index.html"): starterDefaultIndex,
		filepath.Join("static", "style.css"):             starterCSS,
	}

	for rel, content := range files {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !force {
			logger.Info("exists, skipping", logfields.Path(path))
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
		logger.Info("created", logfields.Path(path))
	}

	logger.Info("site scaffolded", logfields.Out(dir))
	return nil
}
