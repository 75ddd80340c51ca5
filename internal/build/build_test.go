package build

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annieversary/sorg/internal/config"
	"github.com/annieversary/sorg/internal/errors"
	"github.com/annieversary/sorg/internal/orgdoc"
)

const testDoc = `#+title: Test Site
#+description: a site for the build tests
#+url: https://example.org

* index
welcome text
** Hello World :post:
CLOSED: [2024-01-15 Mon 10:00]
first post body
** Draft Post :post:
not ready yet
`

func writeSite(t *testing.T, doc string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blog.org"), []byte(doc), 0o644))

	tmpl := filepath.Join(dir, "templates")
	require.NoError(t, os.MkdirAll(tmpl, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpl, "default.html"),
		[]byte(`<body>{{.content}}</body>`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpl, "default_index.html"),
		[]byte(`<body>{{range .pages}}<a href="{{.Path}}">{{.Title}}</a>{{end}}{{.content}}</body>`), 0o644))

	static := filepath.Join(dir, "static")
	require.NoError(t, os.MkdirAll(static, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(static, "main.css"), []byte("body{}"), 0o644))
	return dir
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func TestRunBuildsSite(t *testing.T) {
	dir := writeSite(t, testDoc)
	opts := config.Options{Path: filepath.Join(dir, "blog.org"), Port: 8080, ReloadPort: 2794}

	require.NoError(t, Run(context.Background(), opts, testLogger()))

	buildDir := filepath.Join(dir, "build")
	for _, rel := range []string{
		"index.html",
		"rss.xml",
		"hello-world/index.html",
		"main.css",
	} {
		_, err := os.Stat(filepath.Join(buildDir, rel))
		assert.NoError(t, err, "expected %s in build output", rel)
	}

	index, err := os.ReadFile(filepath.Join(buildDir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "Hello World")
	assert.Contains(t, string(index), "welcome text")
}

func TestRunClearsStaleOutput(t *testing.T) {
	dir := writeSite(t, testDoc)
	stale := filepath.Join(dir, "build", "removed-page")
	require.NoError(t, os.MkdirAll(stale, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(stale, "index.html"), []byte("old"), 0o644))

	opts := config.Options{Path: filepath.Join(dir, "blog.org")}
	require.NoError(t, Run(context.Background(), opts, testLogger()))

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}

func TestRunMissingMetadataFails(t *testing.T) {
	dir := writeSite(t, "* index\n** Post :post:\nbody\n")
	opts := config.Options{Path: filepath.Join(dir, "blog.org")}

	err := Run(context.Background(), opts, testLogger())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfig))
}

func TestRunCanceledContext(t *testing.T) {
	dir := writeSite(t, testDoc)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(ctx, config.Options{Path: filepath.Join(dir, "blog.org")}, testLogger())
	require.Error(t, err)
}

func TestRunReleaseExcludesDrafts(t *testing.T) {
	dir := writeSite(t, `#+title: Test Site
#+description: a site for the build tests
#+url: https://example.org

* index
** TODO Secret Post :post:
hidden body
** DONE Public Post :post:
public body
`)
	opts := config.Options{Path: filepath.Join(dir, "blog.org"), Release: true}
	require.NoError(t, Run(context.Background(), opts, testLogger()))

	buildDir := filepath.Join(dir, "build")
	_, err := os.Stat(filepath.Join(buildDir, "public-post", "index.html"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(buildDir, "secret-post"))
	assert.True(t, os.IsNotExist(err))
}

func TestFoldersCreatesSkeleton(t *testing.T) {
	dir := writeSite(t, testDoc)
	opts := config.Options{Path: filepath.Join(dir, "blog.org")}

	require.NoError(t, Folders(context.Background(), opts, testLogger()))

	// Page folders land under the static root, next to the assets.
	info, err := os.Stat(filepath.Join(dir, "static", "hello-world"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	_, err = os.Stat(filepath.Join(dir, "static", "hello-world", ".gitignore"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "hello-world"))
	assert.True(t, os.IsNotExist(err))
}

func TestParseDocumentHonorsCustomKeywords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blog.org")
	require.NoError(t, os.WriteFile(path, []byte(`#+todo: WIP | SHIPPED
* index
** WIP Thing :post:
body
`), 0o644))

	st := &State{Options: config.Options{Path: path}, log: testLogger()}
	require.NoError(t, parseDocument(context.Background(), st))

	root, ok := st.Doc.RootHeadline()
	require.True(t, ok)
	subs := orgdoc.SubHeadlines(root)
	require.Len(t, subs, 1)
	assert.Equal(t, "WIP", subs[0].Status)
}
