package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annieversary/sorg/internal/orgdoc"
)

func buildTree(t *testing.T, src string, release bool) *Page {
	t.Helper()
	doc := orgdoc.ParseString(src, orgdoc.DefaultKeywords())
	tree, err := Build(doc, orgdoc.DefaultKeywords(), release)
	require.NoError(t, err)
	return tree
}

func TestBuild_RootPathIsSlash(t *testing.T) {
	tree := buildTree(t, "* index\n", true)

	assert.Equal(t, "/", tree.Path)
	assert.Equal(t, KindIndex, tree.Kind)
	assert.Empty(t, tree.Children)
}

func TestBuild_NoRootHeading_Error(t *testing.T) {
	doc := orgdoc.ParseString("just text\n", orgdoc.DefaultKeywords())

	_, err := Build(doc, orgdoc.DefaultKeywords(), true)
	require.Error(t, err)
}

func TestBuild_PathsAccumulateSlugs(t *testing.T) {
	tree := buildTree(t, `* index
** Blog
*** My First Post                                         :post:
`, true)

	blog, ok := tree.Children["blog"]
	require.True(t, ok)
	assert.Equal(t, "/blog", blog.Path)
	assert.Equal(t, KindIndex, blog.Kind)

	post, ok := blog.Children["my-first-post"]
	require.True(t, ok)
	assert.Equal(t, "/blog/my-first-post", post.Path)
	assert.Equal(t, KindPost, post.Kind)
}

func TestBuild_IndexSlugAddsNoPathSegment(t *testing.T) {
	tree := buildTree(t, `* index
** Blog
*** index
**** Deep Post                                            :post:
`, true)

	blog := tree.Children["blog"]
	require.NotNil(t, blog)
	inner, ok := blog.Children["index"]
	require.True(t, ok)
	assert.Equal(t, "/blog", inner.Path)

	deep, ok := inner.Children["deep-post"]
	require.True(t, ok)
	assert.Equal(t, "/blog/deep-post", deep.Path)
}

func TestBuild_NoexportExcludedAtAnyDepth(t *testing.T) {
	tree := buildTree(t, `* index
** Public
*** Hidden                                                :noexport:
** Secret                                                 :noexport:
`, true)

	require.Len(t, tree.Children, 1)
	public := tree.Children["public"]
	require.NotNil(t, public)
	assert.Empty(t, public.Children)
}

func TestBuild_NotDoneKeywordExcludedInRelease(t *testing.T) {
	src := `* index
** TODO Unfinished                                        :post:
** PROGRESS In Review                                     :post:
** DONE Shipped                                           :post:
`
	release := buildTree(t, src, true)
	assert.Len(t, release.Children, 1)
	assert.Contains(t, release.Children, "shipped")

	draft := buildTree(t, src, false)
	assert.Len(t, draft.Children, 2)
	assert.Contains(t, draft.Children, "in-review")
	assert.Contains(t, draft.Children, "shipped")
	assert.NotContains(t, draft.Children, "unfinished")
}

func TestBuild_PostsTagMakesDirectChildrenPosts(t *testing.T) {
	tree := buildTree(t, `* index
** Blog                                                   :posts:
*** Entry One
**** Not A Page Boundary
*** Entry Two
`, true)

	blog := tree.Children["blog"]
	require.NotNil(t, blog)
	require.Len(t, blog.Children, 2)
	assert.Equal(t, KindPost, blog.Children["entry-one"].Kind)
	assert.Equal(t, KindPost, blog.Children["entry-two"].Kind)
}

func TestBuild_PostsTagInheritanceIsNotTransitive(t *testing.T) {
	tree := buildTree(t, `* index
** Blog                                                   :posts:
*** Entry
**** Deep Section
`, true)

	// The posts tag reaches direct children only: Entry is a post leaf,
	// so Deep Section is body content, never a page of its own.
	blog := tree.Children["blog"]
	require.NotNil(t, blog)
	assert.Equal(t, KindIndex, blog.Kind)

	entry := blog.Children["entry"]
	require.NotNil(t, entry)
	assert.Equal(t, KindPost, entry.Kind)
	assert.Empty(t, entry.Children)
	assert.NotContains(t, entry.Children, "deep-section")
}

func TestBuild_OrderAssignedAmongSurvivors(t *testing.T) {
	tree := buildTree(t, `* index
** Alpha                                                  :post:
** Skipped                                                :noexport:
** Beta                                                   :post:
** Gamma                                                  :post:
`, true)

	require.Len(t, tree.Children, 3)
	assert.Equal(t, 0, tree.Children["alpha"].Order)
	assert.Equal(t, 1, tree.Children["beta"].Order)
	assert.Equal(t, 2, tree.Children["gamma"].Order)
}

func TestBuild_Deterministic(t *testing.T) {
	src := `* index
** One                                                    :post:
** Two
*** Nested                                                :post:
** Three                                                  :post:
`
	a := buildTree(t, src, true)
	b := buildTree(t, src, true)

	var collect func(p *Page) map[string]int
	collect = func(p *Page) map[string]int {
		out := map[string]int{p.Path: p.Order}
		for _, c := range p.Children {
			for k, v := range collect(c) {
				out[k] = v
			}
		}
		return out
	}
	assert.Equal(t, collect(a), collect(b))
}

func TestBuild_SlugCollision_LastWriteWins(t *testing.T) {
	tree := buildTree(t, `* index
** Post
:PROPERTIES:
:description: first
:END:
** post!
:PROPERTIES:
:description: second
:END:
`, true)

	require.Len(t, tree.Children, 1)
	survivor, ok := tree.Children["post"]
	require.True(t, ok)
	assert.Equal(t, "second", survivor.Info.Description)
	assert.Equal(t, 1, survivor.Order)
}

func TestBuild_SlugPropertyOverride(t *testing.T) {
	tree := buildTree(t, `* index
** Some Long Title                                        :post:
:PROPERTIES:
:slug: short
:END:
`, true)

	require.Contains(t, tree.Children, "short")
	assert.Equal(t, "/short", tree.Children["short"].Path)
}

func TestBuild_TitlePropertyOverride(t *testing.T) {
	tree := buildTree(t, `* index
** raw heading text                                       :post:
:PROPERTIES:
:title: Pretty Title
:END:
`, true)

	child := tree.Children["pretty-title"]
	require.NotNil(t, child)
	assert.Equal(t, "Pretty Title", child.Info.Title)
}

func TestBuild_FileLinkedPost(t *testing.T) {
	tree := buildTree(t, `* index
** Linked                                                 :post:
:PROPERTIES:
:file: [[file:notes.org][linked blogpost]]
:END:
`, true)

	child := tree.Children["linked"]
	require.NotNil(t, child)
	assert.Equal(t, KindExternalFile, child.Kind)
	assert.Equal(t, "notes.org", child.FilePath)
}

func TestBuild_UnparseableFileLink_FallsBackToPost(t *testing.T) {
	tree := buildTree(t, `* index
** Broken                                                 :post:
:PROPERTIES:
:file: not a link at all
:END:
`, true)

	child := tree.Children["broken"]
	require.NotNil(t, child)
	assert.Equal(t, KindPost, child.Kind)
	assert.Empty(t, child.FilePath)
}

func TestSlugify_Idempotent(t *testing.T) {
	for _, input := range []string{"Hello World", "Déjà Vu!", "already-slugged", "  spaces  "} {
		once := Slugify(input)
		assert.Equal(t, once, Slugify(once), "slugify should be idempotent for %q", input)
		assert.Regexp(t, `^[a-z0-9]+(-[a-z0-9]+)*$`, once)
	}
}

func TestSortedChildren_OrderedByOrder(t *testing.T) {
	tree := buildTree(t, `* index
** B Page                                                 :post:
** A Page                                                 :post:
** C Page                                                 :post:
`, true)

	children := tree.SortedChildren()
	require.Len(t, children, 3)
	assert.Equal(t, "b-page", children[0].Info.Slug)
	assert.Equal(t, "a-page", children[1].Info.Slug)
	assert.Equal(t, "c-page", children[2].Info.Slug)
}
