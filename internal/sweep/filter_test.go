package sweep

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/bnema/subreddit-filter/internal/dom"
	"github.com/bnema/subreddit-filter/internal/models"
)

const feed = `<html><head></head><body>
<shreddit-post id="post-aww" community-name="aww"></shreddit-post>
<shreddit-post id="post-pics" subreddit-prefixed-name="r/pics"></shreddit-post>
<article id="article-aww"><div><div><a href="/r/aww/comments/123/title/">title</a></div></div></article>
<faceplate-tracker id="tracker-aww" data-faceplate-tracking-context='{"subredditName":"aww"}'></faceplate-tracker>
<search-telemetry-tracker id="tracker-pics" data-faceplate-tracking-context='{"subreddit":{"name":"pics"}}'></search-telemetry-tracker>
<div id="legacy-aww" class="thing" data-subreddit="aww"></div>
<div id="legacy-pics" class="search-result" data-subreddit="pics"></div>
<nav><a id="sidebar-aww" href="/r/aww/">r/aww</a></nav>
</body></html>`

func setup(t *testing.T, markup string) (*dom.Document, *Filter) {
	t.Helper()
	doc, err := dom.ParseString(markup)
	require.NoError(t, err)
	f, err := New(doc)
	require.NoError(t, err)
	return doc, f
}

func byID(t *testing.T, doc *dom.Document, id string) *html.Node {
	t.Helper()
	n := doc.GetElementByID(id)
	require.NotNil(t, n, id)
	return n
}

func hiddenIDs(doc *dom.Document) []string {
	nodes, _ := doc.Select("[" + HiddenAttribute + "]")
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		id, _ := dom.Attr(n, "id")
		ids = append(ids, id)
	}
	return ids
}

func TestSweepHidesEveryCategory(t *testing.T) {
	doc, f := setup(t, feed)

	res := f.Sweep(models.NewBlockList([]string{"aww"}))

	assert.ElementsMatch(t,
		[]string{"post-aww", "article-aww", "tracker-aww", "legacy-aww", "sidebar-aww"},
		hiddenIDs(doc))
	assert.Equal(t, 5, res.Hidden())
	assert.Equal(t, 1, res.Categories[CategoryPosts].Hidden)
	assert.Equal(t, 2, res.Categories[CategoryPosts].Scanned)
	assert.Equal(t, 1, res.Categories[CategoryTrackers].Hidden)
	assert.Equal(t, 2, res.Categories[CategoryLinks].Hidden)
	assert.Equal(t, 1, res.Categories[CategoryLegacy].Hidden)

	v, important, ok := dom.InlineStyle(byID(t, doc, "post-aww"), "display")
	assert.True(t, ok)
	assert.True(t, important)
	assert.Equal(t, "none", v)
}

func TestSweepEmptyBlockListIsNoop(t *testing.T) {
	doc, f := setup(t, feed)
	before := doc.String()

	res := f.Sweep(models.NewBlockList(nil))

	assert.Equal(t, 0, res.Hidden())
	assert.Empty(t, res.Categories)
	assert.Equal(t, before, doc.String())
}

func TestSweepIsIdempotent(t *testing.T) {
	doc, f := setup(t, feed)
	bl := models.NewBlockList([]string{"aww", "pics"})

	f.Sweep(bl)
	once := doc.String()

	var records []dom.MutationRecord
	doc.Observe(func(r []dom.MutationRecord) { records = append(records, r...) })
	res := f.Sweep(bl)
	doc.Flush()

	assert.Equal(t, once, doc.String())
	assert.Equal(t, 0, res.Hidden())
	assert.Greater(t, res.Matched(), 0)
	assert.Empty(t, records, "a repeated sweep must not touch the tree")
}

func TestRestoreIsInverse(t *testing.T) {
	doc, f := setup(t, feed)
	before := doc.String()
	bl := models.NewBlockList([]string{"aww", "pics"})

	f.Sweep(bl)
	f.Sweep(bl)
	f.Sweep(bl)

	restored := f.Restore()
	assert.Equal(t, 8, restored)
	assert.Empty(t, hiddenIDs(doc))
	assert.Equal(t, before, doc.String())

	assert.Equal(t, 0, f.Restore())
}

func TestRestoreKeepsHostStyles(t *testing.T) {
	doc, f := setup(t, `<shreddit-post id="p" community-name="aww" style="color: red"></shreddit-post>
<shreddit-post id="q" community-name="pics" style="display: none"></shreddit-post>`)

	f.Sweep(models.NewBlockList([]string{"aww"}))
	f.Restore()

	color, _, ok := dom.InlineStyle(byID(t, doc, "p"), "color")
	assert.True(t, ok)
	assert.Equal(t, "red", color)
	_, _, ok = dom.InlineStyle(byID(t, doc, "p"), "display")
	assert.False(t, ok)

	v, _, ok := dom.InlineStyle(byID(t, doc, "q"), "display")
	assert.True(t, ok, "host styles are not ours to restore")
	assert.Equal(t, "none", v)
}

func TestMalformedHostStyles(t *testing.T) {
	tests := []struct {
		name  string
		style string
		keep  string
	}{
		{"doubled semicolon", "color: red;;", "color: red;"},
		{"stray brace", "color: red; {", "color: red;"},
		{"existing display", "display: block;; color: red", "color: red;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, f := setup(t, `<shreddit-post id="p" community-name="aww" style="`+tt.style+`"></shreddit-post>`)
			bl := models.NewBlockList([]string{"aww"})
			p := byID(t, doc, "p")

			assert.Equal(t, 1, f.Sweep(bl).Hidden())
			for i := 0; i < 3; i++ {
				assert.Zero(t, f.Sweep(bl).Hidden())
			}
			raw, _ := dom.Attr(p, "style")
			assert.Equal(t, 1, strings.Count(raw, "display"), raw)
			assert.True(t, doc.Hidden(p))

			assert.Equal(t, 1, f.Restore(CategoryPosts))
			raw, _ = dom.Attr(p, "style")
			assert.NotContains(t, raw, "display")
			assert.Contains(t, raw, tt.keep)
			assert.False(t, IsHidden(p))
			assert.False(t, doc.Hidden(p))
		})
	}
}

func TestPageHiddenElementsAreNotRestored(t *testing.T) {
	doc, f := setup(t, `<shreddit-post id="p" community-name="aww" style="display: none !important"></shreddit-post>`)

	res := f.Sweep(models.NewBlockList([]string{"aww"}))
	assert.Zero(t, res.Hidden())
	assert.False(t, IsHidden(byID(t, doc, "p")))

	assert.Zero(t, f.Restore())
	v, important, ok := dom.InlineStyle(byID(t, doc, "p"), "display")
	assert.True(t, ok)
	assert.True(t, important)
	assert.Equal(t, "none", v)
}

func TestRestoreSelectedCategories(t *testing.T) {
	doc, f := setup(t, feed)
	f.Sweep(models.NewBlockList([]string{"aww"}))

	assert.Equal(t, 1, f.Restore(CategoryPosts))
	assert.NotContains(t, hiddenIDs(doc), "post-aww")
	assert.Contains(t, hiddenIDs(doc), "article-aww")

	assert.Equal(t, 4, f.Restore(CategoryHidden))
	assert.Empty(t, hiddenIDs(doc))
}

func TestCaseHandling(t *testing.T) {
	markup := `<shreddit-post id="attr" community-name="foobar"></shreddit-post>
<article id="card"><a href="/r/foobar/comments/1/">x</a></article>
<shreddit-post id="exact" community-name="FooBar"></shreddit-post>`
	doc, f := setup(t, markup)

	f.Sweep(models.NewBlockList([]string{"FooBar"}))

	assert.ElementsMatch(t, []string{"card", "exact"}, hiddenIDs(doc))
}

func TestCategoriesAreJudgedByTheirOwnStrategy(t *testing.T) {
	markup := `<shreddit-post id="post" community-name="pics" data-faceplate-tracking-context='{"subredditName":"aww"}'></shreddit-post>`
	doc, f := setup(t, markup)

	f.Sweep(models.NewBlockList([]string{"aww"}))

	assert.Empty(t, hiddenIDs(doc))
}

func TestAncestorPromotion(t *testing.T) {
	doc, f := setup(t, `<article id="card"><section><div><a id="link" href="/r/blockedname/comments/xyz">x</a></div></section></article>`)

	f.Sweep(models.NewBlockList([]string{"blockedname"}))

	assert.Equal(t, []string{"card"}, hiddenIDs(doc))
	assert.False(t, IsHidden(byID(t, doc, "link")))
	assert.True(t, doc.Hidden(byID(t, doc, "link")))
}

func TestPromotionPrefersPostOverNearerTracker(t *testing.T) {
	markup := `<shreddit-post id="post"><faceplate-tracker id="tracker"><a href="/r/aww/">x</a></faceplate-tracker></shreddit-post>`
	doc, f := setup(t, markup)

	f.Sweep(models.NewBlockList([]string{"aww"}))

	assert.Equal(t, []string{"post"}, hiddenIDs(doc))
}

func TestPromotionRoleArticleAndPostContainer(t *testing.T) {
	markup := `<div id="role" role="article"><a href="/r/aww/">x</a></div>
<div id="container" data-testid="post-container"><p><a href="/r/aww/comments/2">y</a></p></div>`
	doc, f := setup(t, markup)

	f.Sweep(models.NewBlockList([]string{"aww"}))

	assert.ElementsMatch(t, []string{"role", "container"}, hiddenIDs(doc))
}

func TestSweepRehidesAfterRepaint(t *testing.T) {
	doc, f := setup(t, feed)
	bl := models.NewBlockList([]string{"aww"})
	f.Sweep(bl)

	post := byID(t, doc, "post-aww")
	doc.SetAttribute(post, "style", "color: blue")

	res := f.Sweep(bl)
	assert.Equal(t, 1, res.Hidden())
	v, _, _ := dom.InlineStyle(post, "display")
	assert.Equal(t, "none", v)
}

func TestSweepSeesLateInsertions(t *testing.T) {
	doc, f := setup(t, feed)
	bl := models.NewBlockList([]string{"funny"})
	assert.Equal(t, 0, f.Sweep(bl).Hidden())

	post := doc.CreateElement("shreddit-post")
	doc.SetAttribute(post, "community-name", "funny")
	doc.AppendChild(doc.Body(), post)

	assert.Equal(t, 1, f.Sweep(bl).Hidden())
}

func TestNewRejectsInvalidSelectors(t *testing.T) {
	doc, err := dom.ParseString(feed)
	require.NoError(t, err)

	_, err = New(doc, WithCategories(Category{Name: "broken", Selector: "a["}))
	assert.Error(t, err)

	_, err = New(doc, WithCardTiers("article["))
	assert.Error(t, err)
}
