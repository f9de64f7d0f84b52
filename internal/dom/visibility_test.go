package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const styledPage = `<html><head><style>shreddit-post[community-name="aww"] { display: none !important; }</style></head><body>
<shreddit-post community-name="aww"><a href="/r/aww/">in</a></shreddit-post>
<shreddit-post community-name="pics"></shreddit-post>
<div style="display:none"><span>inline</span></div>
</body></html>`

func TestHidden(t *testing.T) {
	doc := mustParse(t, styledPage)

	posts, err := doc.Select("shreddit-post")
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.True(t, doc.Hidden(posts[0]))
	assert.False(t, doc.Hidden(posts[1]))

	links, err := doc.Select("a")
	require.NoError(t, err)
	assert.True(t, doc.Hidden(links[0]), "descendant of a hidden card")

	spans, err := doc.Select("span")
	require.NoError(t, err)
	assert.True(t, doc.Hidden(spans[0]))
}

func TestVisibleElements(t *testing.T) {
	doc := mustParse(t, styledPage)
	m, err := doc.Selectors().Compile("shreddit-post")
	require.NoError(t, err)

	visible := doc.VisibleElements(m)
	require.Len(t, visible, 1)
	v, _ := Attr(visible[0], "community-name")
	assert.Equal(t, "pics", v)
}

func TestStripHidden(t *testing.T) {
	doc := mustParse(t, styledPage)

	assert.Equal(t, 2, doc.StripHidden())

	posts, err := doc.Select("shreddit-post")
	require.NoError(t, err)
	assert.Len(t, posts, 1)
	spans, err := doc.Select("span")
	require.NoError(t, err)
	assert.Empty(t, spans)
	styles, err := doc.Select("style")
	require.NoError(t, err)
	assert.Len(t, styles, 1)
}
