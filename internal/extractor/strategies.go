package extractor

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/bnema/subreddit-filter/internal/dom"
)

// CommunityAttributes are the attribute names custom post elements have used
// for the community, in lookup order
var CommunityAttributes = []string{
	"subreddit-prefixed-name",
	"community-name",
	"subredditprefixedname",
	"subreddit-name",
}

// TrackingAttribute holds the JSON tracking context of tracker elements
const TrackingAttribute = "data-faceplate-tracking-context"

// LegacyAttribute holds the community on old-style listing rows
const LegacyAttribute = "data-subreddit"

// AttributeStrategy reads the community attributes of custom post elements.
// Matching is case-sensitive.
type AttributeStrategy struct{}

// Name implements Strategy
func (AttributeStrategy) Name() string { return "attribute" }

// Extract implements Strategy
func (AttributeStrategy) Extract(n *html.Node) (Result, bool) {
	for _, key := range CommunityAttributes {
		v, ok := dom.Attr(n, key)
		if !ok {
			continue
		}
		if name := FromAttribute(v); name != "" {
			return Result{Community: name}, true
		}
	}
	return Result{}, false
}

// LinkStrategy reads the community from the href of an anchor.
// Matching is case-insensitive.
type LinkStrategy struct{}

// Name implements Strategy
func (LinkStrategy) Name() string { return "link" }

// Extract implements Strategy
func (LinkStrategy) Extract(n *html.Node) (Result, bool) {
	if n.DataAtom != atom.A {
		return Result{}, false
	}
	href, ok := dom.Attr(n, "href")
	if !ok {
		return Result{}, false
	}
	if name := FromPath(href); name != "" {
		return Result{Community: name, FoldCase: true}, true
	}
	return Result{}, false
}

// LegacyStrategy reads the flat data attribute of old-style markup.
// Matching is case-sensitive.
type LegacyStrategy struct{}

// Name implements Strategy
func (LegacyStrategy) Name() string { return "legacy" }

// Extract implements Strategy
func (LegacyStrategy) Extract(n *html.Node) (Result, bool) {
	v, ok := dom.Attr(n, LegacyAttribute)
	if !ok {
		return Result{}, false
	}
	if name := strings.TrimSpace(v); name != "" {
		return Result{Community: name}, true
	}
	return Result{}, false
}
