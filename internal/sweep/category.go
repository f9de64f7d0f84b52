package sweep

import (
	"github.com/andybalholm/cascadia"

	"github.com/bnema/subreddit-filter/internal/extractor"
)

// HiddenAttribute marks elements hidden by a sweep so that Restore only
// undoes its own work
const HiddenAttribute = "data-subfilter-hidden"

// Category is one kind of candidate element together with the strategy that
// resolves its community
type Category struct {
	Name     string
	Selector string
	// Strategy is nil for restore-only categories.
	Strategy extractor.Strategy
	// Promote hides the nearest card around the element instead of the
	// element itself.
	Promote bool

	matcher cascadia.Matcher
}

// Category names
const (
	CategoryPosts    = "posts"
	CategoryTrackers = "trackers"
	CategoryLinks    = "links"
	CategoryLegacy   = "legacy"
	CategoryHidden   = "hidden"
)

// DefaultCategories returns the candidate categories of the host page
func DefaultCategories() []Category {
	return []Category{
		{
			Name:     CategoryPosts,
			Selector: "shreddit-post",
			Strategy: extractor.AttributeStrategy{},
		},
		{
			Name:     CategoryTrackers,
			Selector: "faceplate-tracker, search-telemetry-tracker",
			Strategy: extractor.NewTrackingStrategy(extractor.DefaultTrackingCacheSize),
		},
		{
			Name:     CategoryLinks,
			Selector: "a[href]",
			Strategy: extractor.LinkStrategy{},
			Promote:  true,
		},
		{
			Name:     CategoryLegacy,
			Selector: ".thing[data-subreddit], .search-result[data-subreddit]",
			Strategy: extractor.LegacyStrategy{},
		},
		{
			Name:     CategoryHidden,
			Selector: "[" + HiddenAttribute + "]",
		},
	}
}

// DefaultCardTiers lists the selectors recognized as cards around a link.
// The nearest ancestor of the first tier that has a match wins.
var DefaultCardTiers = []string{
	"shreddit-post",
	`article, [role="article"], [data-testid="post-container"]`,
	"faceplate-tracker, search-telemetry-tracker",
}
