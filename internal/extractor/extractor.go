// Package extractor resolves which community a card element belongs to.
//
// The host page encodes the community redundantly and inconsistently: custom
// element attributes, JSON tracking blobs, legacy data attributes and plain
// links. Each encoding is read by its own Strategy, a pure function of the
// element, and strategies are tried independently in a fixed priority order.
package extractor

import (
	"golang.org/x/net/html"

	"github.com/bnema/subreddit-filter/internal/models"
)

// Result is a resolved community
type Result struct {
	Community string
	// FoldCase marks results that must be compared case-insensitively.
	FoldCase bool
}

// BlockedBy reports whether bl blocks the resolved community
func (r Result) BlockedBy(bl models.BlockList) bool {
	if r.Community == "" {
		return false
	}
	if r.FoldCase {
		return bl.ContainsFold(r.Community)
	}
	return bl.Contains(r.Community)
}

// Strategy reads the community from one encoding
type Strategy interface {
	Name() string
	Extract(n *html.Node) (Result, bool)
}

// Match is a result together with the strategy that produced it
type Match struct {
	Result
	Strategy string
}

// Extractor tries its strategies in priority order
type Extractor struct {
	strategies []Strategy
}

// New creates an extractor. Without strategies it uses Default().
func New(strategies ...Strategy) *Extractor {
	if len(strategies) == 0 {
		strategies = Default()
	}
	return &Extractor{strategies: strategies}
}

// Default returns the strategies in priority order: custom element
// attributes, tracking context, link path, legacy attribute
func Default() []Strategy {
	return []Strategy{
		AttributeStrategy{},
		NewTrackingStrategy(DefaultTrackingCacheSize),
		LinkStrategy{},
		LegacyStrategy{},
	}
}

// Strategies returns the configured strategies
func (e *Extractor) Strategies() []Strategy {
	return e.strategies
}

// Extract returns the first non-empty result
func (e *Extractor) Extract(n *html.Node) (Match, bool) {
	if n == nil || n.Type != html.ElementNode {
		return Match{}, false
	}
	for _, s := range e.strategies {
		if r, ok := s.Extract(n); ok && r.Community != "" {
			return Match{Result: r, Strategy: s.Name()}, true
		}
	}
	return Match{}, false
}
