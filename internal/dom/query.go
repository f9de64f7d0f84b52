package dom

import (
	"fmt"
	"sync/atomic"

	"github.com/andybalholm/cascadia"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/net/html"
)

// DefaultSelectorCacheSize bounds the number of compiled selectors kept
const DefaultSelectorCacheSize = 256

// SelectorCache keeps compiled cascadia selectors keyed by their source.
// A size <= 0 disables caching.
type SelectorCache struct {
	lru    *lru.Cache[string, cascadia.Matcher]
	hits   uint64
	misses uint64
}

// NewSelectorCache creates a cache holding up to size selectors
func NewSelectorCache(size int) *SelectorCache {
	c := &SelectorCache{}
	if size <= 0 {
		return c
	}
	cache, err := lru.New[string, cascadia.Matcher](size)
	if err != nil {
		return c
	}
	c.lru = cache
	return c
}

// Compile returns the compiled selector group for sel
func (c *SelectorCache) Compile(sel string) (cascadia.Matcher, error) {
	if c.lru != nil {
		if s, ok := c.lru.Get(sel); ok {
			atomic.AddUint64(&c.hits, 1)
			return s, nil
		}
	}
	atomic.AddUint64(&c.misses, 1)

	s, err := cascadia.ParseGroup(sel)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", sel, err)
	}
	if c.lru != nil {
		c.lru.Add(sel, s)
	}
	return s, nil
}

// Len returns the number of cached selectors
func (c *SelectorCache) Len() int {
	if c.lru == nil {
		return 0
	}
	return c.lru.Len()
}

// Stats returns cumulative hit and miss counters
func (c *SelectorCache) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses)
}

// Selectors returns the document's selector cache
func (d *Document) Selectors() *SelectorCache {
	return d.selectors
}

// QueryAll returns every element matching m, in document order. The result
// is a snapshot: later mutations do not change it.
func (d *Document) QueryAll(m cascadia.Matcher) []*html.Node {
	return cascadia.QueryAll(d.root, m)
}

// Select compiles sel and returns every matching element
func (d *Document) Select(sel string) ([]*html.Node, error) {
	s, err := d.selectors.Compile(sel)
	if err != nil {
		return nil, err
	}
	return d.QueryAll(s), nil
}

// Closest returns n or its nearest ancestor matching m
func Closest(n *html.Node, m cascadia.Matcher) *html.Node {
	for c := n; c != nil; c = c.Parent {
		if c.Type == html.ElementNode && m.Match(c) {
			return c
		}
	}
	return nil
}
