package extractor

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/net/html"

	"github.com/bnema/subreddit-filter/internal/dom"
)

// DefaultTrackingCacheSize bounds the number of parsed tracking contexts kept
const DefaultTrackingCacheSize = 1024

// TrackingStrategy reads the community from the JSON tracking context of
// tracker elements. Feeds repeat the same context on many elements, so
// parsed values are cached by their raw text. Matching is case-sensitive.
type TrackingStrategy struct {
	cache  *lru.Cache[string, string]
	hits   uint64
	misses uint64
}

// NewTrackingStrategy creates the strategy. A size <= 0 disables the cache.
func NewTrackingStrategy(size int) *TrackingStrategy {
	s := &TrackingStrategy{}
	if size > 0 {
		if cache, err := lru.New[string, string](size); err == nil {
			s.cache = cache
		}
	}
	return s
}

// Name implements Strategy
func (s *TrackingStrategy) Name() string { return "tracking" }

// Extract implements Strategy
func (s *TrackingStrategy) Extract(n *html.Node) (Result, bool) {
	raw, ok := dom.Attr(n, TrackingAttribute)
	if !ok || raw == "" {
		return Result{}, false
	}
	name := s.lookup(raw)
	if name == "" {
		return Result{}, false
	}
	return Result{Community: name}, true
}

func (s *TrackingStrategy) lookup(raw string) string {
	if s.cache == nil {
		return FromTrackingContext(raw)
	}
	if name, ok := s.cache.Get(raw); ok {
		atomic.AddUint64(&s.hits, 1)
		return name
	}
	atomic.AddUint64(&s.misses, 1)
	name := FromTrackingContext(raw)
	s.cache.Add(raw, name)
	return name
}

// Stats returns cumulative cache hit and miss counters
func (s *TrackingStrategy) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&s.hits), atomic.LoadUint64(&s.misses)
}
