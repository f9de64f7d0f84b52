package models

import (
	"regexp"
	"strings"
)

// BlockListKey is the storage key carrying the blocked community names
const BlockListKey = "blockedCommunities"

// CommunityPrefix is the path token that precedes a community name
const CommunityPrefix = "r/"

var reLeadingPrefix = regexp.MustCompile(`(?i)^/?r/`)

// NormalizeCommunity strips a leading "/r/" or "r/" (any case), a trailing
// slash and surrounding whitespace
func NormalizeCommunity(raw string) string {
	s := strings.TrimSpace(raw)
	s = reLeadingPrefix.ReplaceAllString(s, "")
	s = strings.TrimSuffix(s, "/")
	return strings.TrimSpace(s)
}

// BlockList is an immutable set of blocked community names
type BlockList struct {
	names  []string
	exact  map[string]struct{}
	folded map[string]struct{}
}

// NewBlockList normalizes names, drops empty entries and duplicates and
// keeps the first-seen order
func NewBlockList(names []string) BlockList {
	bl := BlockList{
		exact:  make(map[string]struct{}, len(names)),
		folded: make(map[string]struct{}, len(names)),
	}
	for _, raw := range names {
		name := NormalizeCommunity(raw)
		if name == "" {
			continue
		}
		if _, ok := bl.exact[name]; ok {
			continue
		}
		bl.exact[name] = struct{}{}
		bl.folded[strings.ToLower(name)] = struct{}{}
		bl.names = append(bl.names, name)
	}
	return bl
}

// Names returns a copy of the blocked names
func (b BlockList) Names() []string {
	out := make([]string, len(b.names))
	copy(out, b.names)
	return out
}

// Len returns the number of blocked names
func (b BlockList) Len() int {
	return len(b.names)
}

// Empty reports whether nothing is blocked
func (b BlockList) Empty() bool {
	return len(b.names) == 0
}

// Contains reports an exact, case-sensitive match
func (b BlockList) Contains(name string) bool {
	_, ok := b.exact[name]
	return ok
}

// ContainsFold reports a case-insensitive match
func (b BlockList) ContainsFold(name string) bool {
	_, ok := b.folded[strings.ToLower(name)]
	return ok
}

// Equal reports whether both lists block the same names
func (b BlockList) Equal(other BlockList) bool {
	if len(b.names) != len(other.names) {
		return false
	}
	for name := range b.exact {
		if _, ok := other.exact[name]; !ok {
			return false
		}
	}
	return true
}

// ValueChange carries the new value of one storage key
type ValueChange struct {
	NewValue []string
}

// StorageChange is a change notification keyed by storage key
type StorageChange map[string]ValueChange

// BlockList returns the new block-list if the change carries one
func (c StorageChange) BlockList() (BlockList, bool) {
	v, ok := c[BlockListKey]
	if !ok {
		return BlockList{}, false
	}
	return NewBlockList(v.NewValue), true
}
