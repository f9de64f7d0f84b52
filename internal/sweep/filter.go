// Package sweep hides candidate cards whose community is blocked and
// restores them once it no longer is.
package sweep

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/bnema/subreddit-filter/internal/dom"
	"github.com/bnema/subreddit-filter/internal/log"
	"github.com/bnema/subreddit-filter/internal/models"
)

// Filter runs sweeps over one document. Every call queries the live tree;
// no element list is kept between calls.
type Filter struct {
	doc        *dom.Document
	categories []Category
	tiers      []cascadia.Matcher
}

// CategoryResult counts the work done for one category
type CategoryResult struct {
	Scanned int
	Matched int
	Hidden  int
}

// Result summarizes one sweep
type Result struct {
	Categories map[string]CategoryResult
}

// Hidden returns the number of elements newly hidden by the sweep
func (r Result) Hidden() int {
	total := 0
	for _, c := range r.Categories {
		total += c.Hidden
	}
	return total
}

// Matched returns the number of candidates resolved to a blocked community
func (r Result) Matched() int {
	total := 0
	for _, c := range r.Categories {
		total += c.Matched
	}
	return total
}

// Option configures a Filter
type Option func(*Filter) error

// WithCategories replaces the default categories
func WithCategories(categories ...Category) Option {
	return func(f *Filter) error {
		f.categories = categories
		return nil
	}
}

// WithCardTiers replaces the card selectors used for link promotion
func WithCardTiers(tiers ...string) Option {
	return func(f *Filter) error {
		f.tiers = nil
		for _, sel := range tiers {
			m, err := cascadia.ParseGroup(sel)
			if err != nil {
				return fmt.Errorf("card selector %q: %w", sel, err)
			}
			f.tiers = append(f.tiers, m)
		}
		return nil
	}
}

// New creates a filter for doc
func New(doc *dom.Document, opts ...Option) (*Filter, error) {
	f := &Filter{doc: doc, categories: DefaultCategories()}
	if err := WithCardTiers(DefaultCardTiers...)(f); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	for i := range f.categories {
		m, err := doc.Selectors().Compile(f.categories[i].Selector)
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", f.categories[i].Name, err)
		}
		f.categories[i].matcher = m
	}
	return f, nil
}

// Categories returns the configured categories
func (f *Filter) Categories() []Category {
	return f.categories
}

// Sweep hides every candidate resolved to a community in bl. It does nothing
// for an empty block-list. Each category is judged by its own strategy only.
func (f *Filter) Sweep(bl models.BlockList) Result {
	res := Result{Categories: make(map[string]CategoryResult, len(f.categories))}
	if bl.Empty() {
		return res
	}

	for _, c := range f.categories {
		if c.Strategy == nil {
			continue
		}
		var cr CategoryResult
		for _, n := range f.doc.QueryAll(c.matcher) {
			cr.Scanned++
			r, ok := c.Strategy.Extract(n)
			if !ok || !r.BlockedBy(bl) {
				continue
			}
			cr.Matched++
			target := n
			if c.Promote {
				target = f.card(n)
			}
			if f.hide(target) {
				cr.Hidden++
			}
		}
		res.Categories[c.Name] = cr
	}

	log.Debug(map[string]any{"hidden": res.Hidden(), "matched": res.Matched()}, "sweep finished")
	return res
}

// Restore clears the forced-hidden style from every element of the given
// categories that a sweep hid, and returns how many were restored. Without
// categories every configured category is restored.
func (f *Filter) Restore(categories ...string) int {
	wanted := make(map[string]bool, len(categories))
	for _, name := range categories {
		wanted[name] = true
	}

	restored := 0
	for _, c := range f.categories {
		if len(wanted) > 0 && !wanted[c.Name] {
			continue
		}
		for _, n := range f.doc.QueryAll(c.matcher) {
			if f.unhide(n) {
				restored++
			}
		}
	}
	return restored
}

// card returns the nearest card around n, or n when there is none
func (f *Filter) card(n *html.Node) *html.Node {
	if n.Parent == nil {
		return n
	}
	for _, tier := range f.tiers {
		if c := dom.Closest(n.Parent, tier); c != nil {
			return c
		}
	}
	return n
}

// hide forces n out of display and reports whether it was visible before.
// An element the page itself forced out of display is left unmarked so that
// Restore never shows it.
func (f *Filter) hide(n *html.Node) bool {
	if forcedHidden(n) {
		return false
	}
	f.doc.SetStyleProperty(n, "display", "none", true)
	f.doc.SetAttribute(n, HiddenAttribute, "")
	return true
}

func (f *Filter) unhide(n *html.Node) bool {
	if !IsHidden(n) {
		return false
	}
	f.doc.RemoveStyleProperty(n, "display")
	f.doc.RemoveAttribute(n, HiddenAttribute)
	return true
}

// IsHidden reports whether n was hidden by a sweep
func IsHidden(n *html.Node) bool {
	return dom.HasAttr(n, HiddenAttribute)
}

// forcedHidden checks the style itself, with or without the marker: the page
// may have rewritten the style attribute of a marked element.
func forcedHidden(n *html.Node) bool {
	v, important, ok := dom.InlineStyle(n, "display")
	return ok && important && strings.EqualFold(v, "none")
}
