// Package compiler turns a block-list into suppression stylesheets: one CSS
// rule per community whose selector group OR-combines every known way the
// host page marks a card with its community.
package compiler

import (
	"strings"

	"github.com/andybalholm/cascadia"

	"github.com/bnema/subreddit-filter/internal/log"
	"github.com/bnema/subreddit-filter/internal/models"
)

// Declaration is the style every suppression rule applies
const Declaration = "display: none !important;"

// Rule is the suppression rule for one community
type Rule struct {
	Community string
	Selectors []string
}

// CSS renders the rule as a single group selector
func (r Rule) CSS() string {
	return strings.Join(r.Selectors, ", ") + " { " + Declaration + " }"
}

// Strategy builds the selectors of one matching strategy. quoted is the
// community name escaped for use inside a double-quoted CSS string.
type Strategy struct {
	Name string
	// Structural strategies rely on :has() and cannot be exported to
	// engines without relational selectors.
	Structural bool
	Build      func(quoted string) []string
}

// DefaultStrategies lists every selector strategy, order-independent
var DefaultStrategies = []Strategy{
	{
		Name: "prefixed-name",
		Build: func(q string) []string {
			return []string{`shreddit-post[subreddit-prefixed-name="` + models.CommunityPrefix + q + `"]`}
		},
	},
	{
		Name: "community-name",
		Build: func(q string) []string {
			return []string{`shreddit-post[community-name="` + q + `"]`}
		},
	},
	{
		Name: "subreddit-name",
		Build: func(q string) []string {
			return []string{`[subreddit-name="` + q + `"]`}
		},
	},
	{
		Name:       "card-link",
		Structural: true,
		Build: func(q string) []string {
			link := `a[href*="/` + models.CommunityPrefix + q + `/"]`
			return []string{
				`article:has(` + link + `)`,
				`div[data-testid="post-container"]:has(` + link + `)`,
			}
		},
	},
	{
		Name:       "tracker-link",
		Structural: true,
		Build: func(q string) []string {
			return []string{`faceplate-tracker:has(a[href*="/` + models.CommunityPrefix + q + `/"])`}
		},
	},
}

// Compiler converts block-lists into suppression rules
type Compiler struct {
	strategies []Strategy
	stats      Stats
}

// Stats tracks statistics of the last compilation
type Stats struct {
	Compiled    int
	Skipped     int
	SkipReasons map[string]int
}

// Skip reason constants
const (
	SkipUnsafeName      = "unsafe-name"
	SkipInvalidSelector = "invalid-selector"
)

// Option configures a Compiler
type Option func(*Compiler)

// WithStrategies replaces the default selector strategies
func WithStrategies(strategies ...Strategy) Option {
	return func(c *Compiler) {
		c.strategies = strategies
	}
}

// New creates a new compiler
func New(opts ...Option) *Compiler {
	c := &Compiler{strategies: DefaultStrategies}
	for _, opt := range opts {
		opt(c)
	}
	c.reset()
	return c
}

func (c *Compiler) reset() {
	c.stats = Stats{SkipReasons: make(map[string]int)}
}

// skip records a skipped community with reason
func (c *Compiler) skip(community, reason string) {
	c.stats.Skipped++
	c.stats.SkipReasons[reason]++
	log.Warn(map[string]any{"community": community, "reason": reason}, "skipping suppression rule")
}

// Stats returns statistics of the last compilation
func (c *Compiler) Stats() Stats {
	return c.stats
}

// Rules builds one validated rule per community. A community whose rule
// cannot be built safely is skipped; the others are still compiled.
func (c *Compiler) Rules(bl models.BlockList) []Rule {
	c.reset()
	if bl.Empty() {
		return nil
	}

	rules := make([]Rule, 0, bl.Len())
	for _, community := range bl.Names() {
		quoted, ok := Escape(community)
		if !ok {
			c.skip(community, SkipUnsafeName)
			continue
		}

		var selectors []string
		for _, s := range c.strategies {
			selectors = append(selectors, s.Build(quoted)...)
		}
		if len(selectors) == 0 {
			continue
		}

		if _, err := cascadia.ParseGroup(strings.Join(selectors, ", ")); err != nil {
			c.skip(community, SkipInvalidSelector)
			continue
		}

		c.stats.Compiled++
		rules = append(rules, Rule{Community: community, Selectors: selectors})
	}
	return rules
}

// Compile returns the stylesheet for bl, or an empty string when nothing is
// blocked
func (c *Compiler) Compile(bl models.BlockList) string {
	rules := c.Rules(bl)
	if len(rules) == 0 {
		return ""
	}
	lines := make([]string, len(rules))
	for i, r := range rules {
		lines[i] = r.CSS()
	}
	return strings.Join(lines, "\n")
}
