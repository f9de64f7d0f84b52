package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bnema/subreddit-filter/internal/models"
)

// DefaultDomains restricts exported rules to the host platform
var DefaultDomains = []string{"*reddit.com"}

// WebKitRules converts the rules for bl into WebKit content blocker rules.
// Structural strategies are left out: content blocker selectors cannot use
// :has().
func (c *Compiler) WebKitRules(bl models.BlockList, domains []string) []models.WebKitRule {
	if domains == nil {
		domains = DefaultDomains
	}
	var out []models.WebKitRule
	for _, r := range c.Rules(bl) {
		quoted, _ := Escape(r.Community)
		var flat []string
		for _, s := range c.strategies {
			if s.Structural {
				continue
			}
			flat = append(flat, s.Build(quoted)...)
		}
		if len(flat) == 0 {
			continue
		}
		out = append(out, models.WebKitRule{
			Trigger: models.WebKitTrigger{
				URLFilter: ".*",
				IfDomain:  domains,
			},
			Action: models.WebKitAction{
				Type:     models.ActionCSSDisplayNone,
				Selector: strings.Join(flat, ", "),
			},
		})
	}
	return out
}

// MaxRulesPerFile is Safari/WebKit's limit per content blocker
const MaxRulesPerFile = 50000

// Part is one content blocker file
type Part struct {
	Name  string
	Rules []models.WebKitRule
}

// Splitter cuts a rule list into content blockers of at most maxRules rules
type Splitter struct {
	maxRules int
}

// NewSplitter creates a splitter. maxRules <= 0 selects MaxRulesPerFile.
func NewSplitter(maxRules int) *Splitter {
	if maxRules <= 0 {
		maxRules = MaxRulesPerFile
	}
	return &Splitter{maxRules: maxRules}
}

// Split returns the parts in rule order. A list that fits in one part keeps
// baseName; otherwise parts are named baseName-partN starting at 1.
func (s *Splitter) Split(rules []models.WebKitRule, baseName string) []Part {
	if len(rules) <= s.maxRules {
		return []Part{{Name: baseName, Rules: rules}}
	}

	parts := make([]Part, 0, (len(rules)+s.maxRules-1)/s.maxRules)
	for chunk := range slices.Chunk(rules, s.maxRules) {
		parts = append(parts, Part{
			Name:  fmt.Sprintf("%s-part%d", baseName, len(parts)+1),
			Rules: chunk,
		})
	}
	return parts
}

// Deduplicate removes duplicate rules based on their trigger and action
func Deduplicate(rules []models.WebKitRule) []models.WebKitRule {
	seen := make(map[string]bool)
	result := make([]models.WebKitRule, 0, len(rules))

	for _, r := range rules {
		key := fmt.Sprintf("%s|%s|%s|%s",
			r.Trigger.URLFilter,
			strings.Join(r.Trigger.IfDomain, ","),
			r.Action.Type,
			r.Action.Selector,
		)

		if !seen[key] {
			seen[key] = true
			result = append(result, r)
		}
	}

	return result
}
