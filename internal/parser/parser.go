package parser

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/bnema/subreddit-filter/internal/models"
)

// Parser parses plain-text block-lists: one community per line, with
// optional "r/" or "/r/" prefixes and "!" or "#" comments
type Parser struct {
	stats Stats
	seen  map[string]struct{}
}

// Stats tracks parsing statistics
type Stats struct {
	Total       int
	Accepted    int
	Comments    int
	Skipped     int
	SkipReasons map[string]int // Detailed breakdown of skipped lines
}

// SkipReason constants
const (
	SkipInvalidName = "invalid-name"
	SkipDuplicate   = "duplicate"
	SkipEmptyName   = "empty-name"
)

// reCommunityName matches the characters the host platform allows in names
var reCommunityName = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_-]*$`)

// New creates a new parser
func New() *Parser {
	return &Parser{
		stats: Stats{
			SkipReasons: make(map[string]int),
		},
		seen: make(map[string]struct{}),
	}
}

// skip records a skipped line with reason
func (p *Parser) skip(reason string) {
	p.stats.Skipped++
	p.stats.SkipReasons[reason]++
}

// Stats returns parsing statistics
func (p *Parser) Stats() Stats {
	return p.stats
}

// Parse reads block-list content and returns normalized community names.
// Names already returned by an earlier Parse call on the same parser count
// as duplicates.
func (p *Parser) Parse(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		p.stats.Total++

		if isComment(line) {
			p.stats.Comments++
			continue
		}

		// Trailing comments
		if idx := strings.IndexAny(line, "#!"); idx != -1 {
			line = strings.TrimSpace(line[:idx])
		}

		name := models.NormalizeCommunity(line)
		switch {
		case name == "":
			p.skip(SkipEmptyName)
			continue
		case !ValidName(name):
			p.skip(SkipInvalidName)
			continue
		}

		if _, dup := p.seen[name]; dup {
			p.skip(SkipDuplicate)
			continue
		}
		p.seen[name] = struct{}{}
		p.stats.Accepted++
		names = append(names, name)
	}

	return names, scanner.Err()
}

// ValidName reports whether name only uses characters valid in a community name
func ValidName(name string) bool {
	return reCommunityName.MatchString(name)
}

func isComment(line string) bool {
	return strings.HasPrefix(line, "!") || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "[")
}
