package extractor

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/bnema/subreddit-filter/internal/models"
)

var (
	// reCommunityPath matches a community path and captures the name. The
	// capture stops at the first character that cannot be part of a name,
	// so "/r/aww/comments/1", "/r/aww?x" and "/r/aww" all yield "aww".
	reCommunityPath = regexp.MustCompile(`(?i)^/?r/([A-Za-z0-9_-]+)`)

	// reTrackingField finds a community-like field in a context that is not
	// valid JSON. It tolerates a nested {"name": ...} object and a prefixed
	// value.
	reTrackingField = regexp.MustCompile(
		`(?i)(?:subreddit(?:_?prefixed)?(?:_?name)?|community_?name)["'\s:=]+` +
			`(?:\{\s*["']?name["']?["'\s:=]+)?` +
			`(?:/?r/)?([A-Za-z0-9_-]+)`)

	// unescaper undoes JSON string escaping left behind after HTML entities
	// have been decoded.
	unescaper = strings.NewReplacer(
		`\"`, `"`,
		`\/`, `/`,
		`\u0022`, `"`,
		`\u002F`, `/`,
		`\u002f`, `/`,
	)
)

// trackingFlatFields are the flat JSON fields that may carry the community,
// in lookup order
var trackingFlatFields = []string{"subredditName", "subreddit", "communityName"}

// FromAttribute normalizes a community attribute value such as "r/aww"
func FromAttribute(s string) string {
	return models.NormalizeCommunity(s)
}

// FromPath returns the community named by a link such as "/r/aww/comments/1"
// or "https://www.reddit.com/r/aww/". Only the path is inspected.
func FromPath(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	path := href
	if u, err := url.Parse(href); err == nil {
		path = u.Path
	}
	m := reCommunityPath.FindStringSubmatch(path)
	if m == nil {
		return ""
	}
	return m[1]
}

// FromTrackingContext returns the community named by a tracking context.
// Structured parsing is tried first; a context that is not a JSON object is
// scanned with a regular expression instead.
func FromTrackingContext(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err == nil {
		return fromPayload(payload)
	}
	return scanTrackingContext(raw)
}

func fromPayload(payload map[string]any) string {
	if sub, ok := payload["subreddit"].(map[string]any); ok {
		if name, ok := sub["name"].(string); ok {
			if name = models.NormalizeCommunity(name); name != "" {
				return name
			}
		}
	}
	for _, key := range trackingFlatFields {
		if v, ok := payload[key].(string); ok {
			if name := models.NormalizeCommunity(v); name != "" {
				return name
			}
		}
	}
	return ""
}

func scanTrackingContext(raw string) string {
	text := unescaper.Replace(html.UnescapeString(raw))
	m := reTrackingField.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}
