package compiler

import (
	"strings"
	"testing"

	"github.com/andybalholm/cascadia"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/subreddit-filter/internal/models"
)

func TestCompileEmpty(t *testing.T) {
	c := New()
	assert.Equal(t, "", c.Compile(models.NewBlockList(nil)))
	assert.Equal(t, 0, c.Stats().Compiled)
}

func TestCompileSingleCommunity(t *testing.T) {
	c := New()
	css := c.Compile(models.NewBlockList([]string{"aww"}))

	expected := `shreddit-post[subreddit-prefixed-name="r/aww"], ` +
		`shreddit-post[community-name="aww"], ` +
		`[subreddit-name="aww"], ` +
		`article:has(a[href*="/r/aww/"]), ` +
		`div[data-testid="post-container"]:has(a[href*="/r/aww/"]), ` +
		`faceplate-tracker:has(a[href*="/r/aww/"]) { display: none !important; }`
	assert.Equal(t, expected, css)
	assert.Equal(t, 1, c.Stats().Compiled)
}

func TestCompileOneRulePerCommunity(t *testing.T) {
	c := New()
	css := c.Compile(models.NewBlockList([]string{"aww", "pics", "funny"}))

	lines := strings.Split(css, "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		assert.True(t, strings.HasSuffix(line, "{ "+Declaration+" }"))
	}
}

func TestCompileEscapesQuotes(t *testing.T) {
	c := New()
	rules := c.Rules(models.NewBlockList([]string{`we"ird`}))
	require.Len(t, rules, 1)
	assert.Contains(t, rules[0].Selectors[1], `community-name="we\"ird"`)

	// The escaped selector still compiles and matches the raw value.
	_, err := cascadia.ParseGroup(strings.Join(rules[0].Selectors, ", "))
	assert.NoError(t, err)
}

func TestCompileSkipsUnsafeNamesOnly(t *testing.T) {
	c := New()
	css := c.Compile(models.NewBlockList([]string{"aww", "bad</style>", "line\nbreak", "pics"}))

	lines := strings.Split(css, "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"aww"`)
	assert.Contains(t, lines[1], `"pics"`)

	stats := c.Stats()
	assert.Equal(t, 2, stats.Compiled)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 2, stats.SkipReasons[SkipUnsafeName])
}

func TestCompileSkipsInvalidSelectors(t *testing.T) {
	broken := Strategy{
		Name: "broken",
		Build: func(q string) []string {
			if q == "broken" {
				return []string{"shreddit-post["}
			}
			return []string{`[community-name="` + q + `"]`}
		},
	}
	c := New(WithStrategies(broken))
	css := c.Compile(models.NewBlockList([]string{"broken", "aww"}))

	assert.Equal(t, `[community-name="aww"] { display: none !important; }`, css)
	assert.Equal(t, 1, c.Stats().SkipReasons[SkipInvalidSelector])
}

func TestStatsResetBetweenCompilations(t *testing.T) {
	c := New()
	c.Compile(models.NewBlockList([]string{"a<b"}))
	assert.Equal(t, 1, c.Stats().Skipped)

	c.Compile(models.NewBlockList([]string{"aww"}))
	assert.Equal(t, 0, c.Stats().Skipped)
	assert.Equal(t, 1, c.Stats().Compiled)
}

func TestEscape(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{"plain", "aww", "aww", true},
		{"double quote", `a"b`, `a\"b`, true},
		{"backslash", `a\b`, `a\\b`, true},
		{"single quote", "a'b", "a'b", true},
		{"empty", "", "", false},
		{"blank", "   ", "", false},
		{"tag", "a<b", "", false},
		{"control", "a\tb", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Escape(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}
