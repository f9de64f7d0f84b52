package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCommunity(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"bare name", "aww", "aww"},
		{"prefixed", "r/aww", "aww"},
		{"slash prefixed", "/r/aww", "aww"},
		{"upper prefix", "/R/aww", "aww"},
		{"trailing slash", "r/aww/", "aww"},
		{"whitespace", "  r/aww  ", "aww"},
		{"keeps case", "FooBar", "FooBar"},
		{"only prefix", "r/", ""},
		{"prefix inside name kept", "bar/r/aww", "bar/r/aww"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeCommunity(tt.input))
		})
	}
}

func TestNewBlockList(t *testing.T) {
	bl := NewBlockList([]string{"aww", "r/aww", "", "  ", "FooBar", "/r/pics/"})

	assert.Equal(t, []string{"aww", "FooBar", "pics"}, bl.Names())
	assert.Equal(t, 3, bl.Len())
	assert.False(t, bl.Empty())
}

func TestBlockListLookups(t *testing.T) {
	bl := NewBlockList([]string{"FooBar"})

	assert.True(t, bl.Contains("FooBar"))
	assert.False(t, bl.Contains("foobar"))
	assert.True(t, bl.ContainsFold("foobar"))
	assert.True(t, bl.ContainsFold("FOOBAR"))
	assert.False(t, bl.ContainsFold("foo"))
}

func TestBlockListEmpty(t *testing.T) {
	var zero BlockList
	assert.True(t, zero.Empty())
	assert.False(t, zero.Contains("aww"))
	assert.True(t, NewBlockList(nil).Empty())
}

func TestBlockListEqual(t *testing.T) {
	a := NewBlockList([]string{"aww", "pics"})
	b := NewBlockList([]string{"pics", "r/aww"})
	c := NewBlockList([]string{"aww"})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.True(t, NewBlockList(nil).Equal(BlockList{}))
}

func TestStorageChangeBlockList(t *testing.T) {
	change := StorageChange{BlockListKey: {NewValue: []string{"aww"}}}
	bl, ok := change.BlockList()
	assert.True(t, ok)
	assert.True(t, bl.Contains("aww"))

	_, ok = StorageChange{"theme": {NewValue: []string{"dark"}}}.BlockList()
	assert.False(t, ok)

	bl, ok = StorageChange{BlockListKey: {}}.BlockList()
	assert.True(t, ok)
	assert.True(t, bl.Empty())
}
