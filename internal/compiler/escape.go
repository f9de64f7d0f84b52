package compiler

import (
	"strings"
	"unicode"
)

// Escape prepares name for interpolation into a double-quoted CSS string.
// Quotes and backslashes are escaped. Names that are empty, contain control
// characters or angle brackets (which could close the <style> element) are
// rejected.
func Escape(name string) (string, bool) {
	if strings.TrimSpace(name) == "" {
		return "", false
	}
	var sb strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsControl(r), r == '<', r == '>':
			return "", false
		case r == '"' || r == '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String(), true
}
