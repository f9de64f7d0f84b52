package dom

import (
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
)

// InlineStyle returns the value and priority of prop in n's style attribute
func InlineStyle(n *html.Node, prop string) (value string, important, ok bool) {
	for _, d := range inlineDeclarations(n) {
		if strings.EqualFold(d.Property, prop) {
			value, important, ok = d.Value, d.Important, true
		}
	}
	return value, important, ok
}

// SetStyleProperty sets prop in n's inline style, keeping every other
// declaration. Declarations the CSS parser rejects are kept verbatim.
func (d *Document) SetStyleProperty(n *html.Node, prop, value string, important bool) {
	decl := &css.Declaration{Property: prop, Value: value, Important: important}

	var kept []*css.Declaration
	for _, existing := range inlineDeclarations(n) {
		if !strings.EqualFold(existing.Property, prop) {
			kept = append(kept, existing)
		}
	}
	d.SetAttribute(n, "style", formatDeclarations(append(kept, decl)))
}

// RemoveStyleProperty deletes prop from n's inline style and reports whether
// it was present. The style attribute is dropped once it is empty.
func (d *Document) RemoveStyleProperty(n *html.Node, prop string) bool {
	var kept []*css.Declaration
	removed := false
	for _, existing := range inlineDeclarations(n) {
		if strings.EqualFold(existing.Property, prop) {
			removed = true
			continue
		}
		kept = append(kept, existing)
	}
	if !removed {
		return false
	}
	if len(kept) == 0 {
		d.RemoveAttribute(n, "style")
		return true
	}
	d.SetAttribute(n, "style", formatDeclarations(kept))
	return true
}

// inlineDeclarations parses n's style attribute. When douceur rejects it the
// text is split on ";" instead, and segments without a property come back
// with the whole segment as Value so they can be written out unchanged.
func inlineDeclarations(n *html.Node) []*css.Declaration {
	raw, ok := Attr(n, "style")
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	if decls, err := parser.ParseDeclarations(raw); err == nil {
		out := decls[:0]
		for _, decl := range decls {
			if decl.Property != "" {
				out = append(out, decl)
			}
		}
		return out
	}
	return splitDeclarations(raw)
}

func splitDeclarations(raw string) []*css.Declaration {
	var decls []*css.Declaration
	for _, seg := range strings.Split(raw, ";") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		prop, value, found := strings.Cut(seg, ":")
		prop = strings.TrimSpace(prop)
		if !found || prop == "" || strings.ContainsAny(prop, "{} \t") {
			decls = append(decls, &css.Declaration{Value: seg})
			continue
		}
		value = strings.TrimSpace(value)
		important := false
		if i := strings.LastIndex(strings.ToLower(value), "!important"); i != -1 && strings.TrimSpace(value[i+len("!important"):]) == "" {
			important = true
			value = strings.TrimSpace(value[:i])
		}
		decls = append(decls, &css.Declaration{Property: prop, Value: value, Important: important})
	}
	return decls
}

func formatDeclarations(decls []*css.Declaration) string {
	parts := make([]string, 0, len(decls))
	for _, decl := range decls {
		parts = append(parts, formatDeclaration(decl))
	}
	return strings.Join(parts, " ")
}

func formatDeclaration(decl *css.Declaration) string {
	if decl.Property == "" {
		return decl.Value + ";"
	}
	s := decl.Property + ": " + decl.Value
	if decl.Important {
		s += " !important"
	}
	return s + ";"
}
