package dom

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Hidden reports whether n would not be displayed: n or one of its
// ancestors has an inline display:none, or matches a display:none rule of a
// <style> element in the document.
func (d *Document) Hidden(n *html.Node) bool {
	rules := d.displayNoneRules()
	for c := n; c != nil; c = c.Parent {
		if c.Type != html.ElementNode {
			continue
		}
		if v, _, ok := InlineStyle(c, "display"); ok && strings.EqualFold(v, "none") {
			return true
		}
		for _, m := range rules {
			if m.Match(c) {
				return true
			}
		}
	}
	return false
}

// VisibleElements returns the elements matching m that are not hidden
func (d *Document) VisibleElements(m cascadia.Matcher) []*html.Node {
	var out []*html.Node
	for _, n := range d.QueryAll(m) {
		if !d.Hidden(n) {
			out = append(out, n)
		}
	}
	return out
}

// StripHidden detaches every element that Hidden reports, outermost first,
// and returns how many subtrees were removed
func (d *Document) StripHidden() int {
	rules := d.displayNoneRules()
	var doomed []*html.Node
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && hiddenBy(c, rules) {
				doomed = append(doomed, c)
				continue
			}
			visit(c)
		}
	}
	visit(d.root)
	for _, n := range doomed {
		d.RemoveChild(n.Parent, n)
	}
	return len(doomed)
}

func hiddenBy(n *html.Node, rules []cascadia.Matcher) bool {
	if n.DataAtom == atom.Style || n.DataAtom == atom.Head || n.DataAtom == atom.Html {
		return false
	}
	if v, _, ok := InlineStyle(n, "display"); ok && strings.EqualFold(v, "none") {
		return true
	}
	for _, m := range rules {
		if m.Match(n) {
			return true
		}
	}
	return false
}

// displayNoneRules compiles the selectors of every display:none rule found in
// the document's <style> elements. Rules that fail to parse are ignored.
func (d *Document) displayNoneRules() []cascadia.Matcher {
	var out []cascadia.Matcher
	walk(d.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.DataAtom != atom.Style {
			return true
		}
		text := TextContent(n)
		if strings.TrimSpace(text) == "" {
			return true
		}
		sheet, err := parser.Parse(text)
		if err != nil {
			return true
		}
		for _, rule := range sheet.Rules {
			if rule.Kind != css.QualifiedRule || !hidesElement(rule) {
				continue
			}
			m, err := d.selectors.Compile(rule.Prelude)
			if err != nil {
				continue
			}
			out = append(out, m)
		}
		return true
	})
	return out
}

func hidesElement(rule *css.Rule) bool {
	for _, decl := range rule.Declarations {
		if strings.EqualFold(decl.Property, "display") && strings.EqualFold(strings.TrimSpace(decl.Value), "none") {
			return true
		}
	}
	return false
}
