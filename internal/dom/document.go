// Package dom is the document boundary of the filter engine: an x/net/html
// node tree with DOM-style mutation methods, selector queries, inline style
// editing and mutation observation.
//
// A Document is not safe for concurrent use. Every read and write must happen
// on the goroutine that owns it (see scheduler.Loop).
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document wraps the root of a parsed HTML tree
type Document struct {
	root      *html.Node
	selectors *SelectorCache
	observers []*observer
	pending   []MutationRecord
	nextID    int
}

// Option configures a Document
type Option func(*Document)

// WithSelectorCache shares a selector cache between documents
func WithSelectorCache(c *SelectorCache) Option {
	return func(d *Document) {
		d.selectors = c
	}
}

// NewDocument wraps an existing tree. root is usually an html.DocumentNode.
func NewDocument(root *html.Node, opts ...Option) *Document {
	d := &Document{root: root}
	for _, opt := range opts {
		opt(d)
	}
	if d.selectors == nil {
		d.selectors = NewSelectorCache(DefaultSelectorCacheSize)
	}
	return d
}

// Parse reads a full HTML document
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	return NewDocument(root, opts...), nil
}

// ParseString is Parse for an in-memory document
func ParseString(s string, opts ...Option) (*Document, error) {
	return Parse(strings.NewReader(s), opts...)
}

// Root returns the document node
func (d *Document) Root() *html.Node {
	return d.root
}

// DocumentElement returns the first element child of the document node, or
// nil for an empty document
func (d *Document) DocumentElement() *html.Node {
	if d.root.Type == html.ElementNode {
		return d.root
	}
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// Head returns the <head> element if the document has one
func (d *Document) Head() *html.Node {
	return d.childElement(atom.Head)
}

// Body returns the <body> element if the document has one
func (d *Document) Body() *html.Node {
	return d.childElement(atom.Body)
}

func (d *Document) childElement(a atom.Atom) *html.Node {
	de := d.DocumentElement()
	if de == nil {
		return nil
	}
	for c := de.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return c
		}
	}
	return nil
}

// GetElementByID returns the first element whose id attribute equals id
func (d *Document) GetElementByID(id string) *html.Node {
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			if v, ok := Attr(n, "id"); ok && v == id {
				found = n
				return false
			}
		}
		return true
	})
	return found
}

// CreateElement returns a detached element
func (d *Document) CreateElement(tag string) *html.Node {
	tag = strings.ToLower(tag)
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

// CreateTextNode returns a detached text node
func (d *Document) CreateTextNode(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// AppendChild moves child to the end of parent's children
func (d *Document) AppendChild(parent, child *html.Node) {
	d.InsertBefore(parent, child, nil)
}

// InsertBefore inserts child before ref, or at the end when ref is nil.
// A child that is still attached elsewhere is detached first.
func (d *Document) InsertBefore(parent, child, ref *html.Node) {
	if child.Parent != nil {
		d.RemoveChild(child.Parent, child)
	}
	parent.InsertBefore(child, ref)
	d.record(MutationRecord{
		Type:       ChildList,
		Target:     parent,
		AddedNodes: []*html.Node{child},
	})
}

// RemoveChild detaches child from parent
func (d *Document) RemoveChild(parent, child *html.Node) {
	if child.Parent != parent {
		return
	}
	parent.RemoveChild(child)
	d.record(MutationRecord{
		Type:         ChildList,
		Target:       parent,
		RemovedNodes: []*html.Node{child},
	})
}

// ReplaceChildren removes every child of parent and appends nodes
func (d *Document) ReplaceChildren(parent *html.Node, nodes ...*html.Node) {
	for c := parent.FirstChild; c != nil; {
		next := c.NextSibling
		d.RemoveChild(parent, c)
		c = next
	}
	for _, n := range nodes {
		d.AppendChild(parent, n)
	}
}

// SetAttribute adds or replaces an attribute. Keys are lower-cased like the
// HTML parser does.
func (d *Document) SetAttribute(n *html.Node, key, val string) {
	key = strings.ToLower(key)
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			if n.Attr[i].Val == val {
				return
			}
			n.Attr[i].Val = val
			d.record(MutationRecord{Type: Attributes, Target: n, AttributeName: key})
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
	d.record(MutationRecord{Type: Attributes, Target: n, AttributeName: key})
}

// RemoveAttribute deletes an attribute, reporting whether it was present
func (d *Document) RemoveAttribute(n *html.Node, key string) bool {
	key = strings.ToLower(key)
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			d.record(MutationRecord{Type: Attributes, Target: n, AttributeName: key})
			return true
		}
	}
	return false
}

// Render writes the document as HTML
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document, returning an empty string on failure
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// Attr returns the value of an attribute without a namespace
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether n carries the attribute
func HasAttr(n *html.Node, key string) bool {
	_, ok := Attr(n, key)
	return ok
}

// TextContent concatenates the text of all descendants
func TextContent(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}

// walk visits n and its descendants depth first until fn returns false
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}
