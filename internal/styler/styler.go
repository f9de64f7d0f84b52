// Package styler owns the single <style> element carrying the suppression
// rules.
package styler

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/bnema/subreddit-filter/internal/dom"
)

// DefaultID identifies the injected style element
const DefaultID = "subfilter-styles"

// Styler keeps one style element in sync with the compiled stylesheet
type Styler struct {
	doc *dom.Document
	id  string
	el  *html.Node
}

// New creates a styler for doc. An empty id selects DefaultID.
func New(doc *dom.Document, id string) *Styler {
	if id == "" {
		id = DefaultID
	}
	return &Styler{doc: doc, id: id}
}

// Apply replaces the content of the style element with css, creating and
// inserting the element on first use. Repeated calls never add a second
// element, even across stylers sharing the document.
func (s *Styler) Apply(css string) {
	el := s.element()
	if dom.TextContent(el) == css {
		return
	}
	if css == "" {
		s.doc.ReplaceChildren(el)
		return
	}
	s.doc.ReplaceChildren(el, s.doc.CreateTextNode(css))
}

// Element returns the style element, or nil before the first Apply
func (s *Styler) Element() *html.Node {
	if s.el != nil && s.el.Parent != nil {
		return s.el
	}
	if el := s.doc.GetElementByID(s.id); el != nil && el.DataAtom == atom.Style {
		s.el = el
		return el
	}
	return nil
}

func (s *Styler) element() *html.Node {
	if el := s.Element(); el != nil {
		return el
	}
	el := s.doc.CreateElement("style")
	s.doc.SetAttribute(el, "id", s.id)
	s.doc.AppendChild(s.parent(), el)
	s.el = el
	return el
}

// parent prefers <head>, then the root element, then the document node
func (s *Styler) parent() *html.Node {
	if head := s.doc.Head(); head != nil {
		return head
	}
	if root := s.doc.DocumentElement(); root != nil {
		return root
	}
	return s.doc.Root()
}
