// Package markup normalizes imported HTML so it renders like generated
// documents: a head element exists, the CSS framework and web font are loaded,
// and a base font-family is applied. Normalization is idempotent; every
// injection checks for an existing tag by attribute match first.
package markup

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// TailwindScriptURL is the CSS framework loaded into every document.
	TailwindScriptURL = "https://cdn.tailwindcss.com"

	// FontStylesheetURL is the web font stylesheet.
	FontStylesheetURL = "https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600;700&display=swap"

	// baseStyle applies the web font document-wide. The body selector doubles
	// as the marker for the already-injected check.
	baseStyle = "body { font-family: 'Inter', sans-serif; }"
)

// Normalize parses doc, injects the framework script, font link, and base
// style into head if absent, and renders the document back to text. Parsing
// alone guarantees the html/head/body skeleton exists.
func Normalize(doc string) (string, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", fmt.Errorf("failed to parse document: %w", err)
	}

	head := findElement(root, atom.Head)
	if head == nil {
		// html.Parse always synthesizes a head; treat its absence as a
		// malformed tree rather than guessing.
		return "", fmt.Errorf("parsed document has no head element")
	}

	if !hasElementWithAttr(head, atom.Script, "src", TailwindScriptURL) {
		head.AppendChild(&html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Script,
			Data:     "script",
			Attr:     []html.Attribute{{Key: "src", Val: TailwindScriptURL}},
		})
	}

	if !hasElementWithAttr(head, atom.Link, "href", FontStylesheetURL) {
		head.AppendChild(&html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Link,
			Data:     "link",
			Attr: []html.Attribute{
				{Key: "rel", Val: "stylesheet"},
				{Key: "href", Val: FontStylesheetURL},
			},
		})
	}

	if !hasStyleContaining(head, "font-family: 'Inter'") {
		style := &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Style,
			Data:     "style",
		}
		style.AppendChild(&html.Node{Type: html.TextNode, Data: baseStyle})
		head.AppendChild(style)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return "", fmt.Errorf("failed to render document: %w", err)
	}
	return buf.String(), nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func hasElementWithAttr(parent *html.Node, a atom.Atom, key, val string) bool {
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != a {
			continue
		}
		for _, attr := range c.Attr {
			if attr.Key == key && attr.Val == val {
				return true
			}
		}
	}
	return false
}

func hasStyleContaining(parent *html.Node, marker string) bool {
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Style {
			continue
		}
		for t := c.FirstChild; t != nil; t = t.NextSibling {
			if t.Type == html.TextNode && strings.Contains(t.Data, marker) {
				return true
			}
		}
	}
	return false
}
