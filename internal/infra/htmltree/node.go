// Package htmltree converts parsed HTML into a plain node record and provides
// the structural queries the scrapers rely on, independent of any CSS selector engine.
package htmltree

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// DocumentTag is the Tag of the root node returned by Parse and FromHTML.
const DocumentTag = "#document"

// Node is a plain record for one element or text node.
// Element nodes have a non-empty Tag and no Text; text nodes have an empty Tag
// and carry their character data in Text.
type Node struct {
	Tag      string
	Attrs    map[string]string
	Children []*Node
	Text     string
}

// Parse reads an HTML document with the HTML5 parsing algorithm, which
// tolerates unclosed tags and other malformed markup, and converts it.
func Parse(r io.Reader) (*Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}
	return FromHTML(doc), nil
}

// FromHTML converts an x/net/html tree. Comments and doctypes are dropped.
func FromHTML(n *html.Node) *Node {
	if n == nil {
		return nil
	}

	var out *Node
	switch n.Type {
	case html.DocumentNode:
		out = &Node{Tag: DocumentTag}
	case html.ElementNode:
		out = &Node{Tag: strings.ToLower(n.Data)}
		if len(n.Attr) > 0 {
			out.Attrs = make(map[string]string, len(n.Attr))
			for _, a := range n.Attr {
				// first occurrence wins, as in the HTML5 parser itself
				if _, dup := out.Attrs[a.Key]; !dup {
					out.Attrs[a.Key] = a.Val
				}
			}
		}
	case html.TextNode:
		return &Node{Text: n.Data}
	default:
		return nil
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if child := FromHTML(c); child != nil {
			out.Children = append(out.Children, child)
		}
	}
	return out
}

// IsElement reports whether n is an element (or the document root).
func (n *Node) IsElement() bool {
	return n.Tag != ""
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(key string) (string, bool) {
	v, ok := n.Attrs[key]
	return v, ok
}

// HasClass reports whether the class attribute contains class as a whole word.
func (n *Node) HasClass(class string) bool {
	for _, c := range strings.Fields(n.Attrs["class"]) {
		if c == class {
			return true
		}
	}
	return false
}

// TextContent concatenates the text of every descendant text node in document order.
func (n *Node) TextContent() string {
	if !n.IsElement() {
		return n.Text
	}
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *Node) writeText(b *strings.Builder) {
	if !n.IsElement() {
		b.WriteString(n.Text)
		return
	}
	for _, c := range n.Children {
		c.writeText(b)
	}
}

// ChildElements returns the direct element children whose tag is one of tags.
// With no tags, every element child is returned.
func (n *Node) ChildElements(tags ...string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.IsElement() && (len(tags) == 0 || containsTag(tags, c.Tag)) {
			out = append(out, c)
		}
	}
	return out
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
