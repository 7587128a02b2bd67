// Package domnode adapts an x/net/html node tree to an alert container.
package domnode

import (
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/roomalerts/internal/services/web/platform/alerts"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrContainerNotFound reports a document without the requested element id.
var ErrContainerNotFound = errors.New("alert container not found")

// Container appends alert headings to one element of a parsed document.
type Container struct {
	node *html.Node
}

var _ alerts.Container = (*Container)(nil)

// Find locates the element whose id attribute equals id.
func Find(doc *html.Node, id string) (*Container, error) {
	id = strings.TrimSpace(id)
	if doc == nil || id == "" {
		return nil, fmt.Errorf("%w: id %q", ErrContainerNotFound, id)
	}
	node := findByID(doc, id)
	if node == nil {
		return nil, fmt.Errorf("%w: id %q", ErrContainerNotFound, id)
	}
	return &Container{node: node}, nil
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Namespace == "" && attr.Key == "id" && attr.Val == id {
				return n
			}
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findByID(child, id); found != nil {
			return found
		}
	}
	return nil
}

// AppendHeading appends <h1>text</h1>. The text is stored as a text node, so
// rendering escapes any markup it contains.
func (c *Container) AppendHeading(text string) {
	heading := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.H1,
		Data:     alerts.HeadingTag,
	}
	heading.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	c.node.AppendChild(heading)
}

// Clear detaches every child of the container.
func (c *Container) Clear() {
	for child := c.node.FirstChild; child != nil; {
		next := child.NextSibling
		c.node.RemoveChild(child)
		child = next
	}
}

// Headings returns the text of each heading child in document order.
func (c *Container) Headings() []string {
	var out []string
	for child := c.node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode || child.Data != alerts.HeadingTag {
			continue
		}
		out = append(out, textContent(child))
	}
	return out
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}
