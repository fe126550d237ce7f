package sources

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// ParseHTML parses a fetched page body into a node tree. The x/net parser
// never fails on malformed markup, so the only errors are I/O-shaped.
func ParseHTML(body []byte) (*html.Node, error) {
	return html.Parse(bytes.NewReader(body))
}

// FindByID returns the first element with the given id attribute.
func FindByID(root *html.Node, id string) *html.Node {
	return findFirst(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && Attr(n, "id") == id
	})
}

// FindFirst returns the first element with the given tag name.
func FindFirst(root *html.Node, tag string) *html.Node {
	return findFirst(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	})
}

// FindAll returns every element with the given tag name, in document order.
func FindAll(root *html.Node, tag string) []*html.Node {
	var out []*html.Node
	walk(root, func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
	})
	return out
}

// FindAllByClass returns every element with the given tag carrying the CSS
// class.
func FindAllByClass(root *html.Node, tag, class string) []*html.Node {
	var out []*html.Node
	walk(root, func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag && HasClass(n, class) {
			out = append(out, n)
		}
	})
	return out
}

// Attr returns the value of the named attribute, or empty.
func Attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// HasClass reports whether the element's class list contains class.
func HasClass(n *html.Node, class string) bool {
	for _, candidate := range strings.Fields(Attr(n, "class")) {
		if candidate == class {
			return true
		}
	}
	return false
}

// Text returns the element's concatenated text content, whitespace-collapsed.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	var builder strings.Builder
	walk(n, func(child *html.Node) {
		if child.Type == html.TextNode {
			builder.WriteString(child.Data)
			builder.WriteByte(' ')
		}
	})
	return strings.Join(strings.Fields(builder.String()), " ")
}

// TableRows returns the tr elements of a table, header row included.
func TableRows(table *html.Node) []*html.Node {
	return FindAll(table, "tr")
}

// RowCells returns the td elements of a table row.
func RowCells(row *html.Node) []*html.Node {
	return FindAll(row, "td")
}

func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	if root == nil {
		return nil
	}
	if match(root) {
		return root
	}
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		if found := findFirst(child, match); found != nil {
			return found
		}
	}
	return nil
}

func walk(root *html.Node, visit func(*html.Node)) {
	if root == nil {
		return
	}
	visit(root)
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		walk(child, visit)
	}
}
