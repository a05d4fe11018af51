package elements

import (
	"strings"

	"golang.org/x/net/html"
)

// tagAttrs are emitted in this order, each only when non-empty.
var tagAttrs = []string{"href", "type", "placeholder", "title", "role", "value", MarkerAttr}

var truncatedAttrs = map[string]bool{
	"href":        true,
	"placeholder": true,
	"title":       true,
}

// BuildTag renders a marked node as a single compact tag:
//
//	<a href="https://example.com/docs" pgpt-id="3">Docs</a>
//
// Elements without text render as an open tag only.
func BuildTag(n *html.Node) string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(n.Data)

	for _, name := range tagAttrs {
		value := Attr(n, name)
		if value == "" {
			continue
		}
		if truncatedAttrs[name] {
			value = SliceOff(value, MaxAttrLength)
		}
		b.WriteString(" ")
		b.WriteString(name)
		b.WriteString(`="`)
		b.WriteString(value)
		b.WriteString(`"`)
	}
	b.WriteString(">")

	if text := NormalizeSpace(TextContent(n)); text != "" {
		b.WriteString(SliceOff(text, MaxTextLength))
		b.WriteString("</")
		b.WriteString(n.Data)
		b.WriteString(">")
	}
	return b.String()
}

// Attr returns the value of attribute key, or "".
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// TextContent concatenates the text of n's descendants, separating text
// nodes with a space so adjacent blocks do not run together.
func TextContent(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			parts = append(parts, c.Data)
			return
		}
		if c.Type == html.ElementNode && (c.Data == "script" || c.Data == "style") {
			return
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}
