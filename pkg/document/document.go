// Package document turns the annotated page into the text block the model
// reads.
//
// Serialization has two halves. A snapshot script copies the body inside
// the page, reorders priority content and strips scripts. Render then walks
// the copy in Go: headings, forms and sections keep a little structure,
// marked elements collapse to compact tags, and all other text is kept
// inline.
package document

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/entrhq/pilot/pkg/browser"
	"github.com/entrhq/pilot/pkg/elements"
	"github.com/entrhq/pilot/pkg/logging"
	"github.com/entrhq/pilot/pkg/types"
	"golang.org/x/net/html"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("document")
	if err != nil {
		debugLog.Warnf("Failed to initialize document logger, using stderr fallback: %v", err)
	}
}

// Markers bracketing the page content block.
const (
	StartMarker = "## START OF PAGE CONTENT ##"
	EndMarker   = "## END OF PAGE CONTENT ##"
)

// PrioritySelectors are moved to the top of the snapshot. Nodes are
// prepended selector by selector, so later selectors end up first.
var PrioritySelectors = []string{
	"main",
	`[role="main"]`,
	"#bodyContent",
	"#search",
	"#searchform",
	".kp-header",
}

var (
	inlineSpace  = regexp.MustCompile(`[^\S\n]+`)
	spaceNewline = regexp.MustCompile(` \n+`)
	newlines     = regexp.MustCompile(`\n+`)
)

// Document is a serialized page.
type Document struct {
	Title string
	Body  string
}

// String renders the page content block sent to the model.
func (d *Document) String() string {
	return fmt.Sprintf("%s\nTitle: %s\n\n%s\n%s", StartMarker, d.Title, d.Body, EndMarker)
}

// Serializer snapshots and renders pages.
type Serializer struct{}

// NewSerializer creates a serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

type snapshot struct {
	Title string `json:"title"`
	HTML  string `json:"html"`
}

// Serialize snapshots page and renders it. The live page is not modified.
func (s *Serializer) Serialize(ctx context.Context, page browser.Evaluator) (*Document, error) {
	if page == nil {
		return nil, types.ErrMissingPage
	}

	var snap snapshot
	script := browser.Call(snapshotScript, PrioritySelectors, elements.MarkerAttr)
	if err := page.Evaluate(ctx, script, &snap); err != nil {
		return nil, fmt.Errorf("failed to snapshot page: %w", err)
	}

	body, err := Render(snap.HTML)
	if err != nil {
		return nil, err
	}
	debugLog.Debugf("serialized %q: %d bytes of %d", snap.Title, len(body), len(snap.HTML))

	return &Document{Title: snap.Title, Body: body}, nil
}

// Render converts body HTML into normalized page text. It is a pure
// function: the same input always yields the same bytes.
func Render(source string) (string, error) {
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	root := findBody(doc)
	if root == nil {
		root = doc
	}

	var b strings.Builder
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		renderNode(&b, c)
	}
	return normalize(b.String()), nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findBody(c); found != nil {
			return found
		}
	}
	return nil
}

func renderNode(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if n.Parent != nil && elements.Attr(n.Parent, elements.MarkerAttr) != "" {
			return
		}
		if text := strings.TrimSpace(n.Data); text != "" {
			b.WriteString(" ")
			b.WriteString(text)
		}
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.Data {
	case "script", "style", "noscript":
		return
	}

	if elements.Attr(n, elements.MarkerAttr) != "" {
		b.WriteString(" ")
		b.WriteString(elements.BuildTag(n))
		return
	}

	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		b.WriteString("<" + n.Data + ">")
		renderChildren(b, n)
		b.WriteString("</" + n.Data + ">\n")
	case "form":
		b.WriteString("\n<form>\n")
		renderChildren(b, n)
		b.WriteString("\n</form>\n")
	case "div", "section", "main":
		b.WriteString("\n")
		renderChildren(b, n)
		b.WriteString("\n")
	default:
		renderChildren(b, n)
	}
}

func renderChildren(b *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(b, c)
	}
}

func normalize(s string) string {
	s = inlineSpace.ReplaceAllString(s, " ")
	s = spaceNewline.ReplaceAllString(s, "\n")
	s = newlines.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}

// Truncate cuts s to at most limit characters. A non-positive limit
// returns s unchanged.
func Truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
