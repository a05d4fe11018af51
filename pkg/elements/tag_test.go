package elements

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// firstElement parses fragment inside a body and returns its first element.
func firstElement(t *testing.T, fragment string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader("<html><body>" + fragment + "</body></html>"))
	require.NoError(t, err)

	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data != "html" && n.Data != "head" && n.Data != "body" {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	require.NotNil(t, found)
	return found
}

func TestBuildTag(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		want     string
	}{
		{
			name:     "link",
			fragment: `<a href="/docs" class="pgpt-element3" pgpt-id="3">  Read the
   docs </a>`,
			want: `<a href="/docs" pgpt-id="3">Read the docs</a>`,
		},
		{
			name:     "attribute order",
			fragment: `<input pgpt-id="1" value="hi" role="searchbox" title="Search" placeholder="Type here" type="text">`,
			want:     `<input type="text" placeholder="Type here" title="Search" role="searchbox" value="hi" pgpt-id="1">`,
		},
		{
			name:     "long href truncated",
			fragment: `<a href="https://example.com/a/very/long/path/that/keeps/going" pgpt-id="2">Go</a>`,
			want:     `<a href="https://example.com/a/very/long/[..]" pgpt-id="2">Go</a>`,
		},
		{
			name:     "nested text joined",
			fragment: `<button pgpt-id="5"><span>Add</span><span>to cart</span></button>`,
			want:     `<button pgpt-id="5">Add to cart</button>`,
		},
		{
			name:     "empty attributes skipped",
			fragment: `<textarea pgpt-id="9" placeholder=""></textarea>`,
			want:     `<textarea pgpt-id="9">`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildTag(firstElement(t, tt.fragment)))
		})
	}
}

func TestBuildTagTruncatesText(t *testing.T) {
	node := firstElement(t, `<a pgpt-id="1">`+strings.Repeat("word ", 100)+`</a>`)
	tag := BuildTag(node)

	assert.True(t, strings.HasSuffix(tag, "[..]</a>"), tag)
	inner := strings.TrimSuffix(strings.TrimPrefix(tag, `<a pgpt-id="1">`), "</a>")
	assert.Len(t, []rune(inner), MaxTextLength+len("[..]"))
}

func TestAttr(t *testing.T) {
	node := firstElement(t, `<a href="/x" pgpt-id="4">x</a>`)
	assert.Equal(t, "4", Attr(node, MarkerAttr))
	assert.Equal(t, "", Attr(node, "title"))
}
