package document

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pilot/pkg/browser/browsertest"
	"github.com/entrhq/pilot/pkg/elements"
)

const serializeFixture = `<!DOCTYPE html>
<html><head><title>Fixture page</title><style>.note { color: red; }</style></head><body>
<div id="nav">Navigation bar</div>
<script>window.secret = "inline script text";</script>
<div class="kp-header">Knowledge header</div>
<main><h1>Main heading</h1><p>Body copy</p></main>
<form><input type="text" name="q"></form>
</body></html>`

func TestSerializeLivePage(t *testing.T) {
	page := browsertest.Launch(t)
	browsertest.Open(t, page, serializeFixture)

	ctx := context.Background()

	scan, err := elements.NewAnnotator().Annotate(ctx, page)
	require.NoError(t, err)
	require.Len(t, scan.Elements, 1)
	input := scan.Elements[0]
	require.NoError(t, page.Type(ctx, input.Selector(), "typed query"))

	doc, err := NewSerializer().Serialize(ctx, page)
	require.NoError(t, err)

	assert.Equal(t, "Fixture page", doc.Title)
	assert.NotContains(t, doc.Body, "inline script text")
	assert.NotContains(t, doc.Body, "color: red")
	assert.Contains(t, doc.Body, `value="typed query"`, "live form values are mirrored")
	assert.Contains(t, doc.Body, `pgpt-id="1"`)

	header := strings.Index(doc.Body, "Knowledge header")
	body := strings.Index(doc.Body, "Main heading")
	nav := strings.Index(doc.Body, "Navigation bar")
	require.True(t, header >= 0 && body >= 0 && nav >= 0, doc.Body)
	assert.Less(t, header, body, "later priority selectors end up first")
	assert.Less(t, body, nav, "priority content moves above the rest")

	again, err := NewSerializer().Serialize(ctx, page)
	require.NoError(t, err)
	assert.Equal(t, doc.String(), again.String())

	t.Run("live page is untouched", func(t *testing.T) {
		var state struct {
			First   string `json:"first"`
			Scripts int    `json:"scripts"`
			Value   string `json:"value"`
		}
		require.NoError(t, page.Evaluate(ctx, `({
			first: document.body.firstElementChild.id,
			scripts: document.querySelectorAll("body script").length,
			value: document.querySelector("input").getAttribute("value"),
		})`, &state))
		assert.Equal(t, "nav", state.First)
		assert.Equal(t, 1, state.Scripts)
		assert.Empty(t, state.Value, "the typed value stays a property on the live node")
	})
}
