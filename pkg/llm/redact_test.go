package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pilot/pkg/types"
)

func pageTurn(url, text string) types.Turn {
	turn := types.NewUserTurn(text + "\n\n## START OF PAGE CONTENT ##\nTitle: " + url + "\n\nbody\n## END OF PAGE CONTENT ##")
	turn.URL = url
	return turn
}

func TestRedact(t *testing.T) {
	input := []types.Turn{
		types.NewSystemTurn("You are a browser agent"),
		pageTurn("https://a.example", "You are now on https://a.example"),
		pageTurn("https://a.example", "Link clicked!"),
		pageTurn("https://b.example", "You are now on https://b.example"),
	}
	before := types.CloneTurns(input)

	out := Redact(input)
	require.Len(t, out, 4)

	assert.Equal(t, input[0], out[0], "turns without a URL are kept")
	assert.Equal(t, "You are now on https://a.example\n\n"+RedactedContent, out[1].Content)
	assert.True(t, out[1].Redacted)
	assert.Equal(t, "Link clicked!\n\n"+RedactedContent, out[2].Content)
	assert.True(t, out[2].Redacted)
	assert.Equal(t, input[3].Content, out[3].Content)
	assert.False(t, out[3].Redacted)

	assert.Equal(t, before, input, "input is untouched")
}

func TestRedactKeepsCurrentPage(t *testing.T) {
	input := []types.Turn{
		pageTurn("https://a.example", "first"),
		pageTurn("https://a.example", "second"),
	}
	assert.Equal(t, input, Redact(input))
}

func TestRedactWithoutSnapshot(t *testing.T) {
	turn := types.NewUserTurn("no page here")
	turn.URL = "https://a.example"
	last := types.NewUserTurn("later")
	last.URL = "https://b.example"

	out := Redact([]types.Turn{turn, last})
	assert.Equal(t, "no page here", out[0].Content)
	assert.False(t, out[0].Redacted)
}

func TestRedactEmpty(t *testing.T) {
	assert.Empty(t, Redact(nil))
}
