package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pilot/pkg/types"
)

// The encodings are fetched on first use; environments without network
// access skip these tests.
func newTokenizer(t *testing.T) *Tokenizer {
	t.Helper()
	tok, err := New()
	if err != nil {
		t.Skipf("tokenizer unavailable: %v", err)
	}
	return tok
}

func TestCountTokens(t *testing.T) {
	tok := newTokenizer(t)

	assert.Equal(t, 0, tok.CountTokens(""))
	assert.Equal(t, 1, tok.CountTokens("hello"))
	assert.Greater(t, tok.CountTokens("The quick brown fox jumps over the lazy dog"), 5)
}

func TestCountTurnsTokens(t *testing.T) {
	tok := newTokenizer(t)

	assert.Equal(t, 0, tok.CountTurnsTokens(nil))

	single := []types.Turn{types.NewUserTurn("hello")}
	// priming + framing + role + content
	assert.Equal(t, replyPriming+tokensPerMessage+tok.CountTokens("user")+1, tok.CountTurnsTokens(single))

	withCall := append(single, types.NewToolCallTurn(types.ToolCall{ID: "c1", Name: "goto_url", Arguments: `{"url":"https://example.com"}`}))
	assert.Greater(t, tok.CountTurnsTokens(withCall), tok.CountTurnsTokens(single)+tokensPerMessage)
}

func TestForModelFallsBack(t *testing.T) {
	newTokenizer(t)

	tok, err := ForModel("some-local-model")
	require.NoError(t, err)
	assert.Equal(t, 1, tok.CountTokens("hello"))
}
