package llmtest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pilot/pkg/llm"
	"github.com/entrhq/pilot/pkg/types"
)

func TestClientReplaysInOrder(t *testing.T) {
	boom := errors.New("boom")
	c := New(Text("hello"), Call("c1", "goto_url", `{"url":"x"}`)).FailAt(1, boom)

	resp, err := c.Complete(context.Background(), llm.Request{Model: "m", Messages: []types.Turn{types.NewUserTurn("a")}})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Turn.Content)

	_, err = c.Complete(context.Background(), llm.Request{})
	assert.ErrorIs(t, err, boom)

	resp, err = c.Complete(context.Background(), llm.Request{})
	require.NoError(t, err)
	assert.Equal(t, "goto_url", resp.Turn.ToolCall.Name)

	_, err = c.Complete(context.Background(), llm.Request{})
	assert.ErrorIs(t, err, ErrNoMoreResponses)

	assert.Len(t, c.Requests(), 4)
	assert.Equal(t, "m", c.Requests()[0].Model)
}

func TestClientHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Text("hello")).Complete(ctx, llm.Request{})
	assert.ErrorIs(t, err, context.Canceled)
}
