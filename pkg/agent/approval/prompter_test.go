package approval

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsQuit(t *testing.T) {
	tests := []struct {
		reply string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"exit", true},
		{"QUIT", true},
		{"q", true},
		{"quite good", false},
		{"keep going", false},
	}
	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			assert.Equal(t, tt.want, IsQuit(tt.reply))
		})
	}
}

func TestIsYes(t *testing.T) {
	assert.True(t, IsYes("y"))
	assert.True(t, IsYes(" Yes\n"))
	assert.False(t, IsYes("n"))
	assert.False(t, IsYes(""))
	assert.False(t, IsYes("yep"))
}

func TestAutopilotMessage(t *testing.T) {
	assert.Equal(t, "<!_RESPONSE_!>\"done \\\"here\\\"\"\n", AutopilotMessage(`done "here"`))
}

func TestScripted(t *testing.T) {
	ctx := context.Background()
	p := NewScripted("y", "")

	got, err := p.Prompt(ctx, "first? ")
	require.NoError(t, err)
	assert.Equal(t, "y", got)

	got, err = p.Prompt(ctx, "second? ")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	_, err = p.Prompt(ctx, "third? ")
	assert.ErrorIs(t, err, ErrNoMoreAnswers)

	assert.Equal(t, []string{"first? ", "second? ", "third? "}, p.Prompts())
}

func TestConfirm(t *testing.T) {
	ctx := context.Background()

	ok, err := Confirm(ctx, Auto{Answer: "y"}, "continue? ")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Confirm(ctx, Auto{Answer: "n"}, "continue? ")
	require.NoError(t, err)
	assert.False(t, ok)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Confirm(cancelled, Auto{Answer: "y"}, "continue? ")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTerminal(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader("hello\r\nsecond\n"), &out, 0)
	ctx := context.Background()

	got, err := term.Prompt(ctx, "You: ")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	got, err = term.Prompt(ctx, "You: ")
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	_, err = term.Prompt(ctx, "You: ")
	assert.ErrorIs(t, err, io.EOF)

	assert.Equal(t, "You: You: You: ", out.String())
}

func TestTerminalTimeout(t *testing.T) {
	reader, writer := io.Pipe()
	defer writer.Close()

	term := NewTerminal(reader, io.Discard, 20*time.Millisecond)
	_, err := term.Prompt(context.Background(), "? ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no reply after")
}

func TestTerminalContextCancel(t *testing.T) {
	reader, writer := io.Pipe()
	defer writer.Close()

	term := NewTerminal(reader, io.Discard, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := term.Prompt(ctx, "? ")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
