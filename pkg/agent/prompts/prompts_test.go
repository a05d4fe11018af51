package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildDefault(t *testing.T) {
	prompt := NewPromptBuilder().Build()

	assert.True(t, strings.HasPrefix(prompt, "## OBJECTIVE ##"))
	assert.Contains(t, prompt, "## NOTES ##")
	assert.True(t, strings.HasSuffix(prompt, "call answer_user to give a response to the user."))
	assert.NotContains(t, prompt, "## PAGE CONTENT ##")
	assert.NotContains(t, prompt, "## INSTRUCTIONS ##")
}

func TestBuildSectionsInOrder(t *testing.T) {
	prompt := NewPromptBuilder().
		WithPageContentGuide().
		WithCustomInstructions("  Prefer official documentation.\n").
		Build()

	order := []string{"## OBJECTIVE ##", "## NOTES ##", "## PAGE CONTENT ##", "## INSTRUCTIONS ##\nPrefer official documentation.", "## WHEN TASK IS FINISHED ##"}
	last := -1
	for _, section := range order {
		idx := strings.Index(prompt, section)
		if assert.GreaterOrEqual(t, idx, 0, section) {
			assert.Greater(t, idx, last, section)
			last = idx
		}
	}
}

func TestTask(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "find the Go release notes", want: "Task: find the Go release notes."},
		{in: "  padded \n", want: "Task: padded."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Task(tt.in))
	}
}
