package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/entrhq/pilot/pkg/types"
)

func TestRenderer(t *testing.T) {
	tests := []struct {
		name  string
		opts  []RendererOption
		event *types.Event
		want  string
	}{
		{
			name:  "plan",
			event: types.NewPlanEvent("search, then read"),
			want:  "\n## PLAN ##\nsearch, then read\n## PLAN ##\n",
		},
		{
			name:  "action",
			event: types.NewActionEvent(1, "goto_url", `{"url":"https://example.com"}`),
			want:  "🔧 goto_url {\"url\":\"https://example.com\"}\n",
		},
		{
			name:  "action under autopilot",
			opts:  []RendererOption{WithAutopilot(true)},
			event: types.NewActionEvent(1, "goto_url", `{}`),
			want:  "",
		},
		{
			name:  "result hidden by default",
			event: types.NewActionResultEvent(1, "goto_url", "You are now on https://example.com"),
			want:  "",
		},
		{
			name:  "result shown",
			opts:  []RendererOption{WithShowResults(true)},
			event: types.NewActionResultEvent(1, "goto_url", "You are now on https://example.com"),
			want:  "✅ You are now on https://example.com\n",
		},
		{
			name:  "token usage is silent for people",
			event: types.NewTokenUsageEvent(10, 5, 15),
			want:  "",
		},
		{
			name:  "token usage under autopilot",
			opts:  []RendererOption{WithAutopilot(true)},
			event: types.NewTokenUsageEvent(10, 5, 15),
			want:  "<!_TOKENS_!>10 5 15\n",
		},
		{
			name:  "cost notice",
			event: types.NewCostNoticeEvent("Cost: +0.12 USD (+3500 tokens)", 0.12),
			want:  "Cost: +0.12 USD (+3500 tokens)\n",
		},
		{
			name:  "current cost",
			event: types.NewCurrentCostEvent("Current cost: 0.06 USD (1500 tokens)", 0.06),
			want:  "Current cost: 0.06 USD (1500 tokens)\n",
		},
		{
			name:  "error",
			event: types.NewErrorEvent(2, errors.New("boom")),
			want:  "❌ Error: boom\n",
		},
		{
			name:  "done",
			event: types.NewDoneEvent(3, "quit"),
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := NewRenderer(&buf, append([]RendererOption{WithPlain(true)}, tt.opts...)...)
			r.Handle(tt.event)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestRendererEmitter(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, WithAutopilot(true))

	var emit types.EventEmitter = r.Handle
	emit.Emit(types.NewTokenUsageEvent(1, 2, 3))
	emit.Emit(nil)

	assert.Equal(t, "<!_TOKENS_!>1 2 3\n", buf.String())
}
