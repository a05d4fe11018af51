package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pilot/pkg/actions"
	"github.com/entrhq/pilot/pkg/agent/approval"
	"github.com/entrhq/pilot/pkg/agent/prompts"
	"github.com/entrhq/pilot/pkg/llm"
	"github.com/entrhq/pilot/pkg/types"
)

func planTurn(id, plan string) types.Turn {
	return callTurn(id, actions.MakePlanName, `{"plan":"`+plan+`"}`)
}

func TestFormatPlan(t *testing.T) {
	assert.Equal(t, "\n## PLAN ##\nsearch, then read\n## PLAN ##\n", FormatPlan("search, then read"))
}

func TestPlannerReplansUntilAccepted(t *testing.T) {
	first := planTurn("call_1", "search the web")
	second := planTurn("call_2", "open example.com directly")
	sender := &scriptedSender{replies: []types.Turn{first, second}}
	prompter := approval.NewScripted("n", "Y")
	emit, events := collectEvents()

	plan, err := NewPlanner(sender, prompter, WithPlanEmitter(emit)).Plan(context.Background(), "  find the pricing page ")
	require.NoError(t, err)

	assert.Equal(t, "open example.com directly", plan.Text)
	assert.Equal(t, second, plan.Turn)

	system := types.NewSystemTurn(prompts.NewPromptBuilder().WithPageContentGuide().Build())
	task := types.NewUserTurn("Task: find the pricing page.")
	assert.Equal(t, []types.Turn{system, task, second}, plan.History)

	require.Len(t, sender.sent, 2)
	for _, s := range sender.sent {
		assert.Equal(t, task, s.turn)
		assert.Equal(t, []types.Turn{system}, s.history)
		assert.Equal(t, llm.ForceTool(actions.MakePlanName), s.choice)
	}

	assert.Equal(t, []string{AcceptPlanQuestion, AcceptPlanQuestion}, prompter.Prompts())
	require.Len(t, *events, 2)
	assert.Equal(t, types.EventTypePlan, (*events)[0].Type)
	assert.Equal(t, "search the web", (*events)[0].Content)
	assert.Equal(t, "open example.com directly", (*events)[1].Content)
}

func TestPlannerAutopilot(t *testing.T) {
	sender := &scriptedSender{replies: []types.Turn{planTurn("call_1", "search")}}
	prompter := approval.NewScripted()

	plan, err := NewPlanner(sender, prompter,
		WithAutopilot(true),
		WithSystemPrompt("custom system"),
	).Plan(context.Background(), "find docs")
	require.NoError(t, err)

	assert.Equal(t, "search", plan.Text)
	assert.Equal(t, "custom system", plan.History[0].Content)
	assert.Empty(t, prompter.Prompts())
}

func TestPlannerErrors(t *testing.T) {
	cause := errors.New("model unavailable")

	tests := []struct {
		name     string
		sender   *scriptedSender
		prompter approval.Prompter
		wantErr  string
	}{
		{
			name:     "send failure",
			sender:   &scriptedSender{err: cause},
			prompter: approval.NewScripted(),
			wantErr:  "failed to get plan: model unavailable",
		},
		{
			name:     "free text instead of a plan",
			sender:   &scriptedSender{replies: []types.Turn{types.NewAssistantTurn("Sure!")}},
			prompter: approval.NewScripted(),
			wantErr:  "model did not call make_plan",
		},
		{
			name:     "another action",
			sender:   &scriptedSender{replies: []types.Turn{callTurn("call_1", "goto_url", `{"url":"https://example.com"}`)}},
			prompter: approval.NewScripted(),
			wantErr:  "model did not call make_plan",
		},
		{
			name:     "empty plan",
			sender:   &scriptedSender{replies: []types.Turn{callTurn("call_1", actions.MakePlanName, `{}`)}},
			prompter: approval.NewScripted(),
			wantErr:  "invalid plan",
		},
		{
			name:     "operator gone",
			sender:   &scriptedSender{replies: []types.Turn{planTurn("call_1", "search")}},
			prompter: approval.NewScripted(),
			wantErr:  approval.ErrNoMoreAnswers.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := NewPlanner(tt.sender, tt.prompter).Plan(context.Background(), "find docs")
			assert.Nil(t, plan)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
