package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/entrhq/pilot/pkg/actions"
	"github.com/entrhq/pilot/pkg/agent/approval"
	"github.com/entrhq/pilot/pkg/agent/prompts"
	"github.com/entrhq/pilot/pkg/llm"
	"github.com/entrhq/pilot/pkg/types"
)

// AcceptPlanQuestion is asked after every proposed plan.
const AcceptPlanQuestion = "Do you want to continue with this plan? (y/n): "

// PlanMarker brackets a plan shown to the operator.
const PlanMarker = "## PLAN ##"

// FormatPlan renders a plan for the operator.
func FormatPlan(plan string) string {
	return "\n" + PlanMarker + "\n" + plan + "\n" + PlanMarker + "\n"
}

// Plan is an accepted plan and the conversation that produced it.
type Plan struct {
	Text string
	// Turn is the model's make_plan call. The runner starts from it.
	Turn types.Turn
	// History is the system, task and plan turns.
	History []types.Turn
}

// Planner asks the model for a plan until the operator accepts one.
type Planner struct {
	sender    Sender
	prompter  approval.Prompter
	system    string
	autopilot bool
	emit      types.EventEmitter
}

// PlannerOption configures a Planner.
type PlannerOption func(*Planner)

// WithSystemPrompt replaces the default system prompt.
func WithSystemPrompt(prompt string) PlannerOption {
	return func(p *Planner) {
		p.system = prompt
	}
}

// WithAutopilot accepts the first plan without asking.
func WithAutopilot(on bool) PlannerOption {
	return func(p *Planner) {
		p.autopilot = on
	}
}

// WithPlanEmitter receives plan events.
func WithPlanEmitter(emit types.EventEmitter) PlannerOption {
	return func(p *Planner) {
		p.emit = emit
	}
}

// NewPlanner creates a planner.
func NewPlanner(sender Sender, prompter approval.Prompter, opts ...PlannerOption) *Planner {
	p := &Planner{
		sender:   sender,
		prompter: prompter,
		system:   prompts.NewPromptBuilder().WithPageContentGuide().Build(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan forces make_plan for task and asks the operator to accept it.
// A rejected plan is requested again.
func (p *Planner) Plan(ctx context.Context, task string) (*Plan, error) {
	system := types.NewSystemTurn(p.system)
	msg := types.NewUserTurn(prompts.Task(task))

	for attempt := 1; ; attempt++ {
		reply, err := p.sender.Send(ctx, msg, []types.Turn{system}, llm.ForceTool(actions.MakePlanName))
		if err != nil {
			return nil, fmt.Errorf("failed to get plan: %w", err)
		}
		if reply.ToolCall == nil || reply.ToolCall.Name != actions.MakePlanName {
			return nil, fmt.Errorf("model did not call %s", actions.MakePlanName)
		}

		args, err := actions.Decode[actions.PlanArgs](json.RawMessage(reply.ToolCall.Arguments))
		if err != nil {
			return nil, fmt.Errorf("invalid plan: %w", err)
		}
		debugLog.Infof("Plan attempt %d: %s", attempt, args.Plan)
		p.emit.Emit(types.NewPlanEvent(args.Plan))

		accepted := p.autopilot
		if !accepted {
			accepted, err = approval.Confirm(ctx, p.prompter, AcceptPlanQuestion)
			if err != nil {
				return nil, err
			}
		}
		if accepted {
			return &Plan{
				Text:    args.Plan,
				Turn:    reply,
				History: []types.Turn{system, msg, reply},
			}, nil
		}
	}
}
