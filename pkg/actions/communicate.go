package actions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/entrhq/pilot/pkg/agent/approval"
	"github.com/entrhq/pilot/pkg/types"
)

// CommunicateArgs are the arguments of communicate and answer_user.
type CommunicateArgs struct {
	Summary string `json:"summary"`
	Answer  string `json:"answer"`
}

// Text is the answer, or the summary without one.
func (a CommunicateArgs) Text() string {
	if a.Answer != "" {
		return a.Answer
	}
	return a.Summary
}

// Communicate hands an answer to the operator and returns their reply.
type Communicate struct {
	prompter approval.Prompter
	cost     CostReporter
	settings Settings
}

// NewCommunicate creates the communicate action. Register it a second time
// under "answer_user" for models trained on that name.
func NewCommunicate(prompter approval.Prompter, cost CostReporter, settings Settings) *Communicate {
	return &Communicate{prompter: prompter, cost: cost, settings: settings}
}

func (a *Communicate) Name() string { return "communicate" }
func (a *Communicate) Kind() Kind   { return KindCommunicate }

func (a *Communicate) Description() string {
	return "Provide an answer with a summary of the page to the user when the given task has been completed."
}

func (a *Communicate) Schema() map[string]interface{} {
	return BaseSchema(
		map[string]interface{}{
			"summary": map[string]interface{}{
				"type":        "string",
				"description": "A summary of the relevant parts of the page content that you base the answer on",
			},
			"answer": map[string]interface{}{
				"type":        "string",
				"description": "The response to the external actor such as a human user or an automated agent",
			},
		},
		[]string{"summary", "answer"},
	)
}

func (a *Communicate) Execute(ctx context.Context, raw json.RawMessage) (Result, error) {
	args := decodeAnswer(raw)
	if a.prompter == nil {
		return Result{}, types.NewConfigurationError("prompter", "communicate needs a prompter")
	}

	if a.cost != nil {
		a.cost.ReportCurrentCost()
	}

	reply, err := a.prompter.Prompt(ctx, a.promptFor(args.Text()))
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, err
		}
		debugLog.Warnf("No reply to answer: %v", err)
		return Result{Terminal: true}, nil
	}

	return Result{
		Message:  reply,
		Terminal: a.settings.OneShot || approval.IsQuit(reply),
	}, nil
}

func (a *Communicate) promptFor(text string) string {
	if a.settings.Autopilot {
		return approval.AutopilotMessage(text)
	}
	return fmt.Sprintf("\nAI agent: %s\nYou: ", text)
}

// decodeAnswer parses the arguments, treating unparseable input as the
// answer itself.
func decodeAnswer(raw json.RawMessage) CommunicateArgs {
	args, err := Decode[CommunicateArgs](raw)
	if err != nil {
		return CommunicateArgs{Answer: string(raw)}
	}
	return args
}
