package actions

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/entrhq/pilot/pkg/types"
)

// MakePlanName is the action the planner forces.
const MakePlanName = "make_plan"

// PlanAcceptedMessage answers a make_plan call once the plan is validated.
const PlanAcceptedMessage = "OK. Please continue according to the plan"

// PlanArgs are the arguments of make_plan.
type PlanArgs struct {
	Plan string `json:"plan"`
}

func (a *PlanArgs) Validate() error {
	a.Plan = strings.TrimSpace(a.Plan)
	if a.Plan == "" {
		return types.NewValidationError("plan", "ERROR: Missing parameter plan")
	}
	return nil
}

// MakePlan exists to be forced by the planner. Dispatching the accepted
// plan call tells the model to start working through it.
type MakePlan struct{}

// NewMakePlan creates the make_plan action.
func NewMakePlan() *MakePlan {
	return &MakePlan{}
}

func (a *MakePlan) Name() string { return MakePlanName }
func (a *MakePlan) Kind() Kind   { return KindMakePlan }

func (a *MakePlan) Description() string {
	return "Create a plan to accomplish the given task. Summarize what the user's task is in a step by step manner. How would you browse the internet to accomplish the task. Start with 'I will'"
}

func (a *MakePlan) Schema() map[string]interface{} {
	return BaseSchema(
		map[string]interface{}{
			"plan": map[string]interface{}{
				"type":        "string",
				"description": "The step by step plan on how you will navigate the internet and what you will do",
			},
		},
		[]string{"plan"},
	)
}

func (a *MakePlan) Execute(_ context.Context, raw json.RawMessage) (Result, error) {
	if _, err := Decode[PlanArgs](raw); err != nil {
		return Result{}, err
	}
	return Result{Message: PlanAcceptedMessage, SuppressRescrape: true}, nil
}
