// Package llm talks to the model on behalf of a browsing session.
//
// ChatClient is the narrow transport contract implemented by provider
// packages such as pkg/llm/openai. The Broker sits on top of it: it builds
// the outgoing payload from the session history, redacts page snapshots of
// pages the session has left, advertises the allowed actions as tools and
// keeps the CostLedger current.
//
// Example usage:
//
//	client, err := openai.NewClient(os.Getenv("OPENAI_API_KEY"), openai.WithModel("gpt-4"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	broker := llm.NewBroker(client, "gpt-4", registry,
//	    llm.WithModelTimeout(time.Minute),
//	    llm.WithEmitter(render),
//	)
//
//	reply, err := broker.Send(ctx, types.NewUserTurn("Task: find the docs."), history, llm.ToolChoiceAuto)
package llm

import (
	"context"

	"github.com/entrhq/pilot/pkg/actions"
	"github.com/entrhq/pilot/pkg/types"
)

// ChatClient sends one chat completion request.
type ChatClient interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Request is a provider-neutral chat completion request.
type Request struct {
	Model      string
	Messages   []types.Turn
	Tools      []actions.Definition
	ToolChoice ToolChoice
}

// Response is the model's reply plus the usage it reported.
type Response struct {
	Turn  types.Turn
	Usage Usage
}

// Usage holds token counts. A zero Total means the provider reported none.
type Usage struct {
	Prompt     int `json:"prompt_tokens"`
	Completion int `json:"completion_tokens"`
	Total      int `json:"total_tokens"`
}

// ToolChoiceMode controls whether the model may, must or must not call a tool.
type ToolChoiceMode string

const (
	ToolChoiceModeAuto  ToolChoiceMode = "auto"
	ToolChoiceModeNone  ToolChoiceMode = "none"
	ToolChoiceModeForce ToolChoiceMode = "force"
)

// ToolChoice selects the tool calling behavior of one request.
type ToolChoice struct {
	Mode ToolChoiceMode
	Name string // set when Mode is ToolChoiceModeForce
}

var (
	ToolChoiceAuto = ToolChoice{Mode: ToolChoiceModeAuto}
	ToolChoiceNone = ToolChoice{Mode: ToolChoiceModeNone}
)

// ForceTool requires the model to call the named tool.
func ForceTool(name string) ToolChoice {
	return ToolChoice{Mode: ToolChoiceModeForce, Name: name}
}

// Forced reports whether a specific tool is required.
func (c ToolChoice) Forced() bool {
	return c.Mode == ToolChoiceModeForce && c.Name != ""
}
