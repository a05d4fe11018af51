// Package cli renders the events of a browsing session on a line-oriented
// terminal.
//
// Example usage:
//
//	renderer := cli.NewRenderer(os.Stdout, cli.WithAutopilot(cfg.Autopilot))
//	session, err := agent.NewSession(cfg, page, client, prompter,
//	    agent.WithSessionEmitter(renderer.Handle),
//	)
package cli

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/pilot/pkg/agent"
	"github.com/entrhq/pilot/pkg/types"
)

// TokensPrefix marks a token usage line for a supervising process.
const TokensPrefix = "<!_TOKENS_!>"

// Renderer writes session events to a terminal.
type Renderer struct {
	mu     sync.Mutex
	writer io.Writer

	autopilot   bool
	showResults bool
	plain       bool
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithAutopilot switches to the machine-readable protocol: token usage is
// reported on TokensPrefix lines and styling is off.
func WithAutopilot(on bool) RendererOption {
	return func(r *Renderer) {
		r.autopilot = on
	}
}

// WithShowResults prints the message of every action.
func WithShowResults(show bool) RendererOption {
	return func(r *Renderer) {
		r.showResults = show
	}
}

// WithPlain disables styling.
func WithPlain(plain bool) RendererOption {
	return func(r *Renderer) {
		r.plain = plain
	}
}

// NewRenderer creates a renderer writing to w, or os.Stdout when w is nil.
func NewRenderer(w io.Writer, opts ...RendererOption) *Renderer {
	if w == nil {
		w = os.Stdout
	}
	r := &Renderer{writer: w}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle renders one event. Its method value is a types.EventEmitter.
func (r *Renderer) Handle(event *types.Event) {
	if event == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch event.Type {
	case types.EventTypePlan:
		r.print(planStyle, agent.FormatPlan(event.Content))
	case types.EventTypeAction:
		if !r.autopilot {
			r.printf(actionStyle, "🔧 %s %s\n", event.ActionName, event.Arguments)
		}
	case types.EventTypeActionResult:
		if r.showResults {
			r.printf(resultStyle, "✅ %s\n", event.Content)
		}
	case types.EventTypeTokenUsage:
		if r.autopilot && event.TokenUsage != nil {
			u := event.TokenUsage
			fmt.Fprintf(r.writer, "%s%d %d %d\n", TokensPrefix, u.PromptTokens, u.CompletionTokens, u.TotalTokens)
		}
	case types.EventTypeCostNotice, types.EventTypeCurrentCost:
		r.printf(costStyle, "%s\n", event.Content)
	case types.EventTypeError:
		r.printf(errorStyle, "❌ Error: %v\n", event.Error)
	case types.EventTypeStepStart, types.EventTypeMessage, types.EventTypeDone:
		// The prompter shows messages; steps and the end are silent.
	}
}

func (r *Renderer) printf(style lipgloss.Style, format string, args ...interface{}) {
	r.print(style, fmt.Sprintf(format, args...))
}

func (r *Renderer) print(style lipgloss.Style, text string) {
	if r.plain || r.autopilot {
		fmt.Fprint(r.writer, text)
		return
	}
	fmt.Fprint(r.writer, style.Render(text))
}
