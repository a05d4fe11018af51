package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/entrhq/pilot/pkg/actions"
	"github.com/entrhq/pilot/pkg/agent/approval"
	"github.com/entrhq/pilot/pkg/browser"
	"github.com/entrhq/pilot/pkg/document"
	"github.com/entrhq/pilot/pkg/dump"
	"github.com/entrhq/pilot/pkg/llm"
	"github.com/entrhq/pilot/pkg/logging"
	"github.com/entrhq/pilot/pkg/types"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("agent")
	if err != nil {
		debugLog.Warnf("Failed to initialize agent logger, using stderr fallback: %v", err)
	}
}

// ErrStepLimit is returned when a session runs past Config.MaxSteps.
var ErrStepLimit = errors.New("step limit reached")

// EmptyResponse stands in for a blank free-text reply of the model.
const EmptyResponse = "<empty response>"

// Sender sends the session context to the model. *llm.Broker implements it.
type Sender interface {
	Send(ctx context.Context, turn types.Turn, history []types.Turn, choice llm.ToolChoice) (types.Turn, error)
}

// Dispatcher executes action calls. *actions.Registry implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, req actions.Request) actions.Result
}

// PageReader is the part of the page the runner reads between actions.
type PageReader interface {
	browser.Evaluator
	URL() string
}

// Config holds the runner's session options.
type Config struct {
	// ContextLimit caps the page content attached to each message.
	ContextLimit int
	// MaxSteps stops the session with ErrStepLimit. Zero is unlimited.
	MaxSteps  int
	Autopilot bool
	// DumpPath receives the history as JSON after every step.
	DumpPath string
}

// Deps are the collaborators of a Runner.
type Deps struct {
	Sender     Sender
	Dispatcher Dispatcher
	Page       PageReader
	Scraper    actions.Scraper
	Prompter   approval.Prompter
	Cost       actions.CostReporter
}

// Runner drives a session one model turn at a time: it executes the
// pending turn, attaches the resulting page and sends it back.
type Runner struct {
	deps       Deps
	cfg        Config
	serializer *document.Serializer
	emit       types.EventEmitter

	history []types.Turn
	next    types.Turn
	step    int
	done    bool
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithEmitter receives the runner's events.
func WithEmitter(emit types.EventEmitter) RunnerOption {
	return func(r *Runner) {
		r.emit = emit
	}
}

// WithHistory seeds the conversation, typically from an accepted plan.
func WithHistory(turns []types.Turn) RunnerOption {
	return func(r *Runner) {
		r.history = types.CloneTurns(turns)
	}
}

// NewRunner creates a runner.
func NewRunner(deps Deps, cfg Config, opts ...RunnerOption) *Runner {
	if cfg.ContextLimit <= 0 {
		cfg.ContextLimit = 4000
	}
	r := &Runner{
		deps:       deps,
		cfg:        cfg,
		serializer: document.NewSerializer(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// History returns a copy of the conversation so far.
func (r *Runner) History() []types.Turn {
	return types.CloneTurns(r.history)
}

// Steps returns the number of steps taken.
func (r *Runner) Steps() int {
	return r.step
}

// Run acts on first, the latest model turn, and keeps stepping until the
// session ends.
func (r *Runner) Run(ctx context.Context, first types.Turn) error {
	r.next = first
	r.done = false

	for {
		done, err := r.Step(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// Step executes the pending model turn, enriches the outcome with the
// current page and sends it. It reports done once the session ended.
func (r *Runner) Step(ctx context.Context) (bool, error) {
	if r.done {
		return true, nil
	}
	if r.deps.Page == nil {
		return false, types.ErrMissingPage
	}
	if r.cfg.MaxSteps > 0 && r.step >= r.cfg.MaxSteps {
		r.done = true
		return true, ErrStepLimit
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.step++
	r.emit.Emit(types.NewStepStartEvent(r.step))

	var (
		msg    types.Turn
		result actions.Result
		ended  bool
		err    error
	)
	if r.next.IsFunctionCall() {
		msg, result, ended = r.dispatchFunction(ctx, *r.next.ToolCall)
	} else {
		msg, ended, err = r.dispatchText(ctx, r.next.Content)
		if err != nil {
			return false, r.fail(err)
		}
	}
	if ended {
		r.done = true
		r.emit.Emit(types.NewDoneEvent(r.step, msg.Content))
		r.dumpHistory()
		return true, nil
	}

	if !result.SuppressRescrape {
		if err := r.enrich(ctx, &msg); err != nil {
			return false, r.fail(err)
		}
	}
	msg.URL = r.deps.Page.URL()

	reply, err := r.deps.Sender.Send(ctx, msg, r.history, llm.ToolChoiceAuto)
	if err != nil {
		return false, r.fail(fmt.Errorf("failed to send step %d: %w", r.step, err))
	}

	r.history = append(r.history, msg, reply)
	r.next = reply
	r.dumpHistory()
	return false, nil
}

func (r *Runner) dispatchFunction(ctx context.Context, call types.ToolCall) (types.Turn, actions.Result, bool) {
	r.emit.Emit(types.NewActionEvent(r.step, call.Name, call.Arguments))

	result := r.deps.Dispatcher.Dispatch(ctx, actions.Request{
		ID:        call.ID,
		Name:      call.Name,
		Arguments: json.RawMessage(call.Arguments),
	})
	r.emit.Emit(types.NewActionResultEvent(r.step, call.Name, result.Message))

	if result.Terminal {
		return types.NewUserTurn(result.Message), result, true
	}

	if result.DropLastTurn {
		// Pop the call; the correction goes out as a user turn.
		if n := len(r.history); n > 0 {
			r.history = r.history[:n-1]
		}
		return types.NewUserTurn(result.Message), result, false
	}
	return types.NewToolTurn(call.ID, call.Name, result.Message), result, false
}

func (r *Runner) dispatchText(ctx context.Context, content string) (types.Turn, bool, error) {
	text := strings.TrimSpace(content)
	if text == "" {
		text = EmptyResponse
	}
	r.emit.Emit(types.NewMessageEvent(r.step, text))

	if r.deps.Cost != nil {
		r.deps.Cost.ReportCurrentCost()
	}

	prompt := "GPT: " + text + "\nYou: "
	if r.cfg.Autopilot {
		prompt = approval.AutopilotMessage(text)
	}

	reply, err := r.deps.Prompter.Prompt(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return types.Turn{}, false, ctx.Err()
		}
		debugLog.Warnf("Prompt failed, ending session: %v", err)
		return types.NewUserTurn(""), true, nil
	}
	if approval.IsQuit(reply) {
		return types.NewUserTurn(reply), true, nil
	}
	return types.NewUserTurn(reply), false, nil
}

func (r *Runner) enrich(ctx context.Context, msg *types.Turn) error {
	if r.deps.Scraper != nil {
		scan, err := r.deps.Scraper.Scrape(ctx)
		if err != nil {
			return fmt.Errorf("failed to scrape page: %w", err)
		}
		if scan != nil {
			debugLog.Debugf("Step %d: %d elements, %d skipped", r.step, len(scan.Elements), scan.Skipped)
		}
	}

	doc, err := r.serializer.Serialize(ctx, r.deps.Page)
	if err != nil {
		return fmt.Errorf("failed to serialize page: %w", err)
	}
	msg.Content += "\n\n" + document.Truncate(doc.String(), r.cfg.ContextLimit)
	return nil
}

func (r *Runner) fail(err error) error {
	r.emit.Emit(types.NewErrorEvent(r.step, err))
	return err
}

func (r *Runner) dumpHistory() {
	if r.cfg.DumpPath == "" {
		return
	}
	if err := dump.WriteJSON(r.cfg.DumpPath, r.history); err != nil {
		debugLog.Warnf("Failed to dump history: %v", err)
	}
}
