package llm

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/entrhq/pilot/pkg/actions"
	"github.com/entrhq/pilot/pkg/dump"
	"github.com/entrhq/pilot/pkg/logging"
	"github.com/entrhq/pilot/pkg/types"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("llm")
	if err != nil {
		debugLog.Warnf("Failed to initialize llm logger, using stderr fallback: %v", err)
	}
}

// ToolSource lists the action definitions that can be advertised.
type ToolSource interface {
	Definitions() []actions.Definition
}

// TokenCounter estimates usage when a provider reports none.
type TokenCounter interface {
	CountTokens(text string) int
	CountTurnsTokens(turns []types.Turn) int
}

// Broker sends the session context to the model.
type Broker struct {
	client    ChatClient
	model     string
	tools     ToolSource
	allow     []string
	limiter   *rate.Limiter
	timeout   time.Duration
	dumpPath  string
	threshold float64
	emit      types.EventEmitter
	counter   TokenCounter
	ledger    *CostLedger

	mu          sync.Mutex
	sinceReport Usage
}

// BrokerOption configures a Broker.
type BrokerOption func(*Broker)

// WithAllowList restricts the advertised tools to names. A nil list
// advertises every definition; an empty list advertises none.
func WithAllowList(names []string) BrokerOption {
	return func(b *Broker) {
		if names == nil {
			b.allow = nil
			return
		}
		b.allow = append([]string{}, names...)
	}
}

// WithLimiter spaces model calls.
func WithLimiter(l *rate.Limiter) BrokerOption {
	return func(b *Broker) {
		b.limiter = l
	}
}

// WithRequestsPerMinute spaces model calls evenly. Zero disables the limit.
func WithRequestsPerMinute(n int) BrokerOption {
	return func(b *Broker) {
		if n <= 0 {
			b.limiter = nil
			return
		}
		b.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
	}
}

// WithModelTimeout bounds every model call. Zero means no bound.
func WithModelTimeout(d time.Duration) BrokerOption {
	return func(b *Broker) {
		b.timeout = d
	}
}

// WithDumpPath writes the unredacted payload to path before every call.
func WithDumpPath(path string) BrokerOption {
	return func(b *Broker) {
		b.dumpPath = path
	}
}

// WithCostNoticeThreshold sets the cost accumulated since the last report
// that triggers a notice.
func WithCostNoticeThreshold(usd float64) BrokerOption {
	return func(b *Broker) {
		b.threshold = usd
	}
}

// WithEmitter receives token usage and cost events.
func WithEmitter(emit types.EventEmitter) BrokerOption {
	return func(b *Broker) {
		b.emit = emit
	}
}

// WithTokenCounter sets the estimator used when usage is missing.
func WithTokenCounter(c TokenCounter) BrokerOption {
	return func(b *Broker) {
		b.counter = c
	}
}

// WithLedger shares an existing ledger.
func WithLedger(l *CostLedger) BrokerOption {
	return func(b *Broker) {
		b.ledger = l
	}
}

// NewBroker creates a broker for model. tools may be nil.
func NewBroker(client ChatClient, model string, tools ToolSource, opts ...BrokerOption) *Broker {
	b := &Broker{
		client:    client,
		model:     model,
		tools:     tools,
		threshold: DefaultCostNoticeThreshold,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.ledger == nil {
		b.ledger = NewCostLedger(model)
	}
	return b
}

// Ledger returns the session's cost ledger.
func (b *Broker) Ledger() *CostLedger {
	return b.ledger
}

// ReportCurrentCost emits the accumulated session cost and restarts the
// notice window.
func (b *Broker) ReportCurrentCost() {
	b.mu.Lock()
	b.sinceReport = Usage{}
	b.mu.Unlock()
	b.emit.Emit(types.NewCurrentCostEvent(b.ledger.CurrentCost(), b.ledger.Cost()))
}

// Send appends turn to a copy of history, sends it and returns the model's
// reply. history is not modified.
func (b *Broker) Send(ctx context.Context, turn types.Turn, history []types.Turn, choice ToolChoice) (types.Turn, error) {
	working := make([]types.Turn, 0, len(history)+1)
	working = append(working, types.CloneTurns(history)...)
	working = append(working, turn.Clone())

	if b.dumpPath != "" {
		if err := dump.WriteJSON(b.dumpPath, working); err != nil {
			debugLog.Warnf("Failed to dump context: %v", err)
		}
	}

	req := Request{
		Model:      b.model,
		Messages:   Redact(working),
		Tools:      b.advertised(choice),
		ToolChoice: choice,
	}

	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return types.Turn{}, err
		}
	}

	callCtx := ctx
	if b.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	debugLog.Debugf("Sending %d messages with %d tools (choice=%s %s)", len(req.Messages), len(req.Tools), choice.Mode, choice.Name)
	resp, err := b.client.Complete(callCtx, req)
	if err != nil {
		if ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return types.Turn{}, types.NewTimeoutError("model call", b.timeout, err)
		}
		return types.Turn{}, types.NewTransportError("model call", err)
	}

	reply := resp.Turn.Clone()
	if reply.Role == "" {
		reply.Role = types.RoleAssistant
	}
	if reply.ToolCall != nil {
		reply.ToolCall.Arguments = RepairArguments(reply.ToolCall.Arguments)
		if reply.ToolCall.ID == "" {
			reply.ToolCall.ID = "call_" + uuid.NewString()
		}
	}

	usage := resp.Usage
	if usage.Total == 0 && usage.Prompt == 0 && usage.Completion == 0 {
		usage = b.estimate(req.Messages, reply)
	}
	b.record(usage)

	return reply, nil
}

func (b *Broker) advertised(choice ToolChoice) []actions.Definition {
	if b.tools == nil {
		return nil
	}
	defs := b.tools.Definitions()
	if b.allow == nil {
		return defs
	}

	allowed := make(map[string]bool, len(b.allow))
	for _, name := range b.allow {
		allowed[name] = true
	}

	out := make([]actions.Definition, 0, len(defs))
	for _, def := range defs {
		if allowed[def.Name] || (choice.Forced() && def.Name == choice.Name) {
			out = append(out, def)
		}
	}
	return out
}

func (b *Broker) estimate(messages []types.Turn, reply types.Turn) Usage {
	if b.counter == nil {
		return Usage{}
	}
	u := Usage{
		Prompt:     b.counter.CountTurnsTokens(messages),
		Completion: b.counter.CountTokens(reply.Content),
	}
	if reply.ToolCall != nil {
		u.Completion += b.counter.CountTokens(reply.ToolCall.Name) + b.counter.CountTokens(reply.ToolCall.Arguments)
	}
	u.Total = u.Prompt + u.Completion
	debugLog.Debugf("Provider reported no usage, estimated %d tokens", u.Total)
	return u
}

func (b *Broker) record(u Usage) {
	if u.Total == 0 {
		u.Total = u.Prompt + u.Completion
	}
	b.ledger.Add(u)
	b.emit.Emit(types.NewTokenUsageEvent(u.Prompt, u.Completion, u.Total))

	b.mu.Lock()
	b.sinceReport.Prompt += u.Prompt
	b.sinceReport.Completion += u.Completion
	b.sinceReport.Total += u.Total
	window := b.sinceReport
	cost := b.ledger.TokenCost(window.Prompt, window.Completion)
	crossed := cost > b.threshold
	if crossed {
		b.sinceReport = Usage{}
	}
	b.mu.Unlock()

	if crossed {
		debugLog.Debugf("Cost since last report %.4f USD crossed %.2f", cost, b.threshold)
		b.emit.Emit(types.NewCostNoticeEvent(CostNotice(cost, window.Total), cost))
	}
}
