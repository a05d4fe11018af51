package agent

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/entrhq/pilot/pkg/actions"
	"github.com/entrhq/pilot/pkg/agent/approval"
	"github.com/entrhq/pilot/pkg/browser"
	"github.com/entrhq/pilot/pkg/config"
	"github.com/entrhq/pilot/pkg/elements"
	"github.com/entrhq/pilot/pkg/llm"
	"github.com/entrhq/pilot/pkg/llm/tokenizer"
	"github.com/entrhq/pilot/pkg/security/filegate"
	"github.com/entrhq/pilot/pkg/types"
)

// ContextDumpFile receives the payload of every model call when history
// dumps are enabled. It is written next to the history dump.
const ContextDumpFile = "context.json"

// Session wires a page, a model and an operator into a planner and runner.
type Session struct {
	cfg      *config.Config
	page     browser.Page
	prompter approval.Prompter
	emit     types.EventEmitter
	counter  llm.TokenCounter

	broker   *llm.Broker
	registry *actions.Registry
	index    *actions.ElementIndex
	planner  *Planner
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionEmitter receives every event of the session.
func WithSessionEmitter(emit types.EventEmitter) SessionOption {
	return func(s *Session) {
		s.emit = emit
	}
}

// WithSessionTokenCounter replaces the tokenizer that estimates missing
// usage.
func WithSessionTokenCounter(c llm.TokenCounter) SessionOption {
	return func(s *Session) {
		s.counter = c
	}
}

// NewSession builds the collaborators of one browsing session. cfg must
// already be validated.
func NewSession(cfg *config.Config, page browser.Page, client llm.ChatClient, prompter approval.Prompter, opts ...SessionOption) (*Session, error) {
	if page == nil {
		return nil, types.ErrMissingPage
	}

	s := &Session{cfg: cfg, page: page, prompter: prompter}
	for _, opt := range opts {
		opt(s)
	}

	gate, err := filegate.New(cfg.Files.Workspace, cfg.Files.AllowedPatterns, cfg.Files.DeniedPatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to create file gate: %w", err)
	}

	annotatorOpts := []elements.Option{elements.WithLimit(cfg.ElementLimit)}
	if cfg.Debug.ElementsPath != "" {
		annotatorOpts = append(annotatorOpts, elements.WithDumpDir(cfg.Debug.ElementsPath))
	}
	annotator := elements.NewAnnotator(annotatorOpts...)
	s.index = actions.NewElementIndex(actions.ScraperFunc(func(ctx context.Context) (*elements.Scan, error) {
		return annotator.Annotate(ctx, page)
	}))

	s.registry, err = actions.NewDefaultRegistry(actions.Deps{
		Page:     page,
		Elements: s.index,
		Prompter: prompter,
		Files:    gate,
		Cost:     actions.CostReporterFunc(func() { s.broker.ReportCurrentCost() }),
		Settings: actions.Settings{
			Autopilot:         cfg.Autopilot,
			OneShot:           cfg.OneShot,
			ContextLimit:      cfg.ContextLimit,
			NavigationTimeout: cfg.NavigationTimeout,
			DefaultEngine:     cfg.Search.DefaultEngine,
		},
	})
	if err != nil {
		return nil, err
	}

	brokerOpts := []llm.BrokerOption{
		llm.WithAllowList(cfg.Functions),
		llm.WithModelTimeout(cfg.ModelTimeout),
		llm.WithRequestsPerMinute(cfg.RequestsPerMinute),
		llm.WithCostNoticeThreshold(cfg.CostNoticeThreshold),
		llm.WithEmitter(s.emit),
	}
	if s.counter == nil {
		if tok, err := tokenizer.ForModel(cfg.Model); err != nil {
			debugLog.Warnf("Token estimates unavailable: %v", err)
		} else {
			s.counter = tok
		}
	}
	if s.counter != nil {
		brokerOpts = append(brokerOpts, llm.WithTokenCounter(s.counter))
	}
	if cfg.Debug.DumpPath != "" {
		brokerOpts = append(brokerOpts, llm.WithDumpPath(filepath.Join(filepath.Dir(cfg.Debug.DumpPath), ContextDumpFile)))
	}
	s.broker = llm.NewBroker(client, cfg.Model, s.registry, brokerOpts...)

	s.planner = NewPlanner(s.broker, prompter,
		WithAutopilot(cfg.Autopilot),
		WithPlanEmitter(s.emit),
	)
	return s, nil
}

// Broker returns the session's model broker.
func (s *Session) Broker() *llm.Broker {
	return s.broker
}

// Registry returns the session's actions.
func (s *Session) Registry() *actions.Registry {
	return s.registry
}

// Run plans task with the operator and then drives the page until the
// session ends.
func (s *Session) Run(ctx context.Context, task string) error {
	plan, err := s.planner.Plan(ctx, task)
	if err != nil {
		return err
	}

	runner := NewRunner(Deps{
		Sender:     s.broker,
		Dispatcher: s.registry,
		Page:       s.page,
		Scraper:    s.index,
		Prompter:   s.prompter,
		Cost:       s.broker,
	}, Config{
		ContextLimit: s.cfg.ContextLimit,
		MaxSteps:     s.cfg.MaxSteps,
		Autopilot:    s.cfg.Autopilot,
		DumpPath:     s.cfg.Debug.DumpPath,
	}, WithEmitter(s.emit), WithHistory(plan.History))

	return runner.Run(ctx, plan.Turn)
}
