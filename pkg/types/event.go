package types

// EventType identifies what happened during a browsing session.
type EventType string

const (
	EventTypeStepStart    EventType = "step_start"    // EventTypeStepStart marks the beginning of a runner step.
	EventTypePlan         EventType = "plan"          // EventTypePlan carries a plan proposed by the model.
	EventTypeAction       EventType = "action"        // EventTypeAction indicates an action is about to be dispatched.
	EventTypeActionResult EventType = "action_result" // EventTypeActionResult carries the message an action produced.
	EventTypeMessage      EventType = "message"       // EventTypeMessage carries free text the model sent instead of an action.
	EventTypeTokenUsage   EventType = "token_usage"   // EventTypeTokenUsage reports usage of one model call.
	EventTypeCostNotice   EventType = "cost_notice"   // EventTypeCostNotice reports a model call whose cost crossed the notice threshold.
	EventTypeCurrentCost  EventType = "current_cost"  // EventTypeCurrentCost reports the accumulated cost of the session.
	EventTypeError        EventType = "error"         // EventTypeError indicates a step failed.
	EventTypeDone         EventType = "done"          // EventTypeDone indicates the session reached a terminal action.
)

// Event is emitted by the runner, broker and actions while a session runs.
type Event struct {
	// Error is set on error events.
	Error error

	// TokenUsage is set on token usage events.
	TokenUsage *TokenUsage

	// Type indicates the kind of event.
	Type EventType

	// Content is the human-readable payload: a plan, a message, a cost line.
	Content string

	// ActionName is the action being dispatched, for action events.
	ActionName string

	// Arguments is the raw argument string of an action call.
	Arguments string

	// Step is the runner step the event belongs to.
	Step int

	// Cost is the USD amount for cost events.
	Cost float64
}

// TokenUsage contains token counts from one model call.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// EventEmitter receives session events. A nil emitter drops them.
type EventEmitter func(event *Event)

// Emit sends the event if the emitter is set.
func (e EventEmitter) Emit(event *Event) {
	if e != nil {
		e(event)
	}
}

// NewStepStartEvent creates a step start event.
func NewStepStartEvent(step int) *Event {
	return &Event{Type: EventTypeStepStart, Step: step}
}

// NewPlanEvent creates a plan event.
func NewPlanEvent(plan string) *Event {
	return &Event{Type: EventTypePlan, Content: plan}
}

// NewActionEvent creates an action dispatch event.
func NewActionEvent(step int, name, arguments string) *Event {
	return &Event{Type: EventTypeAction, Step: step, ActionName: name, Arguments: arguments}
}

// NewActionResultEvent creates an action result event.
func NewActionResultEvent(step int, name, message string) *Event {
	return &Event{Type: EventTypeActionResult, Step: step, ActionName: name, Content: message}
}

// NewMessageEvent creates a free-text message event.
func NewMessageEvent(step int, content string) *Event {
	return &Event{Type: EventTypeMessage, Step: step, Content: content}
}

// NewTokenUsageEvent creates a token usage event.
func NewTokenUsageEvent(prompt, completion, total int) *Event {
	return &Event{
		Type: EventTypeTokenUsage,
		TokenUsage: &TokenUsage{
			PromptTokens:     prompt,
			CompletionTokens: completion,
			TotalTokens:      total,
		},
	}
}

// NewCostNoticeEvent creates a cost notice event.
func NewCostNoticeEvent(line string, cost float64) *Event {
	return &Event{Type: EventTypeCostNotice, Content: line, Cost: cost}
}

// NewCurrentCostEvent creates a current cost event.
func NewCurrentCostEvent(line string, cost float64) *Event {
	return &Event{Type: EventTypeCurrentCost, Content: line, Cost: cost}
}

// NewErrorEvent creates an error event.
func NewErrorEvent(step int, err error) *Event {
	return &Event{Type: EventTypeError, Step: step, Error: err}
}

// NewDoneEvent creates a done event.
func NewDoneEvent(step int, content string) *Event {
	return &Event{Type: EventTypeDone, Step: step, Content: content}
}

// IsError reports whether the event carries an error.
func (e *Event) IsError() bool {
	return e.Type == EventTypeError || e.Error != nil
}
