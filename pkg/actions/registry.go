package actions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/entrhq/pilot/pkg/logging"
	"github.com/entrhq/pilot/pkg/types"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("actions")
	if err != nil {
		debugLog.Warnf("Failed to initialize actions logger, using stderr fallback: %v", err)
	}
}

// UnknownActionMessage is the canned result for unknown names, unclassified
// action errors and action panics.
const UnknownActionMessage = "That is an unregistered or invalid action. Please use a valid one"

// Definition is an action as advertised to the model.
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

type entry struct {
	name   string
	action Action
}

// Registry maps wire names to actions and converts action failures into
// messages for the model.
type Registry struct {
	mu      sync.RWMutex
	entries []entry
	index   map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register adds action under its own name, or under idOverride when given.
// Registering the same name with the same schema again is a no-op; any
// other reuse of a name is a configuration error.
func (r *Registry) Register(action Action, idOverride ...string) error {
	if action == nil {
		return types.NewConfigurationError("action", "action is nil")
	}
	name := action.Name()
	if len(idOverride) > 0 && idOverride[0] != "" {
		name = idOverride[0]
	}
	if name == "" {
		return types.NewConfigurationError("action", "action name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if i, ok := r.index[name]; ok {
		existing := r.entries[i].action
		if existing.Kind() == action.Kind() && sameSchema(existing.Schema(), action.Schema()) {
			return nil
		}
		return types.NewConfigurationError(name, "action already registered")
	}

	r.index[name] = len(r.entries)
	r.entries = append(r.entries, entry{name: name, action: action})
	return nil
}

func sameSchema(a, b map[string]interface{}) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && string(ja) == string(jb)
}

// Lookup returns the action registered under name.
func (r *Registry) Lookup(name string) (Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.entries[i].action, true
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.name
	}
	return names
}

// Definitions returns the advertised actions in registration order.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]Definition, len(r.entries))
	for i, e := range r.entries {
		defs[i] = Definition{
			Name:        e.name,
			Description: e.action.Description(),
			Parameters:  e.action.Schema(),
		}
	}
	return defs
}

// Dispatch runs the requested action. It never fails: unknown names,
// action errors and panics become result messages.
func (r *Registry) Dispatch(ctx context.Context, req Request) (result Result) {
	action, ok := r.Lookup(req.Name)
	if !ok {
		debugLog.Warnf("Unknown action requested: %s", req.Name)
		return Result{Message: UnknownActionMessage}
	}

	defer func() {
		if p := recover(); p != nil {
			debugLog.Errorf("Action %s panicked: %v\n%s", req.Name, p, debug.Stack())
			result = Result{Message: UnknownActionMessage}
		}
	}()

	debugLog.Debugf("Dispatching %s (%s) with %s", req.Name, action.Kind(), string(req.Arguments))
	result, err := action.Execute(ctx, req.Arguments)
	if err != nil {
		debugLog.Errorf("Action %s failed: %v", req.Name, err)
		return Result{Message: ErrorMessage(err)}
	}
	return result
}

// ErrorMessage converts an action error into text for the model.
func ErrorMessage(err error) string {
	var (
		validation *types.ValidationError
		notFound   *types.NotFoundError
		timeout    *types.TimeoutError
		config     *types.ConfigurationError
	)
	switch {
	case errors.As(err, &validation):
		return validation.Message
	case errors.As(err, &notFound):
		return fmt.Sprintf("ERROR: %s", notFound.Error())
	case errors.As(err, &timeout):
		return fmt.Sprintf("NOTICE: %s", timeout.Error())
	case errors.As(err, &config):
		return config.Message
	}
	return UnknownActionMessage
}
