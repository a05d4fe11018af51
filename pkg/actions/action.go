package actions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/entrhq/pilot/pkg/types"
)

// Kind identifies the behavior behind an action name.
type Kind int

const (
	KindNavigate Kind = iota + 1
	KindClick
	KindFillForm
	KindReadFile
	KindCommunicate
	KindSearch
	KindSectionOutline
	KindNavigationOutline
	KindFindCode
	KindScreenshot
	KindMakePlan
)

var kindNames = map[Kind]string{
	KindNavigate:          "navigate",
	KindClick:             "click",
	KindFillForm:          "fill_form",
	KindReadFile:          "read_file",
	KindCommunicate:       "communicate",
	KindSearch:            "search",
	KindSectionOutline:    "section_outline",
	KindNavigationOutline: "navigation_outline",
	KindFindCode:          "find_code",
	KindScreenshot:        "screenshot",
	KindMakePlan:          "make_plan",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Action is something the model can ask the session to do.
//
// Execute decodes its own arguments. Errors returned by Execute never reach
// the model as-is: the registry converts them into a result message.
type Action interface {
	// Name is the wire name advertised to the model (e.g. "goto_url").
	Name() string
	Kind() Kind
	Description() string
	// Schema is the JSON schema of the arguments.
	Schema() map[string]interface{}
	Execute(ctx context.Context, args json.RawMessage) (Result, error)
}

// Result is what an action reports back to the runner.
type Result struct {
	// Message is sent to the model as the content of the next turn.
	Message string
	// SuppressRescrape skips re-annotating the page before the next call.
	SuppressRescrape bool
	// Terminal ends the session.
	Terminal bool
	// DropLastTurn removes the model's last turn from history before the
	// message is sent.
	DropLastTurn bool
}

// Request is one action call from the model.
type Request struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// Validator is implemented by argument structs.
type Validator interface {
	Validate() error
}

// Decode parses raw into a T and validates it. Missing or null arguments
// decode as the zero value.
func Decode[T any](raw json.RawMessage) (T, error) {
	var args T
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, &args); err != nil {
			return args, types.NewValidationError("arguments", fmt.Sprintf("ERROR: Invalid arguments: %v", err))
		}
	}
	if v, ok := any(&args).(Validator); ok {
		if err := v.Validate(); err != nil {
			return args, err
		}
	}
	return args, nil
}

// BaseSchema creates a common JSON schema structure for an action with the
// given properties and required fields.
func BaseSchema(properties map[string]interface{}, required []string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// ElementID is a marker id. Models send it as a number or a numeric string.
type ElementID int

func (id *ElementID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid element id %q", s)
		}
		*id = ElementID(n)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*id = ElementID(int(f))
	return nil
}

// firstID returns the first set id of a pgpt_id/pp_id pair.
func firstID(ids ...*ElementID) (int, bool) {
	for _, id := range ids {
		if id != nil && *id > 0 {
			return int(*id), true
		}
	}
	return 0, false
}
