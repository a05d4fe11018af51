// Package types holds the data shared by every layer of a browsing session:
// conversation turns, session events and the error taxonomy.
package types

// Role is the speaker of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool" // result of an action call
)

// ToolCall is a structured action request carried by an assistant turn.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Turn is one message of the conversation history.
//
// URL and Redacted are bookkeeping for the broker and are never sent to the
// model.
type Turn struct {
	Role       Role      `json:"role"`
	Content    string    `json:"content"`
	Name       string    `json:"name,omitempty"`
	ToolCallID string    `json:"tool_call_id,omitempty"`
	ToolCall   *ToolCall `json:"tool_call,omitempty"`
	URL        string    `json:"url,omitempty"`
	Redacted   bool      `json:"redacted,omitempty"`
}

// NewSystemTurn creates a system turn.
func NewSystemTurn(content string) Turn {
	return Turn{Role: RoleSystem, Content: content}
}

// NewUserTurn creates a user turn.
func NewUserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// NewAssistantTurn creates an assistant turn with free text.
func NewAssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

// NewToolCallTurn creates an assistant turn requesting an action.
func NewToolCallTurn(call ToolCall) Turn {
	return Turn{Role: RoleAssistant, ToolCall: &call}
}

// NewToolTurn creates the turn answering an action call.
func NewToolTurn(callID, name, content string) Turn {
	return Turn{Role: RoleTool, ToolCallID: callID, Name: name, Content: content}
}

// IsFunctionCall reports whether the turn carries a structured action request.
func (t Turn) IsFunctionCall() bool {
	return t.ToolCall != nil
}

// Clone returns a copy that shares no pointers with t.
func (t Turn) Clone() Turn {
	if t.ToolCall != nil {
		call := *t.ToolCall
		t.ToolCall = &call
	}
	return t
}

// CloneTurns copies a history slice.
func CloneTurns(turns []Turn) []Turn {
	out := make([]Turn, len(turns))
	for i, t := range turns {
		out[i] = t.Clone()
	}
	return out
}
