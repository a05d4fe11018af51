// Package tokenizer estimates token counts with the OpenAI BPE encodings.
//
// The broker only needs an estimate when a response carries no usage block,
// so the counts follow the chat format overhead published for gpt-3.5/gpt-4
// rather than any one model exactly.
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/entrhq/pilot/pkg/types"
)

// DefaultEncoding is used when the model has no registered encoding.
const DefaultEncoding = "cl100k_base"

const (
	tokensPerMessage = 3
	tokensPerName    = 1
	replyPriming     = 3
)

// Tokenizer counts tokens of text and conversation turns.
type Tokenizer struct {
	encoding *tiktoken.Tiktoken
}

// New creates a tokenizer using the default encoding.
func New() (*Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(DefaultEncoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", DefaultEncoding, err)
	}
	return &Tokenizer{encoding: enc}, nil
}

// ForModel creates a tokenizer for model, falling back to the default
// encoding for unknown models.
func ForModel(model string) (*Tokenizer, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return New()
	}
	return &Tokenizer{encoding: enc}, nil
}

// CountTokens returns the number of tokens in text.
func (t *Tokenizer) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(t.encoding.Encode(text, nil, nil))
}

// CountTurnsTokens returns the prompt size of a conversation, including the
// per-message framing and the assistant reply priming.
func (t *Tokenizer) CountTurnsTokens(turns []types.Turn) int {
	if len(turns) == 0 {
		return 0
	}

	total := replyPriming
	for _, turn := range turns {
		total += tokensPerMessage
		total += t.CountTokens(string(turn.Role))
		total += t.CountTokens(turn.Content)
		if turn.Name != "" {
			total += tokensPerName + t.CountTokens(turn.Name)
		}
		if turn.ToolCall != nil {
			total += t.CountTokens(turn.ToolCall.Name) + t.CountTokens(turn.ToolCall.Arguments)
		}
	}
	return total
}
