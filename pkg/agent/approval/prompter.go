// Package approval is how a session talks to its operator: free-text
// replies, read confirmations and the plan accept loop all go through a
// Prompter.
package approval

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
)

// ErrNoMoreAnswers is returned by Scripted once every answer is used.
var ErrNoMoreAnswers = errors.New("no more scripted answers")

// AutopilotPrefix marks a model message addressed to a supervising process.
const AutopilotPrefix = "<!_RESPONSE_!>"

// Prompter shows text to the operator and returns their reply.
type Prompter interface {
	Prompt(ctx context.Context, text string) (string, error)
}

// AutopilotMessage formats text for a supervising process.
func AutopilotMessage(text string) string {
	encoded, err := json.Marshal(text)
	if err != nil {
		encoded = []byte(`""`)
	}
	return AutopilotPrefix + string(encoded) + "\n"
}

// IsQuit reports whether reply ends the session: empty, or one of the quit
// words.
func IsQuit(reply string) bool {
	switch strings.ToLower(strings.TrimSpace(reply)) {
	case "", "exit", "quit", "q":
		return true
	}
	return false
}

// IsYes reports whether reply accepts a y/n question.
func IsYes(reply string) bool {
	switch strings.ToLower(strings.TrimSpace(reply)) {
	case "y", "yes":
		return true
	}
	return false
}

// Confirm asks a y/n question.
func Confirm(ctx context.Context, p Prompter, question string) (bool, error) {
	reply, err := p.Prompt(ctx, question)
	if err != nil {
		return false, err
	}
	return IsYes(reply), nil
}

// Scripted answers prompts from a fixed list and records what it was asked.
type Scripted struct {
	mu      sync.Mutex
	answers []string
	prompts []string
}

// NewScripted creates a prompter that returns answers in order.
func NewScripted(answers ...string) *Scripted {
	return &Scripted{answers: answers}
}

// Prompt returns the next answer, or ErrNoMoreAnswers.
func (s *Scripted) Prompt(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.prompts = append(s.prompts, text)
	if len(s.answers) == 0 {
		return "", ErrNoMoreAnswers
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

// Prompts returns every text shown so far.
func (s *Scripted) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

// Auto gives the same answer to every prompt.
type Auto struct {
	Answer string
}

// Prompt returns the policy answer.
func (a Auto) Prompt(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return a.Answer, nil
}
