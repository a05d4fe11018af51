// Package llmtest provides a scripted ChatClient for tests.
package llmtest

import (
	"context"
	"errors"
	"sync"

	"github.com/entrhq/pilot/pkg/llm"
	"github.com/entrhq/pilot/pkg/types"
)

// ErrNoMoreResponses is returned once the script is exhausted.
var ErrNoMoreResponses = errors.New("llmtest: no more scripted responses")

// Client replays scripted responses in order and records every request.
type Client struct {
	mu        sync.Mutex
	responses []*llm.Response
	requests  []llm.Request
	errs      map[int]error
}

// New creates a client replaying responses.
func New(responses ...*llm.Response) *Client {
	return &Client{responses: responses, errs: make(map[int]error)}
}

// FailAt makes the n-th call (0-based) return err instead of a response.
func (c *Client) FailAt(n int, err error) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs[n] = err
	return c
}

// Complete implements llm.ChatClient.
func (c *Client) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.requests)
	req.Messages = types.CloneTurns(req.Messages)
	c.requests = append(c.requests, req)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := c.errs[n]; ok {
		return nil, err
	}
	if len(c.responses) == 0 {
		return nil, ErrNoMoreResponses
	}
	resp := c.responses[0]
	c.responses = c.responses[1:]
	return resp, nil
}

// Requests returns the requests received so far.
func (c *Client) Requests() []llm.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]llm.Request(nil), c.requests...)
}

// Last returns the most recent request.
func (c *Client) Last() llm.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.requests) == 0 {
		return llm.Request{}
	}
	return c.requests[len(c.requests)-1]
}

// Text is a free-text reply.
func Text(content string) *llm.Response {
	return &llm.Response{
		Turn:  types.NewAssistantTurn(content),
		Usage: llm.Usage{Prompt: 10, Completion: 5, Total: 15},
	}
}

// Call is an action call reply.
func Call(id, name, arguments string) *llm.Response {
	return &llm.Response{
		Turn:  types.NewToolCallTurn(types.ToolCall{ID: id, Name: name, Arguments: arguments}),
		Usage: llm.Usage{Prompt: 10, Completion: 5, Total: 15},
	}
}
