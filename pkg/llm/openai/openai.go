// Package openai implements llm.ChatClient for OpenAI-compatible chat
// completion APIs using the official openai-go SDK.
//
// Example usage:
//
//	client, err := openai.NewClient(
//	    os.Getenv("OPENAI_API_KEY"),
//	    openai.WithModel("gpt-4"),
//	)
//	if err != nil {
//	    panic(err)
//	}
//
//	resp, err := client.Complete(ctx, llm.Request{
//	    Messages: []types.Turn{types.NewUserTurn("Hello!")},
//	})
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/entrhq/pilot/pkg/actions"
	"github.com/entrhq/pilot/pkg/llm"
	"github.com/entrhq/pilot/pkg/logging"
	"github.com/entrhq/pilot/pkg/types"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("openai")
	if err != nil {
		debugLog.Warnf("Failed to initialize openai logger, using stderr fallback: %v", err)
	}
}

const (
	// DefaultBaseURL is the default OpenAI API base URL
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is used when neither the client nor the request names one.
	DefaultModel = "gpt-4"
)

// Client sends chat completion requests to an OpenAI-compatible API.
type Client struct {
	sdk        openai.Client
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
}

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// WithModel sets the model to use for completions.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithBaseURL sets a custom base URL for OpenAI-compatible APIs.
// This enables using Azure OpenAI, local models, or other compatible services.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient replaces the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new OpenAI client with the given API key.
//
// If apiKey is empty, it will attempt to read from the OPENAI_API_KEY environment variable.
// If baseURL is not provided via WithBaseURL option, it will check OPENAI_BASE_URL environment variable.
//
// Requests are never retried; a failed call surfaces to the caller.
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (provide via parameter or OPENAI_API_KEY environment variable)")
	}

	c := &Client{
		model:      DefaultModel,
		apiKey:     apiKey,
		httpClient: &http.Client{},
		baseURL:    DefaultBaseURL,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.baseURL == DefaultBaseURL || c.baseURL == "" {
		if envBaseURL := os.Getenv("OPENAI_BASE_URL"); envBaseURL != "" {
			c.baseURL = envBaseURL
		} else {
			c.baseURL = DefaultBaseURL
		}
	}

	c.sdk = openai.NewClient(
		option.WithAPIKey(c.apiKey),
		option.WithBaseURL(c.baseURL),
		option.WithHTTPClient(c.httpClient),
		option.WithMaxRetries(0),
	)
	return c, nil
}

// Model returns the default model name.
func (c *Client) Model() string {
	return c.model
}

// BaseURL returns the base URL being used.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Complete implements llm.ChatClient.
func (c *Client) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	params := c.buildParams(req)

	completion, err := c.sdk.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("API request failed with status %d: %w", apiErr.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return translateResponse(completion)
}

func (c *Client) buildParams(req llm.Request) openai.ChatCompletionNewParams {
	model := req.Model
	if model == "" {
		model = c.model
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: convertToOpenAIMessages(req.Messages),
	}

	if len(req.Tools) > 0 {
		params.Tools = encodeTools(req.Tools)
		params.ToolChoice = encodeToolChoice(req.ToolChoice)
		params.ParallelToolCalls = openai.Bool(false)
	}
	return params
}

// convertToOpenAIMessages converts session turns to OpenAI's ChatCompletionMessageParamUnion format.
// URL and Redacted are bookkeeping fields and are never sent.
func convertToOpenAIMessages(turns []types.Turn) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns))

	for _, turn := range turns {
		switch turn.Role {
		case types.RoleSystem:
			messages = append(messages, openai.SystemMessage(turn.Content))
		case types.RoleAssistant:
			messages = append(messages, assistantMessage(turn))
		case types.RoleTool:
			if turn.ToolCallID == "" {
				messages = append(messages, openai.UserMessage(turn.Content))
				continue
			}
			messages = append(messages, openai.ToolMessage(turn.Content, turn.ToolCallID))
		default:
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}

	return messages
}

func assistantMessage(turn types.Turn) openai.ChatCompletionMessageParamUnion {
	if turn.ToolCall == nil {
		return openai.AssistantMessage(turn.Content)
	}

	msg := &openai.ChatCompletionAssistantMessageParam{
		ToolCalls: []openai.ChatCompletionMessageToolCallParam{{
			ID: turn.ToolCall.ID,
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      turn.ToolCall.Name,
				Arguments: turn.ToolCall.Arguments,
			},
		}},
	}
	if turn.Content != "" {
		msg.Content = openai.ChatCompletionAssistantMessageParamContentUnion{OfString: openai.String(turn.Content)}
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: msg}
}

func encodeTools(defs []actions.Definition) []openai.ChatCompletionToolParam {
	tools := make([]openai.ChatCompletionToolParam, 0, len(defs))
	for _, def := range defs {
		tools = append(tools, openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        def.Name,
				Description: openai.String(def.Description),
				Parameters:  shared.FunctionParameters(def.Parameters),
			},
		})
	}
	return tools
}

func encodeToolChoice(choice llm.ToolChoice) openai.ChatCompletionToolChoiceOptionUnionParam {
	switch {
	case choice.Forced():
		return openai.ChatCompletionToolChoiceOptionUnionParam{
			OfChatCompletionNamedToolChoice: &openai.ChatCompletionNamedToolChoiceParam{
				Function: openai.ChatCompletionNamedToolChoiceFunctionParam{Name: choice.Name},
			},
		}
	case choice.Mode == llm.ToolChoiceModeNone:
		return openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String("none")}
	default:
		return openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String("auto")}
	}
}

func translateResponse(completion *openai.ChatCompletion) (*llm.Response, error) {
	if completion == nil || len(completion.Choices) == 0 {
		return nil, errors.New("response contained no choices")
	}

	msg := completion.Choices[0].Message
	turn := types.NewAssistantTurn(msg.Content)

	switch {
	case len(msg.ToolCalls) > 0:
		if len(msg.ToolCalls) > 1 {
			debugLog.Warnf("Model returned %d tool calls, only the first is executed", len(msg.ToolCalls))
		}
		call := msg.ToolCalls[0]
		turn.ToolCall = &types.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		}
	case msg.FunctionCall.Name != "":
		turn.ToolCall = &types.ToolCall{
			Name:      msg.FunctionCall.Name,
			Arguments: msg.FunctionCall.Arguments,
		}
	}

	return &llm.Response{
		Turn: turn,
		Usage: llm.Usage{
			Prompt:     int(completion.Usage.PromptTokens),
			Completion: int(completion.Usage.CompletionTokens),
			Total:      int(completion.Usage.TotalTokens),
		},
	}, nil
}
