package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/entrhq/pilot/pkg/browser"
	"github.com/entrhq/pilot/pkg/elements"
	"github.com/entrhq/pilot/pkg/types"
)

const (
	codeHeaders         = "h1,h2,h3,h4"
	DefaultLineSelector = "span.line"
)

// FindCodeArgs are the arguments of find_code.
type FindCodeArgs struct {
	LineSelector string `json:"lineSelector"`
	CodeTitle    string `json:"codeTitle"`
}

func (a *FindCodeArgs) Validate() error {
	a.LineSelector = strings.TrimSpace(a.LineSelector)
	if a.LineSelector == "" {
		a.LineSelector = DefaultLineSelector
	}
	a.CodeTitle = strings.TrimSpace(a.CodeTitle)
	return nil
}

// CodeInfo is the code found under one header.
type CodeInfo struct {
	Title        string   `json:"title"`
	Descriptions []string `json:"descriptions"`
	Codeblocks   []string `json:"codeblocks"`
}

// FindCode extracts code blocks and their descriptions by header.
type FindCode struct {
	page browser.Evaluator
}

// NewFindCode creates the find_code action.
func NewFindCode(page browser.Evaluator) *FindCode {
	return &FindCode{page: page}
}

func (a *FindCode) Name() string { return "find_code" }
func (a *FindCode) Kind() Kind   { return KindFindCode }

func (a *FindCode) Description() string {
	return "Finds code blocks within headers containing optional descriptive text for the code"
}

func (a *FindCode) Schema() map[string]interface{} {
	return BaseSchema(
		map[string]interface{}{
			"lineSelector": map[string]interface{}{
				"type":        "string",
				"description": "selector to use within a code tag to identify each line of code",
			},
			"codeTitle": map[string]interface{}{
				"type":        "string",
				"description": "the section header title for the code to be extracted",
			},
		},
		nil,
	)
}

func (a *FindCode) Execute(ctx context.Context, raw json.RawMessage) (Result, error) {
	args, err := Decode[FindCodeArgs](raw)
	if err != nil {
		return Result{}, err
	}
	if a.page == nil {
		return Result{}, types.ErrMissingPage
	}

	var found []CodeInfo
	if err := a.page.Evaluate(ctx, browser.Call(codeScript, codeHeaders, args.LineSelector), &found); err != nil {
		return Result{}, fmt.Errorf("failed to find code: %w", err)
	}

	wanted := strings.ToLower(args.CodeTitle)
	results := make([]CodeInfo, 0, len(found))
	for _, info := range found {
		info.Title = elements.NormalizeSpace(info.Title)
		if wanted != "" && !strings.Contains(strings.ToLower(info.Title), wanted) {
			continue
		}
		if info.Descriptions == nil {
			info.Descriptions = []string{}
		}
		if info.Codeblocks == nil {
			info.Codeblocks = []string{}
		}
		results = append(results, info)
	}

	data, err := json.Marshal(results)
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode code: %w", err)
	}
	return Result{Message: "Code found on page:" + string(data), SuppressRescrape: true}, nil
}
