package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/entrhq/pilot/pkg/browser"
	"github.com/entrhq/pilot/pkg/security/filegate"
	"github.com/entrhq/pilot/pkg/types"
)

const (
	// ShotAttr tags the element a screenshot is taken of.
	ShotAttr = "pgpt-shot"

	DefaultScreenshotPath = "screenshot.png"

	ElementNotFoundMessage = "Element for screenshot could not be found"
	WriteNotAllowedMessage = "ERROR: You are not allowed to write this file"
)

// ScreenshotArgs are the arguments of take_screenshot.
type ScreenshotArgs struct {
	Filepath   string `json:"filepath"`
	ParentType string `json:"parentType"`
	ParentID   string `json:"parentId"`
	Type       string `json:"type"`
	ID         string `json:"id"`
	Selector   string `json:"selector"`
	Content    string `json:"content"`
}

func (a *ScreenshotArgs) Validate() error {
	a.Filepath = strings.TrimSpace(a.Filepath)
	if a.Filepath == "" {
		a.Filepath = DefaultScreenshotPath
	}
	return nil
}

// targeted reports whether any element hint is set.
func (a ScreenshotArgs) targeted() bool {
	return a.ParentType != "" || a.ParentID != "" || a.Type != "" || a.ID != "" || a.Selector != "" || a.Content != ""
}

// CSSSelector builds the element selector from the hints. Selector lists
// are expanded so every alternative keeps its id and descendant parts.
func (a ScreenshotArgs) CSSSelector() string {
	parent := withSuffix(expandKind(a.ParentType), idSelector(a.ParentID))
	main := withSuffix(expandKind(a.Type), idSelector(a.ID)+a.Selector)
	if len(main) == 0 {
		main = []string{"*"}
	}
	if len(parent) == 0 {
		return strings.Join(main, ",")
	}

	var combined []string
	for _, p := range parent {
		for _, m := range main {
			combined = append(combined, p+" "+m)
		}
	}
	return strings.Join(combined, ",")
}

func expandKind(kind string) []string {
	switch kind {
	case "":
		return nil
	case "header":
		return []string{"h1", "h2", "h3"}
	case "field":
		return []string{"input", "select", "textarea"}
	}
	return []string{kind}
}

func idSelector(id string) string {
	if id == "" {
		return ""
	}
	return "#" + id
}

func withSuffix(base []string, suffix string) []string {
	if len(base) == 0 {
		if suffix == "" {
			return nil
		}
		return []string{suffix}
	}
	out := make([]string, len(base))
	for i, b := range base {
		out[i] = b + suffix
	}
	return out
}

// ScreenshotPage is what take_screenshot needs from the page.
type ScreenshotPage interface {
	browser.Evaluator
	browser.Screenshotter
}

// Screenshot captures the page or one element of it to a workspace file.
type Screenshot struct {
	page  ScreenshotPage
	files FileWriter
}

// NewScreenshot creates the take_screenshot action.
func NewScreenshot(page ScreenshotPage, files FileWriter) *Screenshot {
	return &Screenshot{page: page, files: files}
}

func (a *Screenshot) Name() string { return "take_screenshot" }
func (a *Screenshot) Kind() Kind   { return KindScreenshot }

func (a *Screenshot) Description() string {
	return "Takes a screenshot of the page or starting from a specific element."
}

func (a *Screenshot) Schema() map[string]interface{} {
	return BaseSchema(
		map[string]interface{}{
			"filepath": map[string]interface{}{
				"type":        "string",
				"description": "where to save the screenshot, relative to the workspace",
			},
			"parentType": map[string]interface{}{
				"type":        "string",
				"description": "the type of parent the element is under, including: main, footer, header, aside, dialog, nav, article, section, form",
			},
			"parentId": map[string]interface{}{
				"type":        "string",
				"description": "the id of the parent element",
			},
			"type": map[string]interface{}{
				"type":        "string",
				"description": "the type of element including: header, section, field, form, canvas, figure, article, video, code, table",
			},
			"id": map[string]interface{}{
				"type":        "string",
				"description": "the id of the element",
			},
			"selector": map[string]interface{}{
				"type":        "string",
				"description": "An optional more fine-grained CSS selector for the element in addition to the parentType, type, parentId and id",
			},
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Optional content that the element should contain to match",
			},
		},
		nil,
	)
}

func (a *Screenshot) Execute(ctx context.Context, raw json.RawMessage) (Result, error) {
	args, err := Decode[ScreenshotArgs](raw)
	if err != nil {
		return Result{}, err
	}
	if a.page == nil {
		return Result{}, types.ErrMissingPage
	}
	if a.files == nil {
		return Result{Message: WriteNotAllowedMessage, SuppressRescrape: true}, nil
	}

	selector := ""
	if args.targeted() {
		var found bool
		script := browser.Call(screenshotTargetScript, args.CSSSelector(), args.Content, ShotAttr)
		if err := a.page.Evaluate(ctx, script, &found); err != nil {
			return Result{}, fmt.Errorf("failed to find screenshot element: %w", err)
		}
		if !found {
			return Result{Message: ElementNotFoundMessage, SuppressRescrape: true}, nil
		}
		selector = fmt.Sprintf("[%s]", ShotAttr)
	}

	data, err := a.page.Screenshot(ctx, selector)
	if err != nil {
		return Result{}, fmt.Errorf("failed to take screenshot: %w", err)
	}

	path, err := a.files.WriteFile(args.Filepath, data)
	if err != nil {
		if filegate.IsViolation(err) {
			debugLog.Warnf("Screenshot write to %s rejected: %v", args.Filepath, err)
			return Result{Message: WriteNotAllowedMessage, SuppressRescrape: true}, nil
		}
		return Result{}, err
	}

	debugLog.Infof("Screenshot saved to %s", path)
	return Result{Message: fmt.Sprintf("Screenshot saved to %s", path), SuppressRescrape: true}, nil
}
