package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/entrhq/pilot/pkg/browser"
	"github.com/entrhq/pilot/pkg/types"
)

const (
	abortedNavigation = "net::ERR_ABORTED"

	AbortedNavigationMessage = "NOTICE: The connection was aborted. If you clicked on a download link, the file has been downloaded to the default Chrome downloads location."
	NavigationErrorMessage   = "There was an error going to the URL"
)

// NavigateArgs are the arguments of goto_url.
type NavigateArgs struct {
	URL string `json:"url"`
}

func (a *NavigateArgs) Validate() error {
	a.URL = strings.TrimSpace(a.URL)
	if a.URL == "" {
		return types.NewValidationError("url", "ERROR: Missing parameter url")
	}
	return nil
}

// Navigate loads a URL.
type Navigate struct {
	nav browser.Navigator
}

// NewNavigate creates the goto_url action.
func NewNavigate(nav browser.Navigator) *Navigate {
	return &Navigate{nav: nav}
}

func (a *Navigate) Name() string { return "goto_url" }
func (a *Navigate) Kind() Kind   { return KindNavigate }

func (a *Navigate) Description() string {
	return "Goes to a specific URL and gets the content"
}

func (a *Navigate) Schema() map[string]interface{} {
	return BaseSchema(
		map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "The URL to go to (including protocol)",
			},
		},
		[]string{"url"},
	)
}

func (a *Navigate) Execute(ctx context.Context, raw json.RawMessage) (Result, error) {
	args, err := Decode[NavigateArgs](raw)
	if err != nil {
		return Result{}, err
	}
	if a.nav == nil {
		return Result{}, types.ErrMissingPage
	}

	debugLog.Infof("Going to %s", args.URL)
	if err := a.nav.Goto(ctx, args.URL); err != nil {
		if ctx.Err() != nil {
			return Result{}, err
		}
		debugLog.Warnf("Navigation to %s failed: %v", args.URL, err)
		if strings.Contains(err.Error(), abortedNavigation) {
			return Result{Message: AbortedNavigationMessage}, nil
		}
		return Result{Message: NavigationErrorMessage}, nil
	}
	return Result{Message: fmt.Sprintf("You are now on %s", a.nav.URL())}, nil
}
