package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Default values for launching a page.
const (
	DefaultTimeout           = 30 * time.Second
	DefaultNavigationTimeout = 6 * time.Second
	DefaultViewportWidth     = 1280
	DefaultViewportHeight    = 720
)

// Navigator moves the page and reports where it is.
type Navigator interface {
	// Goto loads url and waits for the load event.
	Goto(ctx context.Context, url string) error
	URL() string
	Title(ctx context.Context) (string, error)
	// ExpectNavigation runs trigger and waits up to timeout for the main
	// frame to navigate. A wait that expires returns a *types.TimeoutError.
	ExpectNavigation(ctx context.Context, timeout time.Duration, trigger func() error) error
}

// Evaluator runs scripts in the page.
type Evaluator interface {
	// Evaluate runs an expression and decodes its JSON-serializable result
	// into out. A nil out discards the result.
	Evaluate(ctx context.Context, script string, out any) error
}

// SelectSpec picks options of a select element by label, or by index when
// no labels are given.
type SelectSpec struct {
	Labels []string
	Index  *int
}

// Interactor acts on elements by CSS selector. The first match is used.
type Interactor interface {
	Click(ctx context.Context, selector string) error
	Type(ctx context.Context, selector, text string) error
	SelectOptions(ctx context.Context, selector string, spec SelectSpec) ([]string, error)
	SetChecked(ctx context.Context, selector string, checked bool) error
}

// Screenshotter captures PNG screenshots. An empty selector captures the
// full page.
type Screenshotter interface {
	Screenshot(ctx context.Context, selector string) ([]byte, error)
}

// Downloads reports file downloads started by the page.
type Downloads interface {
	// DownloadStarted reports whether a download began since the last call.
	DownloadStarted() bool
}

// Page is everything a session can do with a browser tab.
type Page interface {
	Navigator
	Evaluator
	Interactor
	Screenshotter
	Downloads
	io.Closer
}

// Options configures a launched page.
type Options struct {
	Headless          bool
	Width             int
	Height            int
	Timeout           time.Duration // default for actions and Goto
	NavigationTimeout time.Duration // default for ExpectNavigation
	DownloadDir       string
	Logger            io.Writer // driver diagnostics; nil discards
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 || o.Height <= 0 {
		o.Width, o.Height = DefaultViewportWidth, DefaultViewportHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = DefaultNavigationTimeout
	}
	if o.Logger == nil {
		o.Logger = io.Discard
	}
	return o
}

// Call returns an expression that invokes the function source fn with args
// encoded as JSON literals.
func Call(fn string, args ...any) string {
	encoded := make([]string, 0, len(args))
	for _, arg := range args {
		data, err := json.Marshal(arg)
		if err != nil {
			data = []byte("null")
		}
		encoded = append(encoded, string(data))
	}
	return fmt.Sprintf("(%s)(%s)", strings.TrimSpace(fn), strings.Join(encoded, ", "))
}

// decodeInto converts a driver's generic result into out via JSON.
func decodeInto(result any, out any) error {
	if out == nil {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode script result: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode script result: %w", err)
	}
	return nil
}
