// Package browsertest provides a scripted browser.Page and live browser
// helpers for tests.
package browsertest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/pilot/pkg/browser"
)

// Call records one method invocation on the page.
type Call struct {
	Method string
	Args   []string
}

// Script answers Evaluate calls whose script contains Match.
type Script struct {
	Match string
	// Result is encoded to JSON and decoded into the caller's out value.
	Result any
	Err    error
	// Func, when set, computes the result from the script text.
	Func func(script string) (any, error)
}

// Page is an in-memory browser.Page. Configure the exported fields before
// use; the zero value is a blank page where every Evaluate fails.
type Page struct {
	mu sync.Mutex

	CurrentURL string
	PageTitle  string
	Scripts    []Script

	// GotoErr is returned by Goto; on success the URL becomes the target.
	GotoErr error
	// RedirectTo, when set, is the URL Goto and navigations land on.
	RedirectTo string
	// NavigateTo is the URL a triggered navigation lands on. Empty means
	// the trigger does not navigate and ExpectNavigation reports NavigationErr.
	NavigateTo    string
	NavigationErr error

	ClickErr      error
	TypeErr       map[string]error
	SelectErr     error
	CheckErr      error
	ScreenshotErr error
	Screenshots   map[string][]byte

	// DownloadOnClick makes the next click start a download.
	DownloadOnClick bool

	calls      []Call
	downloaded bool
	closed     bool
}

var _ browser.Page = (*Page)(nil)

// New creates a page at url.
func New(url, title string) *Page {
	return &Page{CurrentURL: url, PageTitle: title}
}

// On adds a scripted result for Evaluate calls containing match.
func (p *Page) On(match string, result any) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Scripts = append(p.Scripts, Script{Match: match, Result: result})
	return p
}

// OnFunc adds a computed result for Evaluate calls containing match.
func (p *Page) OnFunc(match string, fn func(script string) (any, error)) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Scripts = append(p.Scripts, Script{Match: match, Func: fn})
	return p
}

// Calls returns every recorded invocation.
func (p *Page) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Call(nil), p.calls...)
}

// CallsTo returns the recorded invocations of method.
func (p *Page) CallsTo(method string) []Call {
	var out []Call
	for _, c := range p.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Touched reports whether anything was done to the page.
func (p *Page) Touched() bool {
	return len(p.Calls()) > 0
}

// Closed reports whether Close was called.
func (p *Page) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Page) record(method string, args ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, Call{Method: method, Args: args})
}

func (p *Page) Goto(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.record("Goto", url)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.GotoErr != nil {
		return p.GotoErr
	}
	p.CurrentURL = url
	if p.RedirectTo != "" {
		p.CurrentURL = p.RedirectTo
	}
	return nil
}

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.CurrentURL
}

func (p *Page) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.PageTitle, nil
}

func (p *Page) ExpectNavigation(ctx context.Context, timeout time.Duration, trigger func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.record("ExpectNavigation", timeout.String())

	if err := trigger(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.NavigateTo == "" {
		if p.NavigationErr != nil {
			return p.NavigationErr
		}
		return fmt.Errorf("no navigation scripted")
	}
	p.CurrentURL = p.NavigateTo
	return nil
}

func (p *Page) Evaluate(ctx context.Context, script string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.record("Evaluate", script)

	p.mu.Lock()
	scripts := append([]Script(nil), p.Scripts...)
	p.mu.Unlock()

	for _, s := range scripts {
		if !strings.Contains(script, s.Match) {
			continue
		}
		result := s.Result
		if s.Func != nil {
			var err error
			if result, err = s.Func(script); err != nil {
				return err
			}
		} else if s.Err != nil {
			return s.Err
		}
		return decode(result, out)
	}
	return fmt.Errorf("no scripted result for script: %.60s", script)
}

func decode(result, out any) error {
	if out == nil {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (p *Page) Click(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.record("Click", selector)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ClickErr != nil {
		return p.ClickErr
	}
	if p.DownloadOnClick {
		p.DownloadOnClick = false
		p.downloaded = true
	}
	return nil
}

func (p *Page) Type(ctx context.Context, selector, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.record("Type", selector, text)

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.TypeErr[selector]
}

func (p *Page) SelectOptions(ctx context.Context, selector string, spec browser.SelectSpec) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	args := append([]string{selector}, spec.Labels...)
	if spec.Index != nil {
		args = append(args, fmt.Sprintf("#%d", *spec.Index))
	}
	p.record("SelectOptions", args...)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.SelectErr != nil {
		return nil, p.SelectErr
	}
	return spec.Labels, nil
}

func (p *Page) SetChecked(ctx context.Context, selector string, checked bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.record("SetChecked", selector, fmt.Sprint(checked))

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.CheckErr
}

func (p *Page) Screenshot(ctx context.Context, selector string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.record("Screenshot", selector)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ScreenshotErr != nil {
		return nil, p.ScreenshotErr
	}
	if data, ok := p.Screenshots[selector]; ok {
		return data, nil
	}
	return []byte("PNG"), nil
}

func (p *Page) DownloadStarted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	started := p.downloaded
	p.downloaded = false
	return started
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
