package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/entrhq/pilot/pkg/types"
)

// chromedpPage drives one Chrome tab over the DevTools protocol.
type chromedpPage struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc

	opts       Options
	url        atomic.Value
	downloaded atomic.Bool
	closeOnce  sync.Once
}

// LaunchChromedp starts Chrome with chromedp and opens a single tab.
//
// The browser lives until Close, independent of ctx, which only bounds
// startup.
func LaunchChromedp(ctx context.Context, opts Options) (Page, error) {
	opts = opts.withDefaults()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.WindowSize(opts.Width, opts.Height),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tabCtx, cancel := chromedp.NewContext(allocCtx)

	p := &chromedpPage{
		ctx:         tabCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
		opts:        opts,
	}
	p.url.Store("about:blank")

	chromedp.ListenBrowser(tabCtx, func(ev any) {
		if _, ok := ev.(*browser.EventDownloadWillBegin); ok {
			p.downloaded.Store(true)
		}
	})
	chromedp.ListenTarget(tabCtx, func(ev any) {
		if e, ok := ev.(*page.EventFrameNavigated); ok && e.Frame.ParentID == "" {
			p.url.Store(e.Frame.URL)
		}
	})

	startup := []chromedp.Action{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
	}
	behavior := browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllow).WithEventsEnabled(true)
	if opts.DownloadDir != "" {
		behavior = behavior.WithDownloadPath(opts.DownloadDir)
	}
	startup = append(startup, behavior)

	if err := p.run(ctx, opts.Timeout, startup...); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	return p, nil
}

// run executes actions on the tab, bounded by timeout and the caller's ctx.
func (p *chromedpPage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (p *chromedpPage) Goto(ctx context.Context, url string) error {
	// Navigate waits for the load event of the new document.
	if err := p.run(ctx, p.opts.Timeout, chromedp.Navigate(url)); err != nil {
		return p.wrap(ctx, "goto "+url, p.opts.Timeout, err)
	}
	return nil
}

func (p *chromedpPage) URL() string {
	return p.url.Load().(string)
}

func (p *chromedpPage) Title(ctx context.Context) (string, error) {
	var title string
	if err := p.run(ctx, p.opts.Timeout, chromedp.Title(&title)); err != nil {
		return "", fmt.Errorf("title failed: %w", err)
	}
	return title, nil
}

func (p *chromedpPage) ExpectNavigation(ctx context.Context, timeout time.Duration, trigger func() error) error {
	if timeout <= 0 {
		timeout = p.opts.NavigationTimeout
	}

	loaded := make(chan struct{}, 1)
	lctx, cancel := context.WithCancel(p.ctx)
	defer cancel()

	navigated := atomic.Bool{}
	chromedp.ListenTarget(lctx, func(ev any) {
		switch e := ev.(type) {
		case *page.EventFrameNavigated:
			if e.Frame.ParentID == "" {
				navigated.Store(true)
			}
		case *page.EventLoadEventFired:
			if navigated.Load() {
				select {
				case loaded <- struct{}{}:
				default:
				}
			}
		}
	})

	if err := trigger(); err != nil {
		return err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-loaded:
		return nil
	case <-timer.C:
		return types.NewTimeoutError("navigation", timeout, nil)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *chromedpPage) Evaluate(ctx context.Context, script string, out any) error {
	var result any
	if err := p.run(ctx, p.opts.Timeout, chromedp.Evaluate(script, &result)); err != nil {
		return fmt.Errorf("evaluate failed: %w", err)
	}
	return decodeInto(result, out)
}

func (p *chromedpPage) Click(ctx context.Context, selector string) error {
	err := p.run(ctx, p.opts.Timeout, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
	if err != nil {
		return p.wrap(ctx, "click "+selector, p.opts.Timeout, err)
	}
	return nil
}

func (p *chromedpPage) Type(ctx context.Context, selector, text string) error {
	err := p.run(ctx, p.opts.Timeout,
		chromedp.SetValue(selector, "", chromedp.ByQuery),
		chromedp.SendKeys(selector, text, chromedp.ByQuery),
	)
	if err != nil {
		return p.wrap(ctx, "type "+selector, p.opts.Timeout, err)
	}
	return nil
}

func (p *chromedpPage) SelectOptions(ctx context.Context, selector string, spec SelectSpec) ([]string, error) {
	if len(spec.Labels) == 0 && spec.Index == nil {
		return nil, fmt.Errorf("no option labels or index given")
	}

	index := -1
	if spec.Index != nil {
		index = *spec.Index
	}

	var selected []string
	if err := p.Evaluate(ctx, Call(selectOptionsScript, selector, spec.Labels, index), &selected); err != nil {
		return nil, err
	}
	if selected == nil {
		return nil, types.NewNotFoundError("element", selector)
	}
	return selected, nil
}

func (p *chromedpPage) SetChecked(ctx context.Context, selector string, checked bool) error {
	var found bool
	if err := p.Evaluate(ctx, Call(setCheckedScript, selector, checked), &found); err != nil {
		return err
	}
	if !found {
		return types.NewNotFoundError("element", selector)
	}
	return nil
}

func (p *chromedpPage) Screenshot(ctx context.Context, selector string) ([]byte, error) {
	var buf []byte
	var action chromedp.Action = chromedp.FullScreenshot(&buf, 90)
	if selector != "" {
		action = chromedp.Screenshot(selector, &buf, chromedp.ByQuery, chromedp.NodeVisible)
	}
	if err := p.run(ctx, p.opts.Timeout, action); err != nil {
		return nil, p.wrap(ctx, "screenshot", p.opts.Timeout, err)
	}
	return buf, nil
}

func (p *chromedpPage) DownloadStarted() bool {
	return p.downloaded.Swap(false)
}

func (p *chromedpPage) Close() error {
	p.closeOnce.Do(func() {
		p.cancel()
		p.allocCancel()
	})
	return nil
}

// wrap turns a deadline hit by run into a TimeoutError. A cancelled caller
// context is returned unchanged.
func (p *chromedpPage) wrap(ctx context.Context, op string, after time.Duration, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return types.NewTimeoutError(op, after, err)
	}
	return fmt.Errorf("%s failed: %w", op, err)
}
