package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/entrhq/pilot/pkg/types"
	"github.com/playwright-community/playwright-go"
)

// playwrightPage drives one Chromium tab through playwright-go.
type playwrightPage struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page

	opts       Options
	downloaded atomic.Bool
	closeOnce  sync.Once
}

// Launch installs the playwright driver if needed, starts Chromium and opens
// a single page.
func Launch(ctx context.Context, opts Options) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	runOpts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   opts.Logger,
		Stderr:   opts.Logger,
	}
	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if opts.DownloadDir != "" {
		launchOpts.DownloadsPath = playwright.String(opts.DownloadDir)
	}
	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		AcceptDownloads: playwright.Bool(true),
		Viewport: &playwright.Size{
			Width:  opts.Width,
			Height: opts.Height,
		},
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(milliseconds(opts.Timeout))

	p := &playwrightPage{
		pw:      pw,
		browser: browser,
		context: bctx,
		page:    page,
		opts:    opts,
	}
	page.OnDownload(func(playwright.Download) {
		p.downloaded.Store(true)
	})
	return p, nil
}

func (p *playwrightPage) Goto(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	if err != nil {
		return p.wrap("goto "+url, p.opts.Timeout, err)
	}
	return nil
}

func (p *playwrightPage) URL() string {
	return p.page.URL()
}

func (p *playwrightPage) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.page.Title()
}

func (p *playwrightPage) ExpectNavigation(ctx context.Context, timeout time.Duration, trigger func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if timeout <= 0 {
		timeout = p.opts.NavigationTimeout
	}
	_, err := p.page.ExpectNavigation(trigger, playwright.PageExpectNavigationOptions{
		Timeout: playwright.Float(milliseconds(timeout)),
	})
	if err != nil {
		return p.wrap("navigation", timeout, err)
	}
	return nil
}

func (p *playwrightPage) Evaluate(ctx context.Context, script string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	result, err := p.page.Evaluate(script)
	if err != nil {
		return fmt.Errorf("evaluate failed: %w", err)
	}
	return decodeInto(result, out)
}

func (p *playwrightPage) Click(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.page.Locator(selector).First().Click(); err != nil {
		return p.wrap("click "+selector, p.opts.Timeout, err)
	}
	return nil
}

func (p *playwrightPage) Type(ctx context.Context, selector, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.page.Locator(selector).First().Fill(text); err != nil {
		return p.wrap("type "+selector, p.opts.Timeout, err)
	}
	return nil
}

func (p *playwrightPage) SelectOptions(ctx context.Context, selector string, spec SelectSpec) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	values := playwright.SelectOptionValues{}
	switch {
	case len(spec.Labels) > 0:
		labels := append([]string(nil), spec.Labels...)
		values.Labels = &labels
	case spec.Index != nil:
		values.Indexes = &[]int{*spec.Index}
	default:
		return nil, fmt.Errorf("no option labels or index given")
	}

	selected, err := p.page.Locator(selector).First().SelectOption(values)
	if err != nil {
		return nil, p.wrap("select "+selector, p.opts.Timeout, err)
	}
	return selected, nil
}

func (p *playwrightPage) SetChecked(ctx context.Context, selector string, checked bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.page.Locator(selector).First().SetChecked(checked); err != nil {
		return p.wrap("check "+selector, p.opts.Timeout, err)
	}
	return nil
}

func (p *playwrightPage) Screenshot(ctx context.Context, selector string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if selector == "" {
		return p.page.Screenshot(playwright.PageScreenshotOptions{
			FullPage: playwright.Bool(true),
		})
	}
	data, err := p.page.Locator(selector).First().Screenshot()
	if err != nil {
		return nil, p.wrap("screenshot "+selector, p.opts.Timeout, err)
	}
	return data, nil
}

func (p *playwrightPage) DownloadStarted() bool {
	return p.downloaded.Swap(false)
}

// Close releases the page, context, browser and driver. Errors after the
// first are ignored so cleanup always completes.
func (p *playwrightPage) Close() error {
	var err error
	p.closeOnce.Do(func() {
		_ = p.page.Close()
		_ = p.context.Close()
		err = p.browser.Close()
		if stopErr := p.pw.Stop(); err == nil {
			err = stopErr
		}
	})
	return err
}

func (p *playwrightPage) wrap(op string, after time.Duration, err error) error {
	if errors.Is(err, playwright.ErrTimeout) {
		return types.NewTimeoutError(op, after, err)
	}
	return fmt.Errorf("%s failed: %w", op, err)
}

func milliseconds(d time.Duration) float64 {
	return float64(d / time.Millisecond)
}
