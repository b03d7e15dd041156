// Package pw drives a Chromium page through playwright-go and exposes it
// as a dom.Page.
package pw

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/jmylchreest/slotwatch/internal/logger"
	"github.com/jmylchreest/slotwatch/pkg/dom"
)

// Options configures Launch.
type Options struct {
	Headless bool
	Width    int
	Height   int
	// Install downloads the driver and browsers when missing.
	Install bool
}

// Page functions evaluated with a single argument object.
const (
	existsFn     = `(sel) => document.querySelector(sel) !== null`
	setValueFn   = `([sel, value]) => { const el = document.querySelector(sel); if (!el) return false; el.value = value; el.dispatchEvent(new Event('input', {bubbles: true})); el.dispatchEvent(new Event('change', {bubbles: true})); return true; }`
	setCheckedFn = `([sel, checked]) => { const el = document.querySelector(sel); if (!el) return false; el.checked = checked; el.dispatchEvent(new Event('change', {bubbles: true})); return true; }`
	clickFn      = `(sel) => { const el = document.querySelector(sel); if (!el) return false; el.click(); return true; }`
	childCountFn = `(sel) => { const el = document.querySelector(sel); return el ? el.children.length : -1; }`
	navigateFn   = `(url) => { window.location.href = url; }`
	readyFn      = `() => document.readyState`
)

// Page wraps one playwright page.
type Page struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	loads   chan struct{}
}

// Launch starts playwright and Chromium and opens a page.
func Launch(opts Options) (*Page, error) {
	if opts.Width == 0 || opts.Height == 0 {
		opts.Width, opts.Height = 1280, 900
	}
	if opts.Install {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return nil, fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	runner, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := runner.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		_ = runner.Stop()
		return nil, fmt.Errorf("failed to launch chromium: %w", err)
	}

	page, err := browser.NewPage(playwright.BrowserNewPageOptions{
		Viewport: &playwright.Size{Width: opts.Width, Height: opts.Height},
	})
	if err != nil {
		_ = browser.Close()
		_ = runner.Stop()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	p := &Page{pw: runner, browser: browser, page: page, loads: make(chan struct{}, 16)}
	page.OnLoad(func(playwright.Page) {
		select {
		case p.loads <- struct{}{}:
		default:
			logger.Debug("load event dropped, consumer behind")
		}
	})

	logger.Debug("playwright page ready", "headless", opts.Headless)
	return p, nil
}

// Close shuts the browser and the driver.
func (p *Page) Close() error {
	if err := p.browser.Close(); err != nil {
		logger.Debug("browser close failed", "error", err)
	}
	return p.pw.Stop()
}

// evaluate runs fn unless ctx is already done; playwright calls are not
// context aware.
func (p *Page) evaluate(ctx context.Context, fn string, arg ...any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := p.page.Evaluate(fn, arg...)
	if err != nil {
		return nil, fmt.Errorf("browser evaluate failed: %w", err)
	}
	return res, nil
}

func (p *Page) evaluateFound(ctx context.Context, selector, fn string, arg any) error {
	res, err := p.evaluate(ctx, fn, arg)
	if err != nil {
		return err
	}
	if ok, _ := res.(bool); !ok {
		return fmt.Errorf("%w: %s", dom.ErrNotFound, selector)
	}
	return nil
}

func (p *Page) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.page.Title()
}

func (p *Page) ReadyState(ctx context.Context) (string, error) {
	res, err := p.evaluate(ctx, readyFn)
	if err != nil {
		return "", err
	}
	s, _ := res.(string)
	return s, nil
}

func (p *Page) Snapshot(ctx context.Context) (*dom.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	html, err := p.page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to capture page: %w", err)
	}
	title, err := p.page.Title()
	if err != nil {
		return nil, fmt.Errorf("failed to read title: %w", err)
	}
	return dom.NewSnapshot(title, html)
}

func (p *Page) Exists(ctx context.Context, selector string) (bool, error) {
	res, err := p.evaluate(ctx, existsFn, selector)
	if err != nil {
		return false, err
	}
	ok, _ := res.(bool)
	return ok, nil
}

func (p *Page) SetValue(ctx context.Context, selector, value string) error {
	return p.evaluateFound(ctx, selector, setValueFn, []any{selector, value})
}

func (p *Page) SetChecked(ctx context.Context, selector string, checked bool) error {
	return p.evaluateFound(ctx, selector, setCheckedFn, []any{selector, checked})
}

func (p *Page) Click(ctx context.Context, selector string) error {
	return p.evaluateFound(ctx, selector, clickFn, selector)
}

func (p *Page) ChildCount(ctx context.Context, selector string) (int, error) {
	res, err := p.evaluate(ctx, childCountFn, selector)
	if err != nil {
		return 0, err
	}
	n, ok := toInt(res)
	if !ok {
		return 0, fmt.Errorf("unexpected child count result %T", res)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %s", dom.ErrNotFound, selector)
	}
	return n, nil
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	_, err := p.evaluate(ctx, navigateFn, url)
	return err
}

func (p *Page) Loads() <-chan struct{} {
	return p.loads
}

// toInt normalises a JS number as returned by Evaluate.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

var _ dom.Page = (*Page)(nil)
