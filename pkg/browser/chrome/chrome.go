// Package chrome drives a Chrome or Chromium tab through chromedp and
// exposes it as a dom.Page.
package chrome

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/jmylchreest/slotwatch/internal/logger"
	"github.com/jmylchreest/slotwatch/pkg/dom"
)

// Common Chrome/Chromium binary names across different systems
var chromeBinaryNames = []string{
	"google-chrome-stable",
	"google-chrome",
	"chromium",
	"chromium-browser",
	"chrome",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
	"/snap/bin/chromium",
	`C:\Program Files\Google\Chrome\Application\chrome.exe`,
	`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
}

// FindChromePath returns the first Chrome/Chromium binary found on PATH or
// at a well-known install location, or "".
func FindChromePath() string {
	for _, name := range chromeBinaryNames {
		if path, err := exec.LookPath(name); err == nil {
			logger.Debug("found Chrome binary", "name", name, "path", path)
			return path
		}
	}
	logger.Warn("no Chrome binary found, relying on chromedp defaults")
	return ""
}

// Options configures Launch.
type Options struct {
	Headless bool
	ExecPath string // empty means FindChromePath
	Width    int
	Height   int
	Timeout  time.Duration // per-call timeout (default 30s)
}

// Page is a single browser tab.
type Page struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	timeout     time.Duration
	loads       chan struct{}
}

// Launch starts the browser and opens one tab. Close releases both.
func Launch(opts Options) (*Page, error) {
	if opts.Width == 0 || opts.Height == 0 {
		opts.Width, opts.Height = 1280, 900
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", opts.Headless),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(opts.Width, opts.Height),
	)
	execPath := opts.ExecPath
	if execPath == "" {
		execPath = FindChromePath()
	}
	if execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(logger.Logf("chromedp")))

	p := &Page{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		timeout:     opts.Timeout,
		loads:       make(chan struct{}, 16),
	}

	chromedp.ListenTarget(tabCtx, func(ev any) {
		if _, ok := ev.(*page.EventLoadEventFired); ok {
			select {
			case p.loads <- struct{}{}:
			default:
				logger.Debug("load event dropped, consumer behind")
			}
		}
	})

	// The first Run starts the browser process.
	if err := chromedp.Run(tabCtx); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	logger.Debug("chrome tab ready", "headless", opts.Headless, "exec", execPath)
	return p, nil
}

// Close shuts the tab and the browser.
func (p *Page) Close() error {
	p.cancelTab()
	p.cancelAlloc()
	return nil
}

// run executes actions on the tab, bounded by both ctx and the per-call timeout.
func (p *Page) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

func (p *Page) eval(ctx context.Context, script string, res any) error {
	if err := p.run(ctx, chromedp.Evaluate(script, res)); err != nil {
		return fmt.Errorf("browser evaluate failed: %w", err)
	}
	return nil
}

// found converts a script's boolean result into ErrNotFound.
func found(ok bool, selector string) error {
	if !ok {
		return fmt.Errorf("%w: %s", dom.ErrNotFound, selector)
	}
	return nil
}

func (p *Page) Title(ctx context.Context) (string, error) {
	var title string
	if err := p.run(ctx, chromedp.Title(&title)); err != nil {
		return "", fmt.Errorf("failed to read title: %w", err)
	}
	return title, nil
}

func (p *Page) ReadyState(ctx context.Context) (string, error) {
	var state string
	if err := p.eval(ctx, readyStateScript, &state); err != nil {
		return "", err
	}
	return state, nil
}

func (p *Page) Snapshot(ctx context.Context) (*dom.Snapshot, error) {
	var html, title string
	if err := p.run(ctx,
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("failed to capture page: %w", err)
	}
	return dom.NewSnapshot(title, html)
}

func (p *Page) Exists(ctx context.Context, selector string) (bool, error) {
	var ok bool
	if err := p.eval(ctx, existsScript(selector), &ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (p *Page) SetValue(ctx context.Context, selector, value string) error {
	var ok bool
	if err := p.eval(ctx, setValueScript(selector, value), &ok); err != nil {
		return err
	}
	return found(ok, selector)
}

func (p *Page) SetChecked(ctx context.Context, selector string, checked bool) error {
	var ok bool
	if err := p.eval(ctx, setCheckedScript(selector, checked), &ok); err != nil {
		return err
	}
	return found(ok, selector)
}

func (p *Page) Click(ctx context.Context, selector string) error {
	var ok bool
	if err := p.eval(ctx, clickScript(selector), &ok); err != nil {
		return err
	}
	return found(ok, selector)
}

func (p *Page) ChildCount(ctx context.Context, selector string) (int, error) {
	var n int
	if err := p.eval(ctx, childCountScript(selector), &n); err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, found(false, selector)
	}
	return n, nil
}

// Navigate assigns window.location and returns without waiting; the load
// event arrives on Loads.
func (p *Page) Navigate(ctx context.Context, url string) error {
	var ignored any
	return p.eval(ctx, navigateScript(url), &ignored)
}

func (p *Page) Loads() <-chan struct{} {
	return p.loads
}

var _ dom.Page = (*Page)(nil)
