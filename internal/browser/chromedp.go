package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"playlist-crawler/internal/crawler"
)

type Options struct {
	UserAgent string
	Headless  bool
	NoSandbox bool

	// ExecPath overrides Chrome discovery.
	ExecPath string
}

// Launcher starts one Chrome process per page so jobs never share
// cookies, cache or tabs.
type Launcher struct {
	allocOpts []chromedp.ExecAllocatorOption
}

func NewLauncher(opts Options) *Launcher {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.NoSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	return &Launcher{allocOpts: allocOpts}
}

// NewPage launches a browser bound to ctx and opens its first tab.
func (l *Launcher) NewPage(ctx context.Context) (crawler.Page, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, l.allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	// An empty Run starts the browser.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	return &page{ctx: tabCtx, cancelTab: cancelTab, cancelAlloc: cancelAlloc}, nil
}

type page struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// run executes actions on the tab, aborting when either the tab or ctx ends.
func (p *page) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (p *page) Navigate(ctx context.Context, url string) error {
	err := p.run(ctx,
		network.Enable(),
		network.SetCacheDisabled(true),
		chromedp.Navigate(url),
	)
	if err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (p *page) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := p.run(ctx, chromedp.WaitReady(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("wait for %q: %w", selector, err)
	}
	return nil
}

func awaitPromise(params *runtime.EvaluateParams) *runtime.EvaluateParams {
	return params.WithAwaitPromise(true)
}

func (p *page) Evaluate(ctx context.Context, script string, out any) error {
	return p.run(ctx, chromedp.Evaluate(script, out, awaitPromise))
}

func (p *page) QueryAll(ctx context.Context, selector string) ([]crawler.ItemNode, error) {
	quoted, err := json.Marshal(selector)
	if err != nil {
		return nil, err
	}
	script := fmt.Sprintf(`Array.from(document.querySelectorAll(%s), e => e.outerHTML)`, quoted)

	var fragments []string
	if err := p.run(ctx, chromedp.Evaluate(script, &fragments)); err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	return crawler.ParseItemNodes(fragments)
}

// Close shuts the tab and the browser process.
func (p *page) Close() error {
	err := chromedp.Cancel(p.ctx)
	p.cancelTab()
	p.cancelAlloc()
	return err
}
