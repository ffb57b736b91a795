package crawler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrawl/internal/common"
	"golang.org/x/time/rate"
)

// FetchResult holds the raw outcome of rendering one URL.
type FetchResult struct {
	Title      string
	HTML       string
	StatusCode int
}

// Fetcher renders a URL and returns its title and rendered HTML.
// Implementations own their underlying resources; Shutdown releases them.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
	Shutdown()
}

// Browser is a Fetcher backed by a single shared headless Chrome instance.
// The browser is launched lazily on first use and reused by every
// subsequent fetch; each fetch runs in its own tab context so concurrent
// crawls do not interfere with each other's navigation state. The shared
// process is the natural concurrency throttle: if Chrome dies, the next
// fetch relaunches it.
type Browser struct {
	mu            sync.Mutex
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	started       bool

	config  common.CrawlerConfig
	limiter *rate.Limiter
	logger  arbor.ILogger
}

// NewBrowser creates a browser fetcher. Chrome is not launched until the
// first Fetch call.
func NewBrowser(config common.CrawlerConfig, logger arbor.ILogger) *Browser {
	rps := config.RequestsPerSec
	if rps <= 0 {
		rps = 1
	}
	return &Browser{
		config:  config,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  logger,
	}
}

// ensureStarted launches Chrome if it is not running. Callers racing on
// first use share one launch; a dead browser context is torn down and
// relaunched.
func (b *Browser) ensureStarted() (context.Context, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started && b.browserCtx.Err() != nil {
		b.logger.Warn().Msg("Browser process is gone, relaunching")
		b.teardownLocked()
	}

	if b.started {
		return b.browserCtx, nil
	}

	startTime := time.Now()

	allocatorOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.config.Headless),
		chromedp.Flag("disable-gpu", b.config.DisableGPU),
		chromedp.Flag("no-sandbox", b.config.NoSandbox),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(b.config.UserAgent),
	)

	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), allocatorOpts...)
	b.browserCtx, b.browserCancel = chromedp.NewContext(b.allocCtx)

	// Startup test so a broken Chrome install fails here, not mid-crawl
	testCtx, testCancel := context.WithTimeout(b.browserCtx, 30*time.Second)
	defer testCancel()
	if err := chromedp.Run(testCtx, chromedp.Navigate("about:blank")); err != nil {
		b.teardownLocked()
		return nil, fmt.Errorf("browser failed startup test: %w", err)
	}

	b.started = true
	b.logger.Info().
		Bool("headless", b.config.Headless).
		Dur("startup_time", time.Since(startTime)).
		Msg("Browser launched")

	return b.browserCtx, nil
}

// Fetch renders the URL in a fresh tab and returns title, HTML and the
// navigation status code. The tab is always closed before returning.
func (b *Browser) Fetch(ctx context.Context, url string) (*FetchResult, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("fetch cancelled while throttled: %w", err)
	}

	browserCtx, err := b.ensureStarted()
	if err != nil {
		return nil, err
	}

	// Per-call tab, released on every exit path
	tabCtx, tabCancel := chromedp.NewContext(browserCtx)
	defer tabCancel()

	timeout := b.config.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	tabCtx, timeoutCancel := context.WithTimeout(tabCtx, timeout)
	defer timeoutCancel()

	if err := chromedp.Run(tabCtx, network.Enable()); err != nil {
		return nil, fmt.Errorf("failed to enable network domain: %w", err)
	}

	renderWait := b.config.RenderWait
	if renderWait <= 0 {
		renderWait = 2 * time.Second
	}

	var (
		title      string
		html       string
		statusCode int64 = 200
	)
	err = chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(renderWait), // Let JavaScript settle
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &html),
		chromedp.Evaluate(`window.performance?.getEntriesByType?.('navigation')?.[0]?.responseStatus || 200`, &statusCode),
	)
	if err != nil {
		return nil, fmt.Errorf("navigation failed for %s: %w", url, err)
	}

	if html == "" {
		return nil, fmt.Errorf("empty HTML content returned for %s", url)
	}

	b.logger.Debug().
		Str("url", url).
		Str("title", title).
		Int("status_code", int(statusCode)).
		Int("content_size", len(html)).
		Msg("Page fetched")

	return &FetchResult{
		Title:      title,
		HTML:       html,
		StatusCode: int(statusCode),
	}, nil
}

// Shutdown closes the shared browser. Safe to call when it never started.
func (b *Browser) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		return
	}

	b.logger.Info().Msg("Shutting down browser")
	b.teardownLocked()
}

// teardownLocked cancels the browser and allocator contexts. Must be
// called with the mutex held.
func (b *Browser) teardownLocked() {
	if b.browserCancel != nil {
		b.browserCancel()
		b.browserCancel = nil
	}
	if b.allocCancel != nil {
		b.allocCancel()
		b.allocCancel = nil
	}
	b.started = false
}
