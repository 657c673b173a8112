package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// stealthScript hides the most common automation fingerprints before any
// page script runs.
const stealthScript = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined});
Object.defineProperty(navigator, 'plugins', {get: () => [1, 2, 3, 4, 5]});
Object.defineProperty(navigator, 'languages', {get: () => ['en-US', 'en']});`

// ChromedpFetcher fetches pages with headless Chrome via chromedp, returning
// the rendered DOM rather than raw transport bytes. It is the sole owner of
// the browser session, which it rotates after a fixed number of fetches to
// reduce fingerprinting.
type ChromedpFetcher struct {
	allocatorCtx    context.Context
	allocatorCancel context.CancelFunc

	mu            sync.Mutex
	browserCtx    context.Context
	browserCancel context.CancelFunc
	fetchCount    int

	timeout           time.Duration
	settle            time.Duration
	sessionMaxFetches int
	userAgent         string
	hostQPS           float64
	hostLimiters      sync.Map
	logger            *zap.Logger
}

// NewChromedpFetcher starts a headless browser configured per cfg.
func NewChromedpFetcher(cfg Config, logger *zap.Logger) (*ChromedpFetcher, error) {
	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts,
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(cfg.UserAgent),
	)
	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocatorCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}

	return &ChromedpFetcher{
		allocatorCtx:      allocatorCtx,
		allocatorCancel:   allocatorCancel,
		browserCtx:        browserCtx,
		browserCancel:     browserCancel,
		timeout:           cfg.FetchTimeout,
		settle:            cfg.SettleWait,
		sessionMaxFetches: cfg.SessionMaxFetches,
		userAgent:         cfg.UserAgent,
		hostQPS:           cfg.HostQPS,
		logger:            logger,
	}, nil
}

// Close tears down the browser and allocator contexts.
func (f *ChromedpFetcher) Close(ctx context.Context) error {
	if f == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.browserCancel()
	f.allocatorCancel()
	select {
	case <-ctx.Done():
	default:
	}
	return nil
}

// Fetch navigates to rawURL in a fresh tab and returns the rendered markup.
// A fetch exceeding the configured timeout is reported as ErrFetchTimeout.
func (f *ChromedpFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := f.waitHostBudget(ctx, rawURL); err != nil {
		return "", fmt.Errorf("fetch rate limit: %w", err)
	}

	browserCtx, err := f.sessionContext()
	if err != nil {
		return "", err
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()

	taskCtx, cancelTask := context.WithTimeout(tabCtx, f.timeout)
	defer cancelTask()

	stopForward := forwardCancel(ctx, cancelTask)
	defer stopForward()

	var html string
	tasks := chromedp.Tasks{
		network.Enable(),
		emulation.SetUserAgentOverride(f.userAgent),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
			return err
		}),
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(f.settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(taskCtx, tasks); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s", ErrFetchTimeout, rawURL)
		}
		return "", fmt.Errorf("chromedp run: %w", err)
	}
	return html, nil
}

// sessionContext returns the current browser context, rotating it once the
// per-session fetch budget is exhausted.
func (f *ChromedpFetcher) sessionContext() (context.Context, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetchCount++
	if f.fetchCount < f.sessionMaxFetches {
		return f.browserCtx, nil
	}

	f.logger.Info("Rotating browser session")
	TotalSessionResets.Inc()
	f.browserCancel()

	browserCtx, browserCancel := chromedp.NewContext(f.allocatorCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		return nil, fmt.Errorf("restart browser session: %w", err)
	}
	f.browserCtx = browserCtx
	f.browserCancel = browserCancel
	f.fetchCount = 0
	return f.browserCtx, nil
}

func (f *ChromedpFetcher) waitHostBudget(ctx context.Context, rawURL string) error {
	if f.hostQPS <= 0 {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse fetch url: %w", err)
	}
	host := strings.ToLower(parsed.Host)
	val, _ := f.hostLimiters.LoadOrStore(host, rate.NewLimiter(rate.Limit(f.hostQPS), 1))
	limiter, ok := val.(*rate.Limiter)
	if !ok {
		return fmt.Errorf("unexpected limiter type %T", val)
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait limiter: %w", err)
	}
	return nil
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
