package crawler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Engine drives the breadth-first traversal: it owns the frontier queue and
// visited set, enforces the depth bound and politeness delay, invokes the
// fetch capability, classifies each outcome, and accumulates the Result.
//
// The traversal is single-threaded and cooperative by design: one URL is
// fetched at a time, strictly in FIFO order, with a randomized delay between
// fetches. Deterministic BFS order and the pacing are behavioral
// requirements, not incidental limitations.
type Engine struct {
	cfg        Config
	target     Target
	fetcher    Fetcher
	robots     RobotsPolicy
	scope      *ScopeFilter
	classifier *PageClassifier
	visited    visitTracker
	pauser     pauseController
	logger     *zap.Logger
}

// NewEngine builds an Engine for the configured crawl target.
func NewEngine(
	cfg Config,
	fetcher Fetcher,
	robots RobotsPolicy,
	scope *ScopeFilter,
	classifier *PageClassifier,
	logger *zap.Logger,
) (*Engine, error) {
	target, err := NewTarget(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("derive crawl target: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:        cfg,
		target:     target,
		fetcher:    fetcher,
		robots:     robots,
		scope:      scope,
		classifier: classifier,
		visited:    newConcurrentVisitTracker(),
		pauser:     &timerPauseController{},
		logger:     logger,
	}, nil
}

// Target returns the derived crawl target.
func (e *Engine) Target() Target {
	return e.target
}

// Run performs a complete crawl starting from the configured root URL and
// returns the accumulated result. Per-URL failures never abort the loop; the
// only early exit is context cancellation. The depth bound and the visited
// set together guarantee termination even on cyclic link graphs.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	result := &Result{}

	frontier := make([]frontierEntry, 0, 64)
	e.visited.MarkIfNew(e.target.RootURL)
	frontier = append(frontier, frontierEntry{url: e.target.RootURL, depth: 0})

	e.logger.Info("Starting crawl",
		zap.String("root", e.target.RootURL),
		zap.Int("max_depth", e.cfg.MaxDepth),
	)

	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("crawl interrupted: %w", err)
		}

		entry := frontier[0]
		frontier = frontier[1:]

		// Already marked visited at enqueue time, so a silent discard here
		// cannot be re-discovered later.
		if entry.depth > e.cfg.MaxDepth {
			e.logger.Debug("Discarding entry beyond depth bound", zap.String("url", entry.url))
			continue
		}

		e.logger.Info("Crawling",
			zap.String("url", entry.url),
			zap.Int("depth", entry.depth),
			zap.Int("pages_done", len(result.Pages)),
		)

		e.pauser.Pause(ctx, e.politeDelay())

		if !e.robots.Allowed(ctx, entry.url) {
			e.logger.Warn("Disallowed by robots policy", zap.String("url", entry.url))
			TotalScopeSkips.Inc()
			result.SkippedURLs = append(result.SkippedURLs, entry.url)
			continue
		}

		content, err := e.fetchWithChallengeRetry(ctx, entry.url)
		if err != nil {
			e.logger.Warn("Fetch failed", zap.String("url", entry.url), zap.Error(err))
			TotalFetchErrors.Inc()
			result.FailedURLs = append(result.FailedURLs, entry.url)
			continue
		}

		if e.classifier.IsSoftNotFound(content) {
			e.logger.Warn("Skipping not-found content served with success status",
				zap.String("url", entry.url))
			TotalSoftNotFound.Inc()
			result.FailedURLs = append(result.FailedURLs, entry.url)
			continue
		}

		result.Pages = append(result.Pages, CrawledPage{
			URL:     entry.url,
			Title:   ExtractTitle(content),
			Content: content,
			Depth:   entry.depth,
		})
		TotalPagesCrawled.Inc()

		for _, link := range ExtractLinks(content, entry.url, e.scope) {
			// In-path is re-checked against the crawl's fixed base, not the
			// current page: the current page is already known in-path.
			if !e.scope.IsInPath(link, e.target.RootURL) {
				TotalScopeSkips.Inc()
				result.SkippedURLs = append(result.SkippedURLs, link)
				continue
			}
			if !e.visited.MarkIfNew(link) {
				continue
			}
			frontier = append(frontier, frontierEntry{url: link, depth: entry.depth + 1})
		}
	}

	e.logger.Info("Crawl complete",
		zap.Int("pages", len(result.Pages)),
		zap.Int("failed", len(result.FailedURLs)),
		zap.Int("skipped", len(result.SkippedURLs)),
	)
	return result, nil
}

// fetchWithChallengeRetry fetches a URL and, on the first bot-challenge
// signal, waits and re-fetches once. A persisting signal is a failure.
func (e *Engine) fetchWithChallengeRetry(ctx context.Context, rawURL string) (string, error) {
	content, err := e.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	if !e.classifier.IsBotChallenge(content) {
		return content, nil
	}

	e.logger.Warn("Bot challenge detected; waiting before re-fetch", zap.String("url", rawURL))
	TotalBotChallenges.Inc()
	e.pauser.Pause(ctx, e.cfg.BotRetryWait)

	content, err = e.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	if e.classifier.IsBotChallenge(content) {
		return "", ErrBotBlocked
	}
	return content, nil
}

// politeDelay returns the randomized inter-request pause: the configured
// base delay plus a uniform jitter.
func (e *Engine) politeDelay() time.Duration {
	return e.cfg.Delay + randomJitter(e.cfg.DelayJitter)
}
