package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalPagesCrawled tracks the number of pages accepted into the result.
	TotalPagesCrawled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docfold_pages_crawled_total",
		Help: "The total number of pages successfully crawled.",
	})
	// TotalFetchErrors tracks fetches that failed at the transport level.
	TotalFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docfold_fetch_errors_total",
		Help: "The total number of failed page fetches.",
	})
	// TotalScopeSkips tracks links rejected by the scope filter.
	TotalScopeSkips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docfold_scope_skips_total",
		Help: "The total number of links skipped by scope rules.",
	})
	// TotalBotChallenges tracks pages that triggered the bot-detection signal.
	TotalBotChallenges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docfold_bot_challenges_total",
		Help: "The total number of automation challenges encountered.",
	})
	// TotalSoftNotFound tracks pages classified as soft 404s.
	TotalSoftNotFound = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docfold_soft_not_found_total",
		Help: "The total number of pages classified as not-found content.",
	})
	// TotalSessionResets tracks browser session rotations in the fetcher.
	TotalSessionResets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docfold_session_resets_total",
		Help: "The total number of browser session rotations.",
	})
)
