package crawler

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Fetch error sentinels. The engine distinguishes them for logging and
// metrics only; every fetch error ends up in Result.FailedURLs.
var (
	// ErrFetchTimeout indicates the fetch exceeded its per-request timeout.
	ErrFetchTimeout = errors.New("fetch timeout")
	// ErrBotBlocked indicates the automation challenge persisted after the
	// single re-fetch attempt.
	ErrBotBlocked = errors.New("blocked by bot detection")
)

// CrawledPage is a successfully fetched documentation page. It is immutable
// once created; ownership passes to the conversion stage.
type CrawledPage struct {
	URL     string
	Title   string
	Content string
	Depth   int
}

// Result accumulates the outcome of one traversal. Pages preserves
// discovery/completion order, which downstream conversion and merging
// depend on.
type Result struct {
	Pages       []CrawledPage
	FailedURLs  []string
	SkippedURLs []string
}

// Target is the crawl root derived from configuration at engine start.
// It is immutable for the duration of a crawl.
type Target struct {
	// RootURL is the normalized starting URL.
	RootURL string
	// Host is the lowercased host the crawl is confined to.
	Host string
	// PathPrefix is the documentation root path with any trailing slash
	// stripped; every followed URL's path must start with it.
	PathPrefix string
}

// NewTarget normalizes the configured root URL and derives the scope anchors
// from it.
func NewTarget(rawURL string) (Target, error) {
	root, err := Normalize(rawURL, rawURL)
	if err != nil {
		return Target{}, fmt.Errorf("normalize root url: %w", err)
	}
	parsed, err := url.Parse(root)
	if err != nil {
		return Target{}, fmt.Errorf("parse root url: %w", err)
	}
	if parsed.Host == "" {
		return Target{}, fmt.Errorf("root url %q has no host", rawURL)
	}
	return Target{
		RootURL:    root,
		Host:       strings.ToLower(parsed.Host),
		PathPrefix: strings.TrimSuffix(parsed.Path, "/"),
	}, nil
}

// frontierEntry is one discovered-but-not-yet-fetched URL. Entries are
// consumed in FIFO order, which yields breadth-first traversal.
type frontierEntry struct {
	url   string
	depth int
}
