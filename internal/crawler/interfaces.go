package crawler

import "context"

// Fetcher retrieves the rendered markup for a URL. Implementations own any
// underlying session state (browser contexts, connection pools) and are the
// sole mutators of it; the engine only ever observes the Fetch result.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
	Close(ctx context.Context) error
}

// RobotsPolicy decides whether a URL may be fetched at all.
type RobotsPolicy interface {
	Allowed(ctx context.Context, rawURL string) bool
}
