package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

// robotsBodyLimit caps how much of a robots.txt response is read.
const robotsBodyLimit = 1 << 20

// RobotsEnforcer answers robots.txt queries for the hosts a crawl touches.
// Each host's rules are fetched and parsed once, then served from memory for
// the rest of the run. Documentation crawls stay on one host, so the cache
// normally holds a single entry.
type RobotsEnforcer struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger

	mu     sync.Mutex
	groups map[string]*robotstxt.Group
}

// NewRobotsPolicy builds the RobotsPolicy for a crawl. With respect disabled
// it returns a policy that permits everything.
func NewRobotsPolicy(respect bool, userAgent string, logger *zap.Logger) RobotsPolicy {
	if !respect {
		return &allowAllPolicy{}
	}
	return &RobotsEnforcer{
		client:    &http.Client{Timeout: 10 * time.Second},
		userAgent: userAgent,
		logger:    logger,
		groups:    make(map[string]*robotstxt.Group),
	}
}

// Allowed reports whether rawURL may be fetched under the host's robots.txt.
// Fail open: an unreachable or unparsable robots.txt permits the fetch, and
// a host with no matching agent group permits everything.
func (r *RobotsEnforcer) Allowed(ctx context.Context, rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	group, err := r.groupFor(ctx, parsed)
	if err != nil {
		r.logger.Warn("robots.txt unavailable; allowing fetch",
			zap.String("host", parsed.Host),
			zap.Error(err),
		)
		return true
	}
	if group == nil {
		return true
	}
	return group.Test(parsed.Path)
}

// groupFor returns the cached agent group for the URL's host, fetching and
// parsing robots.txt on the first query. A nil group with nil error means
// the host imposes no rules on this agent.
func (r *RobotsEnforcer) groupFor(ctx context.Context, parsed *url.URL) (*robotstxt.Group, error) {
	host := strings.ToLower(parsed.Host)

	r.mu.Lock()
	group, cached := r.groups[host]
	r.mu.Unlock()
	if cached {
		return group, nil
	}

	body, status, err := r.fetchRobots(ctx, parsed)
	if err != nil {
		return nil, err
	}
	data, err := robotstxt.FromStatusAndBytes(status, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt for %s: %w", host, err)
	}
	group = data.FindGroup(r.userAgent)

	r.mu.Lock()
	r.groups[host] = group
	r.mu.Unlock()
	return group, nil
}

func (r *RobotsEnforcer) fetchRobots(ctx context.Context, parsed *url.URL) ([]byte, int, error) {
	robotsURL := url.URL{
		Scheme: parsed.Scheme,
		Host:   parsed.Host,
		Path:   "/robots.txt",
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build robots.txt request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			r.logger.Debug("Failed to close robots.txt body", zap.Error(cerr))
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, robotsBodyLimit))
	if err != nil {
		return nil, 0, fmt.Errorf("read robots.txt body: %w", err)
	}
	return body, resp.StatusCode, nil
}

type allowAllPolicy struct{}

func (a *allowAllPolicy) Allowed(context.Context, string) bool { return true }
