package crawler

import (
	"net/url"
	"strings"
)

// ScopeFilter decides whether a normalized URL may be followed. Its deny
// lists come from configuration so new documentation sites can be supported
// without code changes.
type ScopeFilter struct {
	extensions map[string]struct{}
	segments   []string
}

// NewScopeFilter builds a filter from non-document file extensions (with or
// without a leading dot) and excluded path substrings. Matching is
// case-insensitive on the URL path only.
func NewScopeFilter(extensions, segments []string) *ScopeFilter {
	f := &ScopeFilter{
		extensions: make(map[string]struct{}, len(extensions)),
	}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.extensions[ext] = struct{}{}
	}
	for _, seg := range segments {
		seg = strings.ToLower(strings.TrimSpace(seg))
		if seg != "" {
			f.segments = append(f.segments, seg)
		}
	}
	return f
}

// IsInternal reports whether rawURL stays on baseURL's host. Relative URLs
// (no authority) are internal; otherwise hosts must match exactly,
// case-insensitively. Subdomains are not internal.
func (f *ScopeFilter) IsInternal(rawURL, baseURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if parsed.Host == "" {
		return true
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(parsed.Host, base.Host)
}

// IsInPath reports whether rawURL shares baseURL's host and its path starts
// with the base path prefix. This confines the crawl to one documentation
// subtree even across internal links pointing elsewhere on the host.
func (f *ScopeFilter) IsInPath(rawURL, baseURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	if !strings.EqualFold(parsed.Host, base.Host) {
		return false
	}
	prefix := strings.TrimSuffix(base.Path, "/")
	return strings.HasPrefix(parsed.Path, prefix)
}

// IsDocumentLike reports whether rawURL plausibly points at a documentation
// page rather than a static asset or an excluded site section.
func (f *ScopeFilter) IsDocumentLike(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(parsed.Path)
	for ext := range f.extensions {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}
	for _, seg := range f.segments {
		if strings.Contains(path, seg) {
			return false
		}
	}
	return true
}
