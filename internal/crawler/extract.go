package crawler

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// defaultTitle is used when a page exposes neither a <title> nor an <h1>.
const defaultTitle = "Untitled Page"

// skippedSchemes are anchor targets that never navigate to a document.
var skippedSchemes = []string{"javascript:", "mailto:", "tel:", "data:"}

// ExtractLinks parses anchor hyperlinks from markup, normalizes each against
// sourceURL, and returns the deduplicated candidates that are internal to the
// source host and document-like. In-path scoping is deliberately left to the
// caller, which checks against the crawl's fixed base rather than the current
// page. Order of the returned slice is not significant.
func ExtractLinks(markup, sourceURL string, scope *ScopeFilter) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if !navigational(href) {
			return
		}
		normalized, err := Normalize(href, sourceURL)
		if err != nil {
			return
		}
		if !scope.IsInternal(normalized, sourceURL) || !scope.IsDocumentLike(normalized) {
			return
		}
		if _, dup := seen[normalized]; dup {
			return
		}
		seen[normalized] = struct{}{}
		links = append(links, normalized)
	})
	return links
}

func navigational(href string) bool {
	if href == "" || strings.HasPrefix(href, "#") {
		return false
	}
	lower := strings.ToLower(href)
	for _, scheme := range skippedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return false
		}
	}
	return true
}

// ExtractTitle pulls a human-readable title from markup: the <title> tag,
// else the first <h1>, else a fixed fallback.
func ExtractTitle(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return defaultTitle
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return defaultTitle
}
