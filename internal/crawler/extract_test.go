package crawler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractLinks(t *testing.T) {
	markup := `<html><body>
		<a href="setup">Setup</a>
		<a href="/guide/advanced#tuning">Advanced</a>
		<a href="https://docs.example.com/guide/faq">FAQ</a>
		<a href="https://docs.example.com/guide/faq">FAQ again</a>
		<a href="https://other.example.org/guide/">External</a>
		<a href="/guide/logo.png">Logo</a>
		<a href="/api/v2/users">API</a>
		<a href="#top">Top</a>
		<a href="mailto:docs@example.com">Mail</a>
		<a href="javascript:void(0)">JS</a>
		<a href="">Empty</a>
	</body></html>`

	scope := newTestScopeFilter()
	links := ExtractLinks(markup, "https://docs.example.com/guide/", scope)

	require.ElementsMatch(t, []string{
		"https://docs.example.com/guide/setup",
		"https://docs.example.com/guide/advanced",
		"https://docs.example.com/guide/faq",
	}, links)
}

func TestExtractLinksOnGarbageMarkup(t *testing.T) {
	scope := newTestScopeFilter()
	require.Empty(t, ExtractLinks("not html at all", "https://docs.example.com/", scope))
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{
			name:   "title tag wins",
			markup: `<html><head><title> Getting Started </title></head><body><h1>Other</h1></body></html>`,
			want:   "Getting Started",
		},
		{
			name:   "h1 fallback",
			markup: `<html><body><h1>Install Guide</h1></body></html>`,
			want:   "Install Guide",
		},
		{
			name:   "empty title falls through to h1",
			markup: `<html><head><title>  </title></head><body><h1>Reference</h1></body></html>`,
			want:   "Reference",
		},
		{
			name:   "no title anywhere",
			markup: `<html><body><p>text</p></body></html>`,
			want:   "Untitled Page",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ExtractTitle(tc.markup))
		})
	}
}
