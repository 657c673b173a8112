package crawler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestScopeFilter() *ScopeFilter {
	return NewScopeFilter(
		[]string{".css", ".js", ".png", ".pdf", "zip"},
		[]string{"/api/", "/blog/", "/assets/"},
	)
}

func TestScopeFilterIsInternal(t *testing.T) {
	scope := newTestScopeFilter()
	base := "https://docs.example.com/guide/"

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"same host", "https://docs.example.com/anything", true},
		{"host case-insensitive", "https://DOCS.EXAMPLE.COM/anything", true},
		{"relative url", "/guide/page", true},
		{"subdomain is external", "https://api.example.com/guide/page", false},
		{"other host", "https://example.org/guide/page", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, scope.IsInternal(tc.url, base))
		})
	}
}

func TestScopeFilterIsInPath(t *testing.T) {
	scope := newTestScopeFilter()
	base := "https://docs.example.com/guide/"

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"inside subtree", "https://docs.example.com/guide/setup", true},
		{"subtree root without slash", "https://docs.example.com/guide", true},
		{"deeper nesting", "https://docs.example.com/guide/advanced/tuning", true},
		{"same host outside subtree", "https://docs.example.com/blog/post", false},
		{"other host same path", "https://api.example.com/guide/setup", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, scope.IsInPath(tc.url, base))
		})
	}
}

func TestScopeFilterIsDocumentLike(t *testing.T) {
	scope := newTestScopeFilter()

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"plain page", "https://docs.example.com/guide/overview", true},
		{"directory page", "https://docs.example.com/guide/overview/", true},
		{"html page", "https://docs.example.com/guide/overview.html", true},
		{"stylesheet", "https://docs.example.com/guide/style.css", false},
		{"script", "https://docs.example.com/guide/app.js", false},
		{"image", "https://docs.example.com/guide/logo.png", false},
		{"pdf", "https://docs.example.com/guide/manual.pdf", false},
		{"extension without configured dot", "https://docs.example.com/guide/release.zip", false},
		{"uppercase extension", "https://docs.example.com/guide/LOGO.PNG", false},
		{"excluded segment", "https://docs.example.com/api/v2/users", false},
		{"excluded segment mid-path", "https://docs.example.com/guide/assets/diagram", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, scope.IsDocumentLike(tc.url))
		})
	}
}
