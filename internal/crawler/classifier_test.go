package crawler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClassifier() *PageClassifier {
	return NewPageClassifier(
		[]string{"JavaScript is disabled", "verify that you're not a robot"},
		[]string{"the content you're looking for is not here", "page not found"},
	)
}

func TestPageClassifierIsBotChallenge(t *testing.T) {
	classifier := newTestClassifier()

	require.True(t, classifier.IsBotChallenge(
		`<html><body>Please verify that you're not a robot to continue.</body></html>`))
	require.True(t, classifier.IsBotChallenge(
		`<html><body>JAVASCRIPT IS DISABLED in your browser.</body></html>`),
		"phrase matching should be case-insensitive")
	require.False(t, classifier.IsBotChallenge(
		`<html><body>Welcome to the docs.</body></html>`))
	require.False(t, classifier.IsBotChallenge(""))
}

func TestPageClassifierIsSoftNotFound(t *testing.T) {
	classifier := newTestClassifier()

	require.True(t, classifier.IsSoftNotFound(
		`<html><body><h1>Oops</h1><p>The content you're looking for is not here.</p></body></html>`))
	require.True(t, classifier.IsSoftNotFound(
		`<html><body>Page Not Found</body></html>`))
	require.False(t, classifier.IsSoftNotFound(
		`<html><body>All about 404 handling in your app.</body></html>`),
		"only configured phrases should match")
}

func TestPageClassifierEmptyPhrases(t *testing.T) {
	classifier := NewPageClassifier(nil, []string{"  ", ""})
	require.False(t, classifier.IsBotChallenge("anything"))
	require.False(t, classifier.IsSoftNotFound("anything"))
}
