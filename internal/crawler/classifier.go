package crawler

import (
	"bytes"
	"strings"
)

// PageClassifier inspects fetched markup for signals that HTTP status alone
// would not reveal: anti-automation challenges and soft-404 pages served
// with a success status. Both phrase tables come from configuration.
type PageClassifier struct {
	botPhrases      [][]byte
	notFoundPhrases [][]byte
}

// NewPageClassifier lowercases and deduplicates both phrase lists up front
// so per-page checks are a plain substring scan.
func NewPageClassifier(botPhrases, notFoundPhrases []string) *PageClassifier {
	return &PageClassifier{
		botPhrases:      preparePhrases(botPhrases),
		notFoundPhrases: preparePhrases(notFoundPhrases),
	}
}

// IsBotChallenge reports whether markup contains known automation-challenge
// phrasing.
func (c *PageClassifier) IsBotChallenge(markup string) bool {
	return containsAny(markup, c.botPhrases)
}

// IsSoftNotFound reports whether markup matches a configured "not found"
// phrase despite the fetch itself succeeding.
func (c *PageClassifier) IsSoftNotFound(markup string) bool {
	return containsAny(markup, c.notFoundPhrases)
}

func containsAny(markup string, phrases [][]byte) bool {
	if markup == "" || len(phrases) == 0 {
		return false
	}
	lower := bytes.ToLower([]byte(markup))
	for _, phrase := range phrases {
		if bytes.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func preparePhrases(in []string) [][]byte {
	out := make([][]byte, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, phrase := range in {
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		if phrase == "" {
			continue
		}
		if _, dup := seen[phrase]; dup {
			continue
		}
		seen[phrase] = struct{}{}
		out = append(out, []byte(phrase))
	}
	return out
}
