package crawler

import (
	"fmt"
	"net/url"
	"strings"
)

// Normalize resolves raw against base and canonicalizes the result: relative
// references (including "../" and root-relative paths) are made absolute,
// the fragment is stripped, and a trailing slash is removed when the segment
// before it contains a literal "." (a filename-looking URL). Directory-style
// URLs keep their slash. The function is pure and idempotent.
//
// The dot heuristic intentionally misfires on segments like "/v1.2/";
// downstream path-prefix matching depends on its exact behavior, so it is
// preserved rather than fixed.
func Normalize(raw, base string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", base, err)
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", raw, err)
	}

	resolved := baseURL.ResolveReference(ref)
	resolved.Fragment = ""

	out := resolved.String()
	if strings.HasSuffix(out, "/") {
		segments := strings.Split(out, "/")
		// segments[len-1] is the empty string after the trailing slash;
		// segments[len-2] is the final real segment.
		if len(segments) >= 2 && strings.Contains(segments[len(segments)-2], ".") {
			out = strings.TrimRight(out, "/")
		}
	}
	return out, nil
}
