package converter

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// chromeTags are structural elements that carry navigation or scripting,
// never documentation content.
var chromeTags = []string{"nav", "header", "footer", "aside", "script", "noscript"}

// cleanupCSS hides anything the element pass missed: leftover overlays,
// sticky positioning, and print stylesheets that append URLs after links.
const cleanupCSS = `<style>
[style*="position: fixed"], [style*="position:fixed"],
[style*="position: absolute"], [style*="position:absolute"] { display: none !important; }
a[href]:after { content: none !important; }
@media print { a[href]:after { content: none !important; } }
a { position: static !important; display: inline !important; }
body { max-width: 100%; overflow-x: hidden; }
* { position: static !important; }
main, article { margin: 0 !important; padding: 10px !important; max-width: 100% !important; }
</style>`

// Sanitize strips navigational chrome from markup so the printed page shows
// only documentation content. It removes known chrome tags, any element
// whose class or id contains one of stripPatterns, and fixed/absolute
// positioned overlays, then injects a <base> tag pointing at the source URL
// and a cleanup stylesheet.
func Sanitize(markup, sourceURL string, stripPatterns []string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("parse markup: %w", err)
	}

	for _, tag := range chromeTags {
		doc.Find(tag).Remove()
	}

	patterns := make([]string, 0, len(stripPatterns))
	for _, p := range stripPatterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			patterns = append(patterns, p)
		}
	}
	doc.Find("[class],[id]").Each(func(_ int, sel *goquery.Selection) {
		attrs := strings.ToLower(sel.AttrOr("class", "") + " " + sel.AttrOr("id", ""))
		for _, p := range patterns {
			if strings.Contains(attrs, p) {
				sel.Remove()
				return
			}
		}
	})

	doc.Find("[style]").Each(func(_ int, sel *goquery.Selection) {
		style := strings.ReplaceAll(strings.ToLower(sel.AttrOr("style", "")), " ", "")
		if !strings.Contains(style, "position:fixed") && !strings.Contains(style, "position:absolute") {
			return
		}
		// Keep positioned main-content containers.
		classes := strings.ToLower(sel.AttrOr("class", ""))
		if strings.Contains(classes, "content") || strings.Contains(classes, "main") {
			return
		}
		sel.Remove()
	})

	// Anchors with no visible text or image are navigation leftovers.
	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		if strings.TrimSpace(sel.Text()) == "" && sel.Find("img").Length() == 0 {
			sel.Remove()
		}
	})

	head := doc.Find("head").First()
	if head.Length() > 0 {
		head.PrependHtml(fmt.Sprintf(`<base href=%q>`, sourceURL))
		head.AppendHtml(cleanupCSS)
	}

	out, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("serialize markup: %w", err)
	}
	return out, nil
}
