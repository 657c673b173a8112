// Package crawler implements the documentation crawl engine: URL
// normalization and scoping, link extraction, error/bot-page classification,
// the breadth-first scheduler, and the fetchers it drives.
package crawler
