package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docfold/docfold/internal/crawler"
	"github.com/docfold/docfold/internal/merger"
)

func TestWriteFullReport(t *testing.T) {
	res := &crawler.Result{
		Pages: []crawler.CrawledPage{
			{URL: "https://docs.example.com/guide/", Title: "Guide", Depth: 0},
			{URL: "https://docs.example.com/guide/setup", Title: "Setup", Depth: 1},
		},
		FailedURLs:  []string{"https://docs.example.com/guide/broken"},
		SkippedURLs: []string{"https://docs.example.com/blog/post"},
	}
	merged := &merger.Result{OutputPath: "documentation.pdf", TotalPages: 12}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	started := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, w.Write("run-1", "https://docs.example.com/guide/", started, res, merged))

	out := buf.String()
	require.Contains(t, out, "# Crawl Report")
	require.Contains(t, out, "run-1")
	require.Contains(t, out, "documentation.pdf")
	require.Contains(t, out, "## Pages")
	require.Contains(t, out, "Setup")
	require.Contains(t, out, "## Failed URLs")
	require.Contains(t, out, "https://docs.example.com/guide/broken")
	require.Contains(t, out, "## Skipped URLs")
}

func TestWriteWithoutMergeResult(t *testing.T) {
	res := &crawler.Result{}

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).Write("run-2", "https://docs.example.com/", time.Now(), res, nil))

	out := buf.String()
	require.Contains(t, out, "No pages were crawled.")
	require.NotContains(t, out, "Output PDF")
	require.NotContains(t, out, "## Failed URLs")
}
