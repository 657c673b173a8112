// Package report renders a human-readable crawl summary in Markdown,
// suitable for committing next to the generated PDF.
package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/docfold/docfold/internal/crawler"
	"github.com/docfold/docfold/internal/merger"
)

// Writer renders crawl run summaries.
type Writer struct {
	output io.Writer
}

// NewWriter creates a Writer that renders to output.
func NewWriter(output io.Writer) *Writer {
	return &Writer{output: output}
}

// Write renders the full run summary. merged may be nil when the merge step
// was skipped or failed; the crawl sections are written regardless.
func (w *Writer) Write(runID, baseURL string, started time.Time, res *crawler.Result, merged *merger.Result) error {
	md := markdown.NewMarkdown(w.output)

	md.H1("Crawl Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   w.summaryRows(runID, baseURL, started, res, merged),
	})
	md.PlainText("")

	w.writePages(md, res)
	w.writeFailures(md, res)
	w.writeSkips(md, res)

	return md.Build()
}

func (w *Writer) summaryRows(runID, baseURL string, started time.Time, res *crawler.Result, merged *merger.Result) [][]string {
	rows := [][]string{
		{"Run ID", "`" + runID + "`"},
		{"Base URL", "`" + baseURL + "`"},
		{"Started", started.Format("2006-01-02 15:04:05 MST")},
		{"Pages Crawled", strconv.Itoa(len(res.Pages))},
		{"Failed URLs", strconv.Itoa(len(res.FailedURLs))},
		{"Skipped URLs", strconv.Itoa(len(res.SkippedURLs))},
	}
	if merged != nil {
		rows = append(rows,
			[]string{"Output PDF", "`" + merged.OutputPath + "`"},
			[]string{"Total PDF Pages", strconv.Itoa(merged.TotalPages)},
		)
	}
	return rows
}

func (w *Writer) writePages(md *markdown.Markdown, res *crawler.Result) {
	md.H2("Pages")
	md.PlainText("")
	if len(res.Pages) == 0 {
		md.PlainText("No pages were crawled.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(res.Pages))
	for i, pg := range res.Pages {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			truncate(pg.Title, 60),
			strconv.Itoa(pg.Depth),
			"`" + pg.URL + "`",
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Title", "Depth", "URL"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *Writer) writeFailures(md *markdown.Markdown, res *crawler.Result) {
	if len(res.FailedURLs) == 0 {
		return
	}
	md.H2("Failed URLs")
	md.PlainText("")
	md.BulletList(res.FailedURLs...)
	md.PlainText("")
}

func (w *Writer) writeSkips(md *markdown.Markdown, res *crawler.Result) {
	if len(res.SkippedURLs) == 0 {
		return
	}
	md.H2("Skipped URLs")
	md.PlainText("")
	md.BulletList(res.SkippedURLs...)
	md.PlainText("")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
