// Package converter renders crawled pages to single-document PDFs using
// headless Chrome's print pipeline. Markup is sanitized and written to local
// files first so conversion never touches the network.
package converter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/docfold/docfold/internal/crawler"
)

// A4 paper in inches, 20mm top/bottom and 15mm side margins.
const (
	paperWidthIn   = 8.27
	paperHeightIn  = 11.69
	marginTopIn    = 0.79
	marginBottomIn = 0.79
	marginSideIn   = 0.59
)

// Result is the outcome of converting one page.
type Result struct {
	PDFPath string
	Title   string
	Err     error
}

// OK reports whether the conversion succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Converter turns CrawledPages into per-page PDF files under a private work
// directory. It owns its own browser instance, separate from the crawl
// fetcher's session.
type Converter struct {
	workDir         string
	timeout         time.Duration
	stripPatterns   []string
	allocatorCancel context.CancelFunc
	browserCtx      context.Context
	browserCancel   context.CancelFunc
	logger          *zap.Logger
}

// New creates the work directory and starts the print browser.
// stripPatterns are the class/id substrings removed by the sanitizer.
func New(workDir string, timeout time.Duration, stripPatterns []string, logger *zap.Logger) (*Converter, error) {
	if err := os.MkdirAll(workDir, 0o750); err != nil {
		return nil, fmt.Errorf("create converter work dir %s: %w", workDir, err)
	}

	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts,
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocatorCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}

	return &Converter{
		workDir:         workDir,
		timeout:         timeout,
		stripPatterns:   stripPatterns,
		allocatorCancel: allocatorCancel,
		browserCtx:      browserCtx,
		browserCancel:   browserCancel,
		logger:          logger,
	}, nil
}

// ConvertPages converts each page to its own PDF, in order. A failure for
// one page never aborts the batch; callers inspect the per-page Results.
func (c *Converter) ConvertPages(ctx context.Context, pages []crawler.CrawledPage) []Result {
	results := make([]Result, 0, len(pages))
	for i, pg := range pages {
		c.logger.Info("Converting page",
			zap.Int("index", i+1),
			zap.Int("total", len(pages)),
			zap.String("title", pg.Title),
		)
		res := c.convertPage(ctx, i, pg)
		if res.Err != nil {
			c.logger.Warn("Conversion failed", zap.String("url", pg.URL), zap.Error(res.Err))
		}
		results = append(results, res)
	}
	return results
}

func (c *Converter) convertPage(ctx context.Context, index int, pg crawler.CrawledPage) Result {
	res := Result{Title: pg.Title}

	markup, err := Sanitize(pg.Content, pg.URL, c.stripPatterns)
	if err != nil {
		res.Err = fmt.Errorf("sanitize %s: %w", pg.URL, err)
		return res
	}

	htmlPath := filepath.Join(c.workDir, fmt.Sprintf("page_%04d.html", index))
	if err := os.WriteFile(htmlPath, []byte(markup), 0o600); err != nil {
		res.Err = fmt.Errorf("write html %s: %w", htmlPath, err)
		return res
	}

	pdfPath := filepath.Join(c.workDir, fmt.Sprintf("page_%04d.pdf", index))
	if err := c.printToPDF(ctx, "file://"+htmlPath, pdfPath); err != nil {
		res.Err = fmt.Errorf("print %s: %w", pg.URL, err)
		return res
	}

	info, err := os.Stat(pdfPath)
	if err != nil || info.Size() == 0 {
		res.Err = fmt.Errorf("pdf for %s was not created or is empty", pg.URL)
		return res
	}

	res.PDFPath = pdfPath
	return res
}

func (c *Converter) printToPDF(ctx context.Context, fileURL, pdfPath string) error {
	tabCtx, cancelTab := chromedp.NewContext(c.browserCtx)
	defer cancelTab()

	taskCtx, cancelTask := context.WithTimeout(tabCtx, c.timeout)
	defer cancelTask()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context canceled: %w", err)
	}

	var buf []byte
	tasks := chromedp.Tasks{
		chromedp.Navigate(fileURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().
				WithPaperWidth(paperWidthIn).
				WithPaperHeight(paperHeightIn).
				WithMarginTop(marginTopIn).
				WithMarginBottom(marginBottomIn).
				WithMarginLeft(marginSideIn).
				WithMarginRight(marginSideIn).
				WithPrintBackground(false).
				Do(ctx)
			return err
		}),
	}
	if err := chromedp.Run(taskCtx, tasks); err != nil {
		return fmt.Errorf("chromedp print: %w", err)
	}
	if err := os.WriteFile(pdfPath, buf, 0o600); err != nil {
		return fmt.Errorf("write pdf %s: %w", pdfPath, err)
	}
	return nil
}

// Close tears down the print browser.
func (c *Converter) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	c.browserCancel()
	c.allocatorCancel()
	select {
	case <-ctx.Done():
	default:
	}
	return nil
}

// Cleanup removes the work directory and all intermediate artifacts.
func (c *Converter) Cleanup() error {
	if err := os.RemoveAll(c.workDir); err != nil {
		return fmt.Errorf("remove converter work dir %s: %w", c.workDir, err)
	}
	return nil
}
