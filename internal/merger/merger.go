// Package merger combines per-page PDF artifacts into one bookmarked,
// page-numbered document using pdfcpu.
package merger

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"
)

// pageNumberDesc positions a small helvetica page number at the bottom
// center of every page.
const pageNumberDesc = "font:Helvetica, points:9, pos:bc, off:0 10, scale:1 abs, color:0 0 0"

// Result reports a completed merge.
type Result struct {
	OutputPath string
	TotalPages int
}

// Merger merges page PDFs in crawl order.
type Merger struct {
	conf   *model.Configuration
	logger *zap.Logger
}

// New returns a Merger with relaxed validation, since browser-printed PDFs
// are not always strictly conformant.
func New(logger *zap.Logger) *Merger {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Merger{conf: conf, logger: logger}
}

// Merge concatenates pdfPaths into outputPath, adds one bookmark per input
// document using titles, and stamps sequential page numbers. Inputs that do
// not exist are skipped; merging fails only when nothing can be merged.
// titles must be parallel to pdfPaths.
func (m *Merger) Merge(pdfPaths, titles []string, outputPath string) (Result, error) {
	if len(pdfPaths) != len(titles) {
		return Result{}, fmt.Errorf("got %d paths but %d titles", len(pdfPaths), len(titles))
	}

	inputs := make([]string, 0, len(pdfPaths))
	bookmarks := make([]pdfcpu.Bookmark, 0, len(pdfPaths))
	pageOffset := 0
	for i, path := range pdfPaths {
		if _, err := os.Stat(path); err != nil {
			m.logger.Warn("Skipping missing page PDF", zap.String("path", path))
			continue
		}
		count, err := api.PageCountFile(path)
		if err != nil {
			m.logger.Warn("Skipping unreadable page PDF", zap.String("path", path), zap.Error(err))
			continue
		}
		inputs = append(inputs, path)
		bookmarks = append(bookmarks, pdfcpu.Bookmark{
			Title:    titles[i],
			PageFrom: pageOffset + 1,
		})
		pageOffset += count
	}
	if len(inputs) == 0 {
		return Result{}, fmt.Errorf("no page PDFs to merge")
	}

	merged := outputPath + ".merge.tmp"
	defer func() {
		if err := os.Remove(merged); err != nil && !os.IsNotExist(err) {
			m.logger.Debug("Failed to remove merge temp file", zap.Error(err))
		}
	}()

	if err := api.MergeCreateFile(inputs, merged, false, m.conf); err != nil {
		return Result{}, fmt.Errorf("merge %d pdfs: %w", len(inputs), err)
	}
	if err := api.AddBookmarksFile(merged, merged, bookmarks, true, m.conf); err != nil {
		return Result{}, fmt.Errorf("add bookmarks: %w", err)
	}
	if err := api.AddTextWatermarksFile(merged, outputPath, nil, true, "%p", pageNumberDesc, m.conf); err != nil {
		return Result{}, fmt.Errorf("stamp page numbers: %w", err)
	}

	total, err := api.PageCountFile(outputPath)
	if err != nil {
		return Result{}, fmt.Errorf("count merged pages: %w", err)
	}

	m.logger.Info("Merged PDF created",
		zap.String("output", outputPath),
		zap.Int("documents", len(inputs)),
		zap.Int("pages", total),
	)
	return Result{OutputPath: outputPath, TotalPages: total}, nil
}
