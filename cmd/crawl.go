package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/docfold/docfold/internal/converter"
	"github.com/docfold/docfold/internal/crawler"
	"github.com/docfold/docfold/internal/logging"
	"github.com/docfold/docfold/internal/manifest"
	"github.com/docfold/docfold/internal/merger"
	"github.com/docfold/docfold/internal/report"
)

type crawlFlags struct {
	output       string
	maxDepth     int
	delaySecs    float64
	timeoutSecs  int
	maxPages     int
	noHeadless   bool
	ignoreRobots bool
	manifestPath string
	reportPath   string
}

// newCrawlCmd creates and configures the 'crawl' subcommand.
func newCrawlCmd() *cobra.Command {
	flags := &crawlFlags{}

	cmd := &cobra.Command{
		Use:   "crawl <url>",
		Short: "Crawl a documentation site and produce a merged PDF",
		Long: `Crawls every page under the path of the given URL, breadth-first, then
converts each page to PDF and merges them in crawl order with one bookmark
per page and sequential page numbers.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyCrawlFlags(cmd, flags, args[0])
			return runCrawl(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "documentation.pdf", "path of the merged PDF")
	cmd.Flags().IntVar(&flags.maxDepth, "max-depth", 0, "maximum link depth from the root URL")
	cmd.Flags().Float64Var(&flags.delaySecs, "delay", 0, "base delay between fetches, in seconds")
	cmd.Flags().IntVar(&flags.timeoutSecs, "timeout", 0, "per-page fetch timeout, in seconds")
	cmd.Flags().IntVar(&flags.maxPages, "max-pages", 0, "cap on pages converted (0 = no cap)")
	cmd.Flags().BoolVar(&flags.noHeadless, "no-headless", false, "fetch with plain HTTP instead of headless Chrome")
	cmd.Flags().BoolVar(&flags.ignoreRobots, "ignore-robots", false, "do not consult robots.txt")
	cmd.Flags().StringVar(&flags.manifestPath, "manifest", "", "write a SQLite crawl manifest to this path")
	cmd.Flags().StringVar(&flags.reportPath, "report", "", "write a Markdown crawl report to this path")

	return cmd
}

// applyCrawlFlags pushes explicitly set flags into Viper, where they take
// precedence over config file and environment values.
func applyCrawlFlags(cmd *cobra.Command, flags *crawlFlags, baseURL string) {
	viper.Set("crawler.base_url", baseURL)
	if cmd.Flags().Changed("max-depth") {
		viper.Set("crawler.max_depth", flags.maxDepth)
	}
	if cmd.Flags().Changed("delay") {
		viper.Set("crawler.delay", time.Duration(flags.delaySecs*float64(time.Second)).String())
	}
	if cmd.Flags().Changed("timeout") {
		viper.Set("crawler.fetch_timeout", fmt.Sprintf("%ds", flags.timeoutSecs))
	}
	if flags.noHeadless {
		viper.Set("crawler.headless", false)
	}
	if flags.ignoreRobots {
		viper.Set("crawler.respect_robots", false)
	}
}

func runCrawl(ctx context.Context, flags *crawlFlags) error {
	started := time.Now()
	runID := uuid.NewString()

	cfg, err := crawler.LoadConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load crawler config: %w", err)
	}

	engine, fetcher, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fetcher.Close(ctx); cerr != nil {
			logging.L.Warn("Failed to close fetcher", zap.Error(cerr))
		}
	}()

	res, err := engine.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run crawl: %w", err)
	}
	if len(res.Pages) == 0 {
		return fmt.Errorf("no pages crawled from %s", cfg.BaseURL)
	}

	pages := res.Pages
	if flags.maxPages > 0 && len(pages) > flags.maxPages {
		logging.L.Info("Capping converted pages",
			zap.Int("crawled", len(pages)),
			zap.Int("cap", flags.maxPages),
		)
		pages = pages[:flags.maxPages]
	}

	merged, err := convertAndMerge(ctx, runID, pages, flags.output)
	if err != nil {
		return err
	}

	if flags.manifestPath != "" {
		if err := writeManifest(ctx, flags.manifestPath, runID, cfg.BaseURL, started, res); err != nil {
			return err
		}
	}
	if flags.reportPath != "" {
		if err := writeReport(flags.reportPath, runID, cfg.BaseURL, started, res, merged); err != nil {
			return err
		}
	}

	logging.L.Info("Done",
		zap.String("output", merged.OutputPath),
		zap.Int("pages", merged.TotalPages),
		zap.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func buildEngine(cfg crawler.Config) (*crawler.Engine, crawler.Fetcher, error) {
	var (
		fetcher crawler.Fetcher
		err     error
	)
	if cfg.Headless {
		fetcher, err = crawler.NewChromedpFetcher(cfg, logging.L)
	} else {
		fetcher, err = crawler.NewCollyFetcher(cfg, logging.L)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("init fetcher: %w", err)
	}

	engine, err := crawler.NewEngine(
		cfg,
		fetcher,
		crawler.NewRobotsPolicy(cfg.RespectRobots, cfg.UserAgent, logging.L),
		crawler.NewScopeFilter(cfg.ExcludedExtensions, cfg.ExcludedSegments),
		crawler.NewPageClassifier(cfg.BotPhrases, cfg.NotFoundPhrases),
		logging.L,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("init engine: %w", err)
	}
	return engine, fetcher, nil
}

func convertAndMerge(ctx context.Context, runID string, pages []crawler.CrawledPage, output string) (*merger.Result, error) {
	workDir := filepath.Join(os.TempDir(), "docfold-"+runID)
	conv, err := converter.New(
		workDir,
		viper.GetDuration("converter.timeout"),
		viper.GetStringSlice("converter.strip_patterns"),
		logging.L,
	)
	if err != nil {
		return nil, fmt.Errorf("init converter: %w", err)
	}
	defer func() {
		if cerr := conv.Close(ctx); cerr != nil {
			logging.L.Warn("Failed to close converter", zap.Error(cerr))
		}
		if cerr := conv.Cleanup(); cerr != nil {
			logging.L.Warn("Failed to clean up work dir", zap.Error(cerr))
		}
	}()

	results := conv.ConvertPages(ctx, pages)
	pdfPaths := make([]string, 0, len(results))
	titles := make([]string, 0, len(results))
	for _, r := range results {
		if !r.OK() {
			continue
		}
		pdfPaths = append(pdfPaths, r.PDFPath)
		titles = append(titles, r.Title)
	}
	if len(pdfPaths) == 0 {
		return nil, fmt.Errorf("all %d page conversions failed", len(results))
	}

	merged, err := merger.New(logging.L).Merge(pdfPaths, titles, output)
	if err != nil {
		return nil, fmt.Errorf("merge pdfs: %w", err)
	}
	return &merged, nil
}

func writeManifest(ctx context.Context, path, runID, baseURL string, started time.Time, res *crawler.Result) error {
	store, err := manifest.Open(path)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logging.L.Warn("Failed to close manifest", zap.Error(cerr))
		}
	}()
	if err := store.RecordRun(ctx, runID, baseURL, started, res); err != nil {
		return fmt.Errorf("record manifest: %w", err)
	}
	logging.L.Info("Manifest written", zap.String("path", path))
	return nil
}

func writeReport(path, runID, baseURL string, started time.Time, res *crawler.Result, merged *merger.Result) error {
	f, err := os.Create(path) // #nosec G304 -- user-supplied output path
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.L.Warn("Failed to close report", zap.Error(cerr))
		}
	}()
	if err := report.NewWriter(f).Write(runID, baseURL, started, res, merged); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	logging.L.Info("Report written", zap.String("path", path))
	return nil
}
