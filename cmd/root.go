// Package cmd defines and implements the CLI commands for the docfold
// executable.
package cmd

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/docfold/docfold/internal/logging"
	"github.com/docfold/docfold/pkg/config"
)

var (
	cfgFile string
	verbose bool
)

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docfold",
		Short: "Crawl a documentation site and fold it into a single PDF.",
		Long: `docfold walks a documentation website breadth-first, staying inside the
path of the URL you give it, renders each page with headless Chrome, and
merges the pages into one bookmarked, page-numbered PDF.`,

		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logging.InitLogger(verbose)
			startMetricsListener()
		},
	}

	cobra.OnInitialize(func() {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		}
		config.InitConfig()
	})

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newCrawlCmd())

	return cmd
}

// startMetricsListener exposes Prometheus metrics when metrics.addr is set.
// A single-shot CLI rarely needs this; it exists for long crawls watched
// from a dashboard.
func startMetricsListener() {
	addr := viper.GetString("metrics.addr")
	if addr == "" {
		return
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		logging.L.Info("Serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.L.Warn("Metrics listener stopped", zap.Error(err))
		}
	}()
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		logging.L.Fatal("Command execution failed", zap.Error(err))
	}
}
