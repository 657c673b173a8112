// Package config is responsible for initializing the application's
// configuration. It uses the Viper library to read settings from a config
// file, environment variables, and command-line flags, providing a unified
// configuration system.
package config

import (
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/docfold/docfold/internal/logging"
)

// InitConfig initializes the application's configuration using Viper.
// It sets up default values, defines configuration search paths, and enables
// reading from environment variables. This function is designed to be called
// once at application startup.
func InitConfig() {
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/docfold/")
	viper.AddConfigPath("$HOME/.docfold")

	// Crawl pacing and browser session defaults. The user agent mimics a
	// desktop browser because many documentation hosts sit behind CDNs that
	// challenge obvious bots.
	viper.SetDefault("crawler.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	viper.SetDefault("crawler.max_depth", 10)
	viper.SetDefault("crawler.delay", "500ms")
	viper.SetDefault("crawler.delay_jitter", "500ms")
	viper.SetDefault("crawler.fetch_timeout", "30s")
	viper.SetDefault("crawler.bot_retry_wait", "5s")
	viper.SetDefault("crawler.settle_wait", "2s")
	viper.SetDefault("crawler.session_max_fetches", 10)
	viper.SetDefault("crawler.host_qps", 0.5)
	viper.SetDefault("crawler.respect_robots", true)
	viper.SetDefault("crawler.headless", true)

	// Non-document artifacts and sections excluded from the crawl scope.
	viper.SetDefault("scope.excluded_extensions", []string{
		".css", ".js", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico",
		".pdf", ".zip", ".tar", ".gz", ".exe", ".dmg", ".msi",
		".mp4", ".mp3", ".webm",
		".woff", ".woff2", ".ttf", ".eot",
		".json", ".xml", ".yaml", ".yml",
	})
	viper.SetDefault("scope.excluded_segments", []string{
		"/api/", "/assets/", "/static/", "/images/", "/img/", "/css/", "/js/",
		"/fonts/", "/download/", "/downloads/", "/cdn/", "/_next/", "/_nuxt/",
		"/blog/", "/support/", "/community/", "/forum/",
	})

	// Phrases that identify bot challenges and soft 404s in page text.
	viper.SetDefault("classifier.bot_phrases", []string{
		"JavaScript is disabled",
		"verify that you're not a robot",
	})
	viper.SetDefault("classifier.not_found_phrases", []string{
		"the content you're looking for is not here",
		"page not found",
		"this page does not exist",
		"content not available",
		"404 error",
		"404 - page not found",
		"the requested page could not be found",
	})

	// Class/id substrings the converter strips before printing.
	viper.SetDefault("converter.strip_patterns", []string{
		"nav", "menu", "sidebar", "header", "footer", "breadcrumb", "toc",
		"navbar", "topbar", "tabs", "pagination", "pager", "edit-page",
		"md-header", "md-sidebar", "md-footer", "md-search", "md-overlay",
		"md-tabs", "headerlink",
		"cookie", "consent", "banner", "announcement", "modal", "popup",
		"feedback", "rating", "social", "share",
	})
	viper.SetDefault("converter.timeout", "60s")

	// Empty address disables the Prometheus endpoint.
	viper.SetDefault("metrics.addr", "")

	viper.SetEnvPrefix("DOCFOLD") // e.g. DOCFOLD_CRAWLER_MAX_DEPTH=3
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logging.L.Debug("Config file not found; using defaults and environment variables.")
		} else {
			logging.L.Error("Error reading config file", zap.Error(err))
		}
	} else {
		logging.L.Info("Using config file", zap.String("path", viper.ConfigFileUsed()))
	}
}
