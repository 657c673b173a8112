package crawler

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config captures every configuration knob that influences a crawl run.
// All values originate from Viper so the engine can be configured via files,
// env vars, or CLI flags, while staying decoupled from Viper itself.
type Config struct {
	BaseURL            string
	UserAgent          string
	MaxDepth           int
	Delay              time.Duration
	DelayJitter        time.Duration
	FetchTimeout       time.Duration
	BotRetryWait       time.Duration
	SettleWait         time.Duration
	SessionMaxFetches  int
	HostQPS            float64
	RespectRobots      bool
	Headless           bool
	ExcludedExtensions []string
	ExcludedSegments   []string
	BotPhrases         []string
	NotFoundPhrases    []string
}

// LoadConfig constructs a Config by reading from Viper.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		BaseURL:            v.GetString("crawler.base_url"),
		UserAgent:          v.GetString("crawler.user_agent"),
		MaxDepth:           v.GetInt("crawler.max_depth"),
		Delay:              v.GetDuration("crawler.delay"),
		DelayJitter:        v.GetDuration("crawler.delay_jitter"),
		FetchTimeout:       v.GetDuration("crawler.fetch_timeout"),
		BotRetryWait:       v.GetDuration("crawler.bot_retry_wait"),
		SettleWait:         v.GetDuration("crawler.settle_wait"),
		SessionMaxFetches:  v.GetInt("crawler.session_max_fetches"),
		HostQPS:            v.GetFloat64("crawler.host_qps"),
		RespectRobots:      v.GetBool("crawler.respect_robots"),
		Headless:           v.GetBool("crawler.headless"),
		ExcludedExtensions: v.GetStringSlice("scope.excluded_extensions"),
		ExcludedSegments:   v.GetStringSlice("scope.excluded_segments"),
		BotPhrases:         v.GetStringSlice("classifier.bot_phrases"),
		NotFoundPhrases:    v.GetStringSlice("classifier.not_found_phrases"),
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("crawler.base_url must be set")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("crawler.user_agent must be set")
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("crawler.max_depth must be >= 0")
	}
	if c.Delay < 0 {
		return fmt.Errorf("crawler.delay must be >= 0")
	}
	if c.DelayJitter < 0 {
		return fmt.Errorf("crawler.delay_jitter must be >= 0")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("crawler.fetch_timeout must be > 0")
	}
	if c.BotRetryWait < 0 {
		return fmt.Errorf("crawler.bot_retry_wait must be >= 0")
	}
	if c.SessionMaxFetches <= 0 {
		return fmt.Errorf("crawler.session_max_fetches must be > 0")
	}
	if c.HostQPS < 0 {
		return fmt.Errorf("crawler.host_qps must be >= 0")
	}
	return nil
}
