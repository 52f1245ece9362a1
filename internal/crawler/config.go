package crawler

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config captures every knob that influences a crawl run. All values
// originate from Viper so the crawler can be configured via files, env
// vars, or CLI flags.
type Config struct {
	TargetURLs        []string
	Intent            string
	BatchSize         int
	StaggerMin        time.Duration
	StaggerMax        time.Duration
	DomainQPS         float64
	BlacklistPatterns []string
}

// LoadConfig constructs a Config by reading from Viper.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		TargetURLs:        v.GetStringSlice("crawler.target_urls"),
		Intent:            v.GetString("crawler.intent"),
		BatchSize:         v.GetInt("crawler.batch_size"),
		StaggerMin:        v.GetDuration("crawler.stagger_min"),
		StaggerMax:        v.GetDuration("crawler.stagger_max"),
		DomainQPS:         v.GetFloat64("crawler.domain_qps"),
		BlacklistPatterns: v.GetStringSlice("crawler.blacklist"),
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if c.Intent == "" {
		return fmt.Errorf("crawler.intent must be set")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("crawler.batch_size must be > 0")
	}
	if c.StaggerMin < 0 || c.StaggerMax < c.StaggerMin {
		return fmt.Errorf("crawler.stagger_min/stagger_max must satisfy 0 <= min <= max")
	}
	if c.DomainQPS < 0 {
		return fmt.Errorf("crawler.domain_qps must be >= 0")
	}
	return nil
}
