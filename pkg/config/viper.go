// Package config is responsible for initializing the application's configuration.
// It uses the Viper library to read settings from a config file, environment
// variables, and command-line flags, providing a unified configuration system.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/huntstack/drone-crawler/internal/logging"
)

// InitConfig initializes the application's configuration using Viper.
// It sets up default values, defines configuration search paths, and enables
// reading from environment variables. Called once at application startup.
func InitConfig() {
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/dronecrawler/")
	viper.AddConfigPath("$HOME/.dronecrawler")

	// Crawl orchestration defaults. Batch size and the stagger window set
	// the cadence that keeps the crawler under WAF radar thresholds.
	viper.SetDefault("crawler.target_urls", []string{})
	viper.SetDefault("crawler.intent", "general")
	viper.SetDefault("crawler.batch_size", 5)
	viper.SetDefault("crawler.stagger_min", 2*time.Second)
	viper.SetDefault("crawler.stagger_max", 4*time.Second)
	viper.SetDefault("crawler.domain_qps", 0.5)
	viper.SetDefault("crawler.blacklist", []string{"chegg.com"})

	// Ingest defaults. The noop provider routes every payload through the
	// synchronous refinery, which is the right mode for local runs.
	viper.SetDefault("ingest.provider", "noop")
	viper.SetDefault("ingest.gcp.project_id", "")
	viper.SetDefault("ingest.gcp.topic_id", "")

	viper.SetDefault("ops.addr", ":8080")
	viper.SetDefault("log.development", false)

	viper.SetEnvPrefix("DRONE") // e.g. DRONE_CRAWLER_BATCH_SIZE=3
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logging.L.Warn("Config file not found; using defaults and environment variables.")
		} else {
			logging.L.Error("Error reading config file", zap.Error(err))
		}
	} else {
		logging.L.Info("Using config file", zap.String("path", viper.ConfigFileUsed()))
	}
}
