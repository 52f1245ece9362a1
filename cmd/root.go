package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/huntstack/drone-crawler/internal/app"
	"github.com/huntstack/drone-crawler/internal/crawler"
	"github.com/huntstack/drone-crawler/internal/ingest"
	"github.com/huntstack/drone-crawler/internal/logging"
	"github.com/huntstack/drone-crawler/pkg/config"
)

var cfgFile string

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application interface that commands use. This allows
// injecting a mock app during tests.
type App interface {
	Close()
	GetLogger() *zap.Logger
	GetFetcher() *crawler.ChromeFetcher
	GetDeliverer() *ingest.Deliverer
}

// newApp is the application factory. A variable so tests can replace it
// with a mock factory.
var newApp func(ctx context.Context) (App, error) = func(ctx context.Context) (App, error) {
	return app.NewApp(ctx)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dronecrawler",
		Short: "A stealth crawler for WAF-protected opportunity listings.",
		Long: `dronecrawler is the ingestion edge of the opportunity pipeline.
It drives a hardened headless browser through anti-bot protected pages,
validates what it captures, and streams raw HTML payloads to the
processing backbone with a synchronous fallback path.`,

		// Runs AFTER config is loaded but BEFORE the subcommand's RunE;
		// the right place to build and inject the application.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cobra.OnInitialize(initRuntime)

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newFetchCmd())
	cmd.AddCommand(newScrapeCmd())

	return cmd
}

// initRuntime loads configuration and then builds the global logger, in
// that order: the development-logger knob lives in the config, so the
// logger cannot be finalized until the config has been read.
func initRuntime() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	config.InitConfig()
	logging.InitLogger(viper.GetBool("log.development"))
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		logging.L.Fatal("Command execution failed", zap.Error(err))
	}
}
