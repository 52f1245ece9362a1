// Package cmd defines and implements the CLI commands for the dronecrawler executable.
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/huntstack/drone-crawler/internal/crawler"
)

// newCrawlCmd creates the 'crawl' subcommand. It runs a batched stealth
// crawl over the configured target URLs and streams every validated
// capture to the ingest path.
func newCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [urls...]",
		Short: "Crawls the configured targets and streams raw HTML",
		Long: `Runs a batched stealth crawl over the target URLs from the
configuration (or the command line), pushing every validated capture to
the streaming backbone with synchronous fallback.`,

		RunE: runCrawlCommand,
	}
	cmd.Flags().String("intent", "", "intent label stamped on every payload (overrides crawler.intent)")
	return cmd
}

func runCrawlCommand(cmd *cobra.Command, args []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	logger := appInstance.GetLogger()

	cfg, err := crawler.LoadConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load crawler config: %w", err)
	}

	urls := cfg.TargetURLs
	if len(args) > 0 {
		urls = args
	}
	if len(urls) == 0 {
		return errors.New("no target urls: set crawler.target_urls or pass urls as arguments")
	}

	intent := cfg.Intent
	if flagIntent, _ := cmd.Flags().GetString("intent"); flagIntent != "" {
		intent = flagIntent
	}

	engine := crawler.NewEngine(cfg, appInstance.GetFetcher(), appInstance.GetDeliverer(), logger)
	outcomes := engine.CrawlAndStream(cmd.Context(), urls, intent)

	var succeeded, skipped, failed int
	for _, o := range outcomes {
		switch o.Status {
		case crawler.StatusSuccess:
			succeeded++
		case crawler.StatusSkipped:
			skipped++
		case crawler.StatusFailed:
			failed++
		}
	}
	logger.Info("Crawl command finished",
		zap.Int("succeeded", succeeded),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)

	if succeeded == 0 && failed > 0 {
		return fmt.Errorf("all %d targets failed", failed)
	}
	return nil
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}
