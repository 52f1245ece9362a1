package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/huntstack/drone-crawler/internal/adapters/mlh"
	"github.com/huntstack/drone-crawler/internal/adapters/taikai"
	"github.com/huntstack/drone-crawler/internal/crawler"
)

// newScrapeCmd creates the 'scrape' subcommand. It runs the site adapters
// over the stealth fetch path and prints the raw event records as JSON.
func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "scrape <taikai|mlh>",
		Short:     "Runs a site adapter and prints the raw event records",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"taikai", "mlh"},
		RunE:      runScrapeCommand,
	}
}

func runScrapeCommand(cmd *cobra.Command, args []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	logger := appInstance.GetLogger()

	cfg, err := crawler.LoadConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load crawler config: %w", err)
	}
	engine := crawler.NewEngine(cfg, appInstance.GetFetcher(), appInstance.GetDeliverer(), logger)

	var records any
	switch args[0] {
	case "taikai":
		events, err := taikai.New(engine, logger).FetchEvents(cmd.Context())
		if err != nil {
			return fmt.Errorf("scrape taikai: %w", err)
		}
		records = events
	case "mlh":
		records = mlh.New(engine, logger).FetchEvents(cmd.Context())
	default:
		return fmt.Errorf("unknown site: %s", args[0])
	}

	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	logger.Info("Scrape command finished", zap.String("site", args[0]))
	return nil
}
