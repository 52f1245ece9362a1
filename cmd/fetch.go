package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/huntstack/drone-crawler/internal/crawler"
)

// newFetchCmd creates the 'fetch' subcommand: a direct single-URL fetch
// through the stealth browser, bypassing batching and ingest entirely.
func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Fetches one URL through the stealth browser and prints the HTML",
		Args:  cobra.ExactArgs(1),
		RunE:  runFetchCommand,
	}
	cmd.Flags().StringP("output", "o", "", "write HTML to file instead of stdout")
	return cmd
}

func runFetchCommand(cmd *cobra.Command, args []string) error {
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
	html, err := engine.FetchContent(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("fetch %s: %w", args[0], err)
	}

	logger.Info("Fetch complete", zap.String("url", args[0]), zap.Int("bytes", len(html)))

	if out, _ := cmd.Flags().GetString("output"); out != "" {
		if err := os.WriteFile(out, []byte(html), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes to %s\n", len(html), out)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), html)
	return nil
}
