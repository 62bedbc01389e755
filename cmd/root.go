package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/launchfeed/fundsync/internal/config"
	"github.com/launchfeed/fundsync/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "fundsync",
	Short: "Offline maintenance for the directory's company funding data",
	Long: "Reconciles funding observations from web enrichment, the government-filings scraper, " +
		"and manually curated batches into the canonical company record store, and reports which " +
		"records still need attention.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// flagOrDefault returns a string flag's value when set, def otherwise.
func flagOrDefault(cmd *cobra.Command, name, def string) string {
	if v, _ := cmd.Flags().GetString(name); v != "" {
		return v
	}
	return def
}

// printSummary always runs at the end of a reconciliation command, so a
// clean run with many skips is distinguishable from an aborted one.
func printSummary(command string, applied bool, counters string) {
	mode := "preview"
	if applied {
		mode = "apply"
	}
	fmt.Printf("\n--- %s summary (%s) ---\n%s\n", command, mode, counters)
}

// recordRun redirects an applied run's decision lines to the durable
// changelog when one is configured via --log-db or store.changelog_path.
// An empty path means the lines were printed and are discarded.
func recordRun(cmd *cobra.Command, command, source string, counters map[string]int, startedAt time.Time, lines []string) error {
	path := flagOrDefault(cmd, "log-db", cfg.Store.ChangelogPath)
	if path == "" {
		return nil
	}

	cl, err := store.OpenChangelog(path)
	if err != nil {
		return err
	}
	defer cl.Close() //nolint:errcheck

	ctx := cmd.Context()
	if err := cl.Migrate(ctx); err != nil {
		return err
	}

	id, err := cl.RecordRun(ctx, command, source, counters, startedAt, lines)
	if err != nil {
		return err
	}
	zap.L().Info("run recorded",
		zap.String("run_id", id),
		zap.String("changelog", path),
	)
	return nil
}
