package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/launchfeed/fundsync/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect reconciliation run history",
	Long:  "Commands for listing and viewing applied reconciliation runs recorded in the changelog database.",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cl, err := openChangelog(cmd)
		if err != nil {
			return err
		}
		defer cl.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := cl.ListRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs recorded.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCOMMAND\tSOURCE\tSTARTED\tCOUNTERS")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				r.ID, r.Command, r.Source,
				r.StartedAt.Format("2006-01-02 15:04:05"),
				formatCounters(r.Counters))
		}
		return eris.Wrap(tw.Flush(), "runs: flush table")
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its decision lines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cl, err := openChangelog(cmd)
		if err != nil {
			return err
		}
		defer cl.Close() //nolint:errcheck

		run, err := cl.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

func init() {
	runsCmd.PersistentFlags().String("log-db", "", "SQLite changelog path (overrides config)")
	runsListCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func openChangelog(cmd *cobra.Command) (*store.Changelog, error) {
	path, _ := cmd.Flags().GetString("log-db")
	if path == "" {
		path = cfg.Store.ChangelogPath
	}
	if path == "" {
		return nil, eris.New("runs: no changelog configured (set --log-db or store.changelog_path)")
	}

	cl, err := store.OpenChangelog(path)
	if err != nil {
		return nil, err
	}
	if err := cl.Migrate(cmd.Context()); err != nil {
		cl.Close() //nolint:errcheck
		return nil, err
	}
	return cl, nil
}

func formatCounters(counters map[string]int) string {
	keys := make([]string, 0, len(counters))
	for k := range counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counters[k]))
	}
	return strings.Join(parts, " ")
}
