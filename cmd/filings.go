package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/launchfeed/fundsync/internal/reconcile"
	"github.com/launchfeed/fundsync/internal/store"
)

var filingsCmd = &cobra.Command{
	Use:   "filings",
	Short: "Reconcile filing-sourced funding amounts",
	Long: `Merges funding amounts from the government-filings result store into the
canonical record store under a stricter rule than web observations: an
existing amount is only overwritten when the filing value differs by more
than the noise threshold (default 5%), because filing amounts are
independently rounded and estimated.

A filing whose funding is null means "searched, nothing found" and never
changes a record. Entries for unknown slugs are counted as not found; this
engine never creates records.

Examples:
  # Preview
  fundsync filings

  # Apply with a looser threshold
  fundsync filings --apply --threshold 0.1`,
	RunE: runFilings,
}

func init() {
	f := filingsCmd.Flags()
	f.Bool("apply", false, "write the merged record store back (default is preview)")
	f.String("store", "", "record store path (overrides config)")
	f.String("filings", "", "filings store path (overrides config)")
	f.Float64("threshold", 0, "relative noise threshold (overrides config)")
	f.String("log-db", "", "SQLite changelog for applied runs (overrides config)")
	rootCmd.AddCommand(filingsCmd)
}

func runFilings(cmd *cobra.Command, _ []string) error {
	started := time.Now().UTC()
	log := zap.L().With(zap.String("command", "filings"))

	apply, _ := cmd.Flags().GetBool("apply")
	storePath := flagOrDefault(cmd, "store", cfg.Store.Path)
	filingsPath := flagOrDefault(cmd, "filings", cfg.Filings.Path)

	threshold, _ := cmd.Flags().GetFloat64("threshold")
	if threshold <= 0 {
		threshold = cfg.Filings.NoiseThreshold
	}

	records, err := store.LoadRecords(storePath)
	if err != nil {
		return err
	}
	filings, err := store.LoadFilings(filingsPath)
	if err != nil {
		return err
	}

	log.Info("reconciling filings store",
		zap.String("filings", filingsPath),
		zap.Int("entries", len(filings.Companies)),
		zap.Float64("threshold", threshold),
		zap.Bool("apply", apply),
	)

	rep := reconcile.Filings(records, filings, threshold)

	for _, line := range rep.Lines {
		fmt.Println(line)
	}
	printSummary("filings", apply, rep.Summary())

	if !apply {
		return nil
	}
	if rep.Changed() {
		if err := store.SaveRecords(storePath, records); err != nil {
			return err
		}
		log.Info("record store updated", zap.String("path", storePath))
	}
	return recordRun(cmd, "filings", "filings", rep.Counters(), started, rep.Lines)
}
