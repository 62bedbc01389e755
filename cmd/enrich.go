package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/launchfeed/fundsync/internal/reconcile"
	"github.com/launchfeed/fundsync/internal/store"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich [batch-file]",
	Short: "Reconcile a web-enrichment observation batch",
	Long: `Merges one observation batch into the canonical record store.

Dates only ever move forward: a candidate date is adopted when the record
has none or when it sorts strictly later. Funding amounts are overwritten on
any difference; the batch's provenance note is assumed to justify it.
Observations for unknown slugs are expected noise and are counted, never
errors.

By default the merge report is printed without writing anything. Pass
--apply to write the updated store back.

Examples:
  # Preview the default batch
  fundsync enrich

  # Apply a manually curated batch and record the decisions durably
  fundsync enrich batches/manual-q3.yaml --apply --log-db data/changelog.db`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEnrich,
}

func init() {
	f := enrichCmd.Flags()
	f.Bool("apply", false, "write the merged record store back (default is preview)")
	f.String("store", "", "record store path (overrides config)")
	f.String("log-db", "", "SQLite changelog for applied runs (overrides config)")
	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, args []string) error {
	started := time.Now().UTC()
	log := zap.L().With(zap.String("command", "enrich"))

	apply, _ := cmd.Flags().GetBool("apply")
	storePath := flagOrDefault(cmd, "store", cfg.Store.Path)
	batchPath := cfg.Enrich.Batch
	if len(args) == 1 {
		batchPath = args[0]
	}

	records, err := store.LoadRecords(storePath)
	if err != nil {
		return err
	}
	batch, err := store.LoadBatch(batchPath)
	if err != nil {
		return err
	}

	log.Info("reconciling observation batch",
		zap.String("batch", batchPath),
		zap.String("source", batch.Metadata.Source),
		zap.Int("observations", len(batch.Enrichments)),
		zap.Bool("apply", apply),
	)

	rep := reconcile.Observations(records, batch)

	for _, line := range rep.Lines {
		fmt.Println(line)
	}
	printSummary("enrich", apply, rep.Summary())

	if !apply {
		return nil
	}
	if rep.Changed() {
		if err := store.SaveRecords(storePath, records); err != nil {
			return err
		}
		log.Info("record store updated", zap.String("path", storePath))
	}
	return recordRun(cmd, "enrich", rep.Source, rep.Counters(), started, rep.Lines)
}
