package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/launchfeed/fundsync/internal/gaps"
	"github.com/launchfeed/fundsync/internal/store"
)

var gapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "Classify coverage gaps and render outreach reports",
	Long: `Classifies every record into exactly one coverage bucket (fully_covered,
missing_funding, missing_date_only) and renders either the human-readable
report or the flat tagged export for the manual-enrichment workflow.

The report sections missing_funding by why the filings source could not
cover it (international, low-confidence match, no match), and closes with a
priority view: the highest-funded records whose date is still unknown.

Examples:
  # Human-readable report to stdout
  fundsync gaps

  # Flat export for the enrichment spreadsheet
  fundsync gaps --format csv --output gaps.csv
  fundsync gaps --format xlsx --output gaps.xlsx`,
	RunE: runGaps,
}

func init() {
	f := gapsCmd.Flags()
	f.String("format", "table", "output format: table, csv, or xlsx")
	f.String("output", "", "output file path (default: stdout; required for xlsx)")
	f.Int("limit", 0, "priority view size (overrides config)")
	f.String("store", "", "record store path (overrides config)")
	f.String("filings", "", "filings store path (overrides config)")
	rootCmd.AddCommand(gapsCmd)
}

func runGaps(cmd *cobra.Command, _ []string) error {
	log := zap.L().With(zap.String("command", "gaps"))

	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	if format != "table" && format != "csv" && format != "xlsx" {
		return eris.Errorf("gaps: --format must be table, csv, or xlsx (got %q)", format)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = cfg.Gaps.PriorityLimit
	}

	storePath := flagOrDefault(cmd, "store", cfg.Store.Path)
	filingsPath := flagOrDefault(cmd, "filings", cfg.Filings.Path)

	records, err := store.LoadRecords(storePath)
	if err != nil {
		return err
	}
	filings, err := store.LoadFilings(filingsPath)
	if err != nil {
		return err
	}

	entries := gaps.Classify(records, filings, cfg.Filings.HomeCountry)

	var covered, missingFunding, missingDate int
	for _, e := range entries {
		switch e.Bucket {
		case gaps.FullyCovered:
			covered++
		case gaps.MissingFunding:
			missingFunding++
		case gaps.MissingDateOnly:
			missingDate++
		}
	}
	log.Info("records classified",
		zap.Int("fully_covered", covered),
		zap.Int("missing_funding", missingFunding),
		zap.Int("missing_date_only", missingDate),
	)

	switch format {
	case "xlsx":
		if outputPath == "" {
			return eris.New("gaps: --output is required for xlsx")
		}
		return gaps.WriteXLSX(outputPath, gaps.Export(entries))

	case "csv":
		w, closeFn, err := openOutput(outputPath)
		if err != nil {
			return err
		}
		defer closeFn()
		return gaps.WriteCSV(w, gaps.Export(entries))

	default:
		w, closeFn, err := openOutput(outputPath)
		if err != nil {
			return err
		}
		defer closeFn()
		return gaps.Render(w, entries, limit)
	}
}

func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "gaps: create output file %s", path)
	}
	return f, func() { _ = f.Close() }, nil
}
