package gaps

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Export combines every incomplete record into one flat, tagged list for the
// manual-enrichment workflow, deduplicated by slug with first seen winning.
func Export(entries []Entry) []Entry {
	seen := make(map[string]struct{}, len(entries))
	var out []Entry
	for _, e := range entries {
		if e.Bucket != MissingFunding && e.Bucket != MissingDateOnly {
			continue
		}
		if _, ok := seen[e.Slug]; ok {
			continue
		}
		seen[e.Slug] = struct{}{}
		out = append(out, e)
	}
	return out
}

var exportHeader = []string{
	"slug", "name", "bucket", "reason", "country", "segment", "funding", "last_funding_date",
}

func exportStrings(e Entry) []string {
	funding := ""
	if e.Funding != nil {
		funding = strconv.FormatInt(*e.Funding, 10)
	}
	return []string{
		e.Slug, e.Name, string(e.Bucket), string(e.Reason),
		e.Country, e.Segment, funding, e.LastFundingDate,
	}
}

// WriteCSV writes export rows as CSV.
func WriteCSV(w io.Writer, rows []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return eris.Wrap(err, "gaps: write CSV header")
	}
	for _, e := range rows {
		if err := cw.Write(exportStrings(e)); err != nil {
			return eris.Wrapf(err, "gaps: write CSV row %s", e.Slug)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "gaps: flush CSV")
}

// WriteXLSX writes export rows as a single-sheet spreadsheet.
func WriteXLSX(path string, rows []Entry) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("gaps")
	if err != nil {
		return eris.Wrap(err, "gaps: add sheet")
	}

	hr := sheet.AddRow()
	for _, h := range exportHeader {
		hr.AddCell().Value = h
	}
	for _, e := range rows {
		row := sheet.AddRow()
		for _, v := range exportStrings(e) {
			row.AddCell().Value = v
		}
	}

	return eris.Wrapf(f.Save(path), "gaps: save %s", path)
}
