package reconcile

import (
	"fmt"
	"math"
	"sort"

	"github.com/launchfeed/fundsync/internal/model"
	"github.com/launchfeed/fundsync/internal/store"
)

// DefaultNoiseThreshold is the relative funding delta below which a
// filing-sourced amount is treated as rounding noise.
const DefaultNoiseThreshold = 0.05

// FilingsReport aggregates one filings reconciliation run.
type FilingsReport struct {
	New       int
	Updated   int
	Unchanged int
	NotFound  int
	Lines     []string
}

// Changed reports whether the run produced any mutation.
func (r *FilingsReport) Changed() bool {
	return r.New+r.Updated > 0
}

// Counters returns the summary counters keyed by name.
func (r *FilingsReport) Counters() map[string]int {
	return map[string]int{
		"new":       r.New,
		"updated":   r.Updated,
		"unchanged": r.Unchanged,
		"not_found": r.NotFound,
	}
}

// Summary renders the closing counter line.
func (r *FilingsReport) Summary() string {
	return fmt.Sprintf("new: %d, updated: %d, unchanged: %d, not found: %d",
		r.New, r.Updated, r.Unchanged, r.NotFound)
}

// Filings merges filing-sourced funding amounts into records, mutating
// matched records in place. This path is stricter than Observations: filing
// amounts are independently rounded and estimated, so an existing amount is
// only overwritten when the relative delta exceeds threshold. A plain
// inequality check would thrash on immaterial differences.
//
// A filing whose Funding is nil means "searched, nothing found" and never
// changes a record. Filings for slugs absent from the record store are
// counted as not found; this engine updates existing identities, never
// creates them.
func Filings(records []model.CompanyRecord, filings *model.FilingStore, threshold float64) *FilingsReport {
	rep := &FilingsReport{}
	if filings == nil || len(filings.Companies) == 0 {
		return rep
	}
	if threshold <= 0 {
		threshold = DefaultNoiseThreshold
	}
	idx := store.Index(records)

	// Deterministic report order regardless of map iteration.
	slugs := make([]string, 0, len(filings.Companies))
	for slug := range filings.Companies {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	for _, slug := range slugs {
		fr := filings.Companies[slug]
		rec, ok := idx[slug]
		if !ok {
			rep.NotFound++
			rep.Lines = append(rep.Lines, fmt.Sprintf("%s: filing result has no matching record", slug))
			continue
		}

		switch {
		case fr.Funding == nil:
			rep.Unchanged++
			rep.Lines = append(rep.Lines, fmt.Sprintf("%s: searched, nothing found", slug))

		case !rec.HasFunding():
			if *fr.Funding > 0 {
				v := *fr.Funding
				rec.Funding = &v
				rep.New++
				rep.Lines = append(rep.Lines, fmt.Sprintf("%s: funding set to %d%s",
					slug, v, confidenceSuffix(fr)))
			} else {
				rep.Unchanged++
				rep.Lines = append(rep.Lines, fmt.Sprintf("%s: non-positive filing amount %d ignored",
					slug, *fr.Funding))
			}

		case *fr.Funding <= 0:
			rep.Unchanged++
			rep.Lines = append(rep.Lines, fmt.Sprintf("%s: non-positive filing amount %d ignored",
				slug, *fr.Funding))

		default:
			old := *rec.Funding
			delta := math.Abs(float64(old-*fr.Funding)) / float64(old)
			if delta > threshold {
				v := *fr.Funding
				rec.Funding = &v
				rep.Updated++
				rep.Lines = append(rep.Lines, fmt.Sprintf("%s: funding %d -> %d (%.1f%% delta)%s",
					slug, old, v, delta*100, confidenceSuffix(fr)))
			} else {
				rep.Unchanged++
				rep.Lines = append(rep.Lines, fmt.Sprintf("%s: funding %d kept, filing %d within noise threshold (%.1f%%)",
					slug, old, *fr.Funding, delta*100))
			}
		}
	}
	return rep
}

func confidenceSuffix(fr model.FilingResult) string {
	switch {
	case fr.Source != "" && fr.Confidence != "":
		return fmt.Sprintf(" (%s, %s confidence)", fr.Source, fr.Confidence)
	case fr.Source != "":
		return " (" + fr.Source + ")"
	case fr.Confidence != "":
		return " (" + fr.Confidence + " confidence)"
	default:
		return ""
	}
}
