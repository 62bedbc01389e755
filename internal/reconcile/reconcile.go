// Package reconcile merges candidate funding observations from heterogeneous
// sources into canonical company records under strict precedence and
// idempotence rules. All functions are pure transformations over in-memory
// structures; persistence stays with the caller.
package reconcile

import (
	"fmt"

	"github.com/launchfeed/fundsync/internal/model"
	"github.com/launchfeed/fundsync/internal/store"
)

// Report aggregates one observation-batch reconciliation run.
type Report struct {
	Source         string
	DatesAdded     int
	DatesUpdated   int
	FundingUpdated int
	Skipped        int
	Lines          []string
}

// Changed reports whether the run produced any mutation.
func (r *Report) Changed() bool {
	return r.DatesAdded+r.DatesUpdated+r.FundingUpdated > 0
}

// Counters returns the summary counters keyed by name.
func (r *Report) Counters() map[string]int {
	return map[string]int{
		"dates_added":     r.DatesAdded,
		"dates_updated":   r.DatesUpdated,
		"funding_updated": r.FundingUpdated,
		"skipped":         r.Skipped,
	}
}

// Summary renders the closing counter line.
func (r *Report) Summary() string {
	return fmt.Sprintf("dates added: %d, dates updated: %d, funding updated: %d, skipped: %d",
		r.DatesAdded, r.DatesUpdated, r.FundingUpdated, r.Skipped)
}

// decision is the outcome of merging one observation into one record.
type decision struct {
	dateAdded      bool
	dateUpdated    bool
	fundingUpdated bool
	lines          []string
}

// Observations merges every observation in the batch into records, in batch
// order, mutating matched records in place. Observations for unknown slugs
// are expected noise from upstream batches: counted, never raised. The
// caller decides whether the mutated slice is written back.
func Observations(records []model.CompanyRecord, batch *model.ObservationBatch) *Report {
	rep := &Report{Source: batch.Metadata.Source}
	idx := store.Index(records)

	for _, obs := range batch.Enrichments {
		rec, ok := idx[obs.Slug]
		if !ok {
			rep.Skipped++
			rep.Lines = append(rep.Lines, fmt.Sprintf("skip %s: no matching record", obs.Slug))
			continue
		}

		merged, dec := mergeObservation(*rec, obs)
		*rec = merged

		if dec.dateAdded {
			rep.DatesAdded++
		}
		if dec.dateUpdated {
			rep.DatesUpdated++
		}
		if dec.fundingUpdated {
			rep.FundingUpdated++
		}
		rep.Lines = append(rep.Lines, dec.lines...)
	}
	return rep
}

// mergeObservation applies the date and funding rules to a copy of rec and
// returns the merged record plus the decision. Pure: no I/O, no shared
// state, so apply and preview take the exact same path.
func mergeObservation(rec model.CompanyRecord, obs model.Observation) (model.CompanyRecord, decision) {
	var dec decision

	// Date rule: monotonic. Dates only ever move forward, so a stale batch
	// can never regress good data. Lexicographic comparison on ISO-style
	// strings is intentional; it avoids timezone and calendar parsing.
	if obs.LastFundingDate != "" {
		switch {
		case rec.LastFundingDate == "":
			rec.LastFundingDate = obs.LastFundingDate
			dec.dateAdded = true
			dec.lines = append(dec.lines, fmt.Sprintf("%s: date set to %s%s",
				rec.Slug, obs.LastFundingDate, noteSuffix(obs.Note)))
		case obs.LastFundingDate > rec.LastFundingDate:
			dec.lines = append(dec.lines, fmt.Sprintf("%s: date %s -> %s%s",
				rec.Slug, rec.LastFundingDate, obs.LastFundingDate, noteSuffix(obs.Note)))
			rec.LastFundingDate = obs.LastFundingDate
			dec.dateUpdated = true
		default:
			dec.lines = append(dec.lines, fmt.Sprintf("%s: date %s kept, candidate %s is same or older",
				rec.Slug, rec.LastFundingDate, obs.LastFundingDate))
		}
	}

	// Funding rule: plain inequality. The batch's provenance note is assumed
	// to justify the change for this source. Non-positive candidates are
	// rejected here so a bad batch entry can never write a store that fails
	// validation on the next load.
	if obs.Funding != nil && *obs.Funding <= 0 {
		dec.lines = append(dec.lines, fmt.Sprintf("%s: non-positive funding %d ignored",
			rec.Slug, *obs.Funding))
	} else if obs.Funding != nil && (rec.Funding == nil || *rec.Funding != *obs.Funding) {
		oldAmount := "none"
		if rec.Funding != nil {
			oldAmount = fmt.Sprintf("%d", *rec.Funding)
		}
		v := *obs.Funding
		rec.Funding = &v
		dec.fundingUpdated = true
		dec.lines = append(dec.lines, fmt.Sprintf("%s: funding %s -> %d%s",
			rec.Slug, oldAmount, v, noteSuffix(obs.Note)))
	}

	return rec, dec
}

func noteSuffix(note string) string {
	if note == "" {
		return ""
	}
	return " (" + note + ")"
}
