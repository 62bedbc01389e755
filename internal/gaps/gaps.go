// Package gaps classifies canonical records by data completeness and renders
// outreach reports for the next enrichment cycle. It is read-only over both
// the record store and the filings store.
package gaps

import (
	"github.com/launchfeed/fundsync/internal/model"
)

// Bucket is the single coverage class assigned to a record. Every record
// lands in exactly one bucket.
type Bucket string

// Coverage buckets.
const (
	FullyCovered    Bucket = "fully_covered"
	MissingFunding  Bucket = "missing_funding"
	MissingDateOnly Bucket = "missing_date_only"
)

// Reason subdivides MissingFunding for report sectioning only. Evaluated in
// fixed order: the filings source structurally cannot cover non-domestic
// entities, so international status wins over match confidence.
type Reason string

// Missing-funding reasons.
const (
	ReasonInternational Reason = "international_no_filing_coverage"
	ReasonLowConfidence Reason = "low_confidence_filing_match"
	ReasonFilingMiss    Reason = "filing_miss"
)

// DefaultHomeCountry is the filings scraper's home jurisdiction, assumed
// when a record carries no country.
const DefaultHomeCountry = "US"

// Entry is one record's classification plus the display fields an outreach
// report needs. Recomputed fully on every run, never persisted.
type Entry struct {
	Slug            string
	Name            string
	Bucket          Bucket
	Reason          Reason // set only within MissingFunding
	Funding         *int64
	LastFundingDate string
	Country         string
	Segment         string
}

// Classify assigns every record to exactly one bucket, in record-store
// order. The two incomplete buckets are mutually exclusive by construction:
// MissingFunding requires absent funding, MissingDateOnly requires present
// funding.
func Classify(records []model.CompanyRecord, filings *model.FilingStore, homeCountry string) []Entry {
	if homeCountry == "" {
		homeCountry = DefaultHomeCountry
	}

	entries := make([]Entry, 0, len(records))
	for i := range records {
		rec := &records[i]
		e := Entry{
			Slug:            rec.Slug,
			Name:            rec.Name,
			Funding:         rec.Funding,
			LastFundingDate: rec.LastFundingDate,
			Country:         rec.Country,
			Segment:         rec.Segment,
		}

		switch {
		case rec.HasFunding() && rec.HasFundingDate():
			e.Bucket = FullyCovered
		case !rec.HasFunding():
			e.Bucket = MissingFunding
			e.Reason = fundingGapReason(rec, filings, homeCountry)
		default:
			e.Bucket = MissingDateOnly
		}
		entries = append(entries, e)
	}
	return entries
}

func fundingGapReason(rec *model.CompanyRecord, filings *model.FilingStore, homeCountry string) Reason {
	country := rec.Country
	if country == "" {
		country = homeCountry
	}
	if country != homeCountry {
		return ReasonInternational
	}
	if fr, ok := filings.Result(rec.Slug); ok && fr.Confidence == model.ConfidenceLow {
		return ReasonLowConfidence
	}
	return ReasonFilingMiss
}
