// Package model defines the canonical data types shared by the
// reconciliation engine and the coverage gap analyzer.
package model

// CompanyRecord is the canonical directory entry for one company.
//
// Slug is the only identity: every merge operation addresses records by slug
// and never infers cross-record relationships. The reconciliation engine
// owns writes to Funding and LastFundingDate; all other fields belong to
// external editors and pass through untouched.
type CompanyRecord struct {
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	Funding *int64 `json:"funding,omitempty"`
	// LastFundingDate is an ISO-style string (YYYY-MM-DD, possibly truncated
	// to year or year-month). Comparisons are lexicographic on the raw
	// string; loaders never rewrite precision.
	LastFundingDate string `json:"last_funding_date,omitempty"`
	Country         string `json:"country,omitempty"`
	Stage           string `json:"stage,omitempty"`
	Segment         string `json:"segment,omitempty"`
}

// Funding stages.
const (
	StagePreSeed  = "pre_seed"
	StageSeed     = "seed"
	StageSeriesA  = "series_a"
	StageSeriesB  = "series_b"
	StageSeriesC  = "series_c"
	StageGrowth   = "growth"
	StageAcquired = "acquired"
	StagePublic   = "public"
)

// HasFunding reports whether the record carries a positive funding amount.
func (r *CompanyRecord) HasFunding() bool {
	return r.Funding != nil && *r.Funding > 0
}

// HasFundingDate reports whether the record carries a last-funding-date.
func (r *CompanyRecord) HasFundingDate() bool {
	return r.LastFundingDate != ""
}
