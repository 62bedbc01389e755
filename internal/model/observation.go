package model

// Observation is one candidate funding update produced by a web-enrichment
// run or a manually curated batch. Consumed exactly once per reconciliation
// run, never mutated.
type Observation struct {
	Slug            string `json:"slug" yaml:"slug"`
	LastFundingDate string `json:"last_funding_date,omitempty" yaml:"last_funding_date,omitempty"`
	Funding         *int64 `json:"funding,omitempty" yaml:"funding,omitempty"`
	Note            string `json:"note,omitempty" yaml:"note,omitempty"`
}

// BatchMetadata describes the provenance of an observation batch.
type BatchMetadata struct {
	Source      string `json:"source" yaml:"source"`
	GeneratedAt string `json:"generated_at,omitempty" yaml:"generated_at,omitempty"`
}

// ObservationBatch is an immutable, timestamped snapshot from one
// enrichment source.
type ObservationBatch struct {
	Metadata    BatchMetadata `json:"metadata" yaml:"metadata"`
	Enrichments []Observation `json:"enrichments" yaml:"enrichments"`
}
