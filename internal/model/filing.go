package model

// Confidence tags assigned by the filings scraper.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// FilingResult is the filings scraper's latest verdict for one slug.
//
// Funding is a pointer on purpose: nil means "searched, nothing found",
// which is distinct from the slug being absent from the store entirely
// (not yet searched).
type FilingResult struct {
	Funding    *int64 `json:"funding_found"`
	Source     string `json:"source,omitempty"`
	Confidence string `json:"confidence,omitempty"`
	Notes      string `json:"notes,omitempty"`
	SearchedAt string `json:"searched_at,omitempty"`
}

// FilingStore maps slug to the latest FilingResult. The upstream scraper
// overwrites entries in place, so there is never more than one per slug.
type FilingStore struct {
	Metadata  map[string]any          `json:"metadata,omitempty"`
	Companies map[string]FilingResult `json:"companies"`
}

// Result returns the filing entry for slug, if one exists.
func (s *FilingStore) Result(slug string) (FilingResult, bool) {
	if s == nil || s.Companies == nil {
		return FilingResult{}, false
	}
	fr, ok := s.Companies[slug]
	return fr, ok
}
