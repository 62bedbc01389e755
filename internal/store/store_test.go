package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchfeed/fundsync/internal/model"
)

func i64(v int64) *int64 { return &v }

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRecords_RoundTrip(t *testing.T) {
	records := []model.CompanyRecord{
		{Slug: "acme", Name: "Acme", Funding: i64(1_000_000), LastFundingDate: "2024-06-01", Country: "US", Segment: "fintech"},
		{Slug: "beta", Name: "Beta"},
	}

	path := filepath.Join(t.TempDir(), "companies.json")
	require.NoError(t, SaveRecords(path, records))

	loaded, err := LoadRecords(path)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestLoadRecords_MissingIsFatal(t *testing.T) {
	_, err := LoadRecords(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read record store")
}

func TestLoadRecords_MalformedIsFatal(t *testing.T) {
	path := writeFile(t, "bad.json", `{"not": "a list"`)
	_, err := LoadRecords(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse record store")
}

func TestLoadRecords_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing slug",
			content: `[{"slug": "", "name": "Acme"}]`,
			wantErr: "has no slug",
		},
		{
			name:    "missing name",
			content: `[{"slug": "acme", "name": ""}]`,
			wantErr: "has no name",
		},
		{
			name:    "negative funding",
			content: `[{"slug": "acme", "name": "Acme", "funding": -5}]`,
			wantErr: "negative funding",
		},
		{
			name:    "duplicate slug",
			content: `[{"slug": "acme", "name": "Acme"}, {"slug": "acme", "name": "Acme Again"}]`,
			wantErr: "duplicate slug",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "store.json", tt.content)
			_, err := LoadRecords(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSaveRecords_ReplacesInPlaceWithoutLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "companies.json")

	require.NoError(t, SaveRecords(path, []model.CompanyRecord{{Slug: "a", Name: "A"}}))
	require.NoError(t, SaveRecords(path, []model.CompanyRecord{{Slug: "b", Name: "B"}}))

	loaded, err := LoadRecords(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "b", loaded[0].Slug)

	// The temp file must be gone after the rename.
	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestIndex_PointsIntoBackingSlice(t *testing.T) {
	records := []model.CompanyRecord{
		{Slug: "acme", Name: "Acme"},
	}

	idx := Index(records)
	idx["acme"].LastFundingDate = "2024-01-01"

	assert.Equal(t, "2024-01-01", records[0].LastFundingDate)
}

func TestLoadBatch_MissingIsEmpty(t *testing.T) {
	batch, err := LoadBatch(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Empty(t, batch.Enrichments)
}

func TestLoadBatch_JSON(t *testing.T) {
	path := writeFile(t, "batch.json", `{
		"metadata": {"source": "web_enrichment", "generated_at": "2025-08-01"},
		"enrichments": [
			{"slug": "acme", "last_funding_date": "2024-06-01", "funding": 1000000, "note": "Series A"}
		]
	}`)

	batch, err := LoadBatch(path)
	require.NoError(t, err)
	assert.Equal(t, "web_enrichment", batch.Metadata.Source)
	require.Len(t, batch.Enrichments, 1)
	obs := batch.Enrichments[0]
	assert.Equal(t, "acme", obs.Slug)
	assert.Equal(t, "2024-06-01", obs.LastFundingDate)
	require.NotNil(t, obs.Funding)
	assert.Equal(t, int64(1_000_000), *obs.Funding)
	assert.Equal(t, "Series A", obs.Note)
}

func TestLoadBatch_YAML(t *testing.T) {
	path := writeFile(t, "manual.yaml", `
metadata:
  source: manual_research
enrichments:
  - slug: acme
    last_funding_date: "2024-06-01"
  - slug: beta
    funding: 2500000
    note: confirmed by founder
`)

	batch, err := LoadBatch(path)
	require.NoError(t, err)
	assert.Equal(t, "manual_research", batch.Metadata.Source)
	require.Len(t, batch.Enrichments, 2)
	assert.Equal(t, "2024-06-01", batch.Enrichments[0].LastFundingDate)
	require.NotNil(t, batch.Enrichments[1].Funding)
	assert.Equal(t, int64(2_500_000), *batch.Enrichments[1].Funding)
}

func TestLoadBatch_MalformedIsFatal(t *testing.T) {
	path := writeFile(t, "batch.json", `{`)
	_, err := LoadBatch(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse batch")
}

func TestLoadFilings_MissingIsEmpty(t *testing.T) {
	fs, err := LoadFilings(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.NotNil(t, fs.Companies)
	assert.Empty(t, fs.Companies)
}

func TestLoadFilings_NullVersusAbsent(t *testing.T) {
	path := writeFile(t, "filings.json", `{
		"metadata": {"updated_at": "2025-08-01"},
		"companies": {
			"acme": {"funding_found": null, "confidence": "high", "notes": "no filings located"},
			"beta": {"funding_found": 5400000, "source": "form_d", "confidence": "medium"}
		}
	}`)

	fs, err := LoadFilings(path)
	require.NoError(t, err)

	// Searched, nothing found: present with nil funding.
	acme, ok := fs.Result("acme")
	require.True(t, ok)
	assert.Nil(t, acme.Funding)

	beta, ok := fs.Result("beta")
	require.True(t, ok)
	require.NotNil(t, beta.Funding)
	assert.Equal(t, int64(5_400_000), *beta.Funding)

	// Not yet searched: absent entirely.
	_, ok = fs.Result("ghost")
	assert.False(t, ok)
}

func TestLoadFilings_MalformedIsFatal(t *testing.T) {
	path := writeFile(t, "filings.json", `[]`)
	_, err := LoadFilings(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse filings store")
}
