// Package store handles all file-backed persistence: the canonical record
// store, the observation and filing source snapshots, and the optional
// SQLite changelog.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/launchfeed/fundsync/internal/model"
)

// LoadRecords reads and validates the canonical record store. A missing or
// structurally invalid store is fatal; reconciliation must never run against
// partial data.
func LoadRecords(path string) ([]model.CompanyRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "store: read record store %s", path)
	}

	var records []model.CompanyRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrapf(err, "store: parse record store %s", path)
	}
	if err := validateRecords(records); err != nil {
		return nil, err
	}
	return records, nil
}

func validateRecords(records []model.CompanyRecord) error {
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		if r.Slug == "" {
			return eris.Errorf("store: record %d has no slug", i)
		}
		if r.Name == "" {
			return eris.Errorf("store: record %q has no name", r.Slug)
		}
		if r.Funding != nil && *r.Funding < 0 {
			return eris.Errorf("store: record %q has negative funding", r.Slug)
		}
		if _, ok := seen[r.Slug]; ok {
			return eris.Errorf("store: duplicate slug %q", r.Slug)
		}
		seen[r.Slug] = struct{}{}
	}
	return nil
}

// SaveRecords writes the record store back as one atomic replace: marshal to
// a temp file in the store's directory, then rename over the original. A
// crash mid-write leaves the previous store intact.
func SaveRecords(path string, records []model.CompanyRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return eris.Wrap(err, "store: marshal record store")
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".records-*.json")
	if err != nil {
		return eris.Wrapf(err, "store: create temp file in %s", dir)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		os.Remove(tmpName)
		return eris.Wrap(err, "store: write temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return eris.Wrap(err, "store: close temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return eris.Wrapf(err, "store: replace %s", path)
	}

	zap.L().Debug("store: record store written",
		zap.String("path", path),
		zap.Int("records", len(records)),
	)
	return nil
}

// Index builds a slug lookup over records. The pointers reference the
// backing slice, so merges applied through the index land in the slice that
// gets written back.
func Index(records []model.CompanyRecord) map[string]*model.CompanyRecord {
	idx := make(map[string]*model.CompanyRecord, len(records))
	for i := range records {
		idx[records[i].Slug] = &records[i]
	}
	return idx
}
