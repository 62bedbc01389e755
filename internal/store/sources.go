package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/launchfeed/fundsync/internal/model"
)

// LoadBatch reads an observation batch. A missing file is an empty batch,
// not an error: enrichment sources are optional inputs that may not exist on
// a given checkout. Batches are JSON, or YAML when manually curated
// (.yaml/.yml extension).
func LoadBatch(path string) (*model.ObservationBatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			zap.L().Info("store: no observation batch, treating as empty",
				zap.String("path", path))
			return &model.ObservationBatch{}, nil
		}
		return nil, eris.Wrapf(err, "store: read batch %s", path)
	}

	var batch model.ObservationBatch
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &batch); err != nil {
			return nil, eris.Wrapf(err, "store: parse YAML batch %s", path)
		}
	default:
		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, eris.Wrapf(err, "store: parse batch %s", path)
		}
	}
	return &batch, nil
}

// LoadFilings reads the filings-scraper result store. The scraper owns
// writes; this tool only reads. A missing file is an empty store.
func LoadFilings(path string) (*model.FilingStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			zap.L().Info("store: no filings store, treating as empty",
				zap.String("path", path))
			return &model.FilingStore{Companies: map[string]model.FilingResult{}}, nil
		}
		return nil, eris.Wrapf(err, "store: read filings store %s", path)
	}

	var fs model.FilingStore
	if err := json.Unmarshal(data, &fs); err != nil {
		return nil, eris.Wrapf(err, "store: parse filings store %s", path)
	}
	if fs.Companies == nil {
		fs.Companies = map[string]model.FilingResult{}
	}
	return &fs, nil
}
