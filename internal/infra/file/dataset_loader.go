// Package file loads the statically generated per-country JSON files
// produced by the offline data pipeline: an index.json listing the
// rosters plus one file per country.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"notables-quiz-service/internal/domain"
)

const indexFile = "index.json"

// DatasetLoader reads country rosters from a data directory.
type DatasetLoader struct {
	dir string
}

func NewDatasetLoader(dir string) *DatasetLoader {
	return &DatasetLoader{dir: dir}
}

// LoadCountries reads the index and every listed country file. A single
// unreadable or malformed country file is skipped with a log line; only
// a missing/broken index is fatal, since without it nothing can load.
func (l *DatasetLoader) LoadCountries(_ context.Context) ([]domain.CountryFile, error) {
	raw, err := os.ReadFile(filepath.Join(l.dir, indexFile))
	if err != nil {
		return nil, fmt.Errorf("read dataset index: %w", err)
	}
	var index domain.CountryIndex
	if err := json.Unmarshal(raw, &index); err != nil {
		return nil, fmt.Errorf("decode dataset index: %w", err)
	}

	files := make([]domain.CountryFile, 0, len(index.Countries))
	for _, entry := range index.Countries {
		data, err := os.ReadFile(filepath.Join(l.dir, entry.File))
		if err != nil {
			log.Printf("skipping %s: %v", entry.Name, err)
			continue
		}
		var cf domain.CountryFile
		if err := json.Unmarshal(data, &cf); err != nil {
			log.Printf("skipping %s: %v", entry.Name, err)
			continue
		}
		if len(cf.People) == 0 {
			log.Printf("skipping %s: empty roster", entry.Name)
			continue
		}
		if cf.Country == "" {
			cf.Country = entry.Name
		}
		if cf.CountryCode == "" {
			cf.CountryCode = entry.Code
		}
		files = append(files, cf)
	}
	if len(files) == 0 {
		return nil, domain.ErrDatasetNotFound
	}
	return files, nil
}
