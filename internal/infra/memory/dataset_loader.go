package memory

import (
	"context"

	"notables-quiz-service/internal/domain"
)

// StaticDatasetLoader serves a fixed set of country files (useful for
// tests and demos without a data directory).
type StaticDatasetLoader struct {
	files []domain.CountryFile
}

func NewStaticDatasetLoader(files []domain.CountryFile) *StaticDatasetLoader {
	return &StaticDatasetLoader{files: files}
}

func (l *StaticDatasetLoader) LoadCountries(_ context.Context) ([]domain.CountryFile, error) {
	if len(l.files) == 0 {
		return nil, domain.ErrDatasetNotFound
	}
	return l.files, nil
}
