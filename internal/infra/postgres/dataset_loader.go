package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jackc/pgx/v4/pgxpool"

	"notables-quiz-service/internal/domain"
)

// DatasetLoader reads country rosters stored as JSONB rows, one per
// country, seeded offline by the data pipeline.
type DatasetLoader struct {
	pool *pgxpool.Pool
}

func NewDatasetLoader(pool *pgxpool.Pool) *DatasetLoader {
	return &DatasetLoader{pool: pool}
}

func (l *DatasetLoader) LoadCountries(ctx context.Context) ([]domain.CountryFile, error) {
	rows, err := l.pool.Query(ctx, `SELECT code, data FROM countries ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("query countries: %w", err)
	}
	defer rows.Close()

	var files []domain.CountryFile
	for rows.Next() {
		var code string
		var raw []byte
		if err := rows.Scan(&code, &raw); err != nil {
			return nil, fmt.Errorf("scan country row: %w", err)
		}
		var cf domain.CountryFile
		if err := json.Unmarshal(raw, &cf); err != nil {
			// One malformed roster should not take the quiz down.
			log.Printf("skipping country %s: %v", code, err)
			continue
		}
		if cf.CountryCode == "" {
			cf.CountryCode = code
		}
		files = append(files, cf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate countries: %w", err)
	}
	if len(files) == 0 {
		return nil, domain.ErrDatasetNotFound
	}
	return files, nil
}
