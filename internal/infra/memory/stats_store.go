package memory

import (
	"context"
	"sync"

	"notables-quiz-service/internal/domain"
)

// StatsStore is an in-memory implementation of app.StatsStore. Stats
// survive reconnects within one process lifetime only.
type StatsStore struct {
	mu    sync.RWMutex
	stats map[string]domain.SessionStats
}

func NewStatsStore() *StatsStore {
	return &StatsStore{stats: make(map[string]domain.SessionStats)}
}

func (s *StatsStore) Load(_ context.Context, playerID string) (domain.SessionStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats, ok := s.stats[playerID]
	if !ok {
		return domain.SessionStats{}, domain.ErrStatsNotFound
	}
	return stats, nil
}

func (s *StatsStore) Save(_ context.Context, playerID string, stats domain.SessionStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[playerID] = stats
	return nil
}
