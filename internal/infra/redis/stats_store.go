package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"notables-quiz-service/internal/domain"
)

// StatsStore persists the per-player summary record in Redis, one JSON
// value per player: SET quiz:stats:{playerID}. A zero TTL keeps stats
// forever; otherwise each save refreshes the expiry.
type StatsStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatsStore(client *redis.Client, ttl time.Duration) *StatsStore {
	return &StatsStore{client: client, ttl: ttl}
}

func (s *StatsStore) Load(ctx context.Context, playerID string) (domain.SessionStats, error) {
	raw, err := s.client.Get(ctx, s.key(playerID)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.SessionStats{}, domain.ErrStatsNotFound
	}
	if err != nil {
		return domain.SessionStats{}, fmt.Errorf("load stats: %w", err)
	}
	var stats domain.SessionStats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		return domain.SessionStats{}, fmt.Errorf("decode stats: %w", err)
	}
	return stats, nil
}

func (s *StatsStore) Save(ctx context.Context, playerID string, stats domain.SessionStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	if err := s.client.Set(ctx, s.key(playerID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save stats: %w", err)
	}
	return nil
}

func (s *StatsStore) key(playerID string) string {
	return "quiz:stats:" + playerID
}
