// Package drafts mirrors draft simulation sessions to redis so they survive restarts and can be
// picked up by any API replica.
package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
)

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func key(id string) string {
	return fmt.Sprintf("simulation_draft_%s", id)
}

// Save overwrites the record and restarts its expiry.
func (s *RedisStore) Save(ctx context.Context, rec domain.SimulationSession) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode draft %s: %w", rec.ID, err)
	}
	if err := s.client.Set(ctx, key(rec.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save draft %s: %w", rec.ID, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (domain.SimulationSession, error) {
	payload, err := s.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.SimulationSession{}, domain.ErrSessionNotFound
		}
		return domain.SimulationSession{}, fmt.Errorf("load draft %s: %w", id, err)
	}

	var rec domain.SimulationSession
	if err := json.Unmarshal(payload, &rec); err != nil {
		return domain.SimulationSession{}, fmt.Errorf("decode draft %s: %w", id, err)
	}
	return rec, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("delete draft %s: %w", id, err)
	}
	return nil
}
