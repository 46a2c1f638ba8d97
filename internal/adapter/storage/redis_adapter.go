package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/nft-marketplace/internal/core/domain"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour
	defaultEventsChannel  = "marketplace:events"
)

type RedisConfig struct {
	IdempotencyTTL time.Duration
	EventsChannel  string
}

// RedisAdapter holds request ids for the service and fans committed events
// out over pub/sub.
type RedisAdapter struct {
	client *redis.Client
	cfg    RedisConfig
}

func NewRedisAdapter(client *redis.Client, cfg RedisConfig) *RedisAdapter {
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = defaultIdempotencyTTL
	}
	if cfg.EventsChannel == "" {
		cfg.EventsChannel = defaultEventsChannel
	}
	return &RedisAdapter{client: client, cfg: cfg}
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, r.cfg.IdempotencyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Publish sends each event as JSON on the events channel. The commands are
// pipelined so one commit costs a single round trip.
func (r *RedisAdapter) Publish(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	pipe := r.client.Pipeline()
	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal event %d: %w", ev.Seq, err)
		}
		pipe.Publish(ctx, r.cfg.EventsChannel, payload)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// Channel is the pub/sub channel events are published on.
func (r *RedisAdapter) Channel() string {
	return r.cfg.EventsChannel
}
