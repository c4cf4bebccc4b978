package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KingBbwe/lta/internal/model"
)

// MetricsCache keeps the latest metrics snapshot per session hot, so the
// dashboard poll does not hit Mongo on every request.
type MetricsCache interface {
	Set(ctx context.Context, snapshot *model.MetricsSnapshot) error
	Get(ctx context.Context, sessionID string) (*model.MetricsSnapshot, error)
	Delete(ctx context.Context, sessionID string) error
}

type metricsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewMetricsCache(client *redis.Client) MetricsCache {
	return &metricsCache{
		client: client,
		ttl:    time.Hour,
	}
}

func (c *metricsCache) Set(ctx context.Context, snapshot *model.MetricsSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "metrics:"+snapshot.SessionID, data, c.ttl).Err()
}

// Get returns nil, nil on a cache miss
func (c *metricsCache) Get(ctx context.Context, sessionID string) (*model.MetricsSnapshot, error) {
	data, err := c.client.Get(ctx, "metrics:"+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snapshot model.MetricsSnapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (c *metricsCache) Delete(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, "metrics:"+sessionID).Err()
}
