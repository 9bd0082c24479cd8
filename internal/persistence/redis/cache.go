// Package redis caches the latest regime snapshot so gate checks and
// API reads avoid a database round trip.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/macrointel/macrointel/internal/persistence"
	"github.com/macrointel/macrointel/internal/regime"
)

const latestKey = "macrointel:snapshot:latest"

type latestCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewLatestCache wraps a redis client as a LatestCache. A zero ttl means
// entries never expire and are only replaced by the next Set.
func NewLatestCache(client *goredis.Client, ttl time.Duration) persistence.LatestCache {
	return &latestCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached snapshot, or nil on a miss.
func (c *latestCache) Get(ctx context.Context) (*regime.Snapshot, error) {
	data, err := c.client.Get(ctx, latestKey).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read latest snapshot from cache: %w", err)
	}

	var snapshot regime.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached snapshot: %w", err)
	}
	return &snapshot, nil
}

// Set replaces the cached snapshot.
func (c *latestCache) Set(ctx context.Context, snapshot *regime.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot for cache: %w", err)
	}

	if err := c.client.Set(ctx, latestKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache latest snapshot: %w", err)
	}
	return nil
}
