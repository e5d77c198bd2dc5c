// Package cache holds the advisory availability cache. Entries are only
// ever used for display; booking and assignment re-check occupancy inside
// the store transaction.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
)

type AvailabilityCache interface {
	Get(ctx context.Context, date, clock string) (*domain.Availability, bool, error)
	Set(ctx context.Context, a domain.Availability) error
	Invalidate(ctx context.Context, date, clock string) error
}

type RedisAvailability struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAvailability(client *redis.Client, ttl time.Duration) *RedisAvailability {
	return &RedisAvailability{client: client, ttl: ttl}
}

func key(date, clock string) string {
	return "availability:" + date + ":" + clock
}

func (c *RedisAvailability) Get(ctx context.Context, date, clock string) (*domain.Availability, bool, error) {
	raw, err := c.client.Get(ctx, key(date, clock)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var a domain.Availability
	if err := json.Unmarshal(raw, &a); err != nil {
		// unreadable entry: treat as a miss and let the next Set replace it
		return nil, false, nil
	}
	return &a, true, nil
}

func (c *RedisAvailability) Set(ctx context.Context, a domain.Availability) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(a.Date, a.Time), raw, c.ttl).Err()
}

func (c *RedisAvailability) Invalidate(ctx context.Context, date, clock string) error {
	return c.client.Del(ctx, key(date, clock)).Err()
}

// Nop is used when no Redis address is configured.
type Nop struct{}

func (Nop) Get(context.Context, string, string) (*domain.Availability, bool, error) {
	return nil, false, nil
}

func (Nop) Set(context.Context, domain.Availability) error { return nil }

func (Nop) Invalidate(context.Context, string, string) error { return nil }

var (
	_ AvailabilityCache = (*RedisAvailability)(nil)
	_ AvailabilityCache = Nop{}
)
