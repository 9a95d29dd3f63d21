// Package cache provides the read-through cache in front of business lookups.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque payloads by key
type Cache interface {
	// Get returns the payload and true on a hit, nil and false on a miss
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}

// Noop is the cache used when no Redis address is configured
type Noop struct{}

func (Noop) Get(ctx context.Context, key string) ([]byte, bool, error) { return nil, false, nil }

func (Noop) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error { return nil }

func (Noop) Delete(ctx context.Context, keys ...string) error { return nil }

func (Noop) Ping(ctx context.Context) error { return nil }

func (Noop) Close() error { return nil }
