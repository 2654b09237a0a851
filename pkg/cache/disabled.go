package cache

import (
	"context"
	"time"
)

// DisabledCache stands in for a cache when caching is off. It always misses
// and remembers why it was chosen, so commands can tell the user.
type DisabledCache struct {
	reason string
}

// Disabled returns a cache that stores nothing. reason is shown to users,
// e.g. "--no-cache" or `backend "none"`.
func Disabled(reason string) *DisabledCache {
	return &DisabledCache{reason: reason}
}

// Reason reports why caching is off.
func (c *DisabledCache) Reason() string { return c.reason }

// Get always misses.
func (c *DisabledCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set drops the layout or artifact.
func (c *DisabledCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

func (c *DisabledCache) Delete(ctx context.Context, key string) error { return nil }

func (c *DisabledCache) Close() error { return nil }

var _ Cache = (*DisabledCache)(nil)
