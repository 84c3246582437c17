package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys that were already handled, such as
// (platform, trace, status) triples of inbound webhooks
type IdempotencyStore interface {
	// MarkProcessed claims the key for ttl.
	// Returns true if the key was newly claimed, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks whether the key is currently claimed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release drops a claimed key so the work can be attempted again
	Release(ctx context.Context, key string) error

	// Close releases resources held by the store
	Close() error
}

// DefaultReplayWindow is how long a handled key is remembered when callers pass no TTL
const DefaultReplayWindow = 7 * 24 * time.Hour
