package cache

import (
	"context"
	"time"
)

// Store is the shared ephemeral key-value interface used for session state
// and rate limiting. Implementations honour TTL on Set and treat missing keys
// as (found=false, err=nil). The backend is pluggable: in-memory for tests
// and single-node deployments, Redis for production, database as fallback.
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, keys ...string) error
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}
