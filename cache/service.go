package cache

import (
	"context"
	"time"

	"github.com/goliatone/go-profile-cache/internal/cacheinfra"
)

// ErrMiss is returned by Client.Get when a key is absent or expired.
var ErrMiss = cacheinfra.ErrMiss

// KeySerializer builds a cache key from a method name + arbitrary args.
// It is responsible for producing stable keys across calls.
type KeySerializer interface {
	SerializeKey(method string, args ...any) string
}

// FetchFn computes a value from the source of truth on a cache miss.
type FetchFn[T any] func(ctx context.Context) (T, error)

// Client is the byte-level cache backend.
type Client interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
}

// BoltClient is a Client persisted to disk.
type BoltClient interface {
	Client
	Purge(ctx context.Context) (int, error)
	Close() error
}
