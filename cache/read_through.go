package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ReadThrough implements cache-aside reads over a Client. Cache failures
// never fail a read: get errors count as misses and set errors are logged.
type ReadThrough struct {
	client Client
	codec  Codec
	logger *zap.Logger
}

// ReadThroughOption configures a ReadThrough.
type ReadThroughOption func(*ReadThrough)

// WithCodec replaces the default msgpack codec.
func WithCodec(c Codec) ReadThroughOption {
	return func(rt *ReadThrough) {
		if c != nil {
			rt.codec = c
		}
	}
}

// WithLogger sets the logger used for swallowed cache failures.
func WithLogger(l *zap.Logger) ReadThroughOption {
	return func(rt *ReadThrough) {
		if l != nil {
			rt.logger = l
		}
	}
}

// NewReadThrough wraps client.
func NewReadThrough(client Client, opts ...ReadThroughOption) *ReadThrough {
	rt := &ReadThrough{
		client: client,
		codec:  MsgpackCodec{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Client returns the wrapped client.
func (rt *ReadThrough) Client() Client {
	return rt.client
}

// GetOrCompute returns the cached value for key, or runs compute and caches
// its result for ttl. Errors from compute are returned and never cached.
func GetOrCompute[T any](ctx context.Context, rt *ReadThrough, key string, ttl time.Duration, compute FetchFn[T]) (T, error) {
	if cached, ok := lookup[T](ctx, rt, key); ok {
		return cached, nil
	}

	value, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	rt.store(ctx, key, value, ttl)
	return value, nil
}

// Set stores value under key without computing anything. Failures are logged.
func Set[T any](ctx context.Context, rt *ReadThrough, key string, value T, ttl time.Duration) {
	rt.store(ctx, key, value, ttl)
}

func lookup[T any](ctx context.Context, rt *ReadThrough, key string) (T, bool) {
	var value T

	data, err := rt.client.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			rt.logger.Warn("cache get failed, treating as miss", zap.String("entry", key), zap.Error(err))
		}
		return value, false
	}

	if err := rt.codec.Decode(data, &value); err != nil {
		rt.logger.Warn("cache entry undecodable, treating as miss", zap.String("entry", key), zap.Error(err))
		var zero T
		return zero, false
	}
	return value, true
}

func (rt *ReadThrough) store(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := rt.codec.Encode(value)
	if err != nil {
		rt.logger.Warn("cache encode failed", zap.String("entry", key), zap.Error(err))
		return
	}
	if err := rt.client.Set(ctx, key, data, ttl); err != nil {
		rt.logger.Warn("cache set failed", zap.String("entry", key), zap.Duration("ttl", ttl), zap.Error(err))
	}
}

// Remove deletes keys. Every key is attempted; the failures are joined.
func (rt *ReadThrough) Remove(ctx context.Context, keys ...string) error {
	var errs []error
	for _, key := range keys {
		if err := rt.client.Remove(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
