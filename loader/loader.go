package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/graph-gophers/dataloader/v7"
)

// BatchFunc fetches values for keys. The returned slice must line up with
// keys; an error fails the whole batch.
type BatchFunc[K comparable, V any] func(ctx context.Context, keys []K) ([]V, error)

// Option tunes batching.
type Option func(*options)

type options struct {
	wait     time.Duration
	capacity int
}

// WithWait sets how long a batch stays open for more keys.
func WithWait(d time.Duration) Option {
	return func(o *options) {
		o.wait = d
	}
}

// WithBatchCapacity caps the number of keys per store call. Zero means unbounded.
func WithBatchCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// Loader batches and memoizes lookups of V by K.
type Loader[K comparable, V any] struct {
	dl *dataloader.Loader[K, V]
}

// New wraps fetch in a batching loader.
func New[K comparable, V any](fetch BatchFunc[K, V], opts ...Option) *Loader[K, V] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var dlOpts []dataloader.Option[K, V]
	if o.wait > 0 {
		dlOpts = append(dlOpts, dataloader.WithWait[K, V](o.wait))
	}
	if o.capacity > 0 {
		dlOpts = append(dlOpts, dataloader.WithBatchCapacity[K, V](o.capacity))
	}

	return &Loader[K, V]{dl: dataloader.NewBatchedLoader(batch(fetch), dlOpts...)}
}

func batch[K comparable, V any](fetch BatchFunc[K, V]) dataloader.BatchFunc[K, V] {
	return func(ctx context.Context, keys []K) []*dataloader.Result[V] {
		results := make([]*dataloader.Result[V], len(keys))

		values, err := fetch(ctx, keys)
		if err == nil && len(values) != len(keys) {
			err = fmt.Errorf("loader: batch returned %d values for %d keys", len(values), len(keys))
		}
		for i := range keys {
			if err != nil {
				results[i] = &dataloader.Result[V]{Error: err}
				continue
			}
			results[i] = &dataloader.Result[V]{Data: values[i]}
		}
		return results
	}
}

// Load resolves a single key, joining the currently open batch.
func (l *Loader[K, V]) Load(ctx context.Context, key K) (V, error) {
	return l.dl.Load(ctx, key)()
}

// LoadMany resolves keys in order. Duplicate keys are fetched once. errs is
// nil when every key resolved, otherwise it lines up with keys.
func (l *Loader[K, V]) LoadMany(ctx context.Context, keys []K) ([]V, []error) {
	thunks := make([]dataloader.Thunk[V], len(keys))
	for i, key := range keys {
		thunks[i] = l.dl.Load(ctx, key)
	}

	values := make([]V, len(keys))
	var errs []error
	for i, thunk := range thunks {
		v, err := thunk()
		if err != nil {
			if errs == nil {
				errs = make([]error, len(keys))
			}
			errs[i] = err
			continue
		}
		values[i] = v
	}
	return values, errs
}

// Clear forgets the memoized result for key.
func (l *Loader[K, V]) Clear(ctx context.Context, key K) {
	l.dl.Clear(ctx, key)
}

// ClearAll forgets every memoized result.
func (l *Loader[K, V]) ClearAll() {
	l.dl.ClearAll()
}

// Prime seeds the memo with value unless key is already resolved.
func (l *Loader[K, V]) Prime(ctx context.Context, key K, value V) {
	l.dl.Prime(ctx, key, value)
}
