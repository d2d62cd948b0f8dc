package storecache

import (
	"context"
	"fmt"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"

	"github.com/goliatone/go-profile-cache/cache"
	"github.com/goliatone/go-profile-cache/document"
	"github.com/goliatone/go-profile-cache/store"
)

var _ store.Store = (*CachedStore)(nil)

// anyKind is the namespace of reads that can return documents of any kind.
const anyKind = "any"

// DefaultTTL applies when New is not given WithTTL.
const DefaultTTL = time.Minute

type keySet = *xsync.MapOf[string, struct{}]

// CachedStore decorates a base store with caching functionality.
type CachedStore struct {
	base   store.Store
	cache  *cache.ReadThrough
	keys   cache.KeySerializer
	ttl    time.Duration
	logger *zap.Logger

	// byKind maps a kind namespace to the keys cached for it.
	byKind *xsync.MapOf[string, keySet]
	// byTag maps a cache tag to the keys read under it.
	byTag *xsync.MapOf[string, keySet]
}

// Option configures a CachedStore.
type Option func(*CachedStore)

// WithTTL sets how long cached reads live.
func WithTTL(ttl time.Duration) Option {
	return func(c *CachedStore) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger sets the logger for invalidation failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *CachedStore) {
		if l != nil {
			c.logger = l
		}
	}
}

// New wraps base. keys defaults to the reflection key serializer when nil.
func New(base store.Store, rt *cache.ReadThrough, keys cache.KeySerializer, opts ...Option) *CachedStore {
	if keys == nil {
		keys = cache.NewDefaultKeySerializer()
	}
	c := &CachedStore{
		base:   base,
		cache:  rt,
		keys:   keys,
		ttl:    DefaultTTL,
		logger: zap.NewNop(),
		byKind: xsync.NewMapOf[string, keySet](),
		byTag:  xsync.NewMapOf[string, keySet](),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query returns matching documents, from cache when possible.
func (c *CachedStore) Query(ctx context.Context, filter store.Filter, opts store.QueryOptions) ([]document.Document, error) {
	kind := kindOf(filter)
	key := c.keys.SerializeKey(namespace(kind, "query"), filter, opts.Limit)
	c.trackKey(ctx, kind, key)
	return cache.GetOrCompute(ctx, c.cache, key, c.ttl, func(ctx context.Context) ([]document.Document, error) {
		return c.base.Query(ctx, filter, opts)
	})
}

// List returns documents by id, from cache when possible.
func (c *CachedStore) List(ctx context.Context, opts store.ListOptions) ([]document.Document, error) {
	key := c.keys.SerializeKey(namespace(anyKind, "list"), opts.Keys, opts.Limit)
	c.trackKey(ctx, anyKind, key)
	return cache.GetOrCompute(ctx, c.cache, key, c.ttl, func(ctx context.Context) ([]document.Document, error) {
		return c.base.List(ctx, opts)
	})
}

// Add persists doc and drops the reads that could observe it, along with
// the reads tagged like ctx.
func (c *CachedStore) Add(ctx context.Context, doc document.Document) (string, error) {
	id, err := c.base.Add(ctx, doc)
	if err == nil {
		c.invalidateAfterWrite(ctx, doc.Kind)
	}
	return id, err
}

// Update replaces doc and drops the reads that could observe it.
func (c *CachedStore) Update(ctx context.Context, doc document.Document) error {
	err := c.base.Update(ctx, doc)
	if err == nil {
		c.invalidateAfterWrite(ctx, doc.Kind)
	}
	return err
}

// InvalidateTags drops every read registered under tags.
func (c *CachedStore) InvalidateTags(ctx context.Context, tags ...string) error {
	var firstErr error
	for _, tag := range dedupeStrings(tags) {
		set, ok := c.byTag.LoadAndDelete(tag)
		if !ok {
			continue
		}
		if err := c.removeAll(ctx, set); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// TrackedKeys reports how many cached reads are currently registered for kind.
func (c *CachedStore) TrackedKeys(kind document.Kind) int {
	set, ok := c.byKind.Load(kindNamespace(kind))
	if !ok {
		return 0
	}
	return set.Size()
}

func (c *CachedStore) trackKey(ctx context.Context, kind, key string) {
	register(c.byKind, kind, key)
	for _, tag := range cacheTagsFromContext(ctx) {
		register(c.byTag, tag, key)
	}
}

func register(index *xsync.MapOf[string, keySet], group, key string) {
	set, _ := index.LoadOrCompute(group, func() keySet {
		return xsync.NewMapOf[string, struct{}]()
	})
	set.Store(key, struct{}{})
}

func (c *CachedStore) invalidateAfterWrite(ctx context.Context, kind document.Kind) {
	for _, group := range []string{kindNamespace(kind), anyKind} {
		set, ok := c.byKind.LoadAndDelete(group)
		if !ok {
			continue
		}
		if err := c.removeAll(ctx, set); err != nil {
			c.logger.Warn("cache invalidation failed",
				zap.String("kind", group),
				zap.Error(err),
			)
		}
	}

	if tags := cacheTagsFromContext(ctx); len(tags) > 0 {
		if err := c.InvalidateTags(ctx, tags...); err != nil {
			c.logger.Warn("cache invalidation failed",
				zap.Strings("tags", tags),
				zap.Error(err),
			)
		}
	}
}

func (c *CachedStore) removeAll(ctx context.Context, set keySet) error {
	var keys []string
	set.Range(func(key string, _ struct{}) bool {
		keys = append(keys, key)
		return true
	})
	return c.cache.Remove(ctx, keys...)
}

// kindOf returns the namespace of the kind a filter is pinned to with an
// equality condition on the kind field, or anyKind.
func kindOf(filter store.Filter) string {
	for _, cond := range filter {
		if cond.Field == document.FieldKind && cond.Op == store.OpEq {
			return kindNamespace(document.Kind(fmt.Sprint(cond.Value)))
		}
	}
	return anyKind
}

func kindNamespace(kind document.Kind) string {
	if ns := toSnake(string(kind)); ns != "" {
		return "kind_" + ns
	}
	return anyKind
}

func namespace(kind, method string) string {
	return "store" + cache.KeySeparator + kind + cache.KeySeparator + toSnake(method)
}
