package domain

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-profile-cache/cache"
	"github.com/goliatone/go-profile-cache/document"
	"github.com/goliatone/go-profile-cache/loader"
	"github.com/goliatone/go-profile-cache/store"
)

// DefaultTallyTTL is how long a color tally stays cached.
const DefaultTallyTTL = 5 * time.Second

const colorTallyMethod = "color-tally"

// Effects carries the side-effecting collaborators of one request.
// Loaders must not be shared between requests.
type Effects struct {
	Store       store.Store
	Cache       *cache.ReadThrough // nil computes tallies on every read
	Keys        cache.KeySerializer
	Loaders     *loader.Loaders
	Transformer *document.Transformer
	Logger      *zap.Logger
	TallyTTL    time.Duration
}

func (e *Effects) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

func (e *Effects) tallyTTL() time.Duration {
	if e.TallyTTL <= 0 {
		return DefaultTallyTTL
	}
	return e.TallyTTL
}

func (e *Effects) keys() cache.KeySerializer {
	if e.Keys == nil {
		return cache.NewDefaultKeySerializer()
	}
	return e.Keys
}

// ColorTallyKey is the cache key of the tally for color.
func (e *Effects) ColorTallyKey(color Color) string {
	return e.keys().SerializeKey(colorTallyMethod, color)
}

// invalidateTallies drops cached tallies. Failures are logged, the write
// that triggered them has already succeeded.
func (e *Effects) invalidateTallies(ctx context.Context, colors ...Color) {
	if e.Cache == nil {
		return
	}
	keys := make([]string, 0, len(colors))
	for _, c := range colors {
		keys = append(keys, e.ColorTallyKey(c))
	}
	if err := e.Cache.Remove(ctx, keys...); err != nil {
		e.logger().Warn("color tally invalidation failed",
			zap.Strings("entries", keys),
			zap.Error(err),
		)
	}
}

// userExists reports whether a user with email is stored.
func (e *Effects) userExists(ctx context.Context, email string) (bool, error) {
	docs, err := e.Store.Query(ctx, store.Filter{
		store.Eq(document.FieldKind, document.KindUser),
		store.Eq(FieldEmail, email),
	}, store.QueryOptions{Limit: 1})
	if err != nil {
		return false, UpstreamFailure(err, "user lookup failed")
	}
	return len(docs) > 0, nil
}
