package loader

import (
	"slices"
	"time"

	"github.com/goliatone/go-profile-cache/document"
	"github.com/goliatone/go-profile-cache/store"
)

// FieldFavoriteColor is the user field partitioned by UsersByFavoriteColor.
const FieldFavoriteColor = "favoriteColor"

// Config tunes the loaders created by NewLoaders.
type Config struct {
	Wait          time.Duration
	BatchCapacity int
	// RangePartitions lists the fields fetched with the range strategy.
	RangePartitions []string
}

// Loaders is the per-request set of loaders.
type Loaders struct {
	UsersByID            *ByID
	UsersByFavoriteColor *ByPartition
}

// NewLoaders builds a fresh set of loaders over s. Call it once per request.
func NewLoaders(s store.Store, cfg Config) *Loaders {
	opts := []Option{WithWait(cfg.Wait), WithBatchCapacity(cfg.BatchCapacity)}

	return &Loaders{
		UsersByID: NewByID(s, document.KindUser, opts...),
		UsersByFavoriteColor: NewByPartition(s, Partition{
			Kind:    document.KindUser,
			Field:   FieldFavoriteColor,
			Ordered: slices.Contains(cfg.RangePartitions, FieldFavoriteColor),
		}, opts...),
	}
}
