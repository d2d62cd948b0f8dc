package cacheinfra

import (
	"fmt"
	"time"

	"github.com/viccon/sturdyc"
)

// Config sizes the in-memory sturdyc client.
type Config struct {
	// Capacity bounds the number of entries across all shards.
	Capacity int
	// NumShards splits the keyspace to reduce lock contention.
	NumShards int
	// TTL is the longest an entry may live; shorter per-entry TTLs given to
	// Set win.
	TTL time.Duration
	// EvictionPercentage of a full shard is dropped to make room.
	EvictionPercentage int
	// EvictionInterval, when set, replaces sturdyc's expired-entry sweep period.
	EvictionInterval time.Duration

	// Now overrides the clock used for per-entry expiry. Nil uses time.Now.
	Now func() time.Time
}

// DefaultConfig suits a single process holding a few thousand tallies and
// query results.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          256,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
	}
}

// ToSturdycOptions returns the options not covered by sturdyc.New's
// positional arguments.
func (c Config) ToSturdycOptions() []sturdyc.Option {
	if c.EvictionInterval <= 0 {
		return nil
	}
	return []sturdyc.Option{sturdyc.WithEvictionInterval(c.EvictionInterval)}
}

type configRule struct {
	field   string
	invalid bool
	message string
}

// Validate reports the first out-of-range setting as a *ConfigError.
func (c Config) Validate() error {
	rules := []configRule{
		{"Capacity", c.Capacity <= 0, "must be greater than 0"},
		{"NumShards", c.NumShards <= 0, "must be greater than 0"},
		{"TTL", c.TTL <= 0, "must be greater than 0"},
		{"EvictionPercentage", c.EvictionPercentage < 1 || c.EvictionPercentage > 100, "must be between 1 and 100"},
		{"EvictionInterval", c.EvictionInterval < 0, "must not be negative"},
	}
	for _, r := range rules {
		if r.invalid {
			return &ConfigError{Field: r.field, Message: r.message}
		}
	}
	return nil
}

// ConfigError names the setting that failed validation.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("cache config: %s %s", e.Field, e.Message)
}
