package cache

import (
	"time"

	"github.com/goliatone/go-profile-cache/internal/cacheinfra"
)

// Supported backends.
const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
)

// ConfigError reports an invalid configuration field.
type ConfigError = cacheinfra.ConfigError

// Config exposes cache configuration options for consumers of the cache package.
type Config struct {
	Backend            string
	Path               string
	Capacity           int
	NumShards          int
	TTL                time.Duration
	EvictionPercentage int
	EvictionInterval   time.Duration
	// Now overrides the expiry clock; used by tests.
	Now func() time.Time
}

// DefaultConfig returns an in-memory Config populated with sensible defaults.
func DefaultConfig() Config {
	cfg := convertFromInternal(cacheinfra.DefaultConfig())
	cfg.Backend = BackendMemory
	return cfg
}

// Validate checks whether the configuration values are valid for the backend.
func (c Config) Validate() error {
	switch c.Backend {
	case "", BackendMemory:
		return c.toInternal().Validate()
	case BackendBolt:
		if c.Path == "" {
			return &ConfigError{Field: "Path", Message: "is required for the bolt backend"}
		}
		if c.TTL < 0 {
			return &ConfigError{Field: "TTL", Message: "must be non-negative"}
		}
		return nil
	}
	return &ConfigError{Field: "Backend", Message: "must be one of memory, bolt"}
}

// NewClient constructs the in-process sturdyc client.
func NewClient(cfg Config) (Client, error) {
	client, err := cacheinfra.NewSturdycClient(cfg.toInternal())
	if err != nil {
		return nil, err
	}
	return client, nil
}

// OpenBolt opens the persistent client at cfg.Path. cfg.TTL is used for
// entries stored without a TTL.
func OpenBolt(cfg Config) (BoltClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := cacheinfra.OpenBolt(cfg.Path, cacheinfra.BoltOptions{
		DefaultTTL: cfg.TTL,
		Now:        cfg.Now,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (c Config) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		TTL:                c.TTL,
		EvictionPercentage: c.EvictionPercentage,
		EvictionInterval:   c.EvictionInterval,
		Now:                c.Now,
	}
}

func convertFromInternal(cfg cacheinfra.Config) Config {
	return Config{
		Capacity:           cfg.Capacity,
		NumShards:          cfg.NumShards,
		TTL:                cfg.TTL,
		EvictionPercentage: cfg.EvictionPercentage,
		EvictionInterval:   cfg.EvictionInterval,
	}
}
