package cacheinfra

import (
	"context"
	"errors"
	"time"

	"github.com/viccon/sturdyc"
)

// ErrMiss is returned by Get for absent and expired keys alike.
var ErrMiss = errors.New("cache: miss")

// entry carries its own deadline so each Set can pick a TTL shorter than the
// client-wide one sturdyc enforces.
type entry struct {
	value     []byte
	expiresAt time.Time
}

// SturdycClient is an in-process byte cache backed by sturdyc.
type SturdycClient struct {
	client *sturdyc.Client[entry]
	ttl    time.Duration
	now    func() time.Time
}

// NewSturdycClient validates cfg and creates the sturdyc client.
func NewSturdycClient(cfg Config) (*SturdycClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	client := sturdyc.New[entry](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &SturdycClient{client: client, ttl: cfg.TTL, now: now}, nil
}

// Get returns the value stored under key, or ErrMiss.
func (s *SturdycClient) Get(ctx context.Context, key string) ([]byte, error) {
	e, ok := s.client.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	if !s.now().Before(e.expiresAt) {
		s.client.Delete(key)
		return nil, ErrMiss
	}
	return append([]byte(nil), e.value...), nil
}

// Set stores value for ttl. A non-positive ttl, or one longer than the client
// TTL, uses the client TTL.
func (s *SturdycClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 || ttl > s.ttl {
		ttl = s.ttl
	}
	s.client.Set(key, entry{
		value:     append([]byte(nil), value...),
		expiresAt: s.now().Add(ttl),
	})
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (s *SturdycClient) Remove(ctx context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// Size reports the number of stored entries, expired ones included until evicted.
func (s *SturdycClient) Size() int {
	return s.client.Size()
}
