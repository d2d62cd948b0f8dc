package cacheinfra

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Capacity != 10000 {
		t.Errorf("expected Capacity to be 10000, got %d", cfg.Capacity)
	}

	if cfg.NumShards != 256 {
		t.Errorf("expected NumShards to be 256, got %d", cfg.NumShards)
	}

	if cfg.TTL != 5*time.Minute {
		t.Errorf("expected TTL to be 5 minutes, got %v", cfg.TTL)
	}

	if cfg.EvictionPercentage != 10 {
		t.Errorf("expected EvictionPercentage to be 10, got %d", cfg.EvictionPercentage)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to be valid, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := DefaultConfig()

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{name: "valid default config", mutate: func(*Config) {}},
		{name: "zero capacity", mutate: func(c *Config) { c.Capacity = 0 }, wantField: "Capacity"},
		{name: "negative shards", mutate: func(c *Config) { c.NumShards = -1 }, wantField: "NumShards"},
		{name: "zero ttl", mutate: func(c *Config) { c.TTL = 0 }, wantField: "TTL"},
		{name: "eviction percentage too low", mutate: func(c *Config) { c.EvictionPercentage = 0 }, wantField: "EvictionPercentage"},
		{name: "eviction percentage too high", mutate: func(c *Config) { c.EvictionPercentage = 101 }, wantField: "EvictionPercentage"},
		{name: "negative eviction interval", mutate: func(c *Config) { c.EvictionInterval = -time.Second }, wantField: "EvictionInterval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, cfgErr.Field)
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("expected message to mention %q, got %q", tt.wantField, err.Error())
			}
		})
	}
}

func TestToSturdycOptions(t *testing.T) {
	cfg := DefaultConfig()
	if got := len(cfg.ToSturdycOptions()); got != 0 {
		t.Errorf("expected no options by default, got %d", got)
	}

	cfg.EvictionInterval = time.Minute
	if got := len(cfg.ToSturdycOptions()); got != 1 {
		t.Errorf("expected 1 option with eviction interval, got %d", got)
	}
}

func TestNewSturdycClient_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Capacity = 0

	if _, err := NewSturdycClient(cfg); err == nil {
		t.Fatal("expected error for invalid config")
	}
}

func newSturdyc(t *testing.T, clock *testClock) *SturdycClient {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Capacity = 100
	cfg.NumShards = 4
	cfg.TTL = time.Hour
	cfg.Now = clock.Now

	client, err := NewSturdycClient(cfg)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func TestSturdycClient_GetSetRemove(t *testing.T) {
	ctx := context.Background()
	client := newSturdyc(t, newTestClock())

	if _, err := client.Get(ctx, "missing"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss for absent key, got %v", err)
	}

	if err := client.Set(ctx, "color-tally::red", []byte("payload"), time.Minute); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}

	got, err := client.Get(ctx, "color-tally::red")
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if !bytes.Equal(got, []byte("payload")) {
		t.Errorf("expected payload, got %q", got)
	}

	if err := client.Remove(ctx, "color-tally::red"); err != nil {
		t.Fatalf("unexpected remove error: %v", err)
	}
	if _, err := client.Get(ctx, "color-tally::red"); !errors.Is(err, ErrMiss) {
		t.Errorf("expected ErrMiss after remove, got %v", err)
	}

	if err := client.Remove(ctx, "never-set"); err != nil {
		t.Errorf("removing an absent key should not fail, got %v", err)
	}
}

func TestSturdycClient_PerEntryTTL(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	client := newSturdyc(t, clock)

	_ = client.Set(ctx, "short", []byte("a"), 5*time.Second)
	_ = client.Set(ctx, "long", []byte("b"), time.Minute)

	clock.Advance(5 * time.Second)

	if _, err := client.Get(ctx, "short"); !errors.Is(err, ErrMiss) {
		t.Errorf("expected expired entry to be a miss, got %v", err)
	}
	if _, err := client.Get(ctx, "long"); err != nil {
		t.Errorf("expected live entry, got %v", err)
	}
}

func TestSturdycClient_TTLCappedByClient(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	client := newSturdyc(t, clock)

	_ = client.Set(ctx, "k", []byte("v"), 24*time.Hour)
	clock.Advance(time.Hour)

	if _, err := client.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Errorf("expected entry to expire at the client TTL, got %v", err)
	}
}

func TestSturdycClient_StoresCopies(t *testing.T) {
	ctx := context.Background()
	client := newSturdyc(t, newTestClock())

	value := []byte("abc")
	_ = client.Set(ctx, "k", value, time.Minute)
	value[0] = 'z'

	got, _ := client.Get(ctx, "k")
	got[1] = 'z'

	again, _ := client.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("expected stored value to be isolated, got %q", again)
	}
}

func TestSturdycClient_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	client := newSturdyc(t, newTestClock())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := "key-" + string(rune('a'+i))
			for j := 0; j < 50; j++ {
				_ = client.Set(ctx, key, []byte{byte(j)}, time.Minute)
				_, _ = client.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()

	if client.Size() != 20 {
		t.Errorf("expected 20 entries, got %d", client.Size())
	}
}
