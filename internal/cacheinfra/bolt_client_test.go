package cacheinfra

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openBolt(t *testing.T, clock *testClock, defaultTTL time.Duration) *BoltClient {
	t.Helper()

	client, err := OpenBolt(filepath.Join(t.TempDir(), "cache.bbolt"), BoltOptions{
		Bucket:     "test",
		DefaultTTL: defaultTTL,
		Now:        clock.Now,
	})
	if err != nil {
		t.Fatalf("failed to open bolt cache: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestBoltClient_GetSetRemove(t *testing.T) {
	ctx := context.Background()
	client := openBolt(t, newTestClock(), 0)

	if _, err := client.Get(ctx, "missing"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss, got %v", err)
	}

	if err := client.Set(ctx, "k", []byte("value"), time.Minute); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}
	got, err := client.Get(ctx, "k")
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if string(got) != "value" {
		t.Errorf("expected value, got %q", got)
	}

	if err := client.Remove(ctx, "k"); err != nil {
		t.Fatalf("unexpected remove error: %v", err)
	}
	if _, err := client.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Errorf("expected ErrMiss after remove, got %v", err)
	}
}

func TestBoltClient_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	client := openBolt(t, clock, 0)

	_ = client.Set(ctx, "short", []byte("a"), 5*time.Second)
	_ = client.Set(ctx, "forever", []byte("b"), 0)

	clock.Advance(5 * time.Second)

	if _, err := client.Get(ctx, "short"); !errors.Is(err, ErrMiss) {
		t.Errorf("expected expired entry to be a miss, got %v", err)
	}
	if _, err := client.Get(ctx, "forever"); err != nil {
		t.Errorf("expected entry without ttl to live, got %v", err)
	}
}

func TestBoltClient_DefaultTTL(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	client := openBolt(t, clock, time.Minute)

	_ = client.Set(ctx, "k", []byte("v"), 0)
	clock.Advance(time.Minute)

	if _, err := client.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Errorf("expected default ttl to apply, got %v", err)
	}
}

func TestBoltClient_Purge(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	client := openBolt(t, clock, 0)

	_ = client.Set(ctx, "a", []byte("1"), time.Second)
	_ = client.Set(ctx, "b", []byte("2"), time.Second)
	_ = client.Set(ctx, "c", []byte("3"), time.Hour)

	clock.Advance(2 * time.Second)

	removed, err := client.Purge(ctx)
	if err != nil {
		t.Fatalf("unexpected purge error: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 purged entries, got %d", removed)
	}
	if _, err := client.Get(ctx, "c"); err != nil {
		t.Errorf("expected live entry to survive purge, got %v", err)
	}
}

func TestBoltClient_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	path := filepath.Join(t.TempDir(), "cache.bbolt")

	first, err := OpenBolt(path, BoltOptions{Now: clock.Now})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = first.Set(ctx, "k", []byte("v"), time.Hour)
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := OpenBolt(path, BoltOptions{Now: clock.Now})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	got, err := second.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Errorf("expected persisted value, got %q, %v", got, err)
	}
}
