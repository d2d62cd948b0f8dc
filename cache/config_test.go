package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Backend != BackendMemory {
		t.Errorf("expected memory backend, got %q", cfg.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to be valid, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantField string
	}{
		{name: "memory defaults", cfg: DefaultConfig()},
		{name: "memory zero capacity", cfg: Config{Backend: BackendMemory, NumShards: 1, TTL: time.Second, EvictionPercentage: 10}, wantField: "Capacity"},
		{name: "bolt without path", cfg: Config{Backend: BackendBolt}, wantField: "Path"},
		{name: "bolt with path", cfg: Config{Backend: BackendBolt, Path: "cache.db"}},
		{name: "unknown backend", cfg: Config{Backend: "redis"}, wantField: "Backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) || cfgErr.Field != tt.wantField {
				t.Errorf("expected ConfigError on %s, got %v", tt.wantField, err)
			}
		})
	}
}

func TestNewClient_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client, err := NewClient(DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rt := NewReadThrough(client)
	calls := 0
	for i := 0; i < 3; i++ {
		_, _ = GetOrCompute(ctx, rt, "color-tally::red", time.Minute, countingCompute(&calls, tally{Tally: 1}))
	}
	if calls != 1 {
		t.Errorf("expected a single compute against sturdyc, got %d", calls)
	}
}

func TestNewClient_InvalidConfig(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Error("expected error for empty config")
	}
}

func TestOpenBolt_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client, err := OpenBolt(Config{Backend: BackendBolt, Path: filepath.Join(t.TempDir(), "c.bbolt")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	rt := NewReadThrough(client)
	calls := 0
	for i := 0; i < 2; i++ {
		_, _ = GetOrCompute(ctx, rt, "k", time.Minute, countingCompute(&calls, tally{Tally: 1}))
	}
	if calls != 1 {
		t.Errorf("expected a single compute against bolt, got %d", calls)
	}
}
