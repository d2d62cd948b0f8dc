package di

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-profile-cache/config"
	"github.com/goliatone/go-profile-cache/domain"
	"github.com/goliatone/go-profile-cache/storecache"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Mode = config.ModeTest
	cfg.Logging.Level = "off"
	cfg.Loader.Wait = time.Millisecond
	return cfg
}

func newTestContainer(t *testing.T, cfg config.Config) *Container {
	t.Helper()
	container, err := NewContainer(context.Background(), cfg, WithLogOutput(io.Discard))
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Close(); err != nil {
			t.Errorf("Close() failed: %v", err)
		}
	})
	return container
}

func TestNewContainer(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.Capacity = 1000
	cfg.Cache.TTL = 5 * time.Minute

	container := newTestContainer(t, cfg)

	if container.Logger() == nil {
		t.Error("Container should have a non-nil logger")
	}
	if container.Store() == nil {
		t.Error("Container should have a non-nil store")
	}
	if container.CacheClient() == nil {
		t.Error("Container should have a non-nil cache client")
	}
	if container.ReadThrough() == nil {
		t.Error("Container should have a non-nil read-through cache")
	}
	if container.KeySerializer() == nil {
		t.Error("Container should have a non-nil key serializer")
	}
	if container.Transformer() == nil {
		t.Error("Container should have a non-nil transformer")
	}

	stored := container.Config()
	if stored.Cache.Capacity != cfg.Cache.Capacity {
		t.Errorf("Expected capacity %d, got %d", cfg.Cache.Capacity, stored.Cache.Capacity)
	}
	if stored.Cache.TTL != cfg.Cache.TTL {
		t.Errorf("Expected TTL %v, got %v", cfg.Cache.TTL, stored.Cache.TTL)
	}
	if _, ok := container.Store().(*storecache.CachedStore); ok {
		t.Error("store cache should be disabled by default")
	}
}

func TestNewContainerWithDefaults(t *testing.T) {
	container, err := NewContainerWithDefaults(context.Background(), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}
	defer container.Close()

	if got, want := container.Config().Cache.Capacity, config.Default().Cache.Capacity; got != want {
		t.Errorf("Expected default capacity %d, got %d", want, got)
	}
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero capacity", func(c *config.Config) { c.Cache.Capacity = 0 }},
		{"unknown driver", func(c *config.Config) { c.Store.Driver = "mongo" }},
		{"bolt without path", func(c *config.Config) { c.Cache.Backend = "bolt" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			if _, err := NewContainer(context.Background(), cfg); err == nil {
				t.Error("NewContainer() should fail with invalid config")
			}
		})
	}
}

func TestContainerSingletonBehavior(t *testing.T) {
	container := newTestContainer(t, testConfig())

	if container.CacheClient() != container.CacheClient() {
		t.Error("CacheClient() should return the same instance")
	}
	if container.ReadThrough() != container.ReadThrough() {
		t.Error("ReadThrough() should return the same instance")
	}
	if container.KeySerializer() != container.KeySerializer() {
		t.Error("KeySerializer() should return the same instance")
	}
}

func TestKeySerializerIntegration(t *testing.T) {
	container := newTestContainer(t, testConfig())
	keySerializer := container.KeySerializer()

	testCases := []struct {
		name     string
		method   string
		args     []any
		expected string
	}{
		{name: "no args", method: "color-tally", args: []any{}, expected: "color-tally"},
		{name: "color", method: "color-tally", args: []any{domain.Red}, expected: "color-tally::red"},
		{name: "multiple args", method: "List", args: []any{"user", 10, true}, expected: "List::user::10::true"},
		{name: "nil arg", method: "Count", args: []any{nil}, expected: "Count::nil"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if result := keySerializer.SerializeKey(tc.method, tc.args...); result != tc.expected {
				t.Errorf("Expected key %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestNewContainer_HashingKeys(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.MaxKeyLength = 24

	container := newTestContainer(t, cfg)
	key := container.KeySerializer().SerializeKey("List", strings.Repeat("id", 40))
	if !strings.HasPrefix(key, "List::h") {
		t.Errorf("expected hashed key, got %q", key)
	}
}

func TestNewContainer_StoreCache(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.StoreTTL = time.Minute

	container := newTestContainer(t, cfg)
	if _, ok := container.Store().(*storecache.CachedStore); !ok {
		t.Fatalf("expected cached store, got %T", container.Store())
	}
	if container.NewEffects(nil).Store != container.Store() {
		t.Error("effects should use the cached store")
	}
}

func TestNewEffects(t *testing.T) {
	cfg := testConfig()
	cfg.Tally.TTL = 3 * time.Second
	container := newTestContainer(t, cfg)

	first := container.NewEffects(nil)
	second := container.NewEffects(nil)

	if first.Loaders == second.Loaders {
		t.Error("each request should get its own loaders")
	}
	if first.Transformer != second.Transformer {
		t.Error("the transformer should be shared")
	}
	if first.Logger != container.Logger() {
		t.Error("a nil logger should fall back to the container logger")
	}
	if first.TallyTTL != 3*time.Second {
		t.Errorf("expected tally ttl 3s, got %v", first.TallyTTL)
	}
}
