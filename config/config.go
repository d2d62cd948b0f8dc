// Package config loads the application configuration from defaults, an
// optional YAML file and PROFILE_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/spf13/viper"

	"github.com/goliatone/go-profile-cache/cache"
	"github.com/goliatone/go-profile-cache/domain"
	"github.com/goliatone/go-profile-cache/loader"
	"github.com/goliatone/go-profile-cache/logging"
	"github.com/goliatone/go-profile-cache/redact"
)

// EnvPrefix prefixes every environment override, e.g. PROFILE_LOGGING_LEVEL.
const EnvPrefix = "PROFILE"

// Modes.
const (
	ModeDevelopment = "development"
	ModeTest        = "test"
	ModeStaging     = "staging"
	ModeProduction  = "production"
)

type Config struct {
	Mode    string        `mapstructure:"mode"`
	Logging LoggingConfig `mapstructure:"logging"`
	Store   StoreConfig   `mapstructure:"store"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Loader  LoaderConfig  `mapstructure:"loader"`
	Tally   TallyConfig   `mapstructure:"tally"`
	Redact  RedactConfig  `mapstructure:"redact"`
	HTTP    HTTPConfig    `mapstructure:"http"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type StoreConfig struct {
	// Driver is memory, sqlite3 or postgres.
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type CacheConfig struct {
	Backend            string        `mapstructure:"backend"`
	Path               string        `mapstructure:"path"`
	Capacity           int           `mapstructure:"capacity"`
	Shards             int           `mapstructure:"shards"`
	TTL                time.Duration `mapstructure:"ttl"`
	EvictionPercentage int           `mapstructure:"eviction_percentage"`
	EvictionInterval   time.Duration `mapstructure:"eviction_interval"`
	// MaxKeyLength hashes longer cache keys. Zero keeps keys as they are.
	MaxKeyLength int `mapstructure:"max_key_length"`
	// StoreTTL enables read-through caching of store queries. The key
	// registry lives in process, so only enable it when a single process
	// writes to the store.
	StoreTTL time.Duration `mapstructure:"store_ttl"`
}

type LoaderConfig struct {
	Wait            time.Duration `mapstructure:"wait"`
	BatchCapacity   int           `mapstructure:"batch_capacity"`
	RangePartitions []string      `mapstructure:"range_partitions"`
}

type TallyConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type RedactConfig struct {
	Patterns []string `mapstructure:"patterns"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// StoreDriverMemory selects the in-process store.
const StoreDriverMemory = "memory"

func setDefaults(v *viper.Viper) {
	c := cache.DefaultConfig()

	v.SetDefault("mode", ModeProduction)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", logging.FormatJSON)
	v.SetDefault("store.driver", StoreDriverMemory)
	v.SetDefault("store.dsn", "")
	v.SetDefault("cache.backend", cache.BackendMemory)
	v.SetDefault("cache.path", "")
	v.SetDefault("cache.capacity", c.Capacity)
	v.SetDefault("cache.shards", c.NumShards)
	v.SetDefault("cache.ttl", c.TTL)
	v.SetDefault("cache.eviction_percentage", c.EvictionPercentage)
	v.SetDefault("cache.eviction_interval", time.Duration(0))
	v.SetDefault("cache.max_key_length", 0)
	v.SetDefault("cache.store_ttl", time.Duration(0))
	v.SetDefault("loader.wait", time.Millisecond)
	v.SetDefault("loader.batch_capacity", 100)
	v.SetDefault("loader.range_partitions", []string{loader.FieldFavoriteColor})
	v.SetDefault("tally.ttl", domain.DefaultTallyTTL)
	v.SetDefault("redact.patterns", redact.DefaultPatterns)
	v.SetDefault("http.addr", ":8080")
}

// applyModeDefaults lowers the defaults for mode. Values from the file or
// the environment still win.
func applyModeDefaults(v *viper.Viper, mode string) {
	switch mode {
	case ModeDevelopment:
		v.SetDefault("logging.level", "debug")
		v.SetDefault("logging.format", logging.FormatConsole)
	case ModeTest:
		v.SetDefault("logging.level", logging.LevelOff)
	}
}

// Load reads the configuration. path may be empty, in which case only
// defaults and environment variables apply.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	applyModeDefaults(v, strings.ToLower(v.GetString("mode")))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	cfg.Mode = strings.ToLower(cfg.Mode)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the built-in defaults, ignoring the environment.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Mode, validation.Required, validation.In(ModeDevelopment, ModeTest, ModeStaging, ModeProduction)),
		validation.Field(&c.Logging),
		validation.Field(&c.Store),
		validation.Field(&c.Cache),
		validation.Field(&c.Loader),
		validation.Field(&c.Tally),
		validation.Field(&c.Redact),
		validation.Field(&c.HTTP),
	)
	if err != nil {
		return goerrors.FromOzzoValidation(err, "invalid configuration").
			WithTextCode("INVALID_CONFIG")
	}
	return nil
}

func (c LoggingConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.By(func(v any) error {
			if strings.EqualFold(c.Level, logging.LevelOff) {
				return nil
			}
			_, err := logging.ParseLevel(c.Level)
			return err
		})),
		validation.Field(&c.Format, validation.In(logging.FormatJSON, logging.FormatConsole)),
	)
}

func (c StoreConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Driver, validation.Required, validation.In(StoreDriverMemory, "sqlite3", "sqlite", "postgres", "postgresql")),
		validation.Field(&c.DSN, validation.When(c.Driver != StoreDriverMemory, validation.Required)),
	)
}

func (c CacheConfig) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required, validation.In(cache.BackendMemory, cache.BackendBolt)),
		validation.Field(&c.MaxKeyLength, validation.Min(0)),
		validation.Field(&c.StoreTTL, validation.Min(time.Duration(0))),
	)
	if err != nil {
		return err
	}
	if err := c.ToCache().Validate(); err != nil {
		var ce *cache.ConfigError
		if errors.As(err, &ce) {
			return validation.Errors{cacheFieldNames[ce.Field]: errors.New(ce.Message)}
		}
		return err
	}
	return nil
}

var cacheFieldNames = map[string]string{
	"Backend":            "backend",
	"Path":               "path",
	"Capacity":           "capacity",
	"NumShards":          "shards",
	"TTL":                "ttl",
	"EvictionPercentage": "eviction_percentage",
	"EvictionInterval":   "eviction_interval",
}

func (c LoaderConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Wait, validation.Min(time.Duration(0))),
		validation.Field(&c.BatchCapacity, validation.Min(0)),
	)
}

func (c TallyConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.TTL, validation.Min(time.Duration(0))),
	)
}

func (c RedactConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Patterns, validation.By(func(any) error {
			_, err := redact.New(c.Patterns...)
			return err
		})),
	)
}

func (c HTTPConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required),
	)
}

// IsDevelopment reports whether redaction and production defaults are off.
func (c Config) IsDevelopment() bool {
	return c.Mode == ModeDevelopment
}

// ToLogging maps the logging section to logging.Config.
func (c Config) ToLogging() logging.Config {
	return logging.Config{
		Level:       c.Logging.Level,
		Format:      c.Logging.Format,
		Development: c.IsDevelopment(),
		Patterns:    c.Redact.Patterns,
	}
}

// ToCache maps the cache section to cache.Config.
func (c CacheConfig) ToCache() cache.Config {
	return cache.Config{
		Backend:            c.Backend,
		Path:               c.Path,
		Capacity:           c.Capacity,
		NumShards:          c.Shards,
		TTL:                c.TTL,
		EvictionPercentage: c.EvictionPercentage,
		EvictionInterval:   c.EvictionInterval,
	}
}

// ToLoader maps the loader section to loader.Config.
func (c LoaderConfig) ToLoader() loader.Config {
	return loader.Config{
		Wait:            c.Wait,
		BatchCapacity:   c.BatchCapacity,
		RangePartitions: c.RangePartitions,
	}
}
