package di

import (
	"context"
	"errors"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/goliatone/go-profile-cache/cache"
	"github.com/goliatone/go-profile-cache/config"
	"github.com/goliatone/go-profile-cache/document"
	"github.com/goliatone/go-profile-cache/domain"
	"github.com/goliatone/go-profile-cache/loader"
	"github.com/goliatone/go-profile-cache/logging"
	"github.com/goliatone/go-profile-cache/store"
	"github.com/goliatone/go-profile-cache/storecache"
)

// Container owns the long-lived clients of the service: logger, store, cache
// client, key serializer and document transformer. Request-scoped values are
// built from it with NewEffects.
type Container struct {
	config      config.Config
	logger      *zap.Logger
	store       store.Store
	cachedStore *storecache.CachedStore
	cacheClient cache.Client
	readThrough *cache.ReadThrough
	keys        cache.KeySerializer
	transformer *document.Transformer

	closers []io.Closer
}

// Option overrides a collaborator the container would otherwise build.
type Option func(*options)

type options struct {
	logOutput   io.Writer
	logger      *zap.Logger
	store       store.Store
	cacheClient cache.Client
	docOpts     []document.Option
}

// WithLogOutput sets where the container logger writes. Default: stderr.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.logOutput = w }
}

// WithLogger replaces the configured logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithStore replaces the configured store.
func WithStore(s store.Store) Option {
	return func(o *options) { o.store = s }
}

// WithCacheClient replaces the configured cache client.
func WithCacheClient(c cache.Client) Option {
	return func(o *options) { o.cacheClient = c }
}

// WithDocumentOptions passes clock or id generator overrides to the transformer.
func WithDocumentOptions(opts ...document.Option) Option {
	return func(o *options) { o.docOpts = append(o.docOpts, opts...) }
}

// NewContainer wires every long-lived client from cfg. Clients opened here
// are released by Close, also when construction fails halfway.
func NewContainer(ctx context.Context, cfg config.Config, opts ...Option) (*Container, error) {
	o := &options{logOutput: os.Stderr}
	for _, opt := range opts {
		opt(o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{config: cfg}

	c.logger = o.logger
	if c.logger == nil {
		logger, err := logging.New(cfg.ToLogging(), o.logOutput)
		if err != nil {
			return nil, err
		}
		c.logger = logger
	}

	if err := c.openStore(ctx, o.store); err != nil {
		_ = c.Close()
		return nil, err
	}
	if err := c.openCache(o.cacheClient); err != nil {
		_ = c.Close()
		return nil, err
	}

	c.keys = cache.NewDefaultKeySerializer()
	if cfg.Cache.MaxKeyLength > 0 {
		c.keys = cache.NewHashingKeySerializer(c.keys, cfg.Cache.MaxKeyLength)
	}
	c.readThrough = cache.NewReadThrough(c.cacheClient, cache.WithLogger(c.logger))
	c.transformer = domain.NewTransformer(o.docOpts...)

	if cfg.Cache.StoreTTL > 0 {
		c.cachedStore = storecache.New(c.store, c.readThrough, c.keys,
			storecache.WithTTL(cfg.Cache.StoreTTL),
			storecache.WithLogger(c.logger),
		)
	}

	c.logger.Debug("container ready",
		zap.String("mode", cfg.Mode),
		zap.String("store", cfg.Store.Driver),
		zap.String("cache", cfg.Cache.Backend),
		zap.Bool("storeCache", c.cachedStore != nil),
	)
	return c, nil
}

// NewContainerWithDefaults creates a container from config.Default, with the
// in-memory store and cache.
func NewContainerWithDefaults(ctx context.Context, opts ...Option) (*Container, error) {
	return NewContainer(ctx, config.Default(), opts...)
}

func (c *Container) openStore(ctx context.Context, override store.Store) error {
	if override != nil {
		c.store = override
		return nil
	}
	if c.config.Store.Driver == config.StoreDriverMemory {
		c.store = store.NewMemoryStore()
		return nil
	}
	sqlStore, err := store.OpenSQL(ctx, c.config.Store.Driver, c.config.Store.DSN)
	if err != nil {
		return err
	}
	c.store = sqlStore
	c.closers = append(c.closers, sqlStore)
	return nil
}

func (c *Container) openCache(override cache.Client) error {
	if override != nil {
		c.cacheClient = override
		return nil
	}
	cacheCfg := c.config.Cache.ToCache()
	if cacheCfg.Backend == cache.BackendBolt {
		client, err := cache.OpenBolt(cacheCfg)
		if err != nil {
			return err
		}
		c.cacheClient = client
		c.closers = append(c.closers, client)
		return nil
	}
	client, err := cache.NewClient(cacheCfg)
	if err != nil {
		return err
	}
	c.cacheClient = client
	return nil
}

// Config returns the configuration the container was built from.
func (c *Container) Config() config.Config {
	return c.config
}

func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Store returns the store used by the domain, wrapped in the store cache
// when cache.store_ttl is set.
func (c *Container) Store() store.Store {
	if c.cachedStore != nil {
		return c.cachedStore
	}
	return c.store
}

func (c *Container) CacheClient() cache.Client {
	return c.cacheClient
}

func (c *Container) ReadThrough() *cache.ReadThrough {
	return c.readThrough
}

func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keys
}

func (c *Container) Transformer() *document.Transformer {
	return c.transformer
}

// NewEffects returns the collaborators of one request. Loaders are fresh so
// that memoized results never leak across requests. A nil logger uses the
// container logger.
func (c *Container) NewEffects(logger *zap.Logger) *domain.Effects {
	if logger == nil {
		logger = c.logger
	}
	s := c.Store()
	return &domain.Effects{
		Store:       s,
		Cache:       cache.NewReadThrough(c.cacheClient, cache.WithLogger(logger)),
		Keys:        c.keys,
		Loaders:     loader.NewLoaders(s, c.config.Loader.ToLoader()),
		Transformer: c.transformer,
		Logger:      logger,
		TallyTTL:    c.config.Tally.TTL,
	}
}

// Close releases the store and cache handles and flushes the logger.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	if c.logger != nil {
		_ = c.logger.Sync()
	}
	return errors.Join(errs...)
}
