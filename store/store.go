package store

import (
	"context"

	"github.com/goliatone/go-profile-cache/document"
	"github.com/goliatone/go-profile-cache/internal/storeinfra"
)

var (
	ErrNotFound    = storeinfra.ErrNotFound
	ErrDuplicateID = storeinfra.ErrDuplicateID
)

// Store is the document store client.
type Store interface {
	// Query returns the documents matching every condition of filter.
	Query(ctx context.Context, filter Filter, opts QueryOptions) ([]document.Document, error)
	// Add persists doc and returns its id.
	Add(ctx context.Context, doc document.Document) (string, error)
	// List returns documents by id. Missing ids are skipped, so the result may
	// be shorter than opts.Keys and callers must match results by id.
	List(ctx context.Context, opts ListOptions) ([]document.Document, error)
	// Update replaces an existing document. ErrNotFound when absent.
	Update(ctx context.Context, doc document.Document) error
}

// QueryOptions tunes Query. A zero Limit means unlimited.
type QueryOptions struct {
	Limit int
}

// ListOptions selects documents by id. Without Keys every document is listed.
type ListOptions struct {
	Keys  []string
	Limit int
}

type backend interface {
	Query(ctx context.Context, conds []storeinfra.Condition, limit int) ([]document.Document, error)
	Add(ctx context.Context, doc document.Document) (string, error)
	List(ctx context.Context, keys []string, limit int) ([]document.Document, error)
	Update(ctx context.Context, doc document.Document) error
}

var _ SQLStore = (*client)(nil)

// client adapts a backend to Store.
type client struct {
	backend backend
	closer  func() error
}

// NewMemoryStore returns a Store holding documents in process.
func NewMemoryStore() Store {
	return &client{backend: storeinfra.NewMemoryStore()}
}

// SQLStore is a Store backed by a SQL database. Close releases the pool.
type SQLStore interface {
	Store
	Close() error
}

// OpenSQL opens a sqlite3 or postgres backed Store and creates its table.
func OpenSQL(ctx context.Context, driver, dsn string) (SQLStore, error) {
	s, err := storeinfra.OpenSQL(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	return &client{backend: s, closer: s.Close}, nil
}

func (c *client) Query(ctx context.Context, filter Filter, opts QueryOptions) ([]document.Document, error) {
	return c.backend.Query(ctx, filter.toInternal(), opts.Limit)
}

func (c *client) Add(ctx context.Context, doc document.Document) (string, error) {
	return c.backend.Add(ctx, doc)
}

func (c *client) List(ctx context.Context, opts ListOptions) ([]document.Document, error) {
	return c.backend.List(ctx, opts.Keys, opts.Limit)
}

func (c *client) Update(ctx context.Context, doc document.Document) error {
	return c.backend.Update(ctx, doc)
}

func (c *client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}
