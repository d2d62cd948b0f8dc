package cacheinfra

import (
	"context"
	"encoding/binary"
	"time"

	bolt "go.etcd.io/bbolt"
)

// BoltOptions configures OpenBolt.
type BoltOptions struct {
	// Bucket is the name of the Bolt bucket to use. Default: "cache".
	Bucket string
	// DefaultTTL is used when Set is called with ttl <= 0. Zero never expires.
	DefaultTTL time.Duration
	// Now overrides the clock used for expiry. Nil uses time.Now.
	Now func() time.Time
}

// BoltClient is a persistent byte cache in a single bbolt file. Entries are
// stored as an 8 byte big endian expiry in unix nanoseconds followed by the
// raw value; an expiry of zero never expires.
type BoltClient struct {
	db         *bolt.DB
	bucket     []byte
	defaultTTL time.Duration
	now        func() time.Time
}

// OpenBolt opens or creates the cache file at path.
func OpenBolt(path string, opts BoltOptions) (*BoltClient, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	bucket := []byte("cache")
	if opts.Bucket != "" {
		bucket = []byte(opts.Bucket)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &BoltClient{db: db, bucket: bucket, defaultTTL: opts.DefaultTTL, now: now}, nil
}

// Close closes the underlying database.
func (b *BoltClient) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Get returns the value stored under key, or ErrMiss when absent or expired.
func (b *BoltClient) Get(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(b.bucket).Get([]byte(key))
		if len(v) < 8 {
			return ErrMiss
		}
		expiresAt := int64(binary.BigEndian.Uint64(v[:8]))
		if expiresAt > 0 && b.now().UnixNano() >= expiresAt {
			return ErrMiss
		}
		out = append([]byte(nil), v[8:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Set stores value with an absolute expiry of now+ttl.
func (b *BoltClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = b.defaultTTL
	}
	expiresAt := int64(0)
	if ttl > 0 {
		expiresAt = b.now().Add(ttl).UnixNano()
	}

	buf := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(buf[:8], uint64(expiresAt))
	copy(buf[8:], value)

	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).Put([]byte(key), buf)
	})
}

// Remove deletes key.
func (b *BoltClient) Remove(ctx context.Context, key string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).Delete([]byte(key))
	})
}

// Purge deletes every expired entry and reports how many were removed.
func (b *BoltClient) Purge(ctx context.Context) (int, error) {
	removed := 0
	now := b.now().UnixNano()
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		var expired [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			if len(v) < 8 {
				return nil
			}
			expiresAt := int64(binary.BigEndian.Uint64(v[:8]))
			if expiresAt > 0 && now >= expiresAt {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range expired {
			if err := bucket.Delete(k); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}
