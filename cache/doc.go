// Package cache provides the cache-aside layer: a byte-level Client contract,
// the ReadThrough wrapper with its generic GetOrCompute helper, and key
// serialization.
//
// # Overview
//
//   - Client: Get/Set/Remove over bytes. Absent and expired keys both yield ErrMiss.
//   - ReadThrough: encodes values with a Codec (msgpack by default) and
//     swallows cache failures, so a broken cache slows requests down but never
//     fails them.
//   - KeySerializer: builds stable keys from a method name and arguments.
//
// # Basic Usage
//
//	client, err := cache.NewClient(cache.DefaultConfig())
//	rt := cache.NewReadThrough(client, cache.WithLogger(logger))
//
//	key := cache.NewDefaultKeySerializer().SerializeKey("color-tally", color)
//	tally, err := cache.GetOrCompute(ctx, rt, key, 5*time.Second, func(ctx context.Context) (Tally, error) {
//		return computeTally(ctx, color)
//	})
//
// Writes that change the inputs of a cached value call rt.Remove with the
// affected keys rather than waiting for the TTL.
//
// # Backends
//
// NewClient returns the in-process sturdyc client. OpenBolt returns a client
// persisted in a bbolt file, useful for the CLI where the process is short
// lived. Both honour per-entry TTLs; the sturdyc client caps them at the
// configured TTL.
//
// # Key Serialization
//
// The default serializer walks arguments with reflection:
//
//   - Stringers and time.Time use their string form (time in UTC)
//   - Basic types: direct string representation
//   - Slices/arrays: recursive serialization of elements
//   - Maps: entries sorted for deterministic output
//   - Structs: exported fields with name:value pairs
//   - Functions and channels: %p, stable within a single process only
//
// NewHashingKeySerializer compacts long keys with xxhash while keeping the
// method as a readable prefix.
package cache
