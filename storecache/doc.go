// Package storecache decorates a store.Store with read-through caching.
//
// Query and List results are cached under keys derived from the method, the
// document kind and the arguments. Every key handed out is remembered in a
// registry grouped by kind, so a successful Add or Update drops exactly the
// cached reads that could observe the write: those for the written kind and
// those not bound to a kind (List by id, unscoped queries).
//
//	cached := storecache.New(base, readThrough, cache.NewDefaultKeySerializer(),
//		storecache.WithTTL(time.Minute))
//
// Reads can also be grouped under caller-defined tags and dropped together:
//
//	ctx = storecache.WithCacheTags(ctx, "onboarding")
//	docs, err := cached.Query(ctx, filter, store.QueryOptions{})
//	...
//	err = cached.InvalidateTags(ctx, "onboarding")
//
// A write made with a tagged context drops those tags too.
//
// Writes always reach the wrapped store; caching only affects reads.
package storecache
