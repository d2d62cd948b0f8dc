// Package loader coalesces individual lookups into batched store reads.
//
// A Loader collects the keys requested within a short window, issues a single
// store call for the whole batch and fans the results back out in request
// order. Results are memoized for the lifetime of the Loader, so loaders are
// created per request (see Loaders) and never shared between requests.
//
// Two flavours sit on top of the generic Loader:
//
//   - NewByID resolves documents by id. An id with no document resolves to nil.
//   - NewByPartition resolves every document sharing a field value. Ordered
//     partitions are fetched with one range query spanning the smallest and
//     largest key, the others with a membership query.
//
// A failing store call fails every key of the batch with the same error.
package loader
