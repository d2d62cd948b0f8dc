// Package store defines the document store contract used by the loaders, the
// cached store decorator and the business operations.
//
// A Store answers three reads and two writes over document.Document values:
//
//	docs, err := s.Query(ctx, store.Filter{
//		store.Eq(document.FieldKind, document.KindUser),
//		store.Eq("email", "someone@example.com"),
//	}, store.QueryOptions{Limit: 1})
//
// Filters address fields by their JSON name, envelope fields (_id, type,
// createdAt, ...) and extra fields alike. Two backends are provided:
// NewMemoryStore for tests and local runs, and OpenSQL for sqlite or postgres
// through bun.
package store
