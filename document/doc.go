// Package document stamps identity and audit metadata onto records before and
// after they are persisted.
//
// # Overview
//
// A Document is a typed envelope (id, kind, timestamps, authorship) plus an
// explicit side map of extra fields. The JSON form is flat, so a stored record
// looks like:
//
//	{"_id": "...", "type": "user", "createdAt": "...", "updatedAt": "...", "email": "..."}
//
// A Transformer applies one of three modes:
//
//   - Create: assigns an id when unset, stamps createdAt (unless already present),
//     updatedAt, kind and authorship, then validates.
//   - Update: refreshes updatedAt and validates. Never touches id or createdAt.
//   - Read: validates only. Used when loading from the store.
//
// Validation runs the base envelope rules and then the Schema registered for the
// document kind. Schemas are built with ozzo-validation and failures surface as
// go-errors validation errors carrying one FieldError per invalid field.
//
// # Determinism
//
// Time and id generation are injected through Clock and IDGenerator so tests
// can pin both:
//
//	t := document.NewTransformer(
//		document.WithClock(fixedClock),
//		document.WithIDGenerator(sequentialIDs),
//		document.WithSchema(document.KindUser, userSchema),
//	)
package document
