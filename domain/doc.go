// Package domain implements the user onboarding and profile operations.
//
// Every operation receives its collaborators through an Effects value built
// per request, validates its input before any I/O, and returns errors from
// the taxonomy in errors.go: validation, conflict, not found or upstream
// failure. Handlers can pass any returned error through ToTypedError to get
// the HTTP code and text code.
package domain
