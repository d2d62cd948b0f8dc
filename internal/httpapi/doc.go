// Package httpapi exposes the profile operations as a JSON API on a chi
// router. Every request gets its own domain effects, so batching loaders never
// share state across requests.
package httpapi
