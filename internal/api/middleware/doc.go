// Package middleware provides the HTTP middleware of the API: trace IDs
// with request-scoped loggers, session resolution and per-client rate
// limiting.
package middleware
