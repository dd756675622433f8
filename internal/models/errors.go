package models

import "errors"

// Error taxonomy. Only ErrInvalidQuery and ErrNotFound cross the HTTP
// boundary; the other two are absorbed with deterministic fallbacks.
var (
	// ErrInvalidQuery indicates bad or missing caller input.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrUpstreamUnavailable covers catalog store or completion service
	// transport failures, timeouts, bad statuses and unparseable bodies.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrCacheUnavailable is never surfaced; the cache layer degrades to
	// always-miss when the store misbehaves.
	ErrCacheUnavailable = errors.New("cache unavailable")

	// ErrNotFound indicates a lookup by identifier matched no record.
	ErrNotFound = errors.New("not found")
)
