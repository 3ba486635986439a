// Package cache stores grown trees and rendered artifacts between runs.
//
// Growing a tree is deterministic: the same axiom, rules, iteration count,
// angle and step always yield the same segments. Expansion is exponential
// in the iteration count, so the pipeline caches the serialized tree under
// a key derived from those inputs and reuses it for every later request,
// pruning included.
//
// # Backends
//
//   - [NullCache]: never stores anything (--no-cache, tests)
//   - [FileCache]: JSON files under ~/.cache/arbor (CLI)
//   - [MemoryCache]: process-local map with expiry (single server instance)
//   - [RedisCache]: shared cache for multi-instance servers
//
// # Keys
//
// A [Keyer] derives keys. [DefaultKeyer] hashes the inputs with SHA-256;
// [ScopedKeyer] adds a namespace prefix.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
//
// Get reports a miss with (nil, false, nil); errors are reserved for backend
// failures. A ttl of zero or less stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default TTLs.
const (
	// TreeTTL bounds how long a grown tree is kept. Trees never go stale,
	// the limit only caps disk and memory usage.
	TreeTTL = 7 * 24 * time.Hour

	// ArtifactTTL applies to rendered outputs (DOT, SVG, text).
	ArtifactTTL = 24 * time.Hour
)
