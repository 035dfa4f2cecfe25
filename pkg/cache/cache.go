// Package cache stores byte blobs with a time-to-live.
//
// Backends:
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [BoltCache]: a single bbolt database file
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [NullCache]: caching disabled
//
// Use [Open] to pick a backend from configuration, and a [Keyer] to build
// keys so that all callers agree on the key layout.
package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cache is a key/value store with per-entry expiry.
//
// Get reports a miss with ok=false and a nil error. Expired entries are
// misses. A ttl of 0 in Set means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendBolt  = "bolt"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config selects and configures a backend.
type Config struct {
	Backend   string // file, bolt, redis or none (default file)
	Dir       string // directory for file and bolt backends
	RedisAddr string // host:port for the redis backend
}

// Open creates the backend named by cfg.Backend.
// An empty Dir means [DefaultDir].
func Open(ctx context.Context, cfg Config) (Cache, error) {
	dir := cfg.Dir
	if dir == "" && (cfg.Backend == "" || cfg.Backend == BackendFile || cfg.Backend == BackendBolt) {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	var (
		c   Cache
		err error
	)
	switch cfg.Backend {
	case "", BackendFile:
		c, err = NewFileCache(dir)
	case BackendBolt:
		c, err = NewBoltCache(filepath.Join(dir, BoltFileName))
	case BackendRedis:
		c, err = NewRedisCache(ctx, RedisConfig{Addr: cfg.RedisAddr})
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultDir returns the per-user cache directory, ~/.cache/pkggraph on Linux.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "pkggraph"), nil
}
