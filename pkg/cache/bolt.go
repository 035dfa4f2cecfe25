package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// BoltFileName is the database file [Open] creates inside the cache directory.
const BoltFileName = "cache.db"

const boltBucket = "entries"

// BoltCache stores entries in a single bbolt database file.
//
// bbolt holds an exclusive file lock, so only one process can open the
// database at a time. Open fails after a short timeout when it is locked.
type BoltCache struct {
	db   *bolt.DB
	path string
}

// NewBoltCache opens or creates the database at path.
func NewBoltCache(path string) (*BoltCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt cache %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &BoltCache{db: db, path: path}, nil
}

// Path returns the database file path.
func (c *BoltCache) Path() string { return c.path }

// Get retrieves a value from the cache. Expired entries are removed lazily.
func (c *BoltCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var raw []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(boltBucket)).Get([]byte(key)); v != nil {
			// v is only valid inside the transaction
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil || raw == nil {
		return nil, false, err
	}

	data, ok := decodeEntry(raw)
	if !ok {
		_ = c.Delete(ctx, key)
		return nil, false, nil
	}
	return data, true, nil
}

// Set stores a value in the cache.
func (c *BoltCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	raw, err := encodeEntry(data, ttl)
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(boltBucket)).Put([]byte(key), raw)
	})
}

// Delete removes a value from the cache.
func (c *BoltCache) Delete(ctx context.Context, key string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(boltBucket)).Delete([]byte(key))
	})
}

// Clear drops every entry by recreating the bucket.
func (c *BoltCache) Clear(ctx context.Context) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(boltBucket)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(boltBucket))
		return err
	})
}

// Close closes the database file.
func (c *BoltCache) Close() error {
	return c.db.Close()
}

var (
	_ Cache   = (*BoltCache)(nil)
	_ Clearer = (*BoltCache)(nil)
)
