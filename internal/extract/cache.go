package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/unibrain/backend/internal/models"
)

var cacheBucket = []byte("extracted")

// Cache memoizes extraction results by format and content hash in a bbolt
// file. Only successful results are stored.
type Cache struct {
	path string
	db   *bolt.DB
}

// OpenCache opens (or creates) the cache database at path.
func OpenCache(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cacheBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &Cache{path: path, db: db}, nil
}

// CacheKey builds the lookup key for a blob.
func CacheKey(format models.Format, data []byte) string {
	sum := sha256.Sum256(data)
	return string(format) + ":" + hex.EncodeToString(sum[:])
}

// Get returns the cached text for key.
func (c *Cache) Get(key string) (string, bool) {
	var (
		text  string
		found bool
	)
	c.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(cacheBucket).Get([]byte(key)); v != nil {
			text = string(v)
			found = true
		}
		return nil
	})
	return text, found
}

// Put stores text under key.
func (c *Cache) Put(key, text string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cacheBucket).Put([]byte(key), []byte(text))
	})
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	n := 0
	c.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(cacheBucket).Stats().KeyN
		return nil
	})
	return n
}

// Clear removes all cached results.
func (c *Cache) Clear() error {
	return c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(cacheBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(cacheBucket)
		return err
	})
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// CachedExtractor consults the cache before delegating to the wrapped
// extractor.
type CachedExtractor struct {
	next   Extractor
	cache  *Cache
	logger *zap.Logger
}

// NewCachedExtractor wraps next with cache.
func NewCachedExtractor(next Extractor, cache *Cache, logger *zap.Logger) *CachedExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedExtractor{next: next, cache: cache, logger: logger}
}

func (e *CachedExtractor) Name() string          { return e.next.Name() }
func (e *CachedExtractor) Format() models.Format { return e.next.Format() }

func (e *CachedExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	key := CacheKey(e.next.Format(), data)
	if text, ok := e.cache.Get(key); ok {
		return text, nil
	}

	text, err := e.next.Extract(ctx, data)
	if err != nil {
		return "", err
	}

	if err := e.cache.Put(key, text); err != nil {
		e.logger.Warn("cache write failed", zap.String("format", string(e.next.Format())), zap.Error(err))
	}
	return text, nil
}
