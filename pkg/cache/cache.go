package cache

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"audioutils/pkg/db"
)

// Cacher defines the caching interface.
type Cacher interface {
	GetCache(ctx context.Context, key string) ([]byte, bool)
	SetCache(ctx context.Context, key string, val []byte) error
}

// SQLiteCache implements Cacher on the cache table of pkg/db.
type SQLiteCache struct {
	db *db.DB
}

// NewSQLiteCache creates a new cache.
func NewSQLiteCache(d *db.DB) *SQLiteCache {
	return &SQLiteCache{db: d}
}

// GetCache returns the stored value for key. Lookup errors count as a miss.
func (c *SQLiteCache) GetCache(ctx context.Context, key string) ([]byte, bool) {
	var val []byte
	err := c.db.QueryRowContext(ctx, "SELECT value FROM cache WHERE key = ?", key).Scan(&val)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("cache: lookup failed", "key", key, "error", err)
		}
		return nil, false
	}
	return val, true
}

// SetCache stores val under key, replacing any previous value and its age.
func (c *SQLiteCache) SetCache(ctx context.Context, key string, val []byte) error {
	_, err := c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO cache (key, value, created_at) VALUES (?, ?, CURRENT_TIMESTAMP)",
		key, val)
	return err
}

// Prune drops entries older than ttl. A zero ttl keeps everything.
func (c *SQLiteCache) Prune(ctx context.Context, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	n, err := c.db.PruneCache(ctx, ttl)
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Debug("cache: pruned stale entries", "count", n, "ttl", ttl)
	}
	return nil
}
