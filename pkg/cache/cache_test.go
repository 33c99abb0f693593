package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"audioutils/pkg/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteCache(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "cache_test.db")
	d, err := db.Init(dbPath)
	require.NoError(t, err)
	defer d.Close()

	c := NewSQLiteCache(d)
	ctx := context.Background()

	val, hit := c.GetCache(ctx, "any-key")
	assert.False(t, hit)
	assert.Nil(t, val)

	require.NoError(t, c.SetCache(ctx, "any-key", []byte("data")))
	val, hit = c.GetCache(ctx, "any-key")
	require.True(t, hit)
	assert.Equal(t, []byte("data"), val)

	// overwrite
	require.NoError(t, c.SetCache(ctx, "any-key", []byte("other")))
	val, _ = c.GetCache(ctx, "any-key")
	assert.Equal(t, []byte("other"), val)
}

func TestSQLiteCache_Prune(t *testing.T) {
	d, err := db.Init(filepath.Join(t.TempDir(), "prune.db"))
	require.NoError(t, err)
	defer d.Close()

	c := NewSQLiteCache(d)
	ctx := context.Background()

	_, err = d.Exec("INSERT INTO cache (key, value, created_at) VALUES ('stale', x'01', '2001-01-01 00:00:00')")
	require.NoError(t, err)
	require.NoError(t, c.SetCache(ctx, "fresh", []byte{2}))

	require.NoError(t, c.Prune(ctx, 0))
	_, hit := c.GetCache(ctx, "stale")
	assert.True(t, hit, "zero ttl must keep entries")

	require.NoError(t, c.Prune(ctx, time.Hour))
	_, hit = c.GetCache(ctx, "stale")
	assert.False(t, hit)
	_, hit = c.GetCache(ctx, "fresh")
	assert.True(t, hit)
}
