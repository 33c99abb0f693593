package db_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"audioutils/pkg/db"
)

func TestDB(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "nested", "db_test.db")

	d, err := db.Init(path)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if d == nil {
		t.Fatal("Init() returned nil DB")
	}
	defer d.Close()

	// migrations are idempotent
	d2, err := db.Init(path)
	if err != nil {
		t.Fatalf("second Init() failed: %v", err)
	}
	d2.Close()
}

func TestPruneCache(t *testing.T) {
	d, err := db.Init(filepath.Join(t.TempDir(), "prune.db"))
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	defer d.Close()

	ctx := context.Background()
	if _, err := d.Exec("INSERT INTO cache (key, value, created_at) VALUES ('old', x'00', '2000-01-01 00:00:00')"); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Exec("INSERT INTO cache (key, value) VALUES ('fresh', x'00')"); err != nil {
		t.Fatal(err)
	}

	n, err := d.PruneCache(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("PruneCache() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("PruneCache() removed %d rows, want 1", n)
	}

	var count int
	if err := d.QueryRow("SELECT count(*) FROM cache").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 remaining row, got %d", count)
	}
}
