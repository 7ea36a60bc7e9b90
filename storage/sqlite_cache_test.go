package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"fintrack/core/storage"
)

func TestSQLiteCache_GetMissing(t *testing.T) {
	cache, err := storage.OpenSQLiteCache(context.Background(), storage.MemoryPath)
	if err != nil {
		t.Fatalf("OpenSQLiteCache failed: %v", err)
	}
	defer cache.Close()

	_, ok, err := cache.Get("finance:anon:goals")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("Expected missing key")
	}
}

func TestSQLiteCache_SetOverwrites(t *testing.T) {
	cache, err := storage.OpenSQLiteCache(context.Background(), storage.MemoryPath)
	if err != nil {
		t.Fatalf("OpenSQLiteCache failed: %v", err)
	}
	defer cache.Close()

	if err := cache.Set("k", "first"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := cache.Set("k", "second"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, ok, err := cache.Get("k")
	if err != nil || !ok || value != "second" {
		t.Errorf("Expected second, got %q (present=%v, err=%v)", value, ok, err)
	}
}

func TestSQLiteCache_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.db")
	ctx := context.Background()

	cache, err := storage.OpenSQLiteCache(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLiteCache failed: %v", err)
	}
	if err := cache.Set("finance:user:u1:transactions", `[{"id":"t1"}]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := storage.OpenSQLiteCache(ctx, path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close()

	value, ok, err := reopened.Get("finance:user:u1:transactions")
	if err != nil || !ok || value != `[{"id":"t1"}]` {
		t.Errorf("Expected persisted value, got %q (present=%v, err=%v)", value, ok, err)
	}
}
