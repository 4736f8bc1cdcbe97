package videocourse

import (
	"context"
	"path/filepath"
	"testing"
)

func TestDBPutGet(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	if _, ok, err := db.Get(ctx, TableModules, "missing"); err != nil || ok {
		t.Fatalf("Expected a clean miss, got ok=%v err=%v", ok, err)
	}

	if err := db.Put(ctx, TableModules, "abc", []byte(`["first"]`)); err != nil {
		t.Fatalf("Failed to put: %v", err)
	}
	if err := db.Put(ctx, TableModules, "abc", []byte(`["second"]`)); err != nil {
		t.Fatalf("Failed to overwrite: %v", err)
	}

	value, ok, err := db.Get(ctx, TableModules, "abc")
	if err != nil || !ok {
		t.Fatalf("Expected a hit, got ok=%v err=%v", ok, err)
	}
	if string(value) != `["second"]` {
		t.Errorf("Expected the latest value, got %s", value)
	}

	if _, ok, _ := db.Get(ctx, TableQuizzes, "abc"); ok {
		t.Error("Expected tables to be independent")
	}

	if err := db.Delete(ctx, TableModules, "abc"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if _, ok, _ := db.Get(ctx, TableModules, "abc"); ok {
		t.Error("Expected a miss after delete")
	}
}

func TestDBPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "cache.db")

	db, err := OpenDB(path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := db.CreateTables(ctx); err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}
	if err := db.Put(ctx, TableTranscripts, "dQw4w9WgXcQ", []byte(`{"title":"x"}`)); err != nil {
		t.Fatalf("Failed to put: %v", err)
	}
	db.Close()

	db, err = OpenDB(path)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer db.Close()
	if err := db.CreateTables(ctx); err != nil {
		t.Fatalf("Failed to create tables on reopen: %v", err)
	}

	value, ok, err := db.Get(ctx, TableTranscripts, "dQw4w9WgXcQ")
	if err != nil || !ok {
		t.Fatalf("Expected the entry to survive a reopen, got ok=%v err=%v", ok, err)
	}
	if string(value) != `{"title":"x"}` {
		t.Errorf("Unexpected value %s", value)
	}
}

func TestDBRejectsUnknownTable(t *testing.T) {
	db := newTestDB(t)

	if err := db.Put(context.Background(), Table("users; DROP TABLE x"), "k", []byte("v")); err == nil {
		t.Error("Expected an error for an unknown table")
	}
}
