package blob

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func mustFSStore(t *testing.T) *FSStore {
	t.Helper()
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore() failed: %v", err)
	}
	return store
}

func TestPutCreatesNestedDirectories(t *testing.T) {
	store := mustFSStore(t)

	key := "backups/2026-08-24/2026-08-24_03-00-00_full.json.gz"
	data := []byte("archive bytes")
	if err := store.Put(key, data, "application/gzip", map[string]string{"environment": "test"}); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(store.Root, filepath.FromSlash(key)))
	if err != nil {
		t.Fatalf("reading written blob: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("stored bytes differ from input")
	}
}

func TestListFiltersByPrefix(t *testing.T) {
	store := mustFSStore(t)

	keys := []string{
		"backups/2026-08-23/a.json.gz",
		"backups/2026-08-24/b.json.gz",
		"other/c.json.gz",
	}
	for _, key := range keys {
		if err := store.Put(key, []byte("x"), "application/gzip", nil); err != nil {
			t.Fatalf("Put(%s) failed: %v", key, err)
		}
	}

	handles, err := store.List("backups/")
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(handles) != 2 {
		t.Fatalf("List() returned %d handles, want 2", len(handles))
	}
	for _, h := range handles {
		if h.Key == "other/c.json.gz" {
			t.Errorf("List(backups/) returned key outside prefix: %s", h.Key)
		}
		if h.SizeBytes != 1 {
			t.Errorf("handle %s SizeBytes = %d, want 1", h.Key, h.SizeBytes)
		}
		if h.LastModified.IsZero() {
			t.Errorf("handle %s has zero LastModified", h.Key)
		}
	}
}

func TestDeleteBatchRemovesAllKeys(t *testing.T) {
	store := mustFSStore(t)

	keys := []string{"backups/a.gz", "backups/b.gz"}
	for _, key := range keys {
		if err := store.Put(key, []byte("x"), "application/gzip", nil); err != nil {
			t.Fatalf("Put(%s) failed: %v", key, err)
		}
	}

	if err := store.DeleteBatch(keys); err != nil {
		t.Fatalf("DeleteBatch() failed: %v", err)
	}

	handles, err := store.List("backups/")
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(handles) != 0 {
		t.Errorf("List() after delete returned %d handles, want 0", len(handles))
	}
}

func TestDeleteBatchMissingKeyIsStorageError(t *testing.T) {
	store := mustFSStore(t)

	err := store.DeleteBatch([]string{"backups/missing.gz"})
	var serr *StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("DeleteBatch(missing) error = %v, want *StorageError", err)
	}
	if serr.Op != "delete" {
		t.Errorf("StorageError.Op = %q, want delete", serr.Op)
	}
}
