package blob

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FSStore is a filesystem-backed Store rooted at a directory. Keys map to
// relative paths, so the backups/<date>/ key layout becomes a directory
// tree that is easy to inspect and rsync.
type FSStore struct {
	Root string
}

// NewFSStore creates the root directory if needed and returns the store.
func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, &StorageError{Op: "put", Key: root, Err: err}
	}
	return &FSStore{Root: root}, nil
}

// Put writes the blob under its key. The content type and tags have no
// filesystem representation and are ignored; a cloud-backed Store would
// forward them.
func (s *FSStore) Put(key string, data []byte, contentType string, tags map[string]string) error {
	path := filepath.Join(s.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &StorageError{Op: "put", Key: key, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &StorageError{Op: "put", Key: key, Err: err}
	}
	return nil
}

// List returns a handle for every blob whose key starts with prefix.
// Order is not specified.
func (s *FSStore) List(prefix string) ([]Handle, error) {
	var handles []Handle

	err := filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(s.Root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		handles = append(handles, Handle{
			Key:          key,
			SizeBytes:    info.Size(),
			LastModified: info.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, &StorageError{Op: "list", Key: prefix, Err: err}
	}

	return handles, nil
}

// DeleteBatch removes every named blob. The first failure aborts the batch;
// already-deleted earlier keys stay deleted, matching object-store
// batch-delete semantics where partial failure fails the cleanup.
func (s *FSStore) DeleteBatch(keys []string) error {
	for _, key := range keys {
		path := filepath.Join(s.Root, filepath.FromSlash(key))
		if err := os.Remove(path); err != nil {
			return &StorageError{Op: "delete", Key: key, Err: err}
		}
	}
	return nil
}
