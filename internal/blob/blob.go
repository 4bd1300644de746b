// Package blob abstracts the durable object store archives live in. The
// core consumes exactly three calls — put, list, delete-batch — so swapping
// the filesystem store for a cloud SDK only means implementing Store.
package blob

import (
	"fmt"
	"time"
)

// Handle describes one stored archive.
type Handle struct {
	Key          string    `json:"key"`
	SizeBytes    int64     `json:"size_bytes"`
	LastModified time.Time `json:"last_modified"`
}

// Store is the gateway to the object store. List returns handles in
// unspecified order; callers sort as needed. None of the operations retry:
// failures surface as *StorageError and retry policy belongs to the
// external scheduler.
type Store interface {
	Put(key string, data []byte, contentType string, tags map[string]string) error
	List(prefix string) ([]Handle, error)
	DeleteBatch(keys []string) error
}

// StorageError wraps a failure talking to the object store.
type StorageError struct {
	Op  string // "put", "list", or "delete"
	Key string // key or prefix involved, if any
	Err error
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
