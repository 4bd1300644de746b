// Package sweeper deletes archives past the retention window.
package sweeper

import (
	"log/slog"
	"sort"
	"time"

	"github.com/classvault/classvault/internal/archive"
	"github.com/classvault/classvault/internal/blob"
)

// maxDeleteBatch is the store-imposed ceiling on keys per delete call.
// Selections larger than this are chunked.
const maxDeleteBatch = 1000

// Result reports what a sweep removed.
type Result struct {
	DeletedCount int      `json:"deleted_count"`
	DeletedKeys  []string `json:"deleted_keys"`
}

// Sweep lists all archives under the backup prefix and deletes those whose
// last-modified time is strictly before now − retentionDays. An empty
// selection returns {0, []} without issuing a delete call. The sweep is
// all-or-nothing: any list or delete failure aborts it.
func Sweep(store blob.Store, retentionDays int, now time.Time, log *slog.Logger) (*Result, error) {
	handles, err := store.List(archive.Prefix)
	if err != nil {
		return nil, err
	}

	cutoff := now.Add(-time.Duration(retentionDays) * 24 * time.Hour)

	var expired []string
	for _, h := range handles {
		if h.LastModified.Before(cutoff) {
			expired = append(expired, h.Key)
		}
	}

	result := &Result{DeletedCount: 0, DeletedKeys: []string{}}
	if len(expired) == 0 {
		return result, nil
	}

	sort.Strings(expired)
	for start := 0; start < len(expired); start += maxDeleteBatch {
		end := start + maxDeleteBatch
		if end > len(expired) {
			end = len(expired)
		}
		if err := store.DeleteBatch(expired[start:end]); err != nil {
			return nil, err
		}
	}

	result.DeletedCount = len(expired)
	result.DeletedKeys = expired
	if log != nil {
		log.Info("swept expired archives", "deleted", len(expired), "cutoff", cutoff)
	}
	return result, nil
}
