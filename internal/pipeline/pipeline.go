// Package pipeline wires the scheduled snapshot flow together:
// export, compress, upload, then retention sweep.
package pipeline

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/classvault/classvault/internal/archive"
	"github.com/classvault/classvault/internal/blob"
	"github.com/classvault/classvault/internal/registry"
	"github.com/classvault/classvault/internal/snapshot"
	"github.com/classvault/classvault/internal/sweeper"
)

// Pipeline holds the collaborators for one snapshot run.
type Pipeline struct {
	DB            *sql.DB
	Registry      *registry.Registry
	Store         blob.Store
	Environment   string
	RetentionDays int
	Log           *slog.Logger

	// Now is the clock; tests override it. Nil means time.Now.
	Now func() time.Time
}

// Result reports one completed snapshot run.
type Result struct {
	Key          string                `json:"key"`
	SnapshotID   string                `json:"snapshot_id"`
	RawBytes     int                   `json:"raw_bytes"`
	SizeBytes    int                   `json:"size_bytes"`
	TotalRecords int                   `json:"total_records"`
	TableCounts  []snapshot.TableCount `json:"table_counts"`
	Swept        *sweeper.Result       `json:"swept"`
}

// Run executes export → compress → upload → sweep. Nothing is uploaded
// unless the full document and compression succeed; a sweep failure after a
// successful upload still fails the run so the scheduler sees it.
func (p *Pipeline) Run() (*Result, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	exporter := &snapshot.Exporter{
		DB:          p.DB,
		Registry:    p.Registry,
		Environment: p.Environment,
		Log:         p.Log,
		Now:         now,
	}

	doc, err := exporter.Export()
	if err != nil {
		return nil, fmt.Errorf("exporting snapshot: %w", err)
	}

	raw, err := doc.Encode()
	if err != nil {
		return nil, err
	}

	compressed, err := archive.Compress(raw)
	if err != nil {
		return nil, err
	}

	key := archive.Key(doc.Metadata.CreatedAt)
	tags := map[string]string{
		"environment": doc.Metadata.Environment,
		"snapshot_id": doc.Metadata.SnapshotID,
	}
	if err := p.Store.Put(key, compressed, archive.ContentType, tags); err != nil {
		return nil, err
	}
	p.Log.Info("uploaded snapshot archive",
		"key", key,
		"records", doc.Metadata.TotalRecords,
		"raw_bytes", len(raw),
		"compressed_bytes", len(compressed),
	)

	swept, err := sweeper.Sweep(p.Store, p.RetentionDays, now(), p.Log)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s uploaded but retention sweep failed: %w", key, err)
	}

	return &Result{
		Key:          key,
		SnapshotID:   doc.Metadata.SnapshotID,
		RawBytes:     len(raw),
		SizeBytes:    len(compressed),
		TotalRecords: doc.Metadata.TotalRecords,
		TableCounts:  doc.Metadata.TableCounts,
		Swept:        swept,
	}, nil
}
