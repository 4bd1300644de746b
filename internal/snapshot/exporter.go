package snapshot

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/classvault/classvault/internal/db"
	"github.com/classvault/classvault/internal/registry"
)

// Exporter reads a full snapshot of every registered table. The whole
// document is built in memory before anything is written, so any table read
// failure fails the export with nothing uploaded.
type Exporter struct {
	DB          *sql.DB
	Registry    *registry.Registry
	Environment string
	Log         *slog.Logger

	// Now is the clock; tests override it. Nil means time.Now.
	Now func() time.Time
}

// Export reads all registered tables in forward dependency order inside a
// single read transaction, so the snapshot is one consistent view even while
// other clients write. Tables declared as owned children are inlined onto
// their parent rows instead of appearing at the top level.
func (e *Exporter) Export() (*Document, error) {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}

	tx, err := e.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning export transaction: %w", err)
	}
	defer tx.Rollback()

	data := make(map[string][]db.Row)
	var counts []TableCount
	total := 0

	for _, spec := range e.Registry.Ascending() {
		if e.Registry.IsChild(spec.Name) {
			// Child rows are read via the parent's ChildSpec below; count
			// them there so the ordering of counts follows the registry.
			continue
		}

		rows, err := db.ReadAllRows(tx, spec.Name)
		if err != nil {
			return nil, fmt.Errorf("exporting table %s: %w", spec.Name, err)
		}

		counts = append(counts, TableCount{Name: spec.Name, Count: len(rows)})
		total += len(rows)

		for _, child := range spec.Children {
			childRows, err := db.ReadAllRows(tx, child.Table)
			if err != nil {
				return nil, fmt.Errorf("exporting child table %s: %w", child.Table, err)
			}

			grouped := make(map[any][]db.Row, len(rows))
			for _, cr := range childRows {
				grouped[cr[child.ForeignKey]] = append(grouped[cr[child.ForeignKey]], cr)
			}
			for _, parent := range rows {
				nested := grouped[parent["id"]]
				if nested == nil {
					nested = []db.Row{}
				}
				parent[child.Field] = nested
			}

			counts = append(counts, TableCount{Name: child.Table, Count: len(childRows)})
			total += len(childRows)
		}

		data[spec.Name] = rows
		if e.Log != nil {
			e.Log.Debug("exported table", "table", spec.Name, "rows", len(rows))
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing export transaction: %w", err)
	}

	checksum, err := Checksum(data)
	if err != nil {
		return nil, err
	}

	return &Document{
		Metadata: Metadata{
			SnapshotID:    uuid.NewString(),
			FormatVersion: FormatVersion,
			CreatedAt:     now().UTC(),
			Environment:   e.Environment,
			TableCounts:   counts,
			TotalRecords:  total,
			Checksum:      checksum,
		},
		Data: data,
	}, nil
}
