// Package restore validates snapshot archives and loads them back into a
// database in foreign-key-safe order: wipe every registered table in reverse
// dependency order, then reinsert the snapshot's rows in forward order.
package restore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/classvault/classvault/internal/db"
	"github.com/classvault/classvault/internal/registry"
	"github.com/classvault/classvault/internal/snapshot"
)

// InvalidFormatError means the archive is structurally unusable. It is
// always raised before any mutation.
type InvalidFormatError struct {
	Reason string
}

func (e *InvalidFormatError) Error() string {
	return "invalid archive format: " + e.Reason
}

// ChecksumMismatchError means the table data does not hash to the checksum
// recorded in the metadata. Restoring such an archive requires an explicit
// override.
type ChecksumMismatchError struct {
	Want string
	Got  string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("archive checksum mismatch: metadata says %s, data hashes to %s", e.Want, e.Got)
}

// PartialRestoreError means a table's reinsert failed mid-restore. Earlier
// tables stay inserted; the database is left partially restored and needs
// manual remediation.
type PartialRestoreError struct {
	Table string
	Err   error
}

func (e *PartialRestoreError) Error() string {
	return fmt.Sprintf("restore failed while reinserting table %s (database left partially restored): %v", e.Table, e.Err)
}

func (e *PartialRestoreError) Unwrap() error { return e.Err }

// Database is the narrow mutation surface the engine needs. *db.Conn is the
// production implementation; tests use a recording double to assert call
// order.
type Database interface {
	WipeTable(table string) error
	InsertRows(table string, rows []db.Row) (inserted, skipped int, err error)
}

// Decode parses raw archive JSON into a Document. It fails with
// *InvalidFormatError if the payload is not JSON or the metadata or data
// sections are absent.
func Decode(raw []byte) (*snapshot.Document, error) {
	var probe struct {
		Metadata *snapshot.Metadata  `json:"metadata"`
		Data     map[string][]db.Row `json:"data"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, &InvalidFormatError{Reason: err.Error()}
	}
	if probe.Metadata == nil {
		return nil, &InvalidFormatError{Reason: "missing metadata section"}
	}
	if probe.Data == nil {
		return nil, &InvalidFormatError{Reason: "missing data section"}
	}
	return &snapshot.Document{Metadata: *probe.Metadata, Data: probe.Data}, nil
}

// VerifyChecksum recomputes the checksum over the document's table data and
// compares it to the metadata. JSON encoding is key-sorted on both sides, so
// a faithful archive round-trips to the same digest.
func VerifyChecksum(doc *snapshot.Document) error {
	got, err := snapshot.Checksum(doc.Data)
	if err != nil {
		return err
	}
	if got != doc.Metadata.Checksum {
		return &ChecksumMismatchError{Want: doc.Metadata.Checksum, Got: got}
	}
	return nil
}

// ValidationResult summarizes a validated document for operator review
// before anything is mutated.
type ValidationResult struct {
	Metadata     snapshot.Metadata     `json:"metadata"`
	TableCounts  []snapshot.TableCount `json:"table_counts"`
	TotalRecords int                   `json:"total_records"`
	Unregistered []string              `json:"unregistered_tables"`
}

// TableResult reports the reinsert outcome for one table. Skipped counts
// rows that collided on a unique constraint; a nonzero value deserves
// operator attention, not silence.
type TableResult struct {
	Name     string `json:"name"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
}

// Report is the outcome of a live restore.
type Report struct {
	Wiped        []string      `json:"wiped_tables"`
	WipeSkipped  []string      `json:"wipe_skipped_tables"`
	Tables       []TableResult `json:"tables"`
	Unregistered []string      `json:"unregistered_tables"`
	Inserted     int           `json:"inserted"`
	Skipped      int           `json:"skipped"`
}

// Engine performs wipes and reinserts against a validated document.
type Engine struct {
	DB       Database
	Registry *registry.Registry
	Log      *slog.Logger
}

// Validate checks the document against the registry and reports per-table
// counts, including nested child collections. It never touches the database.
func (e *Engine) Validate(doc *snapshot.Document) *ValidationResult {
	result := &ValidationResult{
		Metadata:     doc.Metadata,
		Unregistered: unregisteredTables(doc, e.Registry),
	}

	for _, spec := range e.Registry.Ascending() {
		rows, ok := doc.Data[spec.Name]
		if !ok {
			continue
		}
		result.TableCounts = append(result.TableCounts, snapshot.TableCount{Name: spec.Name, Count: len(rows)})
		result.TotalRecords += len(rows)

		for _, child := range spec.Children {
			n := 0
			for _, row := range rows {
				n += len(nestedRows(row[child.Field]))
			}
			result.TableCounts = append(result.TableCounts, snapshot.TableCount{Name: child.Table, Count: n})
			result.TotalRecords += n
		}
	}

	return result
}

// Run wipes all registered tables in descending rank order, then reinserts
// the document's rows in ascending rank order. Wipe failures are logged and
// skipped; a reinsert failure aborts immediately with *PartialRestoreError
// and no rollback of tables already inserted.
func (e *Engine) Run(doc *snapshot.Document) (*Report, error) {
	report := &Report{
		Unregistered: unregisteredTables(doc, e.Registry),
	}
	for _, name := range report.Unregistered {
		e.Log.Warn("skipping table absent from registry", "table", name, "phase", "restore")
	}

	// Wipe is best-effort per table: a table missing from the target
	// database must not block recovery of the rest.
	for _, spec := range e.Registry.Descending() {
		if err := e.DB.WipeTable(spec.Name); err != nil {
			e.Log.Warn("skipping table wipe", "table", spec.Name, "phase", "wipe", "error", err)
			report.WipeSkipped = append(report.WipeSkipped, spec.Name)
			continue
		}
		report.Wiped = append(report.Wiped, spec.Name)
	}

	for _, spec := range e.Registry.Ascending() {
		rows, ok := doc.Data[spec.Name]
		if !ok {
			continue
		}

		if len(spec.Children) == 0 {
			if err := e.insert(report, spec.Name, rows); err != nil {
				return report, err
			}
			continue
		}

		// Strip nested child collections off the parent rows, insert the
		// parents, then flatten each collection into its own table in the
		// declared child order.
		parents, nested := splitChildren(rows, spec.Children)
		if err := e.insert(report, spec.Name, parents); err != nil {
			return report, err
		}
		for _, child := range spec.Children {
			if err := e.insert(report, child.Table, nested[child.Table]); err != nil {
				return report, err
			}
		}
	}

	return report, nil
}

// insert reinserts one table's rows and records the outcome.
func (e *Engine) insert(report *Report, table string, rows []db.Row) error {
	inserted, skipped, err := e.DB.InsertRows(table, rows)
	if err != nil {
		e.Log.Error("reinsert failed", "table", table, "phase", "reinsert", "error", err)
		return &PartialRestoreError{Table: table, Err: err}
	}

	report.Tables = append(report.Tables, TableResult{Name: table, Inserted: inserted, Skipped: skipped})
	report.Inserted += inserted
	report.Skipped += skipped
	if skipped > 0 {
		e.Log.Warn("rows skipped on unique-constraint collision", "table", table, "skipped", skipped)
	}
	return nil
}

// splitChildren separates nested child collections from parent rows. The
// returned parents are copies without the nested fields.
func splitChildren(rows []db.Row, children []registry.ChildSpec) ([]db.Row, map[string][]db.Row) {
	fields := make(map[string]string, len(children)) // field name -> child table
	nested := make(map[string][]db.Row, len(children))
	for _, child := range children {
		fields[child.Field] = child.Table
		nested[child.Table] = []db.Row{}
	}

	parents := make([]db.Row, 0, len(rows))
	for _, row := range rows {
		parent := make(db.Row, len(row))
		for col, val := range row {
			if table, ok := fields[col]; ok {
				nested[table] = append(nested[table], nestedRows(val)...)
				continue
			}
			parent[col] = val
		}
		parents = append(parents, parent)
	}

	return parents, nested
}

// nestedRows normalizes a nested child collection, which is []db.Row when
// the document came straight from the exporter and []any of objects after a
// JSON round trip.
func nestedRows(v any) []db.Row {
	switch vv := v.(type) {
	case []db.Row:
		return vv
	case []any:
		out := make([]db.Row, 0, len(vv))
		for _, item := range vv {
			if m, ok := item.(map[string]any); ok {
				out = append(out, db.Row(m))
			}
		}
		return out
	}
	return nil
}

// unregisteredTables returns, sorted, the document tables the registry does
// not know about.
func unregisteredTables(doc *snapshot.Document, reg *registry.Registry) []string {
	var names []string
	for name := range doc.Data {
		if !reg.Has(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
