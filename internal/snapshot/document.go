// Package snapshot defines the archive document format and the exporter
// that assembles one from a live database.
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/classvault/classvault/internal/db"
)

// FormatVersion is stamped into every snapshot's metadata. Bump it when the
// document shape changes incompatibly.
const FormatVersion = "1"

// TableCount records the observed row count of one table at export time.
type TableCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Metadata describes a snapshot: when and where it was taken, what it
// contains, and an advisory checksum over the serialized table data.
type Metadata struct {
	SnapshotID    string       `json:"snapshot_id"`
	FormatVersion string       `json:"format_version"`
	CreatedAt     time.Time    `json:"created_at"`
	Environment   string       `json:"environment"`
	TableCounts   []TableCount `json:"table_counts"`
	TotalRecords  int          `json:"total_records"`
	Checksum      string       `json:"checksum"`
}

// Document is a complete snapshot: metadata plus every registered table's
// rows, keyed by table name. Tables declared as owned children do not appear
// at the top level; their rows are nested on the parent rows.
type Document struct {
	Metadata Metadata            `json:"metadata"`
	Data     map[string][]db.Row `json:"data"`
}

// Encode serializes the document to its archive JSON form.
func (d *Document) Encode() ([]byte, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return b, nil
}

// Checksum returns the hex SHA-256 of the serialized table data. Go's JSON
// encoder writes map keys in sorted order, so the digest is deterministic
// for a given data set.
func Checksum(data map[string][]db.Row) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("serializing table data for checksum: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
