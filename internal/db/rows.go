package db

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// Row is one exported record: column name to scalar value. Values read from
// the database are int64, float64, string, bool, or nil; values decoded from
// an archive may additionally be float64 where the original was an integer,
// which SQLite's type affinity converts back on insert.
type Row map[string]any

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// ReadAllRows reads every row of the named table in rowid order. Intended for
// full-database dumps; there is no pagination.
func ReadAllRows(q Querier, table string) ([]Row, error) {
	rows, err := q.Query(fmt.Sprintf(`SELECT * FROM %q ORDER BY rowid`, table))
	if err != nil {
		return nil, fmt.Errorf("reading table %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns of %s: %w", table, err)
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row of %s: %w", table, err)
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			// TEXT columns may scan as []byte depending on the driver path;
			// normalize so the JSON encoding is a string, not base64.
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows of %s: %w", table, err)
	}

	return out, nil
}

// CountRows returns the number of rows in the named table.
func CountRows(q Querier, table string) (int, error) {
	var n int
	err := q.QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM %q`, table)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting rows of %s: %w", table, err)
	}
	return n, nil
}

// WipeTable deletes every row of the named table.
func WipeTable(q Querier, table string) error {
	if _, err := q.Exec(fmt.Sprintf(`DELETE FROM %q`, table)); err != nil {
		return fmt.Errorf("wiping table %s: %w", table, err)
	}
	return nil
}

// InsertRows bulk-inserts rows into the named table using INSERT OR IGNORE,
// so rows colliding on a unique constraint are skipped rather than aborting
// the batch. Returns how many rows were inserted and how many were skipped.
func InsertRows(q Querier, table string, rows []Row) (inserted, skipped int, err error) {
	for _, row := range rows {
		cols := make([]string, 0, len(row))
		for col := range row {
			cols = append(cols, col)
		}
		sort.Strings(cols)

		quoted := make([]string, len(cols))
		args := make([]any, len(cols))
		for i, col := range cols {
			quoted[i] = fmt.Sprintf("%q", col)
			args[i] = row[col]
		}

		query := fmt.Sprintf(
			`INSERT OR IGNORE INTO %q (%s) VALUES (%s)`,
			table,
			strings.Join(quoted, ", "),
			makePlaceholders(len(cols)),
		)

		res, err := q.Exec(query, args...)
		if err != nil {
			return inserted, skipped, fmt.Errorf("inserting into %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		if n > 0 {
			inserted++
		} else {
			skipped++
		}
	}
	return inserted, skipped, nil
}

// makePlaceholders returns a comma-separated list of n "?" placeholders.
func makePlaceholders(n int) string {
	if n == 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

// Conn adapts a *sql.DB to the narrow mutation surface the restore engine
// depends on, so tests can stand in a recording double.
type Conn struct {
	DB *sql.DB
}

// WipeTable deletes every row of the named table.
func (c *Conn) WipeTable(table string) error {
	return WipeTable(c.DB, table)
}

// InsertRows bulk-inserts rows with duplicate-key-tolerant semantics.
func (c *Conn) InsertRows(table string, rows []Row) (inserted, skipped int, err error) {
	return InsertRows(c.DB, table, rows)
}
