package db

import (
	"database/sql"
	"fmt"

	"github.com/classvault/classvault/internal/registry"
)

// internalTables are bookkeeping tables excluded from snapshots.
var internalTables = map[string]bool{
	"meta": true,
}

// ownedCollections declares the one-to-many collections inlined onto their
// parent during export and split back out during restore. Keep the declared
// order stable: restore inserts child tables in this order after the parent.
var ownedCollections = map[string][]registry.ChildSpec{
	"users": {
		{Table: "user_credentials", ForeignKey: "user_id", Field: "credentials"},
		{Table: "user_sessions", ForeignKey: "user_id", Field: "sessions"},
	},
}

// manualTableOrder is the fallback dependency order used only if foreign-key
// introspection finds a cycle it cannot resolve. It must list every
// snapshot-visible table.
var manualTableOrder = []string{
	"users",
	"user_credentials",
	"user_sessions",
	"courses",
	"audit_events",
	"course_modules",
	"enrollments",
	"assignments",
	"quizzes",
	"lessons",
	"submissions",
	"quiz_questions",
	"quiz_attempts",
}

// ListUserTables returns the snapshot-visible table names, excluding
// SQLite's own tables and classvault bookkeeping.
func ListUserTables(q Querier) ([]string, error) {
	rows, err := q.Query(
		`SELECT name FROM sqlite_master
		 WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		 ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		if internalTables[name] {
			continue
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tables: %w", err)
	}

	return tables, nil
}

// ForeignKeys introspects the foreign-key edges of the given tables via
// PRAGMA foreign_key_list.
func ForeignKeys(q Querier, tables []string) ([]registry.ForeignKey, error) {
	var fks []registry.ForeignKey
	for _, table := range tables {
		rows, err := q.Query(fmt.Sprintf(`PRAGMA foreign_key_list(%q)`, table))
		if err != nil {
			return nil, fmt.Errorf("reading foreign keys of %s: %w", table, err)
		}

		for rows.Next() {
			var (
				id, seq                   int
				refTable, from            string
				to                        sql.NullString
				onUpdate, onDelete, match string
			)
			if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning foreign key of %s: %w", table, err)
			}
			fks = append(fks, registry.ForeignKey{
				Table:    table,
				Column:   from,
				RefTable: refTable,
			})
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("iterating foreign keys of %s: %w", table, err)
		}
		rows.Close()
	}
	return fks, nil
}

// BuildRegistry derives the dependency-ordered table registry from the live
// schema: tables from sqlite_master, edges from PRAGMA introspection, and a
// topological sort. The manual order only applies if the graph is cyclic.
func BuildRegistry(q Querier) (*registry.Registry, error) {
	tables, err := ListUserTables(q)
	if err != nil {
		return nil, err
	}

	fks, err := ForeignKeys(q, tables)
	if err != nil {
		return nil, err
	}

	reg, err := registry.Build(tables, fks, ownedCollections, manualTableOrder)
	if err != nil {
		return nil, fmt.Errorf("building table registry: %w", err)
	}
	return reg, nil
}
