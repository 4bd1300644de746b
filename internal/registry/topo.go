package registry

import (
	"fmt"
	"sort"
	"strings"
)

// ForeignKey is one foreign-key edge discovered by schema introspection:
// Table.Column references RefTable's primary key.
type ForeignKey struct {
	Table    string
	Column   string
	RefTable string
}

// CycleError is returned when the foreign-key graph contains a cycle and a
// topological order cannot be derived.
type CycleError struct {
	Tables []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("foreign-key cycle among tables: %s", strings.Join(e.Tables, ", "))
}

// Order performs a topological sort over the foreign-key graph using Kahn's
// algorithm and returns the table names in forward dependency order:
// referenced tables before the tables that reference them. Ties within a
// level are broken alphabetically so the order is deterministic.
//
// Self-references (a table referencing itself, such as a tree of modules)
// are ignored; they constrain row order within one table, not table order.
// Edges to tables outside the given set are also ignored.
func Order(tables []string, fks []ForeignKey) ([]string, error) {
	known := make(map[string]bool, len(tables))
	for _, t := range tables {
		known[t] = true
	}

	// inDegree counts distinct referenced tables; forward maps a referenced
	// table to its dependents.
	inDegree := make(map[string]int, len(tables))
	forward := make(map[string]map[string]bool, len(tables))
	for _, t := range tables {
		inDegree[t] = 0
		forward[t] = make(map[string]bool)
	}

	for _, fk := range fks {
		if fk.Table == fk.RefTable || !known[fk.Table] || !known[fk.RefTable] {
			continue
		}
		if !forward[fk.RefTable][fk.Table] {
			forward[fk.RefTable][fk.Table] = true
			inDegree[fk.Table]++
		}
	}

	var queue []string
	for t, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, t)
		}
	}
	sort.Strings(queue)

	var order []string
	for len(queue) > 0 {
		level := make([]string, len(queue))
		copy(level, queue)
		sort.Strings(level)
		order = append(order, level...)

		var nextQueue []string
		for _, t := range level {
			for dependent := range forward[t] {
				inDegree[dependent]--
				if inDegree[dependent] == 0 {
					nextQueue = append(nextQueue, dependent)
				}
			}
		}
		sort.Strings(nextQueue)
		queue = nextQueue
	}

	if len(order) != len(tables) {
		var cycle []string
		for t, deg := range inDegree {
			if deg > 0 {
				cycle = append(cycle, t)
			}
		}
		sort.Strings(cycle)
		return nil, &CycleError{Tables: cycle}
	}

	return order, nil
}

// Build derives a Registry from introspected foreign keys. When the graph
// contains a cycle the manual fallback order is used instead, provided it
// covers exactly the given table set; this is the escape hatch for schemas
// the introspection cannot resolve.
func Build(tables []string, fks []ForeignKey, children map[string][]ChildSpec, fallback []string) (*Registry, error) {
	order, err := Order(tables, fks)
	if err != nil {
		if _, cyclic := err.(*CycleError); !cyclic || fallback == nil {
			return nil, err
		}
		if !sameSet(tables, fallback) {
			return nil, fmt.Errorf("manual table order does not cover the schema: %w", err)
		}
		order = fallback
	}

	specs := make([]TableSpec, len(order))
	for i, name := range order {
		specs[i] = TableSpec{
			Name:     name,
			Rank:     i,
			Children: children[name],
		}
	}

	return New(specs)
}

// sameSet reports whether a and b contain the same names, ignoring order.
func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}
	for _, s := range b {
		if !set[s] {
			return false
		}
	}
	return true
}
