// Package registry holds the ordered set of tables the snapshot pipeline
// operates on. The order respects foreign keys: a table always ranks after
// every table it references, so inserts in ascending rank order and deletes
// in descending rank order never violate referential integrity.
package registry

import (
	"fmt"
	"sort"
)

// ChildSpec declares a one-to-many collection owned by a parent table.
// During export the child table's rows are inlined onto each parent row
// under Field; during restore they are split back out and inserted into
// the child table after the parent.
type ChildSpec struct {
	Table      string // child table name
	ForeignKey string // column on the child referencing the parent's id
	Field      string // nested field name on the parent row
}

// TableSpec is one registered table with its dependency rank.
type TableSpec struct {
	Name     string
	Rank     int
	Children []ChildSpec
}

// Registry is the immutable, dependency-ordered table set. Build one at
// process start with Build; it never changes afterwards.
type Registry struct {
	specs   []TableSpec
	byName  map[string]int
	childOf map[string]string
}

// New creates a Registry from the given specs, sorted by ascending rank.
// Every declared child must itself be a registered table.
func New(specs []TableSpec) (*Registry, error) {
	sorted := make([]TableSpec, len(specs))
	copy(sorted, specs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Rank < sorted[j].Rank })

	r := &Registry{
		specs:   sorted,
		byName:  make(map[string]int, len(sorted)),
		childOf: make(map[string]string),
	}

	for i, spec := range sorted {
		if _, dup := r.byName[spec.Name]; dup {
			return nil, fmt.Errorf("duplicate table %q in registry", spec.Name)
		}
		r.byName[spec.Name] = i
	}

	for _, spec := range sorted {
		for _, child := range spec.Children {
			if _, ok := r.byName[child.Table]; !ok {
				return nil, fmt.Errorf("table %q declares unregistered child %q", spec.Name, child.Table)
			}
			if parent, dup := r.childOf[child.Table]; dup {
				return nil, fmt.Errorf("table %q is a child of both %q and %q", child.Table, parent, spec.Name)
			}
			r.childOf[child.Table] = spec.Name
		}
	}

	return r, nil
}

// Ascending returns all specs in forward dependency order (referenced tables
// first). This is the insert order for restore.
func (r *Registry) Ascending() []TableSpec {
	out := make([]TableSpec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Descending returns all specs in reverse dependency order (dependents
// first). This is the delete order for restore.
func (r *Registry) Descending() []TableSpec {
	out := make([]TableSpec, len(r.specs))
	for i, spec := range r.specs {
		out[len(r.specs)-1-i] = spec
	}
	return out
}

// Lookup returns the spec for the named table.
func (r *Registry) Lookup(name string) (TableSpec, bool) {
	i, ok := r.byName[name]
	if !ok {
		return TableSpec{}, false
	}
	return r.specs[i], true
}

// Has reports whether the named table is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// IsChild reports whether the named table is an owned child collection of
// another table. Child tables are not exported at the document's top level;
// their rows travel nested on the parent.
func (r *Registry) IsChild(name string) bool {
	_, ok := r.childOf[name]
	return ok
}

// Len returns the number of registered tables.
func (r *Registry) Len() int {
	return len(r.specs)
}

// Names returns all table names in ascending rank order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.specs))
	for i, spec := range r.specs {
		names[i] = spec.Name
	}
	return names
}
