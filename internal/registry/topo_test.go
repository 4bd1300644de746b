package registry

import (
	"errors"
	"reflect"
	"testing"
)

func TestOrderIndependentTablesFirst(t *testing.T) {
	tables := []string{"submissions", "assignments", "users", "courses"}
	fks := []ForeignKey{
		{Table: "courses", Column: "owner_id", RefTable: "users"},
		{Table: "assignments", Column: "course_id", RefTable: "courses"},
		{Table: "submissions", Column: "assignment_id", RefTable: "assignments"},
		{Table: "submissions", Column: "user_id", RefTable: "users"},
	}

	order, err := Order(tables, fks)
	if err != nil {
		t.Fatalf("Order() failed: %v", err)
	}

	want := []string{"users", "courses", "assignments", "submissions"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("Order() = %v, want %v", order, want)
	}
}

func TestOrderBreaksTiesAlphabetically(t *testing.T) {
	tables := []string{"zebra", "apple", "mango"}

	order, err := Order(tables, nil)
	if err != nil {
		t.Fatalf("Order() failed: %v", err)
	}

	want := []string{"apple", "mango", "zebra"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("Order() = %v, want %v", order, want)
	}
}

func TestOrderIgnoresSelfReferences(t *testing.T) {
	tables := []string{"course_modules", "courses"}
	fks := []ForeignKey{
		{Table: "course_modules", Column: "course_id", RefTable: "courses"},
		{Table: "course_modules", Column: "parent_module_id", RefTable: "course_modules"},
	}

	order, err := Order(tables, fks)
	if err != nil {
		t.Fatalf("Order() failed: %v", err)
	}

	want := []string{"courses", "course_modules"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("Order() = %v, want %v", order, want)
	}
}

func TestOrderDetectsCycle(t *testing.T) {
	tables := []string{"a", "b"}
	fks := []ForeignKey{
		{Table: "a", Column: "b_id", RefTable: "b"},
		{Table: "b", Column: "a_id", RefTable: "a"},
	}

	_, err := Order(tables, fks)
	var cerr *CycleError
	if !errors.As(err, &cerr) {
		t.Fatalf("Order() error = %v, want *CycleError", err)
	}
	if !reflect.DeepEqual(cerr.Tables, []string{"a", "b"}) {
		t.Errorf("CycleError.Tables = %v, want [a b]", cerr.Tables)
	}
}

func TestBuildAssignsStrictlyIncreasingRanks(t *testing.T) {
	tables := []string{"enrollments", "users", "courses"}
	fks := []ForeignKey{
		{Table: "courses", Column: "owner_id", RefTable: "users"},
		{Table: "enrollments", Column: "course_id", RefTable: "courses"},
		{Table: "enrollments", Column: "user_id", RefTable: "users"},
	}

	reg, err := Build(tables, fks, nil, nil)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	// Every table must rank strictly after everything it references.
	rank := make(map[string]int)
	for _, spec := range reg.Ascending() {
		rank[spec.Name] = spec.Rank
	}
	for _, fk := range fks {
		if rank[fk.Table] <= rank[fk.RefTable] {
			t.Errorf("%s (rank %d) must rank after %s (rank %d)",
				fk.Table, rank[fk.Table], fk.RefTable, rank[fk.RefTable])
		}
	}
}

func TestBuildFallsBackToManualOrderOnCycle(t *testing.T) {
	tables := []string{"a", "b"}
	fks := []ForeignKey{
		{Table: "a", Column: "b_id", RefTable: "b"},
		{Table: "b", Column: "a_id", RefTable: "a"},
	}

	reg, err := Build(tables, fks, nil, []string{"b", "a"})
	if err != nil {
		t.Fatalf("Build() with fallback failed: %v", err)
	}

	names := reg.Names()
	if !reflect.DeepEqual(names, []string{"b", "a"}) {
		t.Errorf("Names() = %v, want [b a]", names)
	}
}

func TestBuildRejectsIncompleteFallback(t *testing.T) {
	tables := []string{"a", "b", "c"}
	fks := []ForeignKey{
		{Table: "a", Column: "b_id", RefTable: "b"},
		{Table: "b", Column: "a_id", RefTable: "a"},
	}

	if _, err := Build(tables, fks, nil, []string{"b", "a"}); err == nil {
		t.Error("Build() with incomplete fallback succeeded, want error")
	}
}
