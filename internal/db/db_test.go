package db

import (
	"database/sql"
	"testing"
)

func mustOpen(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustInitialize(t *testing.T) *sql.DB {
	t.Helper()
	db := mustOpen(t)
	if err := Initialize(db); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	return db
}

func TestOpenSetsForeignKeys(t *testing.T) {
	db := mustOpen(t)

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("querying foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
}

func TestInitializeCreatesSchema(t *testing.T) {
	db := mustInitialize(t)

	version, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion() failed: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("schema version = %d, want %d", version, currentSchemaVersion)
	}

	tables, err := ListUserTables(db)
	if err != nil {
		t.Fatalf("ListUserTables() failed: %v", err)
	}
	if len(tables) != 13 {
		t.Errorf("ListUserTables() returned %d tables, want 13: %v", len(tables), tables)
	}
	for _, table := range tables {
		if table == "meta" {
			t.Error("ListUserTables() included bookkeeping table meta")
		}
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	db := mustInitialize(t)
	if err := Initialize(db); err != nil {
		t.Fatalf("second Initialize() failed: %v", err)
	}
}

func TestSeedPopulatesDemoData(t *testing.T) {
	db := mustInitialize(t)
	if err := Seed(db); err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}

	n, err := CountRows(db, "users")
	if err != nil {
		t.Fatalf("CountRows(users) failed: %v", err)
	}
	if n != 3 {
		t.Errorf("users count = %d, want 3", n)
	}
}

func TestForeignKeysFindsDeclaredEdges(t *testing.T) {
	db := mustInitialize(t)

	fks, err := ForeignKeys(db, []string{"enrollments"})
	if err != nil {
		t.Fatalf("ForeignKeys() failed: %v", err)
	}

	refs := make(map[string]bool)
	for _, fk := range fks {
		if fk.Table != "enrollments" {
			t.Errorf("fk.Table = %q, want enrollments", fk.Table)
		}
		refs[fk.RefTable] = true
	}
	if !refs["users"] || !refs["courses"] {
		t.Errorf("enrollments references = %v, want users and courses", refs)
	}
}

func TestBuildRegistryOrdersRespectForeignKeys(t *testing.T) {
	db := mustInitialize(t)

	reg, err := BuildRegistry(db)
	if err != nil {
		t.Fatalf("BuildRegistry() failed: %v", err)
	}

	tables, err := ListUserTables(db)
	if err != nil {
		t.Fatalf("ListUserTables() failed: %v", err)
	}
	if reg.Len() != len(tables) {
		t.Errorf("registry has %d tables, schema has %d", reg.Len(), len(tables))
	}

	fks, err := ForeignKeys(db, tables)
	if err != nil {
		t.Fatalf("ForeignKeys() failed: %v", err)
	}

	rank := make(map[string]int)
	for _, spec := range reg.Ascending() {
		rank[spec.Name] = spec.Rank
	}
	for _, fk := range fks {
		if fk.Table == fk.RefTable {
			continue
		}
		if rank[fk.Table] <= rank[fk.RefTable] {
			t.Errorf("%s (rank %d) must rank after referenced %s (rank %d)",
				fk.Table, rank[fk.Table], fk.RefTable, rank[fk.RefTable])
		}
	}

	if !reg.IsChild("user_credentials") || !reg.IsChild("user_sessions") {
		t.Error("expected user_credentials and user_sessions to be registered as children of users")
	}
}

func TestReadAllRowsNormalizesValues(t *testing.T) {
	db := mustInitialize(t)
	if err := Seed(db); err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}

	rows, err := ReadAllRows(db, "users")
	if err != nil {
		t.Fatalf("ReadAllRows(users) failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	first := rows[0]
	if _, ok := first["id"].(int64); !ok {
		t.Errorf("id = %T(%v), want int64", first["id"], first["id"])
	}
	if email, ok := first["email"].(string); !ok || email != "ada@example.edu" {
		t.Errorf("email = %T(%v), want string ada@example.edu", first["email"], first["email"])
	}
}

func TestInsertRowsSkipsDuplicates(t *testing.T) {
	db := mustInitialize(t)

	rows := []Row{
		{"id": int64(1), "email": "a@x.edu", "full_name": "A", "role": "student", "created_at": "2026-01-01T00:00:00Z"},
		{"id": int64(2), "email": "b@x.edu", "full_name": "B", "role": "student", "created_at": "2026-01-01T00:00:00Z"},
	}

	inserted, skipped, err := InsertRows(db, "users", rows)
	if err != nil {
		t.Fatalf("InsertRows() failed: %v", err)
	}
	if inserted != 2 || skipped != 0 {
		t.Errorf("first insert = (%d, %d), want (2, 0)", inserted, skipped)
	}

	// Re-inserting the same rows collides on the primary key.
	inserted, skipped, err = InsertRows(db, "users", rows)
	if err != nil {
		t.Fatalf("second InsertRows() failed: %v", err)
	}
	if inserted != 0 || skipped != 2 {
		t.Errorf("second insert = (%d, %d), want (0, 2)", inserted, skipped)
	}
}

func TestWipeTable(t *testing.T) {
	db := mustInitialize(t)
	if err := Seed(db); err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}

	// Children first so foreign keys are never dangling.
	for _, table := range []string{
		"audit_events", "quiz_attempts", "quiz_questions", "quizzes",
		"submissions", "assignments", "enrollments", "lessons",
		"course_modules", "courses", "user_sessions", "user_credentials", "users",
	} {
		if err := WipeTable(db, table); err != nil {
			t.Fatalf("WipeTable(%s) failed: %v", table, err)
		}
	}

	n, err := CountRows(db, "users")
	if err != nil {
		t.Fatalf("CountRows(users) failed: %v", err)
	}
	if n != 0 {
		t.Errorf("users count after wipe = %d, want 0", n)
	}
}

func TestWipeTableMissingTableFails(t *testing.T) {
	db := mustInitialize(t)
	if err := WipeTable(db, "no_such_table"); err == nil {
		t.Error("WipeTable(no_such_table) succeeded, want error")
	}
}
