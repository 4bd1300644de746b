package db

import (
	"database/sql"
	"fmt"
	"strconv"
)

const currentSchemaVersion = 1

// schemaDDL contains the CREATE TABLE statements for the LMS schema the
// snapshot pipeline reads from and restores into.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT
);

CREATE TABLE IF NOT EXISTS users (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	email      TEXT NOT NULL UNIQUE,
	full_name  TEXT NOT NULL,
	role       TEXT NOT NULL DEFAULT 'student',
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS user_credentials (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id     INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	provider    TEXT NOT NULL,
	secret_hash TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	UNIQUE(user_id, provider)
);

CREATE TABLE IF NOT EXISTS user_sessions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	token      TEXT NOT NULL UNIQUE,
	expires_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS courses (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_id   INTEGER NOT NULL REFERENCES users(id),
	code       TEXT NOT NULL UNIQUE,
	title      TEXT NOT NULL,
	published  INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS course_modules (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	course_id        INTEGER NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
	parent_module_id INTEGER REFERENCES course_modules(id) ON DELETE SET NULL,
	title            TEXT NOT NULL,
	position         INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS lessons (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	module_id INTEGER NOT NULL REFERENCES course_modules(id) ON DELETE CASCADE,
	title     TEXT NOT NULL,
	body      TEXT,
	position  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS enrollments (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	course_id   INTEGER NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
	user_id     INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	status      TEXT NOT NULL DEFAULT 'active',
	enrolled_at TEXT NOT NULL,
	UNIQUE(course_id, user_id)
);

CREATE TABLE IF NOT EXISTS assignments (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	course_id  INTEGER NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
	title      TEXT NOT NULL,
	due_at     TEXT,
	max_points REAL NOT NULL DEFAULT 100
);

CREATE TABLE IF NOT EXISTS submissions (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	assignment_id INTEGER NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
	user_id       INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	submitted_at  TEXT NOT NULL,
	grade         REAL,
	feedback      TEXT,
	UNIQUE(assignment_id, user_id)
);

CREATE TABLE IF NOT EXISTS quizzes (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	course_id          INTEGER NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
	title              TEXT NOT NULL,
	time_limit_minutes INTEGER
);

CREATE TABLE IF NOT EXISTS quiz_questions (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	quiz_id  INTEGER NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
	prompt   TEXT NOT NULL,
	answer   TEXT NOT NULL,
	points   REAL NOT NULL DEFAULT 1,
	position INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS quiz_attempts (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	quiz_id    INTEGER NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
	user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	started_at TEXT NOT NULL,
	score      REAL
);

CREATE TABLE IF NOT EXISTS audit_events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	actor_id   INTEGER REFERENCES users(id) ON DELETE SET NULL,
	action     TEXT NOT NULL,
	entity     TEXT,
	entity_id  INTEGER,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_user_sessions_user_id ON user_sessions(user_id);
CREATE INDEX IF NOT EXISTS idx_course_modules_course_id ON course_modules(course_id);
CREATE INDEX IF NOT EXISTS idx_lessons_module_id ON lessons(module_id);
CREATE INDEX IF NOT EXISTS idx_enrollments_user_id ON enrollments(user_id);
CREATE INDEX IF NOT EXISTS idx_submissions_user_id ON submissions(user_id);
CREATE INDEX IF NOT EXISTS idx_audit_events_actor_id ON audit_events(actor_id);
`

// Initialize creates all tables if they don't exist and sets the schema version.
func Initialize(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(schemaDDL); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	// Set schema version only if not already set.
	_, err = tx.Exec(
		`INSERT OR IGNORE INTO meta (key, value) VALUES ('schema_version', ?)`,
		strconv.Itoa(currentSchemaVersion),
	)
	if err != nil {
		return fmt.Errorf("setting schema version: %w", err)
	}

	return tx.Commit()
}

// SchemaVersion returns the current schema version from the meta table.
func SchemaVersion(db *sql.DB) (int, error) {
	var val string
	err := db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&val)
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}

	v, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("parsing schema version %q: %w", val, err)
	}

	return v, nil
}

// seedDDL inserts a small demo data set for local verification of the
// snapshot and restore flows.
const seedDDL = `
INSERT INTO users (email, full_name, role, created_at) VALUES
	('ada@example.edu', 'Ada Lovelace', 'instructor', '2026-01-05T09:00:00Z'),
	('grace@example.edu', 'Grace Hopper', 'student', '2026-01-06T10:30:00Z'),
	('alan@example.edu', 'Alan Turing', 'student', '2026-01-07T14:15:00Z');

INSERT INTO user_credentials (user_id, provider, secret_hash, created_at) VALUES
	(1, 'password', '$argon2id$demo1', '2026-01-05T09:00:00Z'),
	(2, 'password', '$argon2id$demo2', '2026-01-06T10:30:00Z'),
	(3, 'oidc', 'sub:demo3', '2026-01-07T14:15:00Z');

INSERT INTO user_sessions (user_id, token, expires_at) VALUES
	(1, 'tok-ada-1', '2026-03-01T00:00:00Z'),
	(2, 'tok-grace-1', '2026-03-01T00:00:00Z');

INSERT INTO courses (owner_id, code, title, published, created_at) VALUES
	(1, 'CS101', 'Introduction to Computing', 1, '2026-01-10T08:00:00Z');

INSERT INTO course_modules (course_id, parent_module_id, title, position) VALUES
	(1, NULL, 'Foundations', 0),
	(1, 1, 'Numbers and Logic', 1);

INSERT INTO lessons (module_id, title, body, position) VALUES
	(1, 'What is a computer?', 'Lecture notes.', 0),
	(2, 'Binary arithmetic', 'Worked examples.', 0);

INSERT INTO enrollments (course_id, user_id, status, enrolled_at) VALUES
	(1, 2, 'active', '2026-01-12T09:00:00Z'),
	(1, 3, 'active', '2026-01-12T09:05:00Z');

INSERT INTO assignments (course_id, title, due_at, max_points) VALUES
	(1, 'Essay: history of computing', '2026-02-01T23:59:00Z', 100);

INSERT INTO submissions (assignment_id, user_id, submitted_at, grade, feedback) VALUES
	(1, 2, '2026-01-30T18:00:00Z', 92.5, 'Strong work.');

INSERT INTO quizzes (course_id, title, time_limit_minutes) VALUES
	(1, 'Week 1 check-in', 15);

INSERT INTO quiz_questions (quiz_id, prompt, answer, points, position) VALUES
	(1, 'What base is binary?', '2', 1, 0),
	(1, 'What does CPU stand for?', 'central processing unit', 1, 1);

INSERT INTO quiz_attempts (quiz_id, user_id, started_at, score) VALUES
	(1, 2, '2026-01-15T09:00:00Z', 2),
	(1, 3, '2026-01-15T09:01:00Z', 1);

INSERT INTO audit_events (actor_id, action, entity, entity_id, created_at) VALUES
	(1, 'course.publish', 'courses', 1, '2026-01-10T08:05:00Z'),
	(2, 'enrollment.create', 'enrollments', 1, '2026-01-12T09:00:00Z');
`

// Seed populates the demo data set. It expects an empty, initialized schema.
func Seed(db *sql.DB) error {
	if _, err := db.Exec(seedDDL); err != nil {
		return fmt.Errorf("seeding demo data: %w", err)
	}
	return nil
}
