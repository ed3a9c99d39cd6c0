package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the SQLite database holding identities and classroom data.
type Store struct {
	db *sql.DB
}

var (
	// ErrNotFound is returned when a looked-up row does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrEmailTaken is returned on signup with an already-registered email.
	ErrEmailTaken = errors.New("store: email already registered")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("store: invalid email or password")
	// ErrAlreadyEnrolled is returned when a student joins a class twice.
	ErrAlreadyEnrolled = errors.New("store: already enrolled")
)

// Open opens the SQLite database and applies the schema.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", "001_initial").Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check migration status: %w", err)
	}
	if count > 0 {
		return nil
	}

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}
	if _, err := db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", "001_initial"); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	name          TEXT NOT NULL,
	role          TEXT NOT NULL CHECK (role IN ('teacher', 'student')),
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE classes (
	id          TEXT PRIMARY KEY,
	code        TEXT NOT NULL UNIQUE,
	name        TEXT NOT NULL,
	section     TEXT NOT NULL DEFAULT '',
	subject     TEXT NOT NULL DEFAULT '',
	room        TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	teacher_id  TEXT NOT NULL REFERENCES users(id),
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE enrollments (
	class_id   TEXT NOT NULL REFERENCES classes(id) ON DELETE CASCADE,
	student_id TEXT NOT NULL REFERENCES users(id),
	joined_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (class_id, student_id)
);

CREATE TABLE assignments (
	id          TEXT PRIMARY KEY,
	class_id    TEXT NOT NULL REFERENCES classes(id) ON DELETE CASCADE,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	due_date    TEXT NOT NULL DEFAULT '',
	max_points  INTEGER NOT NULL DEFAULT 100,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE submissions (
	id            TEXT PRIMARY KEY,
	assignment_id TEXT NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
	student_id    TEXT NOT NULL REFERENCES users(id),
	file_path     TEXT NOT NULL DEFAULT '',
	text_content  TEXT NOT NULL DEFAULT '',
	submitted_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (assignment_id, student_id)
);

CREATE TABLE announcements (
	id         TEXT PRIMARY KEY,
	class_id   TEXT NOT NULL REFERENCES classes(id) ON DELETE CASCADE,
	teacher_id TEXT NOT NULL REFERENCES users(id),
	title      TEXT NOT NULL,
	content    TEXT NOT NULL DEFAULT '',
	file_path  TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE comments (
	id         TEXT PRIMARY KEY,
	item_id    TEXT NOT NULL,
	item_type  TEXT NOT NULL,
	class_id   TEXT NOT NULL REFERENCES classes(id) ON DELETE CASCADE,
	user_id    TEXT NOT NULL REFERENCES users(id),
	text       TEXT NOT NULL,
	parent_id  TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE materials (
	id            TEXT PRIMARY KEY,
	class_id      TEXT NOT NULL REFERENCES classes(id) ON DELETE CASCADE,
	teacher_id    TEXT NOT NULL REFERENCES users(id),
	title         TEXT NOT NULL,
	material_type TEXT NOT NULL DEFAULT 'Document',
	file_path     TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE messages (
	id         TEXT PRIMARY KEY,
	class_id   TEXT NOT NULL,
	sent_by    TEXT NOT NULL,
	content    TEXT NOT NULL DEFAULT '',
	attachment TEXT NOT NULL DEFAULT '',
	reply_to   TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE notifications (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	payload    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX idx_enrollments_student ON enrollments(student_id);
CREATE INDEX idx_assignments_class ON assignments(class_id);
CREATE INDEX idx_submissions_assignment ON submissions(assignment_id);
CREATE INDEX idx_messages_class ON messages(class_id, created_at);
CREATE INDEX idx_notifications_user ON notifications(user_id, created_at);
`
