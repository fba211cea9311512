package db

import (
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL UNIQUE COLLATE NOCASE,
	role       TEXT NOT NULL,
	pass_hash  BLOB NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
	id         TEXT PRIMARY KEY,
	text       TEXT NOT NULL,
	type       TEXT NOT NULL,
	options    TEXT,
	category   TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	created_by TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS assignments (
	id           TEXT PRIMARY KEY,
	question_id  TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
	user_id      TEXT NOT NULL REFERENCES users(id),
	status       TEXT NOT NULL,
	created_at   TIMESTAMP NOT NULL,
	completed_at TIMESTAMP,
	UNIQUE (question_id, user_id)
);

CREATE TABLE IF NOT EXISTS responses (
	id            TEXT PRIMARY KEY,
	assignment_id TEXT NOT NULL UNIQUE REFERENCES assignments(id) ON DELETE CASCADE,
	answer        TEXT NOT NULL,
	submitted_at  TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assignments_user ON assignments (user_id);
CREATE INDEX IF NOT EXISTS idx_questions_category ON questions (category);
`

// RunMigrations creates the schema. Statements are idempotent so this is
// safe on every startup.
func RunMigrations(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
