package database

import (
	"database/sql"
	"fmt"
)

// Schema is the portal-side schema. The unique constraint on
// solutions(user_id, assignment_id) backs EnsureSolution's create-or-fetch
// semantics; commits(uuid) is the join key for build-finished reconciliation.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
    id                SERIAL PRIMARY KEY,
    username          TEXT NOT NULL UNIQUE,
    hashed_password   TEXT NOT NULL,
    roles             TEXT NOT NULL,
    active_contest_id INTEGER NOT NULL DEFAULT 0,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS contests (
    id         SERIAL PRIMARY KEY,
    title      TEXT NOT NULL,
    start_time TIMESTAMPTZ NOT NULL,
    end_time   TIMESTAMPTZ NOT NULL,
    CHECK (end_time > start_time)
);

CREATE TABLE IF NOT EXISTS contest_members (
    contest_id INTEGER NOT NULL REFERENCES contests(id),
    user_id    INTEGER NOT NULL REFERENCES users(id),
    UNIQUE (contest_id, user_id)
);

CREATE TABLE IF NOT EXISTS assignments (
    id         SERIAL PRIMARY KEY,
    contest_id INTEGER NOT NULL REFERENCES contests(id),
    uuid       TEXT NOT NULL UNIQUE,
    slug       TEXT NOT NULL UNIQUE,
    title      TEXT NOT NULL,
    article    TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS solutions (
    id            SERIAL PRIMARY KEY,
    user_id       INTEGER NOT NULL REFERENCES users(id),
    assignment_id INTEGER NOT NULL REFERENCES assignments(id),
    score         INTEGER NOT NULL DEFAULT 0,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (user_id, assignment_id)
);

CREATE TABLE IF NOT EXISTS commits (
    id          SERIAL PRIMARY KEY,
    solution_id INTEGER NOT NULL REFERENCES solutions(id),
    uuid        TEXT NOT NULL UNIQUE,
    language    TEXT NOT NULL,
    source      TEXT NOT NULL,
    status      TEXT NOT NULL DEFAULT 'pending',
    score       INTEGER NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("database.Migrate: %w", err)
	}
	return nil
}
