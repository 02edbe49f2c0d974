// internal/database/schema.go
package database

// Schema is the full DDL for the backend. Foreign key actions implement the
// cascade rules: removing a user removes the tasks they created, nulls
// assignee references on everyone else's tasks, and removes the user's
// comments; replies to a removed comment keep their row and lose the parent
// link. Removing a task removes its thread.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id                       UUID PRIMARY KEY,
	email                    TEXT NOT NULL UNIQUE,
	username                 TEXT NOT NULL UNIQUE,
	password_hash            TEXT NOT NULL,
	first_name               TEXT NOT NULL DEFAULT '',
	last_name                TEXT NOT NULL DEFAULT '',
	role                     TEXT NOT NULL DEFAULT 'member',
	is_active                BOOLEAN NOT NULL DEFAULT TRUE,
	failed_login_attempts    INTEGER NOT NULL DEFAULT 0,
	account_locked_until     TIMESTAMPTZ,
	refresh_token            TEXT NOT NULL DEFAULT '',
	refresh_token_expires_at TIMESTAMPTZ,
	last_login               TIMESTAMPTZ,
	last_login_ip            TEXT NOT NULL DEFAULT '',
	password_changed_at      TIMESTAMPTZ,
	created_at               TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at               TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tasks (
	id          UUID PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'todo',
	priority    TEXT NOT NULL DEFAULT 'medium',
	creator_id  UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	assignee_id UUID REFERENCES users (id) ON DELETE SET NULL,
	due_date    TIMESTAMPTZ,
	tags        TEXT[] NOT NULL DEFAULT '{}',
	version     BIGINT NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_tasks_creator ON tasks (creator_id);
CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks (assignee_id);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks (status);

CREATE TABLE IF NOT EXISTS comments (
	id         UUID PRIMARY KEY,
	task_id    UUID NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
	user_id    UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	parent_id  UUID REFERENCES comments (id) ON DELETE SET NULL,
	content    TEXT NOT NULL,
	mentions   TEXT[] NOT NULL DEFAULT '{}',
	is_edited  BOOLEAN NOT NULL DEFAULT FALSE,
	is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
	deleted_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CHECK (parent_id IS NULL OR parent_id <> id)
);

CREATE INDEX IF NOT EXISTS idx_comments_task ON comments (task_id);
CREATE INDEX IF NOT EXISTS idx_comments_parent ON comments (parent_id);

CREATE TABLE IF NOT EXISTS security_events (
	id          UUID PRIMARY KEY,
	user_id     UUID REFERENCES users (id) ON DELETE CASCADE,
	event_type  TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	severity    TEXT NOT NULL DEFAULT 'low',
	ip_address  TEXT NOT NULL DEFAULT '',
	user_agent  TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_security_events_user ON security_events (user_id);
`
