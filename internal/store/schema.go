package store

import (
	"context"
	"fmt"
	"strings"

	entsql "entgo.io/ent/dialect/sql"
)

// Table names.
const (
	tableIdentities  = "identities"
	tableLLMRequests = "llm_request_events"
	tableActivity    = "activity_events"
)

// Every event table shares the sequence and timestamp columns so rows from
// different tables can be ordered against each other. Timestamps are stored
// as Unix milliseconds.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS identities (
		slot       TEXT PRIMARY KEY CHECK (slot IN ('active', 'impersonator')),
		user_id    INTEGER NOT NULL,
		name       TEXT NOT NULL DEFAULT '',
		email      TEXT NOT NULL DEFAULT '',
		role       TEXT NOT NULL,
		segment    INTEGER NOT NULL DEFAULT 0,
		saved_at   INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS llm_request_events (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence       INTEGER NOT NULL UNIQUE,
		timestamp      INTEGER NOT NULL,
		provider       TEXT NOT NULL,
		model          TEXT NOT NULL,
		purpose        TEXT NOT NULL,
		input_tokens   INTEGER NOT NULL DEFAULT 0,
		output_tokens  INTEGER NOT NULL DEFAULT 0,
		latency_ms     INTEGER NOT NULL DEFAULT 0,
		success        INTEGER NOT NULL,
		error_message  TEXT NOT NULL DEFAULT '',
		request_body   TEXT NOT NULL DEFAULT '',
		response_body  TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS llm_request_events_purpose ON llm_request_events (purpose)`,
	`CREATE INDEX IF NOT EXISTS llm_request_events_timestamp ON llm_request_events (timestamp)`,
	`CREATE TABLE IF NOT EXISTS activity_events (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence      INTEGER NOT NULL UNIQUE,
		timestamp     INTEGER NOT NULL,
		visit_id      TEXT NOT NULL DEFAULT '',
		user_id       INTEGER NOT NULL,
		narrative_id  TEXT NOT NULL DEFAULT '',
		response_id   INTEGER NOT NULL DEFAULT 0,
		kind          TEXT NOT NULL,
		correct       INTEGER,
		detail        TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS activity_events_user ON activity_events (user_id)`,
	`CREATE INDEX IF NOT EXISTS activity_events_kind ON activity_events (kind)`,
}

// migrate creates missing tables and indexes. Statements are idempotent.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	for _, stmt := range append(sequenceDDL, schemaDDL...) {
		if err := drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
