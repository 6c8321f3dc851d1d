package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// Event rows in every table draw from one counter, so an LLM request and
// the answer that triggered it order against each other across tables.
const tableSequence = "event_sequence"

var sequenceDDL = []string{
	`CREATE TABLE IF NOT EXISTS event_sequence (
		id       INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`,
	`INSERT OR IGNORE INTO event_sequence (id, next_val) VALUES (1, 1)`,
}

// insertEvent stamps ins with the next sequence number and the current time
// and runs it. Both happen in one transaction, so a failed insert does not
// burn a number.
func insertEvent(ctx context.Context, drv *entsql.Driver, ins *entsql.InsertBuilder) (seq int64, err error) {
	tx, err := drv.Tx(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if seq, err = nextSequence(ctx, tx); err != nil {
		return 0, err
	}
	ins.Set("sequence", seq).Set("timestamp", toMillis(time.Now()))
	if err = exec(ctx, tx, ins); err != nil {
		return 0, err
	}
	return seq, tx.Commit()
}

// nextSequence claims one number from the counter.
func nextSequence(ctx context.Context, q dialect.ExecQuerier) (int64, error) {
	rows := &entsql.Rows{}
	err := q.Query(ctx,
		`UPDATE event_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
		[]any{}, rows)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, fmt.Errorf("next sequence: %w", err)
		}
		return 0, errors.New("next sequence: counter row missing")
	}
	var seq int64
	if err := rows.Scan(&seq); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
