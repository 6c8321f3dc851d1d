package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// applyQueryOpts adds the QueryOpts filters to an event table selector.
func applyQueryOpts(sel *entsql.Selector, opts QueryOpts) *entsql.Selector {
	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", toMillis(opts.From)))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("timestamp", toMillis(opts.To)))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	return sel
}

// scanAll runs a built query and scans every row into dst, a pointer to a
// slice of structs tagged with `sql:"column"`.
func scanAll(ctx context.Context, q dialect.ExecQuerier, b entsql.Querier, dst any) error {
	query, args := b.Query()
	rows := &entsql.Rows{}
	if err := q.Query(ctx, query, args, rows); err != nil {
		return err
	}
	defer rows.Close()
	if err := entsql.ScanSlice(rows, dst); err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	return nil
}

func exec(ctx context.Context, e dialect.ExecQuerier, b entsql.Querier) error {
	query, args := b.Query()
	return e.Exec(ctx, query, args, nil)
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
