package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const (
	slotActive       = "active"
	slotImpersonator = "impersonator"
)

// identityRepo keeps at most two rows: the active identity and the
// impersonating caregiver.
type identityRepo struct {
	drv *entsql.Driver
}

type identityRow struct {
	Slot    string `sql:"slot"`
	UserID  int    `sql:"user_id"`
	Name    string `sql:"name"`
	Email   string `sql:"email"`
	Role    string `sql:"role"`
	Segment int    `sql:"segment"`
	SavedAt int64  `sql:"saved_at"`
}

func (r *identityRepo) Load(ctx context.Context) (*SessionRecord, error) {
	b := builder()
	sel := b.Select("slot", "user_id", "name", "email", "role", "segment", "saved_at").
		From(b.Table(tableIdentities))

	var rows []identityRow
	if err := scanAll(ctx, r.drv, sel, &rows); err != nil {
		return nil, fmt.Errorf("load identity: %w", err)
	}

	var rec SessionRecord
	for _, row := range rows {
		id := &IdentityRecord{
			UserID:  row.UserID,
			Name:    row.Name,
			Email:   row.Email,
			Role:    row.Role,
			Segment: row.Segment,
		}
		switch row.Slot {
		case slotActive:
			rec.Active = id
			rec.SavedAt = fromMillis(row.SavedAt)
		case slotImpersonator:
			rec.Impersonator = id
		}
	}
	// An impersonator row without an active identity is not a session.
	if rec.Active == nil {
		return nil, nil
	}
	return &rec, nil
}

func (r *identityRepo) Save(ctx context.Context, rec SessionRecord) error {
	if rec.Active == nil {
		return r.Clear(ctx)
	}
	savedAt := rec.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}

	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := exec(ctx, tx, builder().Delete(tableIdentities)); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear identity: %w", err)
	}

	ins := builder().Insert(tableIdentities).
		Columns("slot", "user_id", "name", "email", "role", "segment", "saved_at").
		Values(identityValues(slotActive, rec.Active, savedAt)...)
	if rec.Impersonator != nil {
		ins.Values(identityValues(slotImpersonator, rec.Impersonator, savedAt)...)
	}
	if err := exec(ctx, tx, ins); err != nil {
		tx.Rollback()
		return fmt.Errorf("save identity: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit identity: %w", err)
	}
	return nil
}

func (r *identityRepo) Clear(ctx context.Context) error {
	if err := exec(ctx, r.drv, builder().Delete(tableIdentities)); err != nil {
		return fmt.Errorf("clear identity: %w", err)
	}
	return nil
}

func identityValues(slot string, id *IdentityRecord, at time.Time) []any {
	return []any{slot, id.UserID, id.Name, id.Email, id.Role, id.Segment, toMillis(at)}
}
