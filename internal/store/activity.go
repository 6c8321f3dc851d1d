package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// activityRepo implements ActivityRepo on the activity_events table.
type activityRepo struct {
	drv *entsql.Driver
}

type activityRow struct {
	ID          int    `sql:"id"`
	Sequence    int64  `sql:"sequence"`
	Timestamp   int64  `sql:"timestamp"`
	VisitID     string `sql:"visit_id"`
	UserID      int    `sql:"user_id"`
	NarrativeID string `sql:"narrative_id"`
	ResponseID  int    `sql:"response_id"`
	Kind        string `sql:"kind"`
	Correct     *bool  `sql:"correct"`
	Detail      string `sql:"detail"`
}

func (r *activityRepo) Append(ctx context.Context, data ActivityEventData) error {
	ins := builder().Insert(tableActivity).
		Set("visit_id", data.VisitID).
		Set("user_id", data.UserID).
		Set("narrative_id", data.NarrativeID).
		Set("response_id", data.ResponseID).
		Set("kind", string(data.Kind)).
		Set("detail", data.Detail)
	if data.Correct != nil {
		ins.Set("correct", *data.Correct)
	}
	if _, err := insertEvent(ctx, r.drv, ins); err != nil {
		return fmt.Errorf("save activity event: %w", err)
	}
	return nil
}

func (r *activityRepo) Query(ctx context.Context, userID int, opts QueryOpts) ([]ActivityRecord, error) {
	b := builder()
	sel := b.Select("id", "sequence", "timestamp", "visit_id", "user_id",
		"narrative_id", "response_id", "kind", "correct", "detail").
		From(b.Table(tableActivity)).
		OrderBy(entsql.Desc("sequence"))
	if userID != 0 {
		sel.Where(entsql.EQ("user_id", userID))
	}
	applyQueryOpts(sel, opts)

	var rows []activityRow
	if err := scanAll(ctx, r.drv, sel, &rows); err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}

	records := make([]ActivityRecord, len(rows))
	for i, row := range rows {
		records[i] = ActivityRecord{
			ID:        row.ID,
			Sequence:  row.Sequence,
			Timestamp: fromMillis(row.Timestamp),
			ActivityEventData: ActivityEventData{
				VisitID:     row.VisitID,
				UserID:      row.UserID,
				NarrativeID: row.NarrativeID,
				ResponseID:  row.ResponseID,
				Kind:        ActivityKind(row.Kind),
				Correct:     row.Correct,
				Detail:      row.Detail,
			},
		}
	}
	return records, nil
}

type activityCountRow struct {
	Kind  string `sql:"kind"`
	Count int    `sql:"n"`
}

func (r *activityRepo) CountByKind(ctx context.Context, userID int) ([]ActivityCount, error) {
	b := builder()
	sel := b.Select("kind", entsql.As(entsql.Count("*"), "n")).
		From(b.Table(tableActivity)).
		GroupBy("kind").
		OrderBy("kind")
	if userID != 0 {
		sel.Where(entsql.EQ("user_id", userID))
	}

	var rows []activityCountRow
	if err := scanAll(ctx, r.drv, sel, &rows); err != nil {
		return nil, fmt.Errorf("count activity: %w", err)
	}

	counts := make([]ActivityCount, len(rows))
	for i, row := range rows {
		counts[i] = ActivityCount{Kind: ActivityKind(row.Kind), Count: row.Count}
	}
	return counts, nil
}
