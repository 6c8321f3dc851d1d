package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "feelio.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, table := range []string{tableIdentities, tableLLMRequests, tableActivity, tableSequence} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feelio.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	err = s.IdentityRepo().Save(ctx, SessionRecord{
		Active: &IdentityRecord{UserID: 7, Name: "Rina", Role: "kid", Segment: 1},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	rec, err := s.IdentityRepo().Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec == nil || rec.Active.UserID != 7 {
		t.Fatalf("identity after reopen = %+v, want user 7", rec)
	}
}

func TestIdentityLoadEmpty(t *testing.T) {
	s := openTestStore(t)
	rec, err := s.IdentityRepo().Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil session, got %+v", rec)
	}
}

func TestIdentitySaveReplaces(t *testing.T) {
	s := openTestStore(t)
	repo := s.IdentityRepo()
	ctx := context.Background()

	caregiver := &IdentityRecord{UserID: 1, Name: "Bu Ani", Email: "ani@example.com", Role: "pendamping", Segment: 2}
	child := &IdentityRecord{UserID: 2, Name: "Dodi", Role: "kid", Segment: 1}

	if err := repo.Save(ctx, SessionRecord{Active: child, Impersonator: caregiver}); err != nil {
		t.Fatalf("save impersonation: %v", err)
	}
	rec, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec.Active.UserID != 2 || rec.Impersonator == nil || rec.Impersonator.UserID != 1 {
		t.Fatalf("loaded %+v / %+v", rec.Active, rec.Impersonator)
	}
	if rec.Impersonator.Email != "ani@example.com" {
		t.Errorf("impersonator email = %q", rec.Impersonator.Email)
	}
	if rec.SavedAt.IsZero() {
		t.Error("expected SavedAt to be set")
	}

	// Returning to the caregiver drops the impersonator row.
	if err := repo.Save(ctx, SessionRecord{Active: caregiver}); err != nil {
		t.Fatalf("save caregiver: %v", err)
	}
	rec, err = repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec.Active.UserID != 1 {
		t.Errorf("active = %d, want 1", rec.Active.UserID)
	}
	if rec.Impersonator != nil {
		t.Errorf("impersonator = %+v, want nil", rec.Impersonator)
	}
}

func TestIdentityClear(t *testing.T) {
	s := openTestStore(t)
	repo := s.IdentityRepo()
	ctx := context.Background()

	if err := repo.Save(ctx, SessionRecord{Active: &IdentityRecord{UserID: 3, Role: "kid"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	rec, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil after clear, got %+v", rec)
	}

	// Saving without an active identity is a clear too.
	if err := repo.Save(ctx, SessionRecord{Active: &IdentityRecord{UserID: 3, Role: "kid"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Save(ctx, SessionRecord{}); err != nil {
		t.Fatalf("save empty: %v", err)
	}
	if rec, _ := repo.Load(ctx); rec != nil {
		t.Fatalf("expected nil after empty save, got %+v", rec)
	}
}

func TestSequenceSharedAcrossTables(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.EventRepo().AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Model: "m", Purpose: "feedback"}); err != nil {
		t.Fatalf("append llm: %v", err)
	}
	if err := s.ActivityRepo().Append(ctx, ActivityEventData{UserID: 1, Kind: ActivitySubmit}); err != nil {
		t.Fatalf("append activity: %v", err)
	}

	next, err := nextSequence(ctx, s.drv)
	if err != nil {
		t.Fatalf("next sequence: %v", err)
	}
	if next != 3 {
		t.Errorf("next = %d, want 3 after two events", next)
	}
}

func TestFailedInsertKeepsSequence(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	bad := builder().Insert("no_such_table").Set("x", 1)
	if _, err := insertEvent(ctx, s.drv, bad); err == nil {
		t.Fatal("expected insert into a missing table to fail")
	}
	next, err := nextSequence(ctx, s.drv)
	if err != nil {
		t.Fatalf("next sequence: %v", err)
	}
	if next != 1 {
		t.Errorf("next = %d, want 1: failed insert consumed a number", next)
	}
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "openai", Model: "gpt-4o", Purpose: "feedback", InputTokens: 100, OutputTokens: 40, LatencyMs: 800, Success: true, RequestBody: `{"a":1}`, ResponseBody: `{"feedback":"x"}`},
		{Provider: "openai", Model: "gpt-4o", Purpose: "followup", InputTokens: 120, OutputTokens: 60, LatencyMs: 1200, Success: true},
		{Provider: "anthropic", Model: "claude-haiku-4-5", Purpose: "feedback", InputTokens: 90, OutputTokens: 30, LatencyMs: 400, Success: false, ErrorMessage: "rate limited"},
	}
	for i, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	got, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Model != "claude-haiku-4-5" || got[0].Success {
		t.Errorf("newest event = %+v", got[0])
	}
	if got[0].Sequence <= got[1].Sequence {
		t.Errorf("expected newest first, got sequences %d, %d", got[0].Sequence, got[1].Sequence)
	}

	limited, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1})
	if err != nil {
		t.Fatalf("query limit: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limited len = %d, want 1", len(limited))
	}

	first, err := repo.GetLLMEvent(ctx, got[2].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if first == nil || first.ResponseBody != `{"feedback":"x"}` {
		t.Fatalf("get = %+v", first)
	}
	if time.Since(first.Timestamp) > time.Minute {
		t.Errorf("timestamp %v not recent", first.Timestamp)
	}

	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing event")
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("purposes = %d, want 2", len(byPurpose))
	}
	if byPurpose[0].Purpose != "feedback" || byPurpose[0].Calls != 2 || byPurpose[0].InputTokens != 190 {
		t.Errorf("feedback usage = %+v", byPurpose[0])
	}
	if byPurpose[0].AvgLatencyMs != 600 {
		t.Errorf("avg latency = %d, want 600", byPurpose[0].AvgLatencyMs)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 2 || byModel[1].Model != "gpt-4o" || byModel[1].OutputTokens != 100 {
		t.Errorf("usage by model = %+v", byModel)
	}
}

func TestActivityJournal(t *testing.T) {
	s := openTestStore(t)
	repo := s.ActivityRepo()
	ctx := context.Background()

	yes, no := true, false
	entries := []ActivityEventData{
		{VisitID: "v1", UserID: 5, NarrativeID: "N01", ResponseID: 11, Kind: ActivitySubmit, Correct: &yes},
		{VisitID: "v1", UserID: 5, NarrativeID: "N02", ResponseID: 12, Kind: ActivitySubmit, Correct: &no},
		{VisitID: "v1", UserID: 5, NarrativeID: "N02", ResponseID: 12, Kind: ActivityFlag},
		{UserID: 9, NarrativeID: "N01", ResponseID: 30, Kind: ActivityRepeatable},
	}
	for i, e := range entries {
		if err := repo.Append(ctx, e); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	got, err := repo.Query(ctx, 5, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Kind != ActivityFlag || got[0].Correct != nil {
		t.Errorf("newest = %+v", got[0])
	}
	if got[2].Correct == nil || !*got[2].Correct {
		t.Errorf("first submit correct = %v, want true", got[2].Correct)
	}
	if got[1].Correct == nil || *got[1].Correct {
		t.Errorf("second submit correct = %v, want false", got[1].Correct)
	}

	all, err := repo.Query(ctx, 0, QueryOpts{After: got[0].Sequence})
	if err != nil {
		t.Fatalf("query after: %v", err)
	}
	if len(all) != 1 || all[0].UserID != 9 {
		t.Errorf("after query = %+v", all)
	}

	counts, err := repo.CountByKind(ctx, 5)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	want := []ActivityCount{{ActivityFlag, 1}, {ActivitySubmit, 2}}
	if len(counts) != len(want) {
		t.Fatalf("counts = %+v, want %+v", counts, want)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("counts[%d] = %+v, want %+v", i, counts[i], want[i])
		}
	}
}

func TestDefaultDBPath(t *testing.T) {
	t.Run("env override", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "nested", "x.db")
		t.Setenv("FEELIO_DB", p)
		got, err := DefaultDBPath()
		if err != nil {
			t.Fatalf("DefaultDBPath: %v", err)
		}
		if got != p {
			t.Errorf("path = %q, want %q", got, p)
		}
	})

	t.Run("xdg data home", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("FEELIO_DB", "")
		t.Setenv("XDG_DATA_HOME", dir)
		got, err := DefaultDBPath()
		if err != nil {
			t.Fatalf("DefaultDBPath: %v", err)
		}
		if want := filepath.Join(dir, "feelio", "feelio.db"); got != want {
			t.Errorf("path = %q, want %q", got, want)
		}
	})
}
