package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/adaptiq/internal/itembank"
	"github.com/abhisek/adaptiq/internal/llm"
	"github.com/abhisek/adaptiq/internal/scoring"
	"github.com/abhisek/adaptiq/internal/session"
	"github.com/abhisek/adaptiq/internal/stopping"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is covered by TestOpenFileDatabase.
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

func TestOpenFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adaptiq.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	var mode string
	require.NoError(t, s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode))
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	// Reopening runs the migration against existing tables.
	require.NoError(t, s.Close())
	s2, err := Open(path)
	require.NoError(t, err)
	s2.Close()
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Run("env override", func(t *testing.T) {
		want := filepath.Join(dir, "custom", "x.db")
		t.Setenv("ADAPTIQ_DB", want)
		got, err := DefaultDBPath()
		require.NoError(t, err)
		if got != want {
			t.Errorf("DefaultDBPath() = %q, want %q", got, want)
		}
		assert.DirExists(t, filepath.Dir(want))
	})

	t.Run("xdg", func(t *testing.T) {
		t.Setenv("ADAPTIQ_DB", "")
		t.Setenv("XDG_DATA_HOME", dir)
		got, err := DefaultDBPath()
		require.NoError(t, err)
		want := filepath.Join(dir, "adaptiq", "adaptiq.db")
		if got != want {
			t.Errorf("DefaultDBPath() = %q, want %q", got, want)
		}
	})
}

func TestSequenceMonotonic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var last int64
	for i := 0; i < 5; i++ {
		n, err := s.seq.Next(ctx)
		require.NoError(t, err)
		if n <= last {
			t.Fatalf("sequence %d after %d, want increasing", n, last)
		}
		last = n
	}
}

func TestSequenceSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "seq.db")

	s, err := Open(path)
	require.NoError(t, err)
	first, err := s.seq.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	next, err := s.seq.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), next)
}

func testSession(id, user string, updated time.Time) *session.Session {
	return &session.Session{
		ID:          id,
		UserID:      user,
		Sections:    []itembank.Section{itembank.SectionCoreMath},
		BankVersion: "v1.0.0",
		Theta:       0.4,
		Progress: map[itembank.Section]*session.SectionProgress{
			itembank.SectionCoreMath: {Section: itembank.SectionCoreMath, Administered: 1, Correct: 1},
		},
		Responses: []session.Response{{
			ItemID:         "m1",
			Section:        itembank.SectionCoreMath,
			Params:         itembank.Params{Discrimination: 1, Difficulty: 0, Guessing: 0.2},
			Answer:         "4",
			Correct:        true,
			ResponseTimeMs: 12000,
			ThetaAfter:     0.4,
			AnsweredAt:     updated,
		}},
		Status:    session.StatusActive,
		StartedAt: updated.Add(-time.Minute),
		UpdatedAt: updated,
	}
}

func TestSessionRepo_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.Sessions()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	in := testSession("s1", "u1", now)
	require.NoError(t, repo.SaveSession(ctx, in))

	got, err := repo.LoadSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, 0.4, got.Theta)
	require.Len(t, got.Responses, 1)
	assert.Equal(t, "m1", got.Responses[0].ItemID)
	assert.True(t, got.UpdatedAt.Equal(now))
	assert.Equal(t, 1, got.Progress[itembank.SectionCoreMath].Correct)

	// Saving again replaces the row.
	in.Status = session.StatusCompleted
	in.StopReason = stopping.AllSections
	in.Result = &scoring.ScoreResult{EIQ: 640}
	require.NoError(t, repo.SaveSession(ctx, in))

	got, err = repo.LoadSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, session.StatusCompleted, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, 640, got.Result.EIQ)
}

func TestSessionRepo_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Sessions().LoadSession(context.Background(), "missing")
	if !errors.Is(err, session.ErrNotFound) {
		t.Errorf("LoadSession(missing) err = %v, want ErrNotFound", err)
	}
}

func TestSessionRepo_ListIdleAndList(t *testing.T) {
	s := openTestStore(t)
	repo := s.Sessions()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	old := testSession("old", "u1", base)
	fresh := testSession("fresh", "u1", base.Add(time.Hour))
	done := testSession("done", "u2", base)
	done.Status = session.StatusCompleted
	for _, sess := range []*session.Session{old, fresh, done} {
		require.NoError(t, repo.SaveSession(ctx, sess))
	}

	idle, err := repo.ListIdle(ctx, base.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, idle)

	all, err := repo.List(ctx, ListOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "fresh", all[0].ID, "newest first")

	mine, err := repo.List(ctx, ListOpts{UserID: "u1", Status: session.StatusActive, Limit: 1})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "fresh", mine[0].ID)
	assert.Equal(t, 1, mine[0].Questions)
}

func TestEventRepo_SessionLogOrdered(t *testing.T) {
	s := openTestStore(t)
	events := s.Events()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, events.AppendSessionEvent(ctx, session.SessionEvent{
		SessionID: "s1", UserID: "u1", Action: "start", Status: session.StatusActive, BankVersion: "v1.0.0", At: now,
	}))
	require.NoError(t, events.AppendResponseEvent(ctx, session.ResponseEvent{
		SessionID: "s1", UserID: "u1", ItemID: "m1", Section: itembank.SectionCoreMath,
		Correct: true, ResponseTimeMs: 9000, ThetaAfter: 0.5, StandardError: 1.1, At: now,
	}))
	require.NoError(t, events.AppendResponseEvent(ctx, session.ResponseEvent{
		SessionID: "other", UserID: "u2", ItemID: "m2", Section: itembank.SectionCoreMath, At: now,
	}))
	require.NoError(t, events.AppendScoreEvent(ctx, session.ScoreEvent{
		SessionID: "s1", UserID: "u1", Result: scoring.ScoreResult{IQ: 108, EIQ: 640, Percentile: 69}, At: now,
	}))
	require.NoError(t, events.AppendSessionEvent(ctx, session.SessionEvent{
		SessionID: "s1", UserID: "u1", Action: "complete", Status: session.StatusCompleted,
		StopReason: stopping.AllSections, At: now,
	}))

	log, err := events.SessionLog(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, log, 4)

	kinds := make([]string, len(log))
	for i, e := range log {
		kinds[i] = e.Kind
		if i > 0 && e.Sequence <= log[i-1].Sequence {
			t.Errorf("entry %d sequence %d not after %d", i, e.Sequence, log[i-1].Sequence)
		}
	}
	assert.Equal(t, []string{"session", "response", "score", "session"}, kinds)
	assert.Contains(t, log[1].Summary, "m1")
	assert.Contains(t, log[2].Summary, "eiq=640")
	assert.Contains(t, log[3].Summary, "reason=all_sections")

	usage, err := events.ItemUsage(ctx, 0)
	require.NoError(t, err)
	require.Len(t, usage, 2)
}

func TestEventRepo_LLMRequests(t *testing.T) {
	s := openTestStore(t)
	events := s.Events()
	ctx := context.Background()

	logs := []llm.RequestLog{
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: llm.PurposeHint, InputTokens: 100, OutputTokens: 40, CostUSD: 0.001, LatencyMs: 300, Success: true, RequestBody: "{}"},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: llm.PurposeHint, InputTokens: 50, OutputTokens: 10, LatencyMs: 100, Success: false, ErrorMessage: "rate limited"},
		{Provider: "gemini", Model: "gemini-2.0-flash", Purpose: llm.PurposeDescription, InputTokens: 20, OutputTokens: 20, LatencyMs: 200, Success: true},
	}
	for _, l := range logs {
		require.NoError(t, events.AppendLLMRequest(ctx, l))
	}

	recent, err := events.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "gemini", recent[0].Provider, "newest first")

	got, err := events.GetLLMEvent(ctx, recent[1].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Success)
	assert.Equal(t, "rate limited", got.ErrorMessage)

	missing, err := events.GetLLMEvent(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byPurpose, err := events.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, "description", byPurpose[0].Purpose)
	assert.Equal(t, 2, byPurpose[1].Calls)
	assert.Equal(t, 150, byPurpose[1].InputTokens)
	assert.Equal(t, int64(200), byPurpose[1].AvgLatencyMs)

	byModel, err := events.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 2)
	assert.InDelta(t, 0.001, byModel[1].CostUSD, 1e-9)
}

func TestExposureRepo_Window(t *testing.T) {
	s := openTestStore(t)
	exp := s.Exposure(3)
	ctx := context.Background()
	now := time.Now()

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, exp.Record(ctx, "u1", id, now))
	}
	require.NoError(t, exp.Record(ctx, "u2", "a", now))

	recent, err := exp.Recent(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"c": true, "d": true, "e": true}, recent)

	pruned, err := exp.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pruned)

	other, err := exp.Recent(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"a": true}, other)
}

func TestBankRepo_SaveLatestRestore(t *testing.T) {
	s := openTestStore(t)
	banks := s.Banks()
	ctx := context.Background()

	latest, err := banks.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	item := func(id string, b float64) itembank.Item {
		return itembank.Item{
			ID:      id,
			Section: itembank.SectionCoreMath,
			Params:  itembank.Params{Discrimination: 1.2, Difficulty: b, Guessing: 0.2},
			Content: itembank.Content{Prompt: "Q " + id, Answer: "1"},
		}
	}
	v1, err := itembank.New("v1.0.0", []itembank.Item{item("a", 0)})
	require.NoError(t, err)
	v2, err := itembank.New("v1.10.0", []itembank.Item{item("a", 0), item("b", 1)})
	require.NoError(t, err)
	v0, err := itembank.New("v0.9.0", []itembank.Item{item("z", -1)})
	require.NoError(t, err)

	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, b := range []*itembank.Bank{v2, v0, v1} {
		require.NoError(t, banks.Save(ctx, b, at))
	}

	infos, err := banks.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 3)
	assert.Equal(t, "v0.9.0", infos[0].Version)
	assert.Equal(t, "v1.10.0", infos[2].Version, "semver order, not lexical")

	latest, err = banks.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "v1.10.0", latest.Version())
	assert.Equal(t, 2, latest.Len())

	reg := itembank.NewRegistry(v1)
	n, err := banks.Restore(ctx, reg)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "v1.10.0", reg.Current().Version())
	_, err = reg.Version("v0.9.0")
	assert.NoError(t, err)
}

func TestStoreBacksSessionService(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	bank, err := itembank.Seed()
	require.NoError(t, err)

	svc, err := session.NewService(session.DefaultConfig(), session.Options{
		Banks:    itembank.NewRegistry(bank),
		Store:    s.Sessions(),
		Exposure: s.Exposure(session.DefaultExposureWindow),
		Events:   s.Events(),
		IDs:      &session.SequentialIDs{Prefix: "db"},
	})
	require.NoError(t, err)

	sess, err := svc.StartSession(ctx, "learner", []itembank.Section{itembank.SectionCoreMath})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		it, err := svc.NextQuestion(ctx, sess.ID)
		require.NoError(t, err)
		_, err = svc.SubmitResponse(ctx, sess.ID, session.SubmitRequest{
			ItemID:         it.ID,
			Answer:         it.Content.Answer,
			ResponseTimeMs: 15000,
		})
		require.NoError(t, err)
	}

	res, err := svc.Complete(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, res.ItemsAnswered)

	stored, err := s.Sessions().LoadSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusCompleted, stored.Status)
	assert.Len(t, stored.Responses, 3)

	log, err := s.Events().SessionLog(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "session", log[0].Kind)
	assert.Equal(t, "session", log[len(log)-2].Kind)
	assert.Equal(t, "score", log[len(log)-1].Kind)

	seen, err := s.Exposure(0).Recent(ctx, "learner")
	require.NoError(t, err)
	assert.Len(t, seen, 3)
}
