package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/dicelabs/dice-engine/internal/facet"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "dice.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadUnknownThreadIsEmpty(t *testing.T) {
	s := newTestStore(t)

	state, err := s.LoadThread("never-seen")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, f := range facet.All() {
		if state.Evidence[f].Occurrences != 0 || len(state.Evidence[f].Snippets) != 0 {
			t.Fatalf("expected empty evidence for %v", f)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	state := facet.NewThreadState("thread-1")
	state.Apply(facet.What, "entropy is defined as expected surprise", now)
	state.Apply(facet.What, "it measures uncertainty", now.Add(time.Minute))
	state.Apply(facet.Who, "introduced by Shannon", now)

	if err := s.SaveThread(state); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := s.LoadThread("thread-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	what := loaded.Evidence[facet.What]
	if what.Occurrences != 2 || len(what.Snippets) != 2 {
		t.Fatalf("unexpected What evidence: %+v", what)
	}
	if what.Snippets[0] != "entropy is defined as expected surprise" {
		t.Fatalf("snippet order not preserved: %v", what.Snippets)
	}
	if !what.UpdatedAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("timestamp not preserved: %v", what.UpdatedAt)
	}
	if loaded.Evidence[facet.Who].Occurrences != 1 {
		t.Fatalf("unexpected Who evidence: %+v", loaded.Evidence[facet.Who])
	}
	if loaded.Evidence[facet.Why].Occurrences != 0 {
		t.Fatal("untouched facet should stay empty")
	}
}

func TestSaveIsUpsert(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()

	state := facet.NewThreadState("thread-1")
	state.Apply(facet.How, "first", now)
	if err := s.SaveThread(state); err != nil {
		t.Fatalf("save: %v", err)
	}

	state.Apply(facet.How, "second", now.Add(time.Hour))
	if err := s.SaveThread(state); err != nil {
		t.Fatalf("resave: %v", err)
	}

	loaded, err := s.LoadThread("thread-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Evidence[facet.How].Occurrences != 2 {
		t.Fatalf("expected 2 occurrences after upsert, got %d", loaded.Evidence[facet.How].Occurrences)
	}
}

func TestListThreads(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()

	for _, id := range []string{"thread-b", "thread-a"} {
		st := facet.NewThreadState(id)
		st.Apply(facet.What, "x", now)
		if err := s.SaveThread(st); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	ids, err := s.ListThreads()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 2 || ids[0] != "thread-a" || ids[1] != "thread-b" {
		t.Fatalf("unexpected thread list: %v", ids)
	}
}

func TestDeleteThread(t *testing.T) {
	s := newTestStore(t)

	st := facet.NewThreadState("thread-1")
	st.Apply(facet.What, "x", time.Now().UTC())
	if err := s.SaveThread(st); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.DeleteThread("thread-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	ids, err := s.ListThreads()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no threads after delete, got %v", ids)
	}
}

func TestRotationLogRoundTrip(t *testing.T) {
	s := newTestStore(t)

	entries := []RotationEntry{
		{ThreadID: "thread-1", SegmentIndex: 0, Mode: "open", TriggerType: "base",
			FacetOrder: "what,how,why,when,where,who"},
		{ThreadID: "thread-1", SegmentIndex: 1, Pass: 1, Mode: "interdisciplinary",
			TriggerType: "collapse", FacetOrder: "who,what,how,why,when,where",
			ScoresJSON: `{"how":0.9}`},
	}
	for _, e := range entries {
		if err := s.LogRotation(e); err != nil {
			t.Fatalf("log: %v", err)
		}
	}

	got, err := s.RecentRotations("thread-1", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	// Newest first.
	if got[0].SegmentIndex != 1 || got[0].TriggerType != "collapse" {
		t.Fatalf("unexpected first entry: %+v", got[0])
	}
	if got[0].RunID == "" {
		t.Fatal("run id should default when empty")
	}
	if got[1].ScoresJSON != "" {
		t.Fatalf("expected empty scores json, got %q", got[1].ScoresJSON)
	}
	if got[0].CreatedAt.IsZero() {
		t.Fatal("created_at should be set")
	}
}
