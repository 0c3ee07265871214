package facet

import (
	"testing"
	"time"
)

func TestParseRoundTrip(t *testing.T) {
	for _, f := range All() {
		got, err := Parse(f.String())
		if err != nil {
			t.Fatalf("parse %q: %v", f.String(), err)
		}
		if got != f {
			t.Fatalf("parse %q: got %v, want %v", f.String(), got, f)
		}
	}
}

func TestParseUnknown(t *testing.T) {
	if _, err := Parse("whence"); err == nil {
		t.Fatal("expected error for unknown facet name")
	}
}

func TestFacesDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, f := range All() {
		face := f.Face()
		if seen[face] {
			t.Fatalf("duplicate die face %q", face)
		}
		seen[face] = true
	}
}

func TestApplyUnderCap(t *testing.T) {
	s := NewThreadState("t1")
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	s.Apply(How, "the reaction proceeds in two steps", now)

	ev := s.Evidence[How]
	if len(ev.Snippets) != 1 {
		t.Fatalf("expected 1 snippet, got %d", len(ev.Snippets))
	}
	if ev.Occurrences != 1 {
		t.Fatalf("expected 1 occurrence, got %d", ev.Occurrences)
	}
	if !ev.UpdatedAt.Equal(now) {
		t.Fatalf("expected UpdatedAt %v, got %v", now, ev.UpdatedAt)
	}
}

func TestApplyPastCapAdvancesCounter(t *testing.T) {
	s := NewThreadState("t1")
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < SnippetCap+5; i++ {
		s.Apply(Why, "snippet", now.Add(time.Duration(i)*time.Minute))
	}

	ev := s.Evidence[Why]
	if len(ev.Snippets) != SnippetCap {
		t.Fatalf("expected snippet list capped at %d, got %d", SnippetCap, len(ev.Snippets))
	}
	if ev.Occurrences != SnippetCap+5 {
		t.Fatalf("counter should advance past cap: got %d", ev.Occurrences)
	}
	want := now.Add(time.Duration(SnippetCap+4) * time.Minute)
	if !ev.UpdatedAt.Equal(want) {
		t.Fatalf("timestamp should refresh past cap: got %v, want %v", ev.UpdatedAt, want)
	}
}

func TestApplyIsolatedPerFacet(t *testing.T) {
	s := NewThreadState("t1")
	now := time.Now()

	s.Apply(What, "a group is a set with an operation", now)

	for _, f := range All() {
		if f == What {
			continue
		}
		if s.Evidence[f].Occurrences != 0 {
			t.Fatalf("facet %v mutated by apply to %v", f, What)
		}
	}
}
