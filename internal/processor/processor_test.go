package processor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dicelabs/dice-engine/internal/facet"
	"github.com/dicelabs/dice-engine/internal/modes"
	"github.com/dicelabs/dice-engine/internal/rotation"
	"github.com/dicelabs/dice-engine/internal/schedule"
)

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func newProcessor(t *testing.T) *Processor {
	t.Helper()
	resolver, err := modes.NewResolver(nil)
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	return New(rotation.NewOrchestrator(schedule.NewSelector()), resolver)
}

// scriptedSet returns an extractor set that yields one snippet per call and
// records the invocation sequence.
func scriptedSet(calls *[]facet.Facet) ExtractorSet {
	var set ExtractorSet
	for _, f := range facet.All() {
		f := f
		set[f] = func(text string, ev facet.Evidence) ([]string, error) {
			*calls = append(*calls, f)
			return []string{fmt.Sprintf("%s evidence from %q", f, text)}, nil
		}
	}
	return set
}

func TestProcessRunsExtractorsInRotationOrder(t *testing.T) {
	p := newProcessor(t)
	state := facet.NewThreadState("thread-1")
	var calls []facet.Facet

	results, err := p.Process(state, []Segment{{Index: 0, Text: "intro"}}, scriptedSet(&calls),
		Options{Mode: modes.ModeOpen, Clock: fixedClock})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 pass result, got %d", len(results))
	}
	if len(calls) != facet.Count {
		t.Fatalf("expected %d extractor calls, got %d", facet.Count, len(calls))
	}
	for i, f := range results[0].Rotation.Order {
		if calls[i] != f {
			t.Fatalf("call %d was %v, rotation order says %v", i, calls[i], f)
		}
	}
}

func TestProcessReproducible(t *testing.T) {
	p := newProcessor(t)
	segments := []Segment{{Index: 0, Text: "a"}, {Index: 1, Text: "b"}, {Index: 2, Text: "c"}}
	opts := Options{Mode: modes.ModeNatural, Clock: fixedClock}

	var callsA, callsB []facet.Facet
	ra, err := p.Process(facet.NewThreadState("thread-123"), segments, scriptedSet(&callsA), opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	rb, err := p.Process(facet.NewThreadState("thread-123"), segments, scriptedSet(&callsB), opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	for i := range ra {
		if ra[i].Rotation.Order != rb[i].Rotation.Order {
			t.Fatalf("pass %d orders differ: %v vs %v", i, ra[i].Rotation.Order, rb[i].Rotation.Order)
		}
	}
}

func TestDualPassInterdisciplinary(t *testing.T) {
	p := newProcessor(t)
	state := facet.NewThreadState("thread-1")
	var calls []facet.Facet

	results, err := p.Process(state, []Segment{{Index: 0, Text: "mixed content"}}, scriptedSet(&calls),
		Options{Mode: modes.ModeInterdisciplinary, EmpiricalMix: 0.5, Clock: fixedClock})
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 passes for one segment, got %d", len(results))
	}
	if results[0].Weights != modes.Empirical || results[1].Weights != modes.Interpretive {
		t.Fatal("dual-pass should run the empirical endpoint then the interpretive endpoint")
	}
	if len(calls) != 2*facet.Count {
		t.Fatalf("every extractor should run exactly twice, got %d calls", len(calls))
	}

	perFacet := map[facet.Facet]int{}
	for _, f := range calls {
		perFacet[f]++
	}
	for _, f := range facet.All() {
		if perFacet[f] != 2 {
			t.Fatalf("facet %v invoked %d times, want 2", f, perFacet[f])
		}
		if state.Evidence[f].Occurrences != 2 {
			t.Fatalf("facet %v occurrence counter %d, want 2", f, state.Evidence[f].Occurrences)
		}
	}
}

func TestDualPassSecondPassSeesFirstPassFolds(t *testing.T) {
	p := newProcessor(t)
	state := facet.NewThreadState("thread-1")
	var calls []facet.Facet

	results, err := p.Process(state, []Segment{{Index: 0, Text: "x"}}, scriptedSet(&calls),
		Options{Mode: modes.ModeInterdisciplinary, Clock: fixedClock})
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	for _, f := range facet.All() {
		if results[0].Scores[f] != 0 {
			t.Fatalf("first pass should start from empty scores, got %f for %v", results[0].Scores[f], f)
		}
		if results[1].Scores[f] == 0 {
			t.Fatalf("second pass scores should reflect first pass folds, got 0 for %v", f)
		}
	}
}

func TestExtractorFailurePreservesEarlierFolds(t *testing.T) {
	p := newProcessor(t)
	state := facet.NewThreadState("thread-1")

	var calls []facet.Facet
	set := scriptedSet(&calls)
	boom := errors.New("model unavailable")

	// Fail on the third facet of the rotation order for this request.
	order := rotation.NewOrchestrator(schedule.NewSelector()).
		Rotate(rotation.Request{ThreadID: "thread-1", SegmentIndex: 0}).Order
	failing := order[2]
	set[failing] = func(text string, ev facet.Evidence) ([]string, error) {
		return nil, boom
	}

	_, err := p.Process(state, []Segment{{Index: 0, Text: "x"}}, set,
		Options{Mode: modes.ModeOpen, Clock: fixedClock})
	if !errors.Is(err, boom) {
		t.Fatalf("expected extractor error to propagate, got %v", err)
	}

	for i, f := range order {
		want := 0
		if i < 2 {
			want = 1
		}
		if state.Evidence[f].Occurrences != want {
			t.Fatalf("facet %v occurrences %d, want %d after failure at position 2",
				f, state.Evidence[f].Occurrences, want)
		}
	}
}

func TestMissingExtractorFatal(t *testing.T) {
	p := newProcessor(t)
	state := facet.NewThreadState("thread-1")

	var calls []facet.Facet
	set := scriptedSet(&calls)
	set[facet.Where] = nil

	_, err := p.Process(state, []Segment{{Index: 0, Text: "x"}}, set,
		Options{Mode: modes.ModeOpen, Clock: fixedClock})
	if err == nil {
		t.Fatal("expected error for missing extractor")
	}
	if len(calls) != 0 {
		t.Fatal("no extractor should run when the set is incomplete")
	}
	for _, f := range facet.All() {
		if state.Evidence[f].Occurrences != 0 {
			t.Fatal("state must be untouched when the set is incomplete")
		}
	}
}

func TestUnknownModeRejected(t *testing.T) {
	p := newProcessor(t)
	var calls []facet.Facet

	_, err := p.Process(facet.NewThreadState("t"), nil, scriptedSet(&calls), Options{Mode: "astrology"})
	if err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestCancellationKeepsCompletedFolds(t *testing.T) {
	p := newProcessor(t)
	state := facet.NewThreadState("thread-1")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls []facet.Facet
	var set ContextExtractorSet
	for _, f := range facet.All() {
		f := f
		set[f] = func(ctx context.Context, text string, ev facet.Evidence) ([]string, error) {
			calls = append(calls, f)
			if len(calls) == 3 {
				cancel() // takes effect before the next facet starts
			}
			return []string{"snippet"}, nil
		}
	}

	_, err := p.ProcessContext(ctx, state, []Segment{{Index: 0, Text: "x"}}, set,
		Options{Mode: modes.ModeOpen, Clock: fixedClock})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(calls) != 3 {
		t.Fatalf("expected 3 extractor calls before cancellation, got %d", len(calls))
	}

	total := 0
	for _, f := range facet.All() {
		total += state.Evidence[f].Occurrences
	}
	if total != 3 {
		t.Fatalf("evidence should reflect exactly the completed folds, got %d", total)
	}
}

func TestSyncAndContextContractsMatch(t *testing.T) {
	p := newProcessor(t)
	segments := []Segment{{Index: 0, Text: "alpha"}, {Index: 1, Text: "beta"}}
	opts := Options{Mode: modes.ModeSocial, SafeMode: true, Clock: fixedClock}

	syncState := facet.NewThreadState("thread-9")
	var syncCalls []facet.Facet
	if _, err := p.Process(syncState, segments, scriptedSet(&syncCalls), opts); err != nil {
		t.Fatalf("sync: %v", err)
	}

	ctxState := facet.NewThreadState("thread-9")
	var ctxCalls []facet.Facet
	if _, err := p.ProcessContext(context.Background(), ctxState, segments,
		scriptedSet(&ctxCalls).withContext(), opts); err != nil {
		t.Fatalf("context: %v", err)
	}

	if len(syncCalls) != len(ctxCalls) {
		t.Fatalf("call counts differ: %d vs %d", len(syncCalls), len(ctxCalls))
	}
	for i := range syncCalls {
		if syncCalls[i] != ctxCalls[i] {
			t.Fatalf("call %d differs: %v vs %v", i, syncCalls[i], ctxCalls[i])
		}
	}
	for _, f := range facet.All() {
		if syncState.Evidence[f].Occurrences != ctxState.Evidence[f].Occurrences {
			t.Fatalf("evidence for %v differs between contracts", f)
		}
	}
}
