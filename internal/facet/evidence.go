package facet

import "time"

// #region evidence

// SnippetCap bounds the stored snippet list per facet. The occurrence
// counter keeps advancing past the cap; the list is a bounded sample, the
// counter is the evidence measure.
const SnippetCap = 10

// Evidence accumulates extraction output for one facet of one thread:
// a bounded ordered snippet list, a monotonic occurrence counter, and the
// time of the last applied snippet.
type Evidence struct {
	Snippets    []string
	Occurrences int
	UpdatedAt   time.Time
}

// apply folds one snippet into the evidence. The snippet is stored only
// while under SnippetCap; the counter and timestamp always advance.
func (e *Evidence) apply(snippet string, now time.Time) {
	if len(e.Snippets) < SnippetCap {
		e.Snippets = append(e.Snippets, snippet)
	}
	e.Occurrences++
	e.UpdatedAt = now
}

// #endregion evidence

// #region thread-state

// ThreadState holds the six evidence records for one thread. It is owned by
// exactly one segment loop at a time; concurrent mutation across threads is
// safe because no two ThreadStates share memory.
type ThreadState struct {
	ThreadID string
	Evidence [Count]Evidence
}

// NewThreadState returns an empty state for the given thread.
func NewThreadState(threadID string) *ThreadState {
	return &ThreadState{ThreadID: threadID}
}

// Apply folds one snippet into the named facet's evidence. This is the only
// mutation path for evidence; counters never decrease.
func (s *ThreadState) Apply(f Facet, snippet string, now time.Time) {
	s.Evidence[f].apply(snippet, now)
}

// #endregion thread-state
