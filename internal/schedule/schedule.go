package schedule

import (
	"fmt"
	"strconv"

	"github.com/dicelabs/dice-engine/internal/facet"
)

// #region table

// defaultTable is the built-in permutation schedule. Every entry is a full
// ordering of the six facets and every facet leads at least one entry, so
// any thread sees every perspective first over enough segments. Computed
// once at startup, read-only afterwards.
var defaultTable = [][facet.Count]facet.Facet{
	{facet.What, facet.How, facet.Why, facet.When, facet.Where, facet.Who},
	{facet.How, facet.Why, facet.What, facet.Who, facet.When, facet.Where},
	{facet.When, facet.What, facet.Who, facet.How, facet.Why, facet.Where},
	{facet.Who, facet.Why, facet.What, facet.How, facet.Where, facet.When},
	{facet.Why, facet.How, facet.What, facet.Where, facet.Who, facet.When},
	{facet.Where, facet.When, facet.What, facet.Why, facet.How, facet.Who},
	{facet.What, facet.Why, facet.Who, facet.When, facet.How, facet.Where},
	{facet.How, facet.What, facet.Where, facet.Why, facet.When, facet.Who},
}

// #endregion table

// #region selector

// Selector deterministically maps (threadID, segmentIndex) to one schedule
// entry. Same inputs always yield the same base order: no randomness, no
// clock, no map iteration.
type Selector struct {
	table [][facet.Count]facet.Facet
}

// NewSelector returns a selector over the built-in schedule.
func NewSelector() *Selector {
	s, _ := NewSelectorWithTable(defaultTable)
	return s
}

// NewSelectorWithTable builds a selector over a custom schedule. An empty
// table or an entry that is not a full permutation is a configuration
// error, surfaced here rather than mid-run.
func NewSelectorWithTable(table [][facet.Count]facet.Facet) (*Selector, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("permutation schedule is empty")
	}
	for i, entry := range table {
		var seen [facet.Count]bool
		for _, f := range entry {
			if !f.Valid() || seen[f] {
				return nil, fmt.Errorf("schedule entry %d is not a permutation of all facets", i)
			}
			seen[f] = true
		}
	}
	return &Selector{table: table}, nil
}

// Select returns the base facet order for the given thread and segment.
// The returned array is a copy; callers may reorder it freely.
func (s *Selector) Select(threadID string, segmentIndex int) [facet.Count]facet.Facet {
	key := threadID + ":" + strconv.Itoa(segmentIndex)
	h := 0
	for _, b := range []byte(key) {
		h = h*31 + int(b)
		h &= 0x7fffffff // wrap non-negative
	}
	return s.table[h%len(s.table)]
}

// Size returns the number of schedule entries.
func (s *Selector) Size() int {
	return len(s.table)
}

// #endregion selector
