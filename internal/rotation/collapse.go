package rotation

import (
	"sort"

	"github.com/dicelabs/dice-engine/internal/facet"
	"github.com/dicelabs/dice-engine/internal/modes"
	"github.com/dicelabs/dice-engine/internal/scoring"
)

// #region collapse-detection

// collapseGap is the max-minus-median distance at which one facet is
// considered to dominate the distribution.
const collapseGap = 0.3

// CollapseReport describes a dominance check over one score distribution.
type CollapseReport struct {
	Collapsed bool
	Dominant  facet.Facet
	Gap       float64
}

// DetectCollapse sorts the scores descending and flags dominance when the
// top score exceeds the median (sorted index 3 of 6) by collapseGap or more.
func DetectCollapse(scores scoring.Scores) CollapseReport {
	ranked := facet.All()
	order := ranked[:]
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	gap := scores[order[0]] - scores[order[3]]
	return CollapseReport{
		Collapsed: gap >= collapseGap,
		Dominant:  order[0],
		Gap:       gap,
	}
}

// #endregion collapse-detection

// #region weakest

// WeakestFacet picks the facet to promote after a collapse. With an active
// weight profile the pick maximizes weight[f] * (max - score[f]), so an
// underfed facet the discipline cares about beats a merely-lowest facet the
// discipline ignores. Without a profile it is the raw minimum. Ties break
// toward the lower facet slot for determinism.
func WeakestFacet(scores scoring.Scores, weights *modes.Weights) facet.Facet {
	if weights == nil {
		weakest := facet.How
		for _, f := range facet.All() {
			if scores[f] < scores[weakest] {
				weakest = f
			}
		}
		return weakest
	}

	max := scores.Max()
	weakest := facet.How
	best := -1.0
	for _, f := range facet.All() {
		deficit := weights[f] * (max - scores[f])
		if deficit > best {
			best = deficit
			weakest = f
		}
	}
	return weakest
}

// #endregion weakest

// #region promote

// promote moves lead to the front; the other five facets keep their
// relative order from the base permutation.
func promote(base [facet.Count]facet.Facet, lead facet.Facet) [facet.Count]facet.Facet {
	var out [facet.Count]facet.Facet
	out[0] = lead
	i := 1
	for _, f := range base {
		if f == lead {
			continue
		}
		out[i] = f
		i++
	}
	return out
}

// #endregion promote
