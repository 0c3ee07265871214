package rotation

import "github.com/dicelabs/dice-engine/internal/facet"

// #region safe-mode

// Stabilize applies the safe-mode policy: the two grounding facets go to
// the front, definition before mechanism, and the remaining four keep
// their relative order from the base permutation. The orchestrator never
// calls this once a collapse has fired for the same request.
func Stabilize(base [facet.Count]facet.Facet) [facet.Count]facet.Facet {
	var out [facet.Count]facet.Facet
	out[0] = facet.What
	out[1] = facet.How
	i := 2
	for _, f := range base {
		if f == facet.What || f == facet.How {
			continue
		}
		out[i] = f
		i++
	}
	return out
}

// #endregion safe-mode
