package rotation

// #region imports
import (
	"github.com/dicelabs/dice-engine/internal/facet"
	"github.com/dicelabs/dice-engine/internal/modes"
	"github.com/dicelabs/dice-engine/internal/scoring"
)

// #endregion

// #region trigger

// Trigger records which policy produced the final order.
type Trigger string

const (
	TriggerBase     Trigger = "base"      // deterministic schedule entry, untouched
	TriggerCollapse Trigger = "collapse"  // dominance detected, weakest facet promoted
	TriggerSafeMode Trigger = "safe_mode" // grounding facets forced to the front
)

// #endregion trigger

// #region request

// Request asks for the facet execution order of one segment pass.
type Request struct {
	ThreadID     string
	SegmentIndex int
	Scores       scoring.Scores
	// Weights is the active discipline profile, nil when no mode applies.
	// Collapse weakest-facet selection is weight-aware when set.
	Weights  *modes.Weights
	SafeMode bool
}

// #endregion request

// #region result

// Result is always a full permutation of the six facets.
type Result struct {
	Order   [facet.Count]facet.Facet
	Trigger Trigger

	// Collapse details, meaningful only when Trigger == TriggerCollapse.
	Dominant facet.Facet
	Promoted facet.Facet
	Gap      float64
}

// #endregion result
