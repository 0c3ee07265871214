package rotation

// #region imports
import (
	"log"

	"github.com/dicelabs/dice-engine/internal/schedule"
)

// #endregion

// #region orchestrator-struct

// Orchestrator composes the deterministic selector with the collapse and
// safe-mode overrides into the final facet execution order.
type Orchestrator struct {
	selector *schedule.Selector
	verbose  bool
}

// #endregion

// #region constructor

// NewOrchestrator wires an orchestrator over the given selector.
func NewOrchestrator(selector *schedule.Selector) *Orchestrator {
	return &Orchestrator{selector: selector}
}

// SetVerbose enables per-rotation decision logging.
func (o *Orchestrator) SetVerbose(v bool) {
	o.verbose = v
}

// #endregion

// #region rotate

// Rotate resolves one segment pass's order. Precedence: collapse override
// beats safe mode beats the base permutation. The result is always a full
// permutation of the six facets.
func (o *Orchestrator) Rotate(req Request) Result {
	base := o.selector.Select(req.ThreadID, req.SegmentIndex)

	rep := DetectCollapse(req.Scores)
	if rep.Collapsed {
		weak := WeakestFacet(req.Scores, req.Weights)
		if o.verbose {
			log.Printf("[ROT] collapse: thread=%s seg=%d dominant=%s gap=%.3f → promote %s",
				req.ThreadID, req.SegmentIndex, rep.Dominant, rep.Gap, weak)
		}
		return Result{
			Order:    promote(base, weak),
			Trigger:  TriggerCollapse,
			Dominant: rep.Dominant,
			Promoted: weak,
			Gap:      rep.Gap,
		}
	}

	if req.SafeMode {
		if o.verbose {
			log.Printf("[ROT] safe mode: thread=%s seg=%d → grounding facets first",
				req.ThreadID, req.SegmentIndex)
		}
		return Result{Order: Stabilize(base), Trigger: TriggerSafeMode}
	}

	return Result{Order: base, Trigger: TriggerBase}
}

// #endregion rotate
