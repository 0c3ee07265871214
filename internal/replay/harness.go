package replay

// #region imports
import (
	"fmt"
	"strings"
	"time"

	"github.com/dicelabs/dice-engine/internal/facet"
	"github.com/dicelabs/dice-engine/internal/modes"
	"github.com/dicelabs/dice-engine/internal/processor"
	"github.com/dicelabs/dice-engine/internal/rotation"
	"github.com/dicelabs/dice-engine/internal/schedule"
)

// #endregion

// #region types

// Mismatch reports one divergence between a replayed pass and the
// fixture's expectation.
type Mismatch struct {
	SegmentIndex int
	Pass         int
	Field        string // "trigger" | "order" | "pass_count"
	Want         string
	Got          string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("segment %d pass %d: %s mismatch: want %s, got %s",
		m.SegmentIndex, m.Pass, m.Field, m.Want, m.Got)
}

// Summary aggregates one replay run.
type Summary struct {
	Passes     int
	Mismatches []Mismatch
	FinalState *facet.ThreadState
}

// #endregion types

// #region run

// Run replays a fixture through the real processor from an empty thread
// state, entirely in-memory, and compares each pass against the fixture's
// expectations. The clock is pinned to the fixture's base time so decay is
// reproducible.
func Run(fx Fixture) (Summary, error) {
	resolver, err := modes.NewResolver(nil)
	if err != nil {
		return Summary{}, err
	}
	mode, err := modes.ParseMode(fx.Mode)
	if err != nil {
		return Summary{}, err
	}

	byText := make(map[string]map[string][]string, len(fx.Segments))
	segments := make([]processor.Segment, 0, len(fx.Segments))
	for _, seg := range fx.Segments {
		byText[seg.Text] = seg.Extractions
		segments = append(segments, processor.Segment{Index: seg.Index, Text: seg.Text})
	}

	var set processor.ExtractorSet
	for _, f := range facet.All() {
		f := f
		set[f] = func(text string, ev facet.Evidence) ([]string, error) {
			return byText[text][f.String()], nil
		}
	}

	state := facet.NewThreadState(fx.ThreadID)
	proc := processor.New(rotation.NewOrchestrator(schedule.NewSelector()), resolver)
	results, err := proc.Process(state, segments, set, processor.Options{
		Mode:         mode,
		SafeMode:     fx.SafeMode,
		EmpiricalMix: fx.EmpiricalMix,
		Clock:        func() time.Time { return fx.BaseTime },
	})
	if err != nil {
		return Summary{}, fmt.Errorf("replay %s: %w", fx.ThreadID, err)
	}

	summary := Summary{Passes: len(results), FinalState: state}

	if len(results) != len(fx.Expected) {
		summary.Mismatches = append(summary.Mismatches, Mismatch{
			Field: "pass_count",
			Want:  fmt.Sprintf("%d", len(fx.Expected)),
			Got:   fmt.Sprintf("%d", len(results)),
		})
		return summary, nil
	}

	for i, exp := range fx.Expected {
		got := results[i]
		if got.SegmentIndex != exp.SegmentIndex || got.Pass != exp.Pass {
			summary.Mismatches = append(summary.Mismatches, Mismatch{
				SegmentIndex: exp.SegmentIndex, Pass: exp.Pass,
				Field: "pass_count",
				Want:  fmt.Sprintf("segment %d pass %d", exp.SegmentIndex, exp.Pass),
				Got:   fmt.Sprintf("segment %d pass %d", got.SegmentIndex, got.Pass),
			})
			continue
		}
		if string(got.Rotation.Trigger) != exp.Trigger {
			summary.Mismatches = append(summary.Mismatches, Mismatch{
				SegmentIndex: exp.SegmentIndex, Pass: exp.Pass,
				Field: "trigger",
				Want:  exp.Trigger,
				Got:   string(got.Rotation.Trigger),
			})
		}
		if len(exp.Order) > 0 {
			want := strings.Join(exp.Order, ",")
			if gotOrder := OrderString(got.Rotation.Order); gotOrder != want {
				summary.Mismatches = append(summary.Mismatches, Mismatch{
					SegmentIndex: exp.SegmentIndex, Pass: exp.Pass,
					Field: "order",
					Want:  want,
					Got:   gotOrder,
				})
			}
		}
	}

	return summary, nil
}

// OrderString joins a facet order into the comma form used by fixtures and
// the rotation log.
func OrderString(order [facet.Count]facet.Facet) string {
	names := make([]string, facet.Count)
	for i, f := range order {
		names[i] = f.String()
	}
	return strings.Join(names, ",")
}

// #endregion run
