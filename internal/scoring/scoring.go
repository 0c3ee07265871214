package scoring

import (
	"time"

	"github.com/dicelabs/dice-engine/internal/facet"
)

// #region constants

const (
	// presenceBase is granted once any snippet has been folded.
	presenceBase = 0.2
	// occurrenceBonus grows confidence roughly linearly with confirmations.
	occurrenceBonus = 0.08
	// hourlyDecay erodes confidence as evidence goes stale.
	hourlyDecay = 0.02
)

// #endregion constants

// #region scores

// Scores holds one confidence value in [0,1] per facet. Always derived
// fresh from thread state at scheduling time; decay depends on the clock,
// so cached scores would drift.
type Scores [facet.Count]float64

// Max returns the highest score.
func (s Scores) Max() float64 {
	m := s[0]
	for _, v := range s[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// #endregion scores

// #region score

// Score computes the confidence for one evidence record at the given time:
// presence base + per-occurrence bonus − hourly staleness decay, clamped
// to [0,1]. Pure function of its inputs.
func Score(ev facet.Evidence, now time.Time) float64 {
	if len(ev.Snippets) == 0 && ev.Occurrences == 0 {
		return 0
	}
	base := presenceBase
	bonus := float64(ev.Occurrences) * occurrenceBonus
	decay := 0.0
	if !ev.UpdatedAt.IsZero() {
		hours := now.Sub(ev.UpdatedAt).Hours()
		if hours > 0 {
			decay = hours * hourlyDecay
		}
	}
	return clamp(base + bonus - decay)
}

// ScoreAll computes all six facet scores for a thread.
func ScoreAll(state *facet.ThreadState, now time.Time) Scores {
	var s Scores
	for _, f := range facet.All() {
		s[f] = Score(state.Evidence[f], now)
	}
	return s
}

// #endregion score

// #region clamp

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion clamp
