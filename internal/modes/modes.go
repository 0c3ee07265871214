package modes

import (
	"fmt"
	"math"

	"github.com/dicelabs/dice-engine/internal/facet"
)

// #region mode

// Mode is the lecture discipline, fixed per lecture at ingest.
type Mode string

const (
	ModeFormal            Mode = "formal"     // mathematics / formal systems
	ModeNatural           Mode = "natural"    // natural science
	ModeSocial            Mode = "social"     // social science
	ModeHumanities        Mode = "humanities" // humanities / philosophy
	ModeInterdisciplinary Mode = "interdisciplinary"
	ModeOpen              Mode = "open" // open / mixed content
)

// ParseMode validates a mode name from config or CLI input.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFormal, ModeNatural, ModeSocial, ModeHumanities, ModeInterdisciplinary, ModeOpen:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown lecture mode %q", s)
}

// #endregion mode

// #region weights

// Weights assigns one weight per facet, summing to 1.
type Weights [facet.Count]float64

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	var t float64
	for _, v := range w {
		t += v
	}
	return t
}

// validate rejects negative weights and sums off 1 beyond 1e-9.
func (w Weights) validate() error {
	for i, v := range w {
		if v < 0 {
			return fmt.Errorf("facet %v has negative weight %f", facet.Facet(i), v)
		}
	}
	if d := math.Abs(w.Sum() - 1.0); d > 1e-9 {
		return fmt.Errorf("weights sum to %f, want 1.0", w.Sum())
	}
	return nil
}

// #endregion weights

// #region profiles

// Weight order: How, What, When, Where, Who, Why.

// profiles holds the five fixed discipline vectors. Interdisciplinary has
// no fixed vector; it is interpolated from the hybrid endpoints.
var profiles = map[Mode]Weights{
	ModeFormal:     {0.30, 0.35, 0.08, 0.07, 0.05, 0.15},
	ModeNatural:    {0.30, 0.20, 0.10, 0.15, 0.05, 0.20},
	ModeSocial:     {0.10, 0.15, 0.15, 0.10, 0.25, 0.25},
	ModeHumanities: {0.10, 0.20, 0.10, 0.05, 0.25, 0.30},
	ModeOpen:       {0.20, 0.20, 0.15, 0.15, 0.15, 0.15},
}

// Hybrid endpoints, used only by interdisciplinary lectures: Empirical
// leans on mechanism and observation, Interpretive on rationale and
// attribution. Dual-pass processing runs one pass per endpoint.
var (
	Empirical    = Weights{0.30, 0.25, 0.15, 0.15, 0.05, 0.10}
	Interpretive = Weights{0.10, 0.15, 0.10, 0.05, 0.25, 0.35}
)

// #endregion profiles

// #region resolver

// Resolver maps lecture modes to weight vectors, including any
// config-supplied overrides. All vectors are validated at construction;
// a bad profile is never discovered mid-run.
type Resolver struct {
	profiles map[Mode]Weights
}

// NewResolver builds a resolver from the built-in profiles plus optional
// per-mode overrides. Interdisciplinary cannot be overridden: its vector
// is always interpolated.
func NewResolver(overrides map[Mode]Weights) (*Resolver, error) {
	merged := make(map[Mode]Weights, len(profiles))
	for m, w := range profiles {
		if err := w.validate(); err != nil {
			return nil, fmt.Errorf("builtin profile %s: %w", m, err)
		}
		merged[m] = w
	}
	for _, w := range []Weights{Empirical, Interpretive} {
		if err := w.validate(); err != nil {
			return nil, fmt.Errorf("hybrid endpoint: %w", err)
		}
	}
	for m, w := range overrides {
		if m == ModeInterdisciplinary {
			return nil, fmt.Errorf("interdisciplinary weights are interpolated, not configured")
		}
		if _, ok := merged[m]; !ok {
			return nil, fmt.Errorf("override for unknown mode %q", m)
		}
		if err := w.validate(); err != nil {
			return nil, fmt.Errorf("override profile %s: %w", m, err)
		}
		merged[m] = w
	}
	return &Resolver{profiles: merged}, nil
}

// Resolve returns the weight vector for a mode. For interdisciplinary
// lectures the vector is Blend(empiricalMix); for all other modes the mix
// is ignored.
func (r *Resolver) Resolve(mode Mode, empiricalMix float64) (Weights, error) {
	if mode == ModeInterdisciplinary {
		return Blend(empiricalMix), nil
	}
	w, ok := r.profiles[mode]
	if !ok {
		return Weights{}, fmt.Errorf("unknown lecture mode %q", mode)
	}
	return w, nil
}

// #endregion resolver

// #region blend

// Blend interpolates between the hybrid endpoints:
// weight[f] = empirical[f]*mix + interpretive[f]*(1-mix).
// The mix is a continuous dial; out-of-range values clamp rather than
// reject. Both endpoints sum to 1, so every blend does too.
func Blend(mix float64) Weights {
	if mix < 0 {
		mix = 0
	}
	if mix > 1 {
		mix = 1
	}
	var w Weights
	for i := range w {
		w[i] = Empirical[i]*mix + Interpretive[i]*(1-mix)
	}
	return w
}

// #endregion blend
