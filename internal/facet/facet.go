package facet

import "fmt"

// #region facet

// Facet is one of the six extraction perspectives applied to lecture
// segments. The set is closed: every facet has a fixed die face and a fixed
// slot in permutation schedules, and the engine never extends it at runtime.
type Facet int

const (
	How   Facet = iota // mechanism: how something works or unfolds
	What               // definition: what something is
	When               // temporal: when it happened or applies
	Where              // spatial/domain: where it holds
	Who                // attribution: who is involved or responsible
	Why                // rationale: why it is the case
)

// Count is the number of facets. Arrays sized [Count] are used everywhere a
// per-facet value is needed so a missing facet is impossible to represent.
const Count = 6

// #endregion facet

// #region names

var names = [Count]string{"how", "what", "when", "where", "who", "why"}

// Die face positions, fixed per facet.
var faces = [Count]string{"north", "south", "east", "west", "zenith", "nadir"}

// String returns the lowercase facet name.
func (f Facet) String() string {
	if f < 0 || f >= Count {
		return fmt.Sprintf("facet(%d)", int(f))
	}
	return names[f]
}

// Face returns the facet's fixed die face position.
func (f Facet) Face() string {
	return faces[f]
}

// Valid reports whether f is one of the six defined facets.
func (f Facet) Valid() bool {
	return f >= 0 && f < Count
}

// Parse maps a facet name (case-sensitive, lowercase) to its Facet.
func Parse(name string) (Facet, error) {
	for i, n := range names {
		if n == name {
			return Facet(i), nil
		}
	}
	return 0, fmt.Errorf("unknown facet %q", name)
}

// #endregion names

// #region all

// All returns the six facets in slot order.
func All() [Count]Facet {
	return [Count]Facet{How, What, When, Where, Who, Why}
}

// #endregion all
