package store

import "time"

// #region rotation-entry
// RotationEntry is one provenance row: which policy produced which facet
// order for one segment pass, with the score snapshot that drove it.
type RotationEntry struct {
	RunID        string
	ThreadID     string
	SegmentIndex int
	Pass         int
	Mode         string
	TriggerType  string
	FacetOrder   string // comma-joined facet names
	ScoresJSON   string
	CreatedAt    time.Time
}
// #endregion rotation-entry
