package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dicelabs/dice-engine/internal/facet"
	"github.com/dicelabs/dice-engine/internal/modes"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay run: a recorded
// lecture with scripted extractor outputs and the scheduling decisions the
// engine is expected to reproduce.
type Fixture struct {
	Description  string           `json:"description"`
	ThreadID     string           `json:"thread_id"`
	Mode         string           `json:"mode"`
	SafeMode     bool             `json:"safe_mode"`
	EmpiricalMix float64          `json:"empirical_mix"`
	BaseTime     time.Time        `json:"base_time"`
	Segments     []FixtureSegment `json:"segments"`
	Expected     []ExpectedPass   `json:"expected"`
}

// FixtureSegment scripts one segment: its text and the snippets each
// facet's extractor returns when invoked against it.
type FixtureSegment struct {
	Index       int                 `json:"index"`
	Text        string              `json:"text"`
	Extractions map[string][]string `json:"extractions"`
}

// ExpectedPass captures the expected scheduling decision for one pass.
// An empty Order checks the trigger only.
type ExpectedPass struct {
	SegmentIndex int      `json:"segment_index"`
	Pass         int      `json:"pass"`
	Trigger      string   `json:"trigger"`
	Order        []string `json:"order,omitempty"`
}

// #endregion fixture-types

// #region load

// LoadFixture reads and validates a fixture file.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var fx Fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	if err := fx.validate(); err != nil {
		return Fixture{}, fmt.Errorf("fixture %s: %w", path, err)
	}
	return fx, nil
}

func (fx Fixture) validate() error {
	if fx.ThreadID == "" {
		return fmt.Errorf("thread_id is required")
	}
	if _, err := modes.ParseMode(fx.Mode); err != nil {
		return err
	}
	if fx.BaseTime.IsZero() {
		return fmt.Errorf("base_time is required for deterministic decay")
	}
	texts := map[string]bool{}
	for _, seg := range fx.Segments {
		if texts[seg.Text] {
			return fmt.Errorf("segment texts must be unique, %q repeats", seg.Text)
		}
		texts[seg.Text] = true
		for name := range seg.Extractions {
			if _, err := facet.Parse(name); err != nil {
				return err
			}
		}
	}
	for _, exp := range fx.Expected {
		for _, name := range exp.Order {
			if _, err := facet.Parse(name); err != nil {
				return err
			}
		}
	}
	return nil
}

// #endregion load
