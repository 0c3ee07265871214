package main

// #region imports
import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dicelabs/dice-engine/internal/facet"
	"github.com/dicelabs/dice-engine/internal/replay"
	"github.com/dicelabs/dice-engine/internal/rotation"
	"github.com/dicelabs/dice-engine/internal/schedule"
	"github.com/dicelabs/dice-engine/internal/scoring"
)

// #endregion

// #region flags

var (
	rotateThread  string
	rotateSegment int
	rotateMode    string
	rotateSafe    bool
	rotateMix     float64
)

// #endregion

// #region command

var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Show the facet order one scheduling call would produce",
	Long: "Computes current facet scores from the thread's persisted evidence and\n" +
		"prints the execution order the scheduler would use for the given segment,\n" +
		"without running any extractor or mutating state.",
	RunE: runRotate,
}

func init() {
	rotateCmd.Flags().StringVar(&rotateThread, "thread", "", "thread ID (required)")
	rotateCmd.Flags().IntVar(&rotateSegment, "segment", 0, "segment index")
	rotateCmd.Flags().StringVar(&rotateMode, "mode", "", "lecture mode (overrides config)")
	rotateCmd.Flags().BoolVar(&rotateSafe, "safe", false, "enable safe-mode stabilization")
	rotateCmd.Flags().Float64Var(&rotateMix, "mix", 0.5, "empirical mix for interdisciplinary lectures")
	rotateCmd.MarkFlagRequired("thread")
	rootCmd.AddCommand(rotateCmd)
}

// #endregion

// #region run

func runRotate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	mode, err := parseMode(cfg, rotateMode)
	if err != nil {
		return err
	}
	resolver, err := newResolver(cfg)
	if err != nil {
		return err
	}
	weights, err := resolver.Resolve(mode, rotateMix)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	state, err := st.LoadThread(rotateThread)
	if err != nil {
		return err
	}

	scores := scoring.ScoreAll(state, time.Now())
	res := rotation.NewOrchestrator(schedule.NewSelector()).Rotate(rotation.Request{
		ThreadID:     rotateThread,
		SegmentIndex: rotateSegment,
		Scores:       scores,
		Weights:      &weights,
		SafeMode:     rotateSafe || cfg.Engine.SafeMode,
	})

	fmt.Printf("thread %s segment %d [%s]\n", rotateThread, rotateSegment, res.Trigger)
	fmt.Printf("order: %s\n", replay.OrderString(res.Order))
	if res.Trigger == rotation.TriggerCollapse {
		fmt.Printf("collapse: dominant=%s gap=%.3f promoted=%s\n", res.Dominant, res.Gap, res.Promoted)
	}
	for _, f := range facet.All() {
		fmt.Printf("  %-5s score=%.3f weight=%.3f occurrences=%d\n",
			f, scores[f], weights[f], state.Evidence[f].Occurrences)
	}
	return nil
}

// #endregion run
