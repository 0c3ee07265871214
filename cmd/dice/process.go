package main

// #region imports
import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dicelabs/dice-engine/internal/extract"
	"github.com/dicelabs/dice-engine/internal/facet"
	"github.com/dicelabs/dice-engine/internal/processor"
	"github.com/dicelabs/dice-engine/internal/replay"
	"github.com/dicelabs/dice-engine/internal/rotation"
	"github.com/dicelabs/dice-engine/internal/schedule"
	"github.com/dicelabs/dice-engine/internal/store"
)

// #endregion

// #region flags

var (
	processThread  string
	processMode    string
	processSafe    bool
	processMix     float64
	processVerbose bool
)

// #endregion

// #region command

var processCmd = &cobra.Command{
	Use:   "process [transcript file]",
	Short: "Run a lecture transcript through the extraction scheduler",
	Long: "Splits the transcript into segments on blank lines, runs the heuristic\n" +
		"extractors over each segment in the computed facet order, folds the\n" +
		"evidence into the thread's persisted state, and logs every rotation\n" +
		"decision.",
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVar(&processThread, "thread", "", "thread ID (required)")
	processCmd.Flags().StringVar(&processMode, "mode", "", "lecture mode (overrides config)")
	processCmd.Flags().BoolVar(&processSafe, "safe", false, "enable safe-mode stabilization")
	processCmd.Flags().Float64Var(&processMix, "mix", 0.5, "empirical mix for interdisciplinary lectures")
	processCmd.Flags().BoolVar(&processVerbose, "verbose", false, "log per-pass decisions")
	processCmd.MarkFlagRequired("thread")
	rootCmd.AddCommand(processCmd)
}

// #endregion

// #region run

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	mode, err := parseMode(cfg, processMode)
	if err != nil {
		return err
	}
	resolver, err := newResolver(cfg)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}
	segments := splitSegments(string(data))
	if len(segments) == 0 {
		return fmt.Errorf("transcript %s has no segments", args[0])
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	state, err := st.LoadThread(processThread)
	if err != nil {
		return err
	}

	orch := rotation.NewOrchestrator(schedule.NewSelector())
	orch.SetVerbose(processVerbose)
	proc := processor.New(orch, resolver)

	results, procErr := proc.Process(state, segments, extract.DefaultSet(), processor.Options{
		Mode:         mode,
		SafeMode:     processSafe || cfg.Engine.SafeMode,
		EmpiricalMix: processMix,
		Verbose:      processVerbose,
	})

	// Completed folds are durable even when a later segment failed.
	if err := st.SaveThread(state); err != nil {
		return err
	}

	runID := uuid.New().String()
	for _, res := range results {
		scoresJSON, err := json.Marshal(res.Scores)
		if err != nil {
			return fmt.Errorf("marshal scores: %w", err)
		}
		if err := st.LogRotation(store.RotationEntry{
			RunID:        runID,
			ThreadID:     processThread,
			SegmentIndex: res.SegmentIndex,
			Pass:         res.Pass,
			Mode:         string(mode),
			TriggerType:  string(res.Rotation.Trigger),
			FacetOrder:   replay.OrderString(res.Rotation.Order),
			ScoresJSON:   string(scoresJSON),
		}); err != nil {
			return err
		}
	}

	if procErr != nil {
		return procErr
	}

	fmt.Printf("run %s: %d segments, %d passes\n", runID, len(segments), len(results))
	for _, res := range results {
		fmt.Printf("  seg %d pass %d [%s] %s\n",
			res.SegmentIndex, res.Pass, res.Rotation.Trigger, replay.OrderString(res.Rotation.Order))
	}
	total := 0
	for _, f := range facet.All() {
		total += state.Evidence[f].Occurrences
	}
	fmt.Printf("thread %s now holds %d evidence folds\n", processThread, total)
	return nil
}

// splitSegments breaks transcript text into segments on blank lines,
// indexed in order.
func splitSegments(text string) []processor.Segment {
	var segments []processor.Segment
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		segments = append(segments, processor.Segment{Index: len(segments), Text: block})
	}
	return segments
}

// #endregion run
