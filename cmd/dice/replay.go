package main

// #region imports
import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dicelabs/dice-engine/internal/replay"
)

// #endregion

// #region command

var replayCmd = &cobra.Command{
	Use:   "replay [fixture file]",
	Short: "Replay a recorded lecture fixture and verify its scheduling",
	Long: "Runs a JSON fixture (scripted extractor outputs plus expected orders)\n" +
		"through the real processor in-memory and reports any divergence. Used as\n" +
		"a regression check when tuning schedule, scoring, or weight parameters.",
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

// #endregion

// #region run

func runReplay(cmd *cobra.Command, args []string) error {
	fx, err := replay.LoadFixture(args[0])
	if err != nil {
		return err
	}

	summary, err := replay.Run(fx)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d passes\n", fx.ThreadID, summary.Passes)
	if len(summary.Mismatches) == 0 {
		fmt.Println("all expectations matched")
		return nil
	}
	for _, m := range summary.Mismatches {
		fmt.Println(m)
	}
	return fmt.Errorf("%d mismatch(es)", len(summary.Mismatches))
}

// #endregion run
