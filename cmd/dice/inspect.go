package main

// #region imports
import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dicelabs/dice-engine/internal/facet"
	"github.com/dicelabs/dice-engine/internal/scoring"
)

// #endregion

// #region flags

var (
	inspectThread  string
	inspectHistory int
)

// #endregion

// #region command

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Dump a thread's persisted evidence and recent rotation decisions",
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectThread, "thread", "", "thread ID (default: list all threads)")
	inspectCmd.Flags().IntVar(&inspectHistory, "history", 10, "rotation log entries to show")
	rootCmd.AddCommand(inspectCmd)
}

// #endregion

// #region run

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if inspectThread == "" {
		ids, err := st.ListThreads()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("no threads persisted")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	}

	state, err := st.LoadThread(inspectThread)
	if err != nil {
		return err
	}

	now := time.Now()
	scores := scoring.ScoreAll(state, now)
	fmt.Printf("thread %s\n", inspectThread)
	for _, f := range facet.All() {
		ev := state.Evidence[f]
		age := "-"
		if !ev.UpdatedAt.IsZero() {
			age = now.Sub(ev.UpdatedAt).Round(time.Minute).String()
		}
		fmt.Printf("  %-5s score=%.3f occurrences=%d snippets=%d age=%s\n",
			f, scores[f], ev.Occurrences, len(ev.Snippets), age)
		for _, s := range ev.Snippets {
			fmt.Printf("        - %s\n", s)
		}
	}

	entries, err := st.RecentRotations(inspectThread, inspectHistory)
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		fmt.Println("recent rotations:")
		for _, e := range entries {
			fmt.Printf("  seg %d pass %d [%s] %s (%s)\n",
				e.SegmentIndex, e.Pass, e.TriggerType, e.FacetOrder,
				e.CreatedAt.Format(time.RFC3339))
		}
	}
	return nil
}

// #endregion run
