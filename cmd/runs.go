package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/jobscout/jobscout-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded pipeline runs",
	RunE:  runRuns,
}

func init() {
	f := runsCmd.Flags()
	f.Int("limit", 20, "maximum number of runs to show")
	f.String("stage", "", "only show runs that terminated at this stage")

	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	stage, _ := cmd.Flags().GetString("stage")

	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return eris.Wrap(err, "runs: open store")
	}
	defer st.Close() //nolint:errcheck

	if err := st.Migrate(cmd.Context()); err != nil {
		return eris.Wrap(err, "runs: migrate store")
	}

	runs, err := st.ListRuns(cmd.Context(), store.RunFilter{
		TerminalStage: stage,
		Limit:         limit,
	})
	if err != nil {
		return eris.Wrap(err, "runs: list")
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Printf("%-36s %-20s %8s %8s %-10s %s\n",
		"ID", "Started", "Fetched", "Exported", "Stopped At", "Export")
	fmt.Println(strings.Repeat("-", 110))
	for _, r := range runs {
		stopped := r.TerminalStage
		if stopped == "" {
			stopped = "-"
		}
		path := r.ExportPath
		if path == "" {
			path = "-"
		}
		fmt.Printf("%-36s %-20s %8d %8d %-10s %s\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Fetched, r.Exported, stopped, path)
	}
	return nil
}
