package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"citematch/internal/report"
	"citematch/internal/store"
)

func newCompareCmd() *cobra.Command {
	var (
		dbPath     string
		baseID     string
		otherID    string
		reportPath string
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare two recorded runs",
		Long: `Compare renders the before/after report for two runs recorded in the
database, typically a raw run against its preprocessed counterpart.
Without --base and --other the two most recent runs are compared,
oldest as the baseline.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			if baseID == "" || otherID == "" {
				runs, err := st.RecentRuns(ctx, 2)
				if err != nil {
					return err
				}
				if len(runs) < 2 {
					return fmt.Errorf("need two recorded runs to compare, have %d", len(runs))
				}
				// RecentRuns is newest first.
				baseID, otherID = runs[1].ID, runs[0].ID
			}

			base, err := st.GetRun(ctx, baseID)
			if err != nil {
				return fmt.Errorf("load base run %s: %w", baseID, err)
			}
			other, err := st.GetRun(ctx, otherID)
			if err != nil {
				return fmt.Errorf("load other run %s: %w", otherID, err)
			}

			markdown := report.Comparison(&base.Stats, &other.Stats)
			if reportPath != "" {
				return writeReportFile(reportPath, markdown)
			}
			fmt.Print(markdown)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "./data/citematch.db", "SQLite database holding the runs")
	cmd.Flags().StringVar(&baseID, "base", "", "baseline run id")
	cmd.Flags().StringVar(&otherID, "other", "", "comparison run id")
	cmd.Flags().StringVar(&reportPath, "report", "", "write the report to this path instead of stdout (.html renders HTML)")
	return cmd
}
