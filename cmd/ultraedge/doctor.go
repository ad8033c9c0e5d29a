package ultraedge

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beaux-riel/UltraEdge-sub000/internal/service"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run data integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			report, err := service.RunDoctor(sqldb, doctorFix)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Orphan entries: %d\n", report.OrphanEntries)
			fmt.Fprintf(out, "Orphan rules: %d\n", report.OrphanRules)
			fmt.Fprintf(out, "Entries in a plan of the wrong kind: %d\n", report.MismatchedEntries)
			fmt.Fprintf(out, "Invalid rules: %d\n", report.InvalidRules)
			fmt.Fprintf(out, "Plans with rule conflicts: %d\n", report.PlansWithConflicts)
			for _, id := range sortedPlanIDs(report.ConflictsByPlan) {
				warnColor.Fprintf(out, "WARNING: plan %s has %d conflicting rule pair(s)\n", shortID(id), report.ConflictsByPlan[id])
			}
			if doctorFix {
				fmt.Fprintf(out, "Fixed rows: %d\n", report.FixedRows)
				// Re-check so the exit status reflects the final state.
				report, err = service.RunDoctor(sqldb, false)
				if err != nil {
					return err
				}
			}
			if !report.Healthy() {
				errColor.Fprintln(out, "Integrity issues found; run with --fix to repair")
				return fmt.Errorf("doctor found integrity issues")
			}
			okColor.Fprintln(out, "OK")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Delete orphaned rows and invalid rules")
}
