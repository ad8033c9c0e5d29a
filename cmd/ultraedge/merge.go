package ultraedge

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/beaux-riel/UltraEdge-sub000/internal/service"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <plan-a> <plan-b>",
	Short: "Merge two plans of the same kind into a new plan",
	Long: `Merge two plans of the same kind into a new plan. Entries with the same food or
liquid type are combined by taking the larger value of each numeric field; other
fields come from the first plan. Both source plans are left unchanged.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			res, err := service.MergeStoredPlans(sqldb, args[0], args[1])
			if err != nil {
				return err
			}
			logger.Info("plans merged", zap.String("id", res.PlanID), zap.Int("entries", res.EntryCount), zap.Int("rules", res.RuleCount))
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created merged %s plan %s\n", res.Kind, res.PlanID)
			fmt.Fprintf(out, "Name: %s\n", res.Name)
			fmt.Fprintf(out, "Entries: %d\n", res.EntryCount)
			fmt.Fprintf(out, "Rules: %d\n", res.RuleCount)
			for _, w := range res.Warnings {
				warnColor.Fprintf(out, "WARNING: %s\n", w)
			}
			if len(res.Conflicts) > 0 {
				rules, err := service.ListRules(sqldb, res.PlanID)
				if err != nil {
					return err
				}
				printConflicts(out, rules, res.Conflicts)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
