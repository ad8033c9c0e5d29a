package ultraedge

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/beaux-riel/UltraEdge-sub000/internal/engine"
	"github.com/beaux-riel/UltraEdge-sub000/internal/model"
	"github.com/beaux-riel/UltraEdge-sub000/internal/service"
)

var ruleCmd = &cobra.Command{
	Use:   "rule",
	Short: "Manage adaptive plan rules",
}

var (
	ruleInput     service.AddRuleInput
	ruleListUnit  string
	ruleCheckFile string
	ruleCheckFmt  string
	ruleStrict    bool
)

var ruleAddCmd = &cobra.Command{
	Use:   "add <plan-id>",
	Short: "Add a rule to a plan",
	Long: `Add a rule to a plan, for example:

  ultraedge rule add <plan> --dimension time --condition after --value 2 --unit hours \
    --action increase --target sodium --amount 10%

Use a low-high range with --condition between (--value 60-80). Terrain conditions
(on_uphill, on_downhill, on_flat) take no value.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			id, err := service.AddRule(sqldb, args[0], ruleInput)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added rule %s\n", id)
			check, err := service.CheckPlanConflicts(sqldb, args[0])
			if err != nil {
				return err
			}
			if len(check.Conflicts) > 0 {
				printConflicts(cmd.OutOrStdout(), check.Rules, check.Conflicts)
			}
			return nil
		})
	},
}

var ruleListCmd = &cobra.Command{
	Use:   "list <plan-id>",
	Short: "List a plan's rules",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var to model.Unit
		if strings.TrimSpace(ruleListUnit) != "" {
			u, err := model.ParseUnit(ruleListUnit)
			if err != nil {
				return err
			}
			to = u
		}
		return withDB(func(sqldb *sql.DB) error {
			rules, err := service.ListRules(sqldb, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "#\tID\tRULE")
			for i, r := range rules {
				if to != "" && r.Dimension.AcceptsUnit(to) {
					if r, err = service.ConvertRule(r, to); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", i+1, r.ID, engine.FormatRule(r))
			}
			return nil
		})
	},
}

var ruleDeleteCmd = &cobra.Command{
	Use:   "delete <rule-id>",
	Short: "Delete a rule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DeleteRule(sqldb, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted rule %s\n", args[0])
			return nil
		})
	},
}

var ruleCheckCmd = &cobra.Command{
	Use:   "check [plan-id]",
	Short: "Check rules for contradictory actions",
	Long: `Check a stored plan's rules for contradictions, or every plan in a JSON/YAML
plan document with --file. A document is checked without opening the database.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var found int
		switch {
		case ruleCheckFile != "":
			n, err := checkDocument(cmd.OutOrStdout(), ruleCheckFile, ruleCheckFmt)
			if err != nil {
				return err
			}
			found = n
		case len(args) == 1:
			err := withDB(func(sqldb *sql.DB) error {
				check, err := service.CheckPlanConflicts(sqldb, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Plan %q: %d rules\n", check.PlanName, len(check.Rules))
				printRules(cmd.OutOrStdout(), check.Rules)
				found = printConflicts(cmd.OutOrStdout(), check.Rules, check.Conflicts)
				return nil
			})
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("pass a plan id or --file")
		}
		if ruleStrict && found > 0 {
			return fmt.Errorf("found %d conflicting rule pair(s)", found)
		}
		return nil
	},
}

func checkDocument(w io.Writer, path, format string) (int, error) {
	f, err := service.ParseDocumentFormat(format, path)
	if err != nil {
		return 0, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read plan document: %w", err)
	}
	doc, err := service.DecodeDocument(raw, f)
	if err != nil {
		return 0, err
	}
	logger.Debug("checking plan document", zap.String("path", path),
		zap.Int("nutrition_plans", len(doc.NutritionPlans)), zap.Int("hydration_plans", len(doc.HydrationPlans)))

	found := 0
	check := func(name string, kind model.PlanKind, rules []model.Rule) {
		fmt.Fprintf(w, "Plan %q (%s): %d rules\n", name, kind, len(rules))
		if err := engine.ValidateRules(rules); err != nil {
			for _, line := range strings.Split(err.Error(), "\n") {
				errColor.Fprintf(w, "INVALID: %s\n", line)
			}
		}
		printRules(w, rules)
		found += printConflicts(w, rules, engine.DetectConflicts(rules))
	}
	for _, p := range doc.NutritionPlans {
		check(p.Name, model.PlanKindNutrition, p.Rules)
	}
	for _, p := range doc.HydrationPlans {
		check(p.Name, model.PlanKindHydration, p.Rules)
	}
	return found, nil
}

func init() {
	rootCmd.AddCommand(ruleCmd)
	ruleCmd.AddCommand(ruleAddCmd, ruleListCmd, ruleDeleteCmd, ruleCheckCmd)

	f := ruleAddCmd.Flags()
	f.StringVar(&ruleInput.Dimension, "dimension", "", "time, distance, or temperature")
	f.StringVar(&ruleInput.Condition, "condition", "", "after, before, between, every, above, below, on_uphill, on_downhill, on_flat")
	f.StringVar(&ruleInput.Value, "value", "", "Threshold, or low-high range for between")
	f.StringVar(&ruleInput.Unit, "unit", "", "Threshold unit (default from config)")
	f.StringVar(&ruleInput.Action, "action", "", "increase, decrease, or set")
	f.StringVar(&ruleInput.Target, "target", "", "Target (calories, carbs, sodium, water, fluid_volume, ...)")
	f.StringVar(&ruleInput.Amount, "amount", "", "Absolute amount or percentage (e.g. 200 or 10%)")
	for _, name := range []string{"dimension", "condition", "action", "target", "amount"} {
		_ = ruleAddCmd.MarkFlagRequired(name)
	}

	ruleListCmd.Flags().StringVar(&ruleListUnit, "unit", "", "Show thresholds converted to this unit where it applies")

	ruleCheckCmd.Flags().StringVar(&ruleCheckFile, "file", "", "Plan document (json or yaml) to check instead of a stored plan")
	ruleCheckCmd.Flags().StringVar(&ruleCheckFmt, "format", "", "Document format (default: from file extension)")
	ruleCheckCmd.Flags().BoolVar(&ruleStrict, "strict", false, "Exit non-zero when conflicts are found")
}
