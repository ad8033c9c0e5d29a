package ultraedge

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/beaux-riel/UltraEdge-sub000/internal/engine"
	"github.com/beaux-riel/UltraEdge-sub000/internal/model"
	"github.com/beaux-riel/UltraEdge-sub000/internal/service"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage nutrition and hydration plans",
}

var (
	planKind        string
	planName        string
	planDescription string
	planRaceType    string
	planDuration    string
	planTerrain     string
	planWeather     string
	planIntensity   string
	planQuery       string
	planLimit       int
)

var planCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an empty plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := model.ParsePlanKind(planKind)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			id, err := service.CreatePlan(sqldb, service.CreatePlanInput{
				Kind:        kind,
				Name:        planName,
				Description: planDescription,
				RaceContext: model.RaceContext{
					RaceType:         planRaceType,
					RaceDuration:     planDuration,
					TerrainType:      planTerrain,
					WeatherCondition: planWeather,
					IntensityLevel:   planIntensity,
				},
			})
			if err != nil {
				return err
			}
			logger.Info("plan created", zap.String("id", id), zap.String("kind", string(kind)))
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s plan %s\n", kind, id)
			return nil
		})
	},
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		var kind model.PlanKind
		if planKind != "" {
			k, err := model.ParsePlanKind(planKind)
			if err != nil {
				return err
			}
			kind = k
		}
		return withDB(func(sqldb *sql.DB) error {
			plans, err := service.ListPlans(sqldb, service.ListPlansFilter{Kind: kind, Query: planQuery, Limit: planLimit})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tKIND\tNAME\tENTRIES\tRULES\tUPDATED")
			for _, p := range plans {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d\t%d\t%s\n", shortID(p.ID), p.Kind, p.Name, p.EntryCount, p.RuleCount, p.UpdatedAt.Format(time.RFC3339))
			}
			return nil
		})
	},
}

var planShowCmd = &cobra.Command{
	Use:   "show <plan-id>",
	Short: "Show a plan with its entries and rules",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			h, err := service.PlanByID(sqldb, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s plan %s)\n", h.Name, h.Kind, h.ID)
			if h.Description != "" {
				fmt.Fprintf(out, "%s\n", h.Description)
			}
			printRaceContext(cmd, h.RaceContext)

			var rules []model.Rule
			switch h.Kind {
			case model.PlanKindNutrition:
				p, err := service.LoadNutritionPlan(sqldb, h.ID)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, "Entries:")
				fmt.Fprintln(out, "ID\tFOOD\tCALORIES\tCARBS\tPROTEIN\tFAT\tSODIUM\tQTY\tTIMING")
				for _, e := range p.Entries {
					fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", shortID(e.ID), e.FoodType,
						formatFloat(e.Calories), formatFloat(e.Carbs), formatFloat(e.Protein), formatFloat(e.Fat),
						formatFloat(e.Sodium), formatFloat(e.Quantity), e.Timing)
				}
				rules = p.Rules
			case model.PlanKindHydration:
				p, err := service.LoadHydrationPlan(sqldb, h.ID)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, "Entries:")
				fmt.Fprintln(out, "ID\tLIQUID\tVOLUME\tSODIUM\tPOTASSIUM\tMAGNESIUM\tTIMING")
				for _, e := range p.Entries {
					fmt.Fprintf(out, "%s\t%s\t%s %s\t%s\t%s\t%s\t%s\n", shortID(e.ID), e.LiquidType,
						formatFloat(e.Volume), e.VolumeUnit, formatFloat(e.Electrolytes.Sodium),
						formatFloat(e.Electrolytes.Potassium), formatFloat(e.Electrolytes.Magnesium), e.Timing)
				}
				rules = p.Rules
			}
			fmt.Fprintln(out, "Rules:")
			printRules(out, rules)
			printConflicts(out, rules, engine.DetectConflicts(rules))
			return nil
		})
	},
}

func printRaceContext(cmd *cobra.Command, rc model.RaceContext) {
	fields := []struct{ label, value string }{
		{"Race", rc.RaceType},
		{"Duration", rc.RaceDuration},
		{"Terrain", rc.TerrainType},
		{"Weather", rc.WeatherCondition},
		{"Intensity", rc.IntensityLevel},
	}
	for _, f := range fields {
		if f.value != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", f.label, f.value)
		}
	}
}

var planUpdateCmd = &cobra.Command{
	Use:   "update <plan-id>",
	Short: "Update plan name, description or race context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := service.UpdatePlanInput{}
		flags := []struct {
			name string
			dest **string
			val  *string
		}{
			{"name", &in.Name, &planName},
			{"description", &in.Description, &planDescription},
			{"race-type", &in.RaceType, &planRaceType},
			{"duration", &in.Duration, &planDuration},
			{"terrain", &in.Terrain, &planTerrain},
			{"weather", &in.Weather, &planWeather},
			{"intensity", &in.Intensity, &planIntensity},
		}
		for _, f := range flags {
			if cmd.Flags().Changed(f.name) {
				*f.dest = f.val
			}
		}
		return withDB(func(sqldb *sql.DB) error {
			if err := service.UpdatePlan(sqldb, args[0], in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated plan %s\n", args[0])
			return nil
		})
	},
}

var planDeleteCmd = &cobra.Command{
	Use:   "delete <plan-id>",
	Short: "Delete a plan with its entries and rules",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DeletePlan(sqldb, args[0]); err != nil {
				return err
			}
			logger.Info("plan deleted", zap.String("ref", args[0]))
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted plan %s\n", args[0])
			return nil
		})
	},
}

var planSummaryCmd = &cobra.Command{
	Use:   "summary <plan-id>",
	Short: "Show plan totals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			s, err := service.SummarizePlan(sqldb, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s plan)\n", s.Plan.Name, s.Plan.Kind)
			fmt.Fprintf(out, "Entries: %d\n", s.Plan.EntryCount)
			if n := s.Nutrition; n != nil {
				fmt.Fprintf(out, "Calories: %s\n", formatFloat(n.Calories))
				fmt.Fprintf(out, "Carbs: %s g\n", formatFloat(n.Carbs))
				fmt.Fprintf(out, "Protein: %s g\n", formatFloat(n.Protein))
				fmt.Fprintf(out, "Fat: %s g\n", formatFloat(n.Fat))
				fmt.Fprintf(out, "Sodium: %s mg\n", formatFloat(n.Sodium))
				fmt.Fprintf(out, "Potassium: %s mg\n", formatFloat(n.Potassium))
				fmt.Fprintf(out, "Magnesium: %s mg\n", formatFloat(n.Magnesium))
				fmt.Fprintf(out, "Essential items: %d\n", n.Essential)
			}
			if h := s.Hydration; h != nil {
				fmt.Fprintf(out, "Volume: %s ml\n", formatFloat(h.VolumeML))
				fmt.Fprintf(out, "Sodium: %s mg\n", formatFloat(h.Sodium))
				fmt.Fprintf(out, "Potassium: %s mg\n", formatFloat(h.Potassium))
				fmt.Fprintf(out, "Magnesium: %s mg\n", formatFloat(h.Magnesium))
			}
			fmt.Fprintf(out, "Rules: %d\n", s.RuleCount)
			if s.ConflictCount > 0 {
				warnColor.Fprintf(out, "Conflicting rule pairs: %d\n", s.ConflictCount)
			} else {
				fmt.Fprintf(out, "Conflicting rule pairs: 0\n")
			}
			return nil
		})
	},
}

func addPlanFields(cmd *cobra.Command) {
	cmd.Flags().StringVar(&planName, "name", "", "Plan name")
	cmd.Flags().StringVar(&planDescription, "description", "", "Plan description")
	cmd.Flags().StringVar(&planRaceType, "race-type", "", "Race type (e.g. ultra, marathon)")
	cmd.Flags().StringVar(&planDuration, "duration", "", "Expected race duration")
	cmd.Flags().StringVar(&planTerrain, "terrain", "", "Terrain type")
	cmd.Flags().StringVar(&planWeather, "weather", "", "Expected weather")
	cmd.Flags().StringVar(&planIntensity, "intensity", "", "Intensity level")
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.AddCommand(planCreateCmd, planListCmd, planShowCmd, planUpdateCmd, planDeleteCmd, planSummaryCmd)

	planCreateCmd.Flags().StringVar(&planKind, "kind", "", "Plan kind (nutrition or hydration)")
	addPlanFields(planCreateCmd)
	_ = planCreateCmd.MarkFlagRequired("kind")
	_ = planCreateCmd.MarkFlagRequired("name")

	addPlanFields(planUpdateCmd)

	planListCmd.Flags().StringVar(&planKind, "kind", "", "Filter by kind")
	planListCmd.Flags().StringVar(&planQuery, "query", "", "Filter by name")
	planListCmd.Flags().IntVar(&planLimit, "limit", 50, "Max rows")
}
