package ultraedge

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beaux-riel/UltraEdge-sub000/internal/model"
	"github.com/beaux-riel/UltraEdge-sub000/internal/service"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Manage plan entries",
}

var (
	foodEntry  model.NutritionEntry
	drinkEntry model.HydrationEntry
)

var entryAddFoodCmd = &cobra.Command{
	Use:   "add-food <plan-id>",
	Short: "Add a food entry to a nutrition plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			id, err := service.AddNutritionEntry(sqldb, args[0], foodEntry)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added food entry %s\n", id)
			return nil
		})
	},
}

var entryAddDrinkCmd = &cobra.Command{
	Use:   "add-drink <plan-id>",
	Short: "Add a drink entry to a hydration plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			e := drinkEntry
			if !cmd.Flags().Changed("unit") {
				unit, _, err := service.GetConfig(sqldb, service.ConfigDefaultVolumeUnit)
				if err != nil {
					return err
				}
				e.VolumeUnit = unit
			}
			id, err := service.AddHydrationEntry(sqldb, args[0], e)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added drink entry %s\n", id)
			return nil
		})
	},
}

var entryDeleteCmd = &cobra.Command{
	Use:   "delete <entry-id>",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DeleteEntry(sqldb, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %s\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(entryCmd)
	entryCmd.AddCommand(entryAddFoodCmd, entryAddDrinkCmd, entryDeleteCmd)

	f := entryAddFoodCmd.Flags()
	f.StringVar(&foodEntry.FoodType, "food", "", "Food type (merge key)")
	f.Float64Var(&foodEntry.Calories, "calories", 0, "Calories per serving")
	f.Float64Var(&foodEntry.Carbs, "carbs", 0, "Carbs (g)")
	f.Float64Var(&foodEntry.Protein, "protein", 0, "Protein (g)")
	f.Float64Var(&foodEntry.Fat, "fat", 0, "Fat (g)")
	f.Float64Var(&foodEntry.Sodium, "sodium", 0, "Sodium (mg)")
	f.Float64Var(&foodEntry.Potassium, "potassium", 0, "Potassium (mg)")
	f.Float64Var(&foodEntry.Magnesium, "magnesium", 0, "Magnesium (mg)")
	f.Float64Var(&foodEntry.Quantity, "quantity", 0, "Servings (0 counts as 1)")
	f.StringVar(&foodEntry.Timing, "timing", "", "When to eat")
	f.StringVar(&foodEntry.Frequency, "frequency", "", "How often to eat")
	f.StringVar(&foodEntry.SourceLocation, "source", "", "Where it comes from (drop bag, aid station)")
	f.BoolVar(&foodEntry.Essential, "essential", false, "Mark as essential")
	f.StringVar(&foodEntry.Notes, "notes", "", "Notes")
	_ = entryAddFoodCmd.MarkFlagRequired("food")

	d := entryAddDrinkCmd.Flags()
	d.StringVar(&drinkEntry.LiquidType, "liquid", "", "Liquid type (merge key)")
	d.Float64Var(&drinkEntry.Volume, "volume", 0, "Volume")
	d.StringVar(&drinkEntry.VolumeUnit, "unit", "", "Volume unit (ml, l, fl-oz, oz, cup; default from config)")
	d.Float64Var(&drinkEntry.Electrolytes.Sodium, "sodium", 0, "Sodium (mg)")
	d.Float64Var(&drinkEntry.Electrolytes.Potassium, "potassium", 0, "Potassium (mg)")
	d.Float64Var(&drinkEntry.Electrolytes.Magnesium, "magnesium", 0, "Magnesium (mg)")
	d.StringVar(&drinkEntry.Timing, "timing", "", "When to drink")
	d.StringVar(&drinkEntry.Frequency, "frequency", "", "How often to drink")
	d.StringVar(&drinkEntry.ConsumptionRate, "rate", "", "Consumption rate (e.g. 500ml/hour)")
	d.StringVar(&drinkEntry.Temperature, "temperature", "", "Serving temperature")
	d.StringVar(&drinkEntry.SourceLocation, "source", "", "Where it comes from")
	d.StringVar(&drinkEntry.ContainerType, "container", "", "Container (bottle, bladder, cup)")
	_ = entryAddDrinkCmd.MarkFlagRequired("liquid")
}
