package ultraedge

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beaux-riel/UltraEdge-sub000/internal/service"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage default units",
	Long: "Manage default units. Keys: " + service.ConfigDefaultTimeUnit + ", " + service.ConfigDefaultDistanceUnit + ", " +
		service.ConfigDefaultTemperatureUnit + ", " + service.ConfigDefaultVolumeUnit + ".",
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.SetConfig(sqldb, args[0], args[1]); err != nil {
				return err
			}
			v, _, err := service.GetConfig(sqldb, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", args[0], v)
			return nil
		})
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if len(args) == 1 {
				v, ok, err := service.GetConfig(sqldb, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("config key %q is not set", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			}
			cfg, err := service.ListConfig(sqldb)
			if err != nil {
				return err
			}
			for _, k := range []string{service.ConfigDefaultDistanceUnit, service.ConfigDefaultTemperatureUnit, service.ConfigDefaultTimeUnit, service.ConfigDefaultVolumeUnit} {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", k, cfg[k])
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd, configGetCmd)
}
