package ultraedge

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/beaux-riel/UltraEdge-sub000/internal/service"
)

var (
	exportFormat string
	exportOut    string
	importFormat string
	importIn     string
	importMode   string
	importDryRun bool
)

var exportCmd = &cobra.Command{
	Use:   "export [plan-id...]",
	Short: "Export plans (json or yaml)",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := exportFormat
		if f == "" && exportOut == "" {
			f = string(service.FormatJSON)
		}
		format, err := service.ParseDocumentFormat(f, exportOut)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			doc, err := service.ExportPlans(sqldb, args...)
			if err != nil {
				return err
			}
			b, err := service.EncodeDocument(doc, format)
			if err != nil {
				return err
			}
			if strings.TrimSpace(exportOut) == "" {
				_, err := cmd.OutOrStdout().Write(b)
				return err
			}
			if err := os.WriteFile(exportOut, b, 0o644); err != nil {
				return fmt.Errorf("write export file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d plan(s) to %s\n", len(doc.NutritionPlans)+len(doc.HydrationPlans), exportOut)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import plans (json or yaml)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(importIn) == "" {
			return fmt.Errorf("--in is required")
		}
		format, err := service.ParseDocumentFormat(importFormat, importIn)
		if err != nil {
			return err
		}
		mode := service.ImportMode(strings.ToLower(strings.TrimSpace(importMode)))
		switch mode {
		case service.ImportModeFail, service.ImportModeSkip, service.ImportModeMerge, service.ImportModeReplace:
		default:
			return fmt.Errorf("unsupported --mode %q (use fail, skip, merge, or replace)", importMode)
		}
		raw, err := os.ReadFile(importIn)
		if err != nil {
			return fmt.Errorf("read import file: %w", err)
		}
		doc, err := service.DecodeDocument(raw, format)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			report, err := service.ImportPlans(sqldb, doc, service.ImportOptions{Mode: mode, DryRun: importDryRun})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if importDryRun {
				fmt.Fprintln(out, "Dry run: no changes written")
			}
			fmt.Fprintf(out, "Inserted: %d\n", report.Inserted)
			fmt.Fprintf(out, "Merged: %d\n", report.Merged)
			fmt.Fprintf(out, "Replaced: %d\n", report.Replaced)
			fmt.Fprintf(out, "Skipped: %d\n", report.Skipped)
			fmt.Fprintf(out, "Existing plans matched: %d\n", report.Conflicts)
			for _, w := range report.Warnings {
				warnColor.Fprintf(out, "WARNING: %s\n", w)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)

	exportCmd.Flags().StringVar(&exportFormat, "format", "", "json or yaml (default: from --out extension, else json)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (default: stdout)")
	importCmd.Flags().StringVar(&importFormat, "format", "", "json or yaml (default: from --in extension)")
	importCmd.Flags().StringVar(&importIn, "in", "", "Input file")
	importCmd.Flags().StringVar(&importMode, "mode", string(service.ImportModeMerge), "On name collision: fail, skip, merge, or replace")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Report what would change without writing")
}
