package ultraedge

import (
	"database/sql"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/beaux-riel/UltraEdge-sub000/internal/app"
	"github.com/beaux-riel/UltraEdge-sub000/internal/db"
	"github.com/beaux-riel/UltraEdge-sub000/internal/engine"
	"github.com/beaux-riel/UltraEdge-sub000/internal/model"
)

func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	return app.DefaultDBPath()
}

func withDB(run func(*sql.DB) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	logger.Debug("opening database", zap.String("path", path))
	sqldb, err := db.Open(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		return err
	}
	return run(sqldb)
}

var (
	warnColor = color.New(color.FgYellow, color.Bold)
	okColor   = color.New(color.FgGreen)
	errColor  = color.New(color.FgRed)
)

func printRules(w io.Writer, rules []model.Rule) {
	for i, r := range rules {
		fmt.Fprintf(w, "  %d. %s\n", i+1, engine.FormatRule(r))
	}
}

// printConflicts writes one warning per conflict and returns how many it wrote.
func printConflicts(w io.Writer, rules []model.Rule, conflicts []model.Conflict) int {
	if len(conflicts) == 0 {
		okColor.Fprintln(w, "No rule conflicts")
		return 0
	}
	for _, line := range engine.FormatConflicts(rules, conflicts) {
		warnColor.Fprintf(w, "WARNING: %s\n", line)
	}
	return len(conflicts)
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func sortedPlanIDs(m map[string]int) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
