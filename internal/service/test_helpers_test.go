package service_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/beaux-riel/UltraEdge-sub000/internal/db"
	"github.com/beaux-riel/UltraEdge-sub000/internal/model"
	"github.com/beaux-riel/UltraEdge-sub000/internal/service"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plans.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return sqldb
}

func createPlan(t *testing.T, sqldb *sql.DB, kind model.PlanKind, name string) string {
	t.Helper()
	id, err := service.CreatePlan(sqldb, service.CreatePlanInput{Kind: kind, Name: name})
	if err != nil {
		t.Fatalf("create %s plan %q: %v", kind, name, err)
	}
	return id
}

func addRule(t *testing.T, sqldb *sql.DB, planID string, in service.AddRuleInput) string {
	t.Helper()
	id, err := service.AddRule(sqldb, planID, in)
	if err != nil {
		t.Fatalf("add rule %+v: %v", in, err)
	}
	return id
}

func sodiumAfter(hours, action, amount string) service.AddRuleInput {
	return service.AddRuleInput{
		Dimension: "time",
		Condition: "after",
		Value:     hours,
		Unit:      "hours",
		Action:    action,
		Target:    "sodium",
		Amount:    amount,
	}
}

func mustAddFood(t *testing.T, sqldb *sql.DB, planID string, e model.NutritionEntry) {
	t.Helper()
	if _, err := service.AddNutritionEntry(sqldb, planID, e); err != nil {
		t.Fatalf("add food %s: %v", e.FoodType, err)
	}
}

func mustAddDrink(t *testing.T, sqldb *sql.DB, planID string, e model.HydrationEntry) {
	t.Helper()
	if _, err := service.AddHydrationEntry(sqldb, planID, e); err != nil {
		t.Fatalf("add drink %s: %v", e.LiquidType, err)
	}
}

// insertStaleRule stores a rule that bypasses validation, as an older build or
// a hand edit of the database could leave behind.
func insertStaleRule(t *testing.T, sqldb *sql.DB, planID, ruleID string) {
	t.Helper()
	_, err := sqldb.Exec(`INSERT INTO rules(id, plan_id, position, dimension, condition_op, value_low, value_high, value_range, unit, action_op, target, amount)
VALUES(?, ?, 99, 'time', 'after', 1, 1, 0, 'hours', 'increase', 'carbs', 'ten')`, ruleID, planID)
	if err != nil {
		t.Fatalf("insert stale rule: %v", err)
	}
}
