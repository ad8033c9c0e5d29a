package db_test

import (
	"path/filepath"
	"testing"

	"github.com/beaux-riel/UltraEdge-sub000/internal/db"
)

func TestApplyMigrationsIdempotentAndSeedsDefaults(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "ultraedge.db")
	sqldb, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("first apply migrations: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("second apply migrations: %v", err)
	}

	var migrationCount int
	if err := sqldb.QueryRow(`SELECT COUNT(1) FROM schema_migrations`).Scan(&migrationCount); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if migrationCount != 3 {
		t.Fatalf("expected 3 migration versions, got %d", migrationCount)
	}

	for _, table := range []string{"plans", "nutrition_entries", "hydration_entries", "rules", "app_config"} {
		var n int
		if err := sqldb.QueryRow(`SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n); err != nil {
			t.Fatalf("check %s table: %v", table, err)
		}
		if n != 1 {
			t.Fatalf("expected %s table to exist", table)
		}
	}

	var unit string
	if err := sqldb.QueryRow(`SELECT value FROM app_config WHERE key = 'default_distance_unit'`).Scan(&unit); err != nil {
		t.Fatalf("read seeded config: %v", err)
	}
	if unit != "miles" {
		t.Fatalf("expected seeded distance unit miles, got %q", unit)
	}
}

func TestForeignKeysCascadePlanDeletes(t *testing.T) {
	t.Parallel()

	sqldb, err := db.Open(filepath.Join(t.TempDir(), "ultraedge.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer sqldb.Close()
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	if _, err := sqldb.Exec(`INSERT INTO plans(id, kind, name) VALUES('p1', 'nutrition', 'Race')`); err != nil {
		t.Fatalf("insert plan: %v", err)
	}
	if _, err := sqldb.Exec(`INSERT INTO nutrition_entries(id, plan_id, position, food_type) VALUES('e1', 'p1', 0, 'Gel')`); err != nil {
		t.Fatalf("insert entry: %v", err)
	}
	if _, err := sqldb.Exec(`DELETE FROM plans WHERE id = 'p1'`); err != nil {
		t.Fatalf("delete plan: %v", err)
	}
	var n int
	if err := sqldb.QueryRow(`SELECT COUNT(1) FROM nutrition_entries`).Scan(&n); err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected entries to cascade, got %d", n)
	}
	if _, err := sqldb.Exec(`INSERT INTO rules(id, plan_id, position, dimension, condition_op, action_op, target, amount) VALUES('r1', 'missing', 0, 'time', 'after', 'set', 'water', '1')`); err == nil {
		t.Fatalf("expected foreign key violation for rule without plan")
	}
}
