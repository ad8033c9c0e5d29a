package db

import (
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		sql: `
CREATE TABLE IF NOT EXISTS plans (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL CHECK(kind IN ('nutrition', 'hydration')),
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  race_type TEXT NOT NULL DEFAULT '',
  race_duration TEXT NOT NULL DEFAULT '',
  terrain_type TEXT NOT NULL DEFAULT '',
  weather_condition TEXT NOT NULL DEFAULT '',
  intensity_level TEXT NOT NULL DEFAULT '',
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_plans_kind ON plans(kind);

CREATE TABLE IF NOT EXISTS nutrition_entries (
  id TEXT PRIMARY KEY,
  plan_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  food_type TEXT NOT NULL,
  calories REAL NOT NULL DEFAULT 0 CHECK(calories >= 0),
  carbs REAL NOT NULL DEFAULT 0 CHECK(carbs >= 0),
  protein REAL NOT NULL DEFAULT 0 CHECK(protein >= 0),
  fat REAL NOT NULL DEFAULT 0 CHECK(fat >= 0),
  sodium REAL NOT NULL DEFAULT 0 CHECK(sodium >= 0),
  potassium REAL NOT NULL DEFAULT 0 CHECK(potassium >= 0),
  magnesium REAL NOT NULL DEFAULT 0 CHECK(magnesium >= 0),
  timing TEXT NOT NULL DEFAULT '',
  frequency TEXT NOT NULL DEFAULT '',
  quantity REAL NOT NULL DEFAULT 0 CHECK(quantity >= 0),
  source_location TEXT NOT NULL DEFAULT '',
  essential INTEGER NOT NULL DEFAULT 0,
  notes TEXT NOT NULL DEFAULT '',
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(plan_id) REFERENCES plans(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_nutrition_entries_plan ON nutrition_entries(plan_id, position);

CREATE TABLE IF NOT EXISTS hydration_entries (
  id TEXT PRIMARY KEY,
  plan_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  liquid_type TEXT NOT NULL,
  volume REAL NOT NULL DEFAULT 0 CHECK(volume >= 0),
  volume_unit TEXT NOT NULL DEFAULT '',
  sodium REAL NOT NULL DEFAULT 0 CHECK(sodium >= 0),
  potassium REAL NOT NULL DEFAULT 0 CHECK(potassium >= 0),
  magnesium REAL NOT NULL DEFAULT 0 CHECK(magnesium >= 0),
  timing TEXT NOT NULL DEFAULT '',
  frequency TEXT NOT NULL DEFAULT '',
  consumption_rate TEXT NOT NULL DEFAULT '',
  temperature TEXT NOT NULL DEFAULT '',
  source_location TEXT NOT NULL DEFAULT '',
  container_type TEXT NOT NULL DEFAULT '',
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(plan_id) REFERENCES plans(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_hydration_entries_plan ON hydration_entries(plan_id, position);
`,
	},
	{
		version: 2,
		name:    "rules",
		sql: `
CREATE TABLE IF NOT EXISTS rules (
  id TEXT PRIMARY KEY,
  plan_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  dimension TEXT NOT NULL,
  condition_op TEXT NOT NULL,
  value_low REAL NOT NULL DEFAULT 0,
  value_high REAL NOT NULL DEFAULT 0,
  value_range INTEGER NOT NULL DEFAULT 0,
  unit TEXT NOT NULL DEFAULT '',
  action_op TEXT NOT NULL,
  target TEXT NOT NULL,
  amount TEXT NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(plan_id) REFERENCES plans(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_rules_plan ON rules(plan_id, position);
`,
	},
	{
		version: 3,
		name:    "app_config",
		sql: `
CREATE TABLE IF NOT EXISTS app_config (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`,
	},
}

var defaultConfig = [][2]string{
	{"default_time_unit", "hours"},
	{"default_distance_unit", "miles"},
	{"default_temperature_unit", "fahrenheit"},
	{"default_volume_unit", "ml"},
}

func ApplyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := db.QueryRow(`SELECT 1 FROM schema_migrations WHERE version = ?`, m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("check migration version %d: %w", m.version, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration tx: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration version %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version, name) VALUES(?, ?)`, m.version, m.name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration version %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration version %d: %w", m.version, err)
		}
	}

	for _, kv := range defaultConfig {
		if _, err := db.Exec(`INSERT OR IGNORE INTO app_config(key, value) VALUES(?, ?)`, kv[0], kv[1]); err != nil {
			return fmt.Errorf("seed default config %s: %w", kv[0], err)
		}
	}

	return nil
}
