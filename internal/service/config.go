package service

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/beaux-riel/UltraEdge-sub000/internal/model"
)

const (
	ConfigDefaultTimeUnit        = "default_time_unit"
	ConfigDefaultDistanceUnit    = "default_distance_unit"
	ConfigDefaultTemperatureUnit = "default_temperature_unit"
	ConfigDefaultVolumeUnit      = "default_volume_unit"
)

var dimensionConfigKeys = map[model.Dimension]string{
	model.DimensionTime:        ConfigDefaultTimeUnit,
	model.DimensionDistance:    ConfigDefaultDistanceUnit,
	model.DimensionTemperature: ConfigDefaultTemperatureUnit,
}

// normalizeConfigValue validates a value for a known key and returns its
// canonical form. Unknown keys are rejected.
func normalizeConfigValue(key, value string) (string, error) {
	value = strings.TrimSpace(value)
	if key == ConfigDefaultVolumeUnit {
		if _, ok := resolveVolumeUnit(value); !ok {
			return "", fmt.Errorf("unsupported volume unit %q", value)
		}
		return strings.ToLower(value), nil
	}
	for dim, k := range dimensionConfigKeys {
		if k != key {
			continue
		}
		u, err := model.ParseUnit(value)
		if err != nil {
			return "", err
		}
		if !dim.AcceptsUnit(u) {
			return "", fmt.Errorf("unit %q is not valid for %s", value, dim)
		}
		return string(u), nil
	}
	return "", fmt.Errorf("unknown config key %q", key)
}

func SetConfig(db *sql.DB, key, value string) error {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return fmt.Errorf("config key is required")
	}
	value, err := normalizeConfigValue(key, value)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
INSERT INTO app_config(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, value)
	if err != nil {
		return fmt.Errorf("set config %q: %w", key, err)
	}
	return nil
}

func GetConfig(db *sql.DB, key string) (string, bool, error) {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return "", false, fmt.Errorf("config key is required")
	}
	var value string
	err := db.QueryRow(`SELECT value FROM app_config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get config %q: %w", key, err)
	}
	return value, true, nil
}

func ListConfig(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query(`SELECT key, value FROM app_config ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list config: %w", err)
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate config: %w", err)
	}
	return out, nil
}

// DefaultUnitFor returns the configured unit for rules on d, or "" when unset.
func DefaultUnitFor(db *sql.DB, d model.Dimension) (string, error) {
	key, ok := dimensionConfigKeys[d]
	if !ok {
		return "", fmt.Errorf("unsupported dimension %q", d)
	}
	v, _, err := GetConfig(db, key)
	return v, err
}
