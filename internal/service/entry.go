package service

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/beaux-riel/UltraEdge-sub000/internal/model"
)

func AddNutritionEntry(db *sql.DB, planRef string, e model.NutritionEntry) (string, error) {
	var id string
	err := withTx(db, func(tx *sql.Tx) error {
		h, err := planByKind(tx, planRef, model.PlanKindNutrition)
		if err != nil {
			return err
		}
		pos, err := nextPosition(tx, "nutrition_entries", h.ID)
		if err != nil {
			return err
		}
		if id, err = insertNutritionEntry(tx, h.ID, pos, e); err != nil {
			return err
		}
		return touchPlan(tx, h.ID)
	})
	return id, err
}

func AddHydrationEntry(db *sql.DB, planRef string, e model.HydrationEntry) (string, error) {
	var id string
	err := withTx(db, func(tx *sql.Tx) error {
		h, err := planByKind(tx, planRef, model.PlanKindHydration)
		if err != nil {
			return err
		}
		pos, err := nextPosition(tx, "hydration_entries", h.ID)
		if err != nil {
			return err
		}
		if id, err = insertHydrationEntry(tx, h.ID, pos, e); err != nil {
			return err
		}
		return touchPlan(tx, h.ID)
	})
	return id, err
}

// DeleteEntry removes an entry of either kind by id.
func DeleteEntry(db *sql.DB, entryID string) error {
	entryID = strings.TrimSpace(entryID)
	if entryID == "" {
		return fmt.Errorf("entry id is required")
	}
	return withTx(db, func(tx *sql.Tx) error {
		for _, table := range []string{"nutrition_entries", "hydration_entries"} {
			var planID string
			err := tx.QueryRow(`SELECT plan_id FROM `+table+` WHERE id = ?`, entryID).Scan(&planID)
			if err == sql.ErrNoRows {
				continue
			}
			if err != nil {
				return fmt.Errorf("lookup entry %s: %w", entryID, err)
			}
			if _, err := tx.Exec(`DELETE FROM `+table+` WHERE id = ?`, entryID); err != nil {
				return fmt.Errorf("delete entry %s: %w", entryID, err)
			}
			return touchPlan(tx, planID)
		}
		return fmt.Errorf("%w: %s", ErrEntryNotFound, entryID)
	})
}

func nextPosition(q querier, table, planID string) (int, error) {
	var pos int
	if err := q.QueryRow(`SELECT COALESCE(MAX(position) + 1, 0) FROM `+table+` WHERE plan_id = ?`, planID).Scan(&pos); err != nil {
		return 0, fmt.Errorf("next %s position: %w", table, err)
	}
	return pos, nil
}

func validateNutritionEntry(e model.NutritionEntry) error {
	if strings.TrimSpace(e.FoodType) == "" {
		return fmt.Errorf("food type is required")
	}
	return validateNonNegative(map[string]float64{
		"calories":  e.Calories,
		"carbs":     e.Carbs,
		"protein":   e.Protein,
		"fat":       e.Fat,
		"sodium":    e.Sodium,
		"potassium": e.Potassium,
		"magnesium": e.Magnesium,
		"quantity":  e.Quantity,
	})
}

func validateHydrationEntry(e model.HydrationEntry) error {
	if strings.TrimSpace(e.LiquidType) == "" {
		return fmt.Errorf("liquid type is required")
	}
	if unit := strings.TrimSpace(e.VolumeUnit); unit != "" {
		if _, ok := resolveVolumeUnit(unit); !ok {
			return fmt.Errorf("unsupported volume unit %q", unit)
		}
	}
	return validateNonNegative(map[string]float64{
		"volume":    e.Volume,
		"sodium":    e.Electrolytes.Sodium,
		"potassium": e.Electrolytes.Potassium,
		"magnesium": e.Electrolytes.Magnesium,
	})
}

// insertNutritionEntry stores e under a fresh id. The food type is stored as
// given since it is the merge identity key.
func insertNutritionEntry(q querier, planID string, pos int, e model.NutritionEntry) (string, error) {
	if err := validateNutritionEntry(e); err != nil {
		return "", err
	}
	id := newID()
	_, err := q.Exec(`
INSERT INTO nutrition_entries(id, plan_id, position, food_type, calories, carbs, protein, fat, sodium, potassium, magnesium,
  timing, frequency, quantity, source_location, essential, notes)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, id, planID, pos, e.FoodType, e.Calories, e.Carbs, e.Protein, e.Fat, e.Sodium, e.Potassium, e.Magnesium,
		strings.TrimSpace(e.Timing), strings.TrimSpace(e.Frequency), e.Quantity, strings.TrimSpace(e.SourceLocation),
		boolToInt(e.Essential), strings.TrimSpace(e.Notes))
	if err != nil {
		return "", fmt.Errorf("add nutrition entry: %w", err)
	}
	return id, nil
}

func insertHydrationEntry(q querier, planID string, pos int, e model.HydrationEntry) (string, error) {
	if err := validateHydrationEntry(e); err != nil {
		return "", err
	}
	id := newID()
	_, err := q.Exec(`
INSERT INTO hydration_entries(id, plan_id, position, liquid_type, volume, volume_unit, sodium, potassium, magnesium,
  timing, frequency, consumption_rate, temperature, source_location, container_type)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, id, planID, pos, e.LiquidType, e.Volume, strings.TrimSpace(e.VolumeUnit),
		e.Electrolytes.Sodium, e.Electrolytes.Potassium, e.Electrolytes.Magnesium,
		strings.TrimSpace(e.Timing), strings.TrimSpace(e.Frequency), strings.TrimSpace(e.ConsumptionRate),
		strings.TrimSpace(e.Temperature), strings.TrimSpace(e.SourceLocation), strings.TrimSpace(e.ContainerType))
	if err != nil {
		return "", fmt.Errorf("add hydration entry: %w", err)
	}
	return id, nil
}

func listNutritionEntries(q querier, planID string) ([]model.NutritionEntry, error) {
	rows, err := q.Query(`
SELECT id, food_type, calories, carbs, protein, fat, sodium, potassium, magnesium, timing, frequency, quantity, source_location, essential, notes
FROM nutrition_entries
WHERE plan_id = ?
ORDER BY position ASC
`, planID)
	if err != nil {
		return nil, fmt.Errorf("list nutrition entries: %w", err)
	}
	defer rows.Close()

	out := make([]model.NutritionEntry, 0)
	for rows.Next() {
		var e model.NutritionEntry
		var essential int
		if err := rows.Scan(&e.ID, &e.FoodType, &e.Calories, &e.Carbs, &e.Protein, &e.Fat, &e.Sodium, &e.Potassium, &e.Magnesium,
			&e.Timing, &e.Frequency, &e.Quantity, &e.SourceLocation, &essential, &e.Notes); err != nil {
			return nil, fmt.Errorf("scan nutrition entry: %w", err)
		}
		e.Essential = essential != 0
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nutrition entries: %w", err)
	}
	return out, nil
}

func listHydrationEntries(q querier, planID string) ([]model.HydrationEntry, error) {
	rows, err := q.Query(`
SELECT id, liquid_type, volume, volume_unit, sodium, potassium, magnesium, timing, frequency, consumption_rate, temperature, source_location, container_type
FROM hydration_entries
WHERE plan_id = ?
ORDER BY position ASC
`, planID)
	if err != nil {
		return nil, fmt.Errorf("list hydration entries: %w", err)
	}
	defer rows.Close()

	out := make([]model.HydrationEntry, 0)
	for rows.Next() {
		var e model.HydrationEntry
		if err := rows.Scan(&e.ID, &e.LiquidType, &e.Volume, &e.VolumeUnit, &e.Electrolytes.Sodium, &e.Electrolytes.Potassium, &e.Electrolytes.Magnesium,
			&e.Timing, &e.Frequency, &e.ConsumptionRate, &e.Temperature, &e.SourceLocation, &e.ContainerType); err != nil {
			return nil, fmt.Errorf("scan hydration entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hydration entries: %w", err)
	}
	return out, nil
}
