package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/beaux-riel/UltraEdge-sub000/internal/model"
)

type CreatePlanInput struct {
	Kind        model.PlanKind
	Name        string
	Description string
	model.RaceContext
}

type UpdatePlanInput struct {
	Name        *string
	Description *string
	RaceType    *string
	Duration    *string
	Terrain     *string
	Weather     *string
	Intensity   *string
}

type ListPlansFilter struct {
	Kind  model.PlanKind
	Query string
	Limit int
}

func CreatePlan(db *sql.DB, in CreatePlanInput) (string, error) {
	id := newID()
	if err := insertPlanHeader(db, id, in); err != nil {
		return "", err
	}
	return id, nil
}

func insertPlanHeader(q querier, id string, in CreatePlanInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return fmt.Errorf("plan name is required")
	}
	if _, err := model.ParsePlanKind(string(in.Kind)); err != nil {
		return err
	}
	_, err := q.Exec(`
INSERT INTO plans(id, kind, name, description, race_type, race_duration, terrain_type, weather_condition, intensity_level)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
`, id, in.Kind, name, strings.TrimSpace(in.Description),
		strings.TrimSpace(in.RaceType), strings.TrimSpace(in.RaceDuration), strings.TrimSpace(in.TerrainType),
		strings.TrimSpace(in.WeatherCondition), strings.TrimSpace(in.IntensityLevel))
	if err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	return nil
}

const planHeaderColumns = `p.id, p.kind, p.name, p.description, p.race_type, p.race_duration, p.terrain_type, p.weather_condition, p.intensity_level,
  (SELECT COUNT(1) FROM nutrition_entries n WHERE n.plan_id = p.id) + (SELECT COUNT(1) FROM hydration_entries h WHERE h.plan_id = p.id),
  (SELECT COUNT(1) FROM rules r WHERE r.plan_id = p.id),
  p.created_at, p.updated_at`

func scanPlanHeader(scan func(dest ...any) error) (model.PlanHeader, error) {
	var h model.PlanHeader
	err := scan(&h.ID, &h.Kind, &h.Name, &h.Description, &h.RaceType, &h.RaceDuration, &h.TerrainType,
		&h.WeatherCondition, &h.IntensityLevel, &h.EntryCount, &h.RuleCount, &h.CreatedAt, &h.UpdatedAt)
	return h, err
}

// PlanByID returns the plan header for a full id or unambiguous id prefix.
func PlanByID(db *sql.DB, ref string) (model.PlanHeader, error) {
	return planByID(db, ref)
}

func planByID(q querier, ref string) (model.PlanHeader, error) {
	id, err := resolvePlanID(q, ref)
	if err != nil {
		return model.PlanHeader{}, err
	}
	h, err := scanPlanHeader(q.QueryRow(`SELECT `+planHeaderColumns+` FROM plans p WHERE p.id = ?`, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PlanHeader{}, fmt.Errorf("%w: %s", ErrPlanNotFound, ref)
		}
		return model.PlanHeader{}, fmt.Errorf("get plan %s: %w", id, err)
	}
	return h, nil
}

func ListPlans(db *sql.DB, f ListPlansFilter) ([]model.PlanHeader, error) {
	query := `SELECT ` + planHeaderColumns + ` FROM plans p WHERE 1=1`
	args := make([]any, 0, 3)
	if f.Kind != "" {
		if _, err := model.ParsePlanKind(string(f.Kind)); err != nil {
			return nil, err
		}
		query += ` AND p.kind = ?`
		args = append(args, f.Kind)
	}
	if q := normalizeName(f.Query); q != "" {
		query += ` AND LOWER(p.name) LIKE ?`
		args = append(args, "%"+q+"%")
	}
	query += ` ORDER BY p.created_at DESC, p.name ASC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	out := make([]model.PlanHeader, 0)
	for rows.Next() {
		h, err := scanPlanHeader(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plans: %w", err)
	}
	return out, nil
}

func UpdatePlan(db *sql.DB, ref string, in UpdatePlanInput) error {
	id, err := resolvePlanID(db, ref)
	if err != nil {
		return err
	}
	sets := make([]string, 0, 7)
	args := make([]any, 0, 8)
	add := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, strings.TrimSpace(*v))
		}
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return fmt.Errorf("plan name cannot be empty")
	}
	add("name", in.Name)
	add("description", in.Description)
	add("race_type", in.RaceType)
	add("race_duration", in.Duration)
	add("terrain_type", in.Terrain)
	add("weather_condition", in.Weather)
	add("intensity_level", in.Intensity)
	if len(sets) == 0 {
		return fmt.Errorf("no plan fields to update")
	}
	args = append(args, id)
	if _, err := db.Exec(`UPDATE plans SET `+strings.Join(sets, ", ")+`, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, args...); err != nil {
		return fmt.Errorf("update plan %s: %w", id, err)
	}
	return nil
}

func DeletePlan(db *sql.DB, ref string) error {
	id, err := resolvePlanID(db, ref)
	if err != nil {
		return err
	}
	return deletePlanTx(db, id)
}

func LoadNutritionPlan(db *sql.DB, ref string) (model.NutritionPlan, error) {
	return loadNutritionPlan(db, ref)
}

func loadNutritionPlan(q querier, ref string) (model.NutritionPlan, error) {
	h, err := planByKind(q, ref, model.PlanKindNutrition)
	if err != nil {
		return model.NutritionPlan{}, err
	}
	entries, err := listNutritionEntries(q, h.ID)
	if err != nil {
		return model.NutritionPlan{}, err
	}
	rules, err := listRules(q, h.ID)
	if err != nil {
		return model.NutritionPlan{}, err
	}
	return model.NutritionPlan{ID: h.ID, Name: h.Name, Description: h.Description, RaceContext: h.RaceContext, Entries: entries, Rules: rules}, nil
}

func LoadHydrationPlan(db *sql.DB, ref string) (model.HydrationPlan, error) {
	return loadHydrationPlan(db, ref)
}

func loadHydrationPlan(q querier, ref string) (model.HydrationPlan, error) {
	h, err := planByKind(q, ref, model.PlanKindHydration)
	if err != nil {
		return model.HydrationPlan{}, err
	}
	entries, err := listHydrationEntries(q, h.ID)
	if err != nil {
		return model.HydrationPlan{}, err
	}
	rules, err := listRules(q, h.ID)
	if err != nil {
		return model.HydrationPlan{}, err
	}
	return model.HydrationPlan{ID: h.ID, Name: h.Name, Description: h.Description, RaceContext: h.RaceContext, Entries: entries, Rules: rules}, nil
}

func planByKind(q querier, ref string, kind model.PlanKind) (model.PlanHeader, error) {
	h, err := planByID(q, ref)
	if err != nil {
		return model.PlanHeader{}, err
	}
	if h.Kind != kind {
		return model.PlanHeader{}, fmt.Errorf("plan %q is a %s plan, not %s", h.Name, h.Kind, kind)
	}
	return h, nil
}

// SaveNutritionPlan stores a complete plan, entries and rules included, under
// fresh ids and returns the new plan id.
func SaveNutritionPlan(db *sql.DB, p model.NutritionPlan) (string, error) {
	var id string
	err := withTx(db, func(tx *sql.Tx) error {
		var err error
		id, err = saveNutritionPlan(tx, p)
		return err
	})
	return id, err
}

func saveNutritionPlan(q querier, p model.NutritionPlan) (string, error) {
	id := newID()
	if err := insertPlanHeader(q, id, CreatePlanInput{Kind: model.PlanKindNutrition, Name: p.Name, Description: p.Description, RaceContext: p.RaceContext}); err != nil {
		return "", err
	}
	if err := insertNutritionContents(q, id, p); err != nil {
		return "", err
	}
	return id, nil
}

func insertNutritionContents(q querier, id string, p model.NutritionPlan) error {
	for i, e := range p.Entries {
		if _, err := insertNutritionEntry(q, id, i, e); err != nil {
			return err
		}
	}
	return insertRules(q, id, p.Rules)
}

// rewriteNutritionPlan replaces the entries and rules of stored plan id with
// those of p. The plan keeps its id, name and created_at.
func rewriteNutritionPlan(q querier, id string, p model.NutritionPlan) error {
	if err := clearPlanContents(q, id); err != nil {
		return err
	}
	if err := insertNutritionContents(q, id, p); err != nil {
		return err
	}
	return touchPlan(q, id)
}

func SaveHydrationPlan(db *sql.DB, p model.HydrationPlan) (string, error) {
	var id string
	err := withTx(db, func(tx *sql.Tx) error {
		var err error
		id, err = saveHydrationPlan(tx, p)
		return err
	})
	return id, err
}

func saveHydrationPlan(q querier, p model.HydrationPlan) (string, error) {
	id := newID()
	if err := insertPlanHeader(q, id, CreatePlanInput{Kind: model.PlanKindHydration, Name: p.Name, Description: p.Description, RaceContext: p.RaceContext}); err != nil {
		return "", err
	}
	if err := insertHydrationContents(q, id, p); err != nil {
		return "", err
	}
	return id, nil
}

func insertHydrationContents(q querier, id string, p model.HydrationPlan) error {
	for i, e := range p.Entries {
		if _, err := insertHydrationEntry(q, id, i, e); err != nil {
			return err
		}
	}
	return insertRules(q, id, p.Rules)
}

func rewriteHydrationPlan(q querier, id string, p model.HydrationPlan) error {
	if err := clearPlanContents(q, id); err != nil {
		return err
	}
	if err := insertHydrationContents(q, id, p); err != nil {
		return err
	}
	return touchPlan(q, id)
}

func clearPlanContents(q querier, id string) error {
	for _, table := range []string{"nutrition_entries", "hydration_entries", "rules"} {
		if _, err := q.Exec(`DELETE FROM `+table+` WHERE plan_id = ?`, id); err != nil {
			return fmt.Errorf("clear %s for plan %s: %w", table, id, err)
		}
	}
	return nil
}

func touchPlan(q querier, id string) error {
	if _, err := q.Exec(`UPDATE plans SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id); err != nil {
		return fmt.Errorf("touch plan %s: %w", id, err)
	}
	return nil
}
