package service

import (
	"database/sql"
	"fmt"

	"github.com/beaux-riel/UltraEdge-sub000/internal/engine"
	"github.com/beaux-riel/UltraEdge-sub000/internal/model"
)

type NutritionTotals struct {
	Calories  float64 `json:"calories"`
	Carbs     float64 `json:"carbs"`
	Protein   float64 `json:"protein"`
	Fat       float64 `json:"fat"`
	Sodium    float64 `json:"sodium"`
	Potassium float64 `json:"potassium"`
	Magnesium float64 `json:"magnesium"`
	Essential int     `json:"essential"`
}

type HydrationTotals struct {
	VolumeML  float64 `json:"volume_ml"`
	Sodium    float64 `json:"sodium"`
	Potassium float64 `json:"potassium"`
	Magnesium float64 `json:"magnesium"`
}

type PlanSummary struct {
	Plan          model.PlanHeader `json:"-"`
	Nutrition     *NutritionTotals `json:"nutrition,omitempty"`
	Hydration     *HydrationTotals `json:"hydration,omitempty"`
	RuleCount     int              `json:"rule_count"`
	ConflictCount int              `json:"conflict_count"`
}

// SumNutrition totals a plan's entries, each scaled by its quantity. A zero
// quantity counts as a single serving.
func SumNutrition(entries []model.NutritionEntry) NutritionTotals {
	var t NutritionTotals
	for _, e := range entries {
		q := e.Quantity
		if q == 0 {
			q = 1
		}
		t.Calories += e.Calories * q
		t.Carbs += e.Carbs * q
		t.Protein += e.Protein * q
		t.Fat += e.Fat * q
		t.Sodium += e.Sodium * q
		t.Potassium += e.Potassium * q
		t.Magnesium += e.Magnesium * q
		if e.Essential {
			t.Essential++
		}
	}
	return t
}

// SumHydration totals volumes in millilitres and electrolytes as stored.
func SumHydration(entries []model.HydrationEntry) (HydrationTotals, error) {
	var t HydrationTotals
	for _, e := range entries {
		ml, err := ConvertVolume(e.Volume, e.VolumeUnit, "ml")
		if err != nil {
			return HydrationTotals{}, fmt.Errorf("%s: %w", e.LiquidType, err)
		}
		t.VolumeML += ml
		t.Sodium += e.Electrolytes.Sodium
		t.Potassium += e.Electrolytes.Potassium
		t.Magnesium += e.Electrolytes.Magnesium
	}
	return t, nil
}

func SummarizePlan(db *sql.DB, ref string) (PlanSummary, error) {
	h, err := PlanByID(db, ref)
	if err != nil {
		return PlanSummary{}, err
	}
	var rules []model.Rule
	out := PlanSummary{Plan: h}
	switch h.Kind {
	case model.PlanKindNutrition:
		p, err := LoadNutritionPlan(db, h.ID)
		if err != nil {
			return PlanSummary{}, err
		}
		totals := SumNutrition(p.Entries)
		out.Nutrition = &totals
		rules = p.Rules
	case model.PlanKindHydration:
		p, err := LoadHydrationPlan(db, h.ID)
		if err != nil {
			return PlanSummary{}, err
		}
		totals, err := SumHydration(p.Entries)
		if err != nil {
			return PlanSummary{}, fmt.Errorf("summarize plan %s: %w", h.Name, err)
		}
		out.Hydration = &totals
		rules = p.Rules
	}
	out.RuleCount = len(rules)
	out.ConflictCount = len(engine.DetectConflicts(rules))
	return out, nil
}
