package service

import (
	"database/sql"
	"fmt"

	"github.com/beaux-riel/UltraEdge-sub000/internal/engine"
	"github.com/beaux-riel/UltraEdge-sub000/internal/model"
)

// MergeResult describes a merged plan after it has been stored.
type MergeResult struct {
	PlanID     string
	Name       string
	Kind       model.PlanKind
	EntryCount int
	RuleCount  int
	Conflicts  []model.Conflict
	Warnings   []string
}

// MergeStoredPlans merges two stored plans of the same kind and stores the
// result as a new plan. Both source plans are left untouched. Stored rules that
// no longer validate are left out of the result and reported as warnings.
func MergeStoredPlans(db *sql.DB, refA, refB string) (MergeResult, error) {
	var res MergeResult
	err := withTx(db, func(tx *sql.Tx) error {
		a, err := planByID(tx, refA)
		if err != nil {
			return err
		}
		b, err := planByID(tx, refB)
		if err != nil {
			return err
		}
		if a.ID == b.ID {
			return fmt.Errorf("cannot merge plan %q with itself", a.Name)
		}
		if a.Kind != b.Kind {
			return fmt.Errorf("cannot merge %s plan %q with %s plan %q", a.Kind, a.Name, b.Kind, b.Name)
		}

		switch a.Kind {
		case model.PlanKindNutrition:
			pa, err := loadNutritionPlan(tx, a.ID)
			if err != nil {
				return err
			}
			pb, err := loadNutritionPlan(tx, b.ID)
			if err != nil {
				return err
			}
			merged := engine.MergeNutritionPlans(pa, pb)
			var warnings []string
			merged.Rules, warnings = dropInvalidRules(merged.Rules)
			id, err := saveNutritionPlan(tx, merged)
			if err != nil {
				return err
			}
			res = mergeResult(id, model.PlanKindNutrition, merged.Name, len(merged.Entries), merged.Rules)
			res.Warnings = warnings
		case model.PlanKindHydration:
			pa, err := loadHydrationPlan(tx, a.ID)
			if err != nil {
				return err
			}
			pb, err := loadHydrationPlan(tx, b.ID)
			if err != nil {
				return err
			}
			merged := engine.MergeHydrationPlans(pa, pb)
			var warnings []string
			merged.Rules, warnings = dropInvalidRules(merged.Rules)
			id, err := saveHydrationPlan(tx, merged)
			if err != nil {
				return err
			}
			res = mergeResult(id, model.PlanKindHydration, merged.Name, len(merged.Entries), merged.Rules)
			res.Warnings = warnings
		default:
			return fmt.Errorf("unsupported plan kind %q", a.Kind)
		}
		return nil
	})
	if err != nil {
		return MergeResult{}, fmt.Errorf("merge plans: %w", err)
	}
	return res, nil
}

func mergeResult(id string, kind model.PlanKind, name string, entries int, rules []model.Rule) MergeResult {
	return MergeResult{
		PlanID:     id,
		Name:       name,
		Kind:       kind,
		EntryCount: entries,
		RuleCount:  len(rules),
		Conflicts:  engine.DetectConflicts(rules),
	}
}
