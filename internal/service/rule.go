package service

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/beaux-riel/UltraEdge-sub000/internal/engine"
	"github.com/beaux-riel/UltraEdge-sub000/internal/model"
)

// AddRuleInput holds a rule as typed at the CLI. Empty Unit falls back to the
// configured default unit for the dimension.
type AddRuleInput struct {
	Dimension string
	Condition string
	Value     string
	Unit      string
	Action    string
	Target    string
	Amount    string
}

// ParseRuleInput turns raw input into a validated rule without an id.
func ParseRuleInput(db *sql.DB, in AddRuleInput) (model.Rule, error) {
	dim, err := model.ParseDimension(in.Dimension)
	if err != nil {
		return model.Rule{}, err
	}
	cond, err := model.ParseCondition(in.Condition)
	if err != nil {
		return model.Rule{}, err
	}
	action, err := model.ParseAction(in.Action)
	if err != nil {
		return model.Rule{}, err
	}
	target, err := model.ParseTarget(in.Target)
	if err != nil {
		return model.Rule{}, err
	}
	value, err := model.ParseRuleValue(in.Value)
	if err != nil {
		return model.Rule{}, err
	}
	r := model.Rule{Dimension: dim, Condition: cond, Value: value, Action: action, Target: target, Amount: strings.TrimSpace(in.Amount)}
	if !cond.Terrain() {
		unitRaw := strings.TrimSpace(in.Unit)
		if unitRaw == "" && db != nil {
			unitRaw, err = DefaultUnitFor(db, dim)
			if err != nil {
				return model.Rule{}, err
			}
		}
		if unitRaw == "" {
			r.Unit = dim.DefaultUnit()
		} else if r.Unit, err = model.ParseUnit(unitRaw); err != nil {
			return model.Rule{}, err
		}
	}
	if err := engine.ValidateRule(r); err != nil {
		return model.Rule{}, err
	}
	return r, nil
}

func AddRule(db *sql.DB, planRef string, in AddRuleInput) (string, error) {
	r, err := ParseRuleInput(db, in)
	if err != nil {
		return "", err
	}
	var id string
	err = withTx(db, func(tx *sql.Tx) error {
		planID, err := resolvePlanID(tx, planRef)
		if err != nil {
			return err
		}
		pos, err := nextPosition(tx, "rules", planID)
		if err != nil {
			return err
		}
		if id, err = insertRule(tx, planID, pos, r); err != nil {
			return err
		}
		return touchPlan(tx, planID)
	})
	return id, err
}

func insertRule(q querier, planID string, pos int, r model.Rule) (string, error) {
	if err := engine.ValidateRule(r); err != nil {
		return "", err
	}
	id := newID()
	_, err := q.Exec(`
INSERT INTO rules(id, plan_id, position, dimension, condition_op, value_low, value_high, value_range, unit, action_op, target, amount)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, id, planID, pos, r.Dimension, r.Condition, r.Value.Low, r.Value.High, boolToInt(r.Value.Range), r.Unit, r.Action, r.Target, r.Amount)
	if err != nil {
		return "", fmt.Errorf("add rule: %w", err)
	}
	return id, nil
}

func insertRules(q querier, planID string, rules []model.Rule) error {
	for i, r := range rules {
		if _, err := insertRule(q, planID, i, r); err != nil {
			return fmt.Errorf("rule %d: %w", i+1, err)
		}
	}
	return nil
}

// dropInvalidRules keeps the stored rules that still validate and returns one
// warning for each rule it leaves out.
func dropInvalidRules(rules []model.Rule) ([]model.Rule, []string) {
	kept := make([]model.Rule, 0, len(rules))
	var warnings []string
	for _, r := range rules {
		if err := engine.ValidateRule(r); err != nil {
			warnings = append(warnings, fmt.Sprintf("skipped invalid rule %s: %v (run doctor --fix to remove it)", r.ID, err))
			continue
		}
		kept = append(kept, r)
	}
	return kept, warnings
}

func ListRules(db *sql.DB, planRef string) ([]model.Rule, error) {
	planID, err := resolvePlanID(db, planRef)
	if err != nil {
		return nil, err
	}
	return listRules(db, planID)
}

// listRules returns the plan's rules in authoring order, unvalidated.
func listRules(q querier, planID string) ([]model.Rule, error) {
	rows, err := q.Query(`
SELECT id, dimension, condition_op, value_low, value_high, value_range, unit, action_op, target, amount
FROM rules
WHERE plan_id = ?
ORDER BY position ASC
`, planID)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	out := make([]model.Rule, 0)
	for rows.Next() {
		var r model.Rule
		var isRange int
		if err := rows.Scan(&r.ID, &r.Dimension, &r.Condition, &r.Value.Low, &r.Value.High, &isRange, &r.Unit, &r.Action, &r.Target, &r.Amount); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		r.Value.Range = isRange != 0
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	return out, nil
}

func DeleteRule(db *sql.DB, ruleID string) error {
	ruleID = strings.TrimSpace(ruleID)
	if ruleID == "" {
		return fmt.Errorf("rule id is required")
	}
	return withTx(db, func(tx *sql.Tx) error {
		var planID string
		err := tx.QueryRow(`SELECT plan_id FROM rules WHERE id = ?`, ruleID).Scan(&planID)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: %s", ErrRuleNotFound, ruleID)
		}
		if err != nil {
			return fmt.Errorf("lookup rule %s: %w", ruleID, err)
		}
		if _, err := tx.Exec(`DELETE FROM rules WHERE id = ?`, ruleID); err != nil {
			return fmt.Errorf("delete rule %s: %w", ruleID, err)
		}
		return touchPlan(tx, planID)
	})
}

// RuleCheck is the outcome of scanning one plan's rules for conflicts.
type RuleCheck struct {
	PlanID    string
	PlanName  string
	Rules     []model.Rule
	Conflicts []model.Conflict
}

func CheckPlanConflicts(db *sql.DB, planRef string) (RuleCheck, error) {
	h, err := PlanByID(db, planRef)
	if err != nil {
		return RuleCheck{}, err
	}
	rules, err := listRules(db, h.ID)
	if err != nil {
		return RuleCheck{}, err
	}
	return RuleCheck{PlanID: h.ID, PlanName: h.Name, Rules: rules, Conflicts: engine.DetectConflicts(rules)}, nil
}
