package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/beaux-riel/UltraEdge-sub000/internal/model"
)

// Amount is a parsed rule amount: an absolute quantity or a percentage.
type Amount struct {
	Value   float64
	Percent bool
}

func (a Amount) String() string {
	s := strconv.FormatFloat(a.Value, 'f', -1, 64)
	if a.Percent {
		return s + "%"
	}
	return s
}

func ParseAmount(s string) (Amount, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Amount{}, fmt.Errorf("amount is required")
	}
	percent := strings.HasSuffix(raw, "%")
	raw = strings.TrimSpace(strings.TrimSuffix(raw, "%"))
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q", s)
	}
	if v < 0 {
		return Amount{}, fmt.Errorf("amount must be >= 0")
	}
	return Amount{Value: v, Percent: percent}, nil
}

// ValidateRule checks that a rule's fields agree with each other: the condition
// belongs to the dimension, the value has the shape the condition needs, and
// the unit measures the dimension.
func ValidateRule(r model.Rule) error {
	if !r.Dimension.Valid() {
		return fmt.Errorf("unsupported dimension %q", r.Dimension)
	}
	if !r.Dimension.Accepts(r.Condition) {
		return fmt.Errorf("condition %q is not valid for %s rules", r.Condition, r.Dimension)
	}
	if !r.Action.Valid() {
		return fmt.Errorf("unsupported action %q", r.Action)
	}
	if !r.Target.Valid() {
		return fmt.Errorf("unsupported target %q", r.Target)
	}
	if _, err := ParseAmount(r.Amount); err != nil {
		return err
	}

	if r.Condition.Terrain() {
		if r.Value != (model.RuleValue{}) {
			return fmt.Errorf("%s rules take no value", r.Condition)
		}
		return nil
	}

	switch {
	case r.Condition == model.ConditionBetween && !r.Value.Range:
		return fmt.Errorf("between requires a low-high range")
	case r.Condition != model.ConditionBetween && r.Value.Range:
		return fmt.Errorf("%s takes a single value, got range %s", r.Condition, r.Value)
	case r.Value.Range && r.Value.Low > r.Value.High:
		return fmt.Errorf("range low %v must be <= high %v", r.Value.Low, r.Value.High)
	}
	if r.Dimension != model.DimensionTemperature && r.Value.Low < 0 {
		return fmt.Errorf("%s value must be >= 0", r.Dimension)
	}
	if r.Condition == model.ConditionEvery && r.Value.Low <= 0 {
		return fmt.Errorf("every requires an interval > 0")
	}
	if !r.Dimension.AcceptsUnit(r.Unit) {
		return fmt.Errorf("unit %q is not valid for %s rules", r.Unit, r.Dimension)
	}
	return nil
}

// ValidateRules validates each rule and joins the failures, prefixed with the
// rule's 1-based position.
func ValidateRules(rules []model.Rule) error {
	var errs []error
	for i, r := range rules {
		if err := ValidateRule(r); err != nil {
			errs = append(errs, fmt.Errorf("rule %d: %w", i+1, err))
		}
	}
	return errors.Join(errs...)
}
