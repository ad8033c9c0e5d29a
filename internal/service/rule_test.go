package service_test

import (
	"errors"
	"testing"

	"github.com/beaux-riel/UltraEdge-sub000/internal/model"
	"github.com/beaux-riel/UltraEdge-sub000/internal/service"
)

func TestAddAndListRules(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	defer sqldb.Close()

	id := createPlan(t, sqldb, model.PlanKindNutrition, "Rules")
	addRule(t, sqldb, id, sodiumAfter("2", "increase", "10%"))
	addRule(t, sqldb, id, service.AddRuleInput{
		Dimension: "temperature", Condition: "between", Value: "60-80", Unit: "F",
		Action: "set", Target: "water", Amount: "500",
	})
	addRule(t, sqldb, id, service.AddRuleInput{
		Dimension: "distance", Condition: "on uphill", Action: "increase", Target: "carbs", Amount: "5%",
	})

	rules, err := service.ListRules(sqldb, id)
	if err != nil {
		t.Fatalf("list rules: %v", err)
	}
	if len(rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(rules))
	}
	if rules[0].Condition != model.ConditionAfter || rules[0].Value != model.Threshold(2) || rules[0].Unit != model.UnitHours {
		t.Fatalf("unexpected first rule: %+v", rules[0])
	}
	if rules[1].Value != model.Span(60, 80) || rules[1].Unit != model.UnitFahrenheit {
		t.Fatalf("expected 60-80 fahrenheit range, got %+v", rules[1])
	}
	if rules[2].Condition != model.ConditionOnUphill || rules[2].Unit != "" {
		t.Fatalf("expected unitless uphill rule, got %+v", rules[2])
	}
	for _, r := range rules {
		if r.ID == "" {
			t.Fatalf("expected stored rule id, got %+v", r)
		}
	}
}

func TestAddRuleRejectsInvalid(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	defer sqldb.Close()

	id := createPlan(t, sqldb, model.PlanKindNutrition, "Rules")
	cases := []struct {
		name string
		in   service.AddRuleInput
	}{
		{"unknown dimension", service.AddRuleInput{Dimension: "altitude", Condition: "above", Value: "3000", Action: "increase", Target: "water", Amount: "10%"}},
		{"condition not allowed for dimension", service.AddRuleInput{Dimension: "temperature", Condition: "after", Value: "80", Action: "increase", Target: "water", Amount: "10%"}},
		{"between without range", service.AddRuleInput{Dimension: "time", Condition: "between", Value: "2", Action: "increase", Target: "water", Amount: "10%"}},
		{"range on directional condition", service.AddRuleInput{Dimension: "time", Condition: "after", Value: "2-3", Action: "increase", Target: "water", Amount: "10%"}},
		{"unit for wrong dimension", service.AddRuleInput{Dimension: "time", Condition: "after", Value: "2", Unit: "km", Action: "increase", Target: "water", Amount: "10%"}},
		{"negative amount", service.AddRuleInput{Dimension: "time", Condition: "after", Value: "2", Action: "increase", Target: "water", Amount: "-10"}},
		{"missing amount", service.AddRuleInput{Dimension: "time", Condition: "after", Value: "2", Action: "increase", Target: "water"}},
		{"unknown target", service.AddRuleInput{Dimension: "time", Condition: "after", Value: "2", Action: "increase", Target: "caffeine", Amount: "10"}},
	}
	for _, tc := range cases {
		if _, err := service.AddRule(sqldb, id, tc.in); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
	rules, err := service.ListRules(sqldb, id)
	if err != nil {
		t.Fatalf("list rules: %v", err)
	}
	if len(rules) != 0 {
		t.Fatalf("expected no stored rules, got %d", len(rules))
	}
}

func TestAddRuleUsesConfiguredUnit(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	defer sqldb.Close()

	if err := service.SetConfig(sqldb, service.ConfigDefaultDistanceUnit, "km"); err != nil {
		t.Fatalf("set config: %v", err)
	}
	id := createPlan(t, sqldb, model.PlanKindHydration, "Metric")
	addRule(t, sqldb, id, service.AddRuleInput{
		Dimension: "distance", Condition: "every", Value: "10", Action: "increase", Target: "fluid_volume", Amount: "250",
	})
	rules, err := service.ListRules(sqldb, id)
	if err != nil {
		t.Fatalf("list rules: %v", err)
	}
	if len(rules) != 1 || rules[0].Unit != model.UnitKilometers {
		t.Fatalf("expected rule in km, got %+v", rules)
	}
}

func TestDeleteRule(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	defer sqldb.Close()

	id := createPlan(t, sqldb, model.PlanKindNutrition, "Rules")
	ruleID := addRule(t, sqldb, id, sodiumAfter("2", "increase", "10%"))
	if err := service.DeleteRule(sqldb, ruleID); err != nil {
		t.Fatalf("delete rule: %v", err)
	}
	if err := service.DeleteRule(sqldb, ruleID); !errors.Is(err, service.ErrRuleNotFound) {
		t.Fatalf("expected ErrRuleNotFound, got %v", err)
	}
}

func TestCheckPlanConflicts(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	defer sqldb.Close()

	id := createPlan(t, sqldb, model.PlanKindNutrition, "Contradictory")
	first := addRule(t, sqldb, id, sodiumAfter("2", "increase", "10%"))
	second := addRule(t, sqldb, id, sodiumAfter("2", "decrease", "5%"))

	check, err := service.CheckPlanConflicts(sqldb, id)
	if err != nil {
		t.Fatalf("check conflicts: %v", err)
	}
	if len(check.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(check.Rules))
	}
	if len(check.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(check.Conflicts))
	}
	c := check.Conflicts[0]
	if c.RuleAID != first || c.RuleBID != second {
		t.Fatalf("expected conflict between %s and %s, got %+v", first, second, c)
	}
	if c.Message != "Rules 1 and 2 have contradictory actions for the same condition" {
		t.Fatalf("unexpected message %q", c.Message)
	}
}
