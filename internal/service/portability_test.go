package service_test

import (
	"strings"
	"testing"

	"github.com/beaux-riel/UltraEdge-sub000/internal/model"
	"github.com/beaux-riel/UltraEdge-sub000/internal/service"
)

func seedPortablePlans(t *testing.T) (*service.PlanDocument, func()) {
	t.Helper()
	src := newTestDB(t)
	food := createPlan(t, src, model.PlanKindNutrition, "Fuel")
	mustAddFood(t, src, food, model.NutritionEntry{FoodType: "gel", Calories: 100, Carbs: 25})
	addRule(t, src, food, sodiumAfter("2", "increase", "10%"))
	addRule(t, src, food, service.AddRuleInput{
		Dimension: "temperature", Condition: "between", Value: "60-80", Unit: "fahrenheit",
		Action: "set", Target: "water", Amount: "500",
	})
	drink := createPlan(t, src, model.PlanKindHydration, "Fluids")
	mustAddDrink(t, src, drink, model.HydrationEntry{LiquidType: "water", Volume: 500, VolumeUnit: "ml"})

	doc, err := service.ExportPlans(src)
	if err != nil {
		t.Fatalf("export plans: %v", err)
	}
	return doc, func() { src.Close() }
}

func TestExportImportRoundTrip(t *testing.T) {
	t.Parallel()
	for _, format := range []service.DocumentFormat{service.FormatJSON, service.FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			t.Parallel()
			doc, done := seedPortablePlans(t)
			defer done()

			raw, err := service.EncodeDocument(doc, format)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			decoded, err := service.DecodeDocument(raw, format)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}

			dst := newTestDB(t)
			defer dst.Close()
			report, err := service.ImportPlans(dst, decoded, service.ImportOptions{})
			if err != nil {
				t.Fatalf("import: %v", err)
			}
			if report.Inserted != 2 || report.Conflicts != 0 {
				t.Fatalf("unexpected report: %+v", report)
			}

			plans, err := service.ListPlans(dst, service.ListPlansFilter{Kind: model.PlanKindNutrition})
			if err != nil {
				t.Fatalf("list plans: %v", err)
			}
			if len(plans) != 1 {
				t.Fatalf("expected 1 nutrition plan, got %d", len(plans))
			}
			p, err := service.LoadNutritionPlan(dst, plans[0].ID)
			if err != nil {
				t.Fatalf("load plan: %v", err)
			}
			if len(p.Entries) != 1 || p.Entries[0].Calories != 100 {
				t.Fatalf("unexpected entries: %+v", p.Entries)
			}
			if len(p.Rules) != 2 || p.Rules[1].Value != model.Span(60, 80) {
				t.Fatalf("unexpected rules: %+v", p.Rules)
			}
		})
	}
}

func TestImportModes(t *testing.T) {
	t.Parallel()
	doc, done := seedPortablePlans(t)
	defer done()

	dst := newTestDB(t)
	defer dst.Close()
	if _, err := service.ImportPlans(dst, doc, service.ImportOptions{}); err != nil {
		t.Fatalf("first import: %v", err)
	}

	if _, err := service.ImportPlans(dst, doc, service.ImportOptions{Mode: service.ImportModeFail}); err == nil {
		t.Fatalf("expected fail mode to reject existing plans")
	}

	skipped, err := service.ImportPlans(dst, doc, service.ImportOptions{Mode: service.ImportModeSkip})
	if err != nil {
		t.Fatalf("skip import: %v", err)
	}
	if skipped.Skipped != 2 || skipped.Inserted != 0 {
		t.Fatalf("unexpected skip report: %+v", skipped)
	}

	replaced, err := service.ImportPlans(dst, doc, service.ImportOptions{Mode: service.ImportModeReplace})
	if err != nil {
		t.Fatalf("replace import: %v", err)
	}
	if replaced.Replaced != 2 {
		t.Fatalf("unexpected replace report: %+v", replaced)
	}

	doc.NutritionPlans[0].Entries = append(doc.NutritionPlans[0].Entries, model.NutritionEntry{FoodType: "chips", Calories: 150})
	merged, err := service.ImportPlans(dst, doc, service.ImportOptions{Mode: service.ImportModeMerge})
	if err != nil {
		t.Fatalf("merge import: %v", err)
	}
	if merged.Merged != 2 {
		t.Fatalf("unexpected merge report: %+v", merged)
	}

	plans, err := service.ListPlans(dst, service.ListPlansFilter{Kind: model.PlanKindNutrition})
	if err != nil {
		t.Fatalf("list plans: %v", err)
	}
	if len(plans) != 1 || plans[0].Name != "Fuel" {
		t.Fatalf("expected one plan named Fuel, got %+v", plans)
	}
	p, err := service.LoadNutritionPlan(dst, plans[0].ID)
	if err != nil {
		t.Fatalf("load plan: %v", err)
	}
	if len(p.Entries) != 2 {
		t.Fatalf("expected merged plan with gel and chips, got %+v", p.Entries)
	}
	if len(p.Rules) != 2 {
		t.Fatalf("expected re-imported rules to be deduplicated, got %d", len(p.Rules))
	}
}

func TestImportMergeKeepsStoredPlanID(t *testing.T) {
	t.Parallel()
	dst := newTestDB(t)
	defer dst.Close()

	id := createPlan(t, dst, model.PlanKindNutrition, "Fuel")
	mustAddFood(t, dst, id, model.NutritionEntry{FoodType: "Gel", Calories: 100})
	addRule(t, dst, id, sodiumAfter("2", "increase", "10%"))
	insertStaleRule(t, dst, id, "stale-rule")
	before, err := service.PlanByID(dst, id)
	if err != nil {
		t.Fatalf("plan before import: %v", err)
	}

	doc := &service.PlanDocument{
		Version: 1,
		NutritionPlans: []model.NutritionPlan{{
			Name:    "fuel",
			Entries: []model.NutritionEntry{{FoodType: "Chips", Calories: 150}},
		}},
	}
	report, err := service.ImportPlans(dst, doc, service.ImportOptions{Mode: service.ImportModeMerge})
	if err != nil {
		t.Fatalf("merge import: %v", err)
	}
	if report.Merged != 1 || report.Inserted != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(report.Warnings) != 1 || !strings.Contains(report.Warnings[0], "stale-rule") {
		t.Fatalf("expected a warning for the stale rule, got %v", report.Warnings)
	}

	after, err := service.PlanByID(dst, id)
	if err != nil {
		t.Fatalf("plan %s gone after merge import: %v", id, err)
	}
	if after.Name != "Fuel" || !after.CreatedAt.Equal(before.CreatedAt) {
		t.Fatalf("expected header to survive the import, before %+v after %+v", before, after)
	}
	p, err := service.LoadNutritionPlan(dst, id[:8])
	if err != nil {
		t.Fatalf("load by prefix: %v", err)
	}
	if len(p.Entries) != 2 || p.Entries[0].FoodType != "Gel" || p.Entries[1].FoodType != "Chips" {
		t.Fatalf("unexpected merged entries: %+v", p.Entries)
	}
	if len(p.Rules) != 1 || p.Rules[0].Target != model.TargetSodium {
		t.Fatalf("unexpected merged rules: %+v", p.Rules)
	}
	plans, err := service.ListPlans(dst, service.ListPlansFilter{Kind: model.PlanKindNutrition})
	if err != nil {
		t.Fatalf("list plans: %v", err)
	}
	if len(plans) != 1 {
		t.Fatalf("expected a single Fuel plan, got %+v", plans)
	}
}

func TestImportDryRunWritesNothing(t *testing.T) {
	t.Parallel()
	doc, done := seedPortablePlans(t)
	defer done()

	dst := newTestDB(t)
	defer dst.Close()
	report, err := service.ImportPlans(dst, doc, service.ImportOptions{DryRun: true})
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if report.Inserted != 2 {
		t.Fatalf("expected dry run to count 2 inserts, got %+v", report)
	}
	plans, err := service.ListPlans(dst, service.ListPlansFilter{})
	if err != nil {
		t.Fatalf("list plans: %v", err)
	}
	if len(plans) != 0 {
		t.Fatalf("expected dry run to store nothing, got %d plans", len(plans))
	}
}

func TestImportRejectsInvalidRules(t *testing.T) {
	t.Parallel()
	dst := newTestDB(t)
	defer dst.Close()

	doc := &service.PlanDocument{
		Version: 1,
		NutritionPlans: []model.NutritionPlan{{
			Name: "Broken",
			Rules: []model.Rule{{
				Dimension: model.DimensionTemperature, Condition: model.ConditionEvery,
				Value: model.Threshold(5), Unit: model.UnitCelsius,
				Action: model.ActionIncrease, Target: model.TargetWater, Amount: "10%",
			}},
		}},
	}
	_, err := service.ImportPlans(dst, doc, service.ImportOptions{})
	if err == nil || !strings.Contains(err.Error(), `plan "Broken"`) {
		t.Fatalf("expected invalid rule error naming the plan, got %v", err)
	}
}

func TestImportWarnsOnConflictingRules(t *testing.T) {
	t.Parallel()
	dst := newTestDB(t)
	defer dst.Close()

	rule := func(action model.Action) model.Rule {
		return model.Rule{
			Dimension: model.DimensionTime, Condition: model.ConditionAfter,
			Value: model.Threshold(2), Unit: model.UnitHours,
			Action: action, Target: model.TargetSodium, Amount: "10%",
		}
	}
	doc := &service.PlanDocument{
		Version: 1,
		NutritionPlans: []model.NutritionPlan{{
			Name:  "Contradictory",
			Rules: []model.Rule{rule(model.ActionIncrease), rule(model.ActionDecrease)},
		}},
	}
	report, err := service.ImportPlans(dst, doc, service.ImportOptions{})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(report.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", report.Warnings)
	}
}

func TestDecodeDocument(t *testing.T) {
	t.Parallel()
	raw := []byte(`
version: 1
nutrition_plans:
  - name: Hand written
    race_type: ultra
    entries:
      - food_type: gel
        calories: 100
    rules:
      - dimension: distance
        condition: every
        value: 5
        unit: miles
        action: increase
        target: carbs
        amount: 10%
`)
	doc, err := service.DecodeDocument(raw, service.FormatYAML)
	if err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	p := doc.NutritionPlans[0]
	if p.RaceType != "ultra" || len(p.Entries) != 1 || p.Rules[0].Value != model.Threshold(5) {
		t.Fatalf("unexpected decoded plan: %+v", p)
	}

	if _, err := service.DecodeDocument([]byte(`{"version": 99}`), service.FormatJSON); err == nil {
		t.Fatalf("expected error for newer document version")
	}
	if _, err := service.ParseDocumentFormat("", "plans.toml"); err == nil {
		t.Fatalf("expected error for unknown extension")
	}
	if f, err := service.ParseDocumentFormat("", "plans.YML"); err != nil || f != service.FormatYAML {
		t.Fatalf("expected yaml from .YML, got %q err=%v", f, err)
	}
}
