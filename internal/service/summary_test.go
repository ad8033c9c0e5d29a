package service_test

import (
	"math"
	"testing"

	"github.com/beaux-riel/UltraEdge-sub000/internal/model"
	"github.com/beaux-riel/UltraEdge-sub000/internal/service"
)

func TestSummarizeNutritionPlan(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	defer sqldb.Close()

	id := createPlan(t, sqldb, model.PlanKindNutrition, "Fuel")
	mustAddFood(t, sqldb, id, model.NutritionEntry{FoodType: "gel", Calories: 100, Carbs: 25, Sodium: 50, Quantity: 4, Essential: true})
	mustAddFood(t, sqldb, id, model.NutritionEntry{FoodType: "banana", Calories: 90, Carbs: 23})
	addRule(t, sqldb, id, sodiumAfter("2", "increase", "10%"))
	addRule(t, sqldb, id, sodiumAfter("4", "set", "300"))

	s, err := service.SummarizePlan(sqldb, id)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if s.Nutrition == nil || s.Hydration != nil {
		t.Fatalf("expected nutrition totals only, got %+v", s)
	}
	if s.Nutrition.Calories != 490 || s.Nutrition.Carbs != 123 || s.Nutrition.Sodium != 200 {
		t.Fatalf("unexpected totals: %+v", *s.Nutrition)
	}
	if s.Nutrition.Essential != 1 {
		t.Fatalf("expected 1 essential entry, got %d", s.Nutrition.Essential)
	}
	if s.RuleCount != 2 || s.ConflictCount != 1 {
		t.Fatalf("expected 2 rules and 1 conflict, got %d and %d", s.RuleCount, s.ConflictCount)
	}
}

func TestSummarizeHydrationPlanNormalizesVolume(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	defer sqldb.Close()

	id := createPlan(t, sqldb, model.PlanKindHydration, "Fluids")
	mustAddDrink(t, sqldb, id, model.HydrationEntry{LiquidType: "water", Volume: 1, VolumeUnit: "l"})
	mustAddDrink(t, sqldb, id, model.HydrationEntry{LiquidType: "broth", Volume: 1, VolumeUnit: "cup", Electrolytes: model.Electrolytes{Sodium: 800}})
	mustAddDrink(t, sqldb, id, model.HydrationEntry{LiquidType: "cola", Volume: 250, Electrolytes: model.Electrolytes{Potassium: 5}})

	s, err := service.SummarizePlan(sqldb, id)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if s.Hydration == nil {
		t.Fatalf("expected hydration totals")
	}
	if math.Abs(s.Hydration.VolumeML-1486.59) > 0.01 {
		t.Fatalf("expected ~1486.59 ml, got %.4f", s.Hydration.VolumeML)
	}
	if s.Hydration.Sodium != 800 || s.Hydration.Potassium != 5 {
		t.Fatalf("unexpected electrolytes: %+v", *s.Hydration)
	}
	if s.RuleCount != 0 || s.ConflictCount != 0 {
		t.Fatalf("expected no rules, got %+v", s)
	}
}
