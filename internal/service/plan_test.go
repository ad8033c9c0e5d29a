package service_test

import (
	"errors"
	"testing"

	"github.com/beaux-riel/UltraEdge-sub000/internal/model"
	"github.com/beaux-riel/UltraEdge-sub000/internal/service"
)

func TestCreateAndLoadPlan(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	defer sqldb.Close()

	id, err := service.CreatePlan(sqldb, service.CreatePlanInput{
		Kind:        model.PlanKindNutrition,
		Name:        "  Western States  ",
		Description: "100 mile fueling",
		RaceContext: model.RaceContext{RaceType: "ultra", TerrainType: "mountain"},
	})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	h, err := service.PlanByID(sqldb, id)
	if err != nil {
		t.Fatalf("plan by id: %v", err)
	}
	if h.Name != "Western States" || h.Kind != model.PlanKindNutrition {
		t.Fatalf("unexpected header: %+v", h)
	}
	if h.RaceType != "ultra" || h.TerrainType != "mountain" {
		t.Fatalf("race context not stored: %+v", h.RaceContext)
	}

	byPrefix, err := service.PlanByID(sqldb, id[:8])
	if err != nil {
		t.Fatalf("plan by prefix: %v", err)
	}
	if byPrefix.ID != id {
		t.Fatalf("expected prefix to resolve to %s, got %s", id, byPrefix.ID)
	}

	p, err := service.LoadNutritionPlan(sqldb, id)
	if err != nil {
		t.Fatalf("load nutrition plan: %v", err)
	}
	if len(p.Entries) != 0 || len(p.Rules) != 0 {
		t.Fatalf("expected empty plan, got %d entries and %d rules", len(p.Entries), len(p.Rules))
	}
	if _, err := service.LoadHydrationPlan(sqldb, id); err == nil {
		t.Fatalf("expected kind mismatch loading nutrition plan as hydration")
	}
}

func TestCreatePlanValidation(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	defer sqldb.Close()

	if _, err := service.CreatePlan(sqldb, service.CreatePlanInput{Kind: model.PlanKindNutrition, Name: "  "}); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if _, err := service.CreatePlan(sqldb, service.CreatePlanInput{Kind: "recovery", Name: "Plan"}); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestPlanNotFound(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	defer sqldb.Close()

	_, err := service.PlanByID(sqldb, "does-not-exist")
	if !errors.Is(err, service.ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}
	if err := service.DeletePlan(sqldb, "does-not-exist"); !errors.Is(err, service.ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound on delete, got %v", err)
	}
}

func TestPlanRefWildcardsAreLiteral(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	defer sqldb.Close()

	id := createPlan(t, sqldb, model.PlanKindNutrition, "Only plan")
	for _, ref := range []string{"%", "_", id[:2] + "%", "________"} {
		if _, err := service.PlanByID(sqldb, ref); !errors.Is(err, service.ErrPlanNotFound) {
			t.Fatalf("ref %q: expected ErrPlanNotFound, got %v", ref, err)
		}
	}
	if h, err := service.PlanByID(sqldb, id[:8]); err != nil || h.ID != id {
		t.Fatalf("expected prefix %q to resolve to %s, got %+v, %v", id[:8], id, h, err)
	}
}

func TestListPlansFilters(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	defer sqldb.Close()

	createPlan(t, sqldb, model.PlanKindNutrition, "Leadville fuel")
	createPlan(t, sqldb, model.PlanKindHydration, "Leadville fluids")
	createPlan(t, sqldb, model.PlanKindNutrition, "Hardrock fuel")

	all, err := service.ListPlans(sqldb, service.ListPlansFilter{})
	if err != nil {
		t.Fatalf("list plans: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 plans, got %d", len(all))
	}

	nutrition, err := service.ListPlans(sqldb, service.ListPlansFilter{Kind: model.PlanKindNutrition})
	if err != nil {
		t.Fatalf("list nutrition plans: %v", err)
	}
	if len(nutrition) != 2 {
		t.Fatalf("expected 2 nutrition plans, got %d", len(nutrition))
	}

	leadville, err := service.ListPlans(sqldb, service.ListPlansFilter{Query: "LEADVILLE"})
	if err != nil {
		t.Fatalf("search plans: %v", err)
	}
	if len(leadville) != 2 {
		t.Fatalf("expected 2 leadville plans, got %d", len(leadville))
	}

	limited, err := service.ListPlans(sqldb, service.ListPlansFilter{Limit: 1})
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected limit 1, got %d", len(limited))
	}

	if _, err := service.ListPlans(sqldb, service.ListPlansFilter{Kind: "bogus"}); err == nil {
		t.Fatalf("expected error for unknown kind filter")
	}
}

func TestUpdatePlan(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	defer sqldb.Close()

	id := createPlan(t, sqldb, model.PlanKindHydration, "Hot day")
	name := "Hot day v2"
	weather := "hot"
	if err := service.UpdatePlan(sqldb, id, service.UpdatePlanInput{Name: &name, Weather: &weather}); err != nil {
		t.Fatalf("update plan: %v", err)
	}
	h, err := service.PlanByID(sqldb, id)
	if err != nil {
		t.Fatalf("plan by id: %v", err)
	}
	if h.Name != name || h.WeatherCondition != weather {
		t.Fatalf("update not applied: %+v", h)
	}

	empty := " "
	if err := service.UpdatePlan(sqldb, id, service.UpdatePlanInput{Name: &empty}); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if err := service.UpdatePlan(sqldb, id, service.UpdatePlanInput{}); err == nil {
		t.Fatalf("expected error when nothing to update")
	}
}

func TestDeletePlanCascades(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	defer sqldb.Close()

	id := createPlan(t, sqldb, model.PlanKindNutrition, "Doomed")
	entryID, err := service.AddNutritionEntry(sqldb, id, model.NutritionEntry{FoodType: "gel", Calories: 100})
	if err != nil {
		t.Fatalf("add entry: %v", err)
	}
	ruleID := addRule(t, sqldb, id, sodiumAfter("2", "increase", "10%"))

	if err := service.DeletePlan(sqldb, id); err != nil {
		t.Fatalf("delete plan: %v", err)
	}
	if err := service.DeleteEntry(sqldb, entryID); !errors.Is(err, service.ErrEntryNotFound) {
		t.Fatalf("expected entry removed with plan, got %v", err)
	}
	if err := service.DeleteRule(sqldb, ruleID); !errors.Is(err, service.ErrRuleNotFound) {
		t.Fatalf("expected rule removed with plan, got %v", err)
	}
}
