package engine

import "github.com/beaux-riel/UltraEdge-sub000/internal/model"

// MergePlans combines two plans of the same entry type into a new plan.
//
// Entries are keyed by identity (food or liquid type). A's entries come first in
// A's order; when A repeats a key the later entry replaces the earlier one in
// place. B's entries with an unseen key are appended in B's order. Entries whose
// key is already present are combined with MaxWith, so numeric fields take the
// larger value and descriptive fields stay as they were in A.
//
// The result has no ID. Neither input is modified.
func MergePlans[E model.Entry[E]](a, b model.Plan[E]) model.Plan[E] {
	merged := model.Plan[E]{
		Name:        a.Name + " + " + b.Name,
		Description: "Merged plan combining " + a.Name + " and " + b.Name,
		RaceContext: model.RaceContext{
			RaceType:         firstNonEmpty(a.RaceType, b.RaceType),
			RaceDuration:     firstNonEmpty(a.RaceDuration, b.RaceDuration),
			TerrainType:      firstNonEmpty(a.TerrainType, b.TerrainType),
			WeatherCondition: firstNonEmpty(a.WeatherCondition, b.WeatherCondition),
			IntensityLevel:   firstNonEmpty(a.IntensityLevel, b.IntensityLevel),
		},
	}

	index := make(map[string]int, len(a.Entries)+len(b.Entries))
	entries := make([]E, 0, len(a.Entries)+len(b.Entries))
	for _, e := range a.Entries {
		key := e.IdentityKey()
		if pos, ok := index[key]; ok {
			entries[pos] = e
			continue
		}
		index[key] = len(entries)
		entries = append(entries, e)
	}
	for _, e := range b.Entries {
		key := e.IdentityKey()
		pos, ok := index[key]
		if !ok {
			index[key] = len(entries)
			entries = append(entries, e)
			continue
		}
		entries[pos] = entries[pos].MaxWith(e)
	}
	merged.Entries = entries
	merged.Rules = mergeRules(a.Rules, b.Rules)
	return merged
}

func MergeNutritionPlans(a, b model.NutritionPlan) model.NutritionPlan {
	return MergePlans(a, b)
}

func MergeHydrationPlans(a, b model.HydrationPlan) model.HydrationPlan {
	return MergePlans(a, b)
}

// mergeRules keeps A's rules and appends B's rules not already present by ID.
// Rules without an ID are always kept.
func mergeRules(a, b []model.Rule) []model.Rule {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(a))
	out := make([]model.Rule, 0, len(a)+len(b))
	for _, r := range a {
		if r.ID != "" {
			seen[r.ID] = true
		}
		out = append(out, r)
	}
	for _, r := range b {
		if r.ID != "" && seen[r.ID] {
			continue
		}
		out = append(out, r)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
