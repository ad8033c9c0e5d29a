package engine

import (
	"fmt"

	"github.com/beaux-riel/UltraEdge-sub000/internal/model"
)

// DetectConflicts reports every pair of rules that share a dimension, a
// directional condition and a target but prescribe different actions. Each
// unordered pair is considered once, in input order.
//
// Range (between), periodic (every) and terrain conditions are never reported,
// even when their ranges overlap.
func DetectConflicts(rules []model.Rule) []model.Conflict {
	conflicts := make([]model.Conflict, 0)
	for i := 0; i < len(rules); i++ {
		for j := i + 1; j < len(rules); j++ {
			if !contradicts(rules[i], rules[j]) {
				continue
			}
			conflicts = append(conflicts, model.Conflict{
				RuleAID:    rules[i].ID,
				RuleBID:    rules[j].ID,
				RuleAIndex: i + 1,
				RuleBIndex: j + 1,
				Message:    fmt.Sprintf("Rules %d and %d have contradictory actions for the same condition", i+1, j+1),
			})
		}
	}
	return conflicts
}

func contradicts(a, b model.Rule) bool {
	return a.Dimension == b.Dimension &&
		a.Condition == b.Condition &&
		a.Target == b.Target &&
		a.Condition.Directional() &&
		a.Action != b.Action
}

// CountPairs is the number of rule pairs DetectConflicts compares for n rules.
func CountPairs(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}

// ConflictingRuleIDs returns the set of rule IDs involved in at least one conflict.
func ConflictingRuleIDs(conflicts []model.Conflict) map[string]bool {
	out := make(map[string]bool, len(conflicts)*2)
	for _, c := range conflicts {
		out[c.RuleAID] = true
		out[c.RuleBID] = true
	}
	return out
}
