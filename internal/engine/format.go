package engine

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/beaux-riel/UltraEdge-sub000/internal/model"
)

// FormatRule renders a rule the way it is shown to athletes, for example
// "After 2 hours: increase sodium by 10%".
func FormatRule(r model.Rule) string {
	return capitalize(triggerText(r)) + ": " + actionText(r)
}

func triggerText(r model.Rule) string {
	cond := humanize(string(r.Condition))
	if r.Condition.Terrain() {
		return cond
	}
	unit := r.Unit.Symbol()
	switch {
	case r.Condition == model.ConditionEvery:
		return fmt.Sprintf("every %s %s", r.Value, unit)
	case unit == "":
		return fmt.Sprintf("%s %s", cond, r.Value)
	}
	return fmt.Sprintf("%s %s %s", cond, r.Value, unit)
}

func actionText(r model.Rule) string {
	target := humanize(string(r.Target))
	amount := strings.TrimSpace(r.Amount)
	if r.Action == model.ActionSet {
		return fmt.Sprintf("set %s to %s", target, amount)
	}
	return fmt.Sprintf("%s %s by %s", r.Action, target, amount)
}

// FormatConflicts renders one warning line per conflict, naming both rules.
// rules must be the list the conflicts were detected in.
func FormatConflicts(rules []model.Rule, conflicts []model.Conflict) []string {
	lines := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		line := c.Message
		if a, b := c.RuleAIndex-1, c.RuleBIndex-1; a >= 0 && b >= 0 && a < len(rules) && b < len(rules) {
			line = fmt.Sprintf("%s (%q vs %q)", c.Message, FormatRule(rules[a]), FormatRule(rules[b]))
		}
		lines = append(lines, line)
	}
	return lines
}

func humanize(s string) string {
	return cases.Lower(language.English).String(strings.ReplaceAll(s, "_", " "))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	first, rest, _ := strings.Cut(s, " ")
	first = cases.Title(language.English).String(first)
	if rest == "" {
		return first
	}
	return first + " " + rest
}
