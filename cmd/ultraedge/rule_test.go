package ultraedge

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestRuleCheckFile(t *testing.T) {
	out := mustRunCLI(t, "rule", "check", "--file", "testdata/conflicting_plans.yaml")
	newGoldie(t).Assert(t, "rule_check_file", []byte(out))
}

func TestRuleCheckFileInvalidRules(t *testing.T) {
	out := mustRunCLI(t, "rule", "check", "--file", "testdata/invalid_rules.json")
	newGoldie(t).Assert(t, "rule_check_invalid", []byte(out))
}

func TestRuleCheckStrict(t *testing.T) {
	_, err := runCLI(t, "rule", "check", "--strict", "--file", "testdata/conflicting_plans.yaml")
	if err == nil || !strings.Contains(err.Error(), "found 1 conflicting rule pair(s)") {
		t.Fatalf("expected strict check to fail on conflicts, got %v", err)
	}
}

func TestRuleCheckNeedsPlanOrFile(t *testing.T) {
	if _, err := runCLI(t, "rule", "check"); err == nil {
		t.Fatalf("expected error without plan id or --file")
	}
}
