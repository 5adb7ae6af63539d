package llm

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/danieljhkim/gitmend/internal/catalog"
	"github.com/danieljhkim/gitmend/internal/planner"
	"github.com/danieljhkim/gitmend/internal/state"
)

func rebasePlan() *planner.Plan {
	return &planner.Plan{
		Goal:      state.GoalSpec{Mode: state.GoalRebaseToUpstream},
		TotalCost: 5.0,
		Steps: []planner.Step{
			{Action: catalog.Instance{Name: catalog.ActionRebase, Cost: 5.0}},
		},
	}
}

func TestApplyPlanHint(t *testing.T) {
	p := rebasePlan()
	hint := PlanHint{Action: catalog.ActionRebase, CostAdjustmentPct: 10, Note: "conflicted preview"}

	if !ApplyPlanHint(p, hint) {
		t.Fatal("ApplyPlanHint() = false, want applied")
	}
	if p.TotalCost != 5.5 {
		t.Errorf("TotalCost = %v, want 5.5", p.TotalCost)
	}
	if len(p.Notes) != 1 || !strings.Contains(p.Notes[0], "advisory hint") {
		t.Errorf("Notes = %v", p.Notes)
	}
	if !strings.Contains(p.Notes[0], "conflicted preview") {
		t.Errorf("Notes = %v, want the hint note carried through", p.Notes)
	}
}

func TestApplyPlanHintClampsOversizedAdjustments(t *testing.T) {
	p := rebasePlan()
	hint := PlanHint{Action: catalog.ActionRebase, CostAdjustmentPct: 300}

	if !ApplyPlanHint(p, hint) {
		t.Fatal("ApplyPlanHint() = false, want applied")
	}
	// 5.0 plus the clamped 20% of the action cost.
	if p.TotalCost != 6.0 {
		t.Errorf("TotalCost = %v, want 6.0", p.TotalCost)
	}
}

func TestApplyPlanHintIgnoresNonMatches(t *testing.T) {
	p := rebasePlan()

	if ApplyPlanHint(p, PlanHint{Action: "push-with-lease", CostAdjustmentPct: 10}) {
		t.Error("a hint for an absent action must not apply")
	}
	if ApplyPlanHint(p, PlanHint{Action: catalog.ActionRebase, CostAdjustmentPct: 0}) {
		t.Error("a zero adjustment must not apply")
	}
	if ApplyPlanHint(p, PlanHint{CostAdjustmentPct: 10}) {
		t.Error("a hint without an action must not apply")
	}
	if p.TotalCost != 5.0 || len(p.Notes) != 0 {
		t.Errorf("plan changed: cost %v, notes %v", p.TotalCost, p.Notes)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 100); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	got := truncate(strings.Repeat("x", 50), 10)
	if !strings.HasPrefix(got, "xxxxxxxxxx") || !strings.HasSuffix(got, "[truncated]") {
		t.Errorf("truncate() = %q", got)
	}
}

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	// Each é is two bytes; an odd limit lands mid-rune.
	got := truncate(strings.Repeat("é", 10), 5)
	if !utf8.ValidString(got) {
		t.Errorf("truncate() = %q, split a multi-byte rune", got)
	}
	if !strings.HasPrefix(got, "éé") || strings.HasPrefix(got, "ééé") {
		t.Errorf("truncate() = %q, want the cut backed up to two runes", got)
	}
}
