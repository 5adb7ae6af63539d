package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danieljhkim/gitmend/internal/gitx"
	"github.com/danieljhkim/gitmend/internal/state"
)

func divergedForAssist() state.RepoState {
	return state.RepoState{
		RepoPath:       "/repo",
		Ref:            state.RefInfo{Branch: "main", Upstream: "origin/main"},
		Behind:         3,
		WorktreeClean:  true,
		FreshlyFetched: true,
		Tests:          state.TestsUnknown,
	}
}

func TestAssistOffReturnsNil(t *testing.T) {
	opts := Options{Mode: ModeOff}
	if got := Assist(context.Background(), opts, gitx.NewScriptedRunner(), divergedForAssist(), rebasePlan()); got != nil {
		t.Errorf("Assist() = %+v, want nil when off", got)
	}
}

func TestAssistMockSkipsNetwork(t *testing.T) {
	opts := Options{Mode: ModeSuggest, Safety: SafetyBalanced, Mock: true}
	summary := Assist(context.Background(), opts, gitx.NewScriptedRunner(), divergedForAssist(), rebasePlan())

	if summary == nil || !summary.Mock {
		t.Fatalf("summary = %+v, want a mock summary", summary)
	}
	if summary.Calls != 0 || len(summary.Suggestions) != 0 {
		t.Errorf("mock run made advisory calls: %+v", summary)
	}
	if len(summary.Errors) == 0 || !strings.Contains(summary.Errors[0], "mock") {
		t.Errorf("Errors = %v, want the mock note", summary.Errors)
	}
}

func TestAssistDegradesWithoutCredentials(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	opts := Options{Mode: ModeSuggest, Safety: SafetyBalanced}

	summary := Assist(context.Background(), opts, gitx.NewScriptedRunner(), divergedForAssist(), rebasePlan())
	if summary == nil {
		t.Fatal("summary = nil; missing credentials must degrade, not disable")
	}
	if len(summary.Errors) == 0 || !strings.Contains(summary.Errors[0], "OPENAI_API_KEY") {
		t.Errorf("Errors = %v, want the configuration failure recorded", summary.Errors)
	}
}

func TestAssistExplainAppliesPlanHint(t *testing.T) {
	hintJSON, _ := json.Marshal(`{"action": "rebase-onto-upstream", "cost_adjustment_pct": 10, "note": "preview showed conflicts"}`)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": [{"message": {"content": ` + string(hintJSON) + `}}], "usage": {"total_tokens": 20}}`))
	}))
	defer server.Close()

	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", server.URL)
	t.Setenv("OPENAI_MODEL", "")

	plan := rebasePlan()
	opts := Options{Mode: ModeExplain, Safety: SafetyCautious}
	summary := Assist(context.Background(), opts, gitx.NewScriptedRunner(), divergedForAssist(), plan)

	if summary == nil {
		t.Fatal("summary = nil")
	}
	if len(summary.Errors) != 0 {
		t.Fatalf("Errors = %v", summary.Errors)
	}
	if summary.Hint == nil || summary.Hint.CostAdjustmentPct != 10 {
		t.Fatalf("Hint = %+v", summary.Hint)
	}
	if !summary.HintApplied {
		t.Error("hint should have re-priced the plan")
	}
	if plan.TotalCost != 5.5 {
		t.Errorf("TotalCost = %v, want 5.5", plan.TotalCost)
	}
	if summary.Calls != 1 || summary.Tokens != 20 {
		t.Errorf("spend = %d calls, %d tokens", summary.Calls, summary.Tokens)
	}
	if summary.Draft != nil {
		t.Error("explain mode must not draft messages")
	}
}

func TestDoctorWithoutCredentials(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	report := Doctor(context.Background(), Options{Mode: ModeExplain})
	if report.OK() {
		t.Error("Doctor() should fail without credentials")
	}
	if len(report.Checks) != 1 || report.Checks[0].Name != "credentials" {
		t.Errorf("Checks = %+v", report.Checks)
	}
}

func TestDoctorMockSkipsRoundTrip(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", "")
	t.Setenv("OPENAI_MODEL", "")

	report := Doctor(context.Background(), Options{Mode: ModeExplain, Mock: true})
	if !report.OK() {
		t.Fatalf("Doctor() not OK: %+v", report.Checks)
	}
	if report.Model != DefaultModel {
		t.Errorf("Model = %q, want %q", report.Model, DefaultModel)
	}
	last := report.Checks[len(report.Checks)-1]
	if last.Name != "round trip" || !strings.Contains(last.Detail, "mock") {
		t.Errorf("final check = %+v, want the skipped round trip", last)
	}
}
