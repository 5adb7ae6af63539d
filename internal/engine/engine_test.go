package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danieljhkim/gitmend/internal/clock"
	"github.com/danieljhkim/gitmend/internal/config"
)

func testEngine(cfg config.Config) *Engine {
	return New(cfg, clock.NewFakeClock(time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)))
}

func TestPlanRejectsInvalidGoalBeforeRepoDiscovery(t *testing.T) {
	eng := testEngine(config.Default())

	// The CWD is not a repository; a goal failure must win anyway.
	_, err := eng.Plan(context.Background(), &PlanRequest{CWD: t.TempDir(), GoalMode: "merge-everything"})
	if err == nil {
		t.Fatal("expected a goal validation error")
	}
	if errors.Is(err, ErrNotInRepo) {
		t.Errorf("error = %v; the goal must be validated before discovery", err)
	}
}

func TestObserveOutsideRepository(t *testing.T) {
	eng := testEngine(config.Default())

	_, err := eng.Observe(context.Background(), &ObserveRequest{CWD: t.TempDir()})
	if !errors.Is(err, ErrNotInRepo) {
		t.Errorf("error = %v, want ErrNotInRepo", err)
	}
}

func TestRunOutsideRepository(t *testing.T) {
	eng := testEngine(config.Default())

	_, err := eng.Run(context.Background(), &RunRequest{CWD: t.TempDir()})
	if !errors.Is(err, ErrNotInRepo) {
		t.Errorf("error = %v, want ErrNotInRepo", err)
	}
}

func TestDoctorMockWithCredentials(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", "")
	t.Setenv("OPENAI_MODEL", "")

	eng := testEngine(config.Default())
	result, err := eng.Doctor(context.Background(), &DoctorRequest{MockLLM: true})
	if err != nil {
		t.Fatalf("Doctor() error: %v", err)
	}
	if !result.Report.OK() {
		t.Errorf("report not OK: %+v", result.Report.Checks)
	}
	if !result.Report.Mock {
		t.Error("report should be marked as mocked")
	}
}

func TestDoctorWithoutCredentials(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	eng := testEngine(config.Default())
	result, err := eng.Doctor(context.Background(), &DoctorRequest{MockLLM: true})
	if err != nil {
		t.Fatalf("Doctor() error: %v", err)
	}
	if result.Report.OK() {
		t.Error("report should fail without credentials")
	}
}

func TestDoctorRejectsMisconfiguredAdvisorySection(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.Mode = "bogus"

	if _, err := testEngine(cfg).Doctor(context.Background(), &DoctorRequest{}); err == nil {
		t.Error("expected an options validation error")
	}
}

func TestLLMOptionsOverrides(t *testing.T) {
	cfg := config.Default() // mode off, safety balanced
	eng := testEngine(cfg)

	opts, err := eng.llmOptions("suggest", "cautious", "gpt-4o", true)
	if err != nil {
		t.Fatalf("llmOptions() error: %v", err)
	}
	if opts.Mode != "suggest" || opts.Safety != "cautious" || opts.Model != "gpt-4o" || !opts.Mock {
		t.Errorf("opts = %+v", opts)
	}

	// Empty overrides fall back to the configured section.
	opts, err = eng.llmOptions("", "", "", false)
	if err != nil {
		t.Fatalf("llmOptions() error: %v", err)
	}
	if opts.Mode != "off" || opts.Safety != "balanced" {
		t.Errorf("opts = %+v, want the config defaults", opts)
	}
}
