package llm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danieljhkim/gitmend/internal/gitx"
	"github.com/danieljhkim/gitmend/internal/planner"
	"github.com/danieljhkim/gitmend/internal/state"
)

// Suggestion is the advisory outcome for one conflicted path.
type Suggestion struct {
	// Path is the conflicted file.
	Path string

	// Resolution is the recommended strategy, when advice succeeded.
	Resolution state.Resolution

	// Reason is the advice justification.
	Reason string

	// Confidence is the grade attached to the patch set or advice.
	Confidence Confidence

	// Patches counts proposed diff fragments.
	Patches int

	// Applied reports whether ModeAuto validated and applied the
	// patches.
	Applied bool

	// Err records the per-path failure, if any. Failures here never
	// fail the run.
	Err string
}

// Summary is everything the advisory pass produced for one run.
type Summary struct {
	Mode   Mode
	Safety Safety
	Model  string

	// Hint is the plan cost hint, when one was requested and returned.
	Hint *PlanHint

	// HintApplied reports whether the hint changed the plan's pricing.
	HintApplied bool

	// Suggestions holds per-conflict outcomes.
	Suggestions []Suggestion

	// Draft is the optional push message draft.
	Draft *MessageDraft

	// Calls, Tokens, and CostUSD report accumulated spend.
	Calls   int
	Tokens  int
	CostUSD float64

	// Errors records degradations; the base loop continued past each.
	Errors []string

	// Mock marks a run where no network calls were made.
	Mock bool
}

// Assist runs the advisory pass for one plan. It never returns an
// error: every failure is recorded in the summary and the caller's
// base behavior is unchanged. A nil summary means the mode is off.
func Assist(ctx context.Context, opts Options, git gitx.Runner, st state.RepoState, p *planner.Plan) *Summary {
	if !opts.Enabled() {
		return nil
	}
	summary := &Summary{Mode: opts.Mode, Safety: opts.Safety, Mock: opts.Mock}
	if opts.Mock {
		summary.Errors = append(summary.Errors, "mock mode: advisory calls skipped")
		return summary
	}

	client, err := NewFromEnv()
	if err != nil {
		summary.Errors = append(summary.Errors, err.Error())
		return summary
	}
	model := client.ResolveModel(opts.Model)
	summary.Model = model

	budget := NewBudgetTracker(opts)
	redactor := NewRedactor()

	charge := func(usage Usage) bool {
		err := budget.Charge(usage, estimateCostUSD(usage))
		if err != nil {
			summary.Errors = append(summary.Errors, err.Error())
		}
		return err == nil
	}

	// Plan hint first: it is the cheapest call and useful in every mode.
	hint, usage, err := RequestPlanHint(ctx, client, model, st, p)
	ok := charge(usage)
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("plan hint: %v", err))
	} else if hint.Action != "" {
		summary.Hint = &hint
		summary.HintApplied = ApplyPlanHint(p, hint)
	}
	if !ok {
		summary.report(budget)
		return summary
	}

	if opts.Mode == ModeSuggest || opts.Mode == ModeAuto {
		for _, conflict := range st.Conflicts {
			suggestion := assistConflict(ctx, opts, client, model, git, redactor, st, conflict, charge)
			summary.Suggestions = append(summary.Suggestions, suggestion)
			if budget.Exceeded() {
				break
			}
		}
	}

	if opts.Mode != ModeExplain && !budget.Exceeded() && !p.Empty() {
		draft, usage, err := DraftMessage(ctx, client, model, st, p)
		charge(usage)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("message draft: %v", err))
		} else {
			summary.Draft = &draft
		}
	}

	summary.report(budget)
	return summary
}

func (s *Summary) report(budget *BudgetTracker) {
	s.Calls, s.Tokens, s.CostUSD = budget.Spent()
}

// assistConflict advises on one conflict and, in auto mode, applies a
// validated patch set.
func assistConflict(ctx context.Context, opts Options, client *Client, model string, git gitx.Runner, redactor *Redactor, st state.RepoState, conflict state.Conflict, charge func(Usage) bool) Suggestion {
	suggestion := Suggestion{Path: conflict.Path}

	excerpt := readExcerpt(st.RepoPath, conflict.Path, redactor)

	advice, usage, err := AdviseStrategy(ctx, client, model, conflict, excerpt)
	if !charge(usage) {
		suggestion.Err = "budget exhausted"
		return suggestion
	}
	if err != nil {
		suggestion.Err = err.Error()
		return suggestion
	}
	suggestion.Resolution = advice.Resolution
	suggestion.Reason = advice.Reason
	suggestion.Confidence = advice.Confidence

	// Only manual conflicts warrant a patch proposal; side picks are
	// already covered by the catalog's resolve actions.
	if advice.Resolution != state.ResolveManual {
		return suggestion
	}

	ps, usage, err := ProposePatch(ctx, client, model, conflict, excerpt)
	if !charge(usage) {
		suggestion.Err = "budget exhausted"
		return suggestion
	}
	if err != nil {
		suggestion.Err = err.Error()
		return suggestion
	}
	suggestion.Patches = len(ps.Patches)
	suggestion.Confidence = ps.Confidence

	if opts.Mode == ModeAuto && ShouldAutoApply(ps, opts.Safety) {
		if err := applyPatchSet(ctx, git, st.RepoPath, ps); err != nil {
			suggestion.Err = err.Error()
		} else {
			suggestion.Applied = true
		}
	}
	return suggestion
}

// readExcerpt loads and redacts the conflicted content. Unreadable
// files produce an empty excerpt; the advice call still carries the
// path and hunk metadata.
func readExcerpt(repoPath, path string, redactor *Redactor) string {
	content, err := os.ReadFile(filepath.Join(repoPath, path))
	if err != nil {
		return ""
	}
	return redactor.Redact(string(content))
}

// applyPatchSet validates every patch with git apply --check before
// applying any, then stages the path. A failed check rejects the whole
// set.
func applyPatchSet(ctx context.Context, git gitx.Runner, repoPath string, ps PatchSet) error {
	var files []string
	defer func() {
		for _, f := range files {
			os.Remove(f)
		}
	}()
	for i, patch := range ps.Patches {
		f, err := os.CreateTemp("", "gitmend-patch-*.diff")
		if err != nil {
			return fmt.Errorf("failed to stage patch %d: %w", i, err)
		}
		files = append(files, f.Name())
		if _, err := f.WriteString(patch); err != nil {
			f.Close()
			return fmt.Errorf("failed to stage patch %d: %w", i, err)
		}
		f.Close()
	}

	for i, file := range files {
		result, err := git.Run(ctx, "git", "apply", "--check", file)
		if err != nil {
			return fmt.Errorf("patch %d check failed: %w", i, err)
		}
		if result.ExitCode != 0 {
			return fmt.Errorf("patch %d does not apply cleanly: %s", i, result.Stderr)
		}
	}
	for i, file := range files {
		result, err := git.Run(ctx, "git", "apply", file)
		if err != nil {
			return fmt.Errorf("patch %d apply failed: %w", i, err)
		}
		if result.ExitCode != 0 {
			return fmt.Errorf("patch %d apply failed: %s", i, result.Stderr)
		}
	}

	result, err := git.Run(ctx, "git", "add", "--", ps.Path)
	if err != nil {
		return fmt.Errorf("failed to stage %s: %w", ps.Path, err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("failed to stage %s: %s", ps.Path, result.Stderr)
	}
	return nil
}
