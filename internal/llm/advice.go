package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/danieljhkim/gitmend/internal/planner"
	"github.com/danieljhkim/gitmend/internal/state"
)

const jsonOnlySystem = "You are a git conflict resolution assistant. " +
	"Answer with a single JSON object matching the requested schema. " +
	"No prose, no markdown outside the JSON."

// excerptLimit caps how much conflicted content is sent per request.
const excerptLimit = 4000

// AdviseStrategy asks for a resolution recommendation for one conflict.
// The excerpt must already be redacted by the caller.
func AdviseStrategy(ctx context.Context, c *Client, model string, conflict state.Conflict, excerpt string) (StrategyAdvice, Usage, error) {
	user := fmt.Sprintf(`Recommend a resolution strategy for this merge conflict.

File: %s (type %s, %d hunks)
Conflicted content:
%s

Respond with JSON: {"path": string, "resolution": "ours"|"theirs"|"manual", "reason": string, "confidence": "low"|"medium"|"high"}`,
		conflict.Path, conflict.Type, conflict.Hunks, truncate(excerpt, excerptLimit))

	var advice StrategyAdvice
	usage, err := c.CompleteJSON(ctx, model, jsonOnlySystem, user, &advice)
	if err != nil {
		return StrategyAdvice{}, usage, err
	}
	if advice.Path == "" {
		advice.Path = conflict.Path
	}
	if err := advice.Validate(); err != nil {
		return StrategyAdvice{}, usage, err
	}
	return advice, usage, nil
}

// ProposePatch asks for a concrete resolution as unified diffs.
func ProposePatch(ctx context.Context, c *Client, model string, conflict state.Conflict, excerpt string) (PatchSet, Usage, error) {
	user := fmt.Sprintf(`Propose a resolution for this merge conflict as unified diff patches
against the conflicted working-tree file. Keep each patch minimal.

File: %s (type %s, %d hunks)
Conflicted content:
%s

Respond with JSON: {"path": string, "patches": [string], "rationale": string, "confidence": "low"|"medium"|"high"}`,
		conflict.Path, conflict.Type, conflict.Hunks, truncate(excerpt, excerptLimit))

	var ps PatchSet
	usage, err := c.CompleteJSON(ctx, model, jsonOnlySystem, user, &ps)
	if err != nil {
		return PatchSet{}, usage, err
	}
	if ps.Path == "" {
		ps.Path = conflict.Path
	}
	if err := ps.Validate(); err != nil {
		return PatchSet{}, usage, err
	}
	return ps, usage, nil
}

// RequestPlanHint asks for a bounded cost adjustment over a computed
// plan. The hint is clamped before it is returned.
func RequestPlanHint(ctx context.Context, c *Client, model string, st state.RepoState, p *planner.Plan) (PlanHint, Usage, error) {
	user := fmt.Sprintf(`A repository recovery plan was computed. Suggest at most one cost
adjustment if an action looks riskier or safer than its cost implies.

Repository: %s
Plan: %s

Respond with JSON: {"action": string, "cost_adjustment_pct": number, "note": string}
The adjustment is a percentage in [-20, 20]. Use 0 if the plan looks right.`,
		st.Summary(), p.Describe())

	var hint PlanHint
	usage, err := c.CompleteJSON(ctx, model, jsonOnlySystem, user, &hint)
	if err != nil {
		return PlanHint{}, usage, err
	}
	return hint.Clamp(), usage, nil
}

// ApplyPlanHint folds a clamped hint into the plan's total cost and
// records it in the notes. The step order never changes; the hint only
// annotates and re-prices.
func ApplyPlanHint(p *planner.Plan, hint PlanHint) bool {
	if hint.Action == "" || hint.CostAdjustmentPct == 0 {
		return false
	}
	hint = hint.Clamp()
	for _, step := range p.Steps {
		if step.Action.Name != hint.Action {
			continue
		}
		delta := step.Action.Cost * hint.CostAdjustmentPct / 100
		p.TotalCost += delta
		p.Notes = append(p.Notes, fmt.Sprintf(
			"advisory hint: %s %+.1f%% (%+.2f): %s",
			hint.Action, hint.CostAdjustmentPct, delta, hint.Note))
		return true
	}
	return false
}

// DraftMessage asks for push messaging summarizing the recovery.
func DraftMessage(ctx context.Context, c *Client, model string, st state.RepoState, p *planner.Plan) (MessageDraft, Usage, error) {
	user := fmt.Sprintf(`Draft a short message describing this repository recovery for a
teammate. One subject line, optional short body.

Repository: %s
Actions taken: %s

Respond with JSON: {"title": string, "body": string}`,
		st.Summary(), strings.Join(p.ActionIDs(), ", "))

	var draft MessageDraft
	usage, err := c.CompleteJSON(ctx, model, jsonOnlySystem, user, &draft)
	if err != nil {
		return MessageDraft{}, usage, err
	}
	if err := draft.Validate(); err != nil {
		return MessageDraft{}, usage, err
	}
	return draft, usage, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	// Back up to a rune boundary so the cut never splits a UTF-8
	// sequence.
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit] + "\n[truncated]"
}
