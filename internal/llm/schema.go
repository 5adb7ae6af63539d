package llm

import (
	"fmt"
	"strings"

	"github.com/danieljhkim/gitmend/internal/state"
)

// Confidence grades how sure the model claims to be. Anything outside
// the three known grades is rejected at validation.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Valid reports whether the grade is one of the known values.
func (c Confidence) Valid() bool {
	return c == ConfidenceLow || c == ConfidenceMedium || c == ConfidenceHigh
}

// AtLeast orders grades low < medium < high.
func (c Confidence) AtLeast(floor Confidence) bool {
	return c.rank() >= floor.rank()
}

func (c Confidence) rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	}
	return 0
}

// PatchSet is a proposed resolution for one conflicted path, expressed
// as unified diffs against the working tree.
type PatchSet struct {
	// Path is the conflicted file the patches target.
	Path string `json:"path"`

	// Patches are unified-diff fragments, applied in order.
	Patches []string `json:"patches"`

	// Confidence is the model's self-reported grade.
	Confidence Confidence `json:"confidence"`

	// Rationale explains the proposed resolution in one or two lines.
	Rationale string `json:"rationale"`
}

// Validate rejects structurally unusable patch sets before anything
// downstream sees them.
func (p PatchSet) Validate() error {
	if p.Path == "" {
		return fmt.Errorf("patch set has no target path")
	}
	if len(p.Patches) == 0 {
		return fmt.Errorf("patch set for %s has no patches", p.Path)
	}
	for i, patch := range p.Patches {
		if !strings.Contains(patch, "@@") {
			return fmt.Errorf("patch %d for %s is not a unified diff", i, p.Path)
		}
	}
	if !p.Confidence.Valid() {
		return fmt.Errorf("patch set for %s has confidence %q", p.Path, p.Confidence)
	}
	return nil
}

// StrategyAdvice recommends a resolution side for one conflicted path.
type StrategyAdvice struct {
	// Path is the conflicted file.
	Path string `json:"path"`

	// Resolution is the recommended strategy (ours, theirs, manual).
	Resolution state.Resolution `json:"resolution"`

	// Reason justifies the recommendation.
	Reason string `json:"reason"`

	// Confidence is the model's self-reported grade.
	Confidence Confidence `json:"confidence"`
}

// Validate rejects unknown resolutions and grades.
func (a StrategyAdvice) Validate() error {
	switch a.Resolution {
	case state.ResolveOurs, state.ResolveTheirs, state.ResolveManual:
	default:
		return fmt.Errorf("advice for %s names unknown resolution %q", a.Path, a.Resolution)
	}
	if !a.Confidence.Valid() {
		return fmt.Errorf("advice for %s has confidence %q", a.Path, a.Confidence)
	}
	return nil
}

// MaxCostAdjustmentPct bounds how far a hint may move an action's cost.
const MaxCostAdjustmentPct = 20.0

// PlanHint is a bounded cost adjustment for one catalog action. The
// adjustment is advisory texture only; it can reorder near-ties but is
// clamped so it can never invert the cost model.
type PlanHint struct {
	// Action names the catalog action the hint applies to.
	Action string `json:"action"`

	// CostAdjustmentPct shifts the action's base cost, clamped to
	// ±MaxCostAdjustmentPct.
	CostAdjustmentPct float64 `json:"cost_adjustment_pct"`

	// Note explains the hint.
	Note string `json:"note"`
}

// Clamp bounds the adjustment to the permitted band.
func (h PlanHint) Clamp() PlanHint {
	if h.CostAdjustmentPct > MaxCostAdjustmentPct {
		h.CostAdjustmentPct = MaxCostAdjustmentPct
	}
	if h.CostAdjustmentPct < -MaxCostAdjustmentPct {
		h.CostAdjustmentPct = -MaxCostAdjustmentPct
	}
	return h
}

// MessageDraft is proposed commit or push messaging.
type MessageDraft struct {
	// Title is the subject line.
	Title string `json:"title"`

	// Body is the optional long-form description.
	Body string `json:"body"`
}

// Validate rejects empty drafts.
func (d MessageDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("message draft has no title")
	}
	return nil
}
