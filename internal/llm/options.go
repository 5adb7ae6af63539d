package llm

import (
	"fmt"

	"github.com/danieljhkim/gitmend/internal/config"
)

// Mode selects how much the advisory subsystem is allowed to do.
type Mode string

// Advisory run modes, from inert to autonomous.
const (
	// ModeOff disables the subsystem entirely.
	ModeOff Mode = "off"

	// ModeExplain only annotates plans; it never proposes changes.
	ModeExplain Mode = "explain"

	// ModeSuggest proposes patches and strategies but applies nothing.
	ModeSuggest Mode = "suggest"

	// ModeAuto may apply validated high-confidence suggestions.
	ModeAuto Mode = "auto"
)

// Safety bounds what ModeAuto is allowed to apply.
type Safety string

const (
	// SafetyCautious applies only a single high-confidence patch.
	SafetyCautious Safety = "cautious"

	// SafetyBalanced applies up to three medium-or-better patches.
	SafetyBalanced Safety = "balanced"

	// SafetyExperimental applies any medium-or-better patch set.
	SafetyExperimental Safety = "experimental"
)

// ParseMode validates a run mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeOff, ModeExplain, ModeSuggest, ModeAuto:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown llm mode %q (want off, explain, suggest, or auto)", s)
}

// ParseSafety validates a safety level string.
func ParseSafety(s string) (Safety, error) {
	switch Safety(s) {
	case SafetyCautious, SafetyBalanced, SafetyExperimental:
		return Safety(s), nil
	}
	return "", fmt.Errorf("unknown llm safety %q (want cautious, balanced, or experimental)", s)
}

// Options is the resolved advisory configuration for one run.
type Options struct {
	Mode       Mode
	Safety     Safety
	Model      string
	MaxTokens  int
	MaxCostUSD float64

	// Mock skips network calls; doctor and tests use it.
	Mock bool
}

// OptionsFrom validates the config section into run options.
func OptionsFrom(cfg config.LLMConfig) (Options, error) {
	mode, err := ParseMode(cfg.Mode)
	if err != nil {
		return Options{}, err
	}
	safety, err := ParseSafety(cfg.Safety)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Mode:       mode,
		Safety:     safety,
		Model:      cfg.Model,
		MaxTokens:  cfg.MaxTokens,
		MaxCostUSD: cfg.MaxCostUSD,
	}, nil
}

// Enabled reports whether any advisory work should happen.
func (o Options) Enabled() bool { return o.Mode != ModeOff }

// ShouldAutoApply decides whether a validated patch set may be applied
// under the safety level. Low-confidence output is never applied.
func ShouldAutoApply(ps PatchSet, safety Safety) bool {
	switch safety {
	case SafetyCautious:
		return ps.Confidence == ConfidenceHigh && len(ps.Patches) == 1
	case SafetyBalanced:
		return ps.Confidence.AtLeast(ConfidenceMedium) && len(ps.Patches) <= 3
	case SafetyExperimental:
		return ps.Confidence.AtLeast(ConfidenceMedium)
	}
	return false
}
