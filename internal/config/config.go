// Package config loads and validates the gitmend configuration: the goal,
// the action cost table, the heuristic weights, path strategy rules, and
// executor limits. The core packages consume only the resolved values.
package config

import (
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/danieljhkim/gitmend/internal/state"
)

// GoalConfig selects the target condition for a run.
type GoalConfig struct {
	// Mode is one of resolve-only, rebase-to-upstream, push-with-lease.
	Mode string `yaml:"mode"`

	// RequireTests demands a passing test run before the goal holds.
	RequireTests bool `yaml:"require_tests"`

	// RequireLeasePush demands a lease-protected push of local commits.
	RequireLeasePush bool `yaml:"require_lease_push"`
}

// Costs is the base cost table for the action catalog.
type Costs struct {
	Fetch          float64 `yaml:"fetch"`
	Stash          float64 `yaml:"stash"`
	ResolveTrivial float64 `yaml:"resolve_trivial"`
	ResolvePath    float64 `yaml:"resolve_path"`
	Rebase         float64 `yaml:"rebase"`
	ContinueRebase float64 `yaml:"continue_rebase"`
	AbortRebase    float64 `yaml:"abort_rebase"`
	ContinueMerge  float64 `yaml:"continue_merge"`
	AbortMerge     float64 `yaml:"abort_merge"`
	RunTests       float64 `yaml:"run_tests"`
	Push           float64 `yaml:"push"`
}

// Weights are the fixed heuristic coefficients. Each weight is bounded by
// the cheapest action that can discharge its term; Validate enforces the
// relations so the heuristic stays admissible.
type Weights struct {
	// Conflict scores each non-trivial outstanding conflict.
	Conflict float64 `yaml:"conflict"`

	// Trivial scores the presence of trivially resolvable conflicts.
	Trivial float64 `yaml:"trivial"`

	// Progress scores an in-progress rebase or merge.
	Progress float64 `yaml:"progress"`

	// Divergence scores each commit behind the upstream, capped.
	Divergence float64 `yaml:"divergence"`

	// Staleness scores the state staleness score.
	Staleness float64 `yaml:"staleness"`

	// Clean scores a dirty worktree.
	Clean float64 `yaml:"clean"`

	// Push scores unpublished local commits under push goals.
	Push float64 `yaml:"push"`

	// Tests scores a missing required test pass.
	Tests float64 `yaml:"tests"`
}

// StrategyRule maps a path pattern to a preferred resolution.
type StrategyRule struct {
	// Pattern is a glob matched against the conflicted path and its
	// base name.
	Pattern string `yaml:"pattern"`

	// Resolution is the strategy to apply (ours, theirs, manual,
	// merge-driver). Only ours and theirs are automatable.
	Resolution string `yaml:"resolution"`
}

// Match reports whether the rule applies to the given repo-relative path.
func (r StrategyRule) Match(p string) bool {
	if ok, _ := path.Match(r.Pattern, p); ok {
		return true
	}
	ok, _ := path.Match(r.Pattern, path.Base(p))
	return ok
}

// LLMConfig configures the optional advisory subsystem.
type LLMConfig struct {
	// Mode is off, explain, suggest, or auto.
	Mode string `yaml:"mode"`

	// Safety is cautious, balanced, or experimental.
	Safety string `yaml:"safety"`

	// Model overrides the default advisory model.
	Model string `yaml:"model"`

	// MaxTokens bounds cumulative token usage (0 = unlimited).
	MaxTokens int `yaml:"max_tokens"`

	// MaxCostUSD bounds cumulative spend (0 = unlimited).
	MaxCostUSD float64 `yaml:"max_cost_usd"`
}

// Config is the resolved gitmend configuration.
type Config struct {
	Goal          GoalConfig     `yaml:"goal"`
	Costs         Costs          `yaml:"costs"`
	Weights       Weights        `yaml:"weights"`
	StrategyRules []StrategyRule `yaml:"strategy_rules"`

	// TestCommand is run through the shell by the run-tests action.
	TestCommand string `yaml:"test_command"`

	// CommandTimeoutSec bounds each external invocation.
	CommandTimeoutSec int `yaml:"command_timeout_sec"`

	// MaxReplans bounds replanning before the run fails.
	MaxReplans int `yaml:"max_replans"`

	// AllowForcePush enables plain force pushes. Lease-protected pushes
	// are always part of the declared action set.
	AllowForcePush bool `yaml:"allow_force_push"`

	// EnableRerere turns on rerere for mutating rebase commands.
	EnableRerere bool `yaml:"enable_rerere"`

	// ConflictStyle is passed as merge.conflictStyle to rebases.
	ConflictStyle string `yaml:"conflict_style"`

	LLM LLMConfig `yaml:"llm"`
}

// Default returns the configuration used when no file is provided.
func Default() Config {
	return Config{
		Goal: GoalConfig{Mode: string(state.GoalRebaseToUpstream)},
		Costs: Costs{
			Fetch:          0.5,
			Stash:          1.0,
			ResolveTrivial: 1.0,
			ResolvePath:    2.0,
			Rebase:         5.0,
			ContinueRebase: 1.0,
			AbortRebase:    3.0,
			ContinueMerge:  1.0,
			AbortMerge:     3.0,
			RunTests:       4.0,
			Push:           2.5,
		},
		Weights: Weights{
			Conflict:   1.0,
			Trivial:    0.5,
			Progress:   1.0,
			Divergence: 0.5,
			Staleness:  0.25,
			Clean:      0.5,
			Push:       1.0,
			Tests:      2.0,
		},
		TestCommand:       "",
		CommandTimeoutSec: 120,
		MaxReplans:        3,
		EnableRerere:      true,
		ConflictStyle:     "zdiff3",
		LLM: LLMConfig{
			Mode:   "off",
			Safety: "balanced",
		},
	}
}

// Load reads the config file at path, layered over Default. An empty path
// returns the defaults.
func Load(configPath string) (Config, error) {
	cfg := Default()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DivergenceCap bounds the divergence magnitude the heuristic counts, so
// the divergence term never exceeds a single rebase.
const DivergenceCap = 8

// Validate checks value ranges and the weight-versus-cost relations that
// keep the heuristic admissible. A violated relation is a correctness bug
// in the search, not a tuning choice, so it is rejected outright.
func (c Config) Validate() error {
	if err := c.GoalSpec().Validate(); err != nil {
		return err
	}
	for _, rule := range c.StrategyRules {
		switch state.Resolution(rule.Resolution) {
		case state.ResolveOurs, state.ResolveTheirs, state.ResolveManual, state.ResolveMergeDriver:
		default:
			return fmt.Errorf("strategy rule %q: unknown resolution %q", rule.Pattern, rule.Resolution)
		}
		if rule.Pattern == "" {
			return fmt.Errorf("strategy rule with empty pattern")
		}
	}
	for name, cost := range map[string]float64{
		"fetch": c.Costs.Fetch, "stash": c.Costs.Stash,
		"resolve_trivial": c.Costs.ResolveTrivial, "resolve_path": c.Costs.ResolvePath,
		"rebase": c.Costs.Rebase, "continue_rebase": c.Costs.ContinueRebase,
		"abort_rebase": c.Costs.AbortRebase, "continue_merge": c.Costs.ContinueMerge,
		"abort_merge": c.Costs.AbortMerge, "run_tests": c.Costs.RunTests,
		"push": c.Costs.Push,
	} {
		if cost < 0 {
			return fmt.Errorf("cost %s must be non-negative", name)
		}
	}

	type relation struct {
		name   string
		weight float64
		bound  float64
	}
	relations := []relation{
		{"conflict ≤ resolve_path", c.Weights.Conflict, c.Costs.ResolvePath},
		{"trivial ≤ resolve_trivial", c.Weights.Trivial, c.Costs.ResolveTrivial},
		{"progress ≤ continue_rebase", c.Weights.Progress, c.Costs.ContinueRebase},
		{"progress ≤ continue_merge", c.Weights.Progress, c.Costs.ContinueMerge},
		{"divergence·cap ≤ rebase", c.Weights.Divergence * DivergenceCap, c.Costs.Rebase},
		{"staleness ≤ fetch", c.Weights.Staleness, c.Costs.Fetch},
		{"clean ≤ stash", c.Weights.Clean, c.Costs.Stash},
		{"push ≤ push cost", c.Weights.Push, c.Costs.Push},
		{"tests ≤ run_tests", c.Weights.Tests, c.Costs.RunTests},
	}
	for _, rel := range relations {
		if rel.weight > rel.bound {
			return fmt.Errorf("inadmissible heuristic weight: %s violated (%.2f > %.2f)",
				rel.name, rel.weight, rel.bound)
		}
	}

	if c.MaxReplans < 0 {
		return fmt.Errorf("max_replans must be non-negative")
	}
	if c.CommandTimeoutSec <= 0 {
		return fmt.Errorf("command_timeout_sec must be positive")
	}
	return nil
}

// GoalSpec converts the goal section into the planning value.
func (c Config) GoalSpec() state.GoalSpec {
	return state.GoalSpec{
		Mode:             state.GoalMode(c.Goal.Mode),
		RequireTests:     c.Goal.RequireTests,
		RequireLeasePush: c.Goal.RequireLeasePush,
	}
}

// RuleFor returns the first strategy rule matching the path, if any.
func (c Config) RuleFor(p string) (StrategyRule, bool) {
	for _, rule := range c.StrategyRules {
		if rule.Match(p) {
			return rule, true
		}
	}
	return StrategyRule{}, false
}
