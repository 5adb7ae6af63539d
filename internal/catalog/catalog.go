// Package catalog declares the recovery action set: each action carries a
// precondition, a pure effect used only for planning, and a base cost.
// Real mutation happens exclusively in the executor; nothing in this
// package touches a repository.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/danieljhkim/gitmend/internal/config"
	"github.com/danieljhkim/gitmend/internal/state"
)

// Action names, in catalog order.
const (
	ActionFetch          = "fetch"
	ActionStash          = "stash"
	ActionResolveTrivial = "resolve-trivial"
	ActionResolvePath    = "resolve-path"
	ActionRebase         = "rebase-onto-upstream"
	ActionContinueRebase = "continue-rebase"
	ActionAbortRebase    = "abort-rebase"
	ActionContinueMerge  = "continue-merge"
	ActionAbortMerge     = "abort-merge"
	ActionRunTests       = "run-tests"
	ActionPushWithLease  = "push-with-lease"
)

// Params are the concrete parameters of an action instance.
type Params map[string]string

// String renders the parameters deterministically (sorted by key).
func (p Params) String() string {
	if len(p) == 0 {
		return ""
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		// NUL-joined path lists render with a readable separator.
		value := strings.ReplaceAll(p[k], "\x00", " + ")
		parts = append(parts, fmt.Sprintf("%s=%s", k, value))
	}
	return strings.Join(parts, ",")
}

// Instance is an action bound to concrete parameters for one planning
// node expansion. Cost is the full actual cost (base plus state-derived
// penalty) of taking the action from the source state.
type Instance struct {
	// Name is the catalog action name.
	Name string

	// Params are the resolved parameters.
	Params Params

	// Cost is the actual cost from the source state.
	Cost float64

	// Rationale is the catalog's declared justification.
	Rationale string

	// Index is the position of the defining action in the catalog,
	// used as the primary deterministic tie-break.
	Index int

	effect func(state.RepoState) state.RepoState
}

// ID renders a stable identity for tie-breaks and traces.
func (i Instance) ID() string {
	if len(i.Params) == 0 {
		return i.Name
	}
	return fmt.Sprintf("%s(%s)", i.Name, i.Params)
}

// Apply returns the predicted successor state. The input is never
// modified.
func (i Instance) Apply(s state.RepoState) state.RepoState {
	return i.effect(s)
}

// Definition is one declarative catalog entry. The expand function checks
// the precondition against a state and yields zero or more parameterized
// instances.
type Definition struct {
	// Name is the action name.
	Name string

	// Base is the base cost before state-derived penalties.
	Base float64

	// Rationale explains why the action exists.
	Rationale string

	expand func(s state.RepoState, g state.GoalSpec) []Instance
}

// Catalog is the static action set, defined once at startup.
type Catalog struct {
	cfg  config.Config
	defs []Definition
}

// Costs exposes the base cost table the catalog was built with.
func (c *Catalog) Costs() config.Costs { return c.cfg.Costs }

// Definitions returns the declared actions in catalog order.
func (c *Catalog) Definitions() []Definition {
	return append([]Definition(nil), c.defs...)
}

// Instances expands every applicable action for the state under the goal,
// in catalog order. Instances within one definition are ordered
// deterministically by their ID.
func (c *Catalog) Instances(s state.RepoState, g state.GoalSpec) []Instance {
	var out []Instance
	for idx, def := range c.defs {
		instances := def.expand(s, g)
		sort.Slice(instances, func(a, b int) bool {
			return instances[a].ID() < instances[b].ID()
		})
		for _, inst := range instances {
			inst.Index = idx
			out = append(out, inst)
		}
	}
	return out
}

// New builds the catalog from the resolved configuration.
func New(cfg config.Config) *Catalog {
	c := &Catalog{cfg: cfg}
	costs := cfg.Costs
	weights := cfg.Weights

	simple := func(name string, base float64, rationale string,
		pre func(state.RepoState, state.GoalSpec) bool,
		extra func(state.RepoState) float64,
		effect func(state.RepoState) state.RepoState) Definition {
		return Definition{
			Name:      name,
			Base:      base,
			Rationale: rationale,
			expand: func(s state.RepoState, g state.GoalSpec) []Instance {
				if !pre(s, g) {
					return nil
				}
				cost := base
				if extra != nil {
					cost += extra(s)
				}
				return []Instance{{
					Name:      name,
					Cost:      cost,
					Rationale: rationale,
					effect:    effect,
				}}
			},
		}
	}

	c.defs = []Definition{
		simple(ActionFetch, costs.Fetch,
			"update remote refs so divergence counts reflect reality",
			func(s state.RepoState, g state.GoalSpec) bool {
				return !s.FreshlyFetched
			},
			nil,
			func(s state.RepoState) state.RepoState {
				next := s.Clone()
				next.FreshlyFetched = true
				return next
			}),

		simple(ActionStash, costs.Stash,
			"park uncommitted work so history operations run on a clean tree",
			func(s state.RepoState, g state.GoalSpec) bool {
				return !s.WorktreeClean && len(s.Conflicts) == 0 && !s.OperationInProgress()
			},
			nil,
			func(s state.RepoState) state.RepoState {
				next := s.Clone()
				next.WorktreeClean = true
				next.StagedChanges = false
				next.StashCount++
				return next
			}),

		c.resolveTrivialDefinition(),
		c.resolvePathDefinition(),

		simple(ActionRebase, costs.Rebase,
			"replay local commits onto the upstream to clear divergence",
			func(s state.RepoState, g state.GoalSpec) bool {
				return g.NeedsSync() && s.Behind > 0 && s.WorktreeClean &&
					len(s.Conflicts) == 0 && !s.OperationInProgress() &&
					s.FreshlyFetched && s.Ref.Upstream != ""
			},
			func(s state.RepoState) float64 {
				penalty := weights.Staleness * s.Staleness()
				for _, pc := range s.PreviewConflicts {
					penalty += 0.5 * pc.Difficulty()
				}
				return penalty
			},
			func(s state.RepoState) state.RepoState {
				next := s.Clone()
				if len(s.PreviewConflicts) == 0 {
					next.Behind = 0
					return next
				}
				// The preview predicts the rebase will stop on these.
				next.RebaseInProgress = true
				next.WorktreeClean = false
				next.Conflicts = append([]state.Conflict(nil), s.PreviewConflicts...)
				return next
			}),

		simple(ActionContinueRebase, costs.ContinueRebase,
			"resume the stopped rebase now that conflicts are resolved",
			func(s state.RepoState, g state.GoalSpec) bool {
				return s.RebaseInProgress && len(s.Conflicts) == 0
			},
			nil,
			func(s state.RepoState) state.RepoState {
				next := s.Clone()
				next.RebaseInProgress = false
				next.WorktreeClean = true
				next.StagedChanges = false
				next.Behind = 0
				next.PreviewConflicts = nil
				return next
			}),

		simple(ActionAbortRebase, costs.AbortRebase,
			"abandon the stopped rebase and return to the pre-rebase position",
			func(s state.RepoState, g state.GoalSpec) bool {
				return s.RebaseInProgress
			},
			nil,
			func(s state.RepoState) state.RepoState {
				next := s.Clone()
				next.RebaseInProgress = false
				next.WorktreeClean = true
				next.StagedChanges = false
				next.Conflicts = nil
				return next
			}),

		simple(ActionContinueMerge, costs.ContinueMerge,
			"commit the merge now that conflicts are resolved",
			func(s state.RepoState, g state.GoalSpec) bool {
				return s.MergeInProgress && len(s.Conflicts) == 0
			},
			nil,
			func(s state.RepoState) state.RepoState {
				next := s.Clone()
				next.MergeInProgress = false
				next.WorktreeClean = true
				next.StagedChanges = false
				return next
			}),

		simple(ActionAbortMerge, costs.AbortMerge,
			"abandon the conflicted merge",
			func(s state.RepoState, g state.GoalSpec) bool {
				return s.MergeInProgress
			},
			nil,
			func(s state.RepoState) state.RepoState {
				next := s.Clone()
				next.MergeInProgress = false
				next.WorktreeClean = true
				next.StagedChanges = false
				next.Conflicts = nil
				return next
			}),

		simple(ActionRunTests, costs.RunTests,
			"verify the integrated result before publishing",
			func(s state.RepoState, g state.GoalSpec) bool {
				return g.RequireTests && s.Tests != state.TestsPass &&
					len(s.Conflicts) == 0 && !s.OperationInProgress()
			},
			nil,
			func(s state.RepoState) state.RepoState {
				next := s.Clone()
				next.Tests = state.TestsPass
				return next
			}),

		simple(ActionPushWithLease, costs.Push,
			"publish local commits without clobbering unseen remote work",
			func(s state.RepoState, g state.GoalSpec) bool {
				if !g.NeedsPush() || (s.Ahead == 0 && !s.Unpushed) {
					return false
				}
				if s.Behind > 0 || len(s.Conflicts) > 0 || s.OperationInProgress() || !s.WorktreeClean {
					return false
				}
				return !g.RequireTests || s.Tests == state.TestsPass
			},
			nil,
			func(s state.RepoState) state.RepoState {
				next := s.Clone()
				next.Ahead = 0
				next.Unpushed = false
				return next
			}),
	}
	return c
}

// settleResolved reflects what the repository looks like once the last
// conflict is staged: the worktree reads clean with staged changes.
func settleResolved(s state.RepoState) state.RepoState {
	if len(s.Conflicts) == 0 {
		s.WorktreeClean = true
		s.StagedChanges = true
	}
	return s
}

// ruleResolution returns the automatable resolution a strategy rule or
// conflict hint prescribes for the conflict, if any.
func (c *Catalog) ruleResolution(conflict state.Conflict) (state.Resolution, bool) {
	if rule, ok := c.cfg.RuleFor(conflict.Path); ok {
		res := state.Resolution(rule.Resolution)
		if res == state.ResolveOurs || res == state.ResolveTheirs {
			return res, true
		}
		// Manual and merge-driver rules reserve the path for a human.
		return "", false
	}
	if conflict.Hint == state.ResolveOurs || conflict.Hint == state.ResolveTheirs {
		return conflict.Hint, true
	}
	return "", false
}

// ruled reports whether any strategy rule claims the path. Ruled paths are
// excluded from trivial auto-resolution: the rule takes precedence.
func (c *Catalog) ruled(path string) bool {
	_, ok := c.cfg.RuleFor(path)
	return ok
}

func (c *Catalog) resolveTrivialDefinition() Definition {
	base := c.cfg.Costs.ResolveTrivial
	rationale := "resolve conflicts whose hunks carry no semantic divergence"
	return Definition{
		Name:      ActionResolveTrivial,
		Base:      base,
		Rationale: rationale,
		expand: func(s state.RepoState, g state.GoalSpec) []Instance {
			var paths []string
			for _, conflict := range s.Conflicts {
				if conflict.Trivial() && !c.ruled(conflict.Path) {
					paths = append(paths, conflict.Path)
				}
			}
			if len(paths) == 0 {
				return nil
			}
			resolved := make(map[string]bool, len(paths))
			for _, p := range paths {
				resolved[p] = true
			}
			// NUL-joined: the one byte git forbids in paths, so
			// filenames with spaces survive the round trip.
			return []Instance{{
				Name:      ActionResolveTrivial,
				Params:    Params{"paths": strings.Join(paths, "\x00")},
				Cost:      base,
				Rationale: rationale,
				effect: func(s state.RepoState) state.RepoState {
					next := s.Clone()
					next.Conflicts = nil
					for _, conflict := range s.Conflicts {
						if !resolved[conflict.Path] {
							next.Conflicts = append(next.Conflicts, conflict)
						}
					}
					return settleResolved(next)
				},
			}}
		},
	}
}

func (c *Catalog) resolvePathDefinition() Definition {
	base := c.cfg.Costs.ResolvePath
	rationale := "apply the configured resolution strategy to a conflicted path"
	return Definition{
		Name:      ActionResolvePath,
		Base:      base,
		Rationale: rationale,
		expand: func(s state.RepoState, g state.GoalSpec) []Instance {
			var out []Instance
			for _, conflict := range s.Conflicts {
				resolution, ok := c.ruleResolution(conflict)
				if !ok {
					continue
				}
				path := conflict.Path
				out = append(out, Instance{
					Name: ActionResolvePath,
					Params: Params{
						"path":       path,
						"resolution": string(resolution),
					},
					Cost:      base + 0.5*conflict.Difficulty(),
					Rationale: rationale,
					effect: func(s state.RepoState) state.RepoState {
						next := s.Clone()
						next.Conflicts = nil
						for _, existing := range s.Conflicts {
							if existing.Path != path {
								next.Conflicts = append(next.Conflicts, existing)
							}
						}
						return settleResolved(next)
					},
				})
			}
			return out
		},
	}
}
