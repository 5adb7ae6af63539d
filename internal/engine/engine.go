// Package engine is the orchestration layer between CLI commands and the
// observation, planning, and execution machinery.
//
// Each operation takes a request struct and returns a result struct. The
// engine owns dependency wiring: it discovers the repository, builds the
// command runner for the requested mode, and assembles the observer,
// catalog, and search for every call.
package engine

import (
	"fmt"
	"time"

	"github.com/danieljhkim/gitmend/internal/catalog"
	"github.com/danieljhkim/gitmend/internal/clock"
	"github.com/danieljhkim/gitmend/internal/config"
	"github.com/danieljhkim/gitmend/internal/gitx"
	"github.com/danieljhkim/gitmend/internal/llm"
	"github.com/danieljhkim/gitmend/internal/observe"
	"github.com/danieljhkim/gitmend/internal/planner"
)

// Engine coordinates gitmend operations.
// It is the main API surface called by the CLI.
type Engine struct {
	cfg   config.Config
	clock clock.Clock
}

// New creates an Engine with the given configuration.
func New(cfg config.Config, clk clock.Clock) *Engine {
	return &Engine{cfg: cfg, clock: clk}
}

// Config exposes the resolved configuration.
func (e *Engine) Config() config.Config { return e.cfg }

// repo resolves the repository root and builds the real command runner
// and observer rooted there.
func (e *Engine) repo(cwd string) (string, *gitx.CommandRunner, *observe.Observer, error) {
	root, err := gitx.Discover(cwd)
	if err != nil {
		return "", nil, nil, fmt.Errorf("%w: %v", ErrNotInRepo, err)
	}
	runner := gitx.NewCommandRunner(root, time.Duration(e.cfg.CommandTimeoutSec)*time.Second)
	return root, runner, observe.New(runner, root, e.clock), nil
}

// search assembles the catalog and planner from the configuration.
func (e *Engine) search() (*catalog.Catalog, *planner.Search) {
	cat := catalog.New(e.cfg)
	return cat, planner.NewSearch(cat, e.cfg.Weights)
}

// llmOptions resolves advisory options: the config section overlaid with
// per-request overrides.
func (e *Engine) llmOptions(mode, safety, model string, mock bool) (llm.Options, error) {
	section := e.cfg.LLM
	if mode != "" {
		section.Mode = mode
	}
	if safety != "" {
		section.Safety = safety
	}
	if model != "" {
		section.Model = model
	}
	opts, err := llm.OptionsFrom(section)
	if err != nil {
		return llm.Options{}, err
	}
	opts.Mock = mock
	return opts, nil
}
