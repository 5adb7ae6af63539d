package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danieljhkim/gitmend/internal/clock"
	"github.com/danieljhkim/gitmend/internal/config"
	"github.com/danieljhkim/gitmend/internal/engine"
)

// defaultConfigName is picked up from the working directory when no
// --config flag is given.
const defaultConfigName = ".gitmend.yaml"

// newEngine loads configuration and wires an engine with real
// dependencies.
func newEngine() (*engine.Engine, error) {
	path := configPath
	if path == "" {
		if cwd, err := workingDir(); err == nil {
			candidate := filepath.Join(cwd, defaultConfigName)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return engine.New(cfg, &clock.RealClock{}), nil
}

// workingDir resolves the directory requests should start from: the
// --repo flag when set, the process working directory otherwise.
func workingDir() (string, error) {
	if repoDir != "" {
		abs, err := filepath.Abs(repoDir)
		if err != nil {
			return "", fmt.Errorf("invalid --repo directory %q: %w", repoDir, err)
		}
		return abs, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return cwd, nil
}

// outputJSON outputs a value as JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
