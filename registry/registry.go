package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"github.com/gradeops/autograder/types"
	"gopkg.in/yaml.v3"
)

// Registry loads the grading settings file and serves the resulting run
// configuration to the rest of the application.
type Registry struct {
	config Config
	run    types.RunConfig
	mu     sync.RWMutex
}

// Config contains registry configuration
type Config struct {
	Log          log.Logger
	SettingsFile string
}

// NewRegistry creates a new registry instance and loads the settings file.
// Any failure here is a configuration error: the run must abort before any
// suite executes.
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.SettingsFile == "" {
		return nil, fmt.Errorf("settings file is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}

	r := &Registry{
		config: cfg,
	}

	if err := r.loadSettings(cfg.SettingsFile); err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	cfg.Log.Debug("Registry loaded", "target", r.run.Target, "len(suites)", len(r.run.Suites))

	return r, nil
}

// loadSettings reads, decodes and validates the settings file
func (r *Registry) loadSettings(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, err := decodeSettings(path)
	if err != nil {
		return err
	}

	if err := validateRunConfig(run); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	r.run = *run

	return nil
}

// GetRunConfig returns the loaded run configuration
func (r *Registry) GetRunConfig() types.RunConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.run
}

// GetSuites returns the suites to grade, in configuration order
func (r *Registry) GetSuites() []types.SuiteSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.run.Suites
}

// GetSuite returns the suite with the given number
func (r *Registry) GetSuite(number string) (types.SuiteSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, suite := range r.run.Suites {
		if suite.Number == number {
			return suite, true
		}
	}
	return types.SuiteSpec{}, false
}

// GetConfig returns the registry configuration
func (r *Registry) GetConfig() Config {
	return r.config
}

// decodeSettings loads a run configuration from a JSON or YAML file,
// selected by extension. JSON is the platform's native settings format.
func decodeSettings(path string) (*types.RunConfig, error) {
	log.Debug("Reading settings file", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	var cfg types.RunConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing settings file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing settings file: %w", err)
		}
	}

	return &cfg, nil
}

// validateRunConfig rejects settings the grader cannot score correctly
func validateRunConfig(cfg *types.RunConfig) error {
	if cfg.Target == "" {
		return fmt.Errorf("target is required")
	}
	if len(cfg.Suites) == 0 {
		return fmt.Errorf("at least one suite is required")
	}

	seen := make(map[string]bool)
	for i, suite := range cfg.Suites {
		if suite.Number == "" {
			return fmt.Errorf("suite %d: number is required", i)
		}
		if seen[suite.Number] {
			return fmt.Errorf("suite %d: duplicate number %q", i, suite.Number)
		}
		seen[suite.Number] = true

		if suite.Points < 0 {
			return fmt.Errorf("suite %s: points must be non-negative, got %v", suite.Number, suite.Points)
		}
	}

	return nil
}
