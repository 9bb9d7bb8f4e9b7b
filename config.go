package autograder

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/gradeops/autograder/flags"
	"github.com/urfave/cli/v2"
)

// Config holds the application configuration
type Config struct {
	Settings           string        // Path to the grading settings file
	Output             string        // Report destination; empty means stdout
	ListOnly           bool          // List selected tests and their point values instead of grading
	Details            bool          // Include per-test rows in the console table
	CargoBinary        string        // Cargo binary used to invoke suites
	SuiteTimeout       time.Duration // Per-suite invocation timeout (0 = no timeout)
	ArtifactsDir       string        // Directory for per-run artifacts; empty disables artifact logging
	ServiceEnabled     bool          // Serve healthz and metrics endpoints during the run
	ServiceHealthzAddr string        // Listen address for the healthz server
	ServiceMetricsAddr string        // Listen address for the metrics server
	Log                log.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, log log.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, NewUsageError(err.Error())
	}

	settings := flags.SettingsPath(ctx)
	absSettings, err := filepath.Abs(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for settings file '%s': %w", settings, err)
	}

	output := ctx.String(flags.Output.Name)
	if output != "" {
		output, err = filepath.Abs(output)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for output file '%s': %w", output, err)
		}
	}

	artifactsDir := ctx.String(flags.ArtifactsDir.Name)
	if artifactsDir != "" {
		artifactsDir, err = filepath.Abs(artifactsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for artifacts directory '%s': %w", artifactsDir, err)
		}
	}

	return &Config{
		Settings:           absSettings,
		Output:             output,
		ListOnly:           ctx.Bool(flags.List.Name),
		Details:            ctx.Bool(flags.Details.Name),
		CargoBinary:        ctx.String(flags.CargoBinary.Name),
		SuiteTimeout:       ctx.Duration(flags.SuiteTimeout.Name),
		ArtifactsDir:       artifactsDir,
		ServiceEnabled:     ctx.Bool(flags.ServiceEnabled.Name),
		ServiceHealthzAddr: ctx.String(flags.ServiceHealthzAddr.Name),
		ServiceMetricsAddr: ctx.String(flags.ServiceMetricsAddr.Name),
		Log:                log,
	}, nil
}
