package autograder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/gradeops/autograder/exitcodes"
	"github.com/gradeops/autograder/logging"
	"github.com/gradeops/autograder/registry"
	"github.com/gradeops/autograder/reporting"
	"github.com/gradeops/autograder/runner"
	"github.com/gradeops/autograder/types"
)

// grader runs the configured Rust test suites once and emits a grade report.
type grader struct {
	ctx        context.Context
	config     *Config
	version    string
	registry   *registry.Registry
	runner     runner.GradingRunner
	fileLogger *logging.FileLogger
	result     *runner.RunnerResult

	executor  GradeExecutor
	formatter ResultFormatter
	reporter  MetricsReporter

	running atomic.Bool
	done    chan struct{}

	shutdownCallback func(error) // Callback to signal application shutdown
}

func New(ctx context.Context, config *Config, version string, shutdownCallback func(error)) (*grader, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	config.Log.Debug("Creating autograder with config",
		"settings", config.Settings,
		"output", config.Output,
		"cargoBinary", config.CargoBinary,
		"suiteTimeout", config.SuiteTimeout,
		"artifactsDir", config.ArtifactsDir)

	reg, err := registry.NewRegistry(registry.Config{
		Log:          config.Log,
		SettingsFile: config.Settings,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}

	var fileLogger *logging.FileLogger
	if config.ArtifactsDir != "" {
		fileLogger, err = logging.NewFileLogger(config.ArtifactsDir, uuid.New().String())
		if err != nil {
			return nil, fmt.Errorf("failed to create artifact logger: %w", err)
		}
	}

	suiteExecutor, err := runner.NewSuiteExecutor(config.CargoBinary, config.SuiteTimeout,
		nil, nil, runner.NewOutputParser(config.Log), config.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create suite executor: %w", err)
	}

	// Create runner with registry
	gradingRunner, err := runner.NewGradingRunner(runner.Config{
		Registry:   reg,
		Executor:   suiteExecutor,
		FileLogger: fileLogger,
		Log:        config.Log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create grading runner: %w", err)
	}
	config.Log.Info("autograder.New: created registry and grading runner")

	return &grader{
		ctx:              ctx,
		config:           config,
		version:          version,
		registry:         reg,
		runner:           gradingRunner,
		fileLogger:       fileLogger,
		executor:         NewDefaultGradeExecutor(gradingRunner, config.Log),
		formatter:        NewConsoleResultFormatter(config.Log, config.Details),
		reporter:         NewDefaultMetricsReporter(),
		done:             make(chan struct{}),
		shutdownCallback: shutdownCallback,
	}, nil
}

// Start grades every configured suite once and emits the report.
func (g *grader) Start(ctx context.Context) error {
	// Set up panic recovery to ensure we exit with code 2 for runtime errors
	defer func() {
		if r := recover(); r != nil {
			g.config.Log.Error("Runtime error occurred", "error", r)
			os.Exit(exitcodes.RuntimeErr)
		}
	}()

	g.ctx = ctx
	g.done = make(chan struct{})
	g.running.Store(true)

	if g.config.ListOnly {
		g.config.Log.Info("Starting autograder in list mode")
		if err := g.listSuites(ctx); err != nil {
			g.config.Log.Error("Runtime error listing suites", "error", err)
			return cli.Exit(err.Error(), exitcodes.RuntimeErr)
		}
		go func() {
			g.shutdownCallback(nil)
		}()
		return nil
	}

	g.config.Log.Info("Starting autograder in grading mode")
	if err := g.runGrading(ctx); err != nil {
		// This covers configuration and invocation problems, not failing
		// student tests. Those are reported in-band and still exit 0.
		g.config.Log.Error("Runtime error running suites", "error", err)
		return cli.Exit(err.Error(), exitcodes.RuntimeErr)
	}

	g.config.Log.Info("Grading completed, exiting")
	go func() {
		g.shutdownCallback(nil)
	}()
	return nil // Success (exit code 0)
}

// runGrading grades all suites, emits the wire report and processes the results
func (g *grader) runGrading(ctx context.Context) error {
	result, err := g.executor.RunGrading(ctx)
	if err != nil {
		// This is a runtime error (not a test failure)
		return NewRuntimeError(err)
	}
	g.result = result

	// The wire report is the primary output and must be written even when
	// every suite errored; invocation failures surface in its output field.
	if err := g.emitReport(result.Report); err != nil {
		return NewRuntimeError(err)
	}

	if err := g.formatter.FormatResults(result); err != nil {
		g.config.Log.Error("Failed to render console results", "error", err)
	}

	g.writeArtifacts(result)
	g.reporter.ReportResults(result.RunID, result)

	g.config.Log.Info("Grading run completed", "run_id", result.RunID,
		"score", fmt.Sprintf("%v/%v", result.Stats.PointsEarned, result.Stats.PointsPossible))
	return nil
}

// emitReport writes the wire report to the configured destination.
func (g *grader) emitReport(report *types.Report) error {
	content, err := reporting.MarshalReport(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	var writer reporting.ReportWriter
	if g.config.Output != "" {
		writer = reporting.NewFileWriter(g.config.Output)
	} else {
		writer = reporting.NewStdoutWriter()
	}
	if err := writer.Write(content); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// writeArtifacts persists the report and a text summary into the run directory.
func (g *grader) writeArtifacts(result *runner.RunnerResult) {
	if g.fileLogger == nil {
		return
	}

	if err := g.fileLogger.WriteReport(result.Report); err != nil {
		g.config.Log.Error("Failed to write report artifact", "error", err)
	}

	builder := reporting.NewReportBuilder()
	data := builder.BuildFromSuiteResults(result.Suites, result.RunID, result.Duration)
	summary, err := reporting.NewTextSummaryFormatter(g.config.Details).Format(data)
	if err != nil {
		g.config.Log.Error("Failed to format summary artifact", "error", err)
	} else if err := g.fileLogger.LogSummary(summary); err != nil {
		g.config.Log.Error("Failed to write summary artifact", "error", err)
	}

	html, err := reporting.NewHTMLFormatter().Format(data)
	if err != nil {
		g.config.Log.Error("Failed to render HTML artifact", "error", err)
	} else if err := g.fileLogger.WriteHTML(html); err != nil {
		g.config.Log.Error("Failed to write HTML artifact", "error", err)
	}

	if err := g.fileLogger.Complete(); err != nil {
		g.config.Log.Error("Failed to flush artifact logs", "error", err)
	}
	g.config.Log.Info("Run artifacts written", "dir", g.fileLogger.GetDirectory())
}

// listSuites prints the tests each suite's filter selects and the point value
// each would carry, without grading them.
func (g *grader) listSuites(ctx context.Context) error {
	listings, err := g.runner.ListSuites(ctx)
	if err != nil {
		return NewRuntimeError(err)
	}

	for _, listing := range listings {
		fmt.Printf("Suite %s: %s (%s points, filter %q)\n",
			listing.Spec.Number, listing.Spec.Name, formatPointValue(listing.Spec.Points), listing.Spec.Filter)
		if listing.Err != nil {
			fmt.Printf("  ! listing failed: %v\n", listing.Err)
			continue
		}
		if len(listing.Tests) == 0 {
			fmt.Println("  (no tests selected)")
			continue
		}
		for _, name := range listing.Tests {
			fmt.Printf("  %s (%s points each)\n", name, formatPointValue(listing.PerTestValue))
		}
	}
	return nil
}

func formatPointValue(v float64) string {
	return fmt.Sprintf("%g", v)
}

// Stop stops the autograder service.
func (g *grader) Stop(ctx context.Context) error {
	g.config.Log.Info("Stopping autograder")

	// Check if we're already stopped
	if !g.running.Load() {
		g.config.Log.Debug("Service already stopped, nothing to do")
		return nil
	}

	g.running.Store(false)

	g.config.Log.Debug("Sending done signal to goroutines")
	close(g.done)

	g.config.Log.Info("autograder stopped successfully")
	return nil
}

// Stopped returns true if the autograder service is stopped.
func (g *grader) Stopped() bool {
	return !g.running.Load()
}
