package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"github.com/gradeops/autograder/logging"
	"github.com/gradeops/autograder/registry"
	"github.com/gradeops/autograder/types"
)

// RunnerResult captures the complete grading run: the wire report plus the
// per-suite results the report was built from.
type RunnerResult struct {
	Report   *types.Report
	Suites   []*types.SuiteResult
	Stats    types.ResultStats
	Duration time.Duration
	RunID    string
}

// SuiteListing describes the tests a suite's filter selects and the point
// value each would carry, without running them.
type SuiteListing struct {
	Spec         types.SuiteSpec
	Tests        []string
	PerTestValue float64
	Err          error
}

// GradingRunner defines the interface for running grading suites
type GradingRunner interface {
	// RunAllSuites grades every configured suite, strictly in configuration
	// order, and returns the aggregated result. A suite that cannot be
	// invoked contributes no tests and does not stop the run.
	RunAllSuites(ctx context.Context) (*RunnerResult, error)

	// ListSuites reports which tests each suite's filter currently selects.
	ListSuites(ctx context.Context) ([]SuiteListing, error)
}

// runner struct implements GradingRunner interface
type runner struct {
	registry   *registry.Registry
	executor   SuiteExecutor
	classifier OutcomeClassifier
	fileLogger *logging.FileLogger
	log        log.Logger
	runID      string
}

// Config holds configuration for creating a new runner
type Config struct {
	Registry   *registry.Registry
	Executor   SuiteExecutor
	Classifier OutcomeClassifier
	FileLogger *logging.FileLogger
	Log        log.Logger
}

// NewGradingRunner creates a new grading runner instance
func NewGradingRunner(cfg Config) (GradingRunner, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	if cfg.Classifier == nil {
		cfg.Classifier = NewOutcomeClassifier(cfg.Log)
	}
	if cfg.Executor == nil {
		executor, err := NewSuiteExecutor(DefaultCargoBinary, DefaultSuiteTimeout, nil, nil, NewOutputParser(cfg.Log), cfg.Log)
		if err != nil {
			return nil, fmt.Errorf("failed to create executor: %w", err)
		}
		cfg.Executor = executor
	}

	run := cfg.Registry.GetRunConfig()
	if len(run.Suites) == 0 {
		return nil, fmt.Errorf("no suites configured")
	}

	cfg.Log.Debug("NewGradingRunner()", "target", run.Target, "len(suites)", len(run.Suites))

	return &runner{
		registry:   cfg.Registry,
		executor:   cfg.Executor,
		classifier: cfg.Classifier,
		fileLogger: cfg.FileLogger,
		log:        cfg.Log,
	}, nil
}

// RunAllSuites implements the GradingRunner interface
func (r *runner) RunAllSuites(ctx context.Context) (*RunnerResult, error) {
	// Use fileLogger's runID if available, otherwise generate new
	if r.fileLogger != nil {
		r.runID = r.fileLogger.GetRunID()
	} else {
		r.runID = uuid.New().String()
	}

	start := time.Now()
	r.log.Debug("Running all suites", "run_id", r.runID)

	run := r.registry.GetRunConfig()
	result := &RunnerResult{
		Report: types.NewReport(),
		RunID:  r.runID,
	}

	for _, spec := range run.Suites {
		suiteResult := r.runSuite(ctx, run.Target, spec)
		result.Suites = append(result.Suites, suiteResult)

		if suiteResult.Err != nil {
			// Only the most recent failure message is kept on the report;
			// the log and the run artifacts retain all of them.
			result.Report.SetFatal(suiteResult.Err.Error())
			continue
		}

		result.Report.Append(suiteResult.Scored)
		result.Stats.Merge(suiteResult.Stats)
	}

	result.Duration = time.Since(start)
	return result, nil
}

// runSuite invokes one suite and scores whatever it discovered
func (r *runner) runSuite(ctx context.Context, target string, spec types.SuiteSpec) *types.SuiteResult {
	suiteResult := &types.SuiteResult{Spec: spec}

	execution, err := r.executor.Execute(ctx, target, spec)
	if execution != nil {
		suiteResult.Duration = execution.Duration
		if r.fileLogger != nil {
			if logErr := r.fileLogger.LogSuiteRaw(spec.Number, execution.Raw); logErr != nil {
				r.log.Error("Failed to write raw suite output", "suite", spec.Number, "error", logErr)
			}
		}
	}
	if err != nil {
		r.log.Error("Suite invocation failed", "suite", spec.Number, "error", err)
		suiteResult.Err = err
		return suiteResult
	}

	outcomes := r.classifyEvents(execution.Events)
	if len(outcomes) == 0 {
		r.log.Warn("No tests discovered, points forfeited",
			"suite", spec.Number, "filter", spec.Filter, "points", spec.Points)
		return suiteResult
	}

	suiteResult.Scored = ScoreBatch(spec, outcomes)
	suiteResult.Outcomes = outcomes
	for i := range outcomes {
		suiteResult.Stats.Record(outcomes[i], suiteResult.Scored[i])
		if !outcomes[i].Passed() {
			r.logFailure(suiteResult.Scored[i])
		}
	}

	r.log.Info("Suite graded",
		"suite", spec.Number, "tests", suiteResult.Stats.Total,
		"passed", suiteResult.Stats.Passed, "failed", suiteResult.Stats.Failed,
		"earned", suiteResult.Stats.PointsEarned, "possible", suiteResult.Stats.PointsPossible)

	return suiteResult
}

// ListSuites implements the GradingRunner interface
func (r *runner) ListSuites(ctx context.Context) ([]SuiteListing, error) {
	run := r.registry.GetRunConfig()

	listings := make([]SuiteListing, 0, len(run.Suites))
	for _, spec := range run.Suites {
		listing := SuiteListing{Spec: spec}

		names, err := r.executor.List(ctx, run.Target, spec)
		if err != nil {
			r.log.Error("Suite listing failed", "suite", spec.Number, "error", err)
			listing.Err = err
		} else {
			listing.Tests = names
			if len(names) > 0 {
				listing.PerTestValue = Round2(spec.Points / float64(len(names)))
			}
		}

		listings = append(listings, listing)
	}

	return listings, nil
}

func (r *runner) classifyEvents(events []OutcomeEvent) []types.TestOutcome {
	var outcomes []types.TestOutcome
	for _, event := range events {
		if outcome := r.classifier.Classify(event); outcome != nil {
			outcomes = append(outcomes, *outcome)
		}
	}
	return outcomes
}

func (r *runner) logFailure(scored types.ScoredTest) {
	if r.fileLogger == nil {
		return
	}
	if err := r.fileLogger.LogFailure(scored); err != nil {
		r.log.Error("Failed to write failure diagnostic", "test", scored.Number, "error", err)
	}
}

// Make sure the runner type implements the interface
var _ GradingRunner = &runner{}
