package autograder

import (
	"github.com/gradeops/autograder/metrics"
	"github.com/gradeops/autograder/runner"
	"github.com/gradeops/autograder/types"
)

// MetricsReporter is responsible for reporting metrics from grading results.
type MetricsReporter interface {
	ReportResults(runID string, result *runner.RunnerResult)
}

// DefaultMetricsReporter implements the MetricsReporter interface.
type DefaultMetricsReporter struct{}

// NewDefaultMetricsReporter creates a new DefaultMetricsReporter.
func NewDefaultMetricsReporter() *DefaultMetricsReporter {
	return &DefaultMetricsReporter{}
}

// ReportResults reports the grading results to metrics systems.
func (r *DefaultMetricsReporter) ReportResults(runID string, result *runner.RunnerResult) {
	overall := types.TestStatusPass
	for _, suite := range result.Suites {
		if suite.Status() == types.TestStatusFail {
			overall = types.TestStatusFail
			break
		}
	}

	metrics.RecordGrading(
		runID,
		string(overall),
		result.Stats.Total,
		result.Stats.Passed,
		result.Stats.Failed,
		result.Stats.PointsEarned,
		result.Stats.PointsPossible,
		result.Duration,
	)

	for _, suite := range result.Suites {
		if suite.Err != nil {
			metrics.RecordErrorDetails("suite_invocation", suite.Err)
			continue
		}
		for _, outcome := range suite.Outcomes {
			metrics.RecordOutcome(runID, suite.Spec.Number, outcome.Status)
		}
	}
}
