package metrics

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gradeops/autograder/types"
)

const (
	MetricsNamespace = "autograder"
)

var (
	Debug                bool = true
	validResults              = []types.TestStatus{types.TestStatusPass, types.TestStatusFail}
	nonAlphanumericRegex      = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	testOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "test_outcomes_total",
		Help:      "Count of graded test outcomes",
	}, []string{
		"run_id",
		"suite",
		"result",
	})

	gradingResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "grading_results",
		Help:      "Result of grading runs",
	}, []string{
		"run_id",
		"result",
	})

	gradingTestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "grading_test_total",
		Help:      "Total number of graded tests",
	}, []string{
		"run_id",
	})

	gradingTestPassed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "grading_test_passed",
		Help:      "Number of passed tests",
	}, []string{
		"run_id",
	})

	gradingTestFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "grading_test_failed",
		Help:      "Number of failed tests",
	}, []string{
		"run_id",
	})

	gradingPointsEarned = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "grading_points_earned",
		Help:      "Points earned by the grading run",
	}, []string{
		"run_id",
	})

	gradingPointsPossible = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "grading_points_possible",
		Help:      "Points possible in the grading run",
	}, []string{
		"run_id",
	})

	gradingDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "grading_duration",
		Help:      "Duration of grading runs in seconds",
	}, []string{
		"run_id",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	if Debug {
		log.Debug("metric inc",
			"m", "errors_total",
			"error", error,
		)
	}
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	label = fmt.Sprintf("%s.%s", label, errToLabel(err))
	RecordError(label)
}

// RecordOutcome counts one graded test outcome for a suite
func RecordOutcome(runID string, suite string, result types.TestStatus) {
	if !isValidResult(result) {
		log.Error("RecordOutcome - invalid result", "result", result)
		return
	}
	if Debug {
		log.Debug("metric inc",
			"m", "test_outcomes_total",
			"run_id", runID,
			"suite", suite,
			"result", result)
	}
	testOutcomesTotal.WithLabelValues(runID, suite, string(result)).Inc()
}

// RecordGrading publishes the aggregate outcome of a whole grading run
func RecordGrading(
	runID string,
	result string,
	total int,
	passed int,
	failed int,
	pointsEarned float64,
	pointsPossible float64,
	duration time.Duration,
) {
	gradingResults.WithLabelValues(runID, result).Set(1)
	gradingTestTotal.WithLabelValues(runID).Add(float64(total))
	gradingTestPassed.WithLabelValues(runID).Add(float64(passed))
	gradingTestFailed.WithLabelValues(runID).Add(float64(failed))
	gradingPointsEarned.WithLabelValues(runID).Set(pointsEarned)
	gradingPointsPossible.WithLabelValues(runID).Set(pointsPossible)
	gradingDuration.WithLabelValues(runID).Set(duration.Seconds())
}

func isValidResult(result types.TestStatus) bool {
	return slices.Contains(validResults, result)
}
