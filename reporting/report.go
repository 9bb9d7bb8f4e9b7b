package reporting

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gradeops/autograder/types"
)

// Suite display statuses used in console output
const (
	SuiteStatusPass  = "PASS"
	SuiteStatusFail  = "FAIL"
	SuiteStatusError = "ERROR"
	SuiteStatusEmpty = "EMPTY"
)

// ReportData contains all the structured data needed for any output format
type ReportData struct {
	// Run information
	RunID     string
	Timestamp time.Time
	Duration  time.Duration

	// Overall statistics
	Stats        types.ResultStats
	PassRateText string
	ScoreText    string
	HasFailures  bool
	HasErrors    bool

	// Per-suite breakdown, in configuration order
	Suites []SuiteReport

	// Summary lists
	FailedTestNames []string
	ErrorMessages   []string
}

// SuiteReport is one configured suite's slice of the run
type SuiteReport struct {
	Spec     types.SuiteSpec
	Status   string
	Duration time.Duration
	Stats    types.ResultStats
	Tests    []TestRow
	Err      error
}

// TestRow is a single scored test prepared for display
type TestRow struct {
	Number   string
	Name     string
	Passed   bool
	Score    float64
	MaxScore float64
}

// ReportBuilder constructs ReportData from the per-suite results of a run
type ReportBuilder struct {
	now func() time.Time
}

// NewReportBuilder creates a new report builder
func NewReportBuilder() *ReportBuilder {
	return &ReportBuilder{now: time.Now}
}

// BuildFromSuiteResults assembles display data from a grading run.
// Suites appear in the order given, which is configuration order.
func (rb *ReportBuilder) BuildFromSuiteResults(suites []*types.SuiteResult, runID string, duration time.Duration) *ReportData {
	data := &ReportData{
		RunID:           runID,
		Timestamp:       rb.now(),
		Duration:        duration,
		Suites:          make([]SuiteReport, 0, len(suites)),
		FailedTestNames: make([]string, 0),
		ErrorMessages:   make([]string, 0),
	}

	for _, suite := range suites {
		suiteReport := SuiteReport{
			Spec:     suite.Spec,
			Status:   suiteStatus(suite),
			Duration: suite.Duration,
			Stats:    suite.Stats,
			Err:      suite.Err,
		}

		if suite.Err != nil {
			data.HasErrors = true
			data.ErrorMessages = append(data.ErrorMessages,
				fmt.Sprintf("suite %s (%s): %v", suite.Spec.Number, suite.Spec.Name, suite.Err))
		}

		for i, scored := range suite.Scored {
			passed := false
			if i < len(suite.Outcomes) {
				passed = suite.Outcomes[i].Passed()
			}

			suiteReport.Tests = append(suiteReport.Tests, TestRow{
				Number:   scored.Number,
				Name:     scored.Name,
				Passed:   passed,
				Score:    scored.Score,
				MaxScore: scored.MaxScore,
			})

			if !passed {
				data.FailedTestNames = append(data.FailedTestNames, scored.Name)
			}
		}

		data.Stats.Merge(suite.Stats)
		data.Suites = append(data.Suites, suiteReport)
	}

	data.HasFailures = data.Stats.Failed > 0
	data.PassRateText = fmt.Sprintf("%.1f%%", data.Stats.PassRate()*100)
	data.ScoreText = formatScore(data.Stats.PointsEarned, data.Stats.PointsPossible)
	return data
}

// suiteStatus derives the display status for a suite. A suite whose filter
// discovered no tests shows as EMPTY so forfeited points are visible.
func suiteStatus(suite *types.SuiteResult) string {
	switch {
	case suite.Err != nil:
		return SuiteStatusError
	case suite.Stats.Failed > 0:
		return SuiteStatusFail
	case suite.Stats.Total == 0:
		return SuiteStatusEmpty
	default:
		return SuiteStatusPass
	}
}

// MarshalReport renders the wire report as a single line of compact JSON,
// newline terminated, the way grading platforms ingest it.
func MarshalReport(report *types.Report) (string, error) {
	if report == nil {
		return "", fmt.Errorf("report cannot be nil")
	}

	data, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(data) + "\n", nil
}
