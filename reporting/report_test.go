package reporting

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradeops/autograder/types"
)

func makeGradedSuite() *types.SuiteResult {
	return &types.SuiteResult{
		Spec: types.SuiteSpec{Number: "1", Name: "Chapter 1", Points: 1.0, Filter: "ch1"},
		Scored: []types.ScoredTest{
			{Number: "1.1", Name: "Chapter 1 - tests::ok", Score: 0.5, MaxScore: 0.5},
			{Number: "1.2", Name: "Chapter 1 - tests::bad", Score: 0, MaxScore: 0.5, Output: "panicked"},
		},
		Outcomes: []types.TestOutcome{
			{Name: "tests::ok", Status: types.TestStatusPass},
			{Name: "tests::bad", Status: types.TestStatusFail, Diagnostic: "panicked"},
		},
		Stats: types.ResultStats{
			Total: 2, Passed: 1, Failed: 1,
			PointsEarned: 0.5, PointsPossible: 1.0,
		},
		Duration: 1500 * time.Millisecond,
	}
}

func makeErroredSuite() *types.SuiteResult {
	return &types.SuiteResult{
		Spec: types.SuiteSpec{Number: "2", Name: "Chapter 2", Points: 2.0, Filter: "ch2"},
		Err:  errors.New("no such file or directory"),
	}
}

func makeEmptySuite() *types.SuiteResult {
	return &types.SuiteResult{
		Spec: types.SuiteSpec{Number: "3", Name: "Chapter 3", Points: 0.5, Filter: "nope"},
	}
}

func TestBuildFromSuiteResults(t *testing.T) {
	builder := NewReportBuilder()
	suites := []*types.SuiteResult{makeGradedSuite(), makeErroredSuite(), makeEmptySuite()}

	data := builder.BuildFromSuiteResults(suites, "run-42", 2*time.Second)

	assert.Equal(t, "run-42", data.RunID)
	assert.Equal(t, 2*time.Second, data.Duration)
	assert.False(t, data.Timestamp.IsZero())
	require.Len(t, data.Suites, 3)

	// Overall stats are the merge of the per-suite stats
	assert.Equal(t, 2, data.Stats.Total)
	assert.Equal(t, 1, data.Stats.Passed)
	assert.Equal(t, 1, data.Stats.Failed)
	assert.InDelta(t, 0.5, data.Stats.PointsEarned, 1e-9)
	assert.InDelta(t, 1.0, data.Stats.PointsPossible, 1e-9)
	assert.Equal(t, "0.5/1", data.ScoreText)
	assert.Equal(t, "50.0%", data.PassRateText)

	assert.True(t, data.HasFailures)
	assert.True(t, data.HasErrors)

	// Suite rows keep configuration order and derive display statuses
	assert.Equal(t, SuiteStatusFail, data.Suites[0].Status)
	assert.Equal(t, SuiteStatusError, data.Suites[1].Status)
	assert.Equal(t, SuiteStatusEmpty, data.Suites[2].Status)

	// Test rows carry the pass flag from the outcomes
	require.Len(t, data.Suites[0].Tests, 2)
	assert.True(t, data.Suites[0].Tests[0].Passed)
	assert.False(t, data.Suites[0].Tests[1].Passed)

	require.Len(t, data.FailedTestNames, 1)
	assert.Equal(t, "Chapter 1 - tests::bad", data.FailedTestNames[0])

	require.Len(t, data.ErrorMessages, 1)
	assert.Contains(t, data.ErrorMessages[0], "suite 2 (Chapter 2)")
	assert.Contains(t, data.ErrorMessages[0], "no such file or directory")
}

func TestBuildFromSuiteResultsAllPassing(t *testing.T) {
	suite := makeGradedSuite()
	suite.Scored = suite.Scored[:1]
	suite.Outcomes = suite.Outcomes[:1]
	suite.Stats = types.ResultStats{Total: 1, Passed: 1, PointsEarned: 0.5, PointsPossible: 0.5}

	data := NewReportBuilder().BuildFromSuiteResults([]*types.SuiteResult{suite}, "run-1", time.Second)

	assert.False(t, data.HasFailures)
	assert.False(t, data.HasErrors)
	assert.Empty(t, data.FailedTestNames)
	assert.Empty(t, data.ErrorMessages)
	assert.Equal(t, SuiteStatusPass, data.Suites[0].Status)
	assert.Equal(t, "100.0%", data.PassRateText)
}

func TestSuiteStatus(t *testing.T) {
	tests := []struct {
		name     string
		suite    *types.SuiteResult
		expected string
	}{
		{
			name:     "all tests passed",
			suite:    &types.SuiteResult{Stats: types.ResultStats{Total: 2, Passed: 2}},
			expected: SuiteStatusPass,
		},
		{
			name:     "a test failed",
			suite:    &types.SuiteResult{Stats: types.ResultStats{Total: 2, Passed: 1, Failed: 1}},
			expected: SuiteStatusFail,
		},
		{
			name:     "invocation error",
			suite:    &types.SuiteResult{Err: errors.New("spawn failed")},
			expected: SuiteStatusError,
		},
		{
			name:     "no tests discovered",
			suite:    &types.SuiteResult{},
			expected: SuiteStatusEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, suiteStatus(tt.suite))
		})
	}
}

func TestMarshalReport(t *testing.T) {
	report := types.NewReport()
	report.Append([]types.ScoredTest{{Number: "1.1", Name: "Unit - ok", Score: 1, MaxScore: 1}})

	content, err := MarshalReport(report)
	require.NoError(t, err)

	assert.Equal(t, `{"tests":[{"number":"1.1","name":"Unit - ok","score":1,"max_score":1,"output":""}],"output":""}`+"\n", content)
}

func TestMarshalReportEmpty(t *testing.T) {
	content, err := MarshalReport(types.NewReport())
	require.NoError(t, err)

	// An empty run still serializes with a tests array, never null
	assert.Equal(t, `{"tests":[],"output":""}`+"\n", content)
}

func TestMarshalReportNil(t *testing.T) {
	_, err := MarshalReport(nil)
	require.Error(t, err)
}
