package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gradeops/autograder/registry"
	"github.com/gradeops/autograder/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubExecutor serves canned executions keyed by suite number
type stubExecutor struct {
	executions map[string]*SuiteExecution
	errs       map[string]error
	listings   map[string][]string
}

func (s *stubExecutor) Execute(_ context.Context, _ string, spec types.SuiteSpec) (*SuiteExecution, error) {
	if err, ok := s.errs[spec.Number]; ok {
		return &SuiteExecution{}, err
	}
	if execution, ok := s.executions[spec.Number]; ok {
		return execution, nil
	}
	return &SuiteExecution{}, nil
}

func (s *stubExecutor) List(_ context.Context, _ string, spec types.SuiteSpec) ([]string, error) {
	if err, ok := s.errs[spec.Number]; ok {
		return nil, err
	}
	return s.listings[spec.Number], nil
}

func makeExecution(t *testing.T, output string) *SuiteExecution {
	t.Helper()
	raw := []byte(output)
	return &SuiteExecution{Raw: raw, Events: NewOutputParser(nil).Parse(raw)}
}

func newTestRegistry(t *testing.T, settings string) *registry.Registry {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(settings), 0644))

	reg, err := registry.NewRegistry(registry.Config{SettingsFile: path})
	require.NoError(t, err)
	return reg
}

const threeSuiteSettings = `{
  "target": "./submission",
  "suites": [
    {"number": "1", "name": "Unit", "points": 2.0, "filter": "unit"},
    {"number": "2", "name": "Integration", "points": 3.0, "filter": "integration"},
    {"number": "3", "name": "Props", "points": 1.0, "filter": "props"}
  ]
}`

func TestNewGradingRunner(t *testing.T) {
	t.Run("registry is required", func(t *testing.T) {
		_, err := NewGradingRunner(Config{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "registry is required")
	})

	t.Run("defaults executor and classifier", func(t *testing.T) {
		reg := newTestRegistry(t, threeSuiteSettings)
		gradingRunner, err := NewGradingRunner(Config{Registry: reg})
		require.NoError(t, err)
		assert.NotNil(t, gradingRunner)
	})
}

func TestRunAllSuites(t *testing.T) {
	reg := newTestRegistry(t, threeSuiteSettings)

	executor := &stubExecutor{
		executions: map[string]*SuiteExecution{
			"1": makeExecution(t, `{ "type": "test", "event": "started", "name": "unit::add" }
{ "type": "test", "name": "unit::add", "event": "ok" }
{ "type": "test", "event": "started", "name": "unit::sub" }
{ "type": "test", "name": "unit::sub", "event": "failed", "stdout": "left: 1\nright: 2" }
`),
			"2": makeExecution(t, `{ "type": "test", "event": "started", "name": "integration::api" }
{ "type": "test", "name": "integration::api", "event": "ok" }
`),
			"3": makeExecution(t, `{ "type": "test", "name": "props::a", "event": "ok" }
{ "type": "test", "name": "props::b", "event": "ok" }
{ "type": "test", "name": "props::c", "event": "ok" }
`),
		},
	}

	gradingRunner, err := NewGradingRunner(Config{Registry: reg, Executor: executor})
	require.NoError(t, err)

	result, err := gradingRunner.RunAllSuites(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)

	// Report rows arrive in suite order, numbered per suite.
	require.Len(t, result.Report.Tests, 6)
	numbers := make([]string, 0, len(result.Report.Tests))
	for _, st := range result.Report.Tests {
		numbers = append(numbers, st.Number)
	}
	assert.Equal(t, []string{"1.1", "1.2", "2.1", "3.1", "3.2", "3.3"}, numbers)

	assert.Equal(t, "Unit - unit::add", result.Report.Tests[0].Name)
	assert.Equal(t, 1.0, result.Report.Tests[0].Score)
	assert.Equal(t, 1.0, result.Report.Tests[0].MaxScore)

	assert.Equal(t, 0.0, result.Report.Tests[1].Score)
	assert.Equal(t, "left: 1\nright: 2", result.Report.Tests[1].Output)

	// Suite 2: one test takes the full budget.
	assert.Equal(t, 3.0, result.Report.Tests[2].Score)

	// Suite 3: thirds with rounding drift.
	assert.Equal(t, 0.33, result.Report.Tests[3].MaxScore)

	assert.Empty(t, result.Report.Output)
	assert.Equal(t, 6, result.Stats.Total)
	assert.Equal(t, 5, result.Stats.Passed)
	assert.Equal(t, 1, result.Stats.Failed)
	assert.NotEmpty(t, result.RunID)
	require.Len(t, result.Suites, 3)
	assert.Equal(t, types.TestStatusFail, result.Suites[0].Status())
	assert.Equal(t, types.TestStatusPass, result.Suites[1].Status())
}

func TestRunAllSuites_InvocationFailureDoesNotAbortRun(t *testing.T) {
	reg := newTestRegistry(t, threeSuiteSettings)

	executor := &stubExecutor{
		executions: map[string]*SuiteExecution{
			"1": makeExecution(t, `{ "type": "test", "name": "unit::add", "event": "ok" }`),
			"3": makeExecution(t, `{ "type": "test", "name": "props::a", "event": "ok" }`),
		},
		errs: map[string]error{
			"2": &SuiteInvocationError{Suite: "2", Err: os.ErrNotExist},
		},
	}

	gradingRunner, err := NewGradingRunner(Config{Registry: reg, Executor: executor})
	require.NoError(t, err)

	result, err := gradingRunner.RunAllSuites(context.Background())
	require.NoError(t, err)

	// Suites 1 and 3 still contribute; the failure is reported in-band.
	require.Len(t, result.Report.Tests, 2)
	assert.Equal(t, "1.1", result.Report.Tests[0].Number)
	assert.Equal(t, "3.1", result.Report.Tests[1].Number)
	assert.Contains(t, result.Report.Output, "suite 2 invocation failed")
}

func TestRunAllSuites_LastInvocationFailureWins(t *testing.T) {
	reg := newTestRegistry(t, threeSuiteSettings)

	executor := &stubExecutor{
		errs: map[string]error{
			"1": &SuiteInvocationError{Suite: "1", Err: os.ErrNotExist},
			"3": &SuiteInvocationError{Suite: "3", Err: os.ErrPermission},
		},
		executions: map[string]*SuiteExecution{
			"2": makeExecution(t, `{ "type": "test", "name": "integration::api", "event": "ok" }`),
		},
	}

	gradingRunner, err := NewGradingRunner(Config{Registry: reg, Executor: executor})
	require.NoError(t, err)

	result, err := gradingRunner.RunAllSuites(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Report.Tests, 1)
	assert.Contains(t, result.Report.Output, "suite 3")
	assert.NotContains(t, result.Report.Output, "suite 1")
}

func TestRunAllSuites_EmptySuiteForfeitsPoints(t *testing.T) {
	reg := newTestRegistry(t, threeSuiteSettings)

	// Suite 2's filter discovers nothing; only suite-level events come back.
	executor := &stubExecutor{
		executions: map[string]*SuiteExecution{
			"1": makeExecution(t, `{ "type": "test", "name": "unit::add", "event": "ok" }`),
			"2": makeExecution(t, `{ "type": "suite", "event": "started", "test_count": 0 }
{ "type": "suite", "event": "ok", "passed": 0, "failed": 0 }
`),
			"3": makeExecution(t, `{ "type": "test", "name": "props::a", "event": "ok" }`),
		},
	}

	gradingRunner, err := NewGradingRunner(Config{Registry: reg, Executor: executor})
	require.NoError(t, err)

	result, err := gradingRunner.RunAllSuites(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Report.Tests, 2)
	assert.Empty(t, result.Report.Output)

	// The forfeited suite contributes nothing to the possible points.
	assert.InDelta(t, 3.0, result.Stats.PointsPossible, 1e-9)
}

func TestListSuites(t *testing.T) {
	reg := newTestRegistry(t, threeSuiteSettings)

	executor := &stubExecutor{
		listings: map[string][]string{
			"1": {"unit::add", "unit::sub"},
			"2": {"integration::api"},
			"3": {},
		},
	}

	gradingRunner, err := NewGradingRunner(Config{Registry: reg, Executor: executor})
	require.NoError(t, err)

	listings, err := gradingRunner.ListSuites(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 3)

	assert.Equal(t, []string{"unit::add", "unit::sub"}, listings[0].Tests)
	assert.Equal(t, 1.0, listings[0].PerTestValue)
	assert.Equal(t, 3.0, listings[1].PerTestValue)
	assert.Zero(t, listings[2].PerTestValue)
}
