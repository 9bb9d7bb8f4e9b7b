package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradeops/autograder/types"
)

func TestFileLogger(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "filelogger_test")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(tmpDir) }()

	runID := "test-run-123"
	logger, err := NewFileLogger(tmpDir, runID)
	require.NoError(t, err)
	assert.Equal(t, runID, logger.GetRunID())

	// Verify the directory structure
	runDir := logger.GetDirectory()
	assert.Equal(t, filepath.Join(tmpDir, RunDirectoryPrefix+runID), runDir)
	assert.DirExists(t, runDir)
	assert.DirExists(t, logger.GetRawDir())
	assert.DirExists(t, logger.GetFailedDir())

	// Capture raw streams for two suites
	err = logger.LogSuiteRaw("1", []byte(`{"type":"suite","event":"started","test_count":1}`))
	require.NoError(t, err)
	err = logger.LogSuiteRaw("2", []byte(`{"type":"suite","event":"started","test_count":3}`+"\n"))
	require.NoError(t, err)

	// Log a failed test
	err = logger.LogFailure(types.ScoredTest{
		Number:   "1.2",
		Name:     "Chapter 1 - tests::parse_fails",
		Score:    0,
		MaxScore: 0.5,
		Output:   "thread panicked at 'assertion failed'",
	})
	require.NoError(t, err)

	// Write the report copy and a summary
	report := types.NewReport()
	report.Append([]types.ScoredTest{{Number: "1.1", Name: "Chapter 1 - tests::parse_ok", Score: 0.5, MaxScore: 0.5}})
	err = logger.WriteReport(report)
	require.NoError(t, err)

	err = logger.LogSummary("1/2 tests passed\n")
	require.NoError(t, err)

	err = logger.WriteHTML("<html><body>Grading Report</body></html>")
	require.NoError(t, err)

	// Complete the logging process
	err = logger.Complete()
	require.NoError(t, err)

	// Wait a short time to ensure async writes complete
	time.Sleep(100 * time.Millisecond)

	// Raw streams land in per-suite files with a trailing newline
	rawOne, err := os.ReadFile(filepath.Join(logger.GetRawDir(), "suite-1.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, `{"type":"suite","event":"started","test_count":1}`+"\n", string(rawOne))
	assert.FileExists(t, filepath.Join(logger.GetRawDir(), "suite-2.jsonl"))

	// Failure log carries identity, score and output
	failLog, err := os.ReadFile(filepath.Join(logger.GetFailedDir(), "Chapter_1_-_tests__parse_fails.log"))
	require.NoError(t, err)
	assert.Contains(t, string(failLog), "TEST:   Chapter 1 - tests::parse_fails")
	assert.Contains(t, string(failLog), "Score:  0 / 0.5")
	assert.Contains(t, string(failLog), "thread panicked at 'assertion failed'")

	// Report copy is valid indented JSON in the wire shape
	reportData, err := os.ReadFile(logger.GetReportFile())
	require.NoError(t, err)
	assert.Contains(t, string(reportData), `"max_score": 0.5`)
	assert.Contains(t, string(reportData), `"tests"`)

	// Summary file exists with our line
	summaryData, err := os.ReadFile(logger.GetSummaryFile())
	require.NoError(t, err)
	assert.Contains(t, string(summaryData), "1/2 tests passed")

	// HTML report lands next to the summary
	htmlData, err := os.ReadFile(logger.GetHTMLFile())
	require.NoError(t, err)
	assert.Contains(t, string(htmlData), "Grading Report")
}

func TestNewFileLoggerValidation(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "filelogger_validation")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(tmpDir) }()

	_, err = NewFileLogger(tmpDir, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "runID cannot be empty")

	_, err = NewFileLogger("", "run-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "baseDir cannot be empty")
}

func TestLogSuiteRawAppends(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "filelogger_append")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(tmpDir) }()

	logger, err := NewFileLogger(tmpDir, "run-append")
	require.NoError(t, err)

	require.NoError(t, logger.LogSuiteRaw("3", []byte("line one")))
	require.NoError(t, logger.LogSuiteRaw("3", []byte("line two")))
	require.NoError(t, logger.Complete())
	time.Sleep(100 * time.Millisecond)

	data, err := os.ReadFile(filepath.Join(logger.GetRawDir(), "suite-3.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", string(data))
}

func TestWriteHTMLRequiresContent(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "filelogger_html")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(tmpDir) }()

	logger, err := NewFileLogger(tmpDir, "run-html")
	require.NoError(t, err)
	defer func() { _ = logger.Complete() }()

	err = logger.WriteHTML("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content cannot be empty")
}

func TestLogFailureRequiresName(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "filelogger_failname")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(tmpDir) }()

	logger, err := NewFileLogger(tmpDir, "run-failname")
	require.NoError(t, err)
	defer func() { _ = logger.Complete() }()

	err = logger.LogFailure(types.ScoredTest{})
	require.Error(t, err)
}

func TestAsyncFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "asyncfile_test")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(tmpDir) }()

	path := filepath.Join(tmpDir, "out.log")
	af, err := NewAsyncFile(path)
	require.NoError(t, err)

	require.NoError(t, af.Write([]byte("hello ")))
	require.NoError(t, af.Write([]byte("world")))
	require.NoError(t, af.Close())

	// Writes after close are rejected
	require.Error(t, af.Write([]byte("late")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "spaces and separators",
			input:    "Chapter 1 - tests::ok",
			expected: "Chapter_1_-_tests__ok",
		},
		{
			name:     "path characters",
			input:    `a/b\c:d`,
			expected: "a_b_c_d",
		},
		{
			name:     "already safe",
			input:    "suite-1.2",
			expected: "suite-1.2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, safeFilename(tt.input))
		})
	}
}
