package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gradeops/autograder/types"
)

const (
	// RunDirectoryPrefix is the standardized prefix for per-run artifact directories.
	RunDirectoryPrefix = "grading-"

	rawDirName     = "raw"
	failedDirName  = "failed"
	summaryLogName = "summary.log"
	reportFileName = "report.json"
	htmlFileName   = "report.html"
)

// FileLogger writes grading artifacts for a single run: the raw libtest JSON
// streams captured per suite, a dedicated log per failed test, the final
// report, and a human-readable summary.
type FileLogger struct {
	baseDir      string                // Base directory for all runs
	runDir       string                // Directory for this run
	rawDir       string                // Raw cargo JSON streams, one file per suite
	failedDir    string                // Dedicated logs for failed tests
	summaryFile  string                // Path to the summary file
	reportFile   string                // Path to the report copy
	htmlFile     string                // Path to the HTML report
	mu           sync.Mutex            // Protects the writer map
	asyncWriters map[string]*AsyncFile // Map of async file writers
	runID        string                // Current run ID
}

// AsyncFile provides non-blocking file writing capabilities
type AsyncFile struct {
	file    *os.File
	queue   chan []byte
	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool
}

// NewAsyncFile creates a new AsyncFile for non-blocking writes
func NewAsyncFile(filepath string) (*AsyncFile, error) {
	file, err := os.Create(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file %s: %w", filepath, err)
	}

	af := &AsyncFile{
		file:  file,
		queue: make(chan []byte, 100), // Buffer channel to reduce blocking
	}

	// Start the background writer
	af.wg.Add(1)
	go af.processQueue()

	return af, nil
}

// Write queues data to be written asynchronously
func (af *AsyncFile) Write(data []byte) error {
	af.mu.Lock()
	defer af.mu.Unlock()

	if af.stopped {
		return fmt.Errorf("async file is closed")
	}

	// Copy so callers can reuse their buffer
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	af.queue <- dataCopy
	return nil
}

// processQueue processes the write queue in the background
func (af *AsyncFile) processQueue() {
	defer af.wg.Done()

	for data := range af.queue {
		_, err := af.file.Write(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing to file: %v\n", err)
		}
	}
}

// Close stops the async writer and closes the file
func (af *AsyncFile) Close() error {
	af.mu.Lock()
	if !af.stopped {
		af.stopped = true
		close(af.queue)
	}
	af.mu.Unlock()

	// Wait for all writes to complete
	af.wg.Wait()
	return af.file.Close()
}

// NewFileLogger creates a FileLogger rooted at baseDir for the given run.
// The run directory and its subdirectories are created immediately.
func NewFileLogger(baseDir string, runID string) (*FileLogger, error) {
	if runID == "" {
		return nil, fmt.Errorf("runID cannot be empty")
	}

	if baseDir == "" {
		return nil, fmt.Errorf("baseDir cannot be empty")
	}

	runDir := filepath.Join(baseDir, RunDirectoryPrefix+runID)
	rawDir := filepath.Join(runDir, rawDirName)
	failedDir := filepath.Join(runDir, failedDirName)

	dirs := []string{
		baseDir,
		runDir,
		rawDir,
		failedDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return &FileLogger{
		baseDir:      baseDir,
		runDir:       runDir,
		rawDir:       rawDir,
		failedDir:    failedDir,
		summaryFile:  filepath.Join(runDir, summaryLogName),
		reportFile:   filepath.Join(runDir, reportFileName),
		htmlFile:     filepath.Join(runDir, htmlFileName),
		asyncWriters: make(map[string]*AsyncFile),
		runID:        runID,
	}, nil
}

// GetRunID returns the current runID
func (l *FileLogger) GetRunID() string {
	return l.runID
}

// GetDirectory returns the artifact directory for this run
func (l *FileLogger) GetDirectory() string {
	return l.runDir
}

// GetRawDir returns the directory containing the raw per-suite JSON streams
func (l *FileLogger) GetRawDir() string {
	return l.rawDir
}

// GetFailedDir returns the directory containing logs for failed tests
func (l *FileLogger) GetFailedDir() string {
	return l.failedDir
}

// GetSummaryFile returns the path to the summary file
func (l *FileLogger) GetSummaryFile() string {
	return l.summaryFile
}

// GetReportFile returns the path to the report copy written by WriteReport
func (l *FileLogger) GetReportFile() string {
	return l.reportFile
}

// GetHTMLFile returns the path to the HTML report written by WriteHTML
func (l *FileLogger) GetHTMLFile() string {
	return l.htmlFile
}

// getAsyncWriter gets or creates an AsyncFile for the given path
func (l *FileLogger) getAsyncWriter(path string) (*AsyncFile, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if writer, exists := l.asyncWriters[path]; exists {
		return writer, nil
	}

	writer, err := NewAsyncFile(path)
	if err != nil {
		return nil, err
	}

	l.asyncWriters[path] = writer
	return writer, nil
}

// closeAllWriters closes all async writers
func (l *FileLogger) closeAllWriters() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, writer := range l.asyncWriters {
		_ = writer.Close() // Ignore errors on close
	}
	l.asyncWriters = make(map[string]*AsyncFile)
}

// LogSuiteRaw appends the raw cargo JSON stream captured for a suite to
// raw/suite-<number>.jsonl so a run can be replayed or inspected later.
func (l *FileLogger) LogSuiteRaw(number string, raw []byte) error {
	if number == "" {
		return fmt.Errorf("suite number cannot be empty")
	}

	path := filepath.Join(l.rawDir, "suite-"+safeFilename(number)+".jsonl")
	writer, err := l.getAsyncWriter(path)
	if err != nil {
		return err
	}

	if len(raw) > 0 && raw[len(raw)-1] != '\n' {
		raw = append(raw, '\n')
	}
	return writer.Write(raw)
}

// LogFailure writes a dedicated log file for a failed test under failed/.
// The file carries the test identity and score alongside its captured output.
func (l *FileLogger) LogFailure(scored types.ScoredTest) error {
	if scored.Name == "" {
		return fmt.Errorf("test name cannot be empty")
	}

	var content strings.Builder
	fmt.Fprintf(&content, "TEST:   %s\n", scored.Name)
	fmt.Fprintf(&content, "Number: %s\n", scored.Number)
	fmt.Fprintf(&content, "Score:  %v / %v\n", scored.Score, scored.MaxScore)
	fmt.Fprintf(&content, "Time:   %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&content, "\nOUTPUT:\n~~~~~~~\n")
	content.WriteString(scored.Output)
	if !strings.HasSuffix(scored.Output, "\n") {
		content.WriteString("\n")
	}

	path := filepath.Join(l.failedDir, safeFilename(scored.Name)+".log")
	if err := os.WriteFile(path, []byte(content.String()), 0644); err != nil {
		return fmt.Errorf("failed to write failure log %s: %w", path, err)
	}
	return nil
}

// WriteReport writes a copy of the final report as indented JSON to
// report.json in the run directory.
func (l *FileLogger) WriteReport(report *types.Report) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(l.reportFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", l.reportFile, err)
	}
	return nil
}

// WriteHTML writes the rendered HTML report to report.html in the run
// directory.
func (l *FileLogger) WriteHTML(content string) error {
	if content == "" {
		return fmt.Errorf("content cannot be empty")
	}

	if err := os.WriteFile(l.htmlFile, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write HTML report %s: %w", l.htmlFile, err)
	}
	return nil
}

// LogSummary appends a human-readable summary of the run to summary.log
func (l *FileLogger) LogSummary(summary string) error {
	writer, err := l.getAsyncWriter(l.summaryFile)
	if err != nil {
		return err
	}
	return writer.Write([]byte(summary))
}

// Complete flushes and closes all file writers. The logger must not be used
// after Complete returns.
func (l *FileLogger) Complete() error {
	l.closeAllWriters()
	return nil
}

// safeFilename converts a string to a safe filename by replacing problematic characters
func safeFilename(s string) string {
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.ReplaceAll(s, "*", "_")
	s = strings.ReplaceAll(s, "?", "_")
	s = strings.ReplaceAll(s, "\"", "_")
	s = strings.ReplaceAll(s, "<", "_")
	s = strings.ReplaceAll(s, ">", "_")
	s = strings.ReplaceAll(s, "|", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
