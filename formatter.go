package autograder

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"

	"github.com/gradeops/autograder/reporting"
	"github.com/gradeops/autograder/runner"
)

// ResultFormatter is responsible for formatting and displaying grading results.
type ResultFormatter interface {
	FormatResults(result *runner.RunnerResult) error
}

// ConsoleResultFormatter implements the ResultFormatter interface. It renders
// the per-suite table on stderr so the wire report on stdout stays clean.
type ConsoleResultFormatter struct {
	logger  log.Logger
	details bool
}

// NewConsoleResultFormatter creates a new ConsoleResultFormatter.
func NewConsoleResultFormatter(logger log.Logger, details bool) *ConsoleResultFormatter {
	return &ConsoleResultFormatter{
		logger:  logger,
		details: details,
	}
}

// FormatResults formats and displays the grading results.
func (f *ConsoleResultFormatter) FormatResults(result *runner.RunnerResult) error {
	f.logger.Info("Printing results...")

	builder := reporting.NewReportBuilder()
	data := builder.BuildFromSuiteResults(result.Suites, result.RunID, result.Duration)

	title := fmt.Sprintf("Grading Results (%s)", result.RunID)
	generator := reporting.NewReportGenerator(
		builder,
		reporting.NewTableFormatter(title, f.details),
		reporting.NewStderrWriter(),
	)
	return generator.GenerateReport(data)
}
