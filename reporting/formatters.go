package reporting

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/gradeops/autograder/ui"
)

// summaryBoxWidth is the rendered width of the summary header box
const summaryBoxWidth = 60

// formatDuration formats a duration for display
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Truncate(time.Millisecond).String()
}

// formatPoints renders a point value without trailing zeros
func formatPoints(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatScore renders "earned/possible"
func formatScore(earned, possible float64) string {
	return formatPoints(earned) + "/" + formatPoints(possible)
}

// ReportFormatter defines the interface for different report output formats
type ReportFormatter interface {
	Format(data *ReportData) (string, error)
}

// ReportWriter defines the interface for writing reports to various destinations
type ReportWriter interface {
	Write(content string) error
}

// FileWriter writes reports to a file
type FileWriter struct {
	path string
}

// NewFileWriter creates a new file writer
func NewFileWriter(path string) *FileWriter {
	return &FileWriter{path: path}
}

// Write writes the content to the file
func (fw *FileWriter) Write(content string) error {
	return os.WriteFile(fw.path, []byte(content), 0644)
}

// StdoutWriter writes reports to stdout
type StdoutWriter struct{}

// NewStdoutWriter creates a new stdout writer
func NewStdoutWriter() *StdoutWriter {
	return &StdoutWriter{}
}

// Write writes the content to stdout
func (sw *StdoutWriter) Write(content string) error {
	_, err := fmt.Print(content)
	return err
}

// StderrWriter writes reports to stderr, keeping stdout free for the wire
// report.
type StderrWriter struct{}

// NewStderrWriter creates a new stderr writer
func NewStderrWriter() *StderrWriter {
	return &StderrWriter{}
}

// Write writes the content to stderr
func (sw *StderrWriter) Write(content string) error {
	_, err := fmt.Fprint(os.Stderr, content)
	return err
}

// TableFormatter formats reports as ASCII tables
type TableFormatter struct {
	title               string
	showIndividualTests bool
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(title string, showIndividualTests bool) *TableFormatter {
	return &TableFormatter{
		title:               title,
		showIndividualTests: showIndividualTests,
	}
}

// Format formats the report data as an ASCII table
func (tf *TableFormatter) Format(data *ReportData) (string, error) {
	var buf bytes.Buffer

	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.SetTitle(tf.title)

	t.AppendHeader(table.Row{
		"Type", "ID", "Duration", "Tests", "Passed", "Failed", "Score", "Status",
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Type", AutoMerge: true},
		{Name: "ID", WidthMax: 120, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Score", Align: text.AlignRight},
	})

	for _, suite := range data.Suites {
		t.AppendRow(table.Row{
			"Suite",
			fmt.Sprintf("%s %s", suite.Spec.Number, suite.Spec.Name),
			formatDuration(suite.Duration),
			suite.Stats.Total,
			suite.Stats.Passed,
			suite.Stats.Failed,
			formatScore(suite.Stats.PointsEarned, suite.Stats.PointsPossible),
			suite.Status,
		})

		if tf.showIndividualTests {
			tf.addTestRows(t, suite.Tests)
		}

		t.AppendSeparator()
	}

	// Table style reflects the overall result
	if data.HasFailures || data.HasErrors {
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}

	overallStatus := SuiteStatusPass
	if data.HasFailures || data.HasErrors {
		overallStatus = SuiteStatusFail
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		"",
		formatDuration(data.Duration),
		data.Stats.Total,
		data.Stats.Passed,
		data.Stats.Failed,
		data.ScoreText,
		overallStatus,
	})

	t.Render()
	return buf.String(), nil
}

// addTestRows adds one row per scored test under its suite row
func (tf *TableFormatter) addTestRows(t table.Writer, tests []TestRow) {
	for i, test := range tests {
		status := SuiteStatusFail
		if test.Passed {
			status = SuiteStatusPass
		}

		t.AppendRow(table.Row{
			"Test",
			ui.BuildTreePrefix(1, i == len(tests)-1, nil) + test.Name,
			"-",
			1,
			tf.boolToInt(test.Passed),
			tf.boolToInt(!test.Passed),
			formatScore(test.Score, test.MaxScore),
			status,
		})
	}
}

// boolToInt converts a boolean to int for table display
func (tf *TableFormatter) boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// TextSummaryFormatter formats reports as plain text summaries
type TextSummaryFormatter struct {
	includeDetails bool
}

// NewTextSummaryFormatter creates a new text summary formatter
func NewTextSummaryFormatter(includeDetails bool) *TextSummaryFormatter {
	return &TextSummaryFormatter{
		includeDetails: includeDetails,
	}
}

// Format formats the report data as a text summary
func (tsf *TextSummaryFormatter) Format(data *ReportData) (string, error) {
	var summary strings.Builder

	summary.WriteString(ui.BuildBoxHeader("GRADING SUMMARY", summaryBoxWidth))
	summary.WriteString(ui.BuildBoxLine(fmt.Sprintf("Run ID: %s", data.RunID), summaryBoxWidth))
	summary.WriteString(ui.BuildBoxLine(fmt.Sprintf("Time: %s", data.Timestamp.Format(time.RFC3339)), summaryBoxWidth))
	summary.WriteString(ui.BuildBoxLine(fmt.Sprintf("Duration: %s", formatDuration(data.Duration)), summaryBoxWidth))
	summary.WriteString(ui.BuildBoxFooter(summaryBoxWidth))
	summary.WriteString("\n")

	fmt.Fprintf(&summary, "Results:\n")
	fmt.Fprintf(&summary, "  Total:  %d\n", data.Stats.Total)
	fmt.Fprintf(&summary, "  Passed: %d\n", data.Stats.Passed)
	fmt.Fprintf(&summary, "  Failed: %d\n", data.Stats.Failed)
	fmt.Fprintf(&summary, "  Score:  %s (%s of tests passed)\n\n", data.ScoreText, data.PassRateText)

	if len(data.ErrorMessages) > 0 {
		fmt.Fprintf(&summary, "INVOCATION ERRORS:\n")
		fmt.Fprintf(&summary, "==================\n")
		for _, msg := range data.ErrorMessages {
			fmt.Fprintf(&summary, "  ! %s\n", msg)
		}
		fmt.Fprintf(&summary, "\n")
	}

	if len(data.FailedTestNames) > 0 {
		fmt.Fprintf(&summary, "Failed tests:\n")
		for _, test := range data.FailedTestNames {
			fmt.Fprintf(&summary, "  - %s\n", test)
		}
		fmt.Fprintf(&summary, "\n")
	}

	if tsf.includeDetails {
		fmt.Fprintf(&summary, "DETAILED RESULTS:\n")
		fmt.Fprintf(&summary, "=================\n")

		for _, suite := range data.Suites {
			fmt.Fprintf(&summary, "Suite %s: %s (%s) [%s]\n",
				suite.Spec.Number, suite.Spec.Name, formatDuration(suite.Duration), suite.Status)

			for _, test := range suite.Tests {
				status := SuiteStatusFail
				if test.Passed {
					status = SuiteStatusPass
				}
				fmt.Fprintf(&summary, "  - %s %s (%s) [%s]\n",
					test.Number, test.Name, formatScore(test.Score, test.MaxScore), status)
			}

			if suite.Err != nil {
				fmt.Fprintf(&summary, "  ! %v\n", suite.Err)
			}

			fmt.Fprintf(&summary, "\n")
		}
	}

	return summary.String(), nil
}

// ReportGenerator combines builder, formatter, and writer for easy report generation
type ReportGenerator struct {
	builder   *ReportBuilder
	formatter ReportFormatter
	writer    ReportWriter
}

// NewReportGenerator creates a new report generator
func NewReportGenerator(builder *ReportBuilder, formatter ReportFormatter, writer ReportWriter) *ReportGenerator {
	return &ReportGenerator{
		builder:   builder,
		formatter: formatter,
		writer:    writer,
	}
}

// GenerateReport formats and writes pre-built report data
func (rg *ReportGenerator) GenerateReport(data *ReportData) error {
	content, err := rg.formatter.Format(data)
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}

	if err := rg.writer.Write(content); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}
