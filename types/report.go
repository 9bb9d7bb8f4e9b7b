package types

// ScoredTest is one row of the grading report, in the wire shape the grading
// platform ingests. Score and MaxScore are rounded to two decimal places.
type ScoredTest struct {
	Number   string  `json:"number"`
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	MaxScore float64 `json:"max_score"`
	Output   string  `json:"output"`
}

// Report is the top-level grading report spanning all suites. Output carries
// the most recent fatal suite-invocation message and is empty otherwise.
type Report struct {
	Tests  []ScoredTest `json:"tests"`
	Output string       `json:"output"`
}

// NewReport returns an empty report. Tests is allocated so the report always
// serializes with a "tests" array, never null.
func NewReport() *Report {
	return &Report{Tests: []ScoredTest{}}
}

// Append adds a suite's scored tests to the report in order.
func (r *Report) Append(tests []ScoredTest) {
	r.Tests = append(r.Tests, tests...)
}

// SetFatal records a suite-invocation failure message. Only the most recent
// message is retained when multiple suites fail.
func (r *Report) SetFatal(msg string) {
	r.Output = msg
}
