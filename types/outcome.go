package types

// TestStatus represents the possible states of a completed test
type TestStatus string

const (
	TestStatusPass TestStatus = "pass"
	TestStatusFail TestStatus = "fail"
)

// TestOutcome is one completed test extracted from the runner's event
// stream. Diagnostic carries the decoded failure output and is empty for
// passing tests.
type TestOutcome struct {
	Name       string
	Status     TestStatus
	Diagnostic string
}

// Passed reports whether the test completed successfully.
func (o TestOutcome) Passed() bool {
	return o.Status == TestStatusPass
}
