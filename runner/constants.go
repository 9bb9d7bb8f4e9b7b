package runner

import "time"

// Suite execution constants
const (
	// DefaultSuiteTimeout disables the per-suite timeout. The grader
	// historically blocks until the test tool exits; operators opt in to a
	// timeout via configuration.
	DefaultSuiteTimeout = 0 * time.Second

	// Default cargo binary name
	DefaultCargoBinary = "cargo"

	// Cargo command arguments. The flags after the argument separator are
	// consumed by the test harness itself, not cargo.
	TestCommand          = "test"
	ArgSeparator         = "--"
	UnstableFlag         = "-Z"
	UnstableOptionsValue = "unstable-options"
	FormatJSONFlag       = "--format=json"
	FormatTerseFlag      = "--format=terse"
	ListFlag             = "--list"
	TestThreadsFlag      = "--test-threads=1"

	// Environment applied to every suite invocation. Tests must run serially
	// so that completion events arrive in a stable order; colored output
	// would corrupt the JSON event stream.
	SerialTasksEnv = "RUN_TEST_TASKS=1"
	NoColorEnv     = "CARGO_TERM_COLOR=never"

	// Outcome event fields recognized in the runner's JSON output
	EventTypeTest  = "test"
	EventTypeSuite = "suite"
	EventStarted   = "started"
	EventOK        = "ok"
	EventFailed    = "failed"

	// maxEventLineBytes bounds a single output line; panic backtraces can
	// run far past bufio's default token size
	maxEventLineBytes = 4 * 1024 * 1024
)
