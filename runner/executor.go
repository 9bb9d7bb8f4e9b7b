package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/gradeops/autograder/types"
)

var _ SuiteExecutor = (*suiteExecutor)(nil)

// SuiteInvocationError indicates the external test tool could not be run for
// a suite: the process failed to start, or it exited abnormally without
// producing any usable output. The suite's tests are not scored; the message
// surfaces in the report's top-level output field.
type SuiteInvocationError struct {
	Suite string
	Err   error
}

func (e *SuiteInvocationError) Error() string {
	return fmt.Sprintf("suite %s invocation failed: %v", e.Suite, e.Err)
}

func (e *SuiteInvocationError) Unwrap() error {
	return e.Err
}

// SuiteExecution captures one suite invocation: the raw captured output and
// the outcome events parsed from it.
type SuiteExecution struct {
	Raw      []byte
	Events   []OutcomeEvent
	Duration time.Duration
}

// SuiteExecutor handles suite invocation and process management. Suites are
// run strictly one at a time; concurrent invocations would interleave output
// and make scoring nondeterministic.
type SuiteExecutor interface {
	// Execute runs the suite's filtered tests once and returns the captured
	// event stream. A returned error is always a *SuiteInvocationError.
	Execute(ctx context.Context, target string, spec types.SuiteSpec) (*SuiteExecution, error)

	// List returns the names of the tests the suite's filter selects,
	// without running them.
	List(ctx context.Context, target string, spec types.SuiteSpec) ([]string, error)
}

// suiteExecutor implements SuiteExecutor
type suiteExecutor struct {
	cargoBinary string
	timeout     time.Duration
	envProvider func() []string
	cmdBuilder  func(ctx context.Context, dir string, name string, arg ...string) (*exec.Cmd, func())
	parser      OutputParser
	log         log.Logger
}

// NewSuiteExecutor creates a new suite executor
func NewSuiteExecutor(cargoBinary string, timeout time.Duration, envProvider func() []string,
	cmdBuilder func(ctx context.Context, dir string, name string, arg ...string) (*exec.Cmd, func()),
	parser OutputParser, logger log.Logger) (SuiteExecutor, error) {

	if cargoBinary == "" {
		cargoBinary = DefaultCargoBinary
	}
	if envProvider == nil {
		envProvider = os.Environ
	}
	if cmdBuilder == nil {
		cmdBuilder = DefaultCmdBuilder
	}
	if parser == nil {
		return nil, fmt.Errorf("parser cannot be nil")
	}
	if logger == nil {
		logger = log.Root()
	}

	return &suiteExecutor{
		cargoBinary: cargoBinary,
		timeout:     timeout,
		envProvider: envProvider,
		cmdBuilder:  cmdBuilder,
		parser:      parser,
		log:         logger,
	}, nil
}

// DefaultCmdBuilder builds a real command running in the target directory
func DefaultCmdBuilder(ctx context.Context, dir string, name string, arg ...string) (*exec.Cmd, func()) {
	cmd := exec.CommandContext(ctx, name, arg...)
	cmd.Dir = dir
	return cmd, func() {}
}

// Execute runs one suite synchronously and classifies how the invocation
// ended. Tests failing is a normal outcome; only a spawn failure, a timeout,
// or an abnormal exit with zero parseable events is an invocation error.
func (e *suiteExecutor) Execute(ctx context.Context, target string, spec types.SuiteSpec) (*SuiteExecution, error) {
	if ctx == nil {
		return nil, &SuiteInvocationError{Suite: spec.Number, Err: fmt.Errorf("context cannot be nil")}
	}
	if target == "" {
		return nil, &SuiteInvocationError{Suite: spec.Number, Err: fmt.Errorf("target cannot be empty")}
	}

	e.log.Info("Running suite", "suite", spec.Number, "name", spec.Name, "filter", spec.Filter)

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd, cleanup := e.cmdBuilder(ctx, target, e.cargoBinary, e.buildTestArgs(spec)...)
	defer cleanup()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = append(e.envProvider(), SerialTasksEnv, NoColorEnv)

	startTime := time.Now()
	runErr := cmd.Run()
	duration := time.Since(startTime)

	execution := &SuiteExecution{
		Raw:      stdout.Bytes(),
		Duration: duration,
	}
	execution.Events = e.parser.Parse(execution.Raw)

	if runErr != nil {
		if e.timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return execution, &SuiteInvocationError{
				Suite: spec.Number,
				Err:   fmt.Errorf("timed out after %v", e.timeout),
			}
		}

		exitErr := &exec.ExitError{}
		if !errors.As(runErr, &exitErr) {
			// Process never started (binary missing, bad target dir, ...)
			return execution, &SuiteInvocationError{Suite: spec.Number, Err: runErr}
		}

		if len(execution.Events) == 0 {
			return execution, &SuiteInvocationError{
				Suite: spec.Number,
				Err:   fmt.Errorf("exit code %d with no test output%s", exitErr.ExitCode(), stderrSnippet(stderr.Bytes())),
			}
		}

		// Non-zero exit with events present means tests failed, which the
		// scorer handles in-band.
		e.log.Debug("Suite exited non-zero with test failures",
			"suite", spec.Number, "exitCode", exitErr.ExitCode(), "events", len(execution.Events))
	}

	return execution, nil
}

// List runs the harness in list mode and returns the selected test names.
// Output lines have the form "tests::name: test" with a trailing summary.
func (e *suiteExecutor) List(ctx context.Context, target string, spec types.SuiteSpec) ([]string, error) {
	if ctx == nil {
		return nil, &SuiteInvocationError{Suite: spec.Number, Err: fmt.Errorf("context cannot be nil")}
	}
	if target == "" {
		return nil, &SuiteInvocationError{Suite: spec.Number, Err: fmt.Errorf("target cannot be empty")}
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd, cleanup := e.cmdBuilder(ctx, target, e.cargoBinary, e.buildListArgs(spec)...)
	defer cleanup()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = append(e.envProvider(), SerialTasksEnv, NoColorEnv)

	if err := cmd.Run(); err != nil {
		return nil, &SuiteInvocationError{
			Suite: spec.Number,
			Err:   fmt.Errorf("list failed: %w%s", err, stderrSnippet(stderr.Bytes())),
		}
	}

	return parseTestList(stdout.Bytes()), nil
}

func (e *suiteExecutor) buildTestArgs(spec types.SuiteSpec) []string {
	args := []string{TestCommand}
	if spec.Filter != "" {
		args = append(args, spec.Filter)
	}
	return append(args, ArgSeparator, UnstableFlag, UnstableOptionsValue, FormatJSONFlag, TestThreadsFlag)
}

func (e *suiteExecutor) buildListArgs(spec types.SuiteSpec) []string {
	args := []string{TestCommand}
	if spec.Filter != "" {
		args = append(args, spec.Filter)
	}
	return append(args, ArgSeparator, ListFlag, FormatTerseFlag)
}

// parseTestList extracts test names from "--list" output
func parseTestList(output []byte) []string {
	var names []string
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		name, ok := strings.CutSuffix(line, ": test")
		if !ok || name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}

// stderrSnippet renders a bounded stderr excerpt for error messages
func stderrSnippet(stderr []byte) string {
	text := strings.TrimSpace(string(stderr))
	if text == "" {
		return ""
	}
	const maxLen = 512
	if len(text) > maxLen {
		text = text[:maxLen] + "..."
	}
	return fmt.Sprintf(": %s", text)
}
