package autograder

import (
	"context"

	"github.com/ethereum/go-ethereum/log"

	"github.com/gradeops/autograder/runner"
)

// GradeExecutor is responsible for running the grading suites.
type GradeExecutor interface {
	RunGrading(ctx context.Context) (*runner.RunnerResult, error)
}

// DefaultGradeExecutor implements the GradeExecutor interface.
type DefaultGradeExecutor struct {
	runner runner.GradingRunner
	logger log.Logger
}

// NewDefaultGradeExecutor creates a new DefaultGradeExecutor.
func NewDefaultGradeExecutor(runner runner.GradingRunner, logger log.Logger) *DefaultGradeExecutor {
	return &DefaultGradeExecutor{
		runner: runner,
		logger: logger,
	}
}

// RunGrading runs all configured suites and returns the graded results.
func (e *DefaultGradeExecutor) RunGrading(ctx context.Context) (*runner.RunnerResult, error) {
	e.logger.Info("Grading all suites...")
	result, err := e.runner.RunAllSuites(ctx)
	if err != nil {
		e.logger.Error("Error grading suites", "error", err)
		return nil, err
	}
	e.logger.Info("Grading run completed",
		"run_id", result.RunID,
		"passed", result.Stats.Passed,
		"failed", result.Stats.Failed,
		"points", result.Stats.PointsEarned)
	return result, nil
}
