package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	autograder "github.com/gradeops/autograder"
	"github.com/gradeops/autograder/exitcodes"
	"github.com/gradeops/autograder/flags"
	"github.com/gradeops/autograder/service"
)

var (
	Version   = "v1.0.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "autograder"
	app.Usage = "Rust assignment grading service"
	app.Description = "autograder runs the configured cargo test suites against a submission and emits a point-weighted grade report"
	app.ArgsUsage = "<path-to-settings.json>"
	app.Flags = flags.Flags
	app.Action = run
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			// Use the exit code from the ExitCoder
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			// Check for typed errors. Failing student tests never reach this
			// path: they are reported in-band and the run exits 0.
			if autograder.IsUsageError(err) {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.UsageErr))
			} else {
				// Config problems and other runtime errors exit with code 2
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Crit("Application failed", "message", err)
	}
}

func run(cliCtx *cli.Context) error {
	logger, err := setupLogger(cliCtx.String(flags.LogLevel.Name))
	if err != nil {
		return autograder.NewRuntimeError(err)
	}

	cfg, err := autograder.NewConfig(cliCtx, logger)
	if err != nil {
		if autograder.IsUsageError(err) {
			return err
		}
		// Wrap in RuntimeError to signal this should exit with code 2
		return autograder.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}

	cfg.Log.Debug("Config", "settings", cfg.Settings, "output", cfg.Output, "listOnly", cfg.ListOnly)

	if cfg.ServiceEnabled {
		svc := service.New(service.Config{
			HealthzAddr: cfg.ServiceHealthzAddr,
			MetricsAddr: cfg.ServiceMetricsAddr,
		})
		svc.Start(cliCtx.Context)
		defer svc.Shutdown()
	}

	ctx, cancel := context.WithCancelCause(cliCtx.Context)
	defer cancel(nil)

	g, err := autograder.New(ctx, cfg, Version, cancel)
	if err != nil {
		// Wrap in RuntimeError to signal this should exit with code 2
		return autograder.NewRuntimeError(fmt.Errorf("failed to create autograder: %w", err))
	}
	defer func() {
		if err := g.Stop(context.Background()); err != nil {
			logger.Error("Failed to stop autograder", "error", err)
		}
	}()

	return g.Start(ctx)
}

// setupLogger installs a JSON handler on stderr as the geth default logger so
// stdout stays reserved for the grade report.
func setupLogger(level string) (log.Logger, error) {
	logLevel, err := parseLogLevel(level)
	if err != nil {
		return nil, err
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	logger := log.NewLogger(handler)
	log.SetDefault(logger)
	return logger, nil
}

func parseLogLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %q", level)
	}
}
