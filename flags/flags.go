package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "AUTOGRADER"

// prefixEnvVar prefixes the environment variable name with the application
// prefix.
func prefixEnvVar(suffix string) []string {
	return []string{EnvVarPrefix + "_" + suffix}
}

var (
	Settings = &cli.StringFlag{
		Name:    "settings",
		Value:   "",
		EnvVars: prefixEnvVar("SETTINGS"),
		Usage:   "Path to the grading settings file (eg. 'settings.json'); may also be given as the first argument",
	}
	Output = &cli.StringFlag{
		Name:    "output",
		Value:   "",
		EnvVars: prefixEnvVar("OUTPUT"),
		Usage:   "Write the report to this file instead of stdout",
	}
	List = &cli.BoolFlag{
		Name:    "list",
		Value:   false,
		EnvVars: prefixEnvVar("LIST"),
		Usage:   "List the tests each suite's filter selects without grading them",
	}
	Details = &cli.BoolFlag{
		Name:    "details",
		Value:   true,
		EnvVars: prefixEnvVar("DETAILS"),
		Usage:   "Include individual test rows in console and summary output",
	}
	CargoBinary = &cli.StringFlag{
		Name:    "cargo.bin",
		Value:   "cargo",
		EnvVars: prefixEnvVar("CARGO_BIN"),
		Usage:   "Path to the cargo binary to use for running suites",
	}
	SuiteTimeout = &cli.DurationFlag{
		Name:    "suite.timeout",
		Value:   0,
		EnvVars: prefixEnvVar("SUITE_TIMEOUT"),
		Usage:   "Timeout per suite invocation (e.g. '5m'). Set to 0 or omit to disable.",
	}
	ArtifactsDir = &cli.StringFlag{
		Name:    "artifacts.dir",
		Value:   "",
		EnvVars: prefixEnvVar("ARTIFACTS_DIR"),
		Usage:   "Directory for per-run artifacts (raw streams, failure logs, report copy). Empty disables artifacts.",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log.level",
		Value:   "info",
		EnvVars: prefixEnvVar("LOG_LEVEL"),
		Usage:   "Log level: debug, info, warn, error",
	}
	ServiceEnabled = &cli.BoolFlag{
		Name:    "service.enabled",
		Value:   false,
		EnvVars: prefixEnvVar("SERVICE_ENABLED"),
		Usage:   "Serve healthz and metrics endpoints while grading",
	}
	ServiceHealthzAddr = &cli.StringFlag{
		Name:    "service.healthz.addr",
		Value:   "",
		EnvVars: prefixEnvVar("SERVICE_HEALTHZ_ADDR"),
		Usage:   "Listen address for the healthz server (default 0.0.0.0:8080)",
	}
	ServiceMetricsAddr = &cli.StringFlag{
		Name:    "service.metrics.addr",
		Value:   "",
		EnvVars: prefixEnvVar("SERVICE_METRICS_ADDR"),
		Usage:   "Listen address for the metrics server (default 0.0.0.0:7300)",
	}
)

var optionalFlags = []cli.Flag{
	Settings,
	Output,
	List,
	Details,
	CargoBinary,
	SuiteTimeout,
	ArtifactsDir,
	LogLevel,
	ServiceEnabled,
	ServiceHealthzAddr,
	ServiceMetricsAddr,
}

var Flags []cli.Flag

func init() {
	Flags = append(Flags, optionalFlags...)
}

// SettingsPath resolves the settings file location from the flag or the
// first positional argument, flag winning when both are given.
func SettingsPath(ctx *cli.Context) string {
	if path := ctx.String(Settings.Name); path != "" {
		return path
	}
	return ctx.Args().First()
}

// CheckRequired validates that a settings path was provided one way or the
// other.
func CheckRequired(ctx *cli.Context) error {
	if SettingsPath(ctx) == "" {
		return fmt.Errorf("flag %s is required", Settings.Name)
	}
	return nil
}
