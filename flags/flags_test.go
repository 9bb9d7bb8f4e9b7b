package flags

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// TestOptionalFlagsDontSetRequired asserts that all flags deemed optional set
// the Required field to false.
func TestOptionalFlagsDontSetRequired(t *testing.T) {
	for _, flag := range optionalFlags {
		reqFlag, ok := flag.(cli.RequiredFlag)
		require.True(t, ok)
		require.False(t, reqFlag.IsRequired())
	}
}

// TestUniqueFlags asserts that all flag names are unique, to avoid accidental conflicts between the many flags.
func TestUniqueFlags(t *testing.T) {
	seenCLI := make(map[string]struct{})
	for _, flag := range Flags {
		name := flag.Names()[0]
		if _, ok := seenCLI[name]; ok {
			t.Errorf("duplicate flag %s", name)
			continue
		}
		seenCLI[name] = struct{}{}
	}
}

func TestHasEnvVar(t *testing.T) {
	for _, flag := range Flags {
		flagName := flag.Names()[0]

		t.Run(flagName, func(t *testing.T) {
			envFlagGetter, ok := flag.(interface {
				GetEnvVars() []string
			})
			require.True(t, ok, "must be able to cast the flag to an EnvVar interface")
			envFlags := envFlagGetter.GetEnvVars()
			require.Equal(t, 1, len(envFlags), "flags should have exactly one env var")
		})
	}
}

func TestEnvVarFormat(t *testing.T) {
	for _, flag := range Flags {
		flagName := flag.Names()[0]

		t.Run(flagName, func(t *testing.T) {
			envFlagGetter, ok := flag.(interface {
				GetEnvVars() []string
			})
			require.True(t, ok, "must be able to cast the flag to an EnvVar interface")
			envFlags := envFlagGetter.GetEnvVars()
			require.Equal(t, 1, len(envFlags), "flags should have exactly one env var")

			expectedEnvVar := flagNameToEnvVarName(flagName)
			require.Equal(t, expectedEnvVar, envFlags[0])
		})
	}
}

// flagNameToEnvVarName derives the expected env var independently of the
// helper the flags use, so a mismatched suffix fails the test.
func flagNameToEnvVarName(name string) string {
	name = strings.ToUpper(name)
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, ".", "_")
	return EnvVarPrefix + "_" + name
}

func TestSettingsPath(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{
			name:     "from flag",
			args:     []string{"app", "--settings", "grading.json"},
			expected: "grading.json",
		},
		{
			name:     "from positional argument",
			args:     []string{"app", "settings.json"},
			expected: "settings.json",
		},
		{
			name:     "flag wins over positional",
			args:     []string{"app", "--settings", "grading.json", "other.json"},
			expected: "grading.json",
		},
		{
			name:     "missing",
			args:     []string{"app"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			app := &cli.App{
				Flags: Flags,
				Action: func(ctx *cli.Context) error {
					got = SettingsPath(ctx)
					return nil
				},
			}

			require.NoError(t, app.Run(tt.args))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCheckRequired(t *testing.T) {
	var checkErr error
	app := &cli.App{
		Flags: Flags,
		Action: func(ctx *cli.Context) error {
			checkErr = CheckRequired(ctx)
			return nil
		},
	}

	require.NoError(t, app.Run([]string{"app"}))
	require.Error(t, checkErr)
	assert.Contains(t, checkErr.Error(), "settings is required")

	require.NoError(t, app.Run([]string{"app", "settings.json"}))
	require.NoError(t, checkErr)
}
