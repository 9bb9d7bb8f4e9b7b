// Package exitcodes defines the standard exit codes used by the autograder.
package exitcodes

// Exit code constants used by the autograder
// These constants define the exit codes that the application uses to indicate
// various states when it exits:
//
// * Success (0): Used when a grading run completed and a report was emitted,
//   regardless of how many individual tests failed (in-band reporting)
// * UsageErr (1): Used when the command line is invalid, e.g. no settings path
// * RuntimeErr (2): Used for configuration and runtime errors such as an
//   unreadable settings file, panics or timeouts
const (
	Success    = 0 // Report emitted
	UsageErr   = 1 // Invalid invocation
	RuntimeErr = 2 // Configuration or runtime errors
)
