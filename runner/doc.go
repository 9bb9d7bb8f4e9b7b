// Package runner provides components for grading Rust test suites in a structured, repeatable manner.
//
// The main components are:
//   - SuiteExecutor: Invokes cargo test for a single suite and captures its JSON event stream
//   - OutputParser: Processes line-delimited libtest JSON output into structured events
//   - OutcomeClassifier: Filters and normalizes events into pass/fail test outcomes
//   - ScoreBatch: Distributes a suite's point budget evenly across its observed tests
//   - GradingRunner: Orchestrates the full run across all configured suites and
//     assembles the final report
//
// These components work together to provide a clean, testable pipeline for turning
// raw cargo output into a point-weighted grade report with proper error handling,
// timeout management, and artifact logging.
package runner
