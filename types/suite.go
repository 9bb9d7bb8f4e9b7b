package types

import "time"

// ResultStats aggregates pass/fail counts and points for a set of scored
// tests.
type ResultStats struct {
	Total          int
	Passed         int
	Failed         int
	PointsEarned   float64
	PointsPossible float64
}

// Record folds one scored outcome into the stats.
func (s *ResultStats) Record(outcome TestOutcome, scored ScoredTest) {
	s.Total++
	if outcome.Passed() {
		s.Passed++
	} else {
		s.Failed++
	}
	s.PointsEarned += scored.Score
	s.PointsPossible += scored.MaxScore
}

// Merge folds another stats block into this one.
func (s *ResultStats) Merge(other ResultStats) {
	s.Total += other.Total
	s.Passed += other.Passed
	s.Failed += other.Failed
	s.PointsEarned += other.PointsEarned
	s.PointsPossible += other.PointsPossible
}

// PassRate returns the fraction of tests that passed, 0 when no tests ran.
func (s ResultStats) PassRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Passed) / float64(s.Total)
}

// SuiteResult captures everything produced for one suite during a run.
// Err is non-nil when the suite could not be executed at all, in which case
// Scored is empty and the suite's points are forfeited.
type SuiteResult struct {
	Spec     SuiteSpec
	Scored   []ScoredTest
	Outcomes []TestOutcome // index-aligned with Scored
	Stats    ResultStats
	Duration time.Duration
	Err      error
}

// Status derives the suite-level status: fail when the invocation failed or
// any test failed, pass otherwise (including the zero-test forfeit case).
func (r *SuiteResult) Status() TestStatus {
	if r.Err != nil || r.Stats.Failed > 0 {
		return TestStatusFail
	}
	return TestStatusPass
}
