package runner

import (
	"fmt"
	"math"

	"github.com/gradeops/autograder/types"
)

// ScoreBatch distributes a suite's point budget evenly across the outcomes
// discovered for it and produces the report rows, in discovery order. The
// i-th test is numbered "<suiteNumber>.<i>" (1-based) and named
// "<suiteName> - <testName>".
//
// An empty batch produces nothing: the suite's points are forfeited. Score
// and max score are rounded independently, so the suite total may drift from
// the nominal budget by up to half a cent per test.
func ScoreBatch(spec types.SuiteSpec, outcomes []types.TestOutcome) []types.ScoredTest {
	if len(outcomes) == 0 {
		return nil
	}

	perTest := spec.Points / float64(len(outcomes))

	scored := make([]types.ScoredTest, 0, len(outcomes))
	for i, outcome := range outcomes {
		score := 0.0
		if outcome.Passed() {
			score = perTest
		}

		scored = append(scored, types.ScoredTest{
			Number:   fmt.Sprintf("%s.%d", spec.Number, i+1),
			Name:     spec.Name + " - " + outcome.Name,
			Score:    Round2(score),
			MaxScore: Round2(perTest),
			Output:   outcome.Diagnostic,
		})
	}

	return scored
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
