// Package types contains shared types used across the autograder.
package types

import "fmt"

// RunConfig is the declarative description of one grading run: where the code
// under test lives and which suites to execute against it. It is loaded once
// by the registry and read-only afterwards.
type RunConfig struct {
	Target string      `json:"target" yaml:"target"`
	Suites []SuiteSpec `json:"suites" yaml:"suites"`
}

// SuiteSpec describes one independently scored group of tests. Points is the
// total budget for the suite and is divided evenly across however many tests
// the filter discovers at run time.
type SuiteSpec struct {
	Number string  `json:"number" yaml:"number"`
	Name   string  `json:"name" yaml:"name"`
	Points float64 `json:"points" yaml:"points"`
	Filter string  `json:"filter" yaml:"filter"`
}

// String implements the Stringer interface for SuiteSpec
func (s SuiteSpec) String() string {
	return fmt.Sprintf("suite %s (%s)", s.Number, s.Name)
}
