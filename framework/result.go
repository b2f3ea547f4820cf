package framework

import (
	"fmt"
	"strings"
)

// Outcome is the final state of a single test.
type Outcome int

const (
	Passed Outcome = iota
	Failed
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Passed:
		return "PASS"
	case Failed:
		return "FAIL"
	case Skipped:
		return "SKIP"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Results is the outcome of a whole run. Tests is in execution order.
type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID  TestID
	Outcome Outcome
	Detail  string
	Errors  []error
}

// Cause returns the kind of the first failure recorded for the test. It is only meaningful
// if the test failed.
func (r TestResult) Cause() FailureKind {
	if len(r.Errors) == 0 {
		return AssertionFailure
	}
	return KindOf(r.Errors[0])
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Executed returns the number of tests that were not skipped.
func (r Results) Executed() int {
	n := 0
	for _, t := range r.Tests {
		if t.Outcome != Skipped {
			n++
		}
	}
	return n
}

// Passed returns the number of tests that ran and passed.
func (r Results) Passed() int {
	return r.Executed() - len(r.Failures)
}

// Verdicts returns each test's pass/fail verdict keyed by name. Skipped tests are omitted.
func (r Results) Verdicts() map[string]bool {
	ret := make(map[string]bool, len(r.Tests))
	for _, t := range r.Tests {
		if t.Outcome != Skipped {
			ret[t.TestID.String()] = t.Outcome == Passed
		}
	}
	return ret
}

// FailedNames returns the names of the failed tests, in execution order.
func (r Results) FailedNames() []string {
	ret := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		ret = append(ret, f.TestID.String())
	}
	return ret
}

type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}
