package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
}

// Context is the state of a single test. It implements the TestingT interface expected by
// testify's assert and require packages.
type Context struct {
	env         *environment
	id          TestID
	debugLogger CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	detail      string
	errors      []error
	cleanups    []func()
}

// Run creates a root Context and runs the specified action with it. The action is expected
// to call Context.Run for each test; the root context itself does not produce a result.
func Run(
	filter Filter,
	testLogger TestLogger,
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter:     filter,
		testLogger: testLogger,
	}
	c := &Context{env: env}
	c.run(action)
	return env.results
}

func (c *Context) run(action func(*Context)) {
	defer c.finish()
	defer c.runCleanups()
	action(c)
}

func (c *Context) runCleanups() {
	for len(c.cleanups) > 0 {
		last := len(c.cleanups) - 1
		f := c.cleanups[last]
		c.cleanups = c.cleanups[:last]
		f()
	}
}

func (c *Context) finish() {
	if r := recover(); r != nil && !c.skipped {
		c.failed = true
		if _, ok := r.(*Context); ok {
			if len(c.errors) == 0 {
				c.addError(AssertionFailure, errors.New("test failed with no failure message"))
			}
		} else {
			c.addError(PanicFailure, fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack())))
		}
	}
	if len(c.id.Path) == 0 {
		return
	}
	result := TestResult{TestID: c.id, Detail: c.detail, Errors: c.errors}
	switch {
	case c.skipped:
		result.Outcome = Skipped
		result.Detail = c.skipReason
	case c.failed:
		result.Outcome = Failed
	default:
		result.Outcome = Passed
	}
	c.env.results.Tests = append(c.env.results.Tests, result)
	if result.Outcome == Failed {
		c.env.results.Failures = append(c.env.results.Failures, result)
	}
}

func (c *Context) addError(kind FailureKind, err error) {
	c.failed = true
	te := &TestError{Kind: kind, Err: err}
	c.errors = append(c.errors, te)
	c.env.testLogger.TestError(c.id, te)
}

func (c *Context) ID() TestID {
	return c.id
}

// Run runs a test. It never panics: whatever happens inside action is recorded in the
// test's result.
func (c *Context) Run(name string, action func(*Context)) {
	id := TestID{Path: append(append([]string(nil), c.id.Path...), name)}

	c.env.testLogger.TestStarted(id)
	if c.env.filter != nil && !c.env.filter(id) {
		const reason = "excluded by filter parameters"
		c.env.results.Tests = append(c.env.results.Tests, TestResult{TestID: id, Outcome: Skipped, Detail: reason})
		c.env.testLogger.TestSkipped(id, reason)
		return
	}
	c1 := &Context{
		id:  id,
		env: c.env,
	}
	c1.run(action)
	if c1.skipped {
		c.env.testLogger.TestSkipped(id, c1.skipReason)
	} else {
		results := c.env.results.Tests
		c.env.testLogger.TestFinished(results[len(results)-1], c1.debugLogger.Output())
	}
}

// Errorf records an assertion failure without stopping the test.
func (c *Context) Errorf(format string, args ...interface{}) {
	c.addError(AssertionFailure, reformatError(fmt.Errorf(format, args...)))
}

// Abort records a failure of the given kind and immediately exits the test.
func (c *Context) Abort(kind FailureKind, err error) {
	c.addError(kind, err)
	c.FailNow()
}

func (c *Context) FailNow() {
	panic(c)
}

func (c *Context) Failed() bool {
	return c.failed
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

// Detail sets the short human-readable message reported alongside the test's verdict.
// Later calls replace earlier ones.
func (c *Context) Detail(format string, args ...interface{}) {
	c.detail = fmt.Sprintf(format, args...)
}

// Defer schedules a function to run when the test exits, whether it passed, failed, or
// panicked. Deferred functions run in last-in-first-out order.
func (c *Context) Defer(f func()) {
	c.cleanups = append(c.cleanups, f)
}

func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}

// reformatError drops the "Error Trace" section that testify puts at the start of its
// messages; it points into the harness's own source, which is noise in a test report.
func reformatError(err error) error {
	lines := strings.Split(err.Error(), "\n")
	kept := make([]string, 0, len(lines))
	inTrace := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if label, ok := testifyLabel(line); ok {
			inTrace = label == "Error Trace"
			if inTrace {
				continue
			}
		} else if inTrace {
			continue
		}
		kept = append(kept, trimmed)
	}
	if len(kept) == 0 {
		return err
	}
	return errors.New(strings.Join(kept, "\n"))
}

// testifyLabel recognizes lines like "\tError Trace:\t..." in testify's output.
func testifyLabel(line string) (string, bool) {
	if !strings.HasPrefix(line, "\t") {
		return "", false
	}
	rest := strings.TrimPrefix(line, "\t")
	colon := strings.Index(rest, ":")
	if colon <= 0 {
		return "", false
	}
	label := rest[:colon]
	if strings.HasPrefix(label, " ") || strings.Contains(label, "\t") {
		return "", false
	}
	return label, true
}
