package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/autolearn-jp/api-contract-tests/framework"

	"github.com/fatih/color"
	"github.com/sebdah/goldie/v2"
)

func TestConsoleTestLogger(t *testing.T) {
	saved := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = saved })

	var buf bytes.Buffer
	logger := &ConsoleTestLogger{Out: &buf}
	id := func(name string) framework.TestID { return framework.TestID{Path: []string{name}} }

	logger.TestFinished(framework.TestResult{TestID: id("root reachability"), Outcome: framework.Passed, Detail: "status 200"}, nil)
	logger.TestFinished(framework.TestResult{
		TestID:  id("logout"),
		Outcome: framework.Failed,
		Detail:  "logout status 200, check status 200",
		Errors: []error{&framework.TestError{
			Kind: framework.AssertionFailure,
			Err:  errors.New("Error:      \tNot equal:\nexpected: 401\nactual  : 200"),
		}},
	}, framework.CapturedOutput{{Message: "not shown"}})
	logger.TestFinished(framework.TestResult{
		TestID:  id("words listing"),
		Outcome: framework.Failed,
		Errors:  []error{&framework.TestError{Kind: framework.TransportFailure, Err: errors.New("connection refused")}},
	}, nil)
	logger.TestSkipped(id("CORS preflight"), "excluded by filter parameters")

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "console_test_logger", buf.Bytes())
}
