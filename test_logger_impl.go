package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/autolearn-jp/api-contract-tests/framework"

	"github.com/fatih/color"
)

var (
	passColor = color.New(color.FgGreen)
	failColor = color.New(color.FgRed, color.Bold)
	skipColor = color.New(color.FgYellow)
)

// ConsoleTestLogger prints one line per test as it finishes, followed by its errors and,
// if enabled, its captured debug output.
type ConsoleTestLogger struct {
	Out                  io.Writer
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c *ConsoleTestLogger) TestStarted(id framework.TestID) {}

// TestError does nothing; errors are printed under the test's result line instead.
func (c *ConsoleTestLogger) TestError(id framework.TestID, err error) {}

func (c *ConsoleTestLogger) TestFinished(result framework.TestResult, debugOutput framework.CapturedOutput) {
	failed := result.Outcome == framework.Failed
	marker := passColor.Sprint(framework.Passed)
	if failed {
		marker = failColor.Sprint(framework.Failed)
	}
	if result.Detail == "" {
		fmt.Fprintf(c.Out, "%s %s\n", marker, result.TestID)
	} else {
		fmt.Fprintf(c.Out, "%s %s: %s\n", marker, result.TestID, result.Detail)
	}
	for _, err := range result.Errors {
		prefix := fmt.Sprintf("[%s] ", framework.KindOf(err))
		for _, line := range strings.Split(err.Error(), "\n") {
			fmt.Fprintf(c.Out, "     %s%s\n", prefix, line)
			prefix = ""
		}
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(c.Out, "     DEBUG ")
	}
}

func (c *ConsoleTestLogger) TestSkipped(id framework.TestID, reason string) {
	if reason == "" {
		fmt.Fprintf(c.Out, "%s %s\n", skipColor.Sprint(framework.Skipped), id)
	} else {
		fmt.Fprintf(c.Out, "%s %s (%s)\n", skipColor.Sprint(framework.Skipped), id, reason)
	}
}
