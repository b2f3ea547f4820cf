package framework

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	summaryOKColor     = color.New(color.FgGreen, color.Bold)
	summaryFailedColor = color.New(color.FgRed, color.Bold)
)

// PrintResults writes the aggregate summary of a run: the passed/total count and, if
// anything failed, the name and failure kind of each failed test.
func PrintResults(w io.Writer, results Results) {
	fmt.Fprintf(w, "Test summary: %d/%d tests passed", results.Passed(), results.Executed())
	if skipped := len(results.Tests) - results.Executed(); skipped > 0 {
		fmt.Fprintf(w, " (%d skipped)", skipped)
	}
	fmt.Fprintln(w)

	if results.OK() {
		summaryOKColor.Fprintln(w, "All tests passed!")
		return
	}
	summaryFailedColor.Fprintln(w, "Failed tests:")
	for _, f := range results.Failures {
		fmt.Fprintf(w, "  - %s (%s)\n", f.TestID, f.Cause())
	}
}
