package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/autolearn-jp/api-contract-tests/apitests"
	"github.com/autolearn-jp/api-contract-tests/client"
	"github.com/autolearn-jp/api-contract-tests/fixtures"
	"github.com/autolearn-jp/api-contract-tests/framework"

	"github.com/fatih/color"
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var params commandParams
	if !params.Read(args, stderr) {
		return 1
	}
	if params.noColor {
		color.NoColor = true
	}

	if params.list {
		for _, tc := range apitests.AllTests {
			fmt.Fprintln(stdout, tc.Name)
		}
		return 0
	}

	cfg, err := params.loadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "Invalid configuration: %s\n", err)
		return 1
	}

	fixture := fixtures.Default()
	if cfg.FixturePath != "" {
		if fixture, err = fixtures.Load(cfg.FixturePath); err != nil {
			fmt.Fprintf(stderr, "Invalid fixture: %s\n", err)
			return 1
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = framework.ConsoleLogger(stdout, "")
	}
	apiClient := client.New(cfg.BaseURL, cfg.Timeout, mainDebugLogger)

	if params.await > 0 {
		// The tests still run if this fails, so that every one of them reports the problem.
		if err := apiClient.AwaitService(ctx, params.await, stdout); err != nil {
			fmt.Fprintf(stderr, "Service is not responding: %s\n", err)
		}
	}

	fmt.Fprintln(stdout)
	framework.PrintFilterDescription(stdout, params.filters)

	fmt.Fprintf(stdout, "Running test suite against %s\n", cfg.BaseURL)

	testLogger := &ConsoleTestLogger{
		Out:                  stdout,
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}

	results := apitests.RunTestSuite(ctx, apiClient, cfg, fixture, params.filters.AsFilter, testLogger)

	fmt.Fprintln(stdout)
	framework.PrintResults(stdout, results)
	if !results.OK() {
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "To run only the failed tests again:")
		fmt.Fprintf(stdout, "  %s\n", params.rerunCommand(args[0], cfg, results.FailedNames()))
		return 1
	}
	return 0
}
