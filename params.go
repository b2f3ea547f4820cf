package main

import (
	"flag"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/autolearn-jp/api-contract-tests/config"
	"github.com/autolearn-jp/api-contract-tests/framework"

	"github.com/alessio/shellescape"
)

type commandParams struct {
	serviceURL  string
	configFile  string
	envFile     string
	fixtureFile string
	timeout     time.Duration
	await       time.Duration
	filters     framework.RegexFilters
	list        bool
	noColor     bool
	debug       bool
	debugAll    bool
}

func (c *commandParams) Read(args []string, errOut io.Writer) bool {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&c.serviceURL, "url", "", "base URL of the service under test (overrides AUTOLEARN_URL)")
	fs.StringVar(&c.configFile, "config", "", "YAML configuration file")
	fs.StringVar(&c.envFile, "env-file", ".env", "file of environment variables to load if it exists")
	fs.StringVar(&c.fixtureFile, "fixture", "", "YAML fixture document to upload instead of the built-in one")
	fs.DurationVar(&c.timeout, "timeout", 0, "timeout for each HTTP request")
	fs.DurationVar(&c.await, "await", 0, "wait up to this long for the service to respond before running tests")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.list, "list", false, "list the tests in the suite and exit")
	fs.BoolVar(&c.noColor, "no-color", false, "disable colored output")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		return false
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(errOut, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		fs.Usage()
		return false
	}
	return true
}

// loadConfig applies the command-line overrides on top of the file and environment
// configuration.
func (c *commandParams) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.envFile, c.configFile)
	if err != nil {
		return config.Config{}, err
	}
	if c.serviceURL != "" {
		cfg.BaseURL = c.serviceURL
	}
	if c.timeout != 0 {
		cfg.Timeout = c.timeout
	}
	if c.fixtureFile != "" {
		cfg.FixturePath = c.fixtureFile
	}
	return cfg, cfg.Validate()
}

// rerunCommand builds a shell command line that runs only the given tests again with the
// same settings.
func (c *commandParams) rerunCommand(program string, cfg config.Config, testNames []string) string {
	var b commandBuilder
	b.add(program, "-url", cfg.BaseURL)
	if c.configFile != "" {
		b.add("-config", c.configFile)
	}
	if c.envFile != ".env" {
		b.add("-env-file", c.envFile)
	}
	if cfg.FixturePath != "" {
		b.add("-fixture", cfg.FixturePath)
	}
	if c.timeout != 0 {
		b.add("-timeout", c.timeout.String())
	}
	quoted := make([]string, 0, len(testNames))
	for _, name := range testNames {
		quoted = append(quoted, regexp.QuoteMeta(name))
	}
	b.add("-run", "^("+strings.Join(quoted, "|")+")$")
	if c.debugAll {
		b.add("-debug-all")
	} else if c.debug {
		b.add("-debug")
	}
	return b.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
