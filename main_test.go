package main

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/autolearn-jp/api-contract-tests/apitests"
	"github.com/autolearn-jp/api-contract-tests/mockservice"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCommand runs the command line with a clean environment and no color.
func runCommand(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	for _, name := range []string{
		"AUTOLEARN_URL", "AUTOLEARN_ADMIN_USER", "AUTOLEARN_ADMIN_PASSWORD", "AUTOLEARN_GUEST_USER",
		"AUTOLEARN_GUEST_PASSWORD", "AUTOLEARN_IDENTITY", "AUTOLEARN_FIXTURE", "AUTOLEARN_TIMEOUT_SECONDS",
	} {
		t.Setenv(name, "")
	}
	saved := color.NoColor
	t.Cleanup(func() { color.NoColor = saved })

	var out, errOut bytes.Buffer
	fullArgs := append([]string{"contract-tests", "-no-color", "-env-file", filepath.Join(t.TempDir(), ".env")}, args...)
	code = run(fullArgs, &out, &errOut)
	return code, out.String(), errOut.String()
}

func startMock(t *testing.T, opts mockservice.Options) string {
	server := httptest.NewServer(mockservice.New(opts))
	t.Cleanup(server.Close)
	return server.URL
}

func TestRunPassesAgainstConformingService(t *testing.T) {
	url := startMock(t, mockservice.Options{})

	code, stdout, stderr := runCommand(t, "-url", url)

	assert.Equal(t, 0, code, stdout+stderr)
	assert.Contains(t, stdout, "Running test suite against "+url)
	assert.Contains(t, stdout, "PASS markdown parsing accuracy: status 200, all fields parsed correctly")
	assert.Contains(t, stdout, "Test summary: 19/19 tests passed\nAll tests passed!\n")
	assert.NotContains(t, stdout, "To run only the failed tests again")
}

func TestRunFailsAgainstFaultyService(t *testing.T) {
	url := startMock(t, mockservice.Options{KeepSessionOnLogout: true})

	code, stdout, _ := runCommand(t, "-url", url, "-timeout", "5s")

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "FAIL logout: logout status 200, check status 200\n")
	assert.Contains(t, stdout, "Test summary: 17/19 tests passed\n")
	assert.Contains(t, stdout, "Failed tests:\n  - logout (assertion)\n  - logout is terminal (assertion)\n")
	require.Contains(t, stdout, "To run only the failed tests again:\n  contract-tests -url "+url+" ")
	rerun := stdout[strings.LastIndex(stdout, "\n  contract-tests"):]
	assert.Contains(t, rerun, " -timeout 5s ")
	assert.True(t, strings.HasSuffix(rerun, " -run '^(logout|logout is terminal)$'\n"), rerun)
}

func TestRunWithFilter(t *testing.T) {
	url := startMock(t, mockservice.Options{KeepSessionOnLogout: true})

	code, stdout, _ := runCommand(t, "-url", url, "-skip", "^logout")

	assert.Equal(t, 0, code, stdout)
	assert.Contains(t, stdout, "skip any matching \"^logout\"")
	assert.Contains(t, stdout, "SKIP logout (excluded by filter parameters)")
	assert.Contains(t, stdout, "Test summary: 17/17 tests passed (2 skipped)\n")
}

func TestRunFailsWhenServiceIsDown(t *testing.T) {
	server := httptest.NewServer(mockservice.New(mockservice.Options{}))
	url := server.URL
	server.Close()

	code, stdout, stderr := runCommand(t, "-url", url, "-await", "200ms")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Service is not responding")
	assert.Contains(t, stdout, "Test summary: 0/19 tests passed\n")
	assert.Contains(t, stdout, "  - root reachability (transport)\n")
}

func TestRunListsSuite(t *testing.T) {
	code, stdout, _ := runCommand(t, "-list")

	assert.Equal(t, 0, code)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, len(apitests.AllTests))
	assert.Equal(t, "root reachability", lines[0])
	assert.Equal(t, "CORS preflight", lines[len(lines)-1])
}

func TestRunRejectsInvalidSettings(t *testing.T) {
	code, _, stderr := runCommand(t, "-url", "localhost")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Invalid configuration")

	code, _, stderr = runCommand(t, "-fixture", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Invalid fixture")

	code, _, _ = runCommand(t, "-no-such-flag")
	assert.Equal(t, 1, code)
}
