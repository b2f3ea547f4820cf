package apitests

import (
	"context"
	"os"

	"github.com/autolearn-jp/api-contract-tests/client"
	"github.com/autolearn-jp/api-contract-tests/config"
	"github.com/autolearn-jp/api-contract-tests/fixtures"
	"github.com/autolearn-jp/api-contract-tests/framework"
)

// TestCase is a named test in the suite.
type TestCase struct {
	Name   string
	Action func(*T)
}

// AllTests is the suite, in the order it runs.
var AllTests = []TestCase{
	{"root reachability", DoRootReachabilityTest},
	{"admin login", DoAdminLoginTest},
	{"guest login", DoGuestLoginTest},
	{"invalid login", DoInvalidLoginTest},
	{"session check", DoSessionCheckTest},
	{"logout", DoLogoutTest},
	{"unauthorized access", DoUnauthorizedAccessTest},
	{"file upload", DoFileUploadTest},
	{"guest upload forbidden", DoGuestUploadForbiddenTest},
	{"upload with no files", DoUploadWithNoFilesTest},
	{"words listing", DoWordsListingTest},
	{"markdown parsing accuracy", DoMarkdownParsingTest},
	{"unknown route", DoUnknownRouteTest},

	{"session identity matches login", DoSessionIdentityTest},
	{"logout is terminal", DoLogoutIsTerminalTest},
	{"anonymous upload rejected", DoAnonymousUploadTest},
	{"guest can list words", DoGuestListingTest},
	{"non-markdown upload ignored", DoNonMarkdownUploadTest},
	{"CORS preflight", DoCORSPreflightTest},
}

// RunTestSuite runs every test in AllTests that the filter selects, one at a time, and
// returns the results. It always runs to completion; ctx only makes in-flight requests fail
// faster if it is cancelled.
func RunTestSuite(
	ctx context.Context,
	apiClient *client.Client,
	cfg config.Config,
	fixture fixtures.Document,
	filter framework.Filter,
	testLogger framework.TestLogger,
) framework.Results {
	env := &environment{
		ctx:     ctx,
		client:  apiClient,
		config:  cfg,
		fixture: fixture,
		tempDir: os.TempDir(),
	}
	return framework.Run(filter, testLogger, func(c *framework.Context) {
		t := newTestScope(c, env)
		for _, tc := range AllTests {
			t.Run(tc.Name, tc.Action)
		}
	})
}
