package apitests

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/autolearn-jp/api-contract-tests/client"
	"github.com/autolearn-jp/api-contract-tests/config"
	"github.com/autolearn-jp/api-contract-tests/fixtures"
	"github.com/autolearn-jp/api-contract-tests/framework"
	"github.com/autolearn-jp/api-contract-tests/mockservice"
	"github.com/autolearn-jp/api-contract-tests/servicedef"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runAgainst(t *testing.T, baseURL string, filter framework.Filter) framework.Results {
	t.Helper()
	cfg := config.Default()
	cfg.BaseURL = baseURL
	cfg.Timeout = 5 * time.Second
	apiClient := client.New(cfg.BaseURL, cfg.Timeout, nil)
	return RunTestSuite(context.Background(), apiClient, cfg, fixtures.Default(), filter, nil)
}

func runAgainstMock(t *testing.T, opts mockservice.Options) framework.Results {
	t.Helper()
	server := httptest.NewServer(mockservice.New(opts))
	t.Cleanup(server.Close)
	return runAgainst(t, server.URL, nil)
}

func failureKinds(results framework.Results) map[string]framework.FailureKind {
	ret := make(map[string]framework.FailureKind)
	for _, r := range results.Failures {
		ret[r.TestID.String()] = r.Cause()
	}
	return ret
}

func TestSuitePassesAgainstConformingService(t *testing.T) {
	results := runAgainstMock(t, mockservice.Options{})

	require.Len(t, results.Tests, len(AllTests))
	assert.Empty(t, results.FailedNames())
	for i, r := range results.Tests {
		assert.Equal(t, AllTests[i].Name, r.TestID.String())
		assert.Equal(t, framework.Passed, r.Outcome, "%s: %v", r.TestID, r.Errors)
	}
	assert.Equal(t, len(AllTests), results.Passed())
}

func TestSuiteReportsParsedFieldsInDetail(t *testing.T) {
	results := runAgainstMock(t, mockservice.Options{})

	for _, r := range results.Tests {
		if r.TestID.String() == "markdown parsing accuracy" {
			assert.Equal(t, "status 200, all fields parsed correctly", r.Detail)
			return
		}
	}
	t.Fatal("markdown parsing test did not run")
}

func TestSuiteDetectsSessionSurvivingLogout(t *testing.T) {
	results := runAgainstMock(t, mockservice.Options{KeepSessionOnLogout: true})

	kinds := failureKinds(results)
	assert.Equal(t, framework.AssertionFailure, kinds["logout"])
	assert.Equal(t, framework.AssertionFailure, kinds["logout is terminal"])
	assert.Len(t, kinds, 2, "unexpected failures: %v", results.FailedNames())
}

func TestSuiteDetectsGuestUpload(t *testing.T) {
	results := runAgainstMock(t, mockservice.Options{AllowGuestUpload: true})

	assert.Equal(t, []string{"guest upload forbidden"}, results.FailedNames())
}

func TestSuiteDetectsWrongIdentity(t *testing.T) {
	results := runAgainstMock(t, mockservice.Options{Identity: "Some Other API"})

	assert.Equal(t, []string{"root reachability"}, results.FailedNames())
}

func resultNamed(t *testing.T, results framework.Results, name string) framework.TestResult {
	t.Helper()
	for _, r := range results.Tests {
		if r.TestID.String() == name {
			return r
		}
	}
	t.Fatalf("test %q did not run", name)
	return framework.TestResult{}
}

func TestSuiteDetectsMisparsedFields(t *testing.T) {
	results := runAgainstMock(t, mockservice.Options{
		RewriteWords: func(words []servicedef.WordRecord) []servicedef.WordRecord {
			for i := range words {
				words[i].Onyomi = "カ"
				words[i].Kunyomi = "ひ"
				words[i].Tags = []string{"kanji"}
			}
			return words
		},
	})

	require.Equal(t, []string{"markdown parsing accuracy"}, results.FailedNames())
	r := resultNamed(t, results, "markdown parsing accuracy")
	assert.Equal(t, framework.AssertionFailure, r.Cause())
	assert.Len(t, r.Errors, 3)
	assert.Contains(t, r.Detail, "status 200, parsing errors")
	assert.Contains(t, r.Detail, `onyomi: expected "カ (ka)", got "カ"`)
	assert.Contains(t, r.Detail, `kunyomi: expected "ひ (hi), ほ (ho)", got "ひ"`)
	assert.Contains(t, r.Detail, "tags: expected [kanji japonais JLPTN5], got [kanji]")
}

func TestSuiteDetectsMissingField(t *testing.T) {
	results := runAgainstMock(t, mockservice.Options{
		RewriteWords: func(words []servicedef.WordRecord) []servicedef.WordRecord {
			for i := range words {
				words[i].Theme = ""
			}
			return words
		},
	})

	require.Equal(t, []string{"markdown parsing accuracy"}, results.FailedNames())
	r := resultNamed(t, results, "markdown parsing accuracy")
	assert.Equal(t, "status 200, parsing errors, missing: theme", r.Detail)
}

func TestSuiteDetectsDuplicateRecords(t *testing.T) {
	results := runAgainstMock(t, mockservice.Options{
		RewriteWords: func(words []servicedef.WordRecord) []servicedef.WordRecord {
			return append(words, words...)
		},
	})

	require.Equal(t, []string{"markdown parsing accuracy"}, results.FailedNames())
	r := resultNamed(t, results, "markdown parsing accuracy")
	assert.Equal(t, framework.AssertionFailure, r.Cause())
	assert.Equal(t, `status 200, found 2 records for "火" among 2 words`, r.Detail)
}

func TestSuiteDetectsMissingAdminAccount(t *testing.T) {
	results := runAgainstMock(t, mockservice.Options{
		Accounts: []mockservice.Account{{Username: "guest", Password: "guest", Role: "guest"}},
	})

	kinds := failureKinds(results)
	assert.Equal(t, framework.AssertionFailure, kinds["admin login"])
	assert.Equal(t, framework.PreconditionFailure, kinds["session check"])
	assert.Equal(t, framework.PreconditionFailure, kinds["file upload"])
	assert.Equal(t, framework.PreconditionFailure, kinds["markdown parsing accuracy"])
	assert.NotContains(t, kinds, "guest login")
	assert.NotContains(t, kinds, "unauthorized access")
}

func TestSuiteSurvivesUnreachableService(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(200))
	url := server.URL
	server.Close()

	results := runAgainst(t, url, nil)

	require.Len(t, results.Tests, len(AllTests))
	require.Len(t, results.Failures, len(AllTests))
	for _, r := range results.Failures {
		kind := r.Cause()
		assert.True(t, kind == framework.TransportFailure || kind == framework.PreconditionFailure,
			"%s failed with %s", r.TestID, kind)
	}
	assert.Equal(t, framework.TransportFailure, failureKinds(results)["root reachability"])
}

func TestSuiteAgainstServiceThatAlwaysFails(t *testing.T) {
	var results framework.Results
	httphelpers.WithServer(httphelpers.HandlerWithStatus(500), func(server *httptest.Server) {
		results = runAgainst(t, server.URL, nil)
	})

	kinds := failureKinds(results)
	assert.Len(t, kinds, len(AllTests))
	assert.Equal(t, framework.AssertionFailure, kinds["root reachability"])
	assert.Equal(t, framework.AssertionFailure, kinds["admin login"])
	assert.Equal(t, framework.PreconditionFailure, kinds["guest login"])
	assert.Equal(t, framework.PreconditionFailure, kinds["words listing"])
}

func TestSuiteFilter(t *testing.T) {
	server := httptest.NewServer(mockservice.New(mockservice.Options{}))
	defer server.Close()

	var filters framework.RegexFilters
	require.NoError(t, filters.MustMatch.Set("upload"))
	require.NoError(t, filters.MustNotMatch.Set("^guest"))
	results := runAgainst(t, server.URL, filters.AsFilter)

	var ran []string
	for _, r := range results.Tests {
		if r.Outcome != framework.Skipped {
			ran = append(ran, r.TestID.String())
		}
	}
	assert.Equal(t, []string{
		"file upload",
		"upload with no files",
		"anonymous upload rejected",
		"non-markdown upload ignored",
	}, ran)
	assert.Len(t, results.Tests, len(AllTests))
	assert.True(t, results.OK())
}

func TestSuiteRemovesTemporaryFiles(t *testing.T) {
	server := httptest.NewServer(mockservice.New(mockservice.Options{}))
	defer server.Close()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.BaseURL = server.URL
	env := &environment{
		ctx:     context.Background(),
		client:  client.New(server.URL, 5*time.Second, nil),
		config:  cfg,
		fixture: fixtures.Default(),
		tempDir: dir,
	}
	results := framework.Run(nil, nil, func(c *framework.Context) {
		t := newTestScope(c, env)
		t.Run("file upload", DoFileUploadTest)
		t.Run("markdown parsing accuracy", DoMarkdownParsingTest)
	})
	require.True(t, results.OK(), "failures: %v", results.FailedNames())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, filepath.Join(dir, e.Name()))
	}
	assert.Empty(t, names)
}
