package apitests

import (
	"context"
	"fmt"
	"net/http"

	"github.com/autolearn-jp/api-contract-tests/client"
	"github.com/autolearn-jp/api-contract-tests/config"
	"github.com/autolearn-jp/api-contract-tests/fixtures"
	"github.com/autolearn-jp/api-contract-tests/framework"
	"github.com/autolearn-jp/api-contract-tests/servicedef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/stretchr/testify/require"
)

type environment struct {
	ctx     context.Context
	client  *client.Client
	config  config.Config
	fixture fixtures.Document
	tempDir string
}

// T represents a test in the API test suite.
//
// It implements the same basic functionality as Go's testing.T, but in an environment that
// is outside of the Go test runner. To make test assertions, use the assert and require
// packages, passing the *T as if it were a *testing.T.
//
// It also provides the operations that tests perform against the service. Methods that
// issue the request under test (Get, Login, Upload...) fail the test as a transport failure
// if no response is received. Methods that establish a precondition (ForceLogout, LoginAs,
// SeedFixture) fail it as a precondition failure if the setup step does not succeed, so
// the test never gets as far as its main action.
type T struct {
	context *framework.Context
	env     *environment
	client  *client.Client
}

func newTestScope(context *framework.Context, env *environment) *T {
	return &T{
		context: context,
		env:     env,
		client:  env.client.WithLogger(context.DebugLogger()),
	}
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a test. This is equivalent to the Run method of testing.T.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		action(newTestScope(c, t.env))
	})
}

// Debug logs some debug output for the test. The output will be passed to the test logger at
// the end of the test.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

// Detail sets the message printed next to the test's verdict.
func (t *T) Detail(format string, args ...interface{}) {
	t.context.Detail(format, args...)
}

// Defer schedules f to run when the test exits, however it exits.
func (t *T) Defer(f func()) {
	t.context.Defer(f)
}

// Config returns the configuration of the run.
func (t *T) Config() config.Config {
	return t.env.config
}

// Fixture returns the document that upload tests send.
func (t *T) Fixture() fixtures.Document {
	return t.env.fixture
}

// Do sends a request through the shared client. A transport error ends the test.
func (t *T) Do(r client.Request) *client.Response {
	resp, err := t.client.Do(t.env.ctx, r)
	if err != nil {
		t.context.Abort(framework.TransportFailure, err)
	}
	return resp
}

func (t *T) Get(path string) *client.Response {
	return t.Do(client.Request{Method: "GET", Path: path})
}

func (t *T) Post(path string) *client.Response {
	return t.Do(client.Request{Method: "POST", Path: path})
}

// Login posts the given credentials and returns the response, whatever its status.
func (t *T) Login(creds config.Credentials) *client.Response {
	return t.Do(client.Request{
		Method: "POST",
		Path:   servicedef.LoginPath,
		JSON:   servicedef.LoginParams{Username: creds.Username, Password: creds.Password},
	})
}

func (t *T) Logout() *client.Response {
	return t.Post(servicedef.LogoutPath)
}

// Upload sends the documents in a single multipart request. Each document is written to its
// own temporary file, which is removed as soon as the request completes or fails.
func (t *T) Upload(docs ...fixtures.Document) *client.Response {
	resp, err := t.upload(docs)
	if err != nil {
		t.context.Abort(framework.TransportFailure, err)
	}
	return resp
}

func (t *T) upload(docs []fixtures.Document) (*client.Response, error) {
	files := make([]client.File, 0, len(docs))
	for _, doc := range docs {
		path, cleanup, err := doc.WriteTemp(t.env.tempDir)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		files = append(files, client.File{
			FieldName:   servicedef.UploadFieldName,
			FileName:    doc.Name,
			ContentType: doc.ContentType(),
			Path:        path,
		})
	}
	return t.client.Upload(t.env.ctx, servicedef.UploadPath, files...)
}

// ForceLogout ends any current session, both on the service and in the client's cookie jar.
func (t *T) ForceLogout() {
	t.Debug("Setup: logging out")
	resp, err := t.client.Post(t.env.ctx, servicedef.LogoutPath)
	t.client.ClearCookies()
	if err != nil {
		t.preconditionFailed("logout", err)
	}
	if resp.Status != http.StatusOK {
		t.preconditionFailed("logout", fmt.Errorf("status %d", resp.Status))
	}
}

// LoginAs starts a session as the given account and returns the identity the service
// reported.
func (t *T) LoginAs(creds config.Credentials) ldvalue.Value {
	t.Debug("Setup: logging in as %q", creds.Username)
	resp, err := t.client.PostJSON(t.env.ctx, servicedef.LoginPath,
		servicedef.LoginParams{Username: creds.Username, Password: creds.Password})
	if err != nil {
		t.preconditionFailed("login as "+creds.Username, err)
	}
	if resp.Status != http.StatusOK {
		t.preconditionFailed("login as "+creds.Username, fmt.Errorf("status %d", resp.Status))
	}
	return resp.JSON
}

func (t *T) LoginAsAdmin() ldvalue.Value {
	return t.LoginAs(t.env.config.Admin)
}

func (t *T) LoginAsGuest() ldvalue.Value {
	return t.LoginAs(t.env.config.Guest)
}

// SeedFixture uploads the fixture document with the current session, which must be allowed
// to upload, so that the word list contains a known record.
func (t *T) SeedFixture() {
	t.Debug("Setup: uploading fixture %s", t.env.fixture.Name)
	resp, err := t.upload([]fixtures.Document{t.env.fixture})
	if err != nil {
		t.preconditionFailed("seed upload", err)
	}
	if resp.Status != http.StatusOK {
		t.preconditionFailed("seed upload", fmt.Errorf("status %d", resp.Status))
	}
	if processed := resp.JSON.GetByKey("processed").IntValue(); processed <= 0 {
		t.preconditionFailed("seed upload", fmt.Errorf("service processed %d documents", processed))
	}
}

func (t *T) preconditionFailed(step string, err error) {
	t.context.Abort(framework.PreconditionFailure, fmt.Errorf("setup step %q failed: %w", step, err))
}

// RequireStatus fails the test immediately unless the response has exactly the expected
// status.
func (t *T) RequireStatus(resp *client.Response, expected int, msgAndArgs ...interface{}) {
	if resp.Status != expected {
		t.Debug("Unexpected response body: %s", string(resp.Body))
	}
	require.Equal(t, expected, resp.Status, msgAndArgs...)
}

// RequireJSON fails the test immediately unless the response body is valid JSON.
func (t *T) RequireJSON(resp *client.Response) ldvalue.Value {
	if !resp.IsJSON() {
		t.context.Abort(framework.TransportFailure,
			fmt.Errorf("response body is not valid JSON: %q", truncate(string(resp.Body), 200)))
	}
	return resp.JSON
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
