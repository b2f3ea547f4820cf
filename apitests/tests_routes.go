package apitests

import (
	"net/http"
	"strings"

	"github.com/autolearn-jp/api-contract-tests/client"
	"github.com/autolearn-jp/api-contract-tests/servicedef"

	"github.com/stretchr/testify/assert"
)

const preflightOrigin = "http://localhost:3000"

func DoRootReachabilityTest(t *T) {
	resp := t.Get(servicedef.RootPath)
	t.Detail("status %d", resp.Status)
	t.RequireStatus(resp, 200, "service root should be reachable")

	marker := t.Config().IdentityMarker
	assert.True(t, strings.Contains(string(resp.Body), marker),
		"service root body does not contain %q: %s", marker, truncate(string(resp.Body), 200))
}

func DoUnknownRouteTest(t *T) {
	t.LoginAsAdmin()

	resp := t.Get(t.Config().UnknownPath)
	t.Detail("status %d", resp.Status)
	t.RequireStatus(resp, 404, "unknown route should not be found")
}

func DoCORSPreflightTest(t *T) {
	header := make(http.Header)
	header.Set("Origin", preflightOrigin)
	header.Set("Access-Control-Request-Method", "POST")
	header.Set("Access-Control-Request-Headers", "Content-Type")

	resp := t.Do(client.Request{Method: "OPTIONS", Path: servicedef.RootPath, Header: header})
	t.Detail("status %d", resp.Status)
	t.RequireStatus(resp, 200, "preflight request should succeed")
	assert.NotEmpty(t, resp.Header.Get("Access-Control-Allow-Origin"), "missing Access-Control-Allow-Origin header")
}
