package apitests

import (
	"github.com/autolearn-jp/api-contract-tests/servicedef"

	"github.com/stretchr/testify/assert"
)

func DoAdminLoginTest(t *T) {
	creds := t.Config().Admin
	resp := t.Login(creds)
	t.Detail("status %d", resp.Status)
	t.RequireStatus(resp, 200, "admin login should succeed")

	identity := t.RequireJSON(resp)
	assert.Equal(t, creds.Username, identity.GetByKey("username").StringValue(), "wrong username in login response")
	assert.Equal(t, servicedef.RoleAdmin, identity.GetByKey("role").StringValue(), "wrong role in login response")
}

func DoGuestLoginTest(t *T) {
	t.ForceLogout()

	creds := t.Config().Guest
	resp := t.Login(creds)
	t.Detail("status %d", resp.Status)
	t.RequireStatus(resp, 200, "guest login should succeed")

	identity := t.RequireJSON(resp)
	assert.Equal(t, creds.Username, identity.GetByKey("username").StringValue(), "wrong username in login response")
	assert.Equal(t, servicedef.RoleGuest, identity.GetByKey("role").StringValue(), "wrong role in login response")
}

func DoInvalidLoginTest(t *T) {
	t.ForceLogout()

	resp := t.Login(t.Config().Invalid)
	t.Detail("status %d", resp.Status)
	t.RequireStatus(resp, 401, "login with bad credentials should be rejected")
}

func DoSessionCheckTest(t *T) {
	t.LoginAsAdmin()

	resp := t.Get(servicedef.CheckPath)
	t.Detail("status %d", resp.Status)
	t.RequireStatus(resp, 200, "session check should succeed after login")

	identity := t.RequireJSON(resp)
	assert.True(t, hasKey(identity, "username"), "session check response has no username: %s", identity)
	assert.True(t, hasKey(identity, "role"), "session check response has no role: %s", identity)
}

func DoLogoutTest(t *T) {
	t.LoginAsAdmin()

	logoutResp := t.Logout()
	t.Detail("logout status %d", logoutResp.Status)
	t.RequireStatus(logoutResp, 200, "logout should succeed")

	checkResp := t.Get(servicedef.CheckPath)
	t.Detail("logout status %d, check status %d", logoutResp.Status, checkResp.Status)
	t.RequireStatus(checkResp, 401, "session should be invalid after logout")
}

func DoUnauthorizedAccessTest(t *T) {
	t.ForceLogout()

	resp := t.Get(servicedef.WordsPath)
	t.Detail("status %d", resp.Status)
	t.RequireStatus(resp, 401, "word list should require a session")
}

func DoSessionIdentityTest(t *T) {
	loginIdentity := t.LoginAsAdmin()

	resp := t.Get(servicedef.CheckPath)
	t.Detail("status %d", resp.Status)
	t.RequireStatus(resp, 200)

	checkIdentity := t.RequireJSON(resp)
	for _, key := range []string{"username", "role"} {
		assert.Equal(t, loginIdentity.GetByKey(key).StringValue(), checkIdentity.GetByKey(key).StringValue(),
			"session check reported a different %s than login", key)
	}
}

func DoLogoutIsTerminalTest(t *T) {
	t.LoginAsAdmin()
	logoutResp := t.Logout()
	t.RequireStatus(logoutResp, 200, "logout should succeed")

	var statuses []int
	for i := 0; i < 2; i++ {
		resp := t.Get(servicedef.CheckPath)
		statuses = append(statuses, resp.Status)
		assert.Equal(t, 401, resp.Status, "session check #%d after logout", i+1)
	}
	t.Detail("check statuses %v", statuses)
}
