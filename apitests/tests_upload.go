package apitests

import (
	"github.com/autolearn-jp/api-contract-tests/client"
	"github.com/autolearn-jp/api-contract-tests/servicedef"

	"github.com/stretchr/testify/assert"
)

func DoFileUploadTest(t *T) {
	t.LoginAsAdmin()

	resp := t.Upload(t.Fixture())
	t.Detail("status %d", resp.Status)
	t.RequireStatus(resp, 200, "admin upload should succeed")

	processed := t.RequireJSON(resp).GetByKey("processed")
	t.Detail("status %d, processed %s", resp.Status, processed)
	assert.Greater(t, processed.IntValue(), 0, "service did not process the uploaded document")
}

func DoGuestUploadForbiddenTest(t *T) {
	t.ForceLogout()
	t.LoginAsGuest()

	resp := t.Upload(t.Fixture())
	t.Detail("status %d", resp.Status)
	t.RequireStatus(resp, 403, "guest upload should be forbidden")
}

func DoUploadWithNoFilesTest(t *T) {
	t.LoginAsAdmin()

	resp := t.Do(client.Request{Method: "POST", Path: servicedef.UploadPath, Multipart: true})
	t.Detail("status %d", resp.Status)
	t.RequireStatus(resp, 400, "upload with no files should be rejected")
}

func DoAnonymousUploadTest(t *T) {
	t.ForceLogout()

	resp := t.Upload(t.Fixture())
	t.Detail("status %d", resp.Status)
	t.RequireStatus(resp, 401, "upload without a session should be unauthorized, not forbidden")
}

func DoNonMarkdownUploadTest(t *T) {
	t.LoginAsAdmin()

	resp := t.Upload(t.Fixture().WithName("notes.txt"))
	t.Detail("status %d", resp.Status)
	t.RequireStatus(resp, 200)

	processed := t.RequireJSON(resp).GetByKey("processed")
	t.Detail("status %d, processed %s", resp.Status, processed)
	assert.Equal(t, 0, processed.IntValue(), "files not ending in .md should be ignored")
}
