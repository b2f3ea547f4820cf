// Package servicedef describes the HTTP contract of the AutoLearn JP API: its paths, its
// roles, and the JSON shapes it sends and receives.
package servicedef

import "time"

const (
	RootPath   = "/api/"
	LoginPath  = "/api/auth/login"
	LogoutPath = "/api/auth/logout"
	CheckPath  = "/api/auth/check"
	WordsPath  = "/api/words"
	UploadPath = "/api/upload"

	// UploadFieldName is the multipart field that carries uploaded markdown files.
	UploadFieldName = "files"

	SessionCookieName = "session"

	// DefaultIdentityMarker is contained in the body of GET RootPath.
	DefaultIdentityMarker = "AutoLearn JP API"
)

const (
	RoleAdmin = "admin"
	RoleGuest = "guest"
)

// JSON property names of a word record.
const (
	FieldID           = "id"
	FieldKanji        = "kanji"
	FieldTraductionFr = "traductionFr"
	FieldOnyomi       = "onyomi"
	FieldKunyomi      = "kunyomi"
	FieldTraductionEn = "traductionEn"
	FieldType         = "type"
	FieldTheme        = "theme"
	FieldTags         = "tags"
)

type LoginParams struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Identity is returned by a successful login and by the session check.
type Identity struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type UploadResult struct {
	Processed int      `json:"processed"`
	Errors    []string `json:"errors,omitempty"`
}

// WordRecord is one record derived from an uploaded markdown file.
type WordRecord struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	Kanji        string    `json:"kanji,omitempty"`
	TraductionFr string    `json:"traductionFr,omitempty"`
	Onyomi       string    `json:"onyomi,omitempty"`
	Kunyomi      string    `json:"kunyomi,omitempty"`
	TraductionEn string    `json:"traductionEn,omitempty"`
	Type         string    `json:"type,omitempty"`
	Theme        string    `json:"theme,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
