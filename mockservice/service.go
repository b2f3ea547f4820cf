// Package mockservice is an in-memory implementation of the AutoLearn JP API contract. It
// exists so that the test suite itself can be tested: running the suite against it should
// pass, and switching on one of its faults should make exactly the related tests fail.
package mockservice

import (
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/autolearn-jp/api-contract-tests/framework"
	"github.com/autolearn-jp/api-contract-tests/servicedef"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionMaxAgeSeconds = 86400

type Account struct {
	Username string
	Password string
	Role     string
}

type Options struct {
	// Identity is returned as the message of the root endpoint.
	Identity string
	Accounts []Account
	Logger   framework.Logger

	// KeepSessionOnLogout makes logout acknowledge the request without invalidating the
	// session.
	KeepSessionOnLogout bool

	// AllowGuestUpload skips the admin role check on upload.
	AllowGuestUpload bool

	// RewriteWords, if set, is applied to the word list before it is returned, so that a
	// service that mis-parses or duplicates records can be simulated.
	RewriteWords func([]servicedef.WordRecord) []servicedef.WordRecord
}

// DefaultAccounts are the accounts of a stock deployment.
func DefaultAccounts() []Account {
	return []Account{
		{Username: "admin", Password: "autolearn2024", Role: servicedef.RoleAdmin},
		{Username: "guest", Password: "guest", Role: servicedef.RoleGuest},
	}
}

// Service is an http.Handler serving the API.
type Service struct {
	opts     Options
	engine   *gin.Engine
	sessions map[string]servicedef.Identity
	words    []servicedef.WordRecord
	lock     sync.Mutex
}

func New(opts Options) *Service {
	if opts.Identity == "" {
		opts.Identity = servicedef.DefaultIdentityMarker
	}
	if opts.Accounts == nil {
		opts.Accounts = DefaultAccounts()
	}
	if opts.Logger == nil {
		opts.Logger = framework.NullLogger()
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Service{
		opts:     opts,
		sessions: make(map[string]servicedef.Identity),
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(opts.Logger))
	engine.Use(corsMiddleware())

	api := engine.Group("/api")
	api.GET("/", s.root)
	api.POST("/auth/login", s.login)
	api.POST("/auth/logout", s.logout)
	api.GET("/auth/check", s.check)

	protected := api.Group("", s.requireSession)
	protected.GET("/words", s.listWords)
	protected.POST("/upload", s.requireAdmin, s.upload)

	engine.NoRoute(s.notFound)

	s.engine = engine
	return s
}

func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// Words returns a copy of the stored records, newest first.
func (s *Service) Words() []servicedef.WordRecord {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]servicedef.WordRecord(nil), s.words...)
}

// SessionCount returns the number of live sessions.
func (s *Service) SessionCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.sessions)
}

func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOriginFunc:           func(origin string) bool { return true },
		AllowMethods:              []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:              []string{"Content-Type", "Authorization"},
		AllowCredentials:          true,
		OptionsResponseStatusCode: http.StatusOK,
	})
}

func requestLogger(logger framework.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Printf("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func (s *Service) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": s.opts.Identity})
}

func (s *Service) login(c *gin.Context) {
	var params servicedef.LoginParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, servicedef.ErrorResponse{Error: "Invalid request body"})
		return
	}
	for _, a := range s.opts.Accounts {
		if a.Username == params.Username && a.Password == params.Password {
			identity := servicedef.Identity{Username: a.Username, Role: a.Role}
			sessionID := uuid.NewString()
			s.lock.Lock()
			s.sessions[sessionID] = identity
			s.lock.Unlock()
			c.SetCookie(servicedef.SessionCookieName, sessionID, sessionMaxAgeSeconds, "/", "", false, true)
			c.JSON(http.StatusOK, identity)
			return
		}
	}
	c.JSON(http.StatusUnauthorized, servicedef.ErrorResponse{Error: "Invalid credentials"})
}

func (s *Service) logout(c *gin.Context) {
	if s.opts.KeepSessionOnLogout {
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}
	if sessionID, err := c.Cookie(servicedef.SessionCookieName); err == nil {
		s.lock.Lock()
		delete(s.sessions, sessionID)
		s.lock.Unlock()
	}
	c.SetCookie(servicedef.SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Service) check(c *gin.Context) {
	identity, ok := s.session(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, servicedef.ErrorResponse{Error: "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, identity)
}

func (s *Service) session(c *gin.Context) (servicedef.Identity, bool) {
	sessionID, err := c.Cookie(servicedef.SessionCookieName)
	if err != nil || sessionID == "" {
		return servicedef.Identity{}, false
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	identity, ok := s.sessions[sessionID]
	return identity, ok
}

const identityKey = "identity"

func (s *Service) requireSession(c *gin.Context) {
	identity, ok := s.session(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, servicedef.ErrorResponse{Error: "Unauthorized"})
		return
	}
	c.Set(identityKey, identity)
	c.Next()
}

func (s *Service) requireAdmin(c *gin.Context) {
	identity := c.MustGet(identityKey).(servicedef.Identity)
	if identity.Role != servicedef.RoleAdmin && !s.opts.AllowGuestUpload {
		c.AbortWithStatusJSON(http.StatusForbidden, servicedef.ErrorResponse{Error: "Admin access required"})
		return
	}
	c.Next()
}

func (s *Service) listWords(c *gin.Context) {
	words := s.Words()
	sort.SliceStable(words, func(i, j int) bool { return words[i].CreatedAt.After(words[j].CreatedAt) })
	if s.opts.RewriteWords != nil {
		words = s.opts.RewriteWords(words)
	}
	if words == nil {
		words = []servicedef.WordRecord{}
	}
	c.JSON(http.StatusOK, words)
}

// upload replaces all stored records with the ones parsed from the uploaded files. Files
// whose names do not end in ".md" are ignored.
func (s *Service) upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil || len(form.File[servicedef.UploadFieldName]) == 0 {
		c.JSON(http.StatusBadRequest, servicedef.ErrorResponse{Error: "No files provided"})
		return
	}

	var result servicedef.UploadResult
	var parsed []servicedef.WordRecord
	for _, fh := range form.File[servicedef.UploadFieldName] {
		if !strings.HasSuffix(fh.Filename, ".md") {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			result.Errors = append(result.Errors, "Error processing "+fh.Filename+": "+err.Error())
			continue
		}
		content, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			result.Errors = append(result.Errors, "Error processing "+fh.Filename+": "+err.Error())
			continue
		}
		word := parseWord(string(content))
		if word.Kanji == "" {
			result.Errors = append(result.Errors, "Failed to parse "+fh.Filename)
			continue
		}
		word.ID = uuid.NewString()
		word.Filename = fh.Filename
		word.CreatedAt = time.Now()
		parsed = append(parsed, word)
	}
	result.Processed = len(parsed)

	s.lock.Lock()
	s.words = parsed
	s.lock.Unlock()

	c.JSON(http.StatusOK, result)
}

func (s *Service) notFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		if _, ok := s.session(c); !ok {
			c.JSON(http.StatusUnauthorized, servicedef.ErrorResponse{Error: "Unauthorized"})
			return
		}
	}
	c.JSON(http.StatusNotFound, servicedef.ErrorResponse{Error: "Route " + c.Request.URL.Path + " not found"})
}
