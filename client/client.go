// Package client is the HTTP client that the tests use to talk to the service under test.
//
// A single Client holds a single cookie jar, so a session cookie set by a login response is
// presented on every later request until the service clears it or ClearCookies is called.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"os"
	"strings"
	"time"

	"github.com/autolearn-jp/api-contract-tests/framework"
	"github.com/autolearn-jp/api-contract-tests/servicedef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const maxLoggedBodyLength = 2000

// Client sends requests to the service under test.
//
// Non-2xx responses are not errors: they are returned like any other response so that tests
// can make assertions about them. Do only returns an error if no response could be obtained.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     framework.Logger
}

// Request describes one HTTP request. Path is relative to the client's base URL.
type Request struct {
	Method string
	Path   string
	Header http.Header

	// JSON, if not nil, is marshaled as the request body.
	JSON interface{}

	// Multipart sends a multipart/form-data body containing Files. It is implied if Files is
	// not empty; setting it with no Files sends a form that has no parts at all.
	Multipart bool
	Files     []File
}

// File is a file part of a multipart request. Its content is read from Path when the
// request is sent.
type File struct {
	FieldName   string
	FileName    string
	ContentType string
	Path        string
}

// Response is a fully read HTTP response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte

	// JSON is the parsed body, or a null value if the body was not valid JSON.
	JSON ldvalue.Value

	validJSON bool
}

// IsJSON returns true if the body was syntactically valid JSON.
func (r *Response) IsJSON() bool {
	return r.validJSON
}

// TransportError means that a request did not produce an HTTP response.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// New creates a Client with an empty cookie jar. Each request is bounded by timeout.
func New(baseURL string, timeout time.Duration, logger framework.Logger) *Client {
	if logger == nil {
		logger = framework.NullLogger()
	}
	jar, _ := cookiejar.New(nil) // only fails if given a bad PublicSuffixList
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
		logger: logger,
	}
}

// BaseURL returns the base URL that request paths are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// WithLogger returns a Client that logs to a different Logger but shares the same
// underlying connection pool and cookie jar.
func (c *Client) WithLogger(logger framework.Logger) *Client {
	c1 := *c
	c1.logger = logger
	return &c1
}

// ClearCookies discards the session, if any. It affects every Client that shares this
// cookie jar.
func (c *Client) ClearCookies() {
	jar, _ := cookiejar.New(nil)
	c.httpClient.Jar = jar
}

// Cookie returns the value of the named cookie as it would be sent to the service, or ""
// if there is no such cookie.
func (c *Client) Cookie(name string) string {
	req, err := http.NewRequest("GET", c.baseURL+"/", nil)
	if err != nil || c.httpClient.Jar == nil {
		return ""
	}
	for _, cookie := range c.httpClient.Jar.Cookies(req.URL) {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}

func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: "GET", Path: path})
}

func (c *Client) PostJSON(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, Request{Method: "POST", Path: path, JSON: body})
}

// Post sends a POST request with no body.
func (c *Client) Post(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: "POST", Path: path})
}

// Upload sends a multipart/form-data POST request. With no files, the form is sent with no
// parts.
func (c *Client) Upload(ctx context.Context, path string, files ...File) (*Response, error) {
	return c.Do(ctx, Request{Method: "POST", Path: path, Multipart: true, Files: files})
}

// Do sends a request and reads the whole response.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	url := c.baseURL + r.Path

	body, contentType, err := r.encodeBody()
	if err != nil {
		return nil, &TransportError{Method: r.Method, URL: url, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, url, body)
	if err != nil {
		return nil, &TransportError{Method: r.Method, URL: url, Err: err}
	}
	for name, values := range r.Header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.logger.Printf("Request: %s %s", r.Method, url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("Request failed: %s", err)
		return nil, &TransportError{Method: r.Method, URL: url, Err: err}
	}
	data, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		c.logger.Printf("Failed to read response body: %s", err)
		return nil, &TransportError{Method: r.Method, URL: url, Err: err}
	}

	ret := &Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   data,
	}
	if len(data) > 0 && json.Valid(data) {
		ret.JSON = ldvalue.Parse(data)
		ret.validJSON = true
	}
	c.logger.Printf("Response: status %d, body: %s", resp.StatusCode, truncate(string(data)))
	return ret, nil
}

func (r Request) encodeBody() (io.Reader, string, error) {
	if r.Multipart || len(r.Files) > 0 {
		return encodeMultipart(r.Files)
	}
	if r.JSON != nil {
		data, err := json.Marshal(r.JSON)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
	return nil, "", nil
}

func encodeMultipart(files []File) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		if err := writeFilePart(w, f); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func writeFilePart(w *multipart.Writer, f File) error {
	content, err := os.ReadFile(f.Path)
	if err != nil {
		return fmt.Errorf("reading upload file: %w", err)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(f.FieldName), escapeQuotes(f.FileName)))
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(content)
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func truncate(s string) string {
	if len(s) <= maxLoggedBodyLength {
		return s
	}
	return s[:maxLoggedBodyLength] + "..."
}

// AwaitService polls the service root until it produces any HTTP response, printing a dot
// for each attempt. It gives up when timeout elapses or ctx is cancelled.
func (c *Client) AwaitService(ctx context.Context, timeout time.Duration, output io.Writer) error {
	fmt.Fprintf(output, "Connecting to service at %s", c.baseURL)

	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprint(output, ".")
		resp, err := c.Get(ctx, servicedef.RootPath)
		if err == nil {
			fmt.Fprintln(output)
			fmt.Fprintf(output, "Service responded with status %d\n", resp.Status)
			return nil
		}
		if ctx.Err() != nil || !time.Now().Before(deadline) {
			fmt.Fprintln(output)
			return fmt.Errorf("timed out, result of last query was: %w", err)
		}
		select {
		case <-ctx.Done():
		case <-time.After(time.Millisecond * 100):
		}
	}
}
