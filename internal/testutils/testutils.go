// Package testutils provides the shared test harness: a suite with
// scratch-space cleanup and an HTTP helper for exercising gin routers.
package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botgate/internal/logger"
)

// TestConfig configures a test suite.
type TestConfig struct {
	LogLevel string
	TempDir  string
}

// DefaultTestConfig keeps log output quiet during tests.
func DefaultTestConfig() *TestConfig {
	return &TestConfig{
		LogLevel: "error",
	}
}

// TestSuite bundles per-test resources and their cleanup.
type TestSuite struct {
	T       *testing.T
	Config  *TestConfig
	Logger  *logger.Logger
	TempDir string
	Cleanup []func()
}

// NewTestSuite creates a test suite.
func NewTestSuite(t *testing.T, config *TestConfig) *TestSuite {
	if config == nil {
		config = DefaultTestConfig()
	}

	tempDir, err := os.MkdirTemp("", "botgate_test_*")
	require.NoError(t, err)

	if config.TempDir == "" {
		config.TempDir = tempDir
	}

	testLogger := logger.New(logger.Config{
		Level:  config.LogLevel,
		Format: "text",
		Output: "stdout",
	})

	suite := &TestSuite{
		T:       t,
		Config:  config,
		Logger:  testLogger,
		TempDir: tempDir,
		Cleanup: []func(){},
	}

	suite.AddCleanup(func() {
		os.RemoveAll(tempDir)
	})

	return suite
}

// AddCleanup registers a cleanup function.
func (s *TestSuite) AddCleanup(cleanup func()) {
	s.Cleanup = append(s.Cleanup, cleanup)
}

// TearDown runs cleanups in reverse order.
func (s *TestSuite) TearDown() {
	for i := len(s.Cleanup) - 1; i >= 0; i-- {
		s.Cleanup[i]()
	}
}

// CreateTempFile writes a file under the suite's scratch directory.
func (s *TestSuite) CreateTempFile(name, content string) string {
	filePath := filepath.Join(s.TempDir, name)
	err := os.WriteFile(filePath, []byte(content), 0644)
	require.NoError(s.T, err)
	return filePath
}

// HTTPTestHelper drives a gin router through httptest.
type HTTPTestHelper struct {
	Router *gin.Engine
	Suite  *TestSuite
}

// NewHTTPTestHelper creates an HTTP test helper with a fresh router.
func NewHTTPTestHelper(suite *TestSuite) *HTTPTestHelper {
	gin.SetMode(gin.TestMode)
	return &HTTPTestHelper{
		Router: gin.New(),
		Suite:  suite,
	}
}

// GET sends a GET request.
func (h *HTTPTestHelper) GET(path string, headers map[string]string) *HTTPResponse {
	return h.Request("GET", path, nil, headers)
}

// POST sends a POST request with a JSON body.
func (h *HTTPTestHelper) POST(path string, body interface{}, headers map[string]string) *HTTPResponse {
	return h.Request("POST", path, body, headers)
}

// Request sends a request through the router.
func (h *HTTPTestHelper) Request(method, path string, body interface{}, headers map[string]string) *HTTPResponse {
	var bodyReader io.Reader

	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(h.Suite.T, err)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	w := httptest.NewRecorder()
	h.Router.ServeHTTP(w, req)

	return &HTTPResponse{
		StatusCode: w.Code,
		Body:       w.Body.Bytes(),
		Headers:    w.Header(),
		suite:      h.Suite,
	}
}

// HTTPResponse is a recorded response with assertion helpers.
type HTTPResponse struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
	suite      *TestSuite
}

// AssertStatus asserts the response status code.
func (r *HTTPResponse) AssertStatus(expectedStatus int) *HTTPResponse {
	assert.Equal(r.suite.T, expectedStatus, r.StatusCode, "body: %s", string(r.Body))
	return r
}

// AssertContains asserts the body contains a substring.
func (r *HTTPResponse) AssertContains(substring string) *HTTPResponse {
	assert.Contains(r.suite.T, string(r.Body), substring)
	return r
}

// GetJSON decodes the body into target.
func (r *HTTPResponse) GetJSON(target interface{}) error {
	return json.Unmarshal(r.Body, target)
}

// GetString returns the body as a string.
func (r *HTTPResponse) GetString() string {
	return string(r.Body)
}
