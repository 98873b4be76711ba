package api

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"botgate/internal/auth"
	"botgate/internal/botclient"
	"botgate/internal/config"
	"botgate/internal/logger"
	"botgate/internal/monitoring"
	"botgate/internal/testutils"
)

// spyCall records one forwarded backend call.
type spyCall struct {
	Op     botclient.Operation
	Params map[string]string
	Query  url.Values
	Body   interface{}
}

// backendSpy stands in for the backend client. It records every forward so
// tests can assert that denied or invalid requests trigger zero outbound
// calls.
type backendSpy struct {
	calls []spyCall
	fn    func(op botclient.Operation, body interface{}) (*botclient.RawResponse, error)
}

func (s *backendSpy) Do(_ context.Context, op botclient.Operation, params map[string]string, query url.Values, body interface{}) (*botclient.RawResponse, error) {
	s.calls = append(s.calls, spyCall{Op: op, Params: params, Query: query, Body: body})
	if s.fn != nil {
		return s.fn(op, body)
	}
	return &botclient.RawResponse{StatusCode: 200, Body: []byte(`{}`)}, nil
}

func (s *backendSpy) CallCount() int {
	return len(s.calls)
}

func (s *backendSpy) LastCall() spyCall {
	return s.calls[len(s.calls)-1]
}

func testServerConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:    "Botgate Test",
			Version: "1.0.0",
			Env:     "test",
		},
		Server: config.ServerConfig{
			Port:         8090,
			Host:         "localhost",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Backend: config.DefaultBackendTimeouts,
		JWT: config.JWTConfig{
			SecretKey: "test-secret",
			Duration:  time.Hour,
		},
		Auth: config.AuthConfig{
			Username: "admin",
			// bcrypt hash of "hunter2", cost 10
			PasswordHash: mustHash("hunter2"),
		},
		Monitoring: config.MonitoringConfig{
			PrometheusEnabled: true,
			PrometheusPath:    "/metrics",
		},
		Logging: logger.Config{Level: "error", Format: "text", Output: "stdout"},
	}
}

func mustHash(password string) string {
	hash, err := auth.HashPassword(password)
	if err != nil {
		panic(err)
	}
	return hash
}

// newTestServer wires the real route table to a spy backend.
func newTestServer(t *testing.T, spy *backendSpy) (*Server, *testutils.HTTPTestHelper, *testutils.TestSuite) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testServerConfig()
	suite := testutils.NewTestSuite(t, nil)

	log := suite.Logger
	metrics := monitoring.NewMetrics()
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Duration)

	server := &Server{
		config:     cfg,
		router:     gin.New(),
		log:        log,
		backend:    spy,
		jwtManager: jwtManager,
		metrics:    metrics,
	}
	server.handlers = &Handlers{
		Bot:       NewBotHandler(spy, metrics, log),
		Training:  NewTrainingHandler(spy, metrics, log),
		Dashboard: NewDashboardHandler(spy, metrics, log),
		Auth:      NewAuthHandler(jwtManager, cfg.Auth),
	}
	server.setupRoutes()

	helper := testutils.NewHTTPTestHelper(suite)
	helper.Router = server.router

	return server, helper, suite
}

func operatorToken(t *testing.T, server *Server) string {
	t.Helper()
	token, err := server.jwtManager.GenerateToken("user-1", "admin", "operator")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return token
}

func authHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestGatewayHealth(t *testing.T) {
	_, helper, suite := newTestServer(t, &backendSpy{})
	defer suite.TearDown()

	resp := helper.GET("/health", nil)
	resp.AssertStatus(200)

	var health map[string]interface{}
	if err := resp.GetJSON(&health); err != nil {
		t.Fatalf("Failed to parse health response: %v", err)
	}
	if health["status"] != "ok" {
		t.Errorf("Expected status 'ok', got '%v'", health["status"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, helper, suite := newTestServer(t, &backendSpy{})
	defer suite.TearDown()

	// Generate some traffic first so counters exist.
	helper.GET("/health", nil)

	resp := helper.GET("/metrics", nil)
	resp.AssertStatus(200)
	resp.AssertContains("http_requests_total")
}

func TestWriteOperationsRequireAuth(t *testing.T) {
	writes := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/bot/start"},
		{"POST", "/api/v1/bot/stop"},
		{"POST", "/api/v1/bot/switch-mode"},
		{"POST", "/api/v1/bot/configure"},
		{"POST", "/api/v1/bot/retrain/AAPL"},
		{"POST", "/api/v1/training/import-data"},
		{"POST", "/api/v1/training/train-model"},
		{"POST", "/api/v1/training/simulation"},
		{"POST", "/api/v1/training/save-model"},
	}

	for _, write := range writes {
		t.Run(write.path, func(t *testing.T) {
			spy := &backendSpy{}
			_, helper, suite := newTestServer(t, spy)
			defer suite.TearDown()

			resp := helper.Request(write.method, write.path, nil, nil)
			resp.AssertStatus(401)

			if spy.CallCount() != 0 {
				t.Errorf("Denied request must not reach the backend, got %d calls", spy.CallCount())
			}
		})
	}
}

func TestReadOperationsArePublic(t *testing.T) {
	reads := []string{
		"/api/v1/bot/status",
		"/api/v1/bot/logs",
		"/api/v1/bot/health",
		"/api/v1/bot/evaluate/AAPL",
		"/api/v1/training/search-stocks",
		"/api/v1/training/stock-info/AAPL",
		"/api/v1/training/status",
		"/api/v1/training/models",
		"/api/v1/training/saved-models",
		"/api/v1/dashboard",
		"/api/v1/dashboard/configuration",
		"/api/v1/dashboard/analytics",
	}

	for _, path := range reads {
		t.Run(path, func(t *testing.T) {
			spy := &backendSpy{}
			_, helper, suite := newTestServer(t, spy)
			defer suite.TearDown()

			resp := helper.GET(path, nil)
			resp.AssertStatus(200)

			if spy.CallCount() == 0 {
				t.Error("Read operation should have been forwarded")
			}
		})
	}
}

func TestAuthorizedWriteReachesBackend(t *testing.T) {
	spy := &backendSpy{}
	server, helper, suite := newTestServer(t, spy)
	defer suite.TearDown()

	token := operatorToken(t, server)
	resp := helper.POST("/api/v1/bot/start", nil, authHeader(token))
	resp.AssertStatus(200)
	resp.AssertContains("Trading bot started successfully")

	if spy.CallCount() != 1 {
		t.Fatalf("Expected exactly one backend call, got %d", spy.CallCount())
	}
	if spy.LastCall().Op.Name != "start" {
		t.Errorf("Expected start operation, got %s", spy.LastCall().Op.Name)
	}
}

func TestLogin(t *testing.T) {
	_, helper, suite := newTestServer(t, &backendSpy{})
	defer suite.TearDown()

	t.Run("valid credentials", func(t *testing.T) {
		resp := helper.POST("/api/v1/auth/login", LoginRequest{Username: "admin", Password: "hunter2"}, nil)
		resp.AssertStatus(200)
		resp.AssertContains("access_token")
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := helper.POST("/api/v1/auth/login", LoginRequest{Username: "admin", Password: "wrong"}, nil)
		resp.AssertStatus(401)
		resp.AssertContains("Invalid credentials")
	})

	t.Run("unknown user", func(t *testing.T) {
		resp := helper.POST("/api/v1/auth/login", LoginRequest{Username: "nobody", Password: "hunter2"}, nil)
		resp.AssertStatus(401)
	})

	t.Run("missing fields", func(t *testing.T) {
		resp := helper.POST("/api/v1/auth/login", map[string]string{"username": "admin"}, nil)
		resp.AssertStatus(400)
	})
}

func TestLoginTokenAuthorizesWrites(t *testing.T) {
	spy := &backendSpy{}
	_, helper, suite := newTestServer(t, spy)
	defer suite.TearDown()

	resp := helper.POST("/api/v1/auth/login", LoginRequest{Username: "admin", Password: "hunter2"}, nil)
	resp.AssertStatus(200)

	var login struct {
		Data AuthResponse `json:"data"`
	}
	if err := resp.GetJSON(&login); err != nil {
		t.Fatalf("Failed to parse login response: %v", err)
	}

	write := helper.POST("/api/v1/bot/stop", nil, authHeader(login.Data.AccessToken))
	write.AssertStatus(200)
}
