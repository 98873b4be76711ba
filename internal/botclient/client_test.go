package botclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botgate/internal/config"
)

func testBackendConfig(baseURL string) config.BackendConfig {
	return config.BackendConfig{
		BaseURL:       baseURL,
		HealthTimeout: 200 * time.Millisecond,
		ReadTimeout:   200 * time.Millisecond,
		WriteTimeout:  200 * time.Millisecond,
		LongTimeout:   time.Second,
	}
}

func TestDoForwardsRequest(t *testing.T) {
	var gotMethod, gotPath, gotQuery string
	var gotBody map[string]interface{}

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		if r.Body != nil {
			payload, _ := io.ReadAll(r.Body)
			if len(payload) > 0 {
				_ = json.Unmarshal(payload, &gotBody)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"started"}`))
	}))
	defer backend.Close()

	client := New(testBackendConfig(backend.URL), nil)

	resp, err := client.Do(context.Background(), OpSwitchMode, nil, nil, map[string]string{"mode": "live"})
	require.NoError(t, err)
	assert.True(t, resp.Successful())
	assert.Equal(t, "POST", gotMethod)
	assert.Equal(t, "/switch-mode", gotPath)
	assert.Equal(t, "live", gotBody["mode"])

	query := url.Values{"query": {"apple"}}
	_, err = client.Do(context.Background(), OpSearchStocks, nil, query, nil)
	require.NoError(t, err)
	assert.Equal(t, "/training/search-stocks", gotPath)
	assert.Equal(t, "query=apple", gotQuery)
}

func TestDoExpandsPathParams(t *testing.T) {
	var gotPath string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer backend.Close()

	client := New(testBackendConfig(backend.URL), nil)

	_, err := client.Do(context.Background(), OpEvaluate, map[string]string{"symbol": "AAPL"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "/evaluate/AAPL", gotPath)
}

func TestDoReturnsBackendFailureAsResponse(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"bot not running"}`))
	}))
	defer backend.Close()

	client := New(testBackendConfig(backend.URL), nil)

	resp, err := client.Do(context.Background(), OpStart, nil, nil, nil)
	require.NoError(t, err, "non-2xx must not be a transport error")
	assert.False(t, resp.Successful())
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "bot not running")
}

func TestDoTimesOut(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer backend.Close()

	client := New(testBackendConfig(backend.URL), nil)

	// OpStatus resolves to the 200ms read budget above.
	_, err := client.Do(context.Background(), OpStatus, nil, nil, nil)
	require.Error(t, err)

	te, ok := IsTransportError(err)
	require.True(t, ok, "expected a transport error, got %T", err)
	assert.True(t, te.Timeout)
	assert.Equal(t, "status", te.Operation)
}

func TestDoConnectionRefused(t *testing.T) {
	// Grab a port nothing listens on.
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := backend.URL
	backend.Close()

	client := New(testBackendConfig(deadURL), nil)

	_, err := client.Do(context.Background(), OpHealth, nil, nil, nil)
	require.Error(t, err)

	te, ok := IsTransportError(err)
	require.True(t, ok)
	assert.False(t, te.Timeout)
	assert.Equal(t, "health", te.Operation)
}

func TestOperationTimeoutTiers(t *testing.T) {
	cfg := config.DefaultBackendTimeouts

	tests := []struct {
		op       Operation
		expected time.Duration
	}{
		{OpHealth, 5 * time.Second},
		{OpSnapshot, 5 * time.Second},
		{OpStatus, 10 * time.Second},
		{OpLogs, 10 * time.Second},
		{OpStart, 30 * time.Second},
		{OpEvaluate, 30 * time.Second},
		{OpRetrain, 60 * time.Second},
		{OpImportData, 60 * time.Second},
		{OpSimulation, 60 * time.Second},
		{OpTrainModel, 30 * time.Second},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, test.op.ResolveTimeout(cfg), "operation %s", test.op.Name)
	}
}

func TestOperationAuthTiers(t *testing.T) {
	writes := map[string]bool{}
	for _, op := range Operations {
		if op.Tier == TierAuthWrite {
			writes[op.Name] = true
		}
	}

	for _, name := range []string{"start", "stop", "switch-mode", "configure", "retrain", "import-data", "train-model", "simulation", "save-model"} {
		assert.True(t, writes[name], "%s must require authentication", name)
	}
	for _, name := range []string{"status", "health", "logs", "evaluate", "search-stocks", "stock-info", "training-status", "models", "saved-models", "snapshot"} {
		assert.False(t, writes[name], "%s must stay public", name)
	}
}
