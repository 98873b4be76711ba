package botclient

import (
	"strings"
	"time"

	"botgate/internal/config"
)

// AuthTier classifies who may invoke an operation.
type AuthTier string

const (
	// TierPublicRead operations are reachable without authentication.
	TierPublicRead AuthTier = "public-read"
	// TierAuthWrite operations mutate bot state and require a logged-in
	// dashboard operator.
	TierAuthWrite AuthTier = "authenticated-write"
)

// TimeoutTier selects which configured timeout budget an operation gets.
// Reads are cheap; training-adjacent operations are long-running.
type TimeoutTier string

const (
	TimeoutHealth TimeoutTier = "health" // 5s default
	TimeoutRead   TimeoutTier = "read"   // 10s default
	TimeoutWrite  TimeoutTier = "write"  // 30s default
	TimeoutLong   TimeoutTier = "long"   // 60s default
)

// Operation describes one proxied backend capability. Operations are
// statically defined at startup and immutable thereafter.
type Operation struct {
	Name    string
	Method  string
	Path    string // template, may contain {symbol}
	Timeout TimeoutTier
	Tier    AuthTier
}

// ResolveTimeout returns the operation's timeout budget under the given
// backend configuration.
func (op Operation) ResolveTimeout(cfg config.BackendConfig) time.Duration {
	switch op.Timeout {
	case TimeoutHealth:
		return cfg.HealthTimeout
	case TimeoutRead:
		return cfg.ReadTimeout
	case TimeoutLong:
		return cfg.LongTimeout
	default:
		return cfg.WriteTimeout
	}
}

// ExpandPath substitutes path parameters into the operation's template.
func (op Operation) ExpandPath(params map[string]string) string {
	path := op.Path
	for key, value := range params {
		path = strings.ReplaceAll(path, "{"+key+"}", value)
	}
	return path
}

// Bot lifecycle operations.
var (
	OpStart      = Operation{Name: "start", Method: "POST", Path: "/start", Timeout: TimeoutWrite, Tier: TierAuthWrite}
	OpStop       = Operation{Name: "stop", Method: "POST", Path: "/stop", Timeout: TimeoutWrite, Tier: TierAuthWrite}
	OpStatus     = Operation{Name: "status", Method: "GET", Path: "/status", Timeout: TimeoutRead, Tier: TierPublicRead}
	OpSwitchMode = Operation{Name: "switch-mode", Method: "POST", Path: "/switch-mode", Timeout: TimeoutWrite, Tier: TierAuthWrite}
	OpConfigure  = Operation{Name: "configure", Method: "POST", Path: "/configure", Timeout: TimeoutWrite, Tier: TierAuthWrite}
	OpEvaluate   = Operation{Name: "evaluate", Method: "GET", Path: "/evaluate/{symbol}", Timeout: TimeoutWrite, Tier: TierPublicRead}
	OpRetrain    = Operation{Name: "retrain", Method: "POST", Path: "/retrain/{symbol}", Timeout: TimeoutLong, Tier: TierAuthWrite}
	OpLogs       = Operation{Name: "logs", Method: "GET", Path: "/logs", Timeout: TimeoutRead, Tier: TierPublicRead}
	OpHealth     = Operation{Name: "health", Method: "GET", Path: "/health", Timeout: TimeoutHealth, Tier: TierPublicRead}

	// OpSnapshot is the status read used by the dashboard page projections.
	// It shares /status with OpStatus but carries the tight health budget so
	// pages degrade quickly when the backend is down.
	OpSnapshot = Operation{Name: "snapshot", Method: "GET", Path: "/status", Timeout: TimeoutHealth, Tier: TierPublicRead}
)

// Advanced training operations.
var (
	OpSearchStocks   = Operation{Name: "search-stocks", Method: "GET", Path: "/training/search-stocks", Timeout: TimeoutWrite, Tier: TierPublicRead}
	OpStockInfo      = Operation{Name: "stock-info", Method: "GET", Path: "/training/stock-info/{symbol}", Timeout: TimeoutWrite, Tier: TierPublicRead}
	OpImportData     = Operation{Name: "import-data", Method: "POST", Path: "/training/import-data", Timeout: TimeoutLong, Tier: TierAuthWrite}
	OpTrainModel     = Operation{Name: "train-model", Method: "POST", Path: "/training/train-model", Timeout: TimeoutWrite, Tier: TierAuthWrite}
	OpSimulation     = Operation{Name: "simulation", Method: "POST", Path: "/training/simulation", Timeout: TimeoutLong, Tier: TierAuthWrite}
	OpTrainingStatus = Operation{Name: "training-status", Method: "GET", Path: "/training/status", Timeout: TimeoutWrite, Tier: TierPublicRead}
	OpModels         = Operation{Name: "models", Method: "GET", Path: "/training/models", Timeout: TimeoutWrite, Tier: TierPublicRead}
	OpSaveModel      = Operation{Name: "save-model", Method: "POST", Path: "/training/save-model", Timeout: TimeoutWrite, Tier: TierAuthWrite}
	OpSavedModels    = Operation{Name: "saved-models", Method: "GET", Path: "/training/saved-models", Timeout: TimeoutWrite, Tier: TierPublicRead}
)

// Operations lists every proxied capability, for diagnostics and tests.
var Operations = []Operation{
	OpStart, OpStop, OpStatus, OpSwitchMode, OpConfigure, OpEvaluate,
	OpRetrain, OpLogs, OpHealth, OpSnapshot,
	OpSearchStocks, OpStockInfo, OpImportData, OpTrainModel, OpSimulation,
	OpTrainingStatus, OpModels, OpSaveModel, OpSavedModels,
}
