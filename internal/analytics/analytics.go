// Package analytics derives dashboard-ready metrics from raw backend status
// snapshots. Everything here is computed fresh per request; nothing is
// cached, so staleness is bounded by request latency to the backend.
package analytics

import (
	"encoding/json"
	"fmt"
	"time"
)

// Snapshot is the raw status object returned by the backend's /status
// endpoint. Portfolio entries are kept as raw JSON so unknown per-instrument
// fields survive the round trip to the dashboard untouched.
type Snapshot struct {
	TradingActive    bool                       `json:"trading_active"`
	Mode             string                     `json:"mode"`
	Stocks           []string                   `json:"stocks"`
	Portfolio        map[string]json.RawMessage `json:"portfolio"`
	LearningProgress json.RawMessage            `json:"learning_progress,omitempty"`
	Timestamp        string                     `json:"timestamp,omitempty"`
}

// Performance is the per-instrument performance sub-object the aggregator
// interprets.
type Performance struct {
	Balance     float64 `json:"balance"`
	TotalTrades int     `json:"total_trades"`
	TotalReturn float64 `json:"total_return"`
}

// Metrics are the derived analytics shown on the dashboard landing page.
type Metrics struct {
	TotalBalance  float64 `json:"total_balance"`
	TotalTrades   int     `json:"total_trades"`
	AverageReturn float64 `json:"average_return"`
	ActiveSymbols int     `json:"active_symbols"`
}

// ParseSnapshot decodes a backend status body.
func ParseSnapshot(body []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("decode status snapshot: %w", err)
	}
	return &snap, nil
}

// Aggregate sums performance across all portfolio entries. Entries without a
// performance sub-object contribute zero to every sum but still count toward
// the average divisor. An empty portfolio yields all zeros; there is no
// division by zero.
func Aggregate(snap *Snapshot) Metrics {
	var metrics Metrics
	if snap == nil || len(snap.Portfolio) == 0 {
		return metrics
	}

	var totalReturn float64
	for _, entry := range snap.Portfolio {
		metrics.ActiveSymbols++

		var inst struct {
			Performance *Performance `json:"performance"`
		}
		if err := json.Unmarshal(entry, &inst); err != nil || inst.Performance == nil {
			continue
		}
		metrics.TotalBalance += inst.Performance.Balance
		metrics.TotalTrades += inst.Performance.TotalTrades
		totalReturn += inst.Performance.TotalReturn
	}

	metrics.AverageReturn = totalReturn / float64(metrics.ActiveSymbols)
	return metrics
}

// AvailableStocks is the static instrument catalog offered on the
// configuration page.
var AvailableStocks = []string{
	"AAPL", "TSLA", "GOOGL", "MSFT", "NVDA",
	"AMZN", "META", "NFLX", "AMD", "INTC",
}

// DashboardPage is the landing page projection.
type DashboardPage struct {
	BackendConnected bool            `json:"backend_connected"`
	TradingStatus    json.RawMessage `json:"trading_status"`
	Error            string          `json:"error,omitempty"`
	LastUpdated      string          `json:"last_updated"`
}

// BuildDashboard assembles the landing page payload. When the backend is
// unreachable the page still renders, with a null status and the reason.
func BuildDashboard(connected bool, statusBody json.RawMessage, reason string, now time.Time) DashboardPage {
	page := DashboardPage{
		BackendConnected: connected,
		LastUpdated:      now.UTC().Format(time.RFC3339),
	}
	if connected {
		page.TradingStatus = statusBody
	} else {
		page.TradingStatus = json.RawMessage("null")
		page.Error = reason
	}
	return page
}

// ConfigurationPage is the configuration page projection.
type ConfigurationPage struct {
	BackendConnected bool     `json:"backend_connected"`
	CurrentMode      string   `json:"current_mode"`
	CurrentStocks    []string `json:"current_stocks"`
	AvailableStocks  []string `json:"available_stocks"`
}

// BuildConfiguration assembles the configuration page payload. snap may be
// nil when the backend is unreachable; the page falls back to paper mode and
// an empty watchlist but always offers the static catalog.
func BuildConfiguration(connected bool, snap *Snapshot) ConfigurationPage {
	page := ConfigurationPage{
		BackendConnected: connected,
		CurrentMode:      "paper",
		CurrentStocks:    []string{},
		AvailableStocks:  AvailableStocks,
	}
	if connected && snap != nil {
		if snap.Mode != "" {
			page.CurrentMode = snap.Mode
		}
		if snap.Stocks != nil {
			page.CurrentStocks = snap.Stocks
		}
	}
	return page
}

// AnalyticsPage is the analytics page projection.
type AnalyticsPage struct {
	BackendConnected   bool                       `json:"backend_connected"`
	Portfolio          map[string]json.RawMessage `json:"portfolio"`
	LearningProgress   json.RawMessage            `json:"learning_progress"`
	PerformanceMetrics Metrics                    `json:"performance_metrics"`
}

// BuildAnalytics assembles the analytics page payload, deriving performance
// metrics from the snapshot. Defaults are empty rather than absent so the
// page always renders.
func BuildAnalytics(connected bool, snap *Snapshot) AnalyticsPage {
	page := AnalyticsPage{
		BackendConnected: connected,
		Portfolio:        map[string]json.RawMessage{},
		LearningProgress: json.RawMessage("[]"),
	}
	if !connected || snap == nil {
		return page
	}
	if snap.Portfolio != nil {
		page.Portfolio = snap.Portfolio
	}
	if len(snap.LearningProgress) > 0 {
		page.LearningProgress = snap.LearningProgress
	}
	page.PerformanceMetrics = Aggregate(snap)
	return page
}
