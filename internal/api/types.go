package api

import (
	"encoding/json"
	"time"
)

// Response is the uniform envelope returned by bot-lifecycle endpoints.
// Exactly one of Data or Error is populated; Message is optional
// human-readable context.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// HealthResponse extends the envelope with the backend connectivity flag the
// dashboard header renders.
type HealthResponse struct {
	Success          bool            `json:"success"`
	Data             json.RawMessage `json:"data,omitempty"`
	Error            string          `json:"error,omitempty"`
	Message          string          `json:"message,omitempty"`
	BackendConnected bool            `json:"backend_connected"`
}

// SwitchModeRequest selects paper or live trading.
type SwitchModeRequest struct {
	Mode string `json:"mode" binding:"required,oneof=paper live"`
}

// ConfigureRequest replaces the watched instrument list. Symbols are
// exchange tickers, at most 10 characters each.
type ConfigureRequest struct {
	Stocks []string `json:"stocks" binding:"required,min=1,dive,required,max=10"`
}

// RetrainRequest tunes a retraining run. Timesteps defaults to 50000 when
// omitted and must stay within [1000, 1000000] when supplied.
type RetrainRequest struct {
	Timesteps *int `json:"timesteps" binding:"omitempty,min=1000,max=1000000"`
}

// DefaultRetrainTimesteps is forwarded when the caller omits timesteps.
const DefaultRetrainTimesteps = 50000

// SaveModelRequest persists a trained model on the backend.
type SaveModelRequest struct {
	Symbol      string `json:"symbol" binding:"required,max=10"`
	ModelName   string `json:"model_name" binding:"omitempty,max=100"`
	Description string `json:"description" binding:"omitempty,max=255"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents an authentication response
type AuthResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
}
