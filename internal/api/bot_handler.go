package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"botgate/internal/botclient"
	"botgate/internal/logger"
	"botgate/internal/monitoring"
)

// BotHandler proxies bot-lifecycle operations. Responses use the uniform
// envelope strategy.
type BotHandler struct {
	proxy
}

// NewBotHandler creates a new bot lifecycle handler.
func NewBotHandler(backend Backend, metrics *monitoring.Metrics, log *logger.Logger) *BotHandler {
	return &BotHandler{proxy: newProxy(backend, metrics, log)}
}

// Start launches the autonomous trading bot.
func (h *BotHandler) Start(c *gin.Context) {
	resp, err := h.forward(c, botclient.OpStart, nil, nil, nil)
	renderEnvelope(c, resp, err, "Trading bot started successfully", "Failed to start trading bot")
}

// Stop halts the autonomous trading bot.
func (h *BotHandler) Stop(c *gin.Context) {
	resp, err := h.forward(c, botclient.OpStop, nil, nil, nil)
	renderEnvelope(c, resp, err, "Trading bot stopped successfully", "Failed to stop trading bot")
}

// Status returns the current trading status and performance.
func (h *BotHandler) Status(c *gin.Context) {
	resp, err := h.forward(c, botclient.OpStatus, nil, nil, nil)
	renderEnvelope(c, resp, err, "", "Failed to get status")
}

// SwitchMode switches between paper and live trading.
func (h *BotHandler) SwitchMode(c *gin.Context) {
	var req SwitchModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.forward(c, botclient.OpSwitchMode, nil, nil, map[string]string{"mode": req.Mode})
	renderEnvelope(c, resp, err, fmt.Sprintf("Switched to %s mode", req.Mode), "Failed to switch trading mode")
}

// Configure replaces the watched instrument list.
func (h *BotHandler) Configure(c *gin.Context) {
	var req ConfigureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.forward(c, botclient.OpConfigure, nil, nil, map[string]interface{}{"stocks": req.Stocks})
	renderEnvelope(c, resp, err, "Stock configuration updated", "Failed to configure stocks")
}

// Evaluate runs an evaluation for one instrument's agent.
func (h *BotHandler) Evaluate(c *gin.Context) {
	symbol := c.Param("symbol")
	resp, err := h.forward(c, botclient.OpEvaluate, map[string]string{"symbol": symbol}, nil, nil)
	renderEnvelope(c, resp, err, "", "Failed to evaluate agent")
}

// Retrain starts a retraining run for one instrument's agent.
func (h *BotHandler) Retrain(c *gin.Context) {
	var req RetrainRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	timesteps := DefaultRetrainTimesteps
	if req.Timesteps != nil {
		timesteps = *req.Timesteps
	}

	symbol := c.Param("symbol")
	resp, err := h.forward(c, botclient.OpRetrain, map[string]string{"symbol": symbol}, nil, map[string]interface{}{"timesteps": timesteps})
	renderEnvelope(c, resp, err, "Agent retraining started", "Failed to start retraining")
}

// Logs returns recent backend log lines.
func (h *BotHandler) Logs(c *gin.Context) {
	resp, err := h.forward(c, botclient.OpLogs, nil, nil, nil)
	renderEnvelope(c, resp, err, "", "Failed to get logs")
}

// Health checks backend reachability. The response carries an explicit
// backend_connected flag so the dashboard can render a disconnected banner
// instead of erroring out.
func (h *BotHandler) Health(c *gin.Context) {
	resp, err := h.forward(c, botclient.OpHealth, nil, nil, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, HealthResponse{
			Success:          false,
			Message:          "Cannot connect to backend",
			BackendConnected: false,
			Error:            err.Error(),
		})
		return
	}

	if !resp.Successful() {
		c.JSON(resp.StatusCode, HealthResponse{
			Success:          false,
			Message:          "Backend unhealthy",
			BackendConnected: false,
			Error:            string(resp.Body),
		})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{
		Success:          true,
		Data:             resp.Body,
		BackendConnected: true,
	})
}
