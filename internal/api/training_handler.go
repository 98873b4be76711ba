package api

import (
	"errors"
	"io"
	"net/url"

	"github.com/gin-gonic/gin"

	"botgate/internal/botclient"
	"botgate/internal/logger"
	"botgate/internal/monitoring"
)

// TrainingHandler proxies the advanced training workflow. Each step is an
// independent pass-through: the gateway sequences nothing and tracks no
// training state. The opaque training_id relayed to the status poll is the
// sole source of truth for progress.
type TrainingHandler struct {
	proxy
}

// NewTrainingHandler creates a new training workflow handler.
func NewTrainingHandler(backend Backend, metrics *monitoring.Metrics, log *logger.Logger) *TrainingHandler {
	return &TrainingHandler{proxy: newProxy(backend, metrics, log)}
}

// SearchStocks searches instruments eligible for training.
func (h *TrainingHandler) SearchStocks(c *gin.Context) {
	query := url.Values{}
	if q := c.Query("query"); q != "" {
		query.Set("query", q)
	}
	resp, err := h.forward(c, botclient.OpSearchStocks, nil, query, nil)
	renderPassthrough(c, resp, err, "Failed to search stocks")
}

// StockInfo returns instrument detail for the training UI.
func (h *TrainingHandler) StockInfo(c *gin.Context) {
	symbol := c.Param("symbol")
	resp, err := h.forward(c, botclient.OpStockInfo, map[string]string{"symbol": symbol}, nil, nil)
	renderPassthrough(c, resp, err, "Failed to get stock info")
}

// ImportData imports historical data for training. The request body is
// forwarded verbatim; its schema belongs to the backend.
func (h *TrainingHandler) ImportData(c *gin.Context) {
	body, err := opaqueBody(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.forward(c, botclient.OpImportData, nil, nil, body)
	renderPassthrough(c, resp, err, "Failed to import data")
}

// TrainModel starts a model training run.
func (h *TrainingHandler) TrainModel(c *gin.Context) {
	body, err := opaqueBody(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.forward(c, botclient.OpTrainModel, nil, nil, body)
	renderPassthrough(c, resp, err, "Failed to train model")
}

// Simulation runs a trading simulation against a trained model.
func (h *TrainingHandler) Simulation(c *gin.Context) {
	body, err := opaqueBody(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.forward(c, botclient.OpSimulation, nil, nil, body)
	renderPassthrough(c, resp, err, "Failed to run simulation")
}

// Status polls a training run by its opaque training_id.
func (h *TrainingHandler) Status(c *gin.Context) {
	query := url.Values{}
	if id := c.Query("training_id"); id != "" {
		query.Set("training_id", id)
	}
	resp, err := h.forward(c, botclient.OpTrainingStatus, nil, query, nil)
	renderPassthrough(c, resp, err, "Failed to get training status")
}

// Models lists models available for training runs.
func (h *TrainingHandler) Models(c *gin.Context) {
	resp, err := h.forward(c, botclient.OpModels, nil, nil, nil)
	renderPassthrough(c, resp, err, "Failed to get models")
}

// SaveModel persists a trained model on the backend.
func (h *TrainingHandler) SaveModel(c *gin.Context) {
	var req SaveModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	body := map[string]interface{}{
		"symbol":      req.Symbol,
		"model_name":  req.ModelName,
		"description": req.Description,
	}
	resp, err := h.forward(c, botclient.OpSaveModel, nil, nil, body)
	renderPassthrough(c, resp, err, "Failed to save model")
}

// SavedModels lists models already persisted on the backend.
func (h *TrainingHandler) SavedModels(c *gin.Context) {
	resp, err := h.forward(c, botclient.OpSavedModels, nil, nil, nil)
	renderPassthrough(c, resp, err, "Failed to get saved models")
}

// opaqueBody decodes the request body into an untyped map for verbatim
// forwarding. An empty body forwards as an empty object.
func opaqueBody(c *gin.Context) (map[string]interface{}, error) {
	body := map[string]interface{}{}
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return body, nil
}
