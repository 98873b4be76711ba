package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"botgate/internal/botclient"
	"botgate/internal/logger"
	"botgate/internal/monitoring"
)

// transportMessage is the fixed message returned whenever the backend could
// not be reached at all, regardless of operation.
const transportMessage = "Error communicating with trading bot"

// Backend is the outbound client surface the handlers depend on. Satisfied
// by *botclient.Client; tests substitute a spy.
type Backend interface {
	Do(ctx context.Context, op botclient.Operation, pathParams map[string]string, query url.Values, body interface{}) (*botclient.RawResponse, error)
}

// proxy is the shared forwarding core embedded in every handler: it times
// the backend call, records metrics, and exposes the two response-mapping
// strategies.
type proxy struct {
	backend Backend
	metrics *monitoring.Metrics
	log     *logger.Logger
}

func newProxy(backend Backend, metrics *monitoring.Metrics, log *logger.Logger) proxy {
	if log == nil {
		log = logger.Default()
	}
	return proxy{backend: backend, metrics: metrics, log: log}
}

// forward issues one backend call and records its outcome.
func (p proxy) forward(c *gin.Context, op botclient.Operation, pathParams map[string]string, query url.Values, body interface{}) (*botclient.RawResponse, error) {
	start := time.Now()
	resp, err := p.backend.Do(c.Request.Context(), op, pathParams, query, body)
	duration := time.Since(start)

	if p.metrics == nil {
		return resp, err
	}

	switch {
	case err != nil:
		class := "transport"
		if te, ok := botclient.IsTransportError(err); ok && te.Timeout {
			class = "timeout"
		}
		p.metrics.RecordBackendRequest(op.Name, "failure", duration)
		p.metrics.RecordBackendFailure(op.Name, class)
	case !resp.Successful():
		p.metrics.RecordBackendRequest(op.Name, "failure", duration)
		p.metrics.RecordBackendFailure(op.Name, "backend_error")
	default:
		p.metrics.RecordBackendRequest(op.Name, "success", duration)
	}

	return resp, err
}

// renderEnvelope is the bot-lifecycle response strategy: backend payloads
// are wrapped in the uniform envelope, backend failure statuses are relayed,
// and transport failures collapse to a fixed 500.
func renderEnvelope(c *gin.Context, resp *botclient.RawResponse, err error, successMsg, failureMsg string) {
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Message: transportMessage,
			Error:   err.Error(),
		})
		return
	}

	if !resp.Successful() {
		c.JSON(resp.StatusCode, Response{
			Success: false,
			Message: failureMsg,
			Error:   string(resp.Body),
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: successMsg,
		Data:    rawData(resp.Body),
	})
}

// renderPassthrough is the training-family response strategy: backend JSON
// is relayed unchanged on success, and failures become a bare error object.
// Preserved as a distinct strategy; the advanced-training UI consumes this
// shape directly.
func renderPassthrough(c *gin.Context, resp *botclient.RawResponse, err error, failureMsg string) {
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if !resp.Successful() {
		c.JSON(resp.StatusCode, gin.H{"error": failureMsg})
		return
	}

	body := resp.Body
	if len(body) == 0 {
		body = []byte("{}")
	}
	c.Data(http.StatusOK, "application/json", body)
}

// rawData keeps the backend payload opaque while still embedding it as JSON.
func rawData(body []byte) interface{} {
	if len(body) == 0 {
		return nil
	}
	return json.RawMessage(body)
}

// badRequest renders a validation failure. Validation short-circuits before
// any backend call.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error:   err.Error(),
	})
}
