package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"botgate/internal/analytics"
	"botgate/internal/botclient"
	"botgate/internal/logger"
	"botgate/internal/monitoring"
)

// DashboardHandler serves the aggregated page-data projections: landing
// page, configuration page, and analytics page. All three derive from one
// fresh /status snapshot per request; nothing is cached, and every page
// degrades to a documented default when the backend is unreachable.
type DashboardHandler struct {
	proxy
	now func() time.Time
}

// NewDashboardHandler creates a new dashboard projection handler.
func NewDashboardHandler(backend Backend, metrics *monitoring.Metrics, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		proxy: newProxy(backend, metrics, log),
		now:   time.Now,
	}
}

// snapshot fetches the status snapshot under the tight page budget. The
// returned reason distinguishes a backend that answered with a failure from
// one that could not be reached.
func (h *DashboardHandler) snapshot(c *gin.Context) (snap *analytics.Snapshot, body []byte, connected bool, reason string) {
	resp, err := h.forward(c, botclient.OpSnapshot, nil, nil, nil)
	if err != nil {
		return nil, nil, false, "Backend connection failed"
	}
	if !resp.Successful() {
		return nil, nil, false, "Backend not responding"
	}

	snap, parseErr := analytics.ParseSnapshot(resp.Body)
	if parseErr != nil {
		h.log.WithError(parseErr).Warn("unparseable status snapshot")
		return nil, nil, false, "Backend not responding"
	}
	return snap, resp.Body, true, ""
}

// Dashboard returns the landing page payload.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	_, body, connected, reason := h.snapshot(c)
	c.JSON(http.StatusOK, analytics.BuildDashboard(connected, body, reason, h.now()))
}

// Configuration returns the configuration page payload.
func (h *DashboardHandler) Configuration(c *gin.Context) {
	snap, _, connected, _ := h.snapshot(c)
	c.JSON(http.StatusOK, analytics.BuildConfiguration(connected, snap))
}

// Analytics returns the analytics page payload with derived metrics.
func (h *DashboardHandler) Analytics(c *gin.Context) {
	snap, _, connected, _ := h.snapshot(c)
	c.JSON(http.StatusOK, analytics.BuildAnalytics(connected, snap))
}
