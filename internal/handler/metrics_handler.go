package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/service"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/response"
)

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Alive answers the liveness probe the mobile clients and the deployment
// both poke.
func (h *MetricsHandler) Alive(c *gin.Context) {
	response.Text(c, http.StatusOK, "I'm alive")
}
