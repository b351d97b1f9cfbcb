package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/Campus-Management-System/ERP-System/internal/service"
	"github.com/Campus-Management-System/ERP-System/pkg/response"
)

// SystemHandler exposes health and metrics endpoints.
type SystemHandler struct {
	db      *sqlx.DB
	cache   *redis.Client
	metrics *service.MetricsService
	started time.Time
}

// NewSystemHandler constructs SystemHandler.
func NewSystemHandler(db *sqlx.DB, cache *redis.Client, metrics *service.MetricsService) *SystemHandler {
	return &SystemHandler{db: db, cache: cache, metrics: metrics, started: time.Now().UTC()}
}

// Health godoc
// @Summary Liveness probe
// @Tags System
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	response.OK(c, "", gin.H{
		"status": "ok",
		"uptime": time.Since(h.started).String(),
	})
}

// Ready godoc
// @Summary Readiness probe checking backing stores
// @Tags System
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /health/ready [get]
func (h *SystemHandler) Ready(c *gin.Context) {
	checks := gin.H{}
	healthy := true

	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			checks["database"] = "unreachable"
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	}
	if h.cache != nil {
		if err := h.cache.Ping(c.Request.Context()).Err(); err != nil {
			checks["cache"] = "unreachable"
		} else {
			checks["cache"] = "ok"
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, response.Envelope{Success: healthy, Data: checks})
}

// Prometheus serves the Prometheus scrape endpoint.
func (h *SystemHandler) Prometheus(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// MetricsSummary godoc
// @Summary Aggregated runtime metrics
// @Tags System
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /metrics/summary [get]
func (h *SystemHandler) MetricsSummary(c *gin.Context) {
	response.OK(c, "", h.metrics.Snapshot())
}
