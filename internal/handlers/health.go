package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	tenantdb "siteforge/internal/mongo"
	natsClient "siteforge/internal/nats"
)

var startTime = time.Now()

// HealthHandler handles the platform server's health endpoints.
type HealthHandler struct {
	db         *gorm.DB
	mongo      *tenantdb.Client
	natsClient *natsClient.Client
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db *gorm.DB, mongo *tenantdb.Client, nc *natsClient.Client) *HealthHandler {
	return &HealthHandler{
		db:         db,
		mongo:      mongo,
		natsClient: nc,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Health reports liveness.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Service:   "siteforge-platform",
		Version:   "1.0.0",
		Uptime:    time.Since(startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready reports readiness of the registry database, the content store and
// the event bus.
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := make(map[string]string)
	allReady := true

	checks["postgres"] = "healthy"
	if sqlDB, err := h.db.DB(); err != nil {
		checks["postgres"] = "unhealthy: no connection"
		allReady = false
	} else if err := sqlDB.Ping(); err != nil {
		checks["postgres"] = "unhealthy: ping failed"
		allReady = false
	}

	checks["mongo"] = "healthy"
	if h.mongo == nil {
		checks["mongo"] = "unhealthy: not initialized"
		allReady = false
	} else if err := h.mongo.Ping(c.Request.Context()); err != nil {
		checks["mongo"] = "unhealthy: ping failed"
		allReady = false
	}

	// NATS is optional; report it without failing readiness.
	if h.natsClient.IsConnected() {
		checks["nats"] = "healthy"
	} else {
		checks["nats"] = "disconnected"
	}

	response := HealthResponse{
		Service:   "siteforge-platform",
		Version:   "1.0.0",
		Uptime:    time.Since(startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}
	if allReady {
		response.Status = "ready"
		c.JSON(http.StatusOK, response)
	} else {
		response.Status = "not ready"
		c.JSON(http.StatusServiceUnavailable, response)
	}
}

// TenantHealthHandler serves the health endpoint of one dedicated tenant
// server. The payload identifies which tenant and database this process is
// pinned to.
type TenantHealthHandler struct {
	tenantName string
	database   string
}

// NewTenantHealthHandler creates the dedicated-process health handler.
func NewTenantHealthHandler(tenantName, database string) *TenantHealthHandler {
	return &TenantHealthHandler{
		tenantName: tenantName,
		database:   database,
	}
}

// Health reports the tenant server's identity and liveness.
func (h *TenantHealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"tenant":    h.tenantName,
		"database":  h.database,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
