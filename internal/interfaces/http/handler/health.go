package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping() error
}

// HealthHandler exposes a liveness/readiness endpoint
type HealthHandler struct {
	db  Pinger
	app string
	env string
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger, app, env string) *HealthHandler {
	return &HealthHandler{db: db, app: app, env: env}
}

// RegisterRoutes registers the health route
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}

// HealthResponse is the health endpoint payload
type HealthResponse struct {
	Status   string    `json:"status"`
	App      string    `json:"app,omitempty"`
	Env      string    `json:"env,omitempty"`
	Database string    `json:"database"`
	Time     time.Time `json:"time"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:   "ok",
		App:      h.app,
		Env:      h.env,
		Database: "up",
		Time:     time.Now().UTC(),
	}

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			resp.Status = "degraded"
			resp.Database = "down"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
	}

	c.JSON(http.StatusOK, resp)
}
