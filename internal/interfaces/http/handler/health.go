package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/troves/backend/internal/interfaces/http/dto"
)

// Pinger is anything that can report whether a dependency is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler answers the liveness and readiness probe
type HealthHandler struct {
	BaseHandler
	db      Pinger
	version string
	now     func() time.Time
}

// HealthResponse is the probe payload
type HealthResponse struct {
	Status   string    `json:"status"`
	Database string    `json:"database"`
	Version  string    `json:"version,omitempty"`
	Time     time.Time `json:"time"`
}

// NewHealthHandler creates a HealthHandler. db may be nil in tests.
func NewHealthHandler(db Pinger, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version, now: time.Now}
}

// Check pings the database with a short timeout. An unreachable database
// yields 503 with status "degraded".
func (h *HealthHandler) Check(c *gin.Context) {
	resp := HealthResponse{
		Status:   "ok",
		Database: "ok",
		Version:  h.version,
		Time:     h.now().UTC(),
	}
	status := http.StatusOK

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			resp.Status = "degraded"
			resp.Database = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, dto.Response{Success: status == http.StatusOK, Data: resp})
}
