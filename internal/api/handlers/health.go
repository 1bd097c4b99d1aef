package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dhima/edge-cache/internal/api/response"
	"github.com/dhima/edge-cache/internal/logging"
)

// StoreState reports whether the document store is open.
type StoreState interface {
	Initialized() bool
}

// ExportSchedule reports when the next scheduled log export runs.
type ExportSchedule interface {
	Next() time.Time
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	logger   logging.Logger
	store    StoreState
	schedule ExportSchedule
}

// NewHealthHandler creates a new health check handler. store may be nil.
func NewHealthHandler(logger logging.Logger, store StoreState) *HealthHandler {
	return &HealthHandler{logger: logger, store: store}
}

// WithExportSchedule adds the next scheduled log export to the response.
func (h *HealthHandler) WithExportSchedule(schedule ExportSchedule) *HealthHandler {
	h.schedule = schedule
	return h
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status           string `json:"status" example:"ok"`
	Service          string `json:"service" example:"edge-cache"`
	Version          string `json:"version" example:"1.0.0"`
	StoreInitialized bool   `json:"store_initialized" example:"true"`
	// NextLogExport is omitted when no export schedule is configured.
	NextLogExport *time.Time `json:"next_log_export,omitempty" example:"2025-01-03T00:00:00Z"`
} // @name HealthResponse

// Health godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API service. An uninitialised store does not make the service unhealthy.
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:           "ok",
		Service:          "edge-cache",
		Version:          "1.0.0",
		StoreInitialized: h.store != nil && h.store.Initialized(),
	}
	if h.schedule != nil {
		next := h.schedule.Next()
		resp.NextLogExport = &next
	}
	response.OK(c, resp)
}
