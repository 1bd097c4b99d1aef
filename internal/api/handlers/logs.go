package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dhima/edge-cache/internal/api/response"
	"github.com/dhima/edge-cache/internal/logbuffer"
	"github.com/dhima/edge-cache/internal/logexport"
	"github.com/dhima/edge-cache/internal/logging"
	"github.com/dhima/edge-cache/internal/models"
)

// LogExporter writes the buffer to a file.
type LogExporter interface {
	Export(ctx context.Context) (logexport.Result, error)
}

// LogHandler serves the in-memory log buffer.
type LogHandler struct {
	logger   logging.Logger
	buf      *logbuffer.Buffer
	exporter LogExporter
}

// NewLogHandler creates a new log handler. exporter may be nil, in which case
// file exports are rejected.
func NewLogHandler(logger logging.Logger, buf *logbuffer.Buffer, exporter LogExporter) *LogHandler {
	return &LogHandler{
		logger:   logger.With(zap.String("handler", "logs")),
		buf:      buf,
		exporter: exporter,
	}
}

// GetLogs godoc
// @Summary List buffered log entries
// @Description Returns a snapshot of the log buffer, oldest first.
// @Tags Logs
// @Produce json
// @Success 200 {object} models.LogListResponse
// @Router /api/v1/logs [get]
func (h *LogHandler) GetLogs(c *gin.Context) {
	entries := h.buf.Snapshot()
	out := make([]models.LogEntry, len(entries))
	for i, entry := range entries {
		out[i] = models.LogEntry{
			Timestamp: entry.Timestamp,
			Level:     entry.Level.String(),
			Target:    entry.Target,
			Message:   entry.Message,
		}
	}
	response.OK(c, models.LogListResponse{Entries: out, Count: len(out)})
}

// ClearLogs godoc
// @Summary Clear the log buffer
// @Description Removes every buffered entry, then records that the buffer was cleared.
// @Tags Logs
// @Produce json
// @Success 200 {object} models.LogCountResponse
// @Router /api/v1/logs [delete]
func (h *LogHandler) ClearLogs(c *gin.Context) {
	h.buf.Clear()
	h.buf.Push(logbuffer.LevelInfo, "logs", "Logs cleared by user")
	response.OK(c, models.LogCountResponse{Count: h.buf.Len(), Capacity: h.buf.Cap()})
}

// GetLogCount godoc
// @Summary Count buffered log entries
// @Tags Logs
// @Produce json
// @Success 200 {object} models.LogCountResponse
// @Router /api/v1/logs/count [get]
func (h *LogHandler) GetLogCount(c *gin.Context) {
	response.OK(c, models.LogCountResponse{Count: h.buf.Len(), Capacity: h.buf.Cap()})
}

// ExportLogsText godoc
// @Summary Export logs as text
// @Description Renders the buffer as one escaped line per entry: "[timestamp] LEVEL [target] message".
// @Tags Logs
// @Produce plain
// @Success 200 {string} string "Rendered log text"
// @Router /api/v1/logs/export [get]
func (h *LogHandler) ExportLogsText(c *gin.Context) {
	response.Text(c, h.buf.RenderText())
}

// ExportLogsFile godoc
// @Summary Export logs to a file
// @Description Writes the rendered buffer to a timestamped file in the export directory.
// @Tags Logs
// @Produce json
// @Success 201 {object} models.LogExportResponse
// @Failure 503 {object} response.ErrorResponse "File export disabled"
// @Failure 500 {object} response.ErrorResponse "Export failed"
// @Router /api/v1/logs/export [post]
func (h *LogHandler) ExportLogsFile(c *gin.Context) {
	if h.exporter == nil {
		response.ServiceUnavailable(c, "log export disabled", nil)
		return
	}

	res, err := h.exporter.Export(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to export logs",
			zap.Error(err),
			zap.String("request_id", response.GetRequestID(c)),
		)
		response.Error(c, http.StatusInternalServerError, "failed to export logs", err.Error())
		return
	}
	response.Created(c, models.LogExportResponse{
		Path:    res.Path,
		Entries: res.Entries,
		Bytes:   res.Bytes,
	}, "logs exported")
}
