package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhima/edge-cache/internal/logbuffer"
	"github.com/dhima/edge-cache/internal/logexport"
	"github.com/dhima/edge-cache/internal/logging"
	"github.com/dhima/edge-cache/internal/models"
	"github.com/dhima/edge-cache/pkg/clock"
)

type fakeLogExporter struct {
	result logexport.Result
	err    error
	calls  int
}

func (f *fakeLogExporter) Export(ctx context.Context) (logexport.Result, error) {
	f.calls++
	return f.result, f.err
}

func newLogRouter(buf *logbuffer.Buffer, exporter LogExporter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewLogHandler(logging.NewNoOpLogger(), buf, exporter)
	r := gin.New()
	r.GET("/api/v1/logs", h.GetLogs)
	r.DELETE("/api/v1/logs", h.ClearLogs)
	r.GET("/api/v1/logs/count", h.GetLogCount)
	r.GET("/api/v1/logs/export", h.ExportLogsText)
	r.POST("/api/v1/logs/export", h.ExportLogsFile)
	return r
}

func fixedBuffer(capacity int) *logbuffer.Buffer {
	at := time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)
	return logbuffer.New(capacity, logbuffer.WithClock(clock.NewFixed(at)))
}

func TestGetLogs_WhenEntriesBuffered_ThenReturnsOldestFirst(t *testing.T) {
	// Arrange
	buf := fixedBuffer(10)
	buf.Push(logbuffer.LevelInfo, "cache", "first")
	buf.Push(logbuffer.LevelError, "storage", "second")
	r := newLogRouter(buf, nil)

	// Act
	w := serve(r, http.MethodGet, "/api/v1/logs", "")

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data models.LogListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data.Entries, 2)
	assert.Equal(t, 2, body.Data.Count)
	assert.Equal(t, "first", body.Data.Entries[0].Message)
	assert.Equal(t, "INFO", body.Data.Entries[0].Level)
	assert.Equal(t, "cache", body.Data.Entries[0].Target)
	assert.Equal(t, "ERROR", body.Data.Entries[1].Level)
}

func TestClearLogs_WhenCalled_ThenLeavesOnlyClearedEntry(t *testing.T) {
	// Arrange
	buf := fixedBuffer(10)
	buf.Push(logbuffer.LevelInfo, "cache", "one")
	buf.Push(logbuffer.LevelInfo, "cache", "two")
	r := newLogRouter(buf, nil)

	// Act
	w := serve(r, http.MethodDelete, "/api/v1/logs", "")

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	entries := buf.Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, "Logs cleared by user", entries[0].Message)
	assert.Equal(t, logbuffer.LevelInfo, entries[0].Level)
	assert.Contains(t, w.Body.String(), `"count":1`)
}

func TestGetLogCount_WhenBufferWrapped_ThenReportsCapacity(t *testing.T) {
	// Arrange
	buf := fixedBuffer(3)
	for i := 0; i < 5; i++ {
		buf.Push(logbuffer.LevelDebug, "t", "m")
	}
	r := newLogRouter(buf, nil)

	// Act
	w := serve(r, http.MethodGet, "/api/v1/logs/count", "")

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":3`)
	assert.Contains(t, w.Body.String(), `"capacity":3`)
}

func TestExportLogsText_WhenCalled_ThenReturnsRenderedText(t *testing.T) {
	// Arrange
	buf := fixedBuffer(10)
	buf.Push(logbuffer.LevelWarn, "cache", "line one\nline two")
	r := newLogRouter(buf, nil)

	// Act
	w := serve(r, http.MethodGet, "/api/v1/logs/export", "")

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "[2025-11-05 10:00:00.000 UTC] WARN [cache] line one\\nline two\n", w.Body.String())
}

func TestExportLogsFile_WhenExported_ThenReturns201(t *testing.T) {
	// Arrange
	exporter := &fakeLogExporter{result: logexport.Result{Path: "logs/edge-cache-1.log", Entries: 4, Bytes: 120}}
	r := newLogRouter(fixedBuffer(10), exporter)

	// Act
	w := serve(r, http.MethodPost, "/api/v1/logs/export", "")

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, exporter.calls)
	assert.Contains(t, w.Body.String(), `"path":"logs/edge-cache-1.log"`)
	assert.Contains(t, w.Body.String(), `"entries":4`)
}

func TestExportLogsFile_WhenExportFails_ThenReturns500(t *testing.T) {
	// Arrange
	r := newLogRouter(fixedBuffer(10), &fakeLogExporter{err: errors.New("create export directory: read-only file system")})

	// Act
	w := serve(r, http.MethodPost, "/api/v1/logs/export", "")

	// Assert
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "read-only file system")
}

func TestExportLogsFile_WhenNoExporter_ThenReturns503(t *testing.T) {
	// Arrange
	r := newLogRouter(fixedBuffer(10), nil)

	// Act
	w := serve(r, http.MethodPost, "/api/v1/logs/export", "")

	// Assert
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
