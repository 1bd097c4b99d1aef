// Package response writes the JSON envelopes returned by every API route.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const traceIDKey = "request_id"

// SuccessResponse represents a successful API response.
type SuccessResponse struct {
	Data    interface{} `json:"data"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse represents an error API response.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
}

// Success sends a successful response with data.
func Success(c *gin.Context, statusCode int, data interface{}, message string) {
	c.JSON(statusCode, SuccessResponse{Data: data, Message: message})
}

// OK sends data with 200 and no message.
func OK(c *gin.Context, data interface{}) {
	Success(c, http.StatusOK, data, "")
}

// Created sends data with 201.
func Created(c *gin.Context, data interface{}, message string) {
	Success(c, http.StatusCreated, data, message)
}

// Outcome answers an idempotent command: 201 with createdMsg when it
// created something, otherwise 200 with existingMsg.
func Outcome(c *gin.Context, created bool, data interface{}, createdMsg, existingMsg string) {
	if created {
		Created(c, data, createdMsg)
		return
	}
	Success(c, http.StatusOK, data, existingMsg)
}

// Text sends a 200 plain-text body.
func Text(c *gin.Context, body string) {
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}

// Error sends an error envelope carrying the request's trace ID.
func Error(c *gin.Context, statusCode int, err string, details interface{}) {
	c.JSON(statusCode, ErrorResponse{
		Error:   err,
		Details: details,
		TraceID: GetRequestID(c),
	})
}

// BadRequest sends a 400.
func BadRequest(c *gin.Context, err string, details interface{}) {
	Error(c, http.StatusBadRequest, err, details)
}

// NotFound sends a 404.
func NotFound(c *gin.Context, err string) {
	Error(c, http.StatusNotFound, err, nil)
}

// ServiceUnavailable sends a 503.
func ServiceUnavailable(c *gin.Context, err string, details interface{}) {
	Error(c, http.StatusServiceUnavailable, err, details)
}

// Internal sends a 500 for a failed operation.
func Internal(c *gin.Context, operation string, err error) {
	Error(c, http.StatusInternalServerError, operation+" failed", err.Error())
}

// GetRequestID returns the request ID set by the RequestID middleware.
// Without one, a UUID is generated and stored so later calls on the same
// request agree.
func GetRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(traceIDKey); exists {
		if id, ok := requestID.(string); ok && id != "" {
			return id
		}
	}
	id := uuid.New().String()
	c.Set(traceIDKey, id)
	return id
}
