package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func TestSuccess_WhenCalled_ThenReturnsSuccessResponse(t *testing.T) {
	// Arrange
	c, w := newContext()

	// Act
	Success(c, http.StatusOK, map[string]string{"key": "value"}, "success message")

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	var response SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "success message", response.Message)
	assert.Equal(t, map[string]any{"key": "value"}, response.Data)
}

func TestError_WhenCalledWithRequestID_ThenIncludesTraceID(t *testing.T) {
	// Arrange
	c, w := newContext()
	c.Set("request_id", "test-trace-id")

	// Act
	Error(c, http.StatusBadRequest, "test error", nil)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "test error", response.Error)
	assert.Equal(t, "test-trace-id", response.TraceID)
}

func TestError_WhenCalledWithoutRequestID_ThenGeneratesTraceID(t *testing.T) {
	// Arrange
	c, w := newContext()

	// Act
	Error(c, http.StatusInternalServerError, "test error", "details")

	// Assert
	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotEmpty(t, response.TraceID)
	assert.Equal(t, "details", response.Details)
}

func TestStatusHelpers_WhenCalled_ThenWriteExpectedStatus(t *testing.T) {
	cases := []struct {
		name   string
		write  func(c *gin.Context)
		status int
	}{
		{"bad request", func(c *gin.Context) { BadRequest(c, "bad", "details") }, http.StatusBadRequest},
		{"not found", func(c *gin.Context) { NotFound(c, "missing") }, http.StatusNotFound},
		{"service unavailable", func(c *gin.Context) { ServiceUnavailable(c, "down", nil) }, http.StatusServiceUnavailable},
		{"internal", func(c *gin.Context) { Internal(c, "save", errors.New("boom")) }, http.StatusInternalServerError},
		{"created", func(c *gin.Context) { Created(c, "x", "made") }, http.StatusCreated},
		{"ok", func(c *gin.Context) { OK(c, "x") }, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			c, w := newContext()

			// Act
			tc.write(c)

			// Assert
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestOutcome_WhenCreated_ThenReturns201WithCreatedMessage(t *testing.T) {
	// Arrange
	c, w := newContext()

	// Act
	Outcome(c, true, "x", "observer registered", "observer already registered")

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"observer registered"`)
}

func TestOutcome_WhenAlreadyPresent_ThenReturns200WithExistingMessage(t *testing.T) {
	// Arrange
	c, w := newContext()

	// Act
	Outcome(c, false, "x", "observer registered", "observer already registered")

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"observer already registered"`)
}

func TestInternal_WhenCalled_ThenNamesOperationAndCause(t *testing.T) {
	// Arrange
	c, w := newContext()

	// Act
	Internal(c, "save app config", errors.New("disk full"))

	// Assert
	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "save app config failed", response.Error)
	assert.Equal(t, "disk full", response.Details)
}

func TestText_WhenCalled_ThenWritesPlainText(t *testing.T) {
	// Arrange
	c, w := newContext()

	// Act
	Text(c, "line\n")

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "line\n", w.Body.String())
}

func TestGetRequestID_WhenRequestIDExists_ThenReturnsIt(t *testing.T) {
	// Arrange
	c, _ := newContext()
	c.Set("request_id", "abc")

	// Act
	id := GetRequestID(c)

	// Assert
	assert.Equal(t, "abc", id)
}

func TestGetRequestID_WhenRequestIDIsNotString_ThenGeneratesNew(t *testing.T) {
	// Arrange
	c, _ := newContext()
	c.Set("request_id", 42)

	// Act
	id := GetRequestID(c)

	// Assert
	assert.NotEmpty(t, id)
	assert.NotEqual(t, "42", id)
}

func TestGetRequestID_WhenMissing_ThenGeneratedIDIsStable(t *testing.T) {
	// Arrange
	c, w := newContext()

	// Act
	logged := GetRequestID(c)
	Error(c, http.StatusInternalServerError, "failed", nil)

	// Assert
	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, logged, response.TraceID)
}
