package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dhima/edge-cache/internal/api/response"
	"github.com/dhima/edge-cache/internal/appconfigs"
	"github.com/dhima/edge-cache/internal/cache"
	"github.com/dhima/edge-cache/internal/logging"
	"github.com/dhima/edge-cache/internal/session"
)

// writeServiceError maps cache and session errors onto HTTP responses.
// noEffectStatus is the status used when the store changed nothing.
// It reports whether err was non-nil.
func writeServiceError(c *gin.Context, logger logging.Logger, err error, operation string, noEffectStatus int) bool {
	if err == nil {
		return false
	}

	var validationErr appconfigs.ValidationError
	switch {
	case errors.As(err, &validationErr):
		response.BadRequest(c, "validation failed", validationErr.Error())
	case errors.Is(err, session.ErrNotInitialized):
		response.ServiceUnavailable(c, "store not initialized", "call POST /api/v1/store/initialize first")
	case errors.Is(err, session.ErrUnknownConcern):
		response.NotFound(c, err.Error())
	case cache.IsInvalid(err):
		response.BadRequest(c, "invalid request", err.Error())
	case cache.IsNoEffect(err):
		response.Error(c, noEffectStatus, "no documents were affected", err.Error())
	default:
		logger.Error(operation+" failed",
			zap.Error(err),
			zap.String("request_id", response.GetRequestID(c)),
		)
		response.Internal(c, operation, err)
	}
	return true
}
