package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dhima/edge-cache/internal/api/response"
	"github.com/dhima/edge-cache/internal/logging"
	"github.com/dhima/edge-cache/internal/models"
)

// AppConfigService is the app config use-case layer.
type AppConfigService interface {
	Add(ctx context.Context, req models.AppConfigRequest) (string, error)
	Update(ctx context.Context, id string, req models.AppConfigRequest) (string, error)
	Delete(ctx context.Context, id string) (string, error)
	List(ctx context.Context) ([]models.AppConfig, error)
}

// AppConfigHandler serves the cached app configs.
type AppConfigHandler struct {
	logger  logging.Logger
	service AppConfigService
}

// NewAppConfigHandler creates a new app config handler.
func NewAppConfigHandler(logger logging.Logger, service AppConfigService) *AppConfigHandler {
	return &AppConfigHandler{
		logger:  logger.With(zap.String("handler", "app_config")),
		service: service,
	}
}

// ListAppConfigs godoc
// @Summary List app configs
// @Description Returns every cached app config ordered by name. Records that fail schema validation are skipped.
// @Tags AppConfigs
// @Produce json
// @Success 200 {object} models.AppConfigListResponse
// @Failure 503 {object} response.ErrorResponse "Store not initialized"
// @Failure 500 {object} response.ErrorResponse "Store failure"
// @Router /api/v1/app-configs [get]
func (h *AppConfigHandler) ListAppConfigs(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if writeServiceError(c, h.logger, err, "list app configs", http.StatusInternalServerError) {
		return
	}
	response.OK(c, models.AppConfigListResponse{Items: items, Count: len(items)})
}

// SaveAppConfig godoc
// @Summary Save an app config
// @Description Inserts or replaces an app config keyed by _id. A missing _id is generated.
// @Tags AppConfigs
// @Accept json
// @Produce json
// @Param config body models.AppConfigRequest true "App config"
// @Success 200 {object} models.MutationResponse
// @Failure 400 {object} response.ErrorResponse "Invalid request"
// @Failure 409 {object} response.ErrorResponse "No documents were affected"
// @Failure 503 {object} response.ErrorResponse "Store not initialized"
// @Failure 500 {object} response.ErrorResponse "Store failure"
// @Router /api/v1/app-configs [post]
func (h *AppConfigHandler) SaveAppConfig(c *gin.Context) {
	var req models.AppConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid save app config request",
			zap.Error(err),
			zap.String("request_id", response.GetRequestID(c)),
		)
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	id, err := h.service.Add(c.Request.Context(), req)
	if writeServiceError(c, h.logger, err, "save app config", http.StatusConflict) {
		return
	}
	response.Success(c, http.StatusOK, models.MutationResponse{ID: id}, "app config saved")
}

// UpdateAppConfig godoc
// @Summary Update an app config
// @Description Replaces the app config with the given id.
// @Tags AppConfigs
// @Accept json
// @Produce json
// @Param id path string true "App config ID"
// @Param config body models.AppConfigRequest true "App config"
// @Success 200 {object} models.MutationResponse
// @Failure 400 {object} response.ErrorResponse "Invalid request"
// @Failure 409 {object} response.ErrorResponse "No documents were affected"
// @Failure 503 {object} response.ErrorResponse "Store not initialized"
// @Failure 500 {object} response.ErrorResponse "Store failure"
// @Router /api/v1/app-configs/{id} [put]
func (h *AppConfigHandler) UpdateAppConfig(c *gin.Context) {
	id := c.Param("id")

	var req models.AppConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update app config request",
			zap.Error(err),
			zap.String("id", id),
			zap.String("request_id", response.GetRequestID(c)),
		)
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, req)
	if writeServiceError(c, h.logger, err, "update app config", http.StatusConflict) {
		return
	}
	response.Success(c, http.StatusOK, models.MutationResponse{ID: updated}, "app config updated")
}

// DeleteAppConfig godoc
// @Summary Delete an app config
// @Description Deletes the app config with the given id. Deleting a missing id is reported as 404.
// @Tags AppConfigs
// @Produce json
// @Param id path string true "App config ID"
// @Success 200 {object} models.MutationResponse
// @Failure 404 {object} response.ErrorResponse "No documents were affected"
// @Failure 503 {object} response.ErrorResponse "Store not initialized"
// @Failure 500 {object} response.ErrorResponse "Store failure"
// @Router /api/v1/app-configs/{id} [delete]
func (h *AppConfigHandler) DeleteAppConfig(c *gin.Context) {
	deleted, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if writeServiceError(c, h.logger, err, "delete app config", http.StatusNotFound) {
		return
	}
	response.Success(c, http.StatusOK, models.MutationResponse{ID: deleted}, "app config deleted")
}
