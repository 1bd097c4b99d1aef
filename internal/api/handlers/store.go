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

// StoreSession is the lifecycle surface of the document store.
type StoreSession interface {
	Initialize(ctx context.Context) (bool, error)
	Status() models.StoreStatusResponse
	RegisterObserver(ctx context.Context, concern string) (bool, error)
	UnregisterObserver(concern string) bool
}

// StoreHandler handles store initialisation and observer registration.
type StoreHandler struct {
	logger  logging.Logger
	session StoreSession
}

// NewStoreHandler creates a new store handler.
func NewStoreHandler(logger logging.Logger, session StoreSession) *StoreHandler {
	return &StoreHandler{
		logger:  logger.With(zap.String("handler", "store")),
		session: session,
	}
}

// InitializeStore godoc
// @Summary Initialize the document store
// @Description Opens the configured store. Calling it again reports the current status without reopening.
// @Tags Store
// @Produce json
// @Success 201 {object} models.StoreStatusResponse "Store opened"
// @Success 200 {object} models.StoreStatusResponse "Store already open"
// @Failure 500 {object} response.ErrorResponse "Store could not be opened"
// @Router /api/v1/store/initialize [post]
func (h *StoreHandler) InitializeStore(c *gin.Context) {
	opened, err := h.session.Initialize(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to initialize store",
			zap.Error(err),
			zap.String("request_id", response.GetRequestID(c)),
		)
		response.Error(c, http.StatusInternalServerError, "failed to initialize store", err.Error())
		return
	}

	response.Outcome(c, opened, h.session.Status(), "store initialized", "store already initialized")
}

// StoreStatus godoc
// @Summary Describe the document store
// @Description Returns whether the store is open, its driver and location, and the active observer count.
// @Tags Store
// @Produce json
// @Success 200 {object} models.StoreStatusResponse
// @Router /api/v1/store/status [get]
func (h *StoreHandler) StoreStatus(c *gin.Context) {
	response.OK(c, h.session.Status())
}

// RegisterObserver godoc
// @Summary Register a live observer
// @Description Starts a live query for the concern. Its result sets are published on the event stream. Registering twice is a no-op.
// @Tags Observers
// @Produce json
// @Param concern path string true "Observer concern" Enums(app-configs)
// @Success 201 {object} models.ObserverResponse "Observer created"
// @Success 200 {object} models.ObserverResponse "Observer already registered"
// @Failure 404 {object} response.ErrorResponse "Unknown concern"
// @Failure 503 {object} response.ErrorResponse "Store not initialized"
// @Failure 500 {object} response.ErrorResponse "Store failure"
// @Router /api/v1/observers/{concern} [post]
func (h *StoreHandler) RegisterObserver(c *gin.Context) {
	concern := c.Param("concern")

	created, err := h.session.RegisterObserver(c.Request.Context(), concern)
	if writeServiceError(c, h.logger, err, "register observer", http.StatusInternalServerError) {
		return
	}

	body := models.ObserverResponse{Concern: concern, Registered: true, Created: created}
	response.Outcome(c, created, body, "observer registered", "observer already registered")
}

// UnregisterObserver godoc
// @Summary Unregister a live observer
// @Description Cancels the live query for the concern.
// @Tags Observers
// @Produce json
// @Param concern path string true "Observer concern" Enums(app-configs)
// @Success 200 {object} models.ObserverResponse
// @Failure 404 {object} response.ErrorResponse "Observer not registered"
// @Router /api/v1/observers/{concern} [delete]
func (h *StoreHandler) UnregisterObserver(c *gin.Context) {
	concern := c.Param("concern")

	if !h.session.UnregisterObserver(concern) {
		response.NotFound(c, "observer not registered")
		return
	}
	response.OK(c, models.ObserverResponse{Concern: concern})
}
