package appconfigs

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/dhima/edge-cache/internal/cache"
	"github.com/dhima/edge-cache/internal/logging"
	"github.com/dhima/edge-cache/internal/models"
)

// RepositoryProvider hands out the app config repository once the store is open.
type RepositoryProvider interface {
	AppConfigs() (*cache.Repository[models.AppConfig], error)
}

// Service validates app config requests and applies them to the cache.
type Service struct {
	repos  RepositoryProvider
	logger logging.Logger
}

// NewService creates a Service.
func NewService(repos RepositoryProvider, logger logging.Logger) *Service {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	return &Service{repos: repos, logger: logger.Named("app_config")}
}

// Save inserts or replaces a config and returns its id.
func (s *Service) Save(ctx context.Context, req models.AppConfigRequest) (string, error) {
	if err := validate(req); err != nil {
		s.logger.Warn("Rejected app config", zap.Error(err))
		return "", err
	}
	repo, err := s.repos.AppConfigs()
	if err != nil {
		s.logger.Error("Cannot save app config", zap.Error(err))
		return "", err
	}
	return repo.Upsert(ctx, req.ToAppConfig())
}

// Add is Save under its legacy name.
func (s *Service) Add(ctx context.Context, req models.AppConfigRequest) (string, error) {
	return s.Save(ctx, req)
}

// Update saves req under id. A body id, when present, must match.
func (s *Service) Update(ctx context.Context, id string, req models.AppConfigRequest) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", NewValidationError("id is required")
	}
	if req.ID != "" && req.ID != id {
		return "", NewValidationError("body id %q does not match path id %q", req.ID, id)
	}
	req.ID = id
	return s.Save(ctx, req)
}

// Delete removes the config with id.
func (s *Service) Delete(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", NewValidationError("id is required")
	}
	repo, err := s.repos.AppConfigs()
	if err != nil {
		s.logger.Error("Cannot delete app config", zap.Error(err))
		return "", err
	}
	return repo.Delete(ctx, id)
}

// List returns every valid config ordered by name.
func (s *Service) List(ctx context.Context) ([]models.AppConfig, error) {
	repo, err := s.repos.AppConfigs()
	if err != nil {
		s.logger.Error("Cannot list app configs", zap.Error(err))
		return nil, err
	}
	return repo.ListAll(ctx)
}

func validate(req models.AppConfigRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return NewValidationError("name is required")
	}
	switch req.Mode {
	case "", models.AppConfigModeOnline, models.AppConfigModeOffline:
	default:
		return NewValidationError("mode must be %q or %q", models.AppConfigModeOnline, models.AppConfigModeOffline)
	}
	return nil
}
