// Package session owns the document store of a running service together with
// the repositories and live query subscriptions built on it. Everything the
// session creates is released by Close.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/dhima/edge-cache/internal/cache"
	"github.com/dhima/edge-cache/internal/docstore"
	"github.com/dhima/edge-cache/internal/logging"
	"github.com/dhima/edge-cache/internal/models"
	"github.com/dhima/edge-cache/internal/notify"
	"github.com/dhima/edge-cache/internal/storage"
	"github.com/dhima/edge-cache/pkg/config"
)

var (
	// ErrNotInitialized is returned before Initialize succeeds.
	ErrNotInitialized = errors.New("store not initialized")
	// ErrUnknownConcern is returned for an observer concern the session does not know.
	ErrUnknownConcern = errors.New("unknown observer concern")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("session closed")
)

// Observer concerns and the events they emit.
const (
	ConcernAppConfigs      = "app-configs"
	EventAppConfigsUpdated = "app-configs-updated"
)

// Store is a DocumentStore the session can describe and close.
type Store interface {
	docstore.DocumentStore
	Driver() string
	Location() string
	Close() error
}

// Opener opens the configured store.
type Opener func(ctx context.Context) (Store, error)

// Session is the application root of the cache layer.
type Session struct {
	collection string
	logger     logging.Logger
	notifier   notify.Notifier
	open       Opener
	codec      *cache.Codec[models.AppConfig]

	mu         sync.Mutex
	store      Store
	appConfigs *cache.Repository[models.AppConfig]
	observers  map[string]*cache.Subscription
	closed     bool
}

// Option configures a Session.
type Option func(*Session)

// WithOpener replaces the store opener derived from the configuration.
func WithOpener(open Opener) Option {
	return func(s *Session) { s.open = open }
}

// New creates an uninitialised session. notifier receives observer updates.
func New(cfg config.App, logger logging.Logger, notifier notify.Notifier, opts ...Option) *Session {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	s := &Session{
		collection: cfg.AppConfigCollection,
		logger:     logger,
		notifier:   notifier,
		codec:      cache.MustCodec[models.AppConfig](models.AppConfigSchema),
		observers:  make(map[string]*cache.Subscription),
	}
	if s.collection == "" {
		s.collection = models.AppConfigCollection
	}
	s.open = ConfigOpener(cfg, logger)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ConfigOpener returns the opener for cfg.StoreDriver.
func ConfigOpener(cfg config.App, logger logging.Logger) Opener {
	return func(ctx context.Context) (Store, error) {
		switch cfg.StoreDriver {
		case config.StoreDriverSQLite, "":
			return storage.OpenSQLite(ctx, cfg.StorePath, logger.Named("storage"))
		case config.StoreDriverMySQL:
			if cfg.DatabaseURL == "" {
				return nil, errors.New("DATABASE_URL is required for the mysql store")
			}
			return storage.OpenMySQL(ctx, cfg.DatabaseURL, logger.Named("storage"))
		case config.StoreDriverMemory:
			return docstore.NewMemoryStore(logger.Named("storage")), nil
		default:
			return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
		}
	}
}

// Initialize opens the store. It reports false when the store was already open.
func (s *Session) Initialize(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrClosed
	}
	if s.store != nil {
		s.logger.Info("Store already initialized", zap.String("driver", s.store.Driver()))
		return false, nil
	}

	s.logger.Info("Starting store initialization")
	store, err := s.open(ctx)
	if err != nil {
		s.logger.Error("Failed to initialize store", zap.Error(err))
		return false, fmt.Errorf("initialize store: %w", err)
	}

	s.store = store
	s.appConfigs = cache.NewRepository(store, s.collection, s.codec, s.logger)
	s.logger.Info("Store initialized",
		zap.String("driver", store.Driver()),
		zap.String("location", store.Location()),
	)
	return true, nil
}

// Initialized reports whether the store is open.
func (s *Session) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store != nil
}

// Status describes the store.
func (s *Session) Status() models.StoreStatusResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := models.StoreStatusResponse{
		Collection: s.collection,
		Observers:  len(s.observers),
	}
	if s.store == nil {
		status.Status = "Store not initialized"
		return status
	}
	status.Initialized = true
	status.Driver = s.store.Driver()
	status.Location = s.store.Location()
	if status.Location != "" {
		status.Status = fmt.Sprintf("Store initialized (driver: %s, location: %s)", status.Driver, status.Location)
	} else {
		status.Status = fmt.Sprintf("Store initialized (driver: %s)", status.Driver)
	}
	return status
}

// AppConfigs returns the app config repository.
func (s *Session) AppConfigs() (*cache.Repository[models.AppConfig], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appConfigs == nil {
		return nil, ErrNotInitialized
	}
	return s.appConfigs, nil
}

// RegisterObserver starts the live query for concern. Registering an active
// concern again is a no-op that reports false.
func (s *Session) RegisterObserver(ctx context.Context, concern string) (bool, error) {
	if concern != ConcernAppConfigs {
		return false, fmt.Errorf("%w: %q", ErrUnknownConcern, concern)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.appConfigs == nil {
		s.logger.Error("Cannot register observer", zap.String("concern", concern), zap.Error(ErrNotInitialized))
		return false, ErrNotInitialized
	}
	if _, ok := s.observers[concern]; ok {
		return false, nil
	}

	handler := func(context.Context, []models.AppConfig) error { return nil }
	if s.notifier != nil {
		handler = cache.NotifyHandler[models.AppConfig](s.notifier, EventAppConfigsUpdated)
	}
	sub, err := s.appConfigs.Observe(ctx, handler)
	if err != nil {
		return false, err
	}
	s.observers[concern] = sub
	s.logger.Info("Observer registered", zap.String("concern", concern))
	return true, nil
}

// UnregisterObserver cancels the live query for concern. It reports false
// when none was registered.
func (s *Session) UnregisterObserver(concern string) bool {
	s.mu.Lock()
	sub, ok := s.observers[concern]
	delete(s.observers, concern)
	s.mu.Unlock()

	if !ok {
		return false
	}
	sub.Cancel()
	s.logger.Info("Observer unregistered", zap.String("concern", concern))
	return true
}

// Observers lists the registered concerns.
func (s *Session) Observers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.observers))
	for c := range s.observers {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Close cancels every subscription and closes the store.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	subs := s.observers
	s.observers = make(map[string]*cache.Subscription)
	store := s.store
	s.store = nil
	s.appConfigs = nil
	s.mu.Unlock()

	concerns := make([]string, 0, len(subs))
	for concern, sub := range subs {
		sub.Cancel()
		concerns = append(concerns, concern)
	}
	sort.Strings(concerns)
	if len(concerns) > 0 {
		s.logger.Info("Observers cancelled", zap.String("concerns", strings.Join(concerns, ",")))
	}

	if store == nil {
		return nil
	}
	if err := store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	s.logger.Info("Store closed", zap.String("driver", store.Driver()))
	return nil
}
