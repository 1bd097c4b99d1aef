package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/dhima/edge-cache/internal/api/handlers"
	"github.com/dhima/edge-cache/internal/api/middleware"
	"github.com/dhima/edge-cache/internal/appconfigs"
	"github.com/dhima/edge-cache/internal/logbuffer"
	"github.com/dhima/edge-cache/internal/logexport"
	"github.com/dhima/edge-cache/internal/logging"
	"github.com/dhima/edge-cache/internal/notify"
	"github.com/dhima/edge-cache/internal/session"
	"github.com/dhima/edge-cache/pkg/clock"
	"github.com/dhima/edge-cache/pkg/config"
	"github.com/dhima/edge-cache/platform/events"
)

// Server orchestrates HTTP routing and dependencies for the API service.
type Server struct {
	config config.App
	logger logging.Logger
	router *gin.Engine

	buffer    *logbuffer.Buffer
	hub       *notify.Hub
	publisher *events.Publisher
	session   *session.Session
	service   *appconfigs.Service
	exporter  *logexport.Exporter
	scheduler *logexport.Scheduler
}

// NewServer wires the API dependencies together from the environment.
func NewServer() *Server {
	server, err := NewServerWithConfig(config.FromEnv())
	if err != nil {
		panic(fmt.Sprintf("failed to initialize server: %v", err))
	}
	return server
}

// NewServerWithConfig wires the API dependencies for cfg. The document store
// stays closed until POST /api/v1/store/initialize.
func NewServerWithConfig(cfg config.App, opts ...session.Option) (*Server, error) {
	buffer := logbuffer.New(cfg.LogBufferSize)

	logger, err := logging.NewLogger(cfg.Environment, cfg.LogLevel,
		logging.WithBuffer(buffer),
		logging.WithEncoding(cfg.LogEncoding),
	)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	// Set Gin mode based on environment
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	hub := notify.NewHub(logger.Named("notify"), clock.RealClock{})
	notifiers := notify.Multi{hub}

	var publisher *events.Publisher
	if brokers := cfg.KafkaBrokerList(); len(brokers) > 0 {
		publisher = events.NewPublisher(brokers, cfg.KafkaTopic, logger.Zap())
		notifiers = append(notifiers, publisher)
		logger.Info("kafka publishing enabled",
			zap.Strings("brokers", brokers),
			zap.String("topic", cfg.KafkaTopic),
		)
	}

	sess := session.New(cfg, logger, notifiers, opts...)
	exporter := logexport.NewExporter(buffer, cfg.LogExportDir, clock.RealClock{}, logger)

	server := &Server{
		config:    cfg,
		logger:    logger,
		buffer:    buffer,
		hub:       hub,
		publisher: publisher,
		session:   sess,
		service:   appconfigs.NewService(sess, logger),
		exporter:  exporter,
	}

	if cfg.LogExportCron != "" {
		scheduler, err := logexport.NewScheduler(cfg.LogExportCron, exporter, logger)
		if err != nil {
			server.Close()
			return nil, fmt.Errorf("configure log export schedule: %w", err)
		}
		server.scheduler = scheduler
	}

	server.setupRouter()
	return server, nil
}

// setupRouter configures the Gin router with middleware and routes.
func (s *Server) setupRouter() {
	router := gin.New()

	zapLogger := s.logger.Named("http").Zap()

	// Global middleware (order matters!)
	// 1. Recovery - must be first to catch panics from other middleware
	router.Use(ginzap.RecoveryWithZap(zapLogger, true))

	// 2. Request ID - inject unique ID for tracing
	router.Use(middleware.RequestID())

	// 3. Logging - log all requests with structured fields
	router.Use(ginzap.Ginzap(zapLogger, time.RFC3339, true))

	// 4. CORS - handle cross-origin requests
	router.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	health := handlers.NewHealthHandler(s.logger, s.session)
	if s.scheduler != nil {
		health.WithExportSchedule(s.scheduler)
	}
	router.GET("/health", health.Health)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		storeHandler := handlers.NewStoreHandler(s.logger, s.session)
		store := v1.Group("/store")
		{
			store.POST("/initialize", storeHandler.InitializeStore)
			store.GET("/status", storeHandler.StoreStatus)
		}
		observers := v1.Group("/observers")
		{
			observers.POST("/:concern", storeHandler.RegisterObserver)
			observers.DELETE("/:concern", storeHandler.UnregisterObserver)
		}

		appConfigHandler := handlers.NewAppConfigHandler(s.logger, s.service)
		appConfigs := v1.Group("/app-configs")
		{
			appConfigs.GET("", appConfigHandler.ListAppConfigs)
			appConfigs.POST("", appConfigHandler.SaveAppConfig)
			appConfigs.PUT("/:id", appConfigHandler.UpdateAppConfig)
			appConfigs.DELETE("/:id", appConfigHandler.DeleteAppConfig)
		}

		eventHandler := handlers.NewEventStreamHandler(s.logger, s.hub, handlers.DefaultKeepAlive)
		v1.GET("/events/stream", eventHandler.Stream)

		logHandler := handlers.NewLogHandler(s.logger, s.buffer, s.exporter)
		logs := v1.Group("/logs")
		{
			logs.GET("", logHandler.GetLogs)
			logs.DELETE("", logHandler.ClearLogs)
			logs.GET("/count", logHandler.GetLogCount)
			logs.GET("/export", logHandler.ExportLogsText)
			logs.POST("/export", logHandler.ExportLogsFile)
		}
	}

	s.router = router
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve starts the HTTP server with graceful shutdown support.
func (s *Server) Serve() error {
	addr := ":" + s.config.APIPort
	srv := &http.Server{
		Addr:        addr,
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		// Event streams hold the response open; no write deadline.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	if s.scheduler != nil {
		s.scheduler.Start()
	}

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		s.logger.Info("starting API server",
			zap.String("address", addr),
			zap.String("environment", s.config.Environment),
			zap.String("log_level", s.config.LogLevel),
			zap.String("store_driver", s.config.StoreDriver),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	<-quit
	s.logger.Info("shutting down server gracefully...")

	// Graceful shutdown with 30 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	if s.scheduler != nil {
		if err := s.scheduler.Stop(ctx); err != nil {
			s.logger.Error("log export schedule did not stop", zap.Error(err))
		}
	}

	if err := s.Close(); err != nil {
		s.logger.Error("failed to release resources", zap.Error(err))
	}

	// Flush logger before exit
	if err := s.logger.Sync(); err != nil {
		// Ignore sync errors on stdout/stderr
		if err.Error() != "sync /dev/stdout: invalid argument" &&
			err.Error() != "sync /dev/stderr: invalid argument" {
			return err
		}
	}

	s.logger.Info("server stopped")
	return nil
}

// Close cancels observers, closes the store and the Kafka writer.
func (s *Server) Close() error {
	var errs []error
	if err := s.session.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close session: %w", err))
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close kafka publisher: %w", err))
		}
	}
	return errors.Join(errs...)
}
