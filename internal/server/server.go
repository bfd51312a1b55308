// Package server sets up the HTTP server with all routes
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/plebguard/plebguard/internal/challenge"
	"github.com/plebguard/plebguard/internal/config"
	"github.com/plebguard/plebguard/internal/history"
	"github.com/plebguard/plebguard/internal/idgen"
	"github.com/plebguard/plebguard/internal/ipintel"
	"github.com/plebguard/plebguard/internal/logging"
	"github.com/plebguard/plebguard/internal/metrics"
	"github.com/plebguard/plebguard/internal/risk"
	"github.com/plebguard/plebguard/internal/traces"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	cfg        *config.Config
	engine     *risk.Engine
	mapper     *challenge.Mapper
	histSvc    *history.Service
	evalStore  risk.Store
	ipProvider ipintel.Provider
	db         *sql.DB // nil if using in-memory
	router     *gin.Engine
	httpSrv    *http.Server
	logger     *slog.Logger

	shutdownTraces func(context.Context) error

	// Health state
	ready   atomic.Bool
	healthy atomic.Bool
}

// Option configures the server
type Option func(*Server)

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithIPProvider sets an IP intelligence provider.
func WithIPProvider(p ipintel.Provider) Option {
	return func(s *Server) {
		s.ipProvider = p
	}
}

// New creates a new server instance
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logging.New(cfg.LogLevel, cfg.LogFormat),
	}

	for _, opt := range opts {
		opt(s)
	}

	// Tier thresholds are validated here, at construction; a misordered
	// configuration never reaches request handling.
	mapper, err := challenge.NewMapper(cfg.Thresholds)
	if err != nil {
		return nil, err
	}
	s.mapper = mapper

	// Storage: Postgres if DATABASE_URL set, otherwise in-memory.
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.Ping(); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		s.db = db
		s.histSvc = history.NewService(
			history.NewPostgresEngineStore(db),
			history.NewPostgresIndexerStore(db),
			s.logger,
		)
		s.evalStore = risk.NewPostgresStore(db)
		s.logger.Info("using PostgreSQL storage", "url", maskDSN(cfg.DatabaseURL))
	} else {
		s.histSvc = history.NewService(
			history.NewMemoryEngineStore(),
			history.NewMemoryIndexerStore(),
			s.logger,
		)
		s.evalStore = risk.NewMemoryStore()
		s.logger.Warn("DATABASE_URL not set, using in-memory storage (data lost on restart)")
	}

	s.engine = risk.NewEngine(s.logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(metrics.Middleware())
	s.router.Use(s.requestLogger())
	s.setupRoutes()

	s.healthy.Store(true)
	return s, nil
}

// requestLogger attaches a request ID and logs each request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := idgen.Hex(8)
		ctx := logging.WithRequestID(c.Request.Context(), requestID)
		ctx = logging.WithLogger(ctx, s.logger)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-Id", requestID)

		start := time.Now()
		c.Next()

		logging.L(ctx).Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealthz)
	s.router.GET("/readyz", s.handleReadyz)
	s.router.GET("/metrics", metrics.Handler())

	v1 := s.router.Group("/api/v1")
	v1.POST("/evaluate", s.handleEvaluate)
	v1.GET("/evaluations/:authorKey", s.handleListEvaluations)
}

func (s *Server) handleHealthz(c *gin.Context) {
	if !s.healthy.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleReadyz(c *gin.Context) {
	if !s.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Run starts the server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownTraces, err := traces.Init(runCtx, s.cfg.OTLPEndpoint, s.logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	s.shutdownTraces = shutdownTraces

	s.httpSrv = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "port", s.cfg.Port, "env", s.cfg.Env)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	if s.db != nil {
		go metrics.StartDBStatsCollector(runCtx, s.db, 15*time.Second)
	}

	// Mark as ready after brief delay for startup
	go func() {
		time.Sleep(100 * time.Millisecond)
		s.ready.Store(true)
		s.logger.Info("server ready")
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		s.logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	s.ready.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			s.logger.Error("http shutdown failed", "error", err)
		}
	}
	if s.shutdownTraces != nil {
		if err := s.shutdownTraces(ctx); err != nil {
			s.logger.Error("trace shutdown failed", "error", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("database close failed", "error", err)
		}
	}
	s.logger.Info("server stopped")
	return nil
}

// Router exposes the gin router for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// maskDSN hides credentials in a connection string for logging.
func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "***"
	}
	if u.User != nil {
		u.User = url.User(u.User.Username())
	}
	return u.Redacted()
}
