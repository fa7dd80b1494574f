package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	apimw "github.com/explorador/imdbexplorer/internal/api/middleware"
	"github.com/explorador/imdbexplorer/internal/config"
	"github.com/explorador/imdbexplorer/internal/dataset"
	"github.com/explorador/imdbexplorer/internal/episodes"
	"github.com/explorador/imdbexplorer/internal/health"
	"github.com/explorador/imdbexplorer/internal/history"
	"github.com/explorador/imdbexplorer/internal/ratings"
	"github.com/explorador/imdbexplorer/internal/scheduler"
	"github.com/explorador/imdbexplorer/internal/temporal"
	"github.com/explorador/imdbexplorer/internal/websocket"
)

// Server handles HTTP requests for the explorer API.
type Server struct {
	echo      *echo.Echo
	db        *sql.DB
	store     *dataset.Store
	hub       *websocket.Hub
	logger    zerolog.Logger
	cfg       *config.Config
	startTime time.Time

	// Services
	ratingsService  *ratings.Service
	temporalService *temporal.Service
	episodesService *episodes.Service
	historyService  *history.Service
	healthService   *health.Service
	healthChecker   *health.Checker
	scheduler       *scheduler.Scheduler
	logsProvider    LogsProvider
}

// NewServer creates a new API server instance and wires the store to the
// load ledger and the websocket hub. hub may be nil.
func NewServer(cfg *config.Config, db *sql.DB, store *dataset.Store, hub *websocket.Hub, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		db:        db,
		store:     store,
		hub:       hub,
		logger:    logger.With().Str("component", "api").Logger(),
		cfg:       cfg,
		startTime: time.Now(),
	}

	s.historyService = history.NewService(db, logger)
	store.SetRecorder(s.historyService)

	s.healthService = health.NewService(logger)
	s.healthChecker = health.NewChecker(s.healthService, store, db, logger)

	if hub != nil {
		store.SetBroadcaster(hub)
		s.healthService.SetBroadcaster(hub)
	}

	s.ratingsService = ratings.NewService(store, ratings.Config{
		TopN:          cfg.Explorer.TopN,
		HistogramBins: cfg.Explorer.HistogramBins,
	}, logger)
	s.temporalService = temporal.NewService(store, temporal.Config{
		MinTitlesGenreTrend: cfg.Explorer.MinTitlesGenreTrend,
		MinTitlesComparison: cfg.Explorer.MinTitlesComparison,
	}, logger)
	s.episodesService = episodes.NewService(store, logger)

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// SetScheduler exposes scheduler tasks under /api/v1/scheduler.
func (s *Server) SetScheduler(sched *scheduler.Scheduler) {
	s.scheduler = sched
	scheduler.NewHandlers(sched).RegisterRoutes(s.echo.Group("/api/v1/scheduler"))
}

// SetLogsProvider exposes recent log entries under /api/v1/system/logs.
func (s *Server) SetLogsProvider(p LogsProvider) {
	s.logsProvider = p
	NewLogsHandlers(p).RegisterRoutes(s.echo.Group("/api/v1/system/logs"))
}

// HistoryService returns the load ledger service.
func (s *Server) HistoryService() *history.Service {
	return s.historyService
}

// HealthChecker returns the source health checker.
func (s *Server) HealthChecker() *health.Checker {
	return s.healthChecker
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	s.echo.Use(apimw.SecurityHeaders("/api"))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogMethod:    true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Str("requestId", v.RequestID).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Debug().
					Str("method", v.Method).
					Str("uri", v.URI).
					Str("requestId", v.RequestID).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return c.Request().Header.Get("Upgrade") == "websocket"
		},
	}))
}

// Start begins listening for HTTP requests.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
