package api

import (
	"github.com/explorador/imdbexplorer/internal/episodes"
	"github.com/explorador/imdbexplorer/internal/health"
	"github.com/explorador/imdbexplorer/internal/history"
	"github.com/explorador/imdbexplorer/internal/ratings"
	"github.com/explorador/imdbexplorer/internal/temporal"
)

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)

	if s.hub != nil {
		s.echo.GET("/ws", s.hub.HandleWebSocket)
	}

	api := s.echo.Group("/api/v1")

	api.GET("/status", s.getStatus)

	// Dataset state and manual reload
	datasets := api.Group("/datasets")
	datasets.GET("", s.listDatasets)
	datasets.POST("/reload", s.reloadDatasets)
	datasets.POST("/refresh", s.refreshDatasets)
	history.NewHandlers(s.historyService).RegisterRoutes(datasets.Group("/loads"))

	health.NewHandlers(s.healthService, s.healthChecker).RegisterRoutes(api.Group("/health"))

	// Dashboard pages
	ratings.NewHandlers(s.ratingsService).RegisterRoutes(api.Group("/ratings"))
	temporal.NewHandlers(s.temporalService).RegisterRoutes(api.Group("/temporal"))
	episodes.NewHandlers(s.episodesService).RegisterRoutes(api.Group("/episodes"))
}
