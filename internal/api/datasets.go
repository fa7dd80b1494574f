package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/explorador/imdbexplorer/internal/dataset"
)

// DatasetsResponse lists source state and cache contents.
type DatasetsResponse struct {
	Sources []dataset.SourceStatus   `json:"sources"`
	Cache   []dataset.CacheEntryInfo `json:"cache"`
}

// SourceLoadResult is the outcome of reloading one source.
type SourceLoadResult struct {
	Source  string `json:"source"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ReloadResponse is returned by the reload endpoint.
type ReloadResponse struct {
	Results []SourceLoadResult     `json:"results"`
	Sources []dataset.SourceStatus `json:"sources"`
}

// RefreshResponse is returned by the refresh endpoint.
type RefreshResponse struct {
	dataset.RefreshResult
	Error string `json:"error,omitempty"`
}

// listDatasets returns the state of every source and the cache.
// GET /api/v1/datasets
func (s *Server) listDatasets(c echo.Context) error {
	return c.JSON(http.StatusOK, DatasetsResponse{
		Sources: s.store.Status(),
		Cache:   s.store.CacheEntries(),
	})
}

// reloadDatasets clears the cache and loads every source again. Failures
// are reported per source; the endpoint itself succeeds.
// POST /api/v1/datasets/reload
func (s *Server) reloadDatasets(c echo.Context) error {
	ctx := c.Request().Context()

	s.store.Invalidate()
	results := s.loadAll(ctx)
	s.checkHealth(ctx)

	return c.JSON(http.StatusOK, ReloadResponse{
		Results: results,
		Sources: s.store.Status(),
	})
}

// refreshDatasets reloads only the cached sources whose files changed.
// POST /api/v1/datasets/refresh
func (s *Server) refreshDatasets(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := s.store.Refresh(ctx)
	s.checkHealth(ctx)

	resp := RefreshResponse{RefreshResult: result}
	if err != nil {
		resp.Error = err.Error()
	}
	return c.JSON(http.StatusOK, resp)
}

// loadAll loads the three sources concurrently.
func (s *Server) loadAll(ctx context.Context) []SourceLoadResult {
	sources := s.store.Sources()
	loaders := []struct {
		name string
		load func(context.Context) error
	}{
		{sources.Titles.Name, func(ctx context.Context) error { _, err := s.store.Titles(ctx); return err }},
		{sources.EpisodeLinks.Name, func(ctx context.Context) error { _, err := s.store.EpisodeLinks(ctx); return err }},
		{sources.EpisodeRatings.Name, func(ctx context.Context) error { _, err := s.store.EpisodeRatings(ctx); return err }},
	}

	results := make([]SourceLoadResult, len(loaders))
	var g errgroup.Group
	for i, l := range loaders {
		g.Go(func() error {
			res := SourceLoadResult{Source: l.name, Success: true}
			if err := l.load(ctx); err != nil {
				res.Success = false
				res.Error = err.Error()
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (s *Server) checkHealth(ctx context.Context) {
	if err := s.healthChecker.Check(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("health check after dataset change failed")
	}
}
