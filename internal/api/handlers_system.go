package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/explorador/imdbexplorer/internal/config"
)

// StatusResponse summarises the running service.
type StatusResponse struct {
	Version          string `json:"version"`
	StartTime        string `json:"startTime"`
	Uptime           string `json:"uptime"`
	SourcesAvailable int    `json:"sourcesAvailable"`
	SourcesLoaded    int    `json:"sourcesLoaded"`
	SourcesTotal     int    `json:"sourcesTotal"`
	CacheEntries     int    `json:"cacheEntries"`
	WebsocketClients int    `json:"websocketClients"`
	HealthIssues     bool   `json:"healthIssues"`
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// getStatus reports version, uptime and a dataset summary.
// GET /api/v1/status
func (s *Server) getStatus(c echo.Context) error {
	statuses := s.store.Status()

	resp := StatusResponse{
		Version:      config.Version,
		StartTime:    s.startTime.Format(time.RFC3339),
		Uptime:       time.Since(s.startTime).Truncate(time.Second).String(),
		SourcesTotal: len(statuses),
		CacheEntries: len(s.store.CacheEntries()),
		HealthIssues: s.healthService.Summary().HasIssues,
	}
	for _, st := range statuses {
		if st.Available {
			resp.SourcesAvailable++
		}
		if st.Loaded {
			resp.SourcesLoaded++
		}
	}
	if s.hub != nil {
		resp.WebsocketClients = s.hub.ClientCount()
	}

	return c.JSON(http.StatusOK, resp)
}
