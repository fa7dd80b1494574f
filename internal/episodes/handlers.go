package episodes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/explorador/imdbexplorer/internal/section"
)

// Handlers provides HTTP handlers for the episodes page.
type Handlers struct {
	service *Service
}

// NewHandlers creates new episodes handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers episodes routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetPage)
	g.GET("/series", h.ListSeries)
	g.GET("/series/info", h.GetInfo)
	g.GET("/counts", h.GetCounts)
	g.GET("/seasons", h.GetSeasons)
	g.GET("/trend", h.GetTrend)
}

func bindSelection(c echo.Context) (Selection, error) {
	var sel Selection
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &sel); err != nil {
		return Selection{}, echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	return sel, nil
}

// GetPage renders every section of the page.
// GET /api/v1/episodes
func (h *Handlers) GetPage(c echo.Context) error {
	sel, err := bindSelection(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.service.Page(c.Request().Context(), sel))
}

// ListSeries returns the selectable series.
// GET /api/v1/episodes/series
func (h *Handlers) ListSeries(c echo.Context) error {
	list, err := h.service.SeriesList(c.Request().Context())
	return section.Respond(c, list, err)
}

// GetInfo returns the series header.
// GET /api/v1/episodes/series/info
func (h *Handlers) GetInfo(c echo.Context) error {
	sel, err := bindSelection(c)
	if err != nil {
		return err
	}
	info, err := h.service.Info(c.Request().Context(), sel)
	return section.Respond(c, info, err)
}

// GetCounts returns the episodes-per-season chart.
// GET /api/v1/episodes/counts
func (h *Handlers) GetCounts(c echo.Context) error {
	sel, err := bindSelection(c)
	if err != nil {
		return err
	}
	chart, err := h.service.Counts(c.Request().Context(), sel)
	return section.Respond(c, chart, err)
}

// GetSeasons returns the seasons with ratings.
// GET /api/v1/episodes/seasons
func (h *Handlers) GetSeasons(c echo.Context) error {
	sel, err := bindSelection(c)
	if err != nil {
		return err
	}
	seasons, err := h.service.Seasons(c.Request().Context(), sel)
	return section.Respond(c, seasons, err)
}

// GetTrend returns the rating trend of a season.
// GET /api/v1/episodes/trend
func (h *Handlers) GetTrend(c echo.Context) error {
	sel, err := bindSelection(c)
	if err != nil {
		return err
	}
	trend, err := h.service.Trend(c.Request().Context(), sel)
	return section.Respond(c, trend, err)
}
