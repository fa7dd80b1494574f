package ratings

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/explorador/imdbexplorer/internal/section"
)

// Handlers provides HTTP handlers for the ratings page.
type Handlers struct {
	service *Service
}

// NewHandlers creates new ratings handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers ratings routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetPage)
	g.GET("/options", h.GetOptions)
	g.GET("/histogram", h.GetHistogram)
	g.GET("/genres", h.GetGenrePie)
	g.GET("/top", h.GetTop)
}

func bindQuery(c echo.Context) (Query, error) {
	var q Query
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return Query{}, echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	q.Genres = section.QueryValues(c, "genre")
	return q, nil
}

// GetPage renders every section of the page.
// GET /api/v1/ratings
func (h *Handlers) GetPage(c echo.Context) error {
	q, err := bindQuery(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.service.Page(c.Request().Context(), q))
}

// GetOptions returns the widget choices.
// GET /api/v1/ratings/options
func (h *Handlers) GetOptions(c echo.Context) error {
	opts, err := h.service.Options(c.Request().Context(), c.QueryParam("range"))
	return section.Respond(c, opts, err)
}

// GetHistogram returns the rating histogram.
// GET /api/v1/ratings/histogram
func (h *Handlers) GetHistogram(c echo.Context) error {
	hist, err := h.service.Histogram(c.Request().Context(), c.QueryParam("type"))
	return section.Respond(c, hist, err)
}

// GetGenrePie returns the genre composition of a rating range.
// GET /api/v1/ratings/genres
func (h *Handlers) GetGenrePie(c echo.Context) error {
	q, err := bindQuery(c)
	if err != nil {
		return err
	}
	pie, err := h.service.GenrePie(c.Request().Context(), q.Range, q.Genres)
	return section.Respond(c, pie, err)
}

// GetTop returns the best rated titles.
// GET /api/v1/ratings/top
func (h *Handlers) GetTop(c echo.Context) error {
	q, err := bindQuery(c)
	if err != nil {
		return err
	}
	top, err := h.service.Top(c.Request().Context(), q.TopType, q.MinVotes)
	return section.Respond(c, top, err)
}
