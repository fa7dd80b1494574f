package temporal

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/explorador/imdbexplorer/internal/section"
)

// Handlers provides HTTP handlers for the temporal page.
type Handlers struct {
	service *Service
}

// NewHandlers creates new temporal handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers temporal routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetPage)
	g.GET("/options", h.GetOptions)
	g.GET("/genres", h.GetGenreTrend)
	g.GET("/comparison", h.GetComparison)
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
// GET /api/v1/temporal
func (h *Handlers) GetPage(c echo.Context) error {
	q, err := bindQuery(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.service.Page(c.Request().Context(), q))
}

// GetOptions returns the widget choices.
// GET /api/v1/temporal/options
func (h *Handlers) GetOptions(c echo.Context) error {
	opts, err := h.service.Options(c.Request().Context(), c.QueryParam("type"))
	return section.Respond(c, opts, err)
}

// GetGenreTrend returns the yearly rating of the selected genres.
// GET /api/v1/temporal/genres
func (h *Handlers) GetGenreTrend(c echo.Context) error {
	q, err := bindQuery(c)
	if err != nil {
		return err
	}
	chart, err := h.service.GenreTrend(c.Request().Context(), q.Type, q.Genres)
	return section.Respond(c, chart, err)
}

// GetComparison returns movies against series per year.
// GET /api/v1/temporal/comparison
func (h *Handlers) GetComparison(c echo.Context) error {
	q, err := bindQuery(c)
	if err != nil {
		return err
	}
	chart, err := h.service.Comparison(c.Request().Context(), q.Start, q.End)
	return section.Respond(c, chart, err)
}
