package health

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handlers provides HTTP handlers for health endpoints.
type Handlers struct {
	health  *Service
	checker *Checker
}

// NewHandlers creates new health handlers. checker may be nil, in which
// case the check endpoint only reports the current state.
func NewHandlers(health *Service, checker *Checker) *Handlers {
	return &Handlers{
		health:  health,
		checker: checker,
	}
}

// RegisterRoutes registers health routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetAll)
	g.GET("/summary", h.GetSummary)
	g.POST("/check", h.Check)
	g.GET("/:category", h.GetByCategory)
}

// GetAll returns all health items grouped by category.
// GET /api/v1/health
func (h *Handlers) GetAll(c echo.Context) error {
	return c.JSON(http.StatusOK, h.health.Report())
}

// GetSummary returns summary counts for the dashboard.
// GET /api/v1/health/summary
func (h *Handlers) GetSummary(c echo.Context) error {
	return c.JSON(http.StatusOK, h.health.Summary())
}

// Check re-evaluates every item and returns the result.
// POST /api/v1/health/check
func (h *Handlers) Check(c echo.Context) error {
	if h.checker != nil {
		if err := h.checker.Check(c.Request().Context()); err != nil {
			return err
		}
	}
	return c.JSON(http.StatusOK, h.health.Report())
}

// GetByCategory returns health items for a specific category.
// GET /api/v1/health/:category
func (h *Handlers) GetByCategory(c echo.Context) error {
	category, ok := ParseCategory(c.Param("category"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid health category")
	}
	return c.JSON(http.StatusOK, h.health.Items(category))
}
