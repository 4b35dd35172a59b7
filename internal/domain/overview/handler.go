package overview

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/malackathon/observatorio/internal/platform/filter"
	"github.com/malackathon/observatorio/internal/platform/middleware"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/overview", h.GetOverview)
	api.GET("/overview/filters", h.GetFilters)
	api.GET("/overview/filters/reset", h.ResetFilters)
}

// GetOverview returns the KPIs and figures for the filters in the query
// string. Query failures degrade to an uncacheable placeholder view; an
// expired request deadline is returned as an error.
func (h *Handler) GetOverview(c echo.Context) error {
	ctx := c.Request().Context()
	data := h.svc.Load(ctx, filter.FromContext(c))
	if err := ctx.Err(); err != nil {
		return err
	}
	if data == nil {
		middleware.NoStore(c)
	}
	return c.JSON(http.StatusOK, BuildView(data))
}

func (h *Handler) GetFilters(c echo.Context) error {
	ctx := c.Request().Context()
	opts := h.svc.FilterOptions(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	if !opts.Complete() {
		middleware.NoStore(c)
	}
	return c.JSON(http.StatusOK, opts)
}

func (h *Handler) ResetFilters(c echo.Context) error {
	ctx := c.Request().Context()
	r := h.svc.Defaults(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	if !r.Complete() {
		middleware.NoStore(c)
	}
	return c.JSON(http.StatusOK, r)
}
