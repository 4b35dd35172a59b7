package cohort

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/malackathon/observatorio/internal/platform/middleware"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/cohort", h.GetCohort)
	api.GET("/cohort/filters", h.GetFilters)
	api.GET("/cohort/filters/reset", h.ResetFilters)
}

func (h *Handler) GetCohort(c echo.Context) error {
	ctx := c.Request().Context()
	data := h.svc.Load(ctx, ParamsFromContext(c))
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
