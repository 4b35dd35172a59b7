// Package web serves the dashboard pages and their static assets. Pages are
// server-rendered shells; data arrives from the JSON API and is drawn in the
// browser with Plotly.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page is one navigable dashboard page.
type Page struct {
	ID       string
	Label    string
	Title    string
	Path     string
	Icon     string
	Color    string
	Endpoint string // JSON API path the page loads its data from
	template string
}

// Pages in navbar order.
var Pages = []Page{
	{ID: "home", Label: "Inicio", Title: "Observatorio de Salud Mental", Path: "/", Icon: "bi-house-door-fill", Color: "#e74c3c", template: "landing.html"},
	{ID: "dashboard", Label: "Dashboard", Title: "Dashboard de Salud Mental", Path: "/dashboard", Icon: "bi-speedometer2", Color: "#3498db", Endpoint: "/api/overview", template: "dashboard.html"},
	{ID: "cohort", Label: "Cohortes", Title: "Análisis de Cohortes", Path: "/cohort-analysis", Icon: "bi-people-fill", Color: "#9b59b6", Endpoint: "/api/cohort", template: "cohort.html"},
	{ID: "clinical", Label: "Clínico", Title: "Análisis Clínico", Path: "/clinical-insights", Icon: "bi-clipboard2-pulse", Color: "#27ae60", Endpoint: "/api/clinical", template: "clinical.html"},
}

// Card describes a KPI, chart or panel card in a page template.
type Card struct {
	Title       string
	ID          string
	Icon        string
	Color       string
	Description string
}

var funcs = template.FuncMap{
	"kpi": func(title, id, icon, color string) Card {
		return Card{Title: title, ID: id, Icon: icon, Color: color}
	},
	"kpiNote": func(title, id, icon, color, note string) Card {
		return Card{Title: title, ID: id, Icon: icon, Color: color, Description: note}
	},
	"chart": func(title, id, icon, description string) Card {
		return Card{Title: title, ID: id, Icon: icon, Description: description}
	},
}

// PageData is what every page template receives.
type PageData struct {
	Page    Page
	Nav     []Page
	Version string
}

// Renderer implements echo.Renderer with one template set per page, each
// made of the shared layout, the card partials and the page body.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(Pages))}
	for _, p := range Pages {
		t, err := template.New(p.template).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/partials.html", "templates/"+p.template)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", p.template, err)
		}
		r.pages[p.ID] = t
	}
	return r, nil
}

// Render executes the layout of the page named name.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// Handler serves the pages.
type Handler struct {
	version string
	logger  zerolog.Logger
}

func NewHandler(version string, logger zerolog.Logger) *Handler {
	return &Handler{
		version: version,
		logger:  logger.With().Str("component", "web").Logger(),
	}
}

// RegisterRoutes registers the pages, the static assets under /assets and a
// fallback that sends unknown page paths to the landing page.
func (h *Handler) RegisterRoutes(e *echo.Echo) error {
	assets, err := fs.Sub(staticFS, "static")
	if err != nil {
		return fmt.Errorf("static assets: %w", err)
	}
	e.StaticFS("/assets", assets)

	for _, p := range Pages {
		e.GET(p.Path, h.page(p))
	}
	e.GET("/*", h.fallback)
	return nil
}

func (h *Handler) page(p Page) echo.HandlerFunc {
	return func(c echo.Context) error {
		return h.render(c, p)
	}
}

func (h *Handler) render(c echo.Context, p Page) error {
	nav := make([]Page, 0, len(Pages)-1)
	for _, other := range Pages {
		if other.ID != p.ID {
			nav = append(nav, other)
		}
	}
	return c.Render(http.StatusOK, p.ID, PageData{Page: p, Nav: nav, Version: h.version})
}

// fallback renders the landing page for unknown page paths. API, asset and
// health paths keep their 404.
func (h *Handler) fallback(c echo.Context) error {
	path := c.Request().URL.Path
	for _, prefix := range []string{"/api/", "/assets/", "/health"} {
		if strings.HasPrefix(path, prefix) {
			return echo.ErrNotFound
		}
	}
	h.logger.Debug().Str("path", path).Msg("unknown page, serving landing")
	return h.render(c, Pages[0])
}
