package reporting

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/malackathon/observatorio/internal/platform/db"
)

// Measure is a named tabular summary. Build turns the request's filters into
// a parameterized query.
type Measure struct {
	ID          string                                       `json:"id"`
	Name        string                                       `json:"name"`
	Description string                                       `json:"description"`
	Parameters  []string                                     `json:"parameters"`
	Build       func(c echo.Context) (string, []interface{}) `json:"-"`
}

// Report holds the results of evaluating a measure.
type Report struct {
	MeasureID   string            `json:"measure_id"`
	MeasureName string            `json:"measure_name"`
	GeneratedAt time.Time         `json:"generated_at"`
	Parameters  map[string]string `json:"parameters,omitempty"`
	Columns     []string          `json:"columns"`
	Rows        [][]interface{}   `json:"rows"`
}

// Handler provides HTTP handlers for the reporting API.
type Handler struct {
	q        db.Querier
	measures []Measure
	logger   zerolog.Logger
}

func NewHandler(q db.Querier, measures []Measure, logger zerolog.Logger) *Handler {
	return &Handler{
		q:        q,
		measures: measures,
		logger:   logger.With().Str("component", "reporting").Logger(),
	}
}

// RegisterRoutes registers the reporting API routes.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/reports")
	g.GET("", h.ListMeasures)
	g.GET("/:id", h.EvaluateMeasure)
}

// ListMeasures returns all available measure definitions.
func (h *Handler) ListMeasures(c echo.Context) error {
	return c.JSON(http.StatusOK, h.measures)
}

// EvaluateMeasure runs a measure with the request's filters and returns the
// result as JSON, or as CSV when format=csv.
func (h *Handler) EvaluateMeasure(c echo.Context) error {
	m := h.Find(c.Param("id"))
	if m == nil {
		return echo.NewHTTPError(http.StatusNotFound, "informe no encontrado")
	}

	params := map[string]string{}
	for _, name := range m.Parameters {
		if v := c.QueryParam(name); v != "" {
			params[name] = v
		}
	}

	sql, args := m.Build(c)
	columns, rows, err := h.execute(c.Request().Context(), sql, args)
	if err != nil {
		h.logger.Error().Err(err).Str("measure", m.ID).Msg("report query failed")
		if errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "no se pudo generar el informe")
	}

	if c.QueryParam("format") == "csv" {
		return writeCSV(c, m.ID, columns, rows)
	}

	return c.JSON(http.StatusOK, Report{
		MeasureID:   m.ID,
		MeasureName: m.Name,
		GeneratedAt: time.Now().UTC(),
		Parameters:  params,
		Columns:     columns,
		Rows:        rows,
	})
}

// Find looks up a measure by ID.
func (h *Handler) Find(id string) *Measure {
	for i := range h.measures {
		if h.measures[i].ID == id {
			return &h.measures[i]
		}
	}
	return nil
}

// execute runs a query and returns its column names and normalized rows.
func (h *Handler) execute(ctx context.Context, sql string, args []interface{}) ([]string, [][]interface{}, error) {
	rows, err := h.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = fd.Name
	}

	results := [][]interface{}{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, nil, fmt.Errorf("read row: %w", err)
		}
		for i, v := range values {
			values[i] = normalize(v)
		}
		results = append(results, values)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate rows: %w", err)
	}

	return columns, results, nil
}

// normalize converts driver values into plain JSON-friendly ones. Dates
// become "2006-01-02" and numerics become float64.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format(time.RFC3339)
	case pgtype.Numeric:
		f, err := t.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	default:
		return v
	}
}

func cell(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	default:
		return fmt.Sprint(t)
	}
}

func writeCSV(c echo.Context, id string, columns []string, rows [][]interface{}) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.csv"`, id))
	res.WriteHeader(http.StatusOK)

	w := csv.NewWriter(res)
	if err := w.Write(columns); err != nil {
		return err
	}
	record := make([]string, len(columns))
	for _, row := range rows {
		for i, v := range row {
			record[i] = cell(v)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
