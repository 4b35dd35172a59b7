package clinical

import (
	"fmt"

	"github.com/malackathon/observatorio/internal/domain/admissions"
	"github.com/malackathon/observatorio/internal/platform/chart"
	"github.com/malackathon/observatorio/internal/platform/format"
)

const (
	ChartSeverity    = "clinical-severity-chart"
	ChartRisk        = "clinical-risk-chart"
	ChartCorrelation = "clinical-correlation-chart"
	ChartLOS         = "clinical-los-chart"

	PanelLOS      = "los-statistics"
	PanelKeyStats = "clinical-key-stats"
)

const (
	pairLimit      = 15
	pairNameLength = 40
	highRiskLevel  = 3
)

// Panel is a titled list of statistics. Message replaces the list when
// there is nothing to show.
type Panel struct {
	Title   string        `json:"title,omitempty"`
	Stats   []format.Stat `json:"stats"`
	Message string        `json:"message,omitempty"`
}

type View struct {
	Figures map[string]chart.Figure `json:"figures"`
	Panels  map[string]Panel        `json:"panels"`
}

func BuildView(d *Data) View {
	var (
		severity    []admissions.SeverityRow
		risk        []admissions.RiskRow
		correlation []admissions.DiagnosisPair
		los         *admissions.LOSStats
	)
	if d != nil {
		severity, risk, correlation, los = d.Severity, d.Risk, d.Correlation, d.LOS
	}
	return View{
		Figures: map[string]chart.Figure{
			ChartSeverity:    SeverityFigure(severity),
			ChartRisk:        RiskFigure(risk),
			ChartCorrelation: CorrelationFigure(correlation),
			ChartLOS:         LOSFigure(los),
		},
		Panels: map[string]Panel{
			PanelLOS:      LOSPanel(los),
			PanelKeyStats: KeyStatsPanel(d),
		},
	}
}

// SeverityFigure draws patients, average cost and average stay per APR
// severity level side by side.
func SeverityFigure(rows []admissions.SeverityRow) chart.Figure {
	if len(rows) == 0 {
		return chart.Placeholder()
	}
	levels := make([]int, len(rows))
	patients := make([]int64, len(rows))
	costs := make([]float64, len(rows))
	stays := make([]float64, len(rows))
	for i, r := range rows {
		levels[i] = r.NivelSeveridad
		patients[i] = r.PatientCount
		costs[i] = r.AvgCost
		stays[i] = r.AvgLOS
	}

	layout, axes := chart.Columns([]string{"Pacientes por Nivel", "Coste Promedio", "Estancia Media"}, 0.07)
	for col := 1; col <= len(axes); col++ {
		layout.XAxisAt(col).Title = &chart.Title{Text: "Nivel de Severidad"}
	}
	layout.ShowLegend = chart.Bool(false)
	layout.Height = 400
	layout.Margin = &chart.Margin{T: 50, B: 60, L: 60, R: 30}

	return chart.Figure{
		Data: []chart.Trace{
			chart.Bar("Pacientes", levels, patients, chart.Blue).
				WithHover("<b>Nivel %{x}</b><br>Pacientes: %{y:,}<extra></extra>").
				OnAxes(axes[0][0], axes[0][1]),
			chart.Bar("Coste Promedio", levels, costs, chart.Orange).
				WithHover("<b>Nivel %{x}</b><br>Coste: €%{y:,.0f}<extra></extra>").
				OnAxes(axes[1][0], axes[1][1]),
			chart.Bar("Estancia Media", levels, stays, chart.Green).
				WithHover("<b>Nivel %{x}</b><br>Días: %{y:.1f}<extra></extra>").
				OnAxes(axes[2][0], axes[2][1]),
		},
		Layout: layout,
	}
}

// RiskFigure draws patients per mortality risk level with the average cost
// on a secondary axis.
func RiskFigure(rows []admissions.RiskRow) chart.Figure {
	if len(rows) == 0 {
		return chart.Placeholder()
	}
	levels := make([]int, len(rows))
	patients := make([]int64, len(rows))
	costs := make([]float64, len(rows))
	for i, r := range rows {
		levels[i] = r.RiskLevel
		patients[i] = r.PatientCount
		costs[i] = r.AvgCost
	}
	bar := chart.Bar("Número de Pacientes", levels, patients, chart.Red).
		WithHover("<b>Riesgo %{x}</b><br>Pacientes: %{y:,}<extra></extra>")
	line := chart.LineMarkers("Coste Promedio", levels, costs, chart.Orange, 3, 10).
		WithHover("<b>Riesgo %{x}</b><br>Coste: €%{y:,.0f}<extra></extra>").
		OnAxes("x", "y2")
	return chart.Figure{
		Data: []chart.Trace{bar, line},
		Layout: chart.Layout{
			XAxis:     chart.AxisTitled("Nivel de Riesgo de Mortalidad"),
			YAxis:     &chart.Axis{Title: &chart.Title{Text: "Número de Pacientes"}, Side: "left"},
			YAxis2:    &chart.Axis{Title: &chart.Title{Text: "Coste Promedio (€)"}, Overlaying: "y", Side: "right"},
			Height:    400,
			HoverMode: "x unified",
			Legend:    chart.TopLegend(),
		},
	}
}

// PairLabel joins two diagnosis names, each cut at 40 characters.
func PairLabel(p admissions.DiagnosisPair) string {
	return format.Truncate(p.Diagnosis1, pairNameLength, pairNameLength) +
		" + " + format.Truncate(p.Diagnosis2, pairNameLength, pairNameLength)
}

// CorrelationFigure ranks the most frequent diagnosis pairs.
func CorrelationFigure(pairs []admissions.DiagnosisPair) chart.Figure {
	if len(pairs) == 0 {
		return chart.Placeholder()
	}
	if len(pairs) > pairLimit {
		pairs = pairs[:pairLimit]
	}
	labels := make([]string, len(pairs))
	counts := make([]int64, len(pairs))
	for i, p := range pairs {
		labels[i] = PairLabel(p)
		counts[i] = p.CoOccurrenceCount
	}
	bar := chart.HBar(labels, counts, "Reds").
		WithHover("<b>%{y}</b><br>Co-ocurrencias: %{x:,}<extra></extra>")
	return chart.Figure{
		Data: []chart.Trace{bar},
		Layout: chart.Layout{
			XAxis:      &chart.Axis{Title: &chart.Title{Text: "Número de Co-ocurrencias"}, AutoMargin: true},
			YAxis:      &chart.Axis{AutoMargin: true},
			ShowLegend: chart.Bool(false),
			ColorAxis:  &chart.ColorAxis{ShowScale: false},
			Margin:     &chart.Margin{T: 30, B: 60, L: 20, R: 20},
			Height:     600,
		},
	}
}

// LOSFigure is a box plot drawn from the precomputed quartiles.
func LOSFigure(s *admissions.LOSStats) chart.Figure {
	if s == nil {
		return chart.Placeholder()
	}
	box := chart.Box(chart.BoxStats{
		Name:       "Distribución",
		Min:        s.MinLOS,
		Max:        s.MaxLOS,
		Q1:         s.P25,
		Q3:         s.P75,
		Median:     s.MedianLOS,
		Mean:       s.MeanLOS,
		SD:         s.StdDev,
		ShowMeanSD: true,
	}, chart.Blue)
	return chart.Figure{
		Data: []chart.Trace{box},
		Layout: chart.Layout{
			YAxis:      chart.AxisTitled("Días de Estancia"),
			ShowLegend: chart.Bool(false),
			Height:     400,
			Margin:     &chart.Margin{T: 30, B: 60, L: 70, R: 30},
		},
	}
}

func LOSPanel(s *admissions.LOSStats) Panel {
	if s == nil {
		return Panel{Stats: []format.Stat{}, Message: "No hay estadísticas disponibles"}
	}
	return Panel{Stats: []format.Stat{
		{Label: "Media", Value: format.Days(s.MeanLOS)},
		{Label: "Mediana", Value: format.Days(s.MedianLOS)},
		{Label: "Desv. Estándar", Value: fmt.Sprintf("%.1f", s.StdDev)},
		{Label: "Percentil 25", Value: format.Days(s.P25)},
		{Label: "Percentil 75", Value: format.Days(s.P75)},
		{Label: "Percentil 90", Value: format.Days(s.P90)},
	}}
}

// KeyStatsPanel summarizes the page: patients across severity levels, their
// weighted mean severity, patients at mortality risk 3 or above and the
// number of diagnosis pairs.
func KeyStatsPanel(d *Data) Panel {
	if d == nil {
		return Panel{Stats: []format.Stat{}, Message: chart.NoDataTitle}
	}
	var patients, weighted int64
	for _, s := range d.Severity {
		patients += s.PatientCount
		weighted += int64(s.NivelSeveridad) * s.PatientCount
	}
	var highRisk int64
	for _, r := range d.Risk {
		if r.RiskLevel >= highRiskLevel {
			highRisk += r.PatientCount
		}
	}
	var avgSeverity, highRiskPct float64
	if patients > 0 {
		avgSeverity = float64(weighted) / float64(patients)
		highRiskPct = float64(highRisk) / float64(patients) * 100
	}
	return Panel{
		Title: "Resumen Clínico",
		Stats: []format.Stat{
			{Label: "Total Pacientes", Value: format.Count(patients), Icon: "bi-people-fill text-primary"},
			{Label: "Severidad Promedio", Value: fmt.Sprintf("%.2f", avgSeverity), Icon: "bi-activity text-warning"},
			{Label: "Pacientes Alto Riesgo", Value: fmt.Sprintf("%s (%s)", format.Count(highRisk), format.Percent(highRiskPct)), Icon: "bi-exclamation-triangle text-danger"},
			{Label: "Pares Diagnósticos", Value: fmt.Sprint(len(d.Correlation)), Icon: "bi-diagram-3 text-info"},
		},
	}
}
