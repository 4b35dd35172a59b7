package overview

import (
	"sort"

	"github.com/malackathon/observatorio/internal/domain/admissions"
	"github.com/malackathon/observatorio/internal/platform/chart"
	"github.com/malackathon/observatorio/internal/platform/format"
)

// Element ids of the overview page. The browser script writes each KPI and
// figure into the element with the matching id.
const (
	KPITotalPatients   = "kpi-total-patients"
	KPITotalAdmissions = "kpi-total-admissions"
	KPIAvgStay         = "kpi-avg-stay"
	KPIAvgAge          = "kpi-avg-age"
	KPITotalCost       = "kpi-total-cost"
	KPITopDiagnosis    = "kpi-top-diagnosis"

	ChartSex          = "chart-sex-distribution"
	ChartAge          = "chart-age-distribution"
	ChartAdmissions   = "chart-admissions-time"
	ChartTopDiagnoses = "chart-top-diagnoses"
	ChartServices     = "chart-service-utilization"
	ChartRegions      = "chart-regional-distribution"
)

// set2 is the qualitative palette of the sex distribution pie.
var set2 = []string{"#66c2a5", "#fc8d62", "#8da0cb", "#e78ac3", "#a6d854", "#ffd92f", "#e5c494", "#b3b3b3"}

type View struct {
	KPIs    map[string]string       `json:"kpis"`
	Figures map[string]chart.Figure `json:"figures"`
}

// BuildView turns loaded data into KPI strings and figures. A nil d renders
// every KPI as "—" and every figure as a placeholder.
func BuildView(d *Data) View {
	if d == nil {
		d = &Data{}
	}
	return View{
		KPIs: kpis(d),
		Figures: map[string]chart.Figure{
			ChartSex:          SexFigure(d.SexDistribution),
			ChartAge:          AgeFigure(d.AgeDistribution),
			ChartAdmissions:   AdmissionsFigure(d.AdmissionsOverTime),
			ChartTopDiagnoses: TopDiagnosesFigure(d.TopDiagnoses),
			ChartServices:     ServiceFigure(d.ServiceUtilization),
			ChartRegions:      RegionalFigure(d.RegionalDistribution),
		},
	}
}

func kpis(d *Data) map[string]string {
	out := map[string]string{
		KPITotalPatients:   format.Missing,
		KPITotalAdmissions: format.Missing,
		KPIAvgStay:         format.Missing,
		KPIAvgAge:          format.Missing,
		KPITotalCost:       format.Missing,
		KPITopDiagnosis:    format.Missing,
	}
	if d.KPIs == nil {
		return out
	}
	k := d.KPIs
	out[KPITotalPatients] = format.Count(k.TotalPacientes)
	out[KPITotalAdmissions] = format.Count(k.TotalIngresos)
	out[KPIAvgStay] = format.Decimal(k.PromedioEstancia, 1)
	out[KPIAvgAge] = format.Decimal(k.EdadMedia, 1)
	out[KPITotalCost] = format.Cost(k.CosteTotal)
	if d.MostFrequentDiagnosis != nil && d.MostFrequentDiagnosis.Diagnostico != "" {
		out[KPITopDiagnosis] = format.Truncate(d.MostFrequentDiagnosis.Diagnostico, 30, 27)
	}
	return out
}

func SexFigure(rows []admissions.SexCount) chart.Figure {
	if len(rows) == 0 {
		return chart.PlaceholderWithNote("Sin datos")
	}
	labels := make([]string, len(rows))
	values := make([]int64, len(rows))
	for i, r := range rows {
		labels[i] = r.Sexo
		values[i] = r.Pacientes
	}
	pie := chart.Pie(labels, values, 0).
		WithHover("<b>%{label}</b><br>Pacientes: %{value:,}<br>Porcentaje: %{percent}<extra></extra>")
	pie.TextInfo = "percent+label"
	pie.TextPosition = "inside"
	pie.Marker = &chart.Marker{Colors: set2}
	return chart.Figure{
		Data: []chart.Trace{pie},
		Layout: chart.Layout{
			ShowLegend: chart.Bool(true),
			Legend:     chart.HorizontalLegend(),
			Margin:     &chart.Margin{T: 30, B: 30, L: 30, R: 30},
		},
	}
}

func AgeFigure(rows []admissions.AgeCount) chart.Figure {
	if len(rows) == 0 {
		return chart.Placeholder()
	}
	ages := make([]int, len(rows))
	counts := make([]int64, len(rows))
	for i, r := range rows {
		ages[i] = r.Edad
		counts[i] = r.Pacientes
	}
	hist := chart.Trace{
		Type:     "histogram",
		X:        ages,
		Y:        counts,
		HistFunc: "sum",
		NBinsX:   30,
		Marker:   &chart.Marker{Color: chart.Blue},
	}
	return chart.Figure{
		Data: []chart.Trace{hist.WithHover("<b>Edad: %{x}</b><br>Pacientes: %{y:,}<extra></extra>")},
		Layout: chart.Layout{
			XAxis:  chart.AxisTitled("Edad (años)"),
			YAxis:  chart.AxisTitled("Número de Pacientes"),
			BarGap: 0.1,
			Margin: &chart.Margin{T: 30, B: 60, L: 60, R: 30},
		},
	}
}

func AdmissionsFigure(rows []admissions.MonthlyAdmissions) chart.Figure {
	if len(rows) == 0 {
		return chart.Placeholder()
	}
	months := make([]string, len(rows))
	counts := make([]int64, len(rows))
	for i, r := range rows {
		months[i] = r.Mes
		counts[i] = r.Ingresos
	}
	line := chart.LineMarkers("", months, counts, chart.Green, 3, 8).
		WithHover("<b>%{x}</b><br>Ingresos: %{y:,}<extra></extra>")
	return chart.Figure{
		Data: []chart.Trace{line},
		Layout: chart.Layout{
			XAxis:     chart.AxisTitled("Mes"),
			YAxis:     chart.AxisTitled("Número de Ingresos"),
			HoverMode: "x unified",
			Margin:    &chart.Margin{T: 30, B: 60, L: 60, R: 30},
		},
	}
}

func TopDiagnosesFigure(rows []admissions.DiagnosisCount) chart.Figure {
	if len(rows) == 0 {
		return chart.Placeholder()
	}
	labels := make([]string, len(rows))
	counts := make([]int64, len(rows))
	full := make([][]interface{}, len(rows))
	for i, r := range rows {
		labels[i] = format.Truncate(r.Diagnostico, 40, 40)
		counts[i] = r.Frecuencia
		full[i] = []interface{}{r.Diagnostico}
	}
	bar := chart.HBar(labels, counts, "Viridis").
		WithHover("<b>%{customdata[0]}</b><br>Frecuencia: %{x:,}<extra></extra>")
	bar.CustomData = full
	return chart.Figure{
		Data: []chart.Trace{bar},
		Layout: chart.Layout{
			XAxis: &chart.Axis{Title: &chart.Title{Text: "Frecuencia"}, AutoMargin: true},
			YAxis: &chart.Axis{
				CategoryOrder: "total ascending",
				AutoMargin:    true,
				TickFont:      &chart.Font{Size: 11},
			},
			ShowLegend: chart.Bool(false),
			ColorAxis:  &chart.ColorAxis{ShowScale: false},
			Margin:     &chart.Margin{T: 30, B: 60, L: 20, R: 20},
			Height:     500,
			AutoSize:   true,
		},
	}
}

func ServiceFigure(rows []admissions.ServiceCount) chart.Figure {
	if len(rows) == 0 {
		return chart.Placeholder()
	}
	services := make([]string, len(rows))
	counts := make([]int64, len(rows))
	for i, r := range rows {
		services[i] = r.Servicio
		counts[i] = r.Ingresos
	}
	bar := chart.Bar("", services, counts, chart.Blue).
		WithHover("<b>%{x}</b><br>Ingresos: %{y:,}<extra></extra>")
	return chart.Figure{
		Data: []chart.Trace{bar},
		Layout: chart.Layout{
			XAxis:      &chart.Axis{Title: &chart.Title{Text: "Servicio"}, TickAngle: -45},
			YAxis:      chart.AxisTitled("Número de Ingresos"),
			ShowLegend: chart.Bool(false),
			Margin:     &chart.Margin{T: 30, B: 80, L: 60, R: 30},
			Height:     450,
		},
	}
}

func RegionalFigure(rows []admissions.RegionCount) chart.Figure {
	if len(rows) == 0 {
		return chart.Placeholder()
	}
	sorted := make([]admissions.RegionCount, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Pacientes < sorted[j].Pacientes })

	regions := make([]string, len(sorted))
	counts := make([]int64, len(sorted))
	for i, r := range sorted {
		regions[i] = r.Comunidad
		counts[i] = r.Pacientes
	}
	bar := chart.HBar(regions, counts, "Oranges").
		WithHover("<b>%{y}</b><br>Pacientes: %{x:,}<extra></extra>")
	return chart.Figure{
		Data: []chart.Trace{bar},
		Layout: chart.Layout{
			XAxis:      &chart.Axis{Title: &chart.Title{Text: "Número de Pacientes"}, AutoMargin: true},
			YAxis:      &chart.Axis{AutoMargin: true, TickFont: &chart.Font{Size: 11}},
			ShowLegend: chart.Bool(false),
			ColorAxis:  &chart.ColorAxis{ShowScale: false},
			Margin:     &chart.Margin{T: 30, B: 60, L: 20, R: 20},
			Height:     600,
			AutoSize:   true,
		},
	}
}
