package cohort

import (
	"fmt"
	"sort"

	"github.com/malackathon/observatorio/internal/domain/admissions"
	"github.com/malackathon/observatorio/internal/platform/chart"
	"github.com/malackathon/observatorio/internal/platform/format"
)

const (
	KPIReadmissionRate = "cohort-readmission-rate"
	KPIAvgDaysReadmit  = "cohort-avg-days-readmit"
	KPITotalPatients   = "cohort-total-patients"
	KPITotalAdmissions = "cohort-total-admissions"

	ChartJourney      = "cohort-journey-chart"
	ChartReadmission  = "cohort-readmission-dist"
	ChartComorbidity  = "cohort-comorbidity-chart"
	ChartCostAnalysis = "cohort-cost-analysis"
)

// journeyLimit caps the scatter at the patients with most admissions.
const journeyLimit = 50

// maxMarkerSize is the diameter in pixels of the largest journey bubble.
const maxMarkerSize = 20

type View struct {
	KPIs    map[string]string       `json:"kpis"`
	Figures map[string]chart.Figure `json:"figures"`
}

func BuildView(d *Data) View {
	if d == nil {
		d = &Data{}
	}
	return View{
		KPIs: kpis(d),
		Figures: map[string]chart.Figure{
			ChartJourney:      JourneyFigure(d.Journey),
			ChartReadmission:  ReadmissionFigure(d.Readmission),
			ChartComorbidity:  ComorbidityFigure(d.Comorbidity),
			ChartCostAnalysis: CostByFrequencyFigure(d.Journey),
		},
	}
}

func kpis(d *Data) map[string]string {
	if d.Readmission == nil {
		return map[string]string{
			KPIReadmissionRate: format.Missing,
			KPIAvgDaysReadmit:  format.Missing,
			KPITotalPatients:   format.Missing,
			KPITotalAdmissions: format.Missing,
		}
	}
	var admitted int64
	for _, j := range d.Journey {
		admitted += j.AdmissionCount
	}
	return map[string]string{
		KPIReadmissionRate: format.Percent(d.Readmission.ReadmissionRate),
		KPIAvgDaysReadmit:  fmt.Sprintf("%.0f", d.Readmission.AvgDaysToReadmission),
		KPITotalPatients:   format.Count(int64(len(d.Journey))),
		KPITotalAdmissions: format.Count(admitted),
	}
}

// JourneyFigure plots accumulated cost against number of admissions for the
// first journeyLimit patients, sized by total days in hospital.
func JourneyFigure(rows []admissions.JourneyRow) chart.Figure {
	if len(rows) == 0 {
		return chart.Placeholder()
	}
	if len(rows) > journeyLimit {
		rows = rows[:journeyLimit]
	}
	counts := make([]int64, len(rows))
	costs := make([]float64, len(rows))
	days := make([]int64, len(rows))
	var maxDays int64
	for i, r := range rows {
		counts[i] = r.AdmissionCount
		costs[i] = r.TotalCost
		days[i] = r.TotalDays
		if r.TotalDays > maxDays {
			maxDays = r.TotalDays
		}
	}
	marker := &chart.Marker{Color: counts, ColorScale: "Viridis", Size: days, SizeMode: "area"}
	if maxDays > 0 {
		marker.SizeRef = 2 * float64(maxDays) / (maxMarkerSize * maxMarkerSize)
	}
	scatter := chart.Trace{Type: "scatter", Mode: "markers", X: counts, Y: costs, Marker: marker}
	return chart.Figure{
		Data: []chart.Trace{scatter.WithHover(
			"<b>Ingresos:</b> %{x}<br><b>Coste Total:</b> €%{y:,.0f}<br><b>Días Totales:</b> %{marker.size}<br><extra></extra>")},
		Layout: chart.Layout{
			XAxis:      chart.AxisTitled("Número de Ingresos"),
			YAxis:      chart.AxisTitled("Coste Total Acumulado (€)"),
			ShowLegend: chart.Bool(false),
			Margin:     &chart.Margin{T: 30, B: 60, L: 70, R: 30},
			Height:     400,
		},
	}
}

// ReadmissionFigure is a donut of patients with and without a readmission.
func ReadmissionFigure(r *admissions.ReadmissionSummary) chart.Figure {
	if r == nil {
		return chart.Placeholder()
	}
	without := r.TotalPatients - r.PatientsWithReadmission
	pie := chart.Pie([]string{"Con Reingreso", "Sin Reingreso"}, []int64{r.PatientsWithReadmission, without}, 0.4).
		WithHover("<b>%{label}</b><br>Pacientes: %{value:,}<br>%{percent}<extra></extra>")
	pie.Marker = &chart.Marker{Colors: []string{chart.Red, chart.Green}}
	return chart.Figure{
		Data: []chart.Trace{pie},
		Layout: chart.Layout{
			Margin:     &chart.Margin{T: 30, B: 30, L: 30, R: 30},
			Height:     400,
			ShowLegend: chart.Bool(true),
			Legend:     chart.HorizontalLegend(),
		},
	}
}

func ComorbidityFigure(rows []admissions.ComorbidityRow) chart.Figure {
	if len(rows) == 0 {
		return chart.Placeholder()
	}
	diagnoses := make([]string, len(rows))
	patients := make([]int64, len(rows))
	for i, r := range rows {
		diagnoses[i] = fmt.Sprint(r.NumDiagnoses)
		patients[i] = r.PatientCount
	}
	bar := chart.Bar("", diagnoses, patients, "")
	bar.Marker = &chart.Marker{Color: patients, ColorScale: "Blues"}
	return chart.Figure{
		Data: []chart.Trace{bar.WithHover("<b>%{x} Diagnósticos</b><br>Pacientes: %{y:,}<extra></extra>")},
		Layout: chart.Layout{
			XAxis:      &chart.Axis{Title: &chart.Title{Text: "Número de Diagnósticos por Ingreso"}, Type: "category"},
			YAxis:      chart.AxisTitled("Número de Pacientes"),
			ShowLegend: chart.Bool(false),
			ColorAxis:  &chart.ColorAxis{ShowScale: false},
			Margin:     &chart.Margin{T: 30, B: 60, L: 70, R: 30},
			Height:     400,
		},
	}
}

// frequencyGroup aggregates journey rows sharing an admission count.
type frequencyGroup struct {
	AdmissionCount int64
	TotalCost      float64
	Patients       int64
}

func groupByFrequency(rows []admissions.JourneyRow) []frequencyGroup {
	byCount := map[int64]*frequencyGroup{}
	for _, r := range rows {
		g, ok := byCount[r.AdmissionCount]
		if !ok {
			g = &frequencyGroup{AdmissionCount: r.AdmissionCount}
			byCount[r.AdmissionCount] = g
		}
		g.TotalCost += r.TotalCost
		g.Patients++
	}
	groups := make([]frequencyGroup, 0, len(byCount))
	for _, g := range byCount {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].AdmissionCount < groups[j].AdmissionCount })
	return groups
}

// CostByFrequencyFigure shows accumulated cost (bars) and number of patients
// (line, right axis) per admission count.
func CostByFrequencyFigure(rows []admissions.JourneyRow) chart.Figure {
	if len(rows) == 0 {
		return chart.Placeholder()
	}
	groups := groupByFrequency(rows)
	counts := make([]int64, len(groups))
	costs := make([]float64, len(groups))
	patients := make([]int64, len(groups))
	for i, g := range groups {
		counts[i] = g.AdmissionCount
		costs[i] = g.TotalCost
		patients[i] = g.Patients
	}
	bar := chart.Bar("Coste Total", counts, costs, chart.Blue).
		WithHover("<b>%{x} Ingresos</b><br>Coste: €%{y:,.0f}<extra></extra>")
	line := chart.LineMarkers("Número de Pacientes", counts, patients, chart.Red, 3, 10).
		WithHover("<b>%{x} Ingresos</b><br>Pacientes: %{y}<extra></extra>").
		OnAxes("x", "y2")
	return chart.Figure{
		Data: []chart.Trace{bar, line},
		Layout: chart.Layout{
			XAxis:     chart.AxisTitled("Número de Ingresos"),
			YAxis:     chart.AxisTitled("Coste Total Acumulado (€)"),
			YAxis2:    &chart.Axis{Title: &chart.Title{Text: "Número de Pacientes"}, Overlaying: "y", Side: "right"},
			Margin:    &chart.Margin{T: 30, B: 60, L: 70, R: 70},
			Height:    400,
			HoverMode: "x unified",
			Legend:    chart.TopLegend(),
		},
	}
}
