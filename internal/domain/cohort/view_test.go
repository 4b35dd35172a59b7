package cohort

import (
	"testing"

	"github.com/malackathon/observatorio/internal/domain/admissions"
	"github.com/malackathon/observatorio/internal/platform/chart"
	"github.com/malackathon/observatorio/internal/platform/format"
)

func TestBuildView_NilData(t *testing.T) {
	v := BuildView(nil)

	for _, id := range []string{KPIReadmissionRate, KPIAvgDaysReadmit, KPITotalPatients, KPITotalAdmissions} {
		if v.KPIs[id] != format.Missing {
			t.Errorf("%s: expected %q, got %q", id, format.Missing, v.KPIs[id])
		}
	}
	for _, id := range []string{ChartJourney, ChartReadmission, ChartComorbidity, ChartCostAnalysis} {
		fig, ok := v.Figures[id]
		if !ok {
			t.Fatalf("missing figure %s", id)
		}
		if !fig.Empty() || fig.Layout.Title.Text != chart.NoDataTitle {
			t.Errorf("%s: expected placeholder", id)
		}
	}
}

func TestBuildView_KPIs(t *testing.T) {
	d := &Data{
		Readmission: &admissions.ReadmissionSummary{ReadmissionRate: 12.345, AvgDaysToReadmission: 11.6},
		Journey: []admissions.JourneyRow{
			{IDPaciente: "P1", AdmissionCount: 700},
			{IDPaciente: "P2", AdmissionCount: 400},
		},
	}
	v := BuildView(d)

	want := map[string]string{
		KPIReadmissionRate: "12.3%",
		KPIAvgDaysReadmit:  "12",
		KPITotalPatients:   "2",
		KPITotalAdmissions: "1,100",
	}
	for id, w := range want {
		if v.KPIs[id] != w {
			t.Errorf("%s: expected %q, got %q", id, w, v.KPIs[id])
		}
	}
	if !v.Figures[ChartComorbidity].Empty() {
		t.Error("expected comorbidity placeholder without rows")
	}
}

func TestReadmissionFigure(t *testing.T) {
	fig := ReadmissionFigure(&admissions.ReadmissionSummary{TotalPatients: 10, PatientsWithReadmission: 3})

	pie := fig.Data[0]
	values := pie.Values.([]int64)
	if values[0] != 3 || values[1] != 7 {
		t.Errorf("unexpected slices %v", values)
	}
	if pie.Hole != 0.4 {
		t.Errorf("expected donut, got hole %v", pie.Hole)
	}
	if pie.Marker.Colors[0] != chart.Red || pie.Marker.Colors[1] != chart.Green {
		t.Errorf("unexpected colors %v", pie.Marker.Colors)
	}
}

func TestJourneyFigure_LimitsPatients(t *testing.T) {
	rows := make([]admissions.JourneyRow, 80)
	for i := range rows {
		rows[i] = admissions.JourneyRow{AdmissionCount: int64(80 - i), TotalDays: 10}
	}
	fig := JourneyFigure(rows)

	if n := len(fig.Data[0].X.([]int64)); n != journeyLimit {
		t.Errorf("expected %d points, got %d", journeyLimit, n)
	}
	if fig.Data[0].Marker.SizeRef != 2*10.0/(maxMarkerSize*maxMarkerSize) {
		t.Errorf("unexpected sizeref %v", fig.Data[0].Marker.SizeRef)
	}
}

func TestCostByFrequencyFigure(t *testing.T) {
	rows := []admissions.JourneyRow{
		{IDPaciente: "P1", AdmissionCount: 3, TotalCost: 100},
		{IDPaciente: "P2", AdmissionCount: 2, TotalCost: 50},
		{IDPaciente: "P3", AdmissionCount: 3, TotalCost: 25},
	}
	fig := CostByFrequencyFigure(rows)

	if len(fig.Data) != 2 {
		t.Fatalf("expected bar and line, got %d traces", len(fig.Data))
	}
	bar, line := fig.Data[0], fig.Data[1]
	counts := bar.X.([]int64)
	costs := bar.Y.([]float64)
	patients := line.Y.([]int64)
	if counts[0] != 2 || counts[1] != 3 {
		t.Errorf("expected ascending admission counts, got %v", counts)
	}
	if costs[0] != 50 || costs[1] != 125 {
		t.Errorf("unexpected costs %v", costs)
	}
	if patients[0] != 1 || patients[1] != 2 {
		t.Errorf("unexpected patients %v", patients)
	}
	if line.YAxis != "y2" || fig.Layout.YAxis2 == nil || fig.Layout.YAxis2.Overlaying != "y" {
		t.Error("expected patients on a secondary axis")
	}
}

func TestComorbidityFigure_CategoryAxis(t *testing.T) {
	fig := ComorbidityFigure([]admissions.ComorbidityRow{{NumDiagnoses: 2, PatientCount: 5}})

	if fig.Layout.XAxis.Type != "category" {
		t.Errorf("expected category axis, got %q", fig.Layout.XAxis.Type)
	}
	if x := fig.Data[0].X.([]string); x[0] != "2" {
		t.Errorf("unexpected x %v", x)
	}
}
