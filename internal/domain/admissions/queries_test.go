package admissions

import (
	"strings"
	"testing"
	"time"

	"github.com/malackathon/observatorio/internal/platform/filter"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func fullFilter() filter.Params {
	return filter.Params{
		DateStart: date(2020, 1, 1),
		DateEnd:   date(2020, 12, 31),
		Sex:       "2",
		Community: "Galicia",
		Service:   "PSQ",
	}
}

func assertColumns(t *testing.T, name, sql string, cols ...string) {
	t.Helper()
	for _, c := range cols {
		if !strings.Contains(sql, " AS "+c) && !strings.Contains(sql, "i."+c) {
			t.Errorf("%s: expected column %q in SQL:\n%s", name, c, sql)
		}
	}
}

func TestOverviewQueries_Columns(t *testing.T) {
	p := fullFilter()
	tests := []struct {
		name string
		s    Statement
		cols []string
	}{
		{"kpi", KPISummarySQL(p), []string{"total_pacientes", "total_ingresos", "promedio_estancia", "edad_media", "coste_total"}},
		{"sex", SexDistributionSQL(p), []string{"sexo", "pacientes"}},
		{"age", AgeDistributionSQL(p), []string{"edad", "pacientes"}},
		{"time", AdmissionsOverTimeSQL(p), []string{"mes", "ingresos"}},
		{"top", TopDiagnosesSQL(p, 10), []string{"diagnostico", "frecuencia"}},
		{"service", ServiceUtilizationSQL(p), []string{"servicio", "ingresos"}},
		{"regional", RegionalDistributionSQL(p), []string{"comunidad", "pacientes"}},
	}
	for _, tt := range tests {
		assertColumns(t, tt.name, tt.s.SQL, tt.cols...)
	}
}

func TestKPISummarySQL_AllFilters(t *testing.T) {
	s := KPISummarySQL(fullFilter())
	if len(s.Args) != 5 {
		t.Fatalf("expected 5 args, got %d: %v", len(s.Args), s.Args)
	}
	for _, want := range []string{"p.sexo = $3", "p.comunidad_autonoma = $4", "i.servicio = $5"} {
		if !strings.Contains(s.SQL, want) {
			t.Errorf("expected %q in SQL:\n%s", want, s.SQL)
		}
	}
}

func TestKPISummarySQL_NoFilters(t *testing.T) {
	s := KPISummarySQL(filter.Params{Sex: filter.All, Community: filter.All, Service: filter.All})
	if strings.Contains(s.SQL, "WHERE") {
		t.Errorf("expected no WHERE clause:\n%s", s.SQL)
	}
	if s.Args == nil || len(s.Args) != 0 {
		t.Errorf("expected empty non-nil args, got %#v", s.Args)
	}
}

func TestSexDistributionSQL_IgnoresSex(t *testing.T) {
	s := SexDistributionSQL(fullFilter())
	if strings.Contains(s.SQL, "p.sexo = $") {
		t.Errorf("sex filter must not apply to the sex distribution:\n%s", s.SQL)
	}
	for _, label := range []string{"'Hombre'", "'Mujer'", "'No especificado'"} {
		if !strings.Contains(s.SQL, label) {
			t.Errorf("expected label %s", label)
		}
	}
	if len(s.Args) != 4 {
		t.Errorf("expected 4 args, got %d", len(s.Args))
	}
}

func TestServiceUtilizationSQL_IgnoresService(t *testing.T) {
	s := ServiceUtilizationSQL(fullFilter())
	if strings.Contains(s.SQL, "i.servicio = $") {
		t.Errorf("service filter must not apply:\n%s", s.SQL)
	}
	if !strings.Contains(s.SQL, "i.servicio IS NOT NULL") {
		t.Error("expected non-null service predicate")
	}
}

func TestRegionalDistributionSQL_IgnoresCommunity(t *testing.T) {
	s := RegionalDistributionSQL(fullFilter())
	if strings.Contains(s.SQL, "p.comunidad_autonoma = $") {
		t.Errorf("community filter must not apply:\n%s", s.SQL)
	}
}

func TestTopDiagnosesSQL_LimitIsLastArg(t *testing.T) {
	s := TopDiagnosesSQL(fullFilter(), 7)
	if !strings.HasSuffix(strings.TrimSpace(s.SQL), "LIMIT $6") {
		t.Errorf("expected LIMIT $6 at the end:\n%s", s.SQL)
	}
	if s.Args[len(s.Args)-1] != 7 {
		t.Errorf("expected limit 7 as last arg, got %v", s.Args)
	}
}

func TestMostFrequentDiagnosisSQL(t *testing.T) {
	s := MostFrequentDiagnosisSQL(filter.Params{})
	if s.Args[len(s.Args)-1] != 1 {
		t.Errorf("expected limit 1, got %v", s.Args)
	}
}

func TestCohortQueries_DatesOnly(t *testing.T) {
	p := fullFilter()
	for name, s := range map[string]Statement{
		"readmission": ReadmissionSQL(p, 30),
		"comorbidity": ComorbiditySQL(p),
		"journey":     CohortJourneySQL(p, 2),
		"severity":    CostBySeveritySQL(p),
		"risk":        RiskStratificationSQL(p),
	} {
		if strings.Contains(s.SQL, "p.sexo") || strings.Contains(s.SQL, "i.servicio = ") {
			t.Errorf("%s: dropdown filters must not apply:\n%s", name, s.SQL)
		}
		if !strings.Contains(s.SQL, "i.fecha_de_ingreso >= $1") || !strings.Contains(s.SQL, "i.fecha_de_ingreso <= $2") {
			t.Errorf("%s: expected date range predicates:\n%s", name, s.SQL)
		}
	}
}

func TestReadmissionSQL(t *testing.T) {
	s := ReadmissionSQL(fullFilter(), 45)
	assertColumns(t, "readmission", s.SQL,
		"total_patients", "patients_with_readmission", "total_readmissions",
		"readmission_rate", "avg_days_to_readmission")
	if !strings.Contains(s.SQL, "LEAD(i.fecha_de_ingreso)") {
		t.Error("expected LEAD window over admission dates")
	}
	if !strings.Contains(s.SQL, "COALESCE(i.fecha_de_fin_contacto, i.fecha_de_ingreso + COALESCE(i.estancia_dias, 0))") {
		t.Error("expected discharge fallback to admission date plus stay")
	}
	if !strings.Contains(s.SQL, "BETWEEN 0 AND $3") {
		t.Errorf("expected threshold bound as $3:\n%s", s.SQL)
	}
	if len(s.Args) != 3 || s.Args[2] != 45 {
		t.Errorf("unexpected args: %v", s.Args)
	}
}

func TestReadmissionSQL_NoDates(t *testing.T) {
	s := ReadmissionSQL(filter.Params{}, 30)
	if !strings.Contains(s.SQL, "BETWEEN 0 AND $1") {
		t.Errorf("expected threshold as $1 when no dates are set:\n%s", s.SQL)
	}
}

func TestComorbiditySQL(t *testing.T) {
	s := ComorbiditySQL(fullFilter())
	assertColumns(t, "comorbidity", s.SQL, "num_diagnoses", "patient_count", "admission_count")
	if !strings.Contains(s.SQL, "1 + COUNT(s.diagnostico)") {
		t.Error("expected principal plus secondary diagnosis count")
	}
}

func TestCohortJourneySQL(t *testing.T) {
	s := CohortJourneySQL(filter.Params{}, 3)
	assertColumns(t, "journey", s.SQL, "admission_count", "total_cost", "total_days",
		"first_admission", "last_admission", "days_between_first_last")
	if !strings.Contains(s.SQL, "HAVING COUNT(*) >= $1") {
		t.Errorf("expected min admissions in HAVING:\n%s", s.SQL)
	}
}

func TestClinicalQueries_Columns(t *testing.T) {
	p := fullFilter()
	assertColumns(t, "severity", CostBySeveritySQL(p).SQL,
		"nivel_severidad", "patient_count", "admission_count", "avg_cost", "avg_los", "total_cost")
	assertColumns(t, "risk", RiskStratificationSQL(p).SQL,
		"risk_level", "patient_count", "avg_cost", "avg_los")
	assertColumns(t, "los", LengthOfStaySQL(p).SQL,
		"total_admissions", "mean_los", "median_los", "std_dev", "min_los", "max_los", "p25", "p75", "p90")
}

func TestDiagnosisCorrelationSQL(t *testing.T) {
	s := DiagnosisCorrelationSQL(fullFilter(), 12)
	assertColumns(t, "correlation", s.SQL, "diagnosis_1", "diagnosis_2", "co_occurrence_count")
	if strings.Count(s.SQL, "i.fecha_de_ingreso >= $1") != 2 {
		t.Errorf("expected the date range in both union branches:\n%s", s.SQL)
	}
	if !strings.Contains(s.SQL, "a.diagnostico < b.diagnostico") {
		t.Error("expected unordered pairs")
	}
	if !strings.Contains(s.SQL, "HAVING COUNT(*) >= $3") || s.Args[2] != 12 {
		t.Errorf("expected min co-occurrence as $3, args %v", s.Args)
	}
}

func TestDiagnosisCorrelationSQL_NoDates(t *testing.T) {
	s := DiagnosisCorrelationSQL(filter.Params{}, 10)
	if !strings.Contains(s.SQL, "WHERE TRUE") {
		t.Errorf("expected TRUE condition without dates:\n%s", s.SQL)
	}
	if len(s.Args) != 1 {
		t.Errorf("expected only the min co-occurrence arg, got %v", s.Args)
	}
}

func TestLengthOfStaySQL_ServiceFilter(t *testing.T) {
	s := LengthOfStaySQL(fullFilter())
	if !strings.Contains(s.SQL, "i.servicio = $3") {
		t.Errorf("expected service filter:\n%s", s.SQL)
	}
	if strings.Contains(s.SQL, "p.sexo") {
		t.Error("sex filter must not apply")
	}
	if !strings.Contains(s.SQL, "PERCENTILE_CONT(0.90)") {
		t.Error("expected p90 percentile")
	}

	all := LengthOfStaySQL(filter.Params{Service: filter.All})
	if strings.Contains(all.SQL, "i.servicio =") {
		t.Error("expected no service predicate for all")
	}
}
