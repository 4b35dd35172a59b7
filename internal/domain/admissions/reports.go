package admissions

import (
	"github.com/labstack/echo/v4"

	"github.com/malackathon/observatorio/internal/platform/filter"
	"github.com/malackathon/observatorio/internal/platform/reporting"
)

var filterParams = []string{"date_start", "date_end", "sex", "community", "service"}

var dateParams = []string{"date_start", "date_end"}

func measure(id, name, desc string, params []string, build func(c echo.Context) Statement) reporting.Measure {
	return reporting.Measure{
		ID:          id,
		Name:        name,
		Description: desc,
		Parameters:  params,
		Build: func(c echo.Context) (string, []interface{}) {
			s := build(c)
			return s.SQL, s.Args
		},
	}
}

// Measures exposes every dashboard query as a downloadable table. Each one
// reads the same query parameters as the page it belongs to.
func Measures() []reporting.Measure {
	withFilter := func(f func(filter.Params) Statement) func(echo.Context) Statement {
		return func(c echo.Context) Statement { return f(filter.FromContext(c)) }
	}

	return []reporting.Measure{
		measure("kpi-summary", "Indicadores generales",
			"Pacientes, ingresos, estancia media, edad media y coste total",
			filterParams, withFilter(KPISummarySQL)),
		measure("sex-distribution", "Distribución por sexo",
			"Pacientes por sexo", filterParams, withFilter(SexDistributionSQL)),
		measure("age-distribution", "Distribución por edad",
			"Pacientes por edad en años", filterParams, withFilter(AgeDistributionSQL)),
		measure("admissions-over-time", "Ingresos por mes",
			"Número de ingresos por mes", filterParams, withFilter(AdmissionsOverTimeSQL)),
		measure("top-diagnoses", "Diagnósticos principales",
			"Diagnósticos principales más frecuentes",
			append([]string{"limit"}, filterParams...),
			func(c echo.Context) Statement {
				return TopDiagnosesSQL(filter.FromContext(c), filter.Int(c, "limit", DefaultTopDiagnoses, 1, 100))
			}),
		measure("service-utilization", "Utilización de servicios",
			"Ingresos por servicio", filterParams, withFilter(ServiceUtilizationSQL)),
		measure("regional-distribution", "Distribución regional",
			"Pacientes por comunidad autónoma", filterParams, withFilter(RegionalDistributionSQL)),
		measure("readmission", "Reingresos",
			"Tasa de reingreso dentro del umbral en días",
			append([]string{"threshold"}, dateParams...),
			func(c echo.Context) Statement {
				return ReadmissionSQL(filter.FromContext(c),
					filter.Int(c, "threshold", DefaultReadmissionThreshold, MinReadmissionThreshold, MaxReadmissionThreshold))
			}),
		measure("comorbidity", "Comorbilidad",
			"Ingresos y pacientes por número de diagnósticos",
			dateParams, withFilter(ComorbiditySQL)),
		measure("cohort-journey", "Trayectoria de pacientes",
			"Pacientes con al menos min_admissions ingresos",
			append([]string{"min_admissions"}, dateParams...),
			func(c echo.Context) Statement {
				return CohortJourneySQL(filter.FromContext(c),
					filter.Int(c, "min_admissions", DefaultMinAdmissions, MinMinAdmissions, MaxMinAdmissions))
			}),
		measure("cost-by-severity", "Coste por severidad",
			"Pacientes, coste y estancia por nivel de severidad APR",
			dateParams, withFilter(CostBySeveritySQL)),
		measure("risk-stratification", "Riesgo de mortalidad",
			"Pacientes, coste y estancia por nivel de riesgo APR",
			dateParams, withFilter(RiskStratificationSQL)),
		measure("diagnosis-correlation", "Co-ocurrencia de diagnósticos",
			"Pares de diagnósticos registrados en el mismo ingreso",
			append([]string{"min_cooccurrence"}, dateParams...),
			func(c echo.Context) Statement {
				return DiagnosisCorrelationSQL(filter.FromContext(c),
					filter.Int(c, "min_cooccurrence", DefaultMinCooccurrence, MinMinCooccurrence, MaxMinCooccurrence))
			}),
		measure("length-of-stay", "Estancia hospitalaria",
			"Estadísticos de la estancia en días",
			append([]string{"service"}, dateParams...),
			withFilter(LengthOfStaySQL)),
	}
}
