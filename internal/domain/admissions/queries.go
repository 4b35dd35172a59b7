package admissions

import (
	"github.com/malackathon/observatorio/internal/platform/filter"
)

// Knob defaults and bounds shared by the pages.
const (
	DefaultReadmissionThreshold = 30
	MinReadmissionThreshold     = 1
	MaxReadmissionThreshold     = 365

	DefaultMinAdmissions = 2
	MinMinAdmissions     = 2
	MaxMinAdmissions     = 100

	DefaultMinCooccurrence = 10
	MinMinCooccurrence     = 1
	MaxMinCooccurrence     = 10000

	DefaultTopDiagnoses = 10
)

// Statement is a parameterized query ready for pgx.
type Statement struct {
	SQL  string
	Args []interface{}
}

// datesOnly keeps the admission date range and drops the dropdown filters.
const datesOnly = filter.OmitSex | filter.OmitCommunity | filter.OmitService

const fromPatientAdmission = `
FROM paciente p
JOIN ingreso i ON p.id_paciente = i.id_paciente`

const fromDiagnosis = `
FROM diagnosticos_ingreso d
JOIN ingreso i ON d.id_ingreso = i.id_ingreso
JOIN paciente p ON i.id_paciente = p.id_paciente`

func stmt(sql string, w *filter.Where) Statement {
	args := w.Args()
	if args == nil {
		args = []interface{}{}
	}
	return Statement{SQL: sql, Args: args}
}

// ---------------------------------------------------------------------------
// Overview
// ---------------------------------------------------------------------------

func KPISummarySQL(p filter.Params) Statement {
	w := p.Apply(filter.NewWhere(), 0)
	return stmt(`
SELECT
    COUNT(DISTINCT p.id_paciente) AS total_pacientes,
    COUNT(DISTINCT i.id_ingreso) AS total_ingresos,
    COALESCE(ROUND(AVG(i.estancia_dias)::numeric, 1), 0)::float8 AS promedio_estancia,
    COALESCE(ROUND(AVG((CURRENT_DATE - p.fecha_de_nacimiento) / 365.25)::numeric, 1), 0)::float8 AS edad_media,
    COALESCE(ROUND(SUM(i.coste_apr), 2), 0)::float8 AS coste_total`+
		fromPatientAdmission+`
`+w.SQL(), w)
}

func SexDistributionSQL(p filter.Params) Statement {
	w := p.Apply(filter.NewWhere(), filter.OmitSex)
	return stmt(`
SELECT
    CASE
        WHEN p.sexo = 1 THEN 'Hombre'
        WHEN p.sexo = 2 THEN 'Mujer'
        ELSE 'No especificado'
    END AS sexo,
    COUNT(DISTINCT p.id_paciente) AS pacientes`+
		fromPatientAdmission+`
`+w.SQL()+`
GROUP BY 1
ORDER BY pacientes DESC`, w)
}

func AgeDistributionSQL(p filter.Params) Statement {
	w := p.Apply(filter.NewWhere("p.fecha_de_nacimiento IS NOT NULL"), 0)
	return stmt(`
SELECT
    date_part('year', age(p.fecha_de_nacimiento))::int AS edad,
    COUNT(DISTINCT p.id_paciente) AS pacientes`+
		fromPatientAdmission+`
`+w.SQL()+`
GROUP BY 1
ORDER BY edad`, w)
}

func AdmissionsOverTimeSQL(p filter.Params) Statement {
	w := p.Apply(filter.NewWhere("i.fecha_de_ingreso IS NOT NULL"), 0)
	return stmt(`
SELECT
    to_char(i.fecha_de_ingreso, 'YYYY-MM') AS mes,
    COUNT(*) AS ingresos`+
		fromPatientAdmission+`
`+w.SQL()+`
GROUP BY 1
ORDER BY mes`, w)
}

func TopDiagnosesSQL(p filter.Params, limit int) Statement {
	w := p.Apply(filter.NewWhere("d.diagnostico_principal IS NOT NULL"), 0)
	lim := w.Bind(limit)
	return stmt(`
SELECT
    d.diagnostico_principal AS diagnostico,
    COUNT(*) AS frecuencia`+
		fromDiagnosis+`
`+w.SQL()+`
GROUP BY d.diagnostico_principal
ORDER BY frecuencia DESC, diagnostico
LIMIT `+lim, w)
}

func MostFrequentDiagnosisSQL(p filter.Params) Statement {
	return TopDiagnosesSQL(p, 1)
}

func ServiceUtilizationSQL(p filter.Params) Statement {
	w := p.Apply(filter.NewWhere("i.servicio IS NOT NULL"), filter.OmitService)
	return stmt(`
SELECT
    i.servicio AS servicio,
    COUNT(*) AS ingresos`+
		fromPatientAdmission+`
`+w.SQL()+`
GROUP BY i.servicio
ORDER BY ingresos DESC`, w)
}

func RegionalDistributionSQL(p filter.Params) Statement {
	w := p.Apply(filter.NewWhere("p.comunidad_autonoma IS NOT NULL"), filter.OmitCommunity)
	return stmt(`
SELECT
    p.comunidad_autonoma AS comunidad,
    COUNT(DISTINCT p.id_paciente) AS pacientes`+
		fromPatientAdmission+`
`+w.SQL()+`
GROUP BY p.comunidad_autonoma
ORDER BY pacientes DESC`, w)
}

// ---------------------------------------------------------------------------
// Filter options
// ---------------------------------------------------------------------------

const communitiesSQL = `
SELECT DISTINCT comunidad_autonoma
FROM paciente
WHERE comunidad_autonoma IS NOT NULL
ORDER BY comunidad_autonoma`

const servicesSQL = `
SELECT DISTINCT servicio
FROM ingreso
WHERE servicio IS NOT NULL
ORDER BY servicio`

const dateRangeSQL = `
SELECT
    MIN(fecha_de_ingreso) AS min_date,
    MAX(fecha_de_ingreso) AS max_date
FROM ingreso
WHERE fecha_de_ingreso IS NOT NULL`

// ---------------------------------------------------------------------------
// Cohort
// ---------------------------------------------------------------------------

// ReadmissionSQL counts readmissions: for each patient, ordered by admission
// date, the gap from discharge to the next admission. Discharge is
// fecha_de_fin_contacto or, when missing, admission date plus stay. A gap in
// [0, threshold] days is a readmission.
func ReadmissionSQL(p filter.Params, threshold int) Statement {
	w := p.Apply(filter.NewWhere("i.fecha_de_ingreso IS NOT NULL"), datesOnly)
	th := w.Bind(threshold)
	return stmt(`
WITH ordered AS (
    SELECT
        i.id_paciente,
        COALESCE(i.fecha_de_fin_contacto, i.fecha_de_ingreso + COALESCE(i.estancia_dias, 0)) AS discharge,
        LEAD(i.fecha_de_ingreso) OVER (
            PARTITION BY i.id_paciente
            ORDER BY i.fecha_de_ingreso, i.id_ingreso
        ) AS next_admission
    FROM ingreso i
    `+w.SQL()+`
),
readmissions AS (
    SELECT id_paciente, (next_admission - discharge) AS gap
    FROM ordered
    WHERE next_admission IS NOT NULL
      AND (next_admission - discharge) BETWEEN 0 AND `+th+`
),
totals AS (
    SELECT
        (SELECT COUNT(DISTINCT id_paciente) FROM ordered) AS total_patients,
        (SELECT COUNT(DISTINCT id_paciente) FROM readmissions) AS patients_with_readmission,
        (SELECT COUNT(*) FROM readmissions) AS total_readmissions,
        (SELECT AVG(gap) FROM readmissions) AS avg_gap
)
SELECT
    total_patients,
    patients_with_readmission,
    total_readmissions,
    COALESCE(ROUND(100.0 * patients_with_readmission / NULLIF(total_patients, 0), 2), 0)::float8 AS readmission_rate,
    COALESCE(ROUND(avg_gap, 1), 0)::float8 AS avg_days_to_readmission
FROM totals`, w)
}

// ComorbiditySQL groups admissions by their number of diagnoses: the
// principal diagnosis plus every secondary one.
func ComorbiditySQL(p filter.Params) Statement {
	w := p.Apply(filter.NewWhere("d.diagnostico_principal IS NOT NULL"), datesOnly)
	return stmt(`
WITH per_admission AS (
    SELECT
        i.id_ingreso,
        i.id_paciente,
        1 + COUNT(s.diagnostico) AS num_diagnoses
    FROM ingreso i
    JOIN diagnosticos_ingreso d ON d.id_ingreso = i.id_ingreso
    LEFT JOIN diagnosticos_secundarios s ON s.id_ingreso = i.id_ingreso
    `+w.SQL()+`
    GROUP BY i.id_ingreso, i.id_paciente
)
SELECT
    num_diagnoses,
    COUNT(DISTINCT id_paciente) AS patient_count,
    COUNT(*) AS admission_count
FROM per_admission
GROUP BY num_diagnoses
ORDER BY num_diagnoses`, w)
}

func CohortJourneySQL(p filter.Params, minAdmissions int) Statement {
	w := p.Apply(filter.NewWhere("i.fecha_de_ingreso IS NOT NULL"), datesOnly)
	having := w.Bind(minAdmissions)
	return stmt(`
SELECT
    i.id_paciente,
    COUNT(*) AS admission_count,
    COALESCE(SUM(i.coste_apr), 0)::float8 AS total_cost,
    COALESCE(SUM(i.estancia_dias), 0)::int8 AS total_days,
    MIN(i.fecha_de_ingreso) AS first_admission,
    MAX(i.fecha_de_ingreso) AS last_admission,
    (MAX(i.fecha_de_ingreso) - MIN(i.fecha_de_ingreso))::int8 AS days_between_first_last
FROM ingreso i
`+w.SQL()+`
GROUP BY i.id_paciente
HAVING COUNT(*) >= `+having+`
ORDER BY admission_count DESC, total_cost DESC, i.id_paciente`, w)
}

// ---------------------------------------------------------------------------
// Clinical
// ---------------------------------------------------------------------------

func CostBySeveritySQL(p filter.Params) Statement {
	w := p.Apply(filter.NewWhere("i.nivel_severidad_apr IS NOT NULL"), datesOnly)
	return stmt(`
SELECT
    i.nivel_severidad_apr::int AS nivel_severidad,
    COUNT(DISTINCT i.id_paciente) AS patient_count,
    COUNT(*) AS admission_count,
    COALESCE(ROUND(AVG(i.coste_apr), 2), 0)::float8 AS avg_cost,
    COALESCE(ROUND(AVG(i.estancia_dias)::numeric, 1), 0)::float8 AS avg_los,
    COALESCE(ROUND(SUM(i.coste_apr), 2), 0)::float8 AS total_cost
FROM ingreso i
`+w.SQL()+`
GROUP BY i.nivel_severidad_apr
ORDER BY nivel_severidad`, w)
}

func RiskStratificationSQL(p filter.Params) Statement {
	w := p.Apply(filter.NewWhere("i.riesgo_mortalidad_apr IS NOT NULL"), datesOnly)
	return stmt(`
SELECT
    i.riesgo_mortalidad_apr::int AS risk_level,
    COUNT(DISTINCT i.id_paciente) AS patient_count,
    COALESCE(ROUND(AVG(i.coste_apr), 2), 0)::float8 AS avg_cost,
    COALESCE(ROUND(AVG(i.estancia_dias)::numeric, 1), 0)::float8 AS avg_los
FROM ingreso i
`+w.SQL()+`
GROUP BY i.riesgo_mortalidad_apr
ORDER BY risk_level`, w)
}

// DiagnosisCorrelationSQL counts unordered pairs of distinct diagnoses
// (principal or secondary) recorded on the same admission.
func DiagnosisCorrelationSQL(p filter.Params, minCooccurrence int) Statement {
	w := p.Apply(filter.NewWhere(), datesOnly)
	cond := w.Conditions()
	having := w.Bind(minCooccurrence)
	return stmt(`
WITH diagnoses AS (
    SELECT d.id_ingreso, d.diagnostico_principal AS diagnostico
    FROM diagnosticos_ingreso d
    JOIN ingreso i ON i.id_ingreso = d.id_ingreso
    WHERE d.diagnostico_principal IS NOT NULL AND `+cond+`
    UNION
    SELECT s.id_ingreso, s.diagnostico
    FROM diagnosticos_secundarios s
    JOIN ingreso i ON i.id_ingreso = s.id_ingreso
    WHERE `+cond+`
)
SELECT
    a.diagnostico AS diagnosis_1,
    b.diagnostico AS diagnosis_2,
    COUNT(*) AS co_occurrence_count
FROM diagnoses a
JOIN diagnoses b ON a.id_ingreso = b.id_ingreso AND a.diagnostico < b.diagnostico
GROUP BY a.diagnostico, b.diagnostico
HAVING COUNT(*) >= `+having+`
ORDER BY co_occurrence_count DESC, diagnosis_1, diagnosis_2`, w)
}

// LengthOfStaySQL summarizes estancia_dias with percentiles. Only the date
// range and the service filter apply.
func LengthOfStaySQL(p filter.Params) Statement {
	w := p.Apply(filter.NewWhere("i.estancia_dias IS NOT NULL"), filter.OmitSex|filter.OmitCommunity)
	return stmt(`
SELECT
    COUNT(*) AS total_admissions,
    COALESCE(ROUND(AVG(i.estancia_dias)::numeric, 1), 0)::float8 AS mean_los,
    COALESCE(PERCENTILE_CONT(0.5) WITHIN GROUP (ORDER BY i.estancia_dias), 0)::float8 AS median_los,
    COALESCE(ROUND(STDDEV_SAMP(i.estancia_dias)::numeric, 1), 0)::float8 AS std_dev,
    COALESCE(MIN(i.estancia_dias), 0)::float8 AS min_los,
    COALESCE(MAX(i.estancia_dias), 0)::float8 AS max_los,
    COALESCE(PERCENTILE_CONT(0.25) WITHIN GROUP (ORDER BY i.estancia_dias), 0)::float8 AS p25,
    COALESCE(PERCENTILE_CONT(0.75) WITHIN GROUP (ORDER BY i.estancia_dias), 0)::float8 AS p75,
    COALESCE(PERCENTILE_CONT(0.90) WITHIN GROUP (ORDER BY i.estancia_dias), 0)::float8 AS p90
FROM ingreso i
`+w.SQL(), w)
}
