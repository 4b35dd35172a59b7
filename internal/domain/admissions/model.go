package admissions

import "time"

// KPISummary is the single-row headline of the overview page.
type KPISummary struct {
	TotalPacientes   int64   `json:"total_pacientes"`
	TotalIngresos    int64   `json:"total_ingresos"`
	PromedioEstancia float64 `json:"promedio_estancia"`
	EdadMedia        float64 `json:"edad_media"`
	CosteTotal       float64 `json:"coste_total"`
}

type SexCount struct {
	Sexo      string `json:"sexo"`
	Pacientes int64  `json:"pacientes"`
}

type AgeCount struct {
	Edad      int   `json:"edad"`
	Pacientes int64 `json:"pacientes"`
}

type MonthlyAdmissions struct {
	Mes      string `json:"mes"`
	Ingresos int64  `json:"ingresos"`
}

type DiagnosisCount struct {
	Diagnostico string `json:"diagnostico"`
	Frecuencia  int64  `json:"frecuencia"`
}

// NoDiagnosis is returned by MostFrequentDiagnosis when nothing matches.
var NoDiagnosis = DiagnosisCount{Diagnostico: "—", Frecuencia: 0}

type ServiceCount struct {
	Servicio string `json:"servicio"`
	Ingresos int64  `json:"ingresos"`
}

type RegionCount struct {
	Comunidad string `json:"comunidad"`
	Pacientes int64  `json:"pacientes"`
}

// DateRange is the span of admission dates in the dataset. Both ends are
// nil when the dataset is empty or the query failed.
type DateRange struct {
	MinDate *time.Time `json:"min_date"`
	MaxDate *time.Time `json:"max_date"`
}

type ReadmissionSummary struct {
	TotalPatients           int64   `json:"total_patients"`
	PatientsWithReadmission int64   `json:"patients_with_readmission"`
	TotalReadmissions       int64   `json:"total_readmissions"`
	ReadmissionRate         float64 `json:"readmission_rate"`
	AvgDaysToReadmission    float64 `json:"avg_days_to_readmission"`
}

type ComorbidityRow struct {
	NumDiagnoses   int64 `json:"num_diagnoses"`
	PatientCount   int64 `json:"patient_count"`
	AdmissionCount int64 `json:"admission_count"`
}

type JourneyRow struct {
	IDPaciente           string    `json:"id_paciente"`
	AdmissionCount       int64     `json:"admission_count"`
	TotalCost            float64   `json:"total_cost"`
	TotalDays            int64     `json:"total_days"`
	FirstAdmission       time.Time `json:"first_admission"`
	LastAdmission        time.Time `json:"last_admission"`
	DaysBetweenFirstLast int64     `json:"days_between_first_last"`
}

type SeverityRow struct {
	NivelSeveridad int     `json:"nivel_severidad"`
	PatientCount   int64   `json:"patient_count"`
	AdmissionCount int64   `json:"admission_count"`
	AvgCost        float64 `json:"avg_cost"`
	AvgLOS         float64 `json:"avg_los"`
	TotalCost      float64 `json:"total_cost"`
}

type RiskRow struct {
	RiskLevel    int     `json:"risk_level"`
	PatientCount int64   `json:"patient_count"`
	AvgCost      float64 `json:"avg_cost"`
	AvgLOS       float64 `json:"avg_los"`
}

type DiagnosisPair struct {
	Diagnosis1        string `json:"diagnosis_1"`
	Diagnosis2        string `json:"diagnosis_2"`
	CoOccurrenceCount int64  `json:"co_occurrence_count"`
}

type LOSStats struct {
	TotalAdmissions int64   `json:"total_admissions"`
	MeanLOS         float64 `json:"mean_los"`
	MedianLOS       float64 `json:"median_los"`
	StdDev          float64 `json:"std_dev"`
	MinLOS          float64 `json:"min_los"`
	MaxLOS          float64 `json:"max_los"`
	P25             float64 `json:"p25"`
	P75             float64 `json:"p75"`
	P90             float64 `json:"p90"`
}
