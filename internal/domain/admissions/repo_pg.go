package admissions

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/malackathon/observatorio/internal/platform/db"
	"github.com/malackathon/observatorio/internal/platform/filter"
)

type admissionsRepoPG struct{ q db.Querier }

// NewRepoPG returns a Repository backed by a pgx pool (or any Querier).
func NewRepoPG(q db.Querier) Repository {
	return &admissionsRepoPG{q: q}
}

// queryRows runs s and scans every row with scan.
func queryRows[T any](ctx context.Context, q db.Querier, name string, s Statement, scan func(pgx.Row) (T, error)) ([]T, error) {
	rows, err := q.Query(ctx, s.SQL, s.Args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", name, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	return items, nil
}

func (r *admissionsRepoPG) KPISummary(ctx context.Context, p filter.Params) (*KPISummary, error) {
	s := KPISummarySQL(p)
	var k KPISummary
	err := r.q.QueryRow(ctx, s.SQL, s.Args...).Scan(
		&k.TotalPacientes, &k.TotalIngresos, &k.PromedioEstancia, &k.EdadMedia, &k.CosteTotal)
	if errors.Is(err, pgx.ErrNoRows) {
		return &KPISummary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query kpi summary: %w", err)
	}
	return &k, nil
}

func (r *admissionsRepoPG) SexDistribution(ctx context.Context, p filter.Params) ([]SexCount, error) {
	return queryRows(ctx, r.q, "sex distribution", SexDistributionSQL(p), func(row pgx.Row) (SexCount, error) {
		var c SexCount
		err := row.Scan(&c.Sexo, &c.Pacientes)
		return c, err
	})
}

func (r *admissionsRepoPG) AgeDistribution(ctx context.Context, p filter.Params) ([]AgeCount, error) {
	return queryRows(ctx, r.q, "age distribution", AgeDistributionSQL(p), func(row pgx.Row) (AgeCount, error) {
		var c AgeCount
		err := row.Scan(&c.Edad, &c.Pacientes)
		return c, err
	})
}

func (r *admissionsRepoPG) AdmissionsOverTime(ctx context.Context, p filter.Params) ([]MonthlyAdmissions, error) {
	return queryRows(ctx, r.q, "admissions over time", AdmissionsOverTimeSQL(p), func(row pgx.Row) (MonthlyAdmissions, error) {
		var m MonthlyAdmissions
		err := row.Scan(&m.Mes, &m.Ingresos)
		return m, err
	})
}

func scanDiagnosisCount(row pgx.Row) (DiagnosisCount, error) {
	var d DiagnosisCount
	err := row.Scan(&d.Diagnostico, &d.Frecuencia)
	return d, err
}

func (r *admissionsRepoPG) TopDiagnoses(ctx context.Context, p filter.Params, limit int) ([]DiagnosisCount, error) {
	return queryRows(ctx, r.q, "top diagnoses", TopDiagnosesSQL(p, limit), scanDiagnosisCount)
}

func (r *admissionsRepoPG) MostFrequentDiagnosis(ctx context.Context, p filter.Params) (*DiagnosisCount, error) {
	s := MostFrequentDiagnosisSQL(p)
	d, err := scanDiagnosisCount(r.q.QueryRow(ctx, s.SQL, s.Args...))
	if errors.Is(err, pgx.ErrNoRows) {
		none := NoDiagnosis
		return &none, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query most frequent diagnosis: %w", err)
	}
	return &d, nil
}

func (r *admissionsRepoPG) ServiceUtilization(ctx context.Context, p filter.Params) ([]ServiceCount, error) {
	return queryRows(ctx, r.q, "service utilization", ServiceUtilizationSQL(p), func(row pgx.Row) (ServiceCount, error) {
		var c ServiceCount
		err := row.Scan(&c.Servicio, &c.Ingresos)
		return c, err
	})
}

func (r *admissionsRepoPG) RegionalDistribution(ctx context.Context, p filter.Params) ([]RegionCount, error) {
	return queryRows(ctx, r.q, "regional distribution", RegionalDistributionSQL(p), func(row pgx.Row) (RegionCount, error) {
		var c RegionCount
		err := row.Scan(&c.Comunidad, &c.Pacientes)
		return c, err
	})
}

func scanString(row pgx.Row) (string, error) {
	var s string
	err := row.Scan(&s)
	return s, err
}

func (r *admissionsRepoPG) Communities(ctx context.Context) ([]string, error) {
	return queryRows(ctx, r.q, "communities", Statement{SQL: communitiesSQL}, scanString)
}

func (r *admissionsRepoPG) Services(ctx context.Context) ([]string, error) {
	return queryRows(ctx, r.q, "services", Statement{SQL: servicesSQL}, scanString)
}

func (r *admissionsRepoPG) DateRange(ctx context.Context) (*DateRange, error) {
	var dr DateRange
	if err := r.q.QueryRow(ctx, dateRangeSQL).Scan(&dr.MinDate, &dr.MaxDate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &DateRange{}, nil
		}
		return nil, fmt.Errorf("query date range: %w", err)
	}
	return &dr, nil
}

func (r *admissionsRepoPG) ReadmissionAnalysis(ctx context.Context, p filter.Params, threshold int) (*ReadmissionSummary, error) {
	s := ReadmissionSQL(p, threshold)
	var rs ReadmissionSummary
	err := r.q.QueryRow(ctx, s.SQL, s.Args...).Scan(
		&rs.TotalPatients, &rs.PatientsWithReadmission, &rs.TotalReadmissions,
		&rs.ReadmissionRate, &rs.AvgDaysToReadmission)
	if err != nil {
		return nil, fmt.Errorf("query readmission analysis: %w", err)
	}
	return &rs, nil
}

func (r *admissionsRepoPG) ComorbidityAnalysis(ctx context.Context, p filter.Params) ([]ComorbidityRow, error) {
	return queryRows(ctx, r.q, "comorbidity analysis", ComorbiditySQL(p), func(row pgx.Row) (ComorbidityRow, error) {
		var c ComorbidityRow
		err := row.Scan(&c.NumDiagnoses, &c.PatientCount, &c.AdmissionCount)
		return c, err
	})
}

func (r *admissionsRepoPG) CohortJourney(ctx context.Context, p filter.Params, minAdmissions int) ([]JourneyRow, error) {
	return queryRows(ctx, r.q, "cohort journey", CohortJourneySQL(p, minAdmissions), func(row pgx.Row) (JourneyRow, error) {
		var j JourneyRow
		err := row.Scan(&j.IDPaciente, &j.AdmissionCount, &j.TotalCost, &j.TotalDays,
			&j.FirstAdmission, &j.LastAdmission, &j.DaysBetweenFirstLast)
		return j, err
	})
}

func (r *admissionsRepoPG) CostBySeverity(ctx context.Context, p filter.Params) ([]SeverityRow, error) {
	return queryRows(ctx, r.q, "cost by severity", CostBySeveritySQL(p), func(row pgx.Row) (SeverityRow, error) {
		var s SeverityRow
		err := row.Scan(&s.NivelSeveridad, &s.PatientCount, &s.AdmissionCount, &s.AvgCost, &s.AvgLOS, &s.TotalCost)
		return s, err
	})
}

func (r *admissionsRepoPG) RiskStratification(ctx context.Context, p filter.Params) ([]RiskRow, error) {
	return queryRows(ctx, r.q, "risk stratification", RiskStratificationSQL(p), func(row pgx.Row) (RiskRow, error) {
		var rr RiskRow
		err := row.Scan(&rr.RiskLevel, &rr.PatientCount, &rr.AvgCost, &rr.AvgLOS)
		return rr, err
	})
}

func (r *admissionsRepoPG) DiagnosisCorrelation(ctx context.Context, p filter.Params, minCooccurrence int) ([]DiagnosisPair, error) {
	return queryRows(ctx, r.q, "diagnosis correlation", DiagnosisCorrelationSQL(p, minCooccurrence), func(row pgx.Row) (DiagnosisPair, error) {
		var d DiagnosisPair
		err := row.Scan(&d.Diagnosis1, &d.Diagnosis2, &d.CoOccurrenceCount)
		return d, err
	})
}

// LengthOfStayDistribution returns nil stats when no admission matches.
func (r *admissionsRepoPG) LengthOfStayDistribution(ctx context.Context, p filter.Params) (*LOSStats, error) {
	s := LengthOfStaySQL(p)
	var l LOSStats
	err := r.q.QueryRow(ctx, s.SQL, s.Args...).Scan(
		&l.TotalAdmissions, &l.MeanLOS, &l.MedianLOS, &l.StdDev,
		&l.MinLOS, &l.MaxLOS, &l.P25, &l.P75, &l.P90)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query length of stay distribution: %w", err)
	}
	if l.TotalAdmissions == 0 {
		return nil, nil
	}
	return &l, nil
}
