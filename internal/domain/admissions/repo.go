package admissions

import (
	"context"

	"github.com/malackathon/observatorio/internal/platform/filter"
)

// Repository runs the analytical queries. Every method issues a single
// parameterized statement.
type Repository interface {
	KPISummary(ctx context.Context, p filter.Params) (*KPISummary, error)
	SexDistribution(ctx context.Context, p filter.Params) ([]SexCount, error)
	AgeDistribution(ctx context.Context, p filter.Params) ([]AgeCount, error)
	AdmissionsOverTime(ctx context.Context, p filter.Params) ([]MonthlyAdmissions, error)
	TopDiagnoses(ctx context.Context, p filter.Params, limit int) ([]DiagnosisCount, error)
	MostFrequentDiagnosis(ctx context.Context, p filter.Params) (*DiagnosisCount, error)
	ServiceUtilization(ctx context.Context, p filter.Params) ([]ServiceCount, error)
	RegionalDistribution(ctx context.Context, p filter.Params) ([]RegionCount, error)

	Communities(ctx context.Context) ([]string, error)
	Services(ctx context.Context) ([]string, error)
	DateRange(ctx context.Context) (*DateRange, error)

	ReadmissionAnalysis(ctx context.Context, p filter.Params, threshold int) (*ReadmissionSummary, error)
	ComorbidityAnalysis(ctx context.Context, p filter.Params) ([]ComorbidityRow, error)
	CohortJourney(ctx context.Context, p filter.Params, minAdmissions int) ([]JourneyRow, error)

	CostBySeverity(ctx context.Context, p filter.Params) ([]SeverityRow, error)
	RiskStratification(ctx context.Context, p filter.Params) ([]RiskRow, error)
	DiagnosisCorrelation(ctx context.Context, p filter.Params, minCooccurrence int) ([]DiagnosisPair, error)
	LengthOfStayDistribution(ctx context.Context, p filter.Params) (*LOSStats, error)
}
