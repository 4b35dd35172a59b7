package overview

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/malackathon/observatorio/internal/domain/admissions"
	"github.com/malackathon/observatorio/internal/platform/filter"
)

// Source is what the overview page needs from the admissions service.
type Source interface {
	KPISummary(ctx context.Context, p filter.Params) (*admissions.KPISummary, error)
	SexDistribution(ctx context.Context, p filter.Params) ([]admissions.SexCount, error)
	AgeDistribution(ctx context.Context, p filter.Params) ([]admissions.AgeCount, error)
	AdmissionsOverTime(ctx context.Context, p filter.Params) ([]admissions.MonthlyAdmissions, error)
	TopDiagnoses(ctx context.Context, p filter.Params, limit int) ([]admissions.DiagnosisCount, error)
	MostFrequentDiagnosis(ctx context.Context, p filter.Params) (*admissions.DiagnosisCount, error)
	ServiceUtilization(ctx context.Context, p filter.Params) ([]admissions.ServiceCount, error)
	RegionalDistribution(ctx context.Context, p filter.Params) ([]admissions.RegionCount, error)
	Communities(ctx context.Context) []string
	Services(ctx context.Context) []string
	DateRange(ctx context.Context) admissions.DateRange
}

// Data is everything the overview page renders for one filter selection.
type Data struct {
	KPIs                  *admissions.KPISummary
	SexDistribution       []admissions.SexCount
	AgeDistribution       []admissions.AgeCount
	AdmissionsOverTime    []admissions.MonthlyAdmissions
	TopDiagnoses          []admissions.DiagnosisCount
	MostFrequentDiagnosis *admissions.DiagnosisCount
	ServiceUtilization    []admissions.ServiceCount
	RegionalDistribution  []admissions.RegionCount
}

type Service struct {
	src         Source
	concurrency int
	logger      zerolog.Logger
}

// NewService creates the overview loader. concurrency bounds the number of
// queries in flight per request; values below 1 mean one at a time.
func NewService(src Source, concurrency int, logger zerolog.Logger) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		src:         src,
		concurrency: concurrency,
		logger:      logger.With().Str("component", "overview").Logger(),
	}
}

// Load runs the eight overview queries concurrently. If any of them fails
// the error is logged and nil is returned, which the view renders as an
// empty page.
func (s *Service) Load(ctx context.Context, p filter.Params) *Data {
	s.logger.Info().Str("filters", p.Key()).Msg("loading overview data")

	d := &Data{}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	g.Go(func() (err error) {
		d.KPIs, err = s.src.KPISummary(gctx, p)
		return err
	})
	g.Go(func() (err error) {
		d.SexDistribution, err = s.src.SexDistribution(gctx, p)
		return err
	})
	g.Go(func() (err error) {
		d.AgeDistribution, err = s.src.AgeDistribution(gctx, p)
		return err
	})
	g.Go(func() (err error) {
		d.AdmissionsOverTime, err = s.src.AdmissionsOverTime(gctx, p)
		return err
	})
	g.Go(func() (err error) {
		d.TopDiagnoses, err = s.src.TopDiagnoses(gctx, p, admissions.DefaultTopDiagnoses)
		return err
	})
	g.Go(func() (err error) {
		d.MostFrequentDiagnosis, err = s.src.MostFrequentDiagnosis(gctx, p)
		return err
	})
	g.Go(func() (err error) {
		d.ServiceUtilization, err = s.src.ServiceUtilization(gctx, p)
		return err
	})
	g.Go(func() (err error) {
		d.RegionalDistribution, err = s.src.RegionalDistribution(gctx, p)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("filters", p.Key()).Msg("loading overview data")
		return nil
	}
	return d
}

// FilterOptions is the initial state of the overview filter panel.
type FilterOptions struct {
	Communities []filter.Option `json:"communities"`
	Services    []filter.Option `json:"services"`
	DateStart   string          `json:"date_start"`
	DateEnd     string          `json:"date_end"`
}

func (s *Service) FilterOptions(ctx context.Context) FilterOptions {
	dr := s.src.DateRange(ctx)
	return FilterOptions{
		Communities: filter.Options("Todas", s.src.Communities(ctx)),
		Services:    filter.Options("Todos", s.src.Services(ctx)),
		DateStart:   filter.FormatDate(dr.MinDate),
		DateEnd:     filter.FormatDate(dr.MaxDate),
	}
}

// Reset is the value of every overview filter after "reset".
type Reset struct {
	DateStart string `json:"date_start"`
	DateEnd   string `json:"date_end"`
	Sex       string `json:"sex"`
	Community string `json:"community"`
	Service   string `json:"service"`
}

// Defaults restores the dataset date range and clears every dropdown.
// Dates are empty when the date range query fails.
func (s *Service) Defaults(ctx context.Context) Reset {
	dr := s.src.DateRange(ctx)
	p := filter.Defaults(dr.MinDate, dr.MaxDate)
	return Reset{
		DateStart: filter.FormatDate(p.DateStart),
		DateEnd:   filter.FormatDate(p.DateEnd),
		Sex:       p.Sex,
		Community: p.Community,
		Service:   p.Service,
	}
}

// Complete reports whether every option came from the database rather than
// from a fallback. A dropdown holding only "all" or a missing date range
// means a lookup failed or the dataset is empty.
func (o FilterOptions) Complete() bool {
	return o.DateStart != "" && len(o.Communities) > 1 && len(o.Services) > 1
}

func (r Reset) Complete() bool { return r.DateStart != "" }
