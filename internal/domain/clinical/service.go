package clinical

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/malackathon/observatorio/internal/domain/admissions"
	"github.com/malackathon/observatorio/internal/platform/filter"
)

// Source is what the clinical page needs from the admissions service.
type Source interface {
	CostBySeverity(ctx context.Context, p filter.Params) ([]admissions.SeverityRow, error)
	RiskStratification(ctx context.Context, p filter.Params) ([]admissions.RiskRow, error)
	DiagnosisCorrelation(ctx context.Context, p filter.Params, minCooccurrence int) ([]admissions.DiagnosisPair, error)
	LengthOfStayDistribution(ctx context.Context, p filter.Params) (*admissions.LOSStats, error)
	Services(ctx context.Context) []string
	DateRange(ctx context.Context) admissions.DateRange
}

// Params are the clinical page filters: the date range, the service (which
// only narrows the length of stay statistics) and the co-occurrence floor.
type Params struct {
	filter.Params
	MinCooccurrence int
}

func ParamsFromContext(c echo.Context) Params {
	all := filter.FromContext(c)
	return Params{
		Params: filter.Params{
			DateStart: all.DateStart,
			DateEnd:   all.DateEnd,
			Sex:       filter.All,
			Community: filter.All,
			Service:   all.Service,
		},
		MinCooccurrence: filter.Int(c, "min_cooccurrence", admissions.DefaultMinCooccurrence,
			admissions.MinMinCooccurrence, admissions.MaxMinCooccurrence),
	}
}

// Data is everything the clinical page renders for one filter selection.
type Data struct {
	Severity    []admissions.SeverityRow
	Risk        []admissions.RiskRow
	Correlation []admissions.DiagnosisPair
	LOS         *admissions.LOSStats
}

type Service struct {
	src    Source
	logger zerolog.Logger
}

func NewService(src Source, logger zerolog.Logger) *Service {
	return &Service{
		src:    src,
		logger: logger.With().Str("component", "clinical").Logger(),
	}
}

// Load runs the four clinical queries. Any failure is logged and yields nil.
func (s *Service) Load(ctx context.Context, p Params) *Data {
	s.logger.Info().
		Int("min_cooccurrence", p.MinCooccurrence).
		Str("filters", p.Key()).
		Msg("loading clinical data")

	d := &Data{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Severity, err = s.src.CostBySeverity(gctx, p.Params)
		return err
	})
	g.Go(func() (err error) {
		d.Risk, err = s.src.RiskStratification(gctx, p.Params)
		return err
	})
	g.Go(func() (err error) {
		d.Correlation, err = s.src.DiagnosisCorrelation(gctx, p.Params, p.MinCooccurrence)
		return err
	})
	g.Go(func() (err error) {
		d.LOS, err = s.src.LengthOfStayDistribution(gctx, p.Params)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("loading clinical data")
		return nil
	}
	return d
}

// FilterOptions is the initial state of the clinical filter panel.
type FilterOptions struct {
	Services  []filter.Option `json:"services"`
	DateStart string          `json:"date_start"`
	DateEnd   string          `json:"date_end"`
}

func (s *Service) FilterOptions(ctx context.Context) FilterOptions {
	dr := s.src.DateRange(ctx)
	return FilterOptions{
		Services:  filter.Options("Todos", s.src.Services(ctx)),
		DateStart: filter.FormatDate(dr.MinDate),
		DateEnd:   filter.FormatDate(dr.MaxDate),
	}
}

// Reset is the value of every clinical filter after "reset".
type Reset struct {
	DateStart       string `json:"date_start"`
	DateEnd         string `json:"date_end"`
	MinCooccurrence int    `json:"min_cooccurrence"`
	Service         string `json:"service"`
}

func (s *Service) Defaults(ctx context.Context) Reset {
	dr := s.src.DateRange(ctx)
	return Reset{
		DateStart:       filter.FormatDate(dr.MinDate),
		DateEnd:         filter.FormatDate(dr.MaxDate),
		MinCooccurrence: admissions.DefaultMinCooccurrence,
		Service:         filter.All,
	}
}

// Complete is false when the date range or service lookup fell back to its
// default.
func (o FilterOptions) Complete() bool {
	return o.DateStart != "" && len(o.Services) > 1
}

func (r Reset) Complete() bool { return r.DateStart != "" }
