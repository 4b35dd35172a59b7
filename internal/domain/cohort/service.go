package cohort

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/malackathon/observatorio/internal/domain/admissions"
	"github.com/malackathon/observatorio/internal/platform/filter"
)

// Source is what the cohort page needs from the admissions service.
type Source interface {
	ReadmissionAnalysis(ctx context.Context, p filter.Params, threshold int) (*admissions.ReadmissionSummary, error)
	ComorbidityAnalysis(ctx context.Context, p filter.Params) ([]admissions.ComorbidityRow, error)
	CohortJourney(ctx context.Context, p filter.Params, minAdmissions int) ([]admissions.JourneyRow, error)
	DateRange(ctx context.Context) admissions.DateRange
}

// Params are the cohort page filters. Only the date range of the shared
// filters applies.
type Params struct {
	filter.Params
	Threshold     int
	MinAdmissions int
}

// ParamsFromContext reads date_start, date_end, threshold and
// min_admissions. Missing or malformed knobs fall back to their defaults.
func ParamsFromContext(c echo.Context) Params {
	return Params{
		Params: filter.Params{
			DateStart: filter.ParseDate(c.QueryParam("date_start")),
			DateEnd:   filter.ParseDate(c.QueryParam("date_end")),
			Sex:       filter.All,
			Community: filter.All,
			Service:   filter.All,
		},
		Threshold: filter.Int(c, "threshold", admissions.DefaultReadmissionThreshold,
			admissions.MinReadmissionThreshold, admissions.MaxReadmissionThreshold),
		MinAdmissions: filter.Int(c, "min_admissions", admissions.DefaultMinAdmissions,
			admissions.MinMinAdmissions, admissions.MaxMinAdmissions),
	}
}

// Data is everything the cohort page renders for one filter selection.
type Data struct {
	Readmission *admissions.ReadmissionSummary
	Comorbidity []admissions.ComorbidityRow
	Journey     []admissions.JourneyRow
}

type Service struct {
	src    Source
	logger zerolog.Logger
}

func NewService(src Source, logger zerolog.Logger) *Service {
	return &Service{
		src:    src,
		logger: logger.With().Str("component", "cohort").Logger(),
	}
}

// Load runs the readmission, comorbidity and journey queries. Any failure is
// logged and yields nil.
func (s *Service) Load(ctx context.Context, p Params) *Data {
	s.logger.Info().
		Int("threshold", p.Threshold).
		Int("min_admissions", p.MinAdmissions).
		Str("filters", p.Key()).
		Msg("loading cohort data")

	d := &Data{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Readmission, err = s.src.ReadmissionAnalysis(gctx, p.Params, p.Threshold)
		return err
	})
	g.Go(func() (err error) {
		d.Comorbidity, err = s.src.ComorbidityAnalysis(gctx, p.Params)
		return err
	})
	g.Go(func() (err error) {
		d.Journey, err = s.src.CohortJourney(gctx, p.Params, p.MinAdmissions)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("loading cohort data")
		return nil
	}
	return d
}

// FilterOptions is the initial state of the cohort filter panel.
type FilterOptions struct {
	DateStart string `json:"date_start"`
	DateEnd   string `json:"date_end"`
}

func (s *Service) FilterOptions(ctx context.Context) FilterOptions {
	dr := s.src.DateRange(ctx)
	return FilterOptions{
		DateStart: filter.FormatDate(dr.MinDate),
		DateEnd:   filter.FormatDate(dr.MaxDate),
	}
}

// Reset is the value of every cohort filter after "reset".
type Reset struct {
	DateStart     string `json:"date_start"`
	DateEnd       string `json:"date_end"`
	Threshold     int    `json:"threshold"`
	MinAdmissions int    `json:"min_admissions"`
}

func (s *Service) Defaults(ctx context.Context) Reset {
	opts := s.FilterOptions(ctx)
	return Reset{
		DateStart:     opts.DateStart,
		DateEnd:       opts.DateEnd,
		Threshold:     admissions.DefaultReadmissionThreshold,
		MinAdmissions: admissions.DefaultMinAdmissions,
	}
}

// Complete is false when the date range lookup fell back to empty dates.
func (o FilterOptions) Complete() bool { return o.DateStart != "" }

func (r Reset) Complete() bool { return r.DateStart != "" }
