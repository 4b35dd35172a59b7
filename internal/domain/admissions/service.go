package admissions

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/malackathon/observatorio/internal/platform/filter"
)

// Cache is the subset of the response cache store used to memoize filter
// options.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
}

const (
	cacheKeyCommunities = "admissions:communities"
	cacheKeyServices    = "admissions:services"
	cacheKeyDateRange   = "admissions:date_range"
)

type Service struct {
	repo   Repository
	cache  Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewService wraps repo. A nil cache or a zero ttl disables memoization.
func NewService(repo Repository, cache Cache, ttl time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "admissions").Logger(),
	}
}

func (s *Service) cached(key string, dst interface{}) bool {
	if s.cache == nil || s.ttl <= 0 {
		return false
	}
	data, ok := s.cache.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

func (s *Service) store(key string, v interface{}) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.cache.Set(key, data, s.ttl)
}

// Communities lists the autonomous communities for the filter dropdown.
// Query errors are logged and yield an empty list.
func (s *Service) Communities(ctx context.Context) []string {
	var items []string
	if s.cached(cacheKeyCommunities, &items) {
		return items
	}
	items, err := s.repo.Communities(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("querying communities list")
		return []string{}
	}
	s.store(cacheKeyCommunities, items)
	return items
}

// Services lists the hospital services for the filter dropdown.
// Query errors are logged and yield an empty list.
func (s *Service) Services(ctx context.Context) []string {
	var items []string
	if s.cached(cacheKeyServices, &items) {
		return items
	}
	items, err := s.repo.Services(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("querying services list")
		return []string{}
	}
	s.store(cacheKeyServices, items)
	return items
}

// DateRange returns the dataset's admission date span. Query errors are
// logged and yield nil dates.
func (s *Service) DateRange(ctx context.Context) DateRange {
	var dr DateRange
	if s.cached(cacheKeyDateRange, &dr) {
		return dr
	}
	got, err := s.repo.DateRange(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("querying date range")
		return DateRange{}
	}
	if got == nil {
		return DateRange{}
	}
	s.store(cacheKeyDateRange, got)
	return *got
}

// ---------------------------------------------------------------------------
// Overview
// ---------------------------------------------------------------------------

func (s *Service) KPISummary(ctx context.Context, p filter.Params) (*KPISummary, error) {
	return s.repo.KPISummary(ctx, p)
}

func (s *Service) SexDistribution(ctx context.Context, p filter.Params) ([]SexCount, error) {
	return s.repo.SexDistribution(ctx, p)
}

func (s *Service) AgeDistribution(ctx context.Context, p filter.Params) ([]AgeCount, error) {
	return s.repo.AgeDistribution(ctx, p)
}

func (s *Service) AdmissionsOverTime(ctx context.Context, p filter.Params) ([]MonthlyAdmissions, error) {
	return s.repo.AdmissionsOverTime(ctx, p)
}

func (s *Service) TopDiagnoses(ctx context.Context, p filter.Params, limit int) ([]DiagnosisCount, error) {
	if limit <= 0 {
		limit = DefaultTopDiagnoses
	}
	return s.repo.TopDiagnoses(ctx, p, limit)
}

func (s *Service) MostFrequentDiagnosis(ctx context.Context, p filter.Params) (*DiagnosisCount, error) {
	return s.repo.MostFrequentDiagnosis(ctx, p)
}

func (s *Service) ServiceUtilization(ctx context.Context, p filter.Params) ([]ServiceCount, error) {
	return s.repo.ServiceUtilization(ctx, p)
}

func (s *Service) RegionalDistribution(ctx context.Context, p filter.Params) ([]RegionCount, error) {
	return s.repo.RegionalDistribution(ctx, p)
}

// ---------------------------------------------------------------------------
// Cohort
// ---------------------------------------------------------------------------

func (s *Service) ReadmissionAnalysis(ctx context.Context, p filter.Params, threshold int) (*ReadmissionSummary, error) {
	threshold = filter.Clamp(threshold, MinReadmissionThreshold, MaxReadmissionThreshold)
	return s.repo.ReadmissionAnalysis(ctx, p, threshold)
}

func (s *Service) ComorbidityAnalysis(ctx context.Context, p filter.Params) ([]ComorbidityRow, error) {
	return s.repo.ComorbidityAnalysis(ctx, p)
}

func (s *Service) CohortJourney(ctx context.Context, p filter.Params, minAdmissions int) ([]JourneyRow, error) {
	minAdmissions = filter.Clamp(minAdmissions, MinMinAdmissions, MaxMinAdmissions)
	return s.repo.CohortJourney(ctx, p, minAdmissions)
}

// ---------------------------------------------------------------------------
// Clinical
// ---------------------------------------------------------------------------

func (s *Service) CostBySeverity(ctx context.Context, p filter.Params) ([]SeverityRow, error) {
	return s.repo.CostBySeverity(ctx, p)
}

func (s *Service) RiskStratification(ctx context.Context, p filter.Params) ([]RiskRow, error) {
	return s.repo.RiskStratification(ctx, p)
}

func (s *Service) DiagnosisCorrelation(ctx context.Context, p filter.Params, minCooccurrence int) ([]DiagnosisPair, error) {
	minCooccurrence = filter.Clamp(minCooccurrence, MinMinCooccurrence, MaxMinCooccurrence)
	return s.repo.DiagnosisCorrelation(ctx, p, minCooccurrence)
}

func (s *Service) LengthOfStayDistribution(ctx context.Context, p filter.Params) (*LOSStats, error) {
	return s.repo.LengthOfStayDistribution(ctx, p)
}
