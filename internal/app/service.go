// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/rehabplan/internal/adapters/repository"
	"github.com/okian/rehabplan/internal/domain/aggregate"
	"github.com/okian/rehabplan/internal/domain/eligibility"
	"github.com/okian/rehabplan/internal/domain/model"
	"github.com/okian/rehabplan/internal/domain/plan"
	"github.com/okian/rehabplan/internal/domain/rollup"
	"github.com/okian/rehabplan/internal/domain/scoring"
	"github.com/okian/rehabplan/internal/domain/types"
	"github.com/okian/rehabplan/pkg/logger"
	"github.com/okian/rehabplan/pkg/metrics"
)

// ErrNoRepository is returned by Start when no patient or protocol source
// was configured.
var ErrNoRepository = errors.New("service: repository not configured")

// Service composes the repositories with the recommendation and
// aggregation pipelines.
type Service struct {
	mu sync.RWMutex

	patients  repository.PatientRepository
	protocols repository.ProtocolRepository
	closer    interface{ Close() error }

	// Request defaults
	weights     scoring.Weights
	alpha       float64
	itemsPerDay int
	other       plan.OtherPolicy

	started   bool
	startedAt time.Time

	recommendations atomic.Int64
	plans           atomic.Int64
	aggregations    atomic.Int64
	rollups         atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore uses store for both patients and protocols. Stop closes it.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.patients, s.protocols, s.closer = store, store, store
		}
	}
}

// WithPatientRepository sets the patient source.
func WithPatientRepository(r repository.PatientRepository) Option {
	return func(s *Service) {
		if r != nil {
			s.patients = r
		}
	}
}

// WithProtocolRepository sets the protocol catalog source.
func WithProtocolRepository(r repository.ProtocolRepository) Option {
	return func(s *Service) {
		if r != nil {
			s.protocols = r
		}
	}
}

// WithDefaultWeights sets the weights used when a request supplies none.
func WithDefaultWeights(w scoring.Weights) Option {
	return func(s *Service) {
		s.weights = w
	}
}

// WithDefaultAlpha sets the EWMA smoothing factor used when a request
// supplies none.
func WithDefaultAlpha(alpha float64) Option {
	return func(s *Service) {
		s.alpha = alpha
	}
}

// WithPlanItemsPerDay sets the default per-day cap for weekly plans.
func WithPlanItemsPerDay(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.itemsPerDay = n
		}
	}
}

// WithPlanOtherCategories sets the default policy for assessment and
// balanced protocols.
func WithPlanOtherCategories(p plan.OtherPolicy) Option {
	return func(s *Service) {
		s.other = p
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		weights:     scoring.DefaultWeights(),
		alpha:       aggregate.DefaultAlpha,
		itemsPerDay: plan.DefaultItemsPerDay,
		other:       plan.OtherExclude,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start validates the configuration and marks the service ready.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.patients == nil || s.protocols == nil {
		return ErrNoRepository
	}
	if err := s.weights.Validate(); err != nil {
		return fmt.Errorf("default weights: %w", err)
	}
	if err := aggregate.ValidateAlpha(s.alpha); err != nil {
		return fmt.Errorf("default alpha: %w", err)
	}
	if _, err := plan.ParseOtherPolicy(string(s.other)); err != nil {
		return fmt.Errorf("default plan policy: %w", err)
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "rehabplan service started",
		logger.Float64("motor_weight", s.weights.Motor),
		logger.Float64("cognitive_weight", s.weights.Cognitive),
		logger.Float64("alpha", s.alpha),
		logger.Int("items_per_day", s.itemsPerDay),
		logger.String("other_categories", string(s.other)),
	)
	return nil
}

// Stop closes the store supplied through WithStore.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if s.closer != nil {
		if err := s.closer.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing store", logger.Error(err))
		}
	}
	s.started = false
	s.logger.Info(context.Background(), "rehabplan service stopped")
}

// Weights returns the default request weights.
func (s *Service) Weights() scoring.Weights { return s.weights }

// Alpha returns the default smoothing factor.
func (s *Service) Alpha() float64 { return s.alpha }

// OtherCategories returns the default plan policy.
func (s *Service) OtherCategories() plan.OtherPolicy { return s.other }

// Recommend filters the catalog by the patient's tags and ranks what
// remains against the patient's clinical profile.
func (s *Service) Recommend(ctx context.Context, patientID string, w scoring.Weights) (types.Recommendation, error) {
	if err := w.Validate(); err != nil {
		return types.Recommendation{}, err
	}
	p, err := s.patients.Patient(ctx, patientID)
	if err != nil {
		metrics.RecordErrorByComponent("service", "patient_load")
		return types.Recommendation{}, fmt.Errorf("recommend: %w", err)
	}
	catalog, err := s.protocols.Protocols(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("service", "protocol_load")
		return types.Recommendation{}, fmt.Errorf("recommend: %w", err)
	}
	return s.recommend(ctx, p, catalog, w)
}

func (s *Service) recommend(ctx context.Context, p model.Patient, catalog []model.Protocol, w scoring.Weights) (types.Recommendation, error) {
	start := time.Now()
	eligible, excluded := eligibility.Partition(catalog, p.Tags)
	for _, e := range excluded {
		metrics.RecordProtocolExcluded(e.Tag)
	}

	ranked, conds, err := scoring.ScoreAll(p.ClinicalScores, eligible, w)
	if err != nil {
		return types.Recommendation{}, err
	}
	for _, c := range conds {
		metrics.RecordDataQuality(string(c.Kind))
	}
	metrics.RecordScoringPass(len(ranked), float64(time.Since(start).Microseconds())/1000)
	s.recommendations.Add(1)

	s.log().Debug(ctx, "protocols ranked",
		logger.PatientID(p.ID),
		logger.Int("eligible", len(eligible)),
		logger.Int("excluded", len(excluded)),
		logger.Int("conditions", len(conds)),
	)
	return types.Recommendation{
		PatientID:  p.ID,
		Weights:    w,
		Ranked:     ranked,
		Excluded:   excluded,
		Conditions: conds,
	}, nil
}

// WeeklyPlan ranks the catalog for a patient and distributes the result
// over the week starting at req.WeekStart, or the coming Monday.
func (s *Service) WeeklyPlan(ctx context.Context, patientID string, req types.PlanRequest) (types.WeeklyPlan, error) {
	w := s.weights
	if req.Weights != nil {
		w = *req.Weights
	}
	other := s.other
	if req.Other != "" {
		parsed, err := plan.ParseOtherPolicy(string(req.Other))
		if err != nil {
			return types.WeeklyPlan{}, err
		}
		other = parsed
	}
	perDay := s.itemsPerDay
	if req.ItemsPerDay > 0 {
		perDay = req.ItemsPerDay
	}
	weekStart := req.WeekStart
	if weekStart.IsZero() {
		weekStart = aggregate.WeekStart(time.Now()).AddDate(0, 0, 7)
	} else {
		weekStart = aggregate.WeekStart(weekStart)
	}

	rec, err := s.Recommend(ctx, patientID, w)
	if err != nil {
		return types.WeeklyPlan{}, err
	}
	p := plan.Build(rec.Ranked, plan.WithItemsPerDay(perDay), plan.WithOtherCategories(other))
	metrics.RecordPlanBuilt(p.Placed())
	s.plans.Add(1)

	s.log().Debug(ctx, "weekly plan built",
		logger.PatientID(patientID),
		logger.Int("placed", p.Placed()),
		logger.String("other_categories", string(other)),
	)
	return types.WeeklyPlan{
		Recommendation: rec,
		WeekStart:      weekStart,
		Plan:           p,
		Prescriptions:  plan.Prescriptions(p, patientID, weekStart),
	}, nil
}

// Aggregate builds the longitudinal view of a patient's sessions. A zero
// alpha selects the service default.
func (s *Service) Aggregate(ctx context.Context, patientID string, alpha float64) (aggregate.PatientAggregate, error) {
	if alpha == 0 {
		alpha = s.alpha
	}
	if err := aggregate.ValidateAlpha(alpha); err != nil {
		return aggregate.PatientAggregate{}, err
	}
	p, err := s.patients.Patient(ctx, patientID)
	if err != nil {
		metrics.RecordErrorByComponent("service", "patient_load")
		return aggregate.PatientAggregate{}, fmt.Errorf("aggregate: %w", err)
	}

	start := time.Now()
	agg, err := aggregate.Patient(p, alpha)
	if err != nil {
		return aggregate.PatientAggregate{}, err
	}
	metrics.RecordAggregationLatency(float64(time.Since(start).Microseconds()) / 1000)
	log := s.log().With(logger.PatientID(patientID))
	for _, c := range agg.Conditions {
		metrics.RecordDataQuality(string(c.Kind))
		log.Warn(ctx, "data quality condition",
			logger.String("kind", string(c.Kind)),
			logger.String("subject", c.Subject),
		)
	}
	s.aggregations.Add(1)
	return agg, nil
}

// Rollup summarizes one protocol across every patient. A protocol that is
// neither in the catalog nor in any session log is not found.
func (s *Service) Rollup(ctx context.Context, protocolID string) (rollup.Summary, error) {
	patients, err := s.patients.Patients(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("service", "patient_load")
		return rollup.Summary{}, fmt.Errorf("rollup: %w", err)
	}

	start := time.Now()
	sum := rollup.Protocol(protocolID, patients)
	metrics.RecordRollupLatency(float64(time.Since(start).Microseconds()) / 1000)

	if sum.SessionCount == 0 {
		if _, err := s.protocols.Protocol(ctx, protocolID); err != nil {
			return rollup.Summary{}, fmt.Errorf("rollup: %w", err)
		}
	}
	s.rollups.Add(1)
	return sum, nil
}

// RollupAll summarizes every protocol that appears in a session log.
func (s *Service) RollupAll(ctx context.Context) ([]rollup.Summary, error) {
	patients, err := s.patients.Patients(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("service", "patient_load")
		return nil, fmt.Errorf("rollup: %w", err)
	}
	start := time.Now()
	out := rollup.All(patients)
	metrics.RecordRollupLatency(float64(time.Since(start).Microseconds()) / 1000)
	s.rollups.Add(1)
	return out, nil
}

// Protocols returns the catalog.
func (s *Service) Protocols(ctx context.Context) ([]model.Protocol, error) {
	return s.protocols.Protocols(ctx)
}

// Protocol returns one catalog entry.
func (s *Service) Protocol(ctx context.Context, id string) (model.Protocol, error) {
	return s.protocols.Protocol(ctx, id)
}

// Patient returns one patient with its log attached.
func (s *Service) Patient(ctx context.Context, id string) (model.Patient, error) {
	return s.patients.Patient(ctx, id)
}

// PatientIDs lists every known patient.
func (s *Service) PatientIDs(ctx context.Context) ([]string, error) {
	return s.patients.PatientIDs(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"motorWeight":     s.weights.Motor,
		"cognitiveWeight": s.weights.Cognitive,
		"alpha":           s.alpha,
		"itemsPerDay":     s.itemsPerDay,
		"otherCategories": string(s.other),
		"recommendations": s.recommendations.Load(),
		"plans":           s.plans.Load(),
		"aggregations":    s.aggregations.Load(),
		"rollups":         s.rollups.Load(),
	}
	if s.started {
		stats["uptimeSeconds"] = time.Since(s.startedAt).Seconds()
	}
	return stats
}

func (s *Service) log() logger.Logger {
	if s.logger == nil {
		return logger.Get()
	}
	return s.logger
}
