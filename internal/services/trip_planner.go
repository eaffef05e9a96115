package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"route66-trip-service/internal/domain"
	"route66-trip-service/internal/geo"
	"route66-trip-service/internal/platform/metrics"
	"route66-trip-service/internal/platform/obs"
	"route66-trip-service/internal/ports"
)

type PlanTripRequest struct {
	StartStopID   string
	EndStopID     string
	RequestedDays int
}

// PlanResult pairs a plan with its validation report. The report is derived
// from the plan and never stored on it.
type PlanResult struct {
	Plan       *domain.TripPlan
	Validation domain.ValidationReport
}

// TripPlanner runs the full pipeline:
// CandidateFilter -> ConflictResolver -> DiversityBalancer -> DayAllocator,
// then segment estimation, enrichment and GapValidator.
//
// A TripPlanner holds no per-request state beyond the live-distance session
// cache and is safe for concurrent use.
type TripPlanner struct {
	repo ports.StopRepository

	geo       *geo.Calculator
	filter    *CandidateFilter
	resolver  *ConflictResolver
	balancer  *DiversityBalancer
	allocator *DayAllocator
	validator *GapValidator
	estimator *SegmentEstimator
	enricher  *Enricher

	logger *slog.Logger
	now    func() time.Time
}

// NewTripPlanner wires every stage from cfg. provider may be nil, in which
// case all figures come from geometry and planning is deterministic.
func NewTripPlanner(
	repo ports.StopRepository,
	provider ports.DistanceProvider,
	cfg Config,
	logger *slog.Logger,
) *TripPlanner {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = discardLogger()
	}

	calc := geo.NewCalculator(logger)
	scorer := NewQualityScorer(calc)
	filter := NewCandidateFilter(calc, cfg.Tolerance, logger)
	resolver := NewConflictResolver(calc, cfg.DuplicateProximityMiles, cfg.ColocatedProximityMiles, logger)

	return &TripPlanner{
		repo:      repo,
		geo:       calc,
		filter:    filter,
		resolver:  resolver,
		balancer:  NewDiversityBalancer(calc, scorer, resolver, cfg, logger),
		allocator: NewDayAllocator(calc, cfg.MaxTripDays, logger),
		validator: NewGapValidator(calc, logger),
		estimator: NewSegmentEstimator(calc, provider, cfg, logger),
		enricher:  NewEnricher(calc, filter, resolver, scorer, cfg, logger),
		logger:    logger,
		now:       time.Now,
	}
}

// Plan builds a TripPlan for req. Errors are returned only for unknown stop
// ids, unusable start/end records and repository failures; a sparse pool
// yields a shorter plan with a limit message instead.
func (p *TripPlanner) Plan(ctx context.Context, req PlanTripRequest) (_ *PlanResult, err error) {
	defer obs.Time(ctx, p.logger, "planner.Plan")(&err)
	started := time.Now()

	ctx, span := otel.Tracer("TripPlanner").Start(ctx, "Plan", trace.WithAttributes(
		attribute.String("trip.start_id", req.StartStopID),
		attribute.String("trip.end_id", req.EndStopID),
		attribute.Int("trip.requested_days", req.RequestedDays),
	))
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "planning failed")
			metrics.PlansTotal.WithLabelValues("error").Inc()
		}
	}()

	startID, endID := strings.TrimSpace(req.StartStopID), strings.TrimSpace(req.EndStopID)
	if startID == "" || endID == "" {
		return nil, fmt.Errorf("plan trip: start and end ids are required: %w", ErrInvalidRequest)
	}
	if startID == endID {
		return nil, fmt.Errorf("plan trip: start and end must differ: %w", ErrInvalidRequest)
	}

	start, err := p.stop(ctx, startID)
	if err != nil {
		return nil, fmt.Errorf("plan trip: start: %w", err)
	}
	end, err := p.stop(ctx, endID)
	if err != nil {
		return nil, fmt.Errorf("plan trip: end: %w", err)
	}
	if !start.HasValidCoordinates() || !end.HasValidCoordinates() {
		return nil, fmt.Errorf("plan trip: start or end has invalid coordinates: %w", ErrInvalidRequest)
	}

	pool, err := p.repo.ListStops(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan trip: list stops: %w", err)
	}
	span.AddEvent("pool loaded", trace.WithAttributes(attribute.Int("pool.size", len(pool))))

	alloc := p.SelectOvernightStops(start, end, pool, req.RequestedDays)
	span.AddEvent("overnight stops selected", trace.WithAttributes(
		attribute.Int("trip.realized_days", alloc.RealizedDays)))

	chain := make([]domain.Stop, 0, len(alloc.Stops)+2)
	chain = append(chain, start)
	chain = append(chain, alloc.Stops...)
	chain = append(chain, end)

	plan := p.assemble(ctx, chain, alloc)

	attractions, err := p.enricher.Enrich(ctx, plan.Segments, pool)
	if err != nil {
		return nil, fmt.Errorf("plan trip: enrich: %w", err)
	}
	for i := range plan.Segments {
		plan.Segments[i].Attractions = attractions[i]
	}
	span.AddEvent("segments enriched")

	report := p.validator.ValidatePlan(plan)
	for _, g := range report.Gaps {
		metrics.GapsDetected.WithLabelValues(string(g.Severity)).Inc()
	}

	metrics.PlansTotal.WithLabelValues(outcome(plan)).Inc()
	metrics.PlanDuration.Observe(time.Since(started).Seconds())
	span.SetAttributes(
		attribute.String("trip.id", plan.ID.String()),
		attribute.Int("trip.segments", len(plan.Segments)),
		attribute.Bool("trip.recommended", report.IsRecommended),
	)
	span.SetStatus(codes.Ok, "planned")

	if plan.LimitMessage != "" {
		p.logger.InfoContext(ctx, "trip shortened",
			slog.String("req_id", obs.RequestID(ctx)),
			slog.Int("requested_days", req.RequestedDays),
			slog.Int("realized_days", plan.RealizedDays))
	}

	return &PlanResult{Plan: plan, Validation: report}, nil
}

// SelectOvernightStops runs the selection stages over pool and returns the
// chosen intermediate stops. It is pure and never fails; an empty selection
// means a direct one-day trip.
func (p *TripPlanner) SelectOvernightStops(start, end domain.Stop, pool []domain.Stop, requestedDays int) Allocation {
	days := p.allocator.ClampDays(requestedDays)
	if days <= 1 {
		return p.allocator.Allocate(start, end, nil, requestedDays)
	}

	candidates := p.filter.Filter(pool, start, end, FilterOptions{Purpose: PurposeOvernight})
	candidates = p.resolver.Excluding(p.resolver.Resolve(candidates), start, end)
	candidates = p.balancer.Balance(candidates, start, end)

	p.logger.Debug("overnight candidates ready",
		slog.String("start_id", start.ID),
		slog.String("end_id", end.ID),
		slog.Int("pool", len(pool)),
		slog.Int("candidates", len(candidates)))

	return p.allocator.Allocate(start, end, candidates, requestedDays)
}

// ValidateStops loads the given ids in order and validates them as an
// itinerary.
func (p *TripPlanner) ValidateStops(ctx context.Context, ids []string) (_ domain.ValidationReport, err error) {
	defer obs.Time(ctx, p.logger, "planner.ValidateStops")(&err)

	if len(ids) < 2 {
		return domain.ValidationReport{}, fmt.Errorf("validate stops: at least two stops are required: %w", ErrInvalidRequest)
	}

	stops := make([]domain.Stop, 0, len(ids))
	for _, id := range ids {
		s, err := p.stop(ctx, strings.TrimSpace(id))
		if err != nil {
			return domain.ValidationReport{}, fmt.Errorf("validate stops: %w", err)
		}
		stops = append(stops, s)
	}

	return p.validator.Validate(stops), nil
}

func (p *TripPlanner) assemble(ctx context.Context, chain []domain.Stop, alloc Allocation) *domain.TripPlan {
	estimates := p.estimator.EstimateChain(ctx, chain)

	plan := &domain.TripPlan{
		ID:            uuid.New(),
		StartCity:     chain[0],
		EndCity:       chain[len(chain)-1],
		Segments:      make([]domain.DailySegment, 0, len(estimates)),
		RequestedDays: alloc.RequestedDays,
		RealizedDays:  alloc.RealizedDays,
		LimitMessage:  alloc.LimitMessage,
		CreatedAt:     p.now().UTC(),
	}

	for i, est := range estimates {
		plan.Segments = append(plan.Segments, domain.DailySegment{
			Day:            i + 1,
			Start:          chain[i],
			End:            chain[i+1],
			DistanceMiles:  est.DistanceMiles,
			DriveTimeHours: est.DriveTimeHours,
			Source:         est.Source,
			Attractions:    []domain.Stop{},
		})
		plan.TotalDistanceMiles += est.DistanceMiles
		plan.TotalDriveTimeHours += est.DriveTimeHours
	}
	return plan
}

func (p *TripPlanner) stop(ctx context.Context, id string) (domain.Stop, error) {
	s, err := p.repo.GetStop(ctx, id)
	if errors.Is(err, ports.ErrNotFound) {
		return domain.Stop{}, fmt.Errorf("%w: %q", ErrStopNotFound, id)
	}
	if err != nil {
		return domain.Stop{}, fmt.Errorf("get stop %q: %w", id, err)
	}
	return s, nil
}

func outcome(plan *domain.TripPlan) string {
	switch {
	case plan.RealizedDays == 1:
		return "direct"
	case plan.RealizedDays < plan.RequestedDays:
		return "reduced"
	}
	return "full"
}
