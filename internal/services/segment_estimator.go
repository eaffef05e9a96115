package services

import (
	"context"
	"log/slog"
	"math"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"route66-trip-service/internal/domain"
	"route66-trip-service/internal/geo"
	"route66-trip-service/internal/platform/metrics"
	"route66-trip-service/internal/ports"
)

// SegmentEstimate is the distance and drive time assigned to one day.
type SegmentEstimate struct {
	DistanceMiles  float64
	DriveTimeHours float64
	Source         domain.DistanceSource
}

// SegmentEstimator computes per-day figures from geometry and, when a live
// provider is configured, refines them one pair at a time.
//
// Live calls are spaced by a fixed delay and individually time-boxed. Any
// failure falls back to geometry for that pair only. Results are cached by
// origin|destination label for the session TTL.
type SegmentEstimator struct {
	geo      *geo.Calculator
	provider ports.DistanceProvider
	limiter  *rate.Limiter
	timeout  time.Duration
	session  *gocache.Cache
	logger   *slog.Logger
}

func NewSegmentEstimator(
	calc *geo.Calculator,
	provider ports.DistanceProvider,
	cfg Config,
	logger *slog.Logger,
) *SegmentEstimator {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = discardLogger()
	}
	if calc == nil {
		calc = geo.NewCalculator(logger)
	}

	limit := rate.Inf
	if cfg.LiveCallDelay > 0 {
		limit = rate.Every(cfg.LiveCallDelay)
	}

	return &SegmentEstimator{
		geo:      calc,
		provider: provider,
		limiter:  rate.NewLimiter(limit, 1),
		timeout:  cfg.LiveCallTimeout,
		session:  gocache.New(cfg.SessionCacheTTL, 2*cfg.SessionCacheTTL),
		logger:   logger,
	}
}

// Static returns the geometry-only estimate for a pair.
func (e *SegmentEstimator) Static(a, b domain.Stop) SegmentEstimate {
	miles := e.geo.Between(a, b)
	return SegmentEstimate{
		DistanceMiles:  miles,
		DriveTimeHours: geo.DriveTimeHours(miles),
		Source:         domain.DistanceSourceGeometry,
	}
}

// EstimateChain returns one estimate per adjacent pair of stops. Calls are
// sequential; once ctx is done no further live calls are issued and the
// remaining pairs use geometry.
func (e *SegmentEstimator) EstimateChain(ctx context.Context, stops []domain.Stop) []SegmentEstimate {
	if len(stops) < 2 {
		return []SegmentEstimate{}
	}

	out := make([]SegmentEstimate, 0, len(stops)-1)
	for i := 0; i+1 < len(stops); i++ {
		out = append(out, e.Estimate(ctx, stops[i], stops[i+1]))
	}
	return out
}

// Estimate refines a single pair. It never returns an error.
func (e *SegmentEstimator) Estimate(ctx context.Context, a, b domain.Stop) SegmentEstimate {
	static := e.Static(a, b)
	if e.provider == nil {
		return static
	}

	origin, destination := a.Label(), b.Label()
	key := origin + "|" + destination
	if v, ok := e.session.Get(key); ok {
		metrics.LiveDistanceCalls.WithLabelValues("cached").Inc()
		return v.(SegmentEstimate)
	}

	if ctx.Err() != nil {
		metrics.LiveDistanceCalls.WithLabelValues("skipped").Inc()
		return static
	}
	if err := e.limiter.Wait(ctx); err != nil {
		metrics.LiveDistanceCalls.WithLabelValues("skipped").Inc()
		return static
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	res, err := e.provider.GetDistance(callCtx, origin, destination)
	if err != nil {
		metrics.LiveDistanceCalls.WithLabelValues("fallback").Inc()
		e.logger.Warn("live distance failed, using geometry",
			slog.String("origin", origin),
			slog.String("destination", destination),
			slog.Any("err", err))
		return static
	}
	if !usable(res) {
		metrics.LiveDistanceCalls.WithLabelValues("fallback").Inc()
		e.logger.Warn("live distance unusable, using geometry",
			slog.String("origin", origin),
			slog.String("destination", destination),
			slog.Float64("miles", res.DistanceMiles),
			slog.Float64("hours", res.DurationHours))
		return static
	}

	est := SegmentEstimate{
		DistanceMiles:  res.DistanceMiles,
		DriveTimeHours: geo.ClampDriveTime(res.DurationHours * geo.DriveTimeBuffer),
		Source:         domain.DistanceSourceLive,
	}
	e.session.SetDefault(key, est)
	metrics.LiveDistanceCalls.WithLabelValues("live").Inc()
	return est
}

func usable(r ports.DistanceResult) bool {
	finite := !math.IsNaN(r.DistanceMiles) && !math.IsInf(r.DistanceMiles, 0) &&
		!math.IsNaN(r.DurationHours) && !math.IsInf(r.DurationHours, 0)
	return finite && r.DistanceMiles > 0 && r.DurationHours > 0
}
