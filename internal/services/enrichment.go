package services

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"route66-trip-service/internal/domain"
	"route66-trip-service/internal/geo"
)

// Enricher finds display attractions along each day's drive. Attractions are
// never overnight stops, and an overnight stop of the plan is never offered
// as an attraction.
type Enricher struct {
	geo         *geo.Calculator
	filter      *CandidateFilter
	resolver    *ConflictResolver
	scorer      *QualityScorer
	perSegment  int
	concurrency int
	logger      *slog.Logger
}

func NewEnricher(
	calc *geo.Calculator,
	filter *CandidateFilter,
	resolver *ConflictResolver,
	scorer *QualityScorer,
	cfg Config,
	logger *slog.Logger,
) *Enricher {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = discardLogger()
	}
	if calc == nil {
		calc = geo.NewCalculator(logger)
	}
	if filter == nil {
		filter = NewCandidateFilter(calc, cfg.Tolerance, logger)
	}
	if resolver == nil {
		resolver = NewConflictResolver(calc, cfg.DuplicateProximityMiles, cfg.ColocatedProximityMiles, logger)
	}
	if scorer == nil {
		scorer = NewQualityScorer(calc)
	}

	return &Enricher{
		geo:         calc,
		filter:      filter,
		resolver:    resolver,
		scorer:      scorer,
		perSegment:  cfg.MaxAttractionsPerSegment,
		concurrency: cfg.EnrichmentConcurrency,
		logger:      logger,
	}
}

// Enrich returns one attraction list per segment, index-aligned with
// segments. Segments are processed concurrently with a bounded number of
// workers; the only error is ctx cancellation.
func (e *Enricher) Enrich(ctx context.Context, segments []domain.DailySegment, pool []domain.Stop) ([][]domain.Stop, error) {
	out := make([][]domain.Stop, len(segments))

	overnight := make(map[string]struct{}, len(segments)+1)
	for _, s := range segments {
		overnight[s.Start.ID] = struct{}{}
		overnight[s.End.ID] = struct{}{}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, seg := range segments {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = e.forSegment(seg, pool, overnight)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Enricher) forSegment(seg domain.DailySegment, pool []domain.Stop, overnight map[string]struct{}) []domain.Stop {
	candidates := e.filter.Filter(pool, seg.Start, seg.End, FilterOptions{Purpose: PurposeEnrichment})
	candidates = slices.DeleteFunc(candidates, func(s domain.Stop) bool {
		_, ok := overnight[s.ID]
		return ok
	})
	candidates = e.resolver.Resolve(candidates)

	ranked := e.scorer.Rank(candidates, seg.Start)
	n := min(e.perSegment, len(ranked))

	picked := make([]domain.Stop, 0, n)
	for _, r := range ranked[:n] {
		picked = append(picked, r.Stop)
	}

	// Present in driving order.
	slices.SortStableFunc(picked, func(a, b domain.Stop) int {
		return cmp.Compare(e.geo.Between(seg.Start, a), e.geo.Between(seg.Start, b))
	})

	e.logger.Debug("segment enriched",
		slog.Int("day", seg.Day),
		slog.Int("candidates", len(candidates)),
		slog.Int("picked", len(picked)))
	return picked
}
