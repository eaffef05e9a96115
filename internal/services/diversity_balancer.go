package services

import (
	"cmp"
	"log/slog"
	"math"
	"slices"

	"route66-trip-service/internal/domain"
	"route66-trip-service/internal/geo"
)

type progressStop struct {
	stop     domain.Stop
	progress float64
}

// DiversityBalancer limits and orders candidates per route section so the
// itinerary neither clusters nor zig-zags.
type DiversityBalancer struct {
	geo               *geo.Calculator
	scorer            *QualityScorer
	resolver          *ConflictResolver
	sections          []domain.RouteSection
	waypointKeepRatio float64
	otherKeepRatio    float64
	logger            *slog.Logger
}

func NewDiversityBalancer(
	calc *geo.Calculator,
	scorer *QualityScorer,
	resolver *ConflictResolver,
	cfg Config,
	logger *slog.Logger,
) *DiversityBalancer {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = discardLogger()
	}
	if calc == nil {
		calc = geo.NewCalculator(logger)
	}
	if scorer == nil {
		scorer = NewQualityScorer(calc)
	}
	if resolver == nil {
		resolver = NewConflictResolver(calc, cfg.DuplicateProximityMiles, cfg.ColocatedProximityMiles, logger)
	}

	return &DiversityBalancer{
		geo:               calc,
		scorer:            scorer,
		resolver:          resolver,
		sections:          cfg.Sections,
		waypointKeepRatio: cfg.WaypointKeepRatio,
		otherKeepRatio:    cfg.OtherKeepRatio,
		logger:            logger,
	}
}

// Progress returns how far along the start->end line c sits, in [0,100].
func (b *DiversityBalancer) Progress(start, end, c domain.Stop) float64 {
	direct := b.geo.Between(start, end)
	if direct <= 0 {
		return 0
	}
	p := b.geo.Between(start, c) / direct * 100
	return math.Max(0, math.Min(100, p))
}

// Balance assigns candidates to sections, keeps every destination city, a
// majority of major Route 66 waypoints and a small share of everything else
// (both ranked by QualityScorer), and returns the survivors in route order.
func (b *DiversityBalancer) Balance(candidates []domain.Stop, start, end domain.Stop) []domain.Stop {
	buckets := make([][]progressStop, len(b.sections))
	for _, c := range candidates {
		p := b.Progress(start, end, c)
		idx := domain.SectionIndex(b.sections, p)
		if idx < 0 {
			continue
		}
		buckets[idx] = append(buckets[idx], progressStop{stop: c, progress: p})
	}

	out := make([]domain.Stop, 0, len(candidates))
	for i, bucket := range buckets {
		slices.SortStableFunc(bucket, func(x, y progressStop) int {
			return cmp.Compare(x.progress, y.progress)
		})

		kept := b.balanceSection(bucket, start)
		b.logger.Debug("section balanced",
			slog.String("section", b.sections[i].Name),
			slog.Int("candidates", len(bucket)),
			slog.Int("kept", len(kept)))
		out = append(out, kept...)
	}

	// Records near a section boundary can still collide across sections.
	return b.resolver.Resolve(out)
}

func (b *DiversityBalancer) balanceSection(bucket []progressStop, start domain.Stop) []domain.Stop {
	var waypoints, others []progressStop
	keep := make(map[int]struct{}, len(bucket))

	for i, ps := range bucket {
		switch {
		case ps.stop.IsDestinationCity():
			keep[i] = struct{}{}
		case ps.stop.IsMajorWaypoint():
			waypoints = append(waypoints, ps)
		default:
			others = append(others, ps)
		}
	}

	for _, id := range b.topByScore(waypoints, b.waypointKeepRatio, start) {
		keep[indexOf(bucket, id)] = struct{}{}
	}
	for _, id := range b.topByScore(others, b.otherKeepRatio, start) {
		keep[indexOf(bucket, id)] = struct{}{}
	}

	// Emit in progress order, whatever the ranking was.
	out := make([]domain.Stop, 0, len(keep))
	for i, ps := range bucket {
		if _, ok := keep[i]; ok {
			out = append(out, ps.stop)
		}
	}
	return out
}

// topByScore returns the ids of the best ceil(len*ratio) stops.
func (b *DiversityBalancer) topByScore(group []progressStop, ratio float64, start domain.Stop) []string {
	if len(group) == 0 {
		return nil
	}
	n := int(math.Ceil(float64(len(group)) * ratio))
	n = max(0, min(n, len(group)))

	stops := make([]domain.Stop, 0, len(group))
	for _, ps := range group {
		stops = append(stops, ps.stop)
	}

	ranked := b.scorer.Rank(stops, start)
	ids := make([]string, 0, n)
	for _, r := range ranked[:n] {
		ids = append(ids, r.Stop.ID)
	}
	return ids
}

func indexOf(bucket []progressStop, id string) int {
	return slices.IndexFunc(bucket, func(ps progressStop) bool { return ps.stop.ID == id })
}
