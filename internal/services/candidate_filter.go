package services

import (
	"log/slog"

	"route66-trip-service/internal/domain"
	"route66-trip-service/internal/geo"
)

// Purpose selects the category gate applied by CandidateFilter.
type Purpose int

const (
	// PurposeOvernight admits only destination cities.
	PurposeOvernight Purpose = iota
	// PurposeEnrichment admits everything except destination cities.
	PurposeEnrichment
)

func (p Purpose) String() string {
	if p == PurposeEnrichment {
		return "enrichment"
	}
	return "overnight"
}

// FilterOptions tunes a single CandidateFilter run.
type FilterOptions struct {
	Purpose Purpose
	// MaxDeviationMiles overrides the adaptive tolerance when > 0.
	MaxDeviationMiles float64
}

// CandidateFilter reduces a stop pool to geographically and categorically
// valid intermediate candidates for a start/end pair.
type CandidateFilter struct {
	geo       *geo.Calculator
	tolerance DeviationTolerance
	logger    *slog.Logger
}

func NewCandidateFilter(calc *geo.Calculator, tolerance DeviationTolerance, logger *slog.Logger) *CandidateFilter {
	if calc == nil {
		calc = geo.NewCalculator(logger)
	}
	if logger == nil {
		logger = discardLogger()
	}
	if tolerance == (DeviationTolerance{}) {
		tolerance = DefaultConfig().Tolerance
	}
	return &CandidateFilter{geo: calc, tolerance: tolerance, logger: logger}
}

// Filter runs the category gate, identity dedup and progression checks, in
// that order. The input slice is never modified.
func (f *CandidateFilter) Filter(pool []domain.Stop, start, end domain.Stop, opts FilterOptions) []domain.Stop {
	if !start.HasValidCoordinates() || !end.HasValidCoordinates() {
		f.logger.Warn("candidate filter: start or end has invalid coordinates",
			slog.String("start_id", start.ID), slog.String("end_id", end.ID))
		return []domain.Stop{}
	}

	gated := f.categoryGate(pool, opts.Purpose)
	unique := CollapseDuplicates(gated)
	return f.progressionFilter(unique, start, end, opts)
}

func (f *CandidateFilter) categoryGate(pool []domain.Stop, purpose Purpose) []domain.Stop {
	out := make([]domain.Stop, 0, len(pool))
	rejected := 0
	for _, s := range pool {
		isCity := s.Category == domain.CategoryDestinationCity
		if (purpose == PurposeOvernight) != isCity {
			rejected++
			f.logger.Debug("candidate rejected by category gate",
				slog.String("id", s.ID),
				slog.String("category", string(s.Category)),
				slog.String("purpose", purpose.String()))
			continue
		}
		out = append(out, s)
	}

	if purpose == PurposeOvernight && len(out) == 0 && len(pool) > 0 {
		f.logger.Warn("category gate found no destination cities", slog.Int("pool", len(pool)))
	}
	return out
}

// CollapseDuplicates drops repeated ids, then repeated normalized
// (name, state) pairs. The first occurrence wins.
func CollapseDuplicates(stops []domain.Stop) []domain.Stop {
	seenID := make(map[string]struct{}, len(stops))
	seenName := make(map[string]struct{}, len(stops))
	out := make([]domain.Stop, 0, len(stops))

	for _, s := range stops {
		if s.ID != "" {
			if _, ok := seenID[s.ID]; ok {
				continue
			}
			seenID[s.ID] = struct{}{}
		}

		key := normalizeName(s.Name) + "|" + normalizeName(s.State)
		if _, ok := seenName[key]; ok {
			continue
		}
		seenName[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func (f *CandidateFilter) progressionFilter(stops []domain.Stop, start, end domain.Stop, opts FilterOptions) []domain.Stop {
	direct := f.geo.Between(start, end)
	if direct <= 0 {
		f.logger.Warn("candidate filter: start and end coincide",
			slog.String("start_id", start.ID), slog.String("end_id", end.ID))
		return []domain.Stop{}
	}

	out := make([]domain.Stop, 0, len(stops))
	for _, c := range stops {
		if c.ID == start.ID || c.ID == end.ID {
			continue
		}
		if !c.HasValidCoordinates() {
			f.logger.Warn("candidate skipped: invalid coordinates", slog.String("id", c.ID))
			continue
		}

		if !makesProgress(f.geo, start, end, c, direct) {
			continue
		}

		maxDev := opts.MaxDeviationMiles
		if maxDev <= 0 {
			maxDev = f.tolerance.MaxDeviation(c.Category, direct)
		}

		detour := f.geo.Between(start, c) + f.geo.Between(c, end) - direct
		if detour > maxDev {
			f.logger.Debug("candidate rejected: detour too large",
				slog.String("id", c.ID),
				slog.Float64("detour_miles", detour),
				slog.Float64("max_miles", maxDev))
			continue
		}
		out = append(out, c)
	}
	return out
}

// makesProgress reports whether c lies strictly closer to both ends than they
// are to each other, i.e. visiting c never means backtracking.
func makesProgress(calc *geo.Calculator, from, to, c domain.Stop, direct float64) bool {
	return calc.Between(from, c) < direct && calc.Between(c, to) < direct
}
