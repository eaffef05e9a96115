package services

import (
	"fmt"
	"log/slog"
	"math"

	"route66-trip-service/internal/domain"
	"route66-trip-service/internal/geo"
)

// Allocation is the DayAllocator result: the chosen intermediate overnight
// stops in route order and the day counts they imply. RequestedDays is the
// request after clamping to [1, max days].
type Allocation struct {
	Stops         []domain.Stop
	RequestedDays int
	RealizedDays  int
	LimitMessage  string
}

type DayAllocator struct {
	geo     *geo.Calculator
	maxDays int
	logger  *slog.Logger
}

func NewDayAllocator(calc *geo.Calculator, maxDays int, logger *slog.Logger) *DayAllocator {
	if logger == nil {
		logger = discardLogger()
	}
	if calc == nil {
		calc = geo.NewCalculator(logger)
	}
	if maxDays <= 0 {
		maxDays = DefaultConfig().MaxTripDays
	}
	return &DayAllocator{geo: calc, maxDays: maxDays, logger: logger}
}

// ClampDays bounds a requested day count to [1, maxDays].
func (a *DayAllocator) ClampDays(requested int) int {
	return max(1, min(requested, a.maxDays))
}

// Allocate picks up to days-1 overnight stops, one per day slot, each the
// unused eligible candidate whose distance from start is closest to that
// slot's even-split target. Slots with no candidate that still moves toward
// end are skipped, so RealizedDays can come in under RequestedDays.
func (a *DayAllocator) Allocate(start, end domain.Stop, candidates []domain.Stop, requestedDays int) Allocation {
	days := a.ClampDays(requestedDays)
	alloc := Allocation{RequestedDays: days, Stops: []domain.Stop{}}

	direct := a.geo.Between(start, end)
	if days > 1 && direct > 0 {
		targetPerDay := direct / float64(days)
		used := make(map[string]struct{}, days)
		current := start

		for day := 1; day < days; day++ {
			target := targetPerDay * float64(day)
			pick, ok := a.pickForSlot(start, current, end, candidates, used, target)
			if !ok {
				a.logger.Debug("day slot skipped",
					slog.Int("day", day),
					slog.Float64("target_miles", target))
				continue
			}
			used[pick.ID] = struct{}{}
			alloc.Stops = append(alloc.Stops, pick)
			current = pick
		}
	}

	alloc.RealizedDays = len(alloc.Stops) + 1
	alloc.LimitMessage = limitMessage(requestedDays, days, alloc.RealizedDays, a.maxDays)
	return alloc
}

func (a *DayAllocator) pickForSlot(
	start, current, end domain.Stop,
	candidates []domain.Stop,
	used map[string]struct{},
	target float64,
) (domain.Stop, bool) {
	remaining := a.geo.Between(current, end)

	var best domain.Stop
	bestDelta := math.Inf(1)
	found := false
	for _, c := range candidates {
		if !c.IsDestinationCity() && !c.IsMajorWaypoint() {
			continue
		}
		if _, dup := used[c.ID]; dup {
			continue
		}
		if c.ID == start.ID || c.ID == end.ID || !c.HasValidCoordinates() {
			continue
		}
		if !makesProgress(a.geo, current, end, c, remaining) {
			continue
		}

		delta := math.Abs(a.geo.Between(start, c) - target)
		if delta < bestDelta {
			best, bestDelta, found = c, delta, true
		}
	}
	return best, found
}

func limitMessage(requested, clamped, realized, maxDays int) string {
	switch {
	case requested > maxDays && realized == clamped:
		return fmt.Sprintf("Trips are limited to %d days; your %d-day request was shortened to %d days.",
			maxDays, requested, realized)
	case realized < clamped:
		return fmt.Sprintf("Only %d suitable overnight stops were found along this route, so your trip was planned as %d days instead of %d.",
			realized-1, realized, clamped)
	}
	return ""
}
