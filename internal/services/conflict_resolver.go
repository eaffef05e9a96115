package services

import (
	"log/slog"
	"slices"

	"route66-trip-service/internal/domain"
	"route66-trip-service/internal/geo"
)

// matchSignal describes how strongly two records look like the same place.
type matchSignal int

const (
	noMatch matchSignal = iota
	// proximity only, no supplementary confirmation
	weakMatch
	// same name, or nearby with identical supplementary metadata
	strongMatch
)

// ConflictResolver keeps at most one stop per real-world place.
//
// Conflicts are resolved by priority, never by arrival order alone: a
// destination city always beats any other category, so a city is never
// dropped in favor of a minor attraction next to it.
type ConflictResolver struct {
	geo            *geo.Calculator
	duplicateMiles float64
	colocatedMiles float64
	logger         *slog.Logger
}

func NewConflictResolver(calc *geo.Calculator, duplicateMiles, colocatedMiles float64, logger *slog.Logger) *ConflictResolver {
	if logger == nil {
		logger = discardLogger()
	}
	if calc == nil {
		calc = geo.NewCalculator(logger)
	}
	d := DefaultConfig()
	if duplicateMiles <= 0 {
		duplicateMiles = d.DuplicateProximityMiles
	}
	if colocatedMiles <= 0 {
		colocatedMiles = d.ColocatedProximityMiles
	}
	return &ConflictResolver{
		geo:            calc,
		duplicateMiles: duplicateMiles,
		colocatedMiles: colocatedMiles,
		logger:         logger,
	}
}

// Resolve folds candidates, in order, into an accepted list. Each fold step
// returns a fresh slice; the input is never modified.
func (r *ConflictResolver) Resolve(candidates []domain.Stop) []domain.Stop {
	accepted := make([]domain.Stop, 0, len(candidates))
	for _, c := range candidates {
		accepted = r.fold(accepted, c)
	}
	return accepted
}

// fold merges candidate into accepted. If candidate loses to any accepted
// stop it is discarded; otherwise it takes the position of the first stop it
// beats and every other beaten stop is removed.
func (r *ConflictResolver) fold(accepted []domain.Stop, candidate domain.Stop) []domain.Stop {
	var beaten []int
	for i, existing := range accepted {
		if !r.conflicts(existing, candidate) {
			continue
		}

		if !r.candidateWins(existing, candidate) {
			r.logger.Debug("conflict: candidate discarded",
				slog.String("kept", existing.ID), slog.String("dropped", candidate.ID))
			return accepted
		}
		beaten = append(beaten, i)
	}

	if len(beaten) == 0 {
		return append(slices.Clip(accepted), candidate)
	}

	out := make([]domain.Stop, 0, len(accepted)-len(beaten)+1)
	for i, existing := range accepted {
		if !slices.Contains(beaten, i) {
			out = append(out, existing)
			continue
		}
		r.logger.Debug("conflict: accepted stop replaced",
			slog.String("kept", candidate.ID), slog.String("dropped", existing.ID))
		if i == beaten[0] {
			out = append(out, candidate)
		}
	}
	return out
}

func (r *ConflictResolver) match(a, b domain.Stop) matchSignal {
	if a.ID != "" && a.ID == b.ID {
		return strongMatch
	}
	if sameName(a, b) {
		return strongMatch
	}

	if !a.HasValidCoordinates() || !b.HasValidCoordinates() {
		return noMatch
	}
	d := r.geo.Between(a, b)

	if d < r.duplicateMiles && a.ImageURL != "" && a.ImageURL == b.ImageURL {
		return strongMatch
	}
	if d < r.colocatedMiles {
		return weakMatch
	}
	return noMatch
}

// sameName compares names case-insensitively. Records in different states
// are different places even when named alike (Springfield IL and MO).
func sameName(a, b domain.Stop) bool {
	an, bn := normalizeName(a.Name), normalizeName(b.Name)
	if an == "" || an != bn {
		return false
	}
	as, bs := normalizeName(a.State), normalizeName(b.State)
	return as == "" || bs == "" || as == bs
}

// conflicts reports whether a and b represent the same place. A
// proximity-only signal between two minor stops is looser: it only merges
// stops of the same category, since a diner next to a museum is two places.
func (r *ConflictResolver) conflicts(a, b domain.Stop) bool {
	switch r.match(a, b) {
	case strongMatch:
		return true
	case weakMatch:
		if a.IsDestinationCity() || b.IsDestinationCity() {
			return true
		}
		return a.Category == b.Category
	}
	return false
}

// candidateWins applies the priority rules. The existing (earlier-seen) stop
// wins every tie.
func (r *ConflictResolver) candidateWins(existing, candidate domain.Stop) bool {
	existingCity := existing.IsDestinationCity()
	candidateCity := candidate.IsDestinationCity()

	switch {
	case candidateCity && !existingCity:
		return true
	case existingCity && !candidateCity:
		return false
	case existingCity && candidateCity:
		if candidate.IsMajorStop != existing.IsMajorStop {
			return candidate.IsMajorStop
		}
		return IsAnchorCity(candidate.Name) && !IsAnchorCity(existing.Name)
	}
	return false
}

// Excluding returns the candidates that conflict with none of fixed. The
// fixed stops always win, whatever their priority.
func (r *ConflictResolver) Excluding(candidates []domain.Stop, fixed ...domain.Stop) []domain.Stop {
	out := make([]domain.Stop, 0, len(candidates))
	for _, c := range candidates {
		if slices.ContainsFunc(fixed, func(f domain.Stop) bool { return r.conflicts(f, c) }) {
			r.logger.Debug("candidate duplicates a fixed stop", slog.String("id", c.ID))
			continue
		}
		out = append(out, c)
	}
	return out
}
