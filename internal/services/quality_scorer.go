package services

import (
	"cmp"
	"slices"

	"route66-trip-service/internal/domain"
	"route66-trip-service/internal/geo"
)

const (
	scoreDestinationCity  = 20.0
	scoreMajorStop        = 10.0
	scoreOfficialDest     = 8.0
	scoreAnchorCity       = 15.0
	scoreFeatured         = 5.0
	scoreBeyondNearOrigin = 5.0
	scoreBeyondFarOrigin  = 3.0
	nearOriginMiles       = 30.0
	farOriginMiles        = 100.0
)

// ScoredStop pairs a stop with its heritage score.
type ScoredStop struct {
	Stop  domain.Stop
	Score float64
}

// QualityScorer assigns an additive heritage/significance score used for
// ranking. It never filters.
type QualityScorer struct {
	geo *geo.Calculator
}

func NewQualityScorer(calc *geo.Calculator) *QualityScorer {
	if calc == nil {
		calc = geo.NewCalculator(nil)
	}
	return &QualityScorer{geo: calc}
}

// Score returns the heritage score of stop relative to origin.
func (q *QualityScorer) Score(stop, origin domain.Stop) float64 {
	score := 0.0

	if stop.Category == domain.CategoryDestinationCity {
		score += scoreDestinationCity
	}
	if stop.IsMajorStop {
		score += scoreMajorStop
	}
	if stop.IsOfficialDestination {
		score += scoreOfficialDest
	}
	if stop.Featured {
		score += scoreFeatured
	}
	if IsAnchorCity(stop.Name) {
		score += scoreAnchorCity
	}

	// Something essentially adjacent to the origin makes a poor stop.
	fromOrigin := q.geo.Between(origin, stop)
	if fromOrigin > nearOriginMiles {
		score += scoreBeyondNearOrigin
	}
	if fromOrigin > farOriginMiles {
		score += scoreBeyondFarOrigin
	}

	return score
}

// Rank returns stops ordered by descending score. Ties keep input order.
func (q *QualityScorer) Rank(stops []domain.Stop, origin domain.Stop) []ScoredStop {
	out := make([]ScoredStop, 0, len(stops))
	for _, s := range stops {
		out = append(out, ScoredStop{Stop: s, Score: q.Score(s, origin)})
	}

	slices.SortStableFunc(out, func(a, b ScoredStop) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return out
}
