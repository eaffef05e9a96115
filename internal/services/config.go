package services

import (
	"time"

	"route66-trip-service/internal/domain"
)

// DeviationTolerance holds the detour allowances used by CandidateFilter.
//
// A candidate c between start and end is accepted when
// (dist(start,c) + dist(c,end)) - dist(start,end) <= MaxDeviation(...).
// The allowance is the smaller of a mileage cap and a ratio of the direct
// distance, so short legs get tight tolerances and long legs are capped.
type DeviationTolerance struct {
	DefaultMiles         float64
	DestinationCityMiles float64

	ShortSegmentMiles float64
	LongSegmentMiles  float64

	ShortRatio           float64
	StandardRatio        float64
	LongRatio            float64
	DestinationCityRatio float64
}

// MaxDeviation returns the allowed detour in miles for a candidate of the
// given category on a leg of directMiles.
func (t DeviationTolerance) MaxDeviation(category domain.Category, directMiles float64) float64 {
	miles := t.DefaultMiles
	ratio := t.StandardRatio
	switch {
	case directMiles < t.ShortSegmentMiles:
		ratio = t.ShortRatio
	case directMiles > t.LongSegmentMiles:
		ratio = t.LongRatio
	}

	if category == domain.CategoryDestinationCity {
		miles = t.DestinationCityMiles
		ratio = t.DestinationCityRatio
	}

	byRatio := (ratio - 1) * directMiles
	if byRatio < 0 {
		byRatio = 0
	}
	return min(miles, byRatio)
}

// Config collects every tunable used by the planning pipeline.
type Config struct {
	Tolerance DeviationTolerance

	// DuplicateProximityMiles is the radius within which two records sharing
	// supplementary metadata are the same place.
	DuplicateProximityMiles float64
	// ColocatedProximityMiles is the radius for proximity-only conflicts.
	ColocatedProximityMiles float64

	Sections          []domain.RouteSection
	WaypointKeepRatio float64
	OtherKeepRatio    float64

	MaxTripDays              int
	MaxAttractionsPerSegment int
	EnrichmentConcurrency    int

	LiveCallDelay   time.Duration
	LiveCallTimeout time.Duration
	SessionCacheTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		Tolerance: DeviationTolerance{
			DefaultMiles:         200,
			DestinationCityMiles: 300,
			ShortSegmentMiles:    300,
			LongSegmentMiles:     1000,
			ShortRatio:           1.15,
			StandardRatio:        1.3,
			LongRatio:            1.5,
			DestinationCityRatio: 1.8,
		},
		DuplicateProximityMiles:  8,
		ColocatedProximityMiles:  5,
		Sections:                 domain.DefaultRouteSections(),
		WaypointKeepRatio:        0.7,
		OtherKeepRatio:           0.25,
		MaxTripDays:              14,
		MaxAttractionsPerSegment: 4,
		EnrichmentConcurrency:    4,
		LiveCallDelay:            250 * time.Millisecond,
		LiveCallTimeout:          5 * time.Second,
		SessionCacheTTL:          30 * time.Minute,
	}
}

// withDefaults fills zero values from DefaultConfig so partially populated
// configs stay usable.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Tolerance == (DeviationTolerance{}) {
		c.Tolerance = d.Tolerance
	}
	if c.DuplicateProximityMiles <= 0 {
		c.DuplicateProximityMiles = d.DuplicateProximityMiles
	}
	if c.ColocatedProximityMiles <= 0 {
		c.ColocatedProximityMiles = d.ColocatedProximityMiles
	}
	if len(c.Sections) == 0 {
		c.Sections = d.Sections
	}
	if c.WaypointKeepRatio <= 0 {
		c.WaypointKeepRatio = d.WaypointKeepRatio
	}
	if c.OtherKeepRatio <= 0 {
		c.OtherKeepRatio = d.OtherKeepRatio
	}
	if c.MaxTripDays <= 0 {
		c.MaxTripDays = d.MaxTripDays
	}
	if c.MaxAttractionsPerSegment <= 0 {
		c.MaxAttractionsPerSegment = d.MaxAttractionsPerSegment
	}
	if c.EnrichmentConcurrency <= 0 {
		c.EnrichmentConcurrency = d.EnrichmentConcurrency
	}
	if c.LiveCallDelay < 0 {
		c.LiveCallDelay = d.LiveCallDelay
	}
	if c.LiveCallTimeout <= 0 {
		c.LiveCallTimeout = d.LiveCallTimeout
	}
	if c.SessionCacheTTL <= 0 {
		c.SessionCacheTTL = d.SessionCacheTTL
	}
	return c
}
