// Package geo implements the static great-circle geometry used by the planner:
// haversine distance in miles and a tiered drive-time model.
package geo

import (
	"io"
	"log/slog"
	"math"

	"route66-trip-service/internal/domain"
)

const EarthRadiusMiles = 3959.0

const (
	// DriveTimeBuffer covers sightseeing, fuel stops and traffic.
	DriveTimeBuffer = 1.20

	MinDriveTimeHours = 2.0
	// MaxDriveTimeHours is an absolute cap: no day is ever presented as longer.
	MaxDriveTimeHours = 10.0
)

// speedTier maps an upper distance bound (exclusive) to an average speed.
type speedTier struct {
	belowMiles float64
	mph        float64
}

var speedTiers = []speedTier{
	{belowMiles: 100, mph: 40},
	{belowMiles: 200, mph: 45},
	{belowMiles: 300, mph: 50},
	{belowMiles: 400, mph: 52},
	{belowMiles: math.Inf(1), mph: 55},
}

// Calculator computes distances between stops. Invalid coordinates never
// panic or error: they are logged and yield a zero distance.
type Calculator struct {
	logger *slog.Logger
}

func NewCalculator(logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Calculator{logger: logger}
}

// Distance returns the great-circle distance in miles, or 0 when any input is
// non-finite or out of range.
func (c *Calculator) Distance(lat1, lon1, lat2, lon2 float64) float64 {
	if !domain.ValidLatLon(lat1, lon1) || !domain.ValidLatLon(lat2, lon2) {
		c.logger.Warn("invalid coordinates for distance",
			slog.Float64("lat1", lat1), slog.Float64("lon1", lon1),
			slog.Float64("lat2", lat2), slog.Float64("lon2", lon2))
		return 0
	}
	return Haversine(lat1, lon1, lat2, lon2)
}

// Between is Distance for two stops.
func (c *Calculator) Between(a, b domain.Stop) float64 {
	if !a.HasValidCoordinates() || !b.HasValidCoordinates() {
		c.logger.Warn("stop with invalid coordinates excluded from distance",
			slog.String("from_id", a.ID), slog.String("to_id", b.ID))
		return 0
	}
	return Haversine(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// Haversine returns the great-circle distance in miles between two lat/lon points.
// Callers are responsible for validating the inputs.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMiles * c
}

// DriveTimeHours estimates driving hours for a leg using the tiered speed model,
// the sightseeing buffer and the [2h, 10h] clamp. Invalid or non-positive
// distances return the 2h floor.
func DriveTimeHours(distanceMiles float64) float64 {
	if math.IsNaN(distanceMiles) || math.IsInf(distanceMiles, 0) || distanceMiles <= 0 {
		return MinDriveTimeHours
	}

	raw := distanceMiles / SpeedForDistance(distanceMiles) * DriveTimeBuffer
	return ClampDriveTime(raw)
}

// SpeedForDistance returns the average speed (mph) of the tier the distance falls in.
func SpeedForDistance(distanceMiles float64) float64 {
	for _, t := range speedTiers {
		if distanceMiles < t.belowMiles {
			return t.mph
		}
	}
	return speedTiers[len(speedTiers)-1].mph
}

// ClampDriveTime forces hours into [MinDriveTimeHours, MaxDriveTimeHours].
// Non-finite input returns the floor.
func ClampDriveTime(hours float64) float64 {
	if math.IsNaN(hours) || math.IsInf(hours, -1) {
		return MinDriveTimeHours
	}
	if hours < MinDriveTimeHours {
		return MinDriveTimeHours
	}
	if hours > MaxDriveTimeHours {
		return MaxDriveTimeHours
	}
	return hours
}

// MetersToMiles converts meters to miles.
func MetersToMiles(m float64) float64 {
	return m / 1609.344
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
