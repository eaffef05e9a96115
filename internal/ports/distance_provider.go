package ports

import "context"

// Road distance and travel duration between two locations, already converted
// to the units the planner works in.
type DistanceResult struct {
	DistanceMiles float64
	DurationHours float64
}

// Contract for retrieving travel distance and duration between two labels
// such as "Tulsa, OK".
type DistanceProvider interface {
	// Return travel distance and estimated duration between two locations.
	GetDistance(ctx context.Context, origin string, destination string) (DistanceResult, error)
}
