package ports

import (
	"context"

	"route66-trip-service/internal/domain"
)

// Persistent store for provider distance results keyed by normalized
// origin/destination labels.
type DistanceCache interface {
	GetMany(ctx context.Context, origin string, destinations []string) (map[string]DistanceResult, error)
	PutMany(ctx context.Context, origin string, results map[string]DistanceResult) error
}

// Persistent store for geocoded labels.
type GeocodeCache interface {
	GetMany(ctx context.Context, labels []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, coords map[string]domain.Coordinates) error
}
