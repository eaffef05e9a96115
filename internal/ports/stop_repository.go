package ports

import (
	"context"
	"errors"

	"route66-trip-service/internal/domain"
)

// ErrNotFound is returned by repositories when a requested record is absent.
var ErrNotFound = errors.New("not found")

// Port: a boundary for retrieving the Stop pool from a geographic data source.
// Implementations return snapshots; callers never mutate them in place.
type StopRepository interface {
	// Retrieve every stop in the pool.
	ListStops(ctx context.Context) ([]domain.Stop, error)
	// Retrieve stops of one category.
	ListStopsByCategory(ctx context.Context, category domain.Category) ([]domain.Stop, error)
	// Retrieve a single stop; returns ErrNotFound when the id is unknown.
	GetStop(ctx context.Context, id string) (domain.Stop, error)
}
