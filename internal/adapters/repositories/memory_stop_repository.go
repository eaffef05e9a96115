package repositories

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"route66-trip-service/internal/domain"
	"route66-trip-service/internal/ports"
)

// MemoryStopRepository serves a fixed stop pool, typically loaded from the
// seed file. It is safe for concurrent reads.
type MemoryStopRepository struct {
	stops []domain.Stop
	byID  map[string]int
}

func NewMemoryStopRepository(stops []domain.Stop) *MemoryStopRepository {
	sorted := slices.Clone(stops)
	slices.SortFunc(sorted, func(a, b domain.Stop) int { return strings.Compare(a.ID, b.ID) })

	byID := make(map[string]int, len(sorted))
	for i, s := range sorted {
		byID[s.ID] = i
	}
	return &MemoryStopRepository{stops: sorted, byID: byID}
}

func (m *MemoryStopRepository) ListStops(ctx context.Context) ([]domain.Stop, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(m.stops), nil
}

func (m *MemoryStopRepository) ListStopsByCategory(ctx context.Context, category domain.Category) ([]domain.Stop, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]domain.Stop, 0, len(m.stops))
	for _, s := range m.stops {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MemoryStopRepository) GetStop(ctx context.Context, id string) (domain.Stop, error) {
	if err := ctx.Err(); err != nil {
		return domain.Stop{}, err
	}
	i, ok := m.byID[id]
	if !ok {
		return domain.Stop{}, fmt.Errorf("get stop %q: %w", id, ports.ErrNotFound)
	}
	return m.stops[i], nil
}
