package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route66-trip-service/internal/adapters/distance"
	"route66-trip-service/internal/domain"
	"route66-trip-service/internal/geo"
	"route66-trip-service/internal/ports"
)

func estimatorConfig() Config {
	cfg := DefaultConfig()
	cfg.LiveCallDelay = 0
	cfg.LiveCallTimeout = 50 * time.Millisecond
	return cfg
}

type blockingProvider struct{}

func (blockingProvider) GetDistance(ctx context.Context, _, _ string) (ports.DistanceResult, error) {
	<-ctx.Done()
	return ports.DistanceResult{}, ctx.Err()
}

func TestSegmentEstimatorGeometryOnly(t *testing.T) {
	e := NewSegmentEstimator(geo.NewCalculator(nil), nil, estimatorConfig(), nil)

	got := e.EstimateChain(context.Background(), []domain.Stop{chicago, stLouis, tulsa})

	require.Len(t, got, 2)
	assert.Equal(t, domain.DistanceSourceGeometry, got[0].Source)
	assert.InDelta(t, 262.3, got[0].DistanceMiles, 0.5)
	// 262 mi at 50 mph with the 1.2 buffer
	assert.InDelta(t, 6.3, got[0].DriveTimeHours, 0.05)
	assert.Empty(t, e.EstimateChain(context.Background(), []domain.Stop{chicago}))
}

func TestSegmentEstimatorUsesLiveResult(t *testing.T) {
	provider := distance.NewMockDistanceProvider([]distance.MockPair{
		{From: "Chicago, IL", To: "St. Louis, MO", Miles: 297, Hours: 4.5},
		{From: "St. Louis, MO", To: "Tulsa, OK", Miles: 396, Hours: 20},
	})
	e := NewSegmentEstimator(nil, provider, estimatorConfig(), nil)

	got := e.EstimateChain(context.Background(), []domain.Stop{chicago, stLouis, tulsa})

	require.Len(t, got, 2)
	assert.Equal(t, domain.DistanceSourceLive, got[0].Source)
	assert.InDelta(t, 297, got[0].DistanceMiles, 1e-9)
	assert.InDelta(t, 5.4, got[0].DriveTimeHours, 1e-9)

	// Live durations obey the same absolute cap.
	assert.Equal(t, domain.DistanceSourceLive, got[1].Source)
	assert.Equal(t, geo.MaxDriveTimeHours, got[1].DriveTimeHours)
}

func TestSegmentEstimatorFallsBackPerPair(t *testing.T) {
	provider := distance.NewMockDistanceProvider([]distance.MockPair{
		{From: "St. Louis, MO", To: "Tulsa, OK", Miles: 396, Hours: 6},
		{From: "Tulsa, OK", To: "Amarillo, TX", Miles: 0, Hours: 0},
	})
	e := NewSegmentEstimator(nil, provider, estimatorConfig(), nil)

	got := e.EstimateChain(context.Background(), []domain.Stop{chicago, stLouis, tulsa, amarillo})

	require.Len(t, got, 3)
	assert.Equal(t, domain.DistanceSourceGeometry, got[0].Source, "missing pair")
	assert.Equal(t, domain.DistanceSourceLive, got[1].Source)
	assert.Equal(t, domain.DistanceSourceGeometry, got[2].Source, "unusable result")
	assert.Equal(t, 3, provider.Calls())
}

func TestSegmentEstimatorCachesPerSession(t *testing.T) {
	provider := distance.NewMockDistanceProvider([]distance.MockPair{
		{From: "Chicago, IL", To: "St. Louis, MO", Miles: 297, Hours: 4.5},
	})
	e := NewSegmentEstimator(nil, provider, estimatorConfig(), nil)

	first := e.Estimate(context.Background(), chicago, stLouis)
	second := e.Estimate(context.Background(), chicago, stLouis)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.Calls())
}

func TestSegmentEstimatorTimeout(t *testing.T) {
	e := NewSegmentEstimator(nil, blockingProvider{}, estimatorConfig(), nil)

	start := time.Now()
	got := e.Estimate(context.Background(), chicago, stLouis)

	assert.Equal(t, domain.DistanceSourceGeometry, got.Source)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSegmentEstimatorStopsCallingAfterCancel(t *testing.T) {
	provider := distance.NewMockDistanceProvider([]distance.MockPair{
		{From: "Chicago, IL", To: "St. Louis, MO", Miles: 297, Hours: 4.5},
	})
	e := NewSegmentEstimator(nil, provider, estimatorConfig(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := e.EstimateChain(ctx, []domain.Stop{chicago, stLouis, tulsa})

	require.Len(t, got, 2)
	assert.Equal(t, domain.DistanceSourceGeometry, got[0].Source)
	assert.Equal(t, 0, provider.Calls())
}

func TestSegmentEstimatorSpacesCalls(t *testing.T) {
	provider := distance.NewMockDistanceProvider([]distance.MockPair{
		{From: "Chicago, IL", To: "St. Louis, MO", Miles: 297, Hours: 4.5},
		{From: "St. Louis, MO", To: "Tulsa, OK", Miles: 396, Hours: 6},
		{From: "Tulsa, OK", To: "Amarillo, TX", Miles: 360, Hours: 5.5},
	})
	cfg := estimatorConfig()
	cfg.LiveCallDelay = 40 * time.Millisecond
	e := NewSegmentEstimator(nil, provider, cfg, nil)

	start := time.Now()
	_ = e.EstimateChain(context.Background(), []domain.Stop{chicago, stLouis, tulsa, amarillo})

	// The first call uses the initial token; the next two wait.
	assert.GreaterOrEqual(t, time.Since(start), 70*time.Millisecond)
	assert.Equal(t, 3, provider.Calls())
}
