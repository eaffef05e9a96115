package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route66-trip-service/internal/domain"
	"route66-trip-service/internal/geo"
)

func newTestFilter() *CandidateFilter {
	return NewCandidateFilter(geo.NewCalculator(nil), DefaultConfig().Tolerance, nil)
}

func TestCandidateFilterOvernightGateAdmitsOnlyCities(t *testing.T) {
	f := newTestFilter()

	got := f.Filter(route66Pool(), chicago, santaMonica, FilterOptions{Purpose: PurposeOvernight})

	require.NotEmpty(t, got)
	for _, s := range got {
		assert.Equal(t, domain.CategoryDestinationCity, s.Category, s.ID)
		assert.NotEqual(t, chicago.ID, s.ID)
		assert.NotEqual(t, santaMonica.ID, s.ID)
	}
}

func TestCandidateFilterEnrichmentGateExcludesCities(t *testing.T) {
	f := newTestFilter()

	got := f.Filter(route66Pool(), chicago, stLouis, FilterOptions{Purpose: PurposeEnrichment})

	assert.ElementsMatch(t, []string{cozyDog.ID, geminiGiant.ID, chainOfRocks.ID}, ids(got))
}

func TestCandidateFilterMonotonicProgress(t *testing.T) {
	calc := geo.NewCalculator(nil)
	f := NewCandidateFilter(calc, DefaultConfig().Tolerance, nil)

	pairs := [][2]domain.Stop{
		{chicago, santaMonica},
		{chicago, stLouis},
		{tulsa, albuquerque},
		{santaMonica, chicago},
	}
	for _, p := range pairs {
		start, end := p[0], p[1]
		direct := calc.Between(start, end)
		for _, c := range f.Filter(route66Pool(), start, end, FilterOptions{}) {
			assert.Less(t, calc.Between(start, c), direct, "%s->%s via %s", start.ID, end.ID, c.ID)
			assert.Less(t, calc.Between(c, end), direct, "%s->%s via %s", start.ID, end.ID, c.ID)
		}
	}
}

func TestCandidateFilterRejectsBacktracking(t *testing.T) {
	f := newTestFilter()

	// Tulsa lies past St. Louis; Chicago's neighbour Joliet is fine.
	got := f.Filter([]domain.Stop{tulsa, joliet, springfieldIL}, chicago, stLouis, FilterOptions{})

	assert.Equal(t, []string{joliet.ID, springfieldIL.ID}, ids(got))
}

func TestCandidateFilterDeviationOverride(t *testing.T) {
	f := newTestFilter()

	// Joliet detours ~0.8 mi on Chicago->St. Louis, Springfield ~2 mi.
	got := f.Filter([]domain.Stop{joliet, springfieldIL}, chicago, stLouis,
		FilterOptions{MaxDeviationMiles: 1})

	assert.Equal(t, []string{joliet.ID}, ids(got))
}

func TestCandidateFilterSkipsInvalidCoordinates(t *testing.T) {
	f := newTestFilter()

	broken := city("broken", "Nowhere", "KS", math.NaN(), -95, false)
	outOfRange := city("oor", "Offmap", "KS", 95, -95, false)

	got := f.Filter([]domain.Stop{broken, outOfRange, springfieldIL}, chicago, stLouis, FilterOptions{})
	assert.Equal(t, []string{springfieldIL.ID}, ids(got))

	assert.Empty(t, f.Filter([]domain.Stop{springfieldIL}, broken, stLouis, FilterOptions{}))
}

func TestCandidateFilterDoesNotModifyPool(t *testing.T) {
	f := newTestFilter()
	pool := route66Pool()
	before := ids(pool)

	_ = f.Filter(pool, chicago, santaMonica, FilterOptions{})

	assert.Equal(t, before, ids(pool))
}

func TestCollapseDuplicates(t *testing.T) {
	dupID := springfieldIL
	dupID.Name = "Springfield (copy)"

	dupName := springfieldIL
	dupName.ID = "springfield-il-2"
	dupName.Name = "  SPRINGFIELD "
	dupName.State = "il"

	got := CollapseDuplicates([]domain.Stop{springfieldIL, dupID, dupName, springfieldMO})

	require.Len(t, got, 2)
	assert.Equal(t, springfieldIL, got[0])
	assert.Equal(t, springfieldMO.ID, got[1].ID)
}

func TestDeviationToleranceMaxDeviation(t *testing.T) {
	tol := DefaultConfig().Tolerance

	tests := []struct {
		name     string
		category domain.Category
		direct   float64
		want     float64
	}{
		{"short leg uses tight ratio", domain.CategoryDiner, 100, 15},
		{"standard leg", domain.CategoryAttraction, 500, 150},
		{"standard leg capped", domain.CategoryAttraction, 900, 200},
		{"long leg capped", domain.CategoryMuseum, 1500, 200},
		{"city ratio", domain.CategoryDestinationCity, 250, 200},
		{"city capped", domain.CategoryDestinationCity, 1700, 300},
		{"zero leg", domain.CategoryDiner, 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, tol.MaxDeviation(tc.category, tc.direct), 1e-9)
		})
	}
}
