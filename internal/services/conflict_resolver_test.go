package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route66-trip-service/internal/domain"
	"route66-trip-service/internal/geo"
)

func newTestResolver() *ConflictResolver {
	return NewConflictResolver(geo.NewCalculator(nil), 8, 5, nil)
}

func TestConflictResolverDestinationCityProtection(t *testing.T) {
	r := newTestResolver()

	// Cozy Dog sits about a mile from Springfield's centre.
	for _, in := range [][]domain.Stop{
		{cozyDog, springfieldIL},
		{springfieldIL, cozyDog},
	} {
		got := r.Resolve(in)
		assert.Equal(t, []string{springfieldIL.ID}, ids(got), "input %v", ids(in))
	}
}

func TestConflictResolverCityPriority(t *testing.T) {
	r := newTestResolver()

	t.Run("major beats non-major", func(t *testing.T) {
		junction := city("joliet-junction", "Joliet Junction", "IL", 41.5300, -88.0900, true)

		got := r.Resolve([]domain.Stop{joliet, junction})
		assert.Equal(t, []string{junction.ID}, ids(got))

		got = r.Resolve([]domain.Stop{junction, joliet})
		assert.Equal(t, []string{junction.ID}, ids(got))
	})

	t.Run("anchor bonus breaks major tie", func(t *testing.T) {
		redFork := city("red-fork", "Red Fork", "OK", 36.1265, -96.0253, false)
		tulsaMinor := city("tulsa-2", "Tulsa", "OK", 36.1540, -95.9928, false)

		assert.Equal(t, []string{tulsaMinor.ID}, ids(r.Resolve([]domain.Stop{redFork, tulsaMinor})))
		assert.Equal(t, []string{tulsaMinor.ID}, ids(r.Resolve([]domain.Stop{tulsaMinor, redFork})))
	})

	t.Run("earlier wins full tie", func(t *testing.T) {
		a := city("a", "Elm Creek", "OK", 36.0, -96.0, false)
		b := city("b", "Oak Creek", "OK", 36.01, -96.0, false)

		assert.Equal(t, []string{"a"}, ids(r.Resolve([]domain.Stop{a, b})))
		assert.Equal(t, []string{"b"}, ids(r.Resolve([]domain.Stop{b, a})))
	})

	t.Run("case-insensitive name", func(t *testing.T) {
		shout := tulsa
		shout.ID = "tulsa-shout"
		shout.Name = "TULSA"
		shout.IsMajorStop = false
		shout.Latitude += 0.5

		got := r.Resolve([]domain.Stop{shout, tulsa})
		assert.Equal(t, []string{tulsa.ID}, ids(got))
	})
}

func TestConflictResolverSameNameDifferentState(t *testing.T) {
	r := newTestResolver()

	got := r.Resolve([]domain.Stop{springfieldIL, springfieldMO})
	assert.Equal(t, []string{springfieldIL.ID, springfieldMO.ID}, ids(got))
}

func TestConflictResolverMinorStops(t *testing.T) {
	r := newTestResolver()

	diner := poi("diner", "Route Diner", "NM", domain.CategoryDiner, 35.0, -106.0)
	museum := poi("museum", "Route Museum", "NM", domain.CategoryMuseum, 35.005, -106.0)
	otherDiner := poi("diner-2", "Second Diner", "NM", domain.CategoryDiner, 35.005, -106.0)

	t.Run("colocated different categories are different places", func(t *testing.T) {
		got := r.Resolve([]domain.Stop{diner, museum})
		assert.Equal(t, []string{diner.ID, museum.ID}, ids(got))
	})

	t.Run("colocated same category keeps earlier", func(t *testing.T) {
		assert.Equal(t, []string{diner.ID}, ids(r.Resolve([]domain.Stop{diner, otherDiner})))
		assert.Equal(t, []string{otherDiner.ID}, ids(r.Resolve([]domain.Stop{otherDiner, diner})))
	})

	t.Run("shared image within duplicate radius", func(t *testing.T) {
		a := poi("img-a", "Painted Desert Trading Post", "AZ", domain.CategoryHistoricSite, 35.0, -109.0)
		b := poi("img-b", "Old Trading Post", "AZ", domain.CategoryAttraction, 35.1, -109.0)
		a.ImageURL = "https://img.example/trading-post.jpg"
		b.ImageURL = a.ImageURL

		assert.Equal(t, []string{a.ID}, ids(r.Resolve([]domain.Stop{a, b})))

		b.ImageURL = "https://img.example/other.jpg"
		assert.Equal(t, []string{a.ID, b.ID}, ids(r.Resolve([]domain.Stop{a, b})))
	})
}

func TestConflictResolverReplacesInPlace(t *testing.T) {
	r := newTestResolver()

	// The city replaces the diner's slot and keeps route order.
	got := r.Resolve([]domain.Stop{geminiGiant, cozyDog, stLouis, springfieldIL})
	assert.Equal(t, []string{geminiGiant.ID, springfieldIL.ID, stLouis.ID}, ids(got))
}

func TestConflictResolverDoesNotModifyInput(t *testing.T) {
	r := newTestResolver()
	in := []domain.Stop{cozyDog, springfieldIL, stLouis}
	before := ids(in)

	_ = r.Resolve(in)
	assert.Equal(t, before, ids(in))
}

func TestConflictResolverNoCityDuplicatesWithinThreshold(t *testing.T) {
	r := newTestResolver()
	calc := geo.NewCalculator(nil)

	pool := append(route66Pool(),
		city("joliet-junction", "Joliet Junction", "IL", 41.5300, -88.0900, true),
		city("tulsa-2", "Tulsa", "OK", 36.16, -95.99, false),
		city("red-fork", "Red Fork", "OK", 36.1265, -96.0253, false),
	)

	got := r.Resolve(pool)
	seen := map[string]bool{}
	for i, a := range got {
		require.False(t, seen[a.ID], "duplicate id %s", a.ID)
		seen[a.ID] = true
		for _, b := range got[i+1:] {
			if a.IsDestinationCity() && b.IsDestinationCity() {
				assert.GreaterOrEqual(t, calc.Between(a, b), 5.0, "%s vs %s", a.ID, b.ID)
			}
		}
	}
}

func TestConflictResolverExcluding(t *testing.T) {
	r := newTestResolver()

	chicagoLoop := city("chicago-loop", "Chicago Loop", "IL", 41.8800, -87.6300, true)
	got := r.Excluding([]domain.Stop{chicagoLoop, joliet, springfieldIL}, chicago, stLouis)

	assert.Equal(t, []string{joliet.ID, springfieldIL.ID}, ids(got))
}
