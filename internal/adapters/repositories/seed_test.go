package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route66-trip-service/internal/domain"
	"route66-trip-service/internal/ports"
)

const seedPath = "../../../data/seeds/stops.json"

func TestLoadStopSeeds_SeedFileIsValid(t *testing.T) {
	stops, err := LoadStopSeeds(seedPath)
	require.NoError(t, err)
	assert.Len(t, stops, 50)

	cities := 0
	for _, s := range stops {
		assert.True(t, s.HasValidCoordinates(), s.ID)
		if s.IsDestinationCity() {
			cities++
		}
	}
	assert.Equal(t, 29, cities)
}

func TestParseStopSeeds_NormalizesFields(t *testing.T) {
	data := []byte(`[{"id":" tulsa-ok ","name":" Tulsa ","latitude":36.154,"longitude":-95.9928,"category":"Destination_City","state":"OK","is_major_stop":true}]`)

	stops, err := ParseStopSeeds(data)
	require.NoError(t, err)
	require.Len(t, stops, 1)
	assert.Equal(t, "tulsa-ok", stops[0].ID)
	assert.Equal(t, "Tulsa", stops[0].Name)
	assert.Equal(t, domain.CategoryDestinationCity, stops[0].Category)
	assert.True(t, stops[0].IsMajorStop)
}

func TestParseStopSeeds_RejectsBadRecords(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed json", `[{"id":`},
		{"empty id", `[{"id":"","name":"X","latitude":35,"longitude":-100,"category":"diner"}]`},
		{"empty name", `[{"id":"x","name":"  ","latitude":35,"longitude":-100,"category":"diner"}]`},
		{"duplicate id", `[{"id":"x","name":"X","latitude":35,"longitude":-100,"category":"diner"},{"id":"x","name":"Y","latitude":35,"longitude":-100,"category":"diner"}]`},
		{"latitude out of range", `[{"id":"x","name":"X","latitude":95,"longitude":-100,"category":"diner"}]`},
		{"unknown category", `[{"id":"x","name":"X","latitude":35,"longitude":-100,"category":"gas_station"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStopSeeds([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestMemoryStopRepository(t *testing.T) {
	ctx := t.Context()
	repo := NewMemoryStopRepository([]domain.Stop{
		{ID: "tulsa-ok", Name: "Tulsa", Category: domain.CategoryDestinationCity},
		{ID: "blue-whale-ok", Name: "Blue Whale of Catoosa", Category: domain.CategoryAttraction},
		{ID: "amarillo-tx", Name: "Amarillo", Category: domain.CategoryDestinationCity},
	})

	all, err := repo.ListStops(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "amarillo-tx", all[0].ID)

	cities, err := repo.ListStopsByCategory(ctx, domain.CategoryDestinationCity)
	require.NoError(t, err)
	assert.Len(t, cities, 2)

	s, err := repo.GetStop(ctx, "blue-whale-ok")
	require.NoError(t, err)
	assert.Equal(t, "Blue Whale of Catoosa", s.Name)

	_, err = repo.GetStop(ctx, "nowhere")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
