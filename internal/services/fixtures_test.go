package services

import (
	"context"

	"route66-trip-service/internal/domain"
	"route66-trip-service/internal/ports"
)

func city(id, name, state string, lat, lon float64, major bool) domain.Stop {
	return domain.Stop{
		ID:          id,
		Name:        name,
		State:       state,
		CityName:    name,
		Latitude:    lat,
		Longitude:   lon,
		Category:    domain.CategoryDestinationCity,
		IsMajorStop: major,
	}
}

func poi(id, name, state string, cat domain.Category, lat, lon float64) domain.Stop {
	return domain.Stop{
		ID:        id,
		Name:      name,
		State:     state,
		Latitude:  lat,
		Longitude: lon,
		Category:  cat,
	}
}

var (
	chicago       = city("chicago", "Chicago", "IL", 41.8781, -87.6298, true)
	joliet        = city("joliet", "Joliet", "IL", 41.5250, -88.0817, false)
	springfieldIL = city("springfield-il", "Springfield", "IL", 39.7817, -89.6501, true)
	stLouis       = city("st-louis", "St. Louis", "MO", 38.6270, -90.1994, true)
	rolla         = city("rolla", "Rolla", "MO", 37.9514, -91.7713, false)
	springfieldMO = city("springfield-mo", "Springfield", "MO", 37.2090, -93.2923, false)
	joplin        = city("joplin", "Joplin", "MO", 37.0842, -94.5133, false)
	tulsa         = city("tulsa", "Tulsa", "OK", 36.1540, -95.9928, true)
	oklahomaCity  = city("oklahoma-city", "Oklahoma City", "OK", 35.4676, -97.5164, true)
	amarillo      = city("amarillo", "Amarillo", "TX", 35.2220, -101.8313, true)
	tucumcari     = city("tucumcari", "Tucumcari", "NM", 35.1717, -103.7250, false)
	albuquerque   = city("albuquerque", "Albuquerque", "NM", 35.0844, -106.6504, true)
	gallup        = city("gallup", "Gallup", "NM", 35.5281, -108.7426, false)
	flagstaff     = city("flagstaff", "Flagstaff", "AZ", 35.1983, -111.6513, true)
	kingman       = city("kingman", "Kingman", "AZ", 35.1894, -114.0530, false)
	barstow       = city("barstow", "Barstow", "CA", 34.8958, -117.0173, false)
	santaMonica   = city("santa-monica", "Santa Monica", "CA", 34.0195, -118.4912, true)

	cozyDog       = poi("cozy-dog", "Cozy Dog Drive In", "IL", domain.CategoryDiner, 39.7725, -89.6654)
	geminiGiant   = poi("gemini-giant", "Gemini Giant", "IL", domain.CategoryAttraction, 41.3078, -88.1470)
	chainOfRocks  = poi("chain-of-rocks", "Chain of Rocks Bridge", "MO", domain.CategoryHistoricSite, 38.7603, -90.1768)
	blueWhale     = poi("blue-whale", "Blue Whale of Catoosa", "OK", domain.CategoryAttraction, 36.1959, -95.7336)
	cadillacRanch = poi("cadillac-ranch", "Cadillac Ranch", "TX", domain.CategoryAttraction, 35.1872, -101.9871)
	blueSwallow   = poi("blue-swallow", "Blue Swallow Motel", "NM", domain.CategoryMotel, 35.1714, -103.7208)
)

func route66Cities() []domain.Stop {
	return []domain.Stop{
		chicago, joliet, springfieldIL, stLouis, rolla, springfieldMO, joplin,
		tulsa, oklahomaCity, amarillo, tucumcari, albuquerque, gallup,
		flagstaff, kingman, barstow, santaMonica,
	}
}

func route66Pool() []domain.Stop {
	return append(route66Cities(),
		cozyDog, geminiGiant, chainOfRocks, blueWhale, cadillacRanch, blueSwallow)
}

func ids(stops []domain.Stop) []string {
	out := make([]string, 0, len(stops))
	for _, s := range stops {
		out = append(out, s.ID)
	}
	return out
}

type memoryRepo struct {
	stops   []domain.Stop
	listErr error
}

func (m *memoryRepo) ListStops(context.Context) ([]domain.Stop, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.stops, nil
}

func (m *memoryRepo) ListStopsByCategory(_ context.Context, c domain.Category) ([]domain.Stop, error) {
	var out []domain.Stop
	for _, s := range m.stops {
		if s.Category == c {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memoryRepo) GetStop(_ context.Context, id string) (domain.Stop, error) {
	for _, s := range m.stops {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.Stop{}, ports.ErrNotFound
}
