package repositories

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"route66-trip-service/internal/domain"
)

// StopSeed is the JSON shape of one record in data/seeds/stops.json.
type StopSeed struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name"`
	Description           string  `json:"description"`
	Latitude              float64 `json:"latitude"`
	Longitude             float64 `json:"longitude"`
	Category              string  `json:"category"`
	State                 string  `json:"state"`
	CityName              string  `json:"city_name"`
	ImageURL              string  `json:"image_url"`
	IsMajorStop           bool    `json:"is_major_stop"`
	IsOfficialDestination bool    `json:"is_official_destination"`
	Featured              bool    `json:"featured"`
}

// LoadStopSeeds reads and validates a stop seed file. Records with invalid
// coordinates or unknown categories are rejected here so they never reach
// the planner.
func LoadStopSeeds(jsonPath string) ([]domain.Stop, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("seed stops: read %q: %w", jsonPath, err)
	}

	return ParseStopSeeds(bytes)
}

func ParseStopSeeds(data []byte) ([]domain.Stop, error) {
	var seeds []StopSeed
	if err := json.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("seed stops: parse json: %w", err)
	}

	seen := make(map[string]struct{}, len(seeds))
	stops := make([]domain.Stop, 0, len(seeds))
	for i, item := range seeds {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			return nil, fmt.Errorf("seed stops: item at index %d: id cannot be empty", i+1)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("seed stops: item at index %d: duplicate id %q", i+1, id)
		}
		seen[id] = struct{}{}

		name := strings.TrimSpace(item.Name)
		if name == "" {
			return nil, fmt.Errorf("seed stops: item %q: name cannot be empty", id)
		}

		if !domain.ValidLatLon(item.Latitude, item.Longitude) {
			return nil, fmt.Errorf("seed stops: item %q: invalid coordinates (%v, %v)", id, item.Latitude, item.Longitude)
		}

		cat, err := domain.ParseCategory(item.Category)
		if err != nil {
			return nil, fmt.Errorf("seed stops: item %q: %w", id, err)
		}

		stops = append(stops, domain.Stop{
			ID:                    id,
			Name:                  name,
			Description:           strings.TrimSpace(item.Description),
			Latitude:              item.Latitude,
			Longitude:             item.Longitude,
			Category:              cat,
			State:                 strings.TrimSpace(item.State),
			CityName:              strings.TrimSpace(item.CityName),
			ImageURL:              strings.TrimSpace(item.ImageURL),
			IsMajorStop:           item.IsMajorStop,
			IsOfficialDestination: item.IsOfficialDestination,
			Featured:              item.Featured,
		})
	}

	return stops, nil
}
