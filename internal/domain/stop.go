package domain

import (
	"fmt"
	"strings"
)

// Category classifies a Stop. Only CategoryDestinationCity may be used as an
// overnight destination.
type Category string

const (
	CategoryDestinationCity Category = "destination_city"
	CategoryRoute66Waypoint Category = "route66_waypoint"
	CategoryAttraction      Category = "attraction"
	CategoryHiddenGem       Category = "hidden_gem"
	CategoryDiner           Category = "diner"
	CategoryMotel           Category = "motel"
	CategoryMuseum          Category = "museum"
	CategoryDriveIn         Category = "drive_in"
	CategoryHistoricSite    Category = "historic_site"
)

var knownCategories = map[Category]struct{}{
	CategoryDestinationCity: {},
	CategoryRoute66Waypoint: {},
	CategoryAttraction:      {},
	CategoryHiddenGem:       {},
	CategoryDiner:           {},
	CategoryMotel:           {},
	CategoryMuseum:          {},
	CategoryDriveIn:         {},
	CategoryHistoricSite:    {},
}

// ParseCategory normalizes s and checks it against the closed category set.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := knownCategories[c]; !ok {
		return "", fmt.Errorf("unknown stop category %q", s)
	}
	return c, nil
}

// Represents a point of interest or city candidate on the route.
// Stops are supplied by an external data source and treated as immutable inputs;
// planning stages return new slices instead of modifying them.
type Stop struct {
	ID          string
	Name        string
	Description string

	Latitude  float64
	Longitude float64

	Category Category
	State    string
	CityName string

	// ImageURL is supplementary metadata; two nearby records sharing it are the same place.
	ImageURL string

	IsMajorStop           bool
	IsOfficialDestination bool
	Featured              bool
}

func (s Stop) Coordinates() Coordinates {
	return Coordinates{Lon: s.Longitude, Lat: s.Latitude}
}

func (s Stop) HasValidCoordinates() bool {
	return ValidLatLon(s.Latitude, s.Longitude)
}

func (s Stop) IsDestinationCity() bool {
	return s.Category == CategoryDestinationCity
}

// IsMajorWaypoint reports whether s is a route66_waypoint flagged as a major stop.
func (s Stop) IsMajorWaypoint() bool {
	return s.Category == CategoryRoute66Waypoint && s.IsMajorStop
}

// Label is the human-readable "Name, State" form used when talking to
// external distance providers.
func (s Stop) Label() string {
	name := strings.TrimSpace(s.Name)
	state := strings.TrimSpace(s.State)
	if state == "" || strings.HasSuffix(strings.ToLower(name), ", "+strings.ToLower(state)) {
		return name
	}
	return name + ", " + state
}
