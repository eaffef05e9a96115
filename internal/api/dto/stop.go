package dto

import "route66-trip-service/internal/domain"

type StopResponse struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name"`
	Description           string  `json:"description,omitempty"`
	Latitude              float64 `json:"latitude"`
	Longitude             float64 `json:"longitude"`
	Category              string  `json:"category"`
	State                 string  `json:"state"`
	CityName              string  `json:"city_name,omitempty"`
	ImageURL              string  `json:"image_url,omitempty"`
	IsMajorStop           bool    `json:"is_major_stop"`
	IsOfficialDestination bool    `json:"is_official_destination"`
	Featured              bool    `json:"featured"`
}

type ListStopsResponse struct {
	Stops []StopResponse `json:"stops"`
}

func FromStop(s domain.Stop) StopResponse {
	return StopResponse{
		ID:                    s.ID,
		Name:                  s.Name,
		Description:           s.Description,
		Latitude:              s.Latitude,
		Longitude:             s.Longitude,
		Category:              string(s.Category),
		State:                 s.State,
		CityName:              s.CityName,
		ImageURL:              s.ImageURL,
		IsMajorStop:           s.IsMajorStop,
		IsOfficialDestination: s.IsOfficialDestination,
		Featured:              s.Featured,
	}
}

func FromStops(stops []domain.Stop) []StopResponse {
	out := make([]StopResponse, 0, len(stops))
	for _, s := range stops {
		out = append(out, FromStop(s))
	}
	return out
}
