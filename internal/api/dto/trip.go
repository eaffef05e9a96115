package dto

import (
	"math"
	"time"

	"route66-trip-service/internal/domain"
)

type TripRequest struct {
	StartStopID   string `json:"start_stop_id"`
	EndStopID     string `json:"end_stop_id"`
	RequestedDays int    `json:"requested_days"`
}

type ValidateRequest struct {
	StopIDs []string `json:"stop_ids"`
}

type SegmentResponse struct {
	Day            int            `json:"day"`
	Start          StopResponse   `json:"start"`
	End            StopResponse   `json:"end"`
	DistanceMiles  float64        `json:"distance_miles"`
	DriveTimeHours float64        `json:"drive_time_hours"`
	Source         string         `json:"source"`
	Attractions    []StopResponse `json:"attractions"`
}

type TripResponse struct {
	ID                  string             `json:"id"`
	StartCity           StopResponse       `json:"start_city"`
	EndCity             StopResponse       `json:"end_city"`
	Segments            []SegmentResponse  `json:"segments"`
	TotalDistanceMiles  float64            `json:"total_distance_miles"`
	TotalDriveTimeHours float64            `json:"total_drive_time_hours"`
	RequestedDays       int                `json:"requested_days"`
	RealizedDays        int                `json:"realized_days"`
	LimitMessage        string             `json:"limit_message,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	Validation          ValidationResponse `json:"validation"`
}

type GapResponse struct {
	StartName      string  `json:"start_name"`
	EndName        string  `json:"end_name"`
	DistanceMiles  float64 `json:"distance_miles"`
	DriveTimeHours float64 `json:"drive_time_hours"`
	Severity       string  `json:"severity"`
	Recommendation string  `json:"recommendation"`
}

type ValidationResponse struct {
	IsRecommended     bool          `json:"is_recommended"`
	Summary           string        `json:"summary"`
	Balance           string        `json:"balance"`
	Gaps              []GapResponse `json:"gaps"`
	ExtremeCount      int           `json:"extreme_count"`
	HighCount         int           `json:"high_count"`
	ModerateCount     int           `json:"moderate_count"`
	LongestDayIndex   int           `json:"longest_day_index"`
	LongestDriveHours float64       `json:"longest_drive_hours"`
	AverageDriveHours float64       `json:"average_drive_hours"`
	SegmentDriveHours []float64     `json:"segment_drive_hours"`
}

// round1 rounds to one decimal place for display.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func FromTripPlan(p *domain.TripPlan, report domain.ValidationReport) TripResponse {
	segments := make([]SegmentResponse, 0, len(p.Segments))
	for _, s := range p.Segments {
		segments = append(segments, SegmentResponse{
			Day:            s.Day,
			Start:          FromStop(s.Start),
			End:            FromStop(s.End),
			DistanceMiles:  round1(s.DistanceMiles),
			DriveTimeHours: round1(s.DriveTimeHours),
			Source:         string(s.Source),
			Attractions:    FromStops(s.Attractions),
		})
	}

	return TripResponse{
		ID:                  p.ID.String(),
		StartCity:           FromStop(p.StartCity),
		EndCity:             FromStop(p.EndCity),
		Segments:            segments,
		TotalDistanceMiles:  round1(p.TotalDistanceMiles),
		TotalDriveTimeHours: round1(p.TotalDriveTimeHours),
		RequestedDays:       p.RequestedDays,
		RealizedDays:        p.RealizedDays,
		LimitMessage:        p.LimitMessage,
		CreatedAt:           p.CreatedAt,
		Validation:          FromValidation(report),
	}
}

func FromValidation(r domain.ValidationReport) ValidationResponse {
	gaps := make([]GapResponse, 0, len(r.Gaps))
	for _, g := range r.Gaps {
		gaps = append(gaps, GapResponse{
			StartName:      g.StartName,
			EndName:        g.EndName,
			DistanceMiles:  round1(g.DistanceMiles),
			DriveTimeHours: round1(g.DriveTimeHours),
			Severity:       string(g.Severity),
			Recommendation: g.Recommendation,
		})
	}

	hours := make([]float64, 0, len(r.SegmentDriveHours))
	for _, h := range r.SegmentDriveHours {
		hours = append(hours, round1(h))
	}

	return ValidationResponse{
		IsRecommended:     r.IsRecommended,
		Summary:           r.Summary,
		Balance:           string(r.Balance),
		Gaps:              gaps,
		ExtremeCount:      r.ExtremeCount,
		HighCount:         r.HighCount,
		ModerateCount:     r.ModerateCount,
		LongestDayIndex:   r.LongestDayIndex,
		LongestDriveHours: round1(r.LongestDriveHours),
		AverageDriveHours: round1(r.AverageDriveHours),
		SegmentDriveHours: hours,
	}
}
