package domain

import (
	"time"

	"github.com/google/uuid"
)

// DistanceSource records where a segment's distance/time figures came from.
type DistanceSource string

const (
	DistanceSourceGeometry DistanceSource = "geometry"
	DistanceSourceLive     DistanceSource = "live"
)

// Represents one day of travel between two consecutive overnight stops.
// Attractions are enrichment stops found along the segment; they are never
// overnight destinations.
type DailySegment struct {
	Day            int
	Start          Stop
	End            Stop
	DistanceMiles  float64
	DriveTimeHours float64
	Source         DistanceSource
	Attractions    []Stop
}

// Represents a planned multi-day trip.
// Segments are contiguous (Segments[i].End == Segments[i+1].Start) and progress
// from StartCity to EndCity. RealizedDays may be lower than RequestedDays, in
// which case LimitMessage explains why.
type TripPlan struct {
	ID                  uuid.UUID
	StartCity           Stop
	EndCity             Stop
	Segments            []DailySegment
	TotalDistanceMiles  float64
	TotalDriveTimeHours float64
	RequestedDays       int
	RealizedDays        int
	LimitMessage        string
	CreatedAt           time.Time
}

// OvernightStops returns the ordered chosen stops: the start city followed by
// every segment end.
func (p *TripPlan) OvernightStops() []Stop {
	if len(p.Segments) == 0 {
		return []Stop{p.StartCity, p.EndCity}
	}

	out := make([]Stop, 0, len(p.Segments)+1)
	out = append(out, p.Segments[0].Start)
	for _, s := range p.Segments {
		out = append(out, s.End)
	}
	return out
}

// IntermediateStops returns the overnight stops strictly between start and end.
func (p *TripPlan) IntermediateStops() []Stop {
	all := p.OvernightStops()
	if len(all) <= 2 {
		return []Stop{}
	}
	return all[1 : len(all)-1]
}
