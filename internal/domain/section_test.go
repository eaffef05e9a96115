package domain

import "testing"

func TestSectionIndex(t *testing.T) {
	sections := DefaultRouteSections()

	tests := []struct {
		progress float64
		want     int
	}{
		{progress: -5, want: 0},
		{progress: 0, want: 0},
		{progress: 33.2, want: 0},
		{progress: 33.4, want: 1},
		{progress: 66.6, want: 1},
		{progress: 66.7, want: 2},
		{progress: 100, want: 2},
		{progress: 140, want: 2},
	}

	for _, tt := range tests {
		if got := SectionIndex(sections, tt.progress); got != tt.want {
			t.Errorf("SectionIndex(%v) = %d, want %d", tt.progress, got, tt.want)
		}
	}

	if got := SectionIndex(nil, 50); got != -1 {
		t.Errorf("SectionIndex(nil) = %d, want -1", got)
	}
}

func TestStopLabel(t *testing.T) {
	s := Stop{Name: "Springfield", State: "IL"}
	if got := s.Label(); got != "Springfield, IL" {
		t.Fatalf("Label() = %q", got)
	}

	s = Stop{Name: "Tulsa, OK", State: "OK"}
	if got := s.Label(); got != "Tulsa, OK" {
		t.Fatalf("Label() = %q, want state suffix not repeated", got)
	}
}

func TestTripPlanOvernightStops(t *testing.T) {
	chi := Stop{ID: "chi", Name: "Chicago"}
	spi := Stop{ID: "spi", Name: "Springfield"}
	stl := Stop{ID: "stl", Name: "St. Louis"}

	plan := TripPlan{
		StartCity: chi,
		EndCity:   stl,
		Segments: []DailySegment{
			{Day: 1, Start: chi, End: spi},
			{Day: 2, Start: spi, End: stl},
		},
	}

	all := plan.OvernightStops()
	if len(all) != 3 || all[0].ID != "chi" || all[1].ID != "spi" || all[2].ID != "stl" {
		t.Fatalf("unexpected overnight stops: %+v", all)
	}

	mid := plan.IntermediateStops()
	if len(mid) != 1 || mid[0].ID != "spi" {
		t.Fatalf("unexpected intermediate stops: %+v", mid)
	}
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" Destination_City ")
	if err != nil || c != CategoryDestinationCity {
		t.Fatalf("ParseCategory() = %q, %v", c, err)
	}
	if _, err := ParseCategory("spaceport"); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestValidLatLon(t *testing.T) {
	if !ValidLatLon(41.88, -87.63) {
		t.Error("Chicago should be valid")
	}
	if ValidLatLon(91, 0) || ValidLatLon(0, 181) {
		t.Error("out of range coordinates should be invalid")
	}
}
