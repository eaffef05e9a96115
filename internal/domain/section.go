package domain

// RouteSection is a named window of route progress, in percent.
// A set of sections partitions [0,100] contiguously; the last section also
// owns the 100% endpoint.
type RouteSection struct {
	Name         string
	StartPercent float64
	EndPercent   float64
}

// DefaultRouteSections splits the route into three equal thirds.
func DefaultRouteSections() []RouteSection {
	return []RouteSection{
		{Name: "early", StartPercent: 0, EndPercent: 100.0 / 3},
		{Name: "middle", StartPercent: 100.0 / 3, EndPercent: 200.0 / 3},
		{Name: "late", StartPercent: 200.0 / 3, EndPercent: 100},
	}
}

// SectionIndex returns the index of the section containing progress, or -1
// when sections is empty. Values outside [0,100] are clamped first.
func SectionIndex(sections []RouteSection, progress float64) int {
	if len(sections) == 0 {
		return -1
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	for i, s := range sections {
		if progress >= s.StartPercent && progress < s.EndPercent {
			return i
		}
	}
	return len(sections) - 1
}
