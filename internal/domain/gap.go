package domain

// GapSeverity grades a long drive between two adjacent overnight stops.
type GapSeverity string

const (
	GapSeverityModerate GapSeverity = "moderate"
	GapSeverityHigh     GapSeverity = "high"
	GapSeverityExtreme  GapSeverity = "extreme"
)

// BalanceGrade compares the longest day to the average day.
type BalanceGrade string

const (
	BalanceExcellent BalanceGrade = "excellent"
	BalanceGood      BalanceGrade = "good"
	BalancePoor      BalanceGrade = "poor"
)

// Gap is a read-only finding over two adjacent chosen stops. It is produced
// fresh on every validation and never stored on a TripPlan.
type Gap struct {
	StartName      string
	EndName        string
	DistanceMiles  float64
	DriveTimeHours float64
	Severity       GapSeverity
	Recommendation string
}

// ValidationReport is the driving-difficulty summary surfaced to the UI.
type ValidationReport struct {
	Gaps          []Gap
	IsRecommended bool
	Summary       string

	Balance           BalanceGrade
	ExtremeCount      int
	HighCount         int
	ModerateCount     int
	LongestDayIndex   int
	LongestDriveHours float64
	AverageDriveHours float64
	SegmentDriveHours []float64
}
