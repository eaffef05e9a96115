package services

import (
	"fmt"
	"log/slog"
	"strings"

	"route66-trip-service/internal/domain"
	"route66-trip-service/internal/geo"
)

// Gap detection uses a flat average speed, independent of the tiered model
// used for plan segments.
const (
	GapAverageSpeedMph = 50.0

	ExtremeGapHours  = 10.0
	HighGapHours     = 8.0
	ModerateGapHours = 6.0

	MaxExtremeGaps = 1
	MaxHighGaps    = 2

	ExcellentBalanceRatio = 1.3
	GoodBalanceRatio      = 1.6
	GoodBalanceMaxHours   = 9.0
)

type GapValidator struct {
	geo    *geo.Calculator
	logger *slog.Logger
}

func NewGapValidator(calc *geo.Calculator, logger *slog.Logger) *GapValidator {
	if logger == nil {
		logger = discardLogger()
	}
	if calc == nil {
		calc = geo.NewCalculator(logger)
	}
	return &GapValidator{geo: calc, logger: logger}
}

// GapDriveHours is the coarse early-warning estimate for a leg.
func GapDriveHours(miles float64) float64 {
	if miles <= 0 {
		return 0
	}
	return miles / GapAverageSpeedMph
}

// ClassifyGap returns the severity for a drive time, or false when the leg
// is not long enough to report.
func ClassifyGap(hours float64) (domain.GapSeverity, bool) {
	switch {
	case hours >= ExtremeGapHours:
		return domain.GapSeverityExtreme, true
	case hours >= HighGapHours:
		return domain.GapSeverityHigh, true
	case hours >= ModerateGapHours:
		return domain.GapSeverityModerate, true
	}
	return "", false
}

// Validate inspects adjacent pairs of the ordered overnight stops. It never
// mutates its input.
func (v *GapValidator) Validate(stops []domain.Stop) domain.ValidationReport {
	report := domain.ValidationReport{
		Gaps:              []domain.Gap{},
		SegmentDriveHours: []float64{},
		LongestDayIndex:   -1,
		IsRecommended:     true,
	}
	if len(stops) < 2 {
		report.Summary = "Not enough stops to validate."
		return report
	}

	total := 0.0
	for i := 0; i+1 < len(stops); i++ {
		a, b := stops[i], stops[i+1]
		miles := v.geo.Between(a, b)
		hours := GapDriveHours(miles)

		report.SegmentDriveHours = append(report.SegmentDriveHours, hours)
		total += hours
		if report.LongestDayIndex < 0 || hours > report.LongestDriveHours {
			report.LongestDayIndex = i
			report.LongestDriveHours = hours
		}

		severity, ok := ClassifyGap(hours)
		if !ok {
			continue
		}
		switch severity {
		case domain.GapSeverityExtreme:
			report.ExtremeCount++
		case domain.GapSeverityHigh:
			report.HighCount++
		default:
			report.ModerateCount++
		}
		report.Gaps = append(report.Gaps, domain.Gap{
			StartName:      a.Label(),
			EndName:        b.Label(),
			DistanceMiles:  miles,
			DriveTimeHours: hours,
			Severity:       severity,
			Recommendation: recommendation(severity, a, b, hours),
		})
	}

	report.AverageDriveHours = total / float64(len(report.SegmentDriveHours))
	report.Balance = v.balance(report)
	report.IsRecommended = report.ExtremeCount <= MaxExtremeGaps && report.HighCount <= MaxHighGaps
	report.Summary = summarize(report)

	if !report.IsRecommended {
		v.logger.Info("route flagged impractical",
			slog.Int("extreme", report.ExtremeCount),
			slog.Int("high", report.HighCount))
	}
	return report
}

// ValidatePlan validates the overnight stops of a finished plan.
func (v *GapValidator) ValidatePlan(plan *domain.TripPlan) domain.ValidationReport {
	return v.Validate(plan.OvernightStops())
}

func (v *GapValidator) balance(r domain.ValidationReport) domain.BalanceGrade {
	if r.AverageDriveHours <= 0 {
		return domain.BalanceExcellent
	}
	ratio := r.LongestDriveHours / r.AverageDriveHours
	finalDay := r.LongestDayIndex == len(r.SegmentDriveHours)-1

	switch {
	case ratio <= ExcellentBalanceRatio && !finalDay:
		return domain.BalanceExcellent
	case ratio <= GoodBalanceRatio && r.LongestDriveHours <= GoodBalanceMaxHours:
		return domain.BalanceGood
	}
	return domain.BalancePoor
}

func recommendation(severity domain.GapSeverity, a, b domain.Stop, hours float64) string {
	switch severity {
	case domain.GapSeverityExtreme:
		return fmt.Sprintf("%.1f hours from %s to %s is too long for one day. Add an overnight stop between them.",
			hours, a.Label(), b.Label())
	case domain.GapSeverityHigh:
		return fmt.Sprintf("%.1f hours from %s to %s is a long day. Consider an extra overnight stop or an early start.",
			hours, a.Label(), b.Label())
	}
	return fmt.Sprintf("%.1f hours from %s to %s leaves little time for sightseeing.",
		hours, a.Label(), b.Label())
}

func summarize(r domain.ValidationReport) string {
	if len(r.Gaps) == 0 {
		return fmt.Sprintf("All %d driving days are comfortable (average %.1f hours).",
			len(r.SegmentDriveHours), r.AverageDriveHours)
	}

	var parts []string
	if r.ExtremeCount > 0 {
		parts = append(parts, fmt.Sprintf("%d extreme", r.ExtremeCount))
	}
	if r.HighCount > 0 {
		parts = append(parts, fmt.Sprintf("%d high", r.HighCount))
	}
	if r.ModerateCount > 0 {
		parts = append(parts, fmt.Sprintf("%d moderate", r.ModerateCount))
	}

	verdict := "The route is drivable"
	if !r.IsRecommended {
		verdict = "The route is not recommended as planned"
	}
	return fmt.Sprintf("%s: %s driving gap(s); longest day %.1f hours, balance %s.",
		verdict, strings.Join(parts, ", "), r.LongestDriveHours, r.Balance)
}
