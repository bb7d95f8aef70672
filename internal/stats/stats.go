// Package stats computes attendance and memorization figures from event
// slices. Everything here is pure; the service layer owns persistence and
// caching.
package stats

import (
	"math"
	"time"

	"github.com/hafs-center/markaz-api/internal/models"
)

// Compute aggregates attendance events into counters and a presence rate.
// Events falling on the excluded rest weekday do not count as valid days,
// whatever their status. The rate is present over valid days as a percent,
// rounded to two decimals; zero valid days yields a zero rate.
func Compute(events []models.AttendanceEvent, excluded time.Weekday) models.AttendanceStats {
	var s models.AttendanceStats
	for _, e := range events {
		if e.Date.Weekday() == excluded {
			continue
		}
		s.TotalValidDays++
		switch e.Status {
		case models.AttendancePresent:
			s.Present++
		case models.AttendanceExcused:
			s.Excused++
		case models.AttendanceUnexcused:
			s.Unexcused++
		case models.AttendanceFled:
			s.Fled++
		case models.AttendanceNotHeard:
			s.NotHeard++
		case models.AttendanceLate:
			s.Late++
		}
	}
	if s.TotalValidDays > 0 {
		s.RatePercent = Round2(float64(s.Present) / float64(s.TotalValidDays) * 100)
	}
	return s
}

// TotalVerses sums the inclusive verse spans of the given reports.
func TotalVerses(reports []models.RecitationReport) int {
	total := 0
	for _, r := range reports {
		total += r.VerseCount()
	}
	return total
}

// MeanRate averages per-student rates into a center-wide figure. Students
// without a single valid day must be filtered out by the caller before this
// runs; an empty slice yields zero.
func MeanRate(rates []float64) float64 {
	if len(rates) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range rates {
		sum += r
	}
	return Round2(sum / float64(len(rates)))
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
