package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hafs-center/markaz-api/internal/models"
)

func event(date string, status models.AttendanceStatus) models.AttendanceEvent {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return models.AttendanceEvent{StudentID: "s1", Date: d, Status: status}
}

func TestComputeCountsAndRate(t *testing.T) {
	// 2025-03-10 is a Monday; the week runs through Sunday 2025-03-16.
	events := []models.AttendanceEvent{
		event("2025-03-10", models.AttendancePresent),
		event("2025-03-11", models.AttendancePresent),
		event("2025-03-12", models.AttendanceLate),
		event("2025-03-13", models.AttendanceExcused),
		event("2025-03-15", models.AttendanceUnexcused),
		event("2025-03-16", models.AttendancePresent),
	}

	s := Compute(events, time.Friday)
	assert.Equal(t, 3, s.Present)
	assert.Equal(t, 1, s.Excused)
	assert.Equal(t, 1, s.Unexcused)
	assert.Equal(t, 1, s.Late)
	assert.Equal(t, 6, s.TotalValidDays)
	assert.Equal(t, 50.0, s.RatePercent)
}

func TestComputeExcludedWeekdayNeverCounts(t *testing.T) {
	weekday := []models.AttendanceEvent{
		event("2025-03-10", models.AttendancePresent),
		event("2025-03-11", models.AttendanceFled),
	}
	withFridays := append([]models.AttendanceEvent{
		event("2025-03-14", models.AttendancePresent), // Friday
		event("2025-03-21", models.AttendanceUnexcused),
	}, weekday...)

	assert.Equal(t, Compute(weekday, time.Friday), Compute(withFridays, time.Friday))
}

func TestComputeConfigurableRestDay(t *testing.T) {
	events := []models.AttendanceEvent{
		event("2025-03-16", models.AttendancePresent), // Sunday
		event("2025-03-17", models.AttendancePresent),
	}

	s := Compute(events, time.Sunday)
	assert.Equal(t, 1, s.TotalValidDays)
	assert.Equal(t, 100.0, s.RatePercent)
}

func TestComputeZeroValidDays(t *testing.T) {
	s := Compute(nil, time.Friday)
	assert.Equal(t, 0.0, s.RatePercent)
	assert.Equal(t, 0, s.TotalValidDays)

	onlyFriday := []models.AttendanceEvent{event("2025-03-14", models.AttendancePresent)}
	s = Compute(onlyFriday, time.Friday)
	assert.Equal(t, 0.0, s.RatePercent)
	assert.Equal(t, 0, s.TotalValidDays)
}

func TestComputeRateRounding(t *testing.T) {
	events := []models.AttendanceEvent{
		event("2025-03-10", models.AttendancePresent),
		event("2025-03-11", models.AttendancePresent),
		event("2025-03-12", models.AttendanceUnexcused),
	}

	// 2/3 of 100 rounds to 66.67.
	s := Compute(events, time.Friday)
	assert.Equal(t, 66.67, s.RatePercent)
	assert.GreaterOrEqual(t, s.RatePercent, 0.0)
	assert.LessOrEqual(t, s.RatePercent, 100.0)
}

func TestTotalVerses(t *testing.T) {
	reports := []models.RecitationReport{
		{FromVerse: 1, ToVerse: 5},
		{FromVerse: 10, ToVerse: 10},
		{FromVerse: 3, ToVerse: 7},
	}
	assert.Equal(t, 11, TotalVerses(reports))
	assert.Equal(t, 0, TotalVerses(nil))
}

func TestMeanRate(t *testing.T) {
	assert.Equal(t, 0.0, MeanRate(nil))
	assert.Equal(t, 75.0, MeanRate([]float64{50, 100}))
	assert.Equal(t, 33.33, MeanRate([]float64{0, 50, 50}))
}
