package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hafs-center/markaz-api/internal/models"
	"github.com/hafs-center/markaz-api/pkg/config"
	appErrors "github.com/hafs-center/markaz-api/pkg/errors"
)

type fakeAttendanceReader struct {
	byStudent map[string][]models.AttendanceEvent
	all       []models.AttendanceEvent
	counts    []models.StatusCount
}

func (f *fakeAttendanceReader) ListByStudent(_ context.Context, studentID string, _, _ time.Time) ([]models.AttendanceEvent, error) {
	return f.byStudent[studentID], nil
}

func (f *fakeAttendanceReader) ListSince(context.Context, time.Time) ([]models.AttendanceEvent, error) {
	return f.all, nil
}

func (f *fakeAttendanceReader) StatusCountsSince(context.Context, time.Time) ([]models.StatusCount, error) {
	return f.counts, nil
}

type fakeRecitationReader struct {
	byStudent map[string][]models.RecitationReport
	lifetime  map[string]int
	total     int
}

func (f *fakeRecitationReader) ListByStudent(_ context.Context, studentID string, _, _ time.Time) ([]models.RecitationReport, error) {
	return f.byStudent[studentID], nil
}

func (f *fakeRecitationReader) CountByStudent(_ context.Context, studentID string) (int, error) {
	return f.lifetime[studentID], nil
}

func (f *fakeRecitationReader) CountAll(context.Context) (int, error) {
	return f.total, nil
}

type fakeStudentFinder struct {
	students  map[string]*models.Student
	active    int
	activeIDs []string
}

func (f *fakeStudentFinder) FindByID(_ context.Context, id string) (*models.Student, error) {
	if s, ok := f.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStudentFinder) CountActive(context.Context) (int, error) { return f.active, nil }

func (f *fakeStudentFinder) ActiveIDs(context.Context) ([]string, error) { return f.activeIDs, nil }

type fakeCircleCounter struct{ active int }

func (f *fakeCircleCounter) CountActive(context.Context) (int, error) { return f.active, nil }

func day(date string) time.Time {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return d
}

func newStatsService(att *fakeAttendanceReader, rec *fakeRecitationReader, students *fakeStudentFinder, circles *fakeCircleCounter) *StatsService {
	cache := NewCacheService(&stubCacheRepo{}, nil, time.Minute, zap.NewNop())
	svc := NewStatsService(att, rec, students, circles, cache, config.StatsConfig{
		ExcludedWeekday: time.Friday,
		TrailingWindow:  30,
		CacheTTL:        time.Minute,
	}, time.Minute, zap.NewNop())
	svc.now = func() time.Time { return day("2025-03-20") }
	return svc
}

func TestStudentStats(t *testing.T) {
	att := &fakeAttendanceReader{byStudent: map[string][]models.AttendanceEvent{
		"s1": {
			{StudentID: "s1", Date: day("2025-03-10"), Status: models.AttendancePresent},
			{StudentID: "s1", Date: day("2025-03-11"), Status: models.AttendanceUnexcused},
			{StudentID: "s1", Date: day("2025-03-14"), Status: models.AttendancePresent}, // Friday
		},
	}}
	rec := &fakeRecitationReader{
		byStudent: map[string][]models.RecitationReport{
			"s1": {
				{StudentID: "s1", FromVerse: 1, ToVerse: 5},
				{StudentID: "s1", FromVerse: 10, ToVerse: 12},
			},
		},
		lifetime: map[string]int{"s1": 40},
	}
	students := &fakeStudentFinder{students: map[string]*models.Student{"s1": {ID: "s1"}}}

	svc := newStatsService(att, rec, students, &fakeCircleCounter{})
	got, err := svc.StudentStats(context.Background(), "s1")
	require.NoError(t, err)

	assert.Equal(t, 2, got.MonthlyReports)
	assert.Equal(t, 8, got.MonthlyVerses)
	assert.Equal(t, 40, got.LifetimeReports)
	assert.Equal(t, 2, got.Attendance.TotalValidDays)
	assert.Equal(t, 50.0, got.Attendance.RatePercent)
}

func TestStudentStatsUnknownStudent(t *testing.T) {
	svc := newStatsService(&fakeAttendanceReader{}, &fakeRecitationReader{}, &fakeStudentFinder{}, &fakeCircleCounter{})

	_, err := svc.StudentStats(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentStatsServedFromCache(t *testing.T) {
	att := &fakeAttendanceReader{byStudent: map[string][]models.AttendanceEvent{}}
	rec := &fakeRecitationReader{lifetime: map[string]int{"s1": 1}}
	students := &fakeStudentFinder{students: map[string]*models.Student{"s1": {ID: "s1"}}}
	svc := newStatsService(att, rec, students, &fakeCircleCounter{})

	first, err := svc.StudentStats(context.Background(), "s1")
	require.NoError(t, err)

	// Underlying data changes; the cached figure is returned until TTL.
	rec.lifetime["s1"] = 99
	second, err := svc.StudentStats(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, first.LifetimeReports, second.LifetimeReports)
}

func TestCenterRateSkipsStudentsWithoutValidDays(t *testing.T) {
	att := &fakeAttendanceReader{all: []models.AttendanceEvent{
		// s1: 100% over one valid day.
		{StudentID: "s1", Date: day("2025-03-10"), Status: models.AttendancePresent},
		// s2: 0% over one valid day.
		{StudentID: "s2", Date: day("2025-03-10"), Status: models.AttendanceUnexcused},
		// s3: only a Friday row, no valid days at all.
		{StudentID: "s3", Date: day("2025-03-14"), Status: models.AttendancePresent},
	}}
	students := &fakeStudentFinder{activeIDs: []string{"s1", "s2", "s3"}}
	svc := newStatsService(att, &fakeRecitationReader{}, students, &fakeCircleCounter{})

	center, err := svc.CenterRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, center.StudentsCounted)
	assert.Equal(t, 50.0, center.AttendanceRatePercent)
}

func TestCenterRateIgnoresInactiveStudents(t *testing.T) {
	att := &fakeAttendanceReader{all: []models.AttendanceEvent{
		{StudentID: "s1", Date: day("2025-03-10"), Status: models.AttendancePresent},
		// s9 was deactivated; its window events would drag the rate to 50.
		{StudentID: "s9", Date: day("2025-03-10"), Status: models.AttendanceUnexcused},
	}}
	students := &fakeStudentFinder{activeIDs: []string{"s1"}}
	svc := newStatsService(att, &fakeRecitationReader{}, students, &fakeCircleCounter{})

	center, err := svc.CenterRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, center.StudentsCounted)
	assert.Equal(t, 100.0, center.AttendanceRatePercent)
}

func TestDashboardComposes(t *testing.T) {
	att := &fakeAttendanceReader{
		counts: []models.StatusCount{{Status: models.AttendancePresent, Count: 12}},
	}
	rec := &fakeRecitationReader{total: 120}
	students := &fakeStudentFinder{active: 35}
	circles := &fakeCircleCounter{active: 4}

	svc := newStatsService(att, rec, students, circles)
	summary, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 35, summary.TotalStudents)
	assert.Equal(t, 4, summary.TotalCircles)
	assert.Equal(t, 120, summary.TotalReports)
	require.Len(t, summary.WeeklyStatuses, 1)
	assert.Equal(t, 12, summary.WeeklyStatuses[0].Count)
}
