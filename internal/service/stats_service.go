package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hafs-center/markaz-api/internal/models"
	"github.com/hafs-center/markaz-api/internal/stats"
	"github.com/hafs-center/markaz-api/pkg/config"
	appErrors "github.com/hafs-center/markaz-api/pkg/errors"
)

type attendanceReader interface {
	ListByStudent(ctx context.Context, studentID string, from, to time.Time) ([]models.AttendanceEvent, error)
	ListSince(ctx context.Context, from time.Time) ([]models.AttendanceEvent, error)
	StatusCountsSince(ctx context.Context, from time.Time) ([]models.StatusCount, error)
}

type recitationReader interface {
	ListByStudent(ctx context.Context, studentID string, from, to time.Time) ([]models.RecitationReport, error)
	CountByStudent(ctx context.Context, studentID string) (int, error)
	CountAll(ctx context.Context) (int, error)
}

type studentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	CountActive(ctx context.Context) (int, error)
	ActiveIDs(ctx context.Context) ([]string, error)
}

type circleCounter interface {
	CountActive(ctx context.Context) (int, error)
}

// StatsService computes student and center attendance figures on top of the
// pure aggregation in the stats package, with a cache in front.
type StatsService struct {
	attendance  attendanceReader
	recitations recitationReader
	students    studentFinder
	circles     circleCounter
	cache       *CacheService
	cfg         config.StatsConfig
	dashTTL     time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewStatsService constructs a StatsService.
func NewStatsService(
	attendance attendanceReader,
	recitations recitationReader,
	students studentFinder,
	circles circleCounter,
	cache *CacheService,
	cfg config.StatsConfig,
	dashTTL time.Duration,
	logger *zap.Logger,
) *StatsService {
	if cfg.TrailingWindow <= 0 {
		cfg.TrailingWindow = 30
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{
		attendance:  attendance,
		recitations: recitations,
		students:    students,
		circles:     circles,
		cache:       cache,
		cfg:         cfg,
		dashTTL:     dashTTL,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// StudentStats returns the trailing-window dashboard figures for a student.
func (s *StatsService) StudentStats(ctx context.Context, studentID string) (*models.StudentStats, error) {
	key := fmt.Sprintf("stats:student:%s", studentID)
	var cached models.StudentStats
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	to := s.now()
	from := to.AddDate(0, 0, -s.cfg.TrailingWindow)

	events, err := s.attendance.ListByStudent(ctx, studentID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	reports, err := s.recitations.ListByStudent(ctx, studentID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reports")
	}

	lifetime, err := s.recitations.CountByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count reports")
	}

	result := &models.StudentStats{
		StudentID:       studentID,
		MonthlyReports:  len(reports),
		MonthlyVerses:   stats.TotalVerses(reports),
		LifetimeReports: lifetime,
		Attendance:      stats.Compute(events, s.cfg.ExcludedWeekday),
	}
	s.cache.Set(ctx, key, result, s.cfg.CacheTTL)
	return result, nil
}

// AttendanceRange returns a student's raw events in the range plus the
// aggregated counters over them.
func (s *StatsService) AttendanceRange(ctx context.Context, studentID string, from, to time.Time) ([]models.AttendanceEvent, models.AttendanceStats, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.AttendanceStats{}, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, models.AttendanceStats{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	events, err := s.attendance.ListByStudent(ctx, studentID, from, to)
	if err != nil {
		return nil, models.AttendanceStats{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	return events, stats.Compute(events, s.cfg.ExcludedWeekday), nil
}

// CenterRate averages the trailing-window rates of every active student
// with at least one valid day. Events of students deactivated since are
// still on record but no longer count toward the center figure.
func (s *StatsService) CenterRate(ctx context.Context) (models.CenterStats, error) {
	from := s.now().AddDate(0, 0, -s.cfg.TrailingWindow)
	events, err := s.attendance.ListSince(ctx, from)
	if err != nil {
		return models.CenterStats{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	activeIDs, err := s.students.ActiveIDs(ctx)
	if err != nil {
		return models.CenterStats{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active students")
	}
	active := make(map[string]struct{}, len(activeIDs))
	for _, id := range activeIDs {
		active[id] = struct{}{}
	}

	byStudent := make(map[string][]models.AttendanceEvent)
	for _, ev := range events {
		if _, ok := active[ev.StudentID]; !ok {
			continue
		}
		byStudent[ev.StudentID] = append(byStudent[ev.StudentID], ev)
	}

	rates := make([]float64, 0, len(byStudent))
	for _, studentEvents := range byStudent {
		agg := stats.Compute(studentEvents, s.cfg.ExcludedWeekday)
		if agg.TotalValidDays == 0 {
			continue
		}
		rates = append(rates, agg.RatePercent)
	}

	return models.CenterStats{
		AttendanceRatePercent: stats.MeanRate(rates),
		StudentsCounted:       len(rates),
	}, nil
}

// Dashboard assembles the landing page aggregate.
func (s *StatsService) Dashboard(ctx context.Context) (*models.DashboardSummary, error) {
	const key = "dashboard:summary"
	var cached models.DashboardSummary
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	totalStudents, err := s.students.CountActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	totalCircles, err := s.circles.CountActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count circles")
	}
	totalReports, err := s.recitations.CountAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count reports")
	}
	weekly, err := s.attendance.StatusCountsSince(ctx, s.now().AddDate(0, 0, -7))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly statuses")
	}
	center, err := s.CenterRate(ctx)
	if err != nil {
		return nil, err
	}

	summary := &models.DashboardSummary{
		TotalStudents:  totalStudents,
		TotalCircles:   totalCircles,
		TotalReports:   totalReports,
		WeeklyStatuses: weekly,
		CenterRate:     center,
	}
	s.cache.Set(ctx, key, summary, s.dashTTL)
	return summary, nil
}
