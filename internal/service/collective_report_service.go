package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hafs-center/markaz-api/internal/models"
	"github.com/hafs-center/markaz-api/internal/parser"
	appErrors "github.com/hafs-center/markaz-api/pkg/errors"
)

type rosterRepository interface {
	Roster(ctx context.Context, circleID string) ([]models.RosterEntry, error)
}

type circleFinder interface {
	FindByID(ctx context.Context, id string) (*models.Circle, error)
}

type attendanceWriter interface {
	BulkInsert(ctx context.Context, events []models.AttendanceEvent) ([]models.AttendanceEvent, error)
}

type recitationWriter interface {
	BulkInsert(ctx context.Context, reports []models.RecitationReport) error
}

type achievementEvaluator interface {
	EvaluateStudent(ctx context.Context, studentID string) ([]models.AchievementID, error)
}

// ImportRequest carries one collective report message for ingestion.
type ImportRequest struct {
	CircleID  string `json:"circle_id" validate:"required"`
	TeacherID string `json:"teacher_id" validate:"required"`
	Date      string `json:"date" validate:"required"`
	Text      string `json:"text" validate:"required"`
}

// ImportSummary reports what one collective message produced.
type ImportSummary struct {
	ImportedReports  int                  `json:"imported_reports"`
	AttendanceEvents int                  `json:"attendance_events"`
	DuplicateEvents  int                  `json:"duplicate_events"`
	SkippedLines     []parser.SkippedLine `json:"skipped_lines"`
	NewAchievements  int                  `json:"new_achievements"`
}

// CollectiveReportService ingests teacher-written collective messages:
// parse against the circle roster, persist the records, refresh caches
// and re-evaluate achievements for the touched students.
type CollectiveReportService struct {
	students     rosterRepository
	circles      circleFinder
	attendance   attendanceWriter
	recitations  recitationWriter
	achievements achievementEvaluator
	cache        *CacheService
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	keywords     parser.KeywordTable
}

// NewCollectiveReportService wires the importer.
func NewCollectiveReportService(
	students rosterRepository,
	circles circleFinder,
	attendance attendanceWriter,
	recitations recitationWriter,
	achievements achievementEvaluator,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *CollectiveReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CollectiveReportService{
		students:     students,
		circles:      circles,
		attendance:   attendance,
		recitations:  recitations,
		achievements: achievements,
		cache:        cache,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		keywords:     parser.DefaultKeywords(),
	}
}

// Import processes one collective report message end to end.
func (s *CollectiveReportService) Import(ctx context.Context, req ImportRequest) (*ImportSummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid import payload")
	}

	start := time.Now()

	if _, err := s.circles.FindByID(ctx, req.CircleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "circle not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load circle")
	}

	roster, err := s.students.Roster(ctx, req.CircleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	result, err := parser.New(roster, s.keywords).Parse(req.Text, req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report date")
	}

	for i := range result.Reports {
		result.Reports[i].TeacherID = req.TeacherID
		result.Reports[i].CircleID = req.CircleID
	}

	if err := s.recitations.BulkInsert(ctx, result.Reports); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store recitation reports")
	}

	duplicates, err := s.attendance.BulkInsert(ctx, result.Events)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attendance events")
	}

	s.cache.Invalidate(ctx, "stats:*")
	s.cache.Invalidate(ctx, "dashboard:*")

	newAchievements := s.evaluateTouched(ctx, result)

	skippedByReason := make(map[string]int, 3)
	for _, sk := range result.Skipped {
		skippedByReason[string(sk.Reason)]++
	}
	s.metrics.ObserveImport(time.Since(start), len(result.Reports), len(result.Events), skippedByReason)

	s.logger.Info("collective report imported",
		zap.String("circle_id", req.CircleID),
		zap.String("date", req.Date),
		zap.Int("reports", len(result.Reports)),
		zap.Int("events", len(result.Events)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("duplicates", len(duplicates)))

	return &ImportSummary{
		ImportedReports:  len(result.Reports),
		AttendanceEvents: len(result.Events),
		DuplicateEvents:  len(duplicates),
		SkippedLines:     result.Skipped,
		NewAchievements:  newAchievements,
	}, nil
}

// evaluateTouched re-runs the badge rules for every student the import
// touched. Failures are logged, never fatal; badges catch up on the next
// import.
func (s *CollectiveReportService) evaluateTouched(ctx context.Context, result *parser.Result) int {
	if s.achievements == nil {
		return 0
	}
	touched := make(map[string]bool)
	for _, rep := range result.Reports {
		touched[rep.StudentID] = true
	}
	for _, ev := range result.Events {
		touched[ev.StudentID] = true
	}

	total := 0
	for studentID := range touched {
		earned, err := s.achievements.EvaluateStudent(ctx, studentID)
		if err != nil {
			s.logger.Warn("achievement evaluation failed", zap.String("student_id", studentID), zap.Error(err))
			continue
		}
		total += len(earned)
	}
	return total
}
