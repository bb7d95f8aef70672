package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hafs-center/markaz-api/internal/achievement"
	"github.com/hafs-center/markaz-api/internal/models"
	"github.com/hafs-center/markaz-api/pkg/config"
	appErrors "github.com/hafs-center/markaz-api/pkg/errors"
)

type achievementRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.AwardedAchievement, error)
	Award(ctx context.Context, studentID string, achievementID models.AchievementID) error
	CompletedEnrollments(ctx context.Context, studentID string) (int, error)
	TestScores(ctx context.Context, studentID string) ([]models.TestScore, error)
}

type recitationHistoryReader interface {
	ExcellentCount(ctx context.Context, studentID string) (int, error)
	VersesSince(ctx context.Context, studentID string, from time.Time) (int, error)
}

type presentDaysReader interface {
	PresentDays(ctx context.Context, studentID string, from time.Time) (int, error)
}

// AchievementService assembles a student's history snapshot from
// persistence, runs the badge engine over it and records the new awards.
type AchievementService struct {
	repo        achievementRepository
	recitations recitationHistoryReader
	attendance  presentDaysReader
	engine      *achievement.Engine
	windowDays  int
	logger      *zap.Logger
	now         func() time.Time
}

// NewAchievementService validates the thresholds and wires the service.
func NewAchievementService(
	repo achievementRepository,
	recitations recitationHistoryReader,
	attendance presentDaysReader,
	cfg config.AchievementsConfig,
	logger *zap.Logger,
) (*AchievementService, error) {
	engine, err := achievement.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AchievementService{
		repo:        repo,
		recitations: recitations,
		attendance:  attendance,
		engine:      engine,
		windowDays:  cfg.PresentWindowDays,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

// EvaluateStudent re-runs the badge rules for one student and persists any
// newly earned badges. It returns only the badges earned by this call.
func (s *AchievementService) EvaluateStudent(ctx context.Context, studentID string) ([]models.AchievementID, error) {
	history, err := s.assembleHistory(ctx, studentID)
	if err != nil {
		return nil, err
	}

	awarded, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load awarded achievements")
	}

	earned := s.engine.Evaluate(history, awarded)
	for _, id := range earned {
		if err := s.repo.Award(ctx, studentID, id); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record achievement")
		}
		s.logger.Info("achievement awarded",
			zap.String("student_id", studentID),
			zap.String("achievement_id", string(id)))
	}
	return earned, nil
}

// ListStudent returns the badges a student holds.
func (s *AchievementService) ListStudent(ctx context.Context, studentID string) ([]models.AwardedAchievement, error) {
	awarded, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load achievements")
	}
	return awarded, nil
}

func (s *AchievementService) assembleHistory(ctx context.Context, studentID string) (models.StudentHistory, error) {
	now := s.now()
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	windowStart := now.AddDate(0, 0, -s.windowDays)

	excellent, err := s.recitations.ExcellentCount(ctx, studentID)
	if err != nil {
		return models.StudentHistory{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count excellent grades")
	}
	verses, err := s.recitations.VersesSince(ctx, studentID, yearStart)
	if err != nil {
		return models.StudentHistory{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum verses")
	}
	presentDays, err := s.attendance.PresentDays(ctx, studentID, windowStart)
	if err != nil {
		return models.StudentHistory{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count present days")
	}
	completed, err := s.repo.CompletedEnrollments(ctx, studentID)
	if err != nil {
		return models.StudentHistory{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}
	scores, err := s.repo.TestScores(ctx, studentID)
	if err != nil {
		return models.StudentHistory{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load test scores")
	}

	return models.StudentHistory{
		StudentID:            studentID,
		ExcellentGrades:      excellent,
		VersesSinceYearStart: verses,
		PresentDaysInWindow:  presentDays,
		CompletedEnrollments: completed,
		TestScores:           scores,
	}, nil
}
