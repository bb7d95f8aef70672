package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hafs-center/markaz-api/internal/models"
)

// AchievementRepository persists awarded badges and the auxiliary history the
// badge rules read.
type AchievementRepository struct {
	db *sqlx.DB
}

// NewAchievementRepository constructs the repository.
func NewAchievementRepository(db *sqlx.DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// ListByStudent returns the badges a student already holds.
func (r *AchievementRepository) ListByStudent(ctx context.Context, studentID string) ([]models.AwardedAchievement, error) {
	const query = `SELECT id, student_id, achievement_id, awarded_at
        FROM student_achievements
        WHERE student_id = $1
        ORDER BY awarded_at ASC`
	var awarded []models.AwardedAchievement
	if err := r.db.SelectContext(ctx, &awarded, query, studentID); err != nil {
		return nil, fmt.Errorf("list achievements for student %s: %w", studentID, err)
	}
	return awarded, nil
}

// Award records a badge. The unique constraint makes the write idempotent;
// a repeat award is a no-op.
func (r *AchievementRepository) Award(ctx context.Context, studentID string, achievementID models.AchievementID) error {
	const query = `INSERT INTO student_achievements (id, student_id, achievement_id, awarded_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (student_id, achievement_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), studentID, achievementID, time.Now().UTC()); err != nil {
		return fmt.Errorf("award achievement %s: %w", achievementID, err)
	}
	return nil
}

// CompletedEnrollments counts the courses a student has finished.
func (r *AchievementRepository) CompletedEnrollments(ctx context.Context, studentID string) (int, error) {
	const query = `SELECT COUNT(*) FROM course_enrollments WHERE student_id = $1 AND status = 'completed'`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentID); err != nil {
		return 0, fmt.Errorf("count completed enrollments: %w", err)
	}
	return count, nil
}

// TestScores returns a student's exam results.
func (r *AchievementRepository) TestScores(ctx context.Context, studentID string) ([]models.TestScore, error) {
	const query = `SELECT score, max_score FROM test_results WHERE student_id = $1 ORDER BY taken_at ASC`
	var scores []models.TestScore
	if err := r.db.SelectContext(ctx, &scores, query, studentID); err != nil {
		return nil, fmt.Errorf("list test scores: %w", err)
	}
	return scores, nil
}
