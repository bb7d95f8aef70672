package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hafs-center/markaz-api/internal/models"
)

// RecitationRepository handles persistence for recitation reports.
type RecitationRepository struct {
	db *sqlx.DB
}

// NewRecitationRepository constructs the repository.
func NewRecitationRepository(db *sqlx.DB) *RecitationRepository {
	return &RecitationRepository{db: db}
}

// BulkInsert writes many reports in one transaction. All or nothing; a
// collective report import either lands whole or not at all.
func (r *RecitationRepository) BulkInsert(ctx context.Context, reports []models.RecitationReport) error {
	if len(reports) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk recitation: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	const query = `INSERT INTO recitation_reports (id, student_id, teacher_id, circle_id, date, surah, from_verse, to_verse, repeat_type, grade, notes, created_at)
        VALUES (:id, :student_id, :teacher_id, :circle_id, :date, :surah, :from_verse, :to_verse, :repeat_type, :grade, :notes, :created_at)`
	now := time.Now().UTC()
	for i := range reports {
		rep := &reports[i]
		if rep.ID == "" {
			rep.ID = uuid.NewString()
		}
		if rep.CreatedAt.IsZero() {
			rep.CreatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, query, rep); err != nil {
			return fmt.Errorf("bulk insert recitation: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk recitation: %w", err)
	}
	committed = true
	return nil
}

// ListByStudent returns a student's reports within the inclusive date range,
// oldest first.
func (r *RecitationRepository) ListByStudent(ctx context.Context, studentID string, from, to time.Time) ([]models.RecitationReport, error) {
	const query = `SELECT id, student_id, teacher_id, circle_id, date, surah, from_verse, to_verse, repeat_type, grade, notes, created_at
        FROM recitation_reports
        WHERE student_id = $1 AND date >= $2 AND date <= $3
        ORDER BY date ASC, created_at ASC`
	var reports []models.RecitationReport
	if err := r.db.SelectContext(ctx, &reports, query, studentID, from, to); err != nil {
		return nil, fmt.Errorf("list recitation for student %s: %w", studentID, err)
	}
	return reports, nil
}

// CountByStudent returns a student's lifetime report count.
func (r *RecitationRepository) CountByStudent(ctx context.Context, studentID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM recitation_reports WHERE student_id = $1", studentID); err != nil {
		return 0, fmt.Errorf("count recitation reports: %w", err)
	}
	return count, nil
}

// CountAll returns the total report count across the center.
func (r *RecitationRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM recitation_reports"); err != nil {
		return 0, fmt.Errorf("count all recitation reports: %w", err)
	}
	return count, nil
}

// ExcellentCount returns how many of a student's reports carry the top grade.
func (r *RecitationRepository) ExcellentCount(ctx context.Context, studentID string) (int, error) {
	const query = `SELECT COUNT(*) FROM recitation_reports WHERE student_id = $1 AND grade = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentID, models.GradeExcellent); err != nil {
		return 0, fmt.Errorf("count excellent grades: %w", err)
	}
	return count, nil
}

// VersesSince sums the inclusive verse spans of a student's reports on or
// after the given date.
func (r *RecitationRepository) VersesSince(ctx context.Context, studentID string, from time.Time) (int, error) {
	const query = `SELECT COALESCE(SUM(to_verse - from_verse + 1), 0)
        FROM recitation_reports
        WHERE student_id = $1 AND date >= $2`
	var total int
	if err := r.db.GetContext(ctx, &total, query, studentID, from); err != nil {
		return 0, fmt.Errorf("sum verses: %w", err)
	}
	return total, nil
}
