package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hafs-center/markaz-api/internal/models"
)

// AttendanceRepository handles persistence for attendance events.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// BulkInsert writes many events in one transaction. A student already marked
// on the same date is skipped, not overwritten; the skipped events are
// returned so the importer can report them.
func (r *AttendanceRepository) BulkInsert(ctx context.Context, events []models.AttendanceEvent) ([]models.AttendanceEvent, error) {
	if len(events) == 0 {
		return nil, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin bulk attendance: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	const query = `INSERT INTO attendance_events (id, student_id, date, status, notes, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (student_id, date) DO NOTHING RETURNING id`
	now := time.Now().UTC()
	var duplicates []models.AttendanceEvent
	for i := range events {
		ev := &events[i]
		if ev.ID == "" {
			ev.ID = uuid.NewString()
		}
		if ev.CreatedAt.IsZero() {
			ev.CreatedAt = now
		}
		var insertedID string
		err := tx.QueryRowxContext(ctx, query, ev.ID, ev.StudentID, ev.Date, ev.Status, ev.Notes, ev.CreatedAt).Scan(&insertedID)
		if err == sql.ErrNoRows {
			duplicates = append(duplicates, *ev)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("bulk insert attendance: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit bulk attendance: %w", err)
	}
	committed = true
	return duplicates, nil
}

// ListByStudent returns a student's events within the inclusive date range,
// oldest first.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID string, from, to time.Time) ([]models.AttendanceEvent, error) {
	const query = `SELECT id, student_id, date, status, notes, created_at
        FROM attendance_events
        WHERE student_id = $1 AND date >= $2 AND date <= $3
        ORDER BY date ASC`
	var events []models.AttendanceEvent
	if err := r.db.SelectContext(ctx, &events, query, studentID, from, to); err != nil {
		return nil, fmt.Errorf("list attendance for student %s: %w", studentID, err)
	}
	return events, nil
}

// ListSince returns every student's events on or after the given date. The
// center-wide rate aggregates over this set.
func (r *AttendanceRepository) ListSince(ctx context.Context, from time.Time) ([]models.AttendanceEvent, error) {
	const query = `SELECT id, student_id, date, status, notes, created_at
        FROM attendance_events
        WHERE date >= $1
        ORDER BY student_id, date ASC`
	var events []models.AttendanceEvent
	if err := r.db.SelectContext(ctx, &events, query, from); err != nil {
		return nil, fmt.Errorf("list attendance since %s: %w", from.Format("2006-01-02"), err)
	}
	return events, nil
}

// StatusCountsSince aggregates event counts per status on or after the date.
func (r *AttendanceRepository) StatusCountsSince(ctx context.Context, from time.Time) ([]models.StatusCount, error) {
	const query = `SELECT status, COUNT(*) AS count
        FROM attendance_events
        WHERE date >= $1
        GROUP BY status
        ORDER BY status`
	var counts []models.StatusCount
	if err := r.db.SelectContext(ctx, &counts, query, from); err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}
	return counts, nil
}

// PresentDays counts a student's distinct present days on or after the date.
func (r *AttendanceRepository) PresentDays(ctx context.Context, studentID string, from time.Time) (int, error) {
	const query = `SELECT COUNT(DISTINCT date) FROM attendance_events
        WHERE student_id = $1 AND status = $2 AND date >= $3`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentID, models.AttendancePresent, from); err != nil {
		return 0, fmt.Errorf("count present days: %w", err)
	}
	return count, nil
}
