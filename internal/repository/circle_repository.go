package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/hafs-center/markaz-api/internal/models"
)

// CircleRepository manages persistence for memorization circles.
type CircleRepository struct {
	db *sqlx.DB
}

// NewCircleRepository constructs a CircleRepository.
func NewCircleRepository(db *sqlx.DB) *CircleRepository {
	return &CircleRepository{db: db}
}

// FindByID fetches a circle with its teacher's name joined in.
func (r *CircleRepository) FindByID(ctx context.Context, id string) (*models.Circle, error) {
	const query = `SELECT c.id, c.name, c.teacher_id, u.full_name AS teacher_name, c.active, c.created_at
        FROM circles c
        LEFT JOIN users u ON u.id = c.teacher_id
        WHERE c.id = $1`
	var circle models.Circle
	if err := r.db.GetContext(ctx, &circle, query, id); err != nil {
		return nil, err
	}
	return &circle, nil
}

// List returns all active circles.
func (r *CircleRepository) List(ctx context.Context) ([]models.Circle, error) {
	const query = `SELECT c.id, c.name, c.teacher_id, u.full_name AS teacher_name, c.active, c.created_at
        FROM circles c
        LEFT JOIN users u ON u.id = c.teacher_id
        WHERE c.active = true
        ORDER BY c.name ASC`
	var circles []models.Circle
	if err := r.db.SelectContext(ctx, &circles, query); err != nil {
		return nil, fmt.Errorf("list circles: %w", err)
	}
	return circles, nil
}

// CountActive returns the number of active circles.
func (r *CircleRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM circles WHERE active = true"); err != nil {
		return 0, fmt.Errorf("count circles: %w", err)
	}
	return count, nil
}
