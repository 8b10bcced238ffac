package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/scholaris/lms-api/internal/models"
)

// RewardsRepository handles student point counters and trophy thresholds.
type RewardsRepository struct {
	db *sqlx.DB
}

// NewRewardsRepository constructs the repository.
func NewRewardsRepository(db *sqlx.DB) *RewardsRepository {
	return &RewardsRepository{db: db}
}

func (r *RewardsRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// IncrementPoints adds delta to the student's counter, creating it on first
// award.
func (r *RewardsRepository) IncrementPoints(ctx context.Context, exec sqlx.ExtContext, studentID string, delta int) error {
	const query = `INSERT INTO student_points (student_id, points, updated_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (student_id) DO UPDATE SET
            points = student_points.points + EXCLUDED.points,
            updated_at = EXCLUDED.updated_at`
	if _, err := r.exec(exec).ExecContext(ctx, query, studentID, delta, time.Now().UTC()); err != nil {
		return fmt.Errorf("increment student points: %w", err)
	}
	return nil
}

// GetPoints returns the student's point total, zero when no counter exists.
func (r *RewardsRepository) GetPoints(ctx context.Context, studentID string) (int, error) {
	const query = `SELECT points FROM student_points WHERE student_id = $1`
	var points int
	if err := r.db.GetContext(ctx, &points, query, studentID); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("get student points: %w", err)
	}
	return points, nil
}

// ListThresholds returns the trophy table ordered by required points ascending.
func (r *RewardsRepository) ListThresholds(ctx context.Context) ([]models.TrophyThreshold, error) {
	const query = `SELECT id, label, required_points FROM trophy_thresholds ORDER BY required_points ASC`
	var thresholds []models.TrophyThreshold
	if err := r.db.SelectContext(ctx, &thresholds, query); err != nil {
		return nil, fmt.Errorf("list trophy thresholds: %w", err)
	}
	return thresholds, nil
}
