package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/scholaris/lms-api/internal/models"
)

// ActivityRepository handles persistence of gradable activities.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs the repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create persists a new activity record.
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO activities (id, class_id, lesson_id, title, instructions, due_date, max_score, file_path, created_at)
        VALUES (:id, :class_id, :lesson_id, :title, :instructions, :due_date, :max_score, :file_path, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, activity); err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

// FindByID returns an activity by its ID.
func (r *ActivityRepository) FindByID(ctx context.Context, id string) (*models.Activity, error) {
	const query = `SELECT id, class_id, lesson_id, title, instructions, due_date, max_score, file_path, created_at FROM activities WHERE id = $1`
	var activity models.Activity
	if err := r.db.GetContext(ctx, &activity, query, id); err != nil {
		return nil, err
	}
	return &activity, nil
}

// ListByClass returns activities for a class ordered by creation time.
func (r *ActivityRepository) ListByClass(ctx context.Context, classID string) ([]models.Activity, error) {
	const query = `SELECT id, class_id, lesson_id, title, instructions, due_date, max_score, file_path, created_at FROM activities WHERE class_id = $1 ORDER BY created_at ASC`
	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query, classID); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}

// UpdateMetadata rewrites the mutable fields of an activity. Identity fields
// (class, lesson) stay fixed.
func (r *ActivityRepository) UpdateMetadata(ctx context.Context, activity *models.Activity) error {
	const query = `UPDATE activities SET title = :title, instructions = :instructions, due_date = :due_date, max_score = :max_score, file_path = :file_path WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, activity); err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	return nil
}
