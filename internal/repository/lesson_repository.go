package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/scholaris/lms-api/internal/models"
)

// LessonRepository handles persistence of lessons.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository constructs the repository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

func (r *LessonRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// NextSequenceNumber returns the next free sequence number within a class.
func (r *LessonRepository) NextSequenceNumber(ctx context.Context, exec sqlx.ExtContext, classID string) (int, error) {
	const query = `SELECT COALESCE(MAX(sequence_number), 0) + 1 FROM lessons WHERE class_id = $1`
	var next int
	if err := sqlx.GetContext(ctx, r.exec(exec), &next, query, classID); err != nil {
		return 0, fmt.Errorf("next lesson sequence: %w", err)
	}
	return next, nil
}

// Create persists a new lesson record.
func (r *LessonRepository) Create(ctx context.Context, exec sqlx.ExtContext, lesson *models.Lesson) error {
	if lesson.ID == "" {
		lesson.ID = uuid.NewString()
	}
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO lessons (id, class_id, sequence_number, title, description, file_path, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.exec(exec).ExecContext(ctx, query,
		lesson.ID, lesson.ClassID, lesson.SequenceNumber, lesson.Title, lesson.Description, lesson.FilePath, lesson.CreatedAt); err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}

// FindByID returns a lesson by its ID.
func (r *LessonRepository) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	const query = `SELECT id, class_id, sequence_number, title, description, file_path, created_at FROM lessons WHERE id = $1`
	var lesson models.Lesson
	if err := r.db.GetContext(ctx, &lesson, query, id); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// ListByClass returns lessons for a class ordered by sequence number.
func (r *LessonRepository) ListByClass(ctx context.Context, classID string) ([]models.Lesson, error) {
	const query = `SELECT id, class_id, sequence_number, title, description, file_path, created_at FROM lessons WHERE class_id = $1 ORDER BY sequence_number ASC`
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, classID); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

// Delete removes a lesson row.
func (r *LessonRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	const query = `DELETE FROM lessons WHERE id = $1`
	if _, err := r.exec(exec).ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	return nil
}

// Reorder rewrites sequence numbers to match the given lesson ID order.
func (r *LessonRepository) Reorder(ctx context.Context, exec sqlx.ExtContext, classID string, lessonIDs []string) error {
	const query = `UPDATE lessons SET sequence_number = $3 WHERE id = $1 AND class_id = $2`
	e := r.exec(exec)
	for i, id := range lessonIDs {
		if _, err := e.ExecContext(ctx, query, id, classID, i+1); err != nil {
			return fmt.Errorf("reorder lesson %s: %w", id, err)
		}
	}
	return nil
}
