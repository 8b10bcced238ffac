package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/scholaris/lms-api/internal/models"
)

// ProgressRepository handles persistence of per-lesson progress rows.
type ProgressRepository struct {
	db *sqlx.DB
}

// NewProgressRepository constructs the repository.
func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

func (r *ProgressRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// BackfillForLesson inserts a not_started row for every enrollment of the
// lesson's class, regardless of enrollment status. Existing rows are left
// untouched.
func (r *ProgressRepository) BackfillForLesson(ctx context.Context, exec sqlx.ExtContext, classID, lessonID string) error {
	const query = `INSERT INTO lesson_progress (id, class_id, lesson_id, student_id, status)
        SELECT gen_random_uuid(), e.class_id, $1, e.student_id, 'not_started'
        FROM enrollments e
        WHERE e.class_id = $2
        ON CONFLICT (class_id, lesson_id, student_id) DO NOTHING`
	if _, err := r.exec(exec).ExecContext(ctx, query, lessonID, classID); err != nil {
		return fmt.Errorf("backfill progress for lesson: %w", err)
	}
	return nil
}

// BackfillForStudent inserts a not_started row for every existing lesson of
// the class for one student.
func (r *ProgressRepository) BackfillForStudent(ctx context.Context, exec sqlx.ExtContext, classID, studentID string) error {
	const query = `INSERT INTO lesson_progress (id, class_id, lesson_id, student_id, status)
        SELECT gen_random_uuid(), l.class_id, l.id, $1, 'not_started'
        FROM lessons l
        WHERE l.class_id = $2
        ON CONFLICT (class_id, lesson_id, student_id) DO NOTHING`
	if _, err := r.exec(exec).ExecContext(ctx, query, studentID, classID); err != nil {
		return fmt.Errorf("backfill progress for student: %w", err)
	}
	return nil
}

// FindByLessonAndStudent returns the progress row for the unique pair.
func (r *ProgressRepository) FindByLessonAndStudent(ctx context.Context, exec sqlx.ExtContext, lessonID, studentID string) (*models.Progress, error) {
	const query = `SELECT id, class_id, lesson_id, student_id, status, started_at, completed_at
        FROM lesson_progress WHERE lesson_id = $1 AND student_id = $2`
	var progress models.Progress
	if err := sqlx.GetContext(ctx, r.exec(exec), &progress, query, lessonID, studentID); err != nil {
		return nil, err
	}
	return &progress, nil
}

// Insert creates the first-click row directly in in_progress state. The
// unique triple converges concurrent first clicks to one row.
func (r *ProgressRepository) Insert(ctx context.Context, exec sqlx.ExtContext, progress *models.Progress) error {
	if progress.ID == "" {
		progress.ID = uuid.NewString()
	}
	const query = `INSERT INTO lesson_progress (id, class_id, lesson_id, student_id, status, started_at, completed_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (class_id, lesson_id, student_id) DO NOTHING`
	if _, err := r.exec(exec).ExecContext(ctx, query,
		progress.ID, progress.ClassID, progress.LessonID, progress.StudentID, progress.Status, progress.StartedAt, progress.CompletedAt); err != nil {
		return fmt.Errorf("insert progress: %w", err)
	}
	return nil
}

// MarkInProgress advances a not_started row, stamping started_at once.
func (r *ProgressRepository) MarkInProgress(ctx context.Context, exec sqlx.ExtContext, id string, at time.Time) error {
	const query = `UPDATE lesson_progress SET status = $2, started_at = $3 WHERE id = $1`
	if _, err := r.exec(exec).ExecContext(ctx, query, id, models.ProgressStatusInProgress, at); err != nil {
		return fmt.Errorf("mark progress in_progress: %w", err)
	}
	return nil
}

// MarkCompleted advances an in_progress row, stamping completed_at once.
func (r *ProgressRepository) MarkCompleted(ctx context.Context, exec sqlx.ExtContext, id string, at time.Time) error {
	const query = `UPDATE lesson_progress SET status = $2, completed_at = $3 WHERE id = $1`
	if _, err := r.exec(exec).ExecContext(ctx, query, id, models.ProgressStatusCompleted, at); err != nil {
		return fmt.Errorf("mark progress completed: %w", err)
	}
	return nil
}

// DeleteByLesson removes all progress rows of a lesson.
func (r *ProgressRepository) DeleteByLesson(ctx context.Context, exec sqlx.ExtContext, lessonID string) error {
	const query = `DELETE FROM lesson_progress WHERE lesson_id = $1`
	if _, err := r.exec(exec).ExecContext(ctx, query, lessonID); err != nil {
		return fmt.Errorf("delete progress by lesson: %w", err)
	}
	return nil
}

// DeleteByClassAndStudent removes all progress rows of one student in a class.
func (r *ProgressRepository) DeleteByClassAndStudent(ctx context.Context, exec sqlx.ExtContext, classID, studentID string) error {
	const query = `DELETE FROM lesson_progress WHERE class_id = $1 AND student_id = $2`
	if _, err := r.exec(exec).ExecContext(ctx, query, classID, studentID); err != nil {
		return fmt.Errorf("delete progress by class and student: %w", err)
	}
	return nil
}

// ClassSummary aggregates progress counts for a class. An empty studentID
// aggregates across the whole roster; otherwise the summary is scoped to one
// student and percent-complete equals completed / total lessons.
func (r *ProgressRepository) ClassSummary(ctx context.Context, classID, studentID string) (*models.ClassProgressSummary, error) {
	query := `SELECT
            $1 AS class_id,
            COUNT(*) FILTER (WHERE p.status = 'not_started') AS not_started,
            COUNT(*) FILTER (WHERE p.status = 'in_progress') AS in_progress,
            COUNT(*) FILTER (WHERE p.status = 'completed') AS completed,
            (SELECT COUNT(*) FROM lessons l WHERE l.class_id = $1) AS total_lessons
        FROM lesson_progress p
        WHERE p.class_id = $1`
	args := []interface{}{classID}
	if studentID != "" {
		query += ` AND p.student_id = $2`
		args = append(args, studentID)
	}

	var summary models.ClassProgressSummary
	if err := r.db.GetContext(ctx, &summary, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return &models.ClassProgressSummary{ClassID: classID}, nil
		}
		return nil, fmt.Errorf("class progress summary: %w", err)
	}
	total := summary.NotStarted + summary.InProgress + summary.Completed
	if total > 0 {
		summary.PercentComplete = float64(summary.Completed) / float64(total) * 100
	}
	return &summary, nil
}

// StudentSummary aggregates the student's classes and lesson progress across
// all enrollments for the dashboard.
func (r *ProgressRepository) StudentSummary(ctx context.Context, studentID string) (*models.DashboardSummary, error) {
	const query = `SELECT
            COUNT(DISTINCT e.class_id) AS total_classes,
            COUNT(DISTINCT e.class_id) FILTER (WHERE c.status = 'active') AS classes_active,
            COUNT(DISTINCT e.class_id) FILTER (WHERE c.status = 'completed') AS classes_completed,
            COUNT(DISTINCT p.id) FILTER (WHERE p.status = 'completed') AS lessons_completed,
            COUNT(DISTINCT p.id) FILTER (WHERE p.status = 'in_progress') AS lessons_in_progress
        FROM enrollments e
        JOIN classes c ON c.id = e.class_id
        LEFT JOIN lesson_progress p ON p.class_id = e.class_id AND p.student_id = e.student_id
        WHERE e.student_id = $1`
	var summary models.DashboardSummary
	if err := r.db.GetContext(ctx, &summary, query, studentID); err != nil {
		return nil, fmt.Errorf("student dashboard summary: %w", err)
	}
	return &summary, nil
}

// RecentByStudent returns the latest progress events for a student ordered by
// the later of started_at and completed_at.
func (r *ProgressRepository) RecentByStudent(ctx context.Context, studentID string, limit int) ([]models.ProgressEvent, error) {
	if limit <= 0 {
		limit = 5
	}
	const query = `SELECT p.lesson_id, l.title AS lesson_title, p.class_id, p.status, p.started_at, p.completed_at
        FROM lesson_progress p
        JOIN lessons l ON l.id = p.lesson_id
        WHERE p.student_id = $1
        ORDER BY GREATEST(
            COALESCE(p.completed_at, 'epoch'::timestamptz),
            COALESCE(p.started_at, 'epoch'::timestamptz)
        ) DESC
        LIMIT $2`
	var events []models.ProgressEvent
	if err := r.db.SelectContext(ctx, &events, query, studentID, limit); err != nil {
		return nil, fmt.Errorf("recent progress: %w", err)
	}
	return events, nil
}
